package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/account-settings/internal/platform/auth"
	mediasvc "github.com/janisto/account-settings/internal/service/media"
	usersvc "github.com/janisto/account-settings/internal/service/user"
)

func newTestAPI() (chi.Router, huma.API) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("RoutesTest", "test"))
	users := usersvc.NewMockUserService()
	users.Seed(usersvc.User{ID: "test-user-123", Username: "tester"})
	Register(api, Deps{
		Verifier: &auth.MockVerifier{User: auth.TestUser()},
		Users:    users,
		Media:    mediasvc.NewMockStore(),
	})
	return router, api
}

func TestRegisterExposesOperations(t *testing.T) {
	_, api := newTestAPI()

	paths := api.OpenAPI().Paths
	for _, path := range []string{"/user", "/user/details", "/user/email-settings", "/user/username-availability", "/media"} {
		if paths[path] == nil {
			t.Errorf("expected path %s to be registered", path)
		}
	}
	scheme := api.OpenAPI().Components.SecuritySchemes[auth.SchemeName]
	if scheme == nil || scheme.Scheme != "bearer" {
		t.Fatalf("expected bearer security scheme, got %+v", scheme)
	}
}

func TestRegisterAppliesAuth(t *testing.T) {
	router, _ := newTestAPI()

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer ok")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.Code)
	}
}

func TestRegisterMediaRequiresMultipart(t *testing.T) {
	router, _ := newTestAPI()

	req := httptest.NewRequest(http.MethodPost, "/media", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer ok")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code < 400 || resp.Code >= 500 {
		t.Fatalf("expected 4xx for missing multipart body, got %d", resp.Code)
	}
}
