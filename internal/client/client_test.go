package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/janisto/account-settings/internal/dialog"
	"github.com/janisto/account-settings/internal/dialog/dialogtest"
	"github.com/janisto/account-settings/internal/dialog/profile"
	"github.com/janisto/account-settings/internal/dialog/submit"
	"github.com/janisto/account-settings/internal/http/v1/routes"
	"github.com/janisto/account-settings/internal/platform/auth"
	mediasvc "github.com/janisto/account-settings/internal/service/media"
	usersvc "github.com/janisto/account-settings/internal/service/user"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testAPI struct {
	srv   *httptest.Server
	users *usersvc.MockUserService
	media *mediasvc.MockStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	users := usersvc.NewMockUserService()
	users.Seed(usersvc.User{
		ID:               "test-user-123",
		Email:            "test@example.com",
		FirstName:        "Jane",
		LastName:         "Doe",
		Username:         "jane_doe",
		CurrentSponsorID: "sponsor-1",
		EmailSettings:    []string{"productAndNewsletter"},
	})
	users.Seed(usersvc.User{ID: "other", Username: "bob"})
	store := mediasvc.NewMockStore()

	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("ClientTest", "test"))
	routes.Register(api, routes.Deps{
		Verifier: &auth.MockVerifier{Tokens: map[string]*auth.Principal{"good": auth.TestUser()}},
		Users:    users,
		Media:    store,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, users: users, media: store}
}

func (a *testAPI) client(opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(a.srv.URL), WithToken("good")}, opts...)
	return NewClient(a.srv.Client(), opts...)
}

func TestGetUser(t *testing.T) {
	api := newTestAPI(t)

	u, err := api.client().GetUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &dialog.User{
		ID:               "test-user-123",
		Email:            "test@example.com",
		FirstName:        "Jane",
		LastName:         "Doe",
		Username:         "jane_doe",
		CurrentSponsorID: "sponsor-1",
		EmailSettings:    []string{"productAndNewsletter"},
	}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstProfileCompletion(t *testing.T) {
	ctx := context.Background()
	users := usersvc.NewMockUserService()
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("ClientTest", "test"))
	routes.Register(api, routes.Deps{
		Verifier: &auth.MockVerifier{User: auth.TestUser()},
		Users:    users,
		Media:    mediasvc.NewMockStore(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	c := NewClient(srv.Client(), WithBaseURL(srv.URL), WithToken("any"))

	cache := NewUserCache(c)
	if err := cache.Refetch(ctx); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	want := &dialog.User{ID: "test-user-123", Email: "test@example.com", EmailSettings: []string{}}
	if diff := cmp.Diff(want, cache.Current()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	clock := &dialogtest.Clock{}
	notifier := &dialogtest.Notifier{}
	d, err := profile.Open(ctx, profile.Deps{
		Cache:    cache,
		Checker:  c,
		Uploader: c,
		Saver:    c,
		Notifier: notifier,
	}, profile.Config{AfterFunc: clock.AfterFunc})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, set := range []func() error{
		func() error { return d.SetFirstName("New") },
		func() error { return d.SetLastName("User") },
		func() error { return d.SetUsername("new_user") },
	} {
		if err := set(); err != nil {
			t.Fatalf("edit: %v", err)
		}
	}
	clock.Fire()
	if st := d.Validation(); st.Pending || st.Invalid {
		t.Fatalf("expected settled valid username, got %+v", st)
	}

	if err := d.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if d.Phase() != submit.Closed {
		t.Errorf("expected Closed, got %v", d.Phase())
	}
	if diff := cmp.Diff([]string{profile.Messages.Success}, notifier.Successes()); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}

	stored, err := users.Get(ctx, "test-user-123")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.FirstName != "New" || stored.LastName != "User" || stored.Username != "new_user" ||
		stored.Email != "test@example.com" {
		t.Errorf("unexpected stored user: %+v", stored)
	}
	if got := cache.Current().Username; got != "new_user" {
		t.Errorf("expected refetched username new_user, got %q", got)
	}
}

func TestUnauthorized(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.client(WithToken("bad")).GetUser(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestSaveDetails(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()

	err := c.SaveDetails(context.Background(), dialog.DetailsPayload{
		FirstName: "Janet",
		LastName:  "Doe",
		Username:  "janet",
		Photo:     "https://media.test/earn-pfp/a.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := api.users.Get(context.Background(), "test-user-123")
	if u.FirstName != "Janet" || u.Username != "janet" || u.Photo != "https://media.test/earn-pfp/a.png" {
		t.Fatalf("unexpected stored user: %+v", u)
	}

	// Omitting the photo removes it.
	if err := c.SaveDetails(context.Background(), dialog.DetailsPayload{
		FirstName: "Janet", LastName: "Doe", Username: "janet",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ = api.users.Get(context.Background(), "test-user-123")
	if u.Photo != "" {
		t.Fatalf("expected photo removed, got %q", u.Photo)
	}
}

func TestSaveDetailsConflict(t *testing.T) {
	api := newTestAPI(t)

	err := api.client().SaveDetails(context.Background(), dialog.DetailsPayload{
		FirstName: "Jane", LastName: "Doe", Username: "bob",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestSaveDetailsInvalid(t *testing.T) {
	api := newTestAPI(t)

	err := api.client().SaveDetails(context.Background(), dialog.DetailsPayload{
		FirstName: "Jane", LastName: "Doe", Username: "no spaces",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || len(apiErr.Errors) == 0 {
		t.Fatalf("expected validation details, got %v", err)
	}
}

func TestSaveEmailSettings(t *testing.T) {
	api := newTestAPI(t)

	if err := api.client().SaveEmailSettings(context.Background(), []string{"commentSponsor"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := api.users.Get(context.Background(), "test-user-123")
	if diff := cmp.Diff([]string{"commentSponsor"}, u.EmailSettings); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEmailSettingsNilSendsEmptyList(t *testing.T) {
	api := newTestAPI(t)

	if err := api.client().SaveEmailSettings(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := api.users.Get(context.Background(), "test-user-123")
	if len(u.EmailSettings) != 0 {
		t.Fatalf("expected no subscriptions, got %v", u.EmailSettings)
	}
}

func TestCheckAvailable(t *testing.T) {
	api := newTestAPI(t)
	c := api.client()

	tests := []struct {
		candidate string
		want      dialog.Availability
	}{
		{"fresh_name", dialog.Availability{Available: true}},
		{"bob", dialog.Availability{Reason: "taken"}},
		{"BOB", dialog.Availability{Reason: "taken"}},
		{"jane_doe", dialog.Availability{Available: true}},
		{"a b", dialog.Availability{Reason: "invalid"}},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, err := c.CheckAvailable(context.Background(), tt.candidate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("availability mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpload(t *testing.T) {
	api := newTestAPI(t)

	url, err := api.client().Upload(context.Background(),
		dialog.File{Name: "me.png", Body: bytes.NewReader(pngHeader)}, "earn-pfp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://media.test/earn-pfp/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}
	if api.media.Len() != 1 {
		t.Fatalf("expected one stored object, got %d", api.media.Len())
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.client().Upload(context.Background(),
		dialog.File{Name: "notes.txt", Body: strings.NewReader("hello")}, "earn-pfp")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if api.media.Len() != 0 {
		t.Fatal("expected nothing stored")
	}
}

func TestTokenSourceError(t *testing.T) {
	api := newTestAPI(t)
	boom := errors.New("no session")

	_, err := api.client(WithTokenSource(func(context.Context) (string, error) { return "", boom })).
		GetUser(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusUnprocessableEntity, ErrInvalid},
		{http.StatusRequestEntityTooLarge, ErrInvalid},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusInternalServerError, ErrServer},
	}
	for _, tt := range tests {
		err := error(&APIError{Status: tt.status})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, errors.Unwrap(err))
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: http.StatusConflict, Title: "Conflict", Detail: "username already taken"}
	if got := err.Error(); got != "api error (status=409): Conflict: username already taken" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnavailableFromPlainServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), WithBaseURL(srv.URL)).CheckAvailable(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
