package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/account-settings/internal/http/v1/media"
	"github.com/janisto/account-settings/internal/http/v1/user"
	"github.com/janisto/account-settings/internal/platform/auth"
	mediasvc "github.com/janisto/account-settings/internal/service/media"
	usersvc "github.com/janisto/account-settings/internal/service/user"
)

// Deps are the services the v1 API is built on. Media routes are omitted when Media is nil.
type Deps struct {
	Verifier auth.Verifier
	Users    usersvc.Service
	Media    mediasvc.Store
	Upload   media.Options
}

// Register wires all v1 routes into the provided API.
func Register(api huma.API, deps Deps) {
	registerSecurityScheme(api.OpenAPI())

	// Apply auth middleware for protected endpoints
	api.UseMiddleware(auth.NewMiddleware(api, deps.Verifier))

	user.Register(api, deps.Users)
	if deps.Media != nil {
		media.Register(api, deps.Media, deps.Upload)
	}
}

func registerSecurityScheme(oapi *huma.OpenAPI) {
	if oapi.Components == nil {
		oapi.Components = &huma.Components{}
	}
	if oapi.Components.SecuritySchemes == nil {
		oapi.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oapi.Components.SecuritySchemes[auth.SchemeName] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
		Description:  "Firebase ID token",
	}
}
