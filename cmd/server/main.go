package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/http/health"
	"github.com/janisto/account-settings/internal/http/v1/media"
	"github.com/janisto/account-settings/internal/http/v1/routes"
	"github.com/janisto/account-settings/internal/platform/auth"
	"github.com/janisto/account-settings/internal/platform/config"
	"github.com/janisto/account-settings/internal/platform/firebase"
	applog "github.com/janisto/account-settings/internal/platform/logging"
	appmiddleware "github.com/janisto/account-settings/internal/platform/middleware"
	"github.com/janisto/account-settings/internal/platform/respond"
	mediasvc "github.com/janisto/account-settings/internal/service/media"
	usersvc "github.com/janisto/account-settings/internal/service/user"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const docsPath = "/api-docs"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	if err := run(); err != nil {
		applog.LogError(context.Background(), "server failed", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	ctx := context.Background()
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.ProjectID,
		GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
		StorageBucket:                cfg.StorageBucket,
	})
	if err != nil {
		return err
	}
	defer func() { _ = clients.Close() }()

	deps := routes.Deps{
		Verifier: auth.NewFirebaseVerifier(clients.Auth),
		Users:    usersvc.NewFirestoreStore(clients.Firestore),
		Upload: media.Options{
			DefaultFolder: cfg.MediaFolder,
			MaxBytes:      cfg.MaxUploadBytes,
		},
	}
	bucket, err := clients.Bucket()
	switch {
	case err == nil:
		deps.Media = mediasvc.NewGCSStore(bucket)
	case errors.Is(err, firebase.ErrNoBucket):
		applog.LogWarn(ctx, "STORAGE_BUCKET not set; media uploads disabled")
	default:
		return err
	}

	srv := newServer(cfg, newRouter(deps, cfg.MaxUploadBytes))

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", srv.Addr), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return err
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
	return nil
}

func newServer(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       30 * time.Second, // uploads
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// newRouter builds the full HTTP stack: base middleware, /health and the huma API under /v1.
func newRouter(deps routes.Deps, maxUploadBytes int64) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(docsPath, "/v1"+docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; only run behind a trusted proxy (Cloud Run).
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxUploadBytes+1<<20),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(Version))

	router.Route("/v1", func(r chi.Router) {
		api := humachi.New(r, apiConfig())
		addCBORContentTypes(api.OpenAPI())
		routes.Register(api, deps)
	})
	return router
}

func apiConfig() huma.Config {
	cfg := huma.DefaultConfig("Account Settings API", Version)
	cfg.DocsPath = docsPath
	cfg.Servers = []*huma.Server{{URL: "/v1"}}
	return cfg
}

// addCBORContentTypes mirrors every JSON request and response schema as application/cbor.
func addCBORContentTypes(oapi *huma.OpenAPI) {
	oapi.OnAddOperation = append(oapi.OnAddOperation, func(_ *huma.OpenAPI, op *huma.Operation) {
		if op.RequestBody != nil && op.RequestBody.Content != nil {
			if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
				op.RequestBody.Content["application/cbor"] = jsonContent
			}
		}
		for _, resp := range op.Responses {
			if resp.Content == nil {
				continue
			}
			if jsonContent, ok := resp.Content["application/json"]; ok {
				resp.Content["application/cbor"] = jsonContent
			}
		}
	})
}
