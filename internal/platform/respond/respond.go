// Package respond renders RFC 9457 problem details for requests that never reach a huma
// operation (unknown routes, wrong methods, panics).
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	applog "github.com/janisto/account-settings/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"
)

// NotFoundHandler writes a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
	}
}

// MethodNotAllowedHandler writes a 405 problem with an Allow header built from chi's routes.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Recoverer converts panics into 500 problems. http.ErrAbortHandler is re-panicked so the
// server can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", fmt.Errorf("%v", rec),
					zap.ByteString("stack", debug.Stack()))
				if ww.Status() != 0 {
					return
				}
				writeProblem(ww, r, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &huma.ErrorModel{
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
	w.Header().Add("Vary", "Accept")

	var (
		body []byte
		err  error
	)
	if acceptsCBOR(r.Header.Get("Accept")) {
		w.Header().Set("Content-Type", contentTypeProblemCBOR)
		body, err = cbor.Marshal(problem)
	} else {
		w.Header().Set("Content-Type", contentTypeProblemJSON)
		body, err = json.Marshal(problem)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
		w.WriteHeader(status)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		applog.LogWarn(r.Context(), "failed to write problem", zap.Error(err))
	}
}

// acceptsCBOR reports whether CBOR is preferred over JSON in an Accept header. Ties and
// wildcards go to JSON.
func acceptsCBOR(accept string) bool {
	var cborQ, jsonQ float64 = -1, -1
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if v, ok := params["q"]; ok {
			if _, scanErr := fmt.Sscanf(v, "%g", &q); scanErr != nil {
				continue
			}
		}
		switch mediaType {
		case "application/cbor", contentTypeProblemCBOR:
			cborQ = max(cborQ, q)
		case "application/json", contentTypeProblemJSON, "*/*", "application/*":
			jsonQ = max(jsonQ, q)
		}
	}
	return cborQ > 0 && cborQ > jsonQ
}

func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.Path
	}
	var allowed []string
	for _, method := range []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
