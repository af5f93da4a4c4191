package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"voto/internal/registry/handler"
	"voto/internal/registry/models"
	"voto/pkg/platform/httputil"
	"voto/pkg/platform/middleware/auth"
	"voto/pkg/platform/middleware/metadata"
	"voto/pkg/platform/middleware/request"
	"voto/pkg/platform/middleware/requesttime"
	"voto/pkg/platform/middleware/serialize"
)

// Deps are the components the router mounts.
type Deps struct {
	Registry *handler.Handler
	Tokens   auth.JWTValidator
	Logger   *slog.Logger
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Health reports backend reachability for /health when set.
	Health func(ctx context.Context) error
	// TrustProxyHeaders lets X-Forwarded-For decide the client IP.
	TrustProxyHeaders bool
}

// NewRouter wires all public endpoints. Registry routes share one dispatcher
// so a process never interleaves two registry operations.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metadata.ClientMetadata(d.TrustProxyHeaders))
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))

	r.Get("/health", healthHandler(d.Health, d.Logger))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	dispatcher := serialize.New()
	r.Group(func(r chi.Router) {
		r.Use(dispatcher.Middleware)
		d.Registry.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.Tokens, d.Logger))
		r.Use(auth.RequireRole(models.RoleAdmin, d.Logger))
		r.Use(dispatcher.Middleware)
		d.Registry.RegisterAdmin(r)
	})
	return r
}

func healthHandler(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "health check failed",
					"error", err,
					"request_id", request.GetRequestID(r.Context()),
				)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
