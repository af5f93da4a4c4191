package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	dErrors "voto/pkg/domain-errors"
	"voto/pkg/platform/httputil"
	"voto/pkg/platform/middleware/request"
	"voto/pkg/requestcontext"
)

// Middleware limits requests per client IP and path, so each subject id has
// its own budget per caller. Store failures fail open.
func Middleware(limiter *Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			key := "auth:" + ip + ":" + r.URL.Path

			result, err := limiter.Check(ctx, key, requestcontext.Now(ctx))
			if err != nil {
				logger.ErrorContext(ctx, "failed to check auth rate limit",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				logger.WarnContext(ctx, "auth rate limit exceeded",
					"path", r.URL.Path,
					"client_ip", ip,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
					"Too many authentication attempts. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
