package router

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/ratelimit"
)

// middlewareRateLimit keys on the user id of a valid bearer token and falls
// back to the client address. Limiter failures let the request through.
func middlewareRateLimit(limiter ratelimit.Limiter, verifier jwt.JWT) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), rateLimitKey(r, verifier))
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			w.Header().Set("RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				abort(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request, verifier jwt.JWT) string {
	if token := bearerToken(r); token != "" && verifier != nil {
		if clm, err := verifier.Verify(token); err == nil {
			return "user:" + strconv.FormatInt(clm.UserID, 10)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
