package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/authflow/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints ("*" blocks all). The list is read per request so
// a config reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked := cfg.GetArray("app.maintenance.endpoints")
			if slices.Contains(blocked, "*") || slices.Contains(blocked, matchedRoutePath(r)) {
				abort(w, http.StatusServiceUnavailable, "Service is under maintenance")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
