package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

const (
	UserIDHeader = "X-User-Id"
	RoleHeader   = "X-User-Role"
)

// Identity copies the caller identity set by the upstream gateway into the
// request context. Authentication happens before this service.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
				ctx = WithUserID(ctx, userID)
				if logg != nil {
					ctx = logg.WithUserID(ctx, userID)
				}
			}
			if role := strings.ToLower(strings.TrimSpace(r.Header.Get(RoleHeader))); role != "" {
				ctx = WithRole(ctx, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
