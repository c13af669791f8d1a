package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/logger"
	"github.com/shelterconnect/platform/pkg/rbac"
)

// identityHeader carries the authenticated user ID, set by the edge proxy
// after session validation. The API trusts it and resolves the full actor
// from the directory.
const identityHeader = "X-User-ID"

// Authenticate resolves the acting user from the identity header into the
// request context, together with their role for permission checks.
// Unknown or inactive users are rejected before any handler runs.
func Authenticate(users directory.Directory, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(identityHeader)
			if raw == "" {
				respondError(w, http.StatusUnauthorized, "No autenticado")
				return
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "No autenticado")
				return
			}

			user, err := users.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, directory.ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, "No autenticado")
					return
				}
				log.LogAttrs(r.Context(), slog.LevelError, "actor lookup failed",
					logger.UserID(id), logger.Error(err))
				respondError(w, http.StatusInternalServerError, "Error interno")
				return
			}
			if !user.Active {
				respondError(w, http.StatusForbidden, "Cuenta desactivada")
				return
			}

			ctx := withActor(r.Context(), *user)
			ctx = rbac.ContextWithRole(ctx, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on an rbac permission of the actor's
// role.
func RequirePermission(authz rbac.Authorizer, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.CanFromContext(r.Context(), permission); err != nil {
				respondError(w, http.StatusForbidden, "No tiene permisos para esta acción")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
