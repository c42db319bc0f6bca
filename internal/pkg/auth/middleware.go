// internal/pkg/auth/middleware.go
package auth

import (
	"net/http"

	"solitaire/internal/pkg/logger"
)

// Require 要求请求携带有效身份
func Require(a Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Authenticate(r)
		if err != nil {
			logger.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
			http.Error(w, ErrUnauthenticated.Error(), http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// RequireAdmin 要求调用者具备管理员身份
func RequireAdmin(a Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return Require(a, func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromContext(r.Context())
		if !id.Admin {
			logger.Ctx(r.Context()).Warn().Str("uid", id.UID).Str("path", r.URL.Path).Msg("admin access denied")
			http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
			return
		}
		next(w, r)
	})
}
