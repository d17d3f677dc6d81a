package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"wghttp/internal/models"
)

// BearerAuth: Authorization: Bearer <token>. Пустой token — проверка выключена.
func BearerAuth(token string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			const p = "Bearer "
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, p) ||
				subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(auth, p)), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", "Bearer")
				models.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
