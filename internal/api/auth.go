package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authAdmin guards write routes with the static admin bearer token.
func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		got := strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || got == "" {
			UnauthorizedError(w, r, "Missing bearer token")
			return
		}
		// constant-time compare
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			ForbiddenError(w, r, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}
