package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyAuth requires X-API-Key to match validKey. An empty validKey turns
// the check off so local setups work without a key.
func APIKeyAuth(validKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validKey == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get("X-API-Key")

			if clientKey == "" || subtle.ConstantTimeCompare([]byte(clientKey), []byte(validKey)) != 1 {
				http.Error(w, "Unauthorized: Invalid or missing API Key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
