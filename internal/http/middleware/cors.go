package middleware

import (
	"net/http"
	"strings"
)

// PublicCORS opens an endpoint to any origin and answers preflights with 200.
func PublicCORS(methods ...string) func(http.Handler) http.Handler {
	allow := strings.Join(append(methods, http.MethodOptions), ",")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allow)
			h.Set("Access-Control-Allow-Headers", "X-Requested-With, Accept, Content-Type, Content-Length")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
