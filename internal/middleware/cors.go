package middleware

import (
	"net/http"
	"strings"
)

// CORS answers preflights and adds CORS headers. Origins listed explicitly may
// send the session cookie; "*" lets any other origin call without credentials.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	for _, o := range allowOrigins {
		if strings.TrimSpace(o) == "*" {
			allowAll = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if r.Method == http.MethodOptions {
				writeCORSHeaders(w, origin, allowOrigins, allowAll)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			writeCORSHeaders(w, origin, allowOrigins, allowAll)
			next.ServeHTTP(w, r)
		})
	}
}

func writeCORSHeaders(w http.ResponseWriter, origin string, allowOrigins []string, allowAll bool) {
	if origin == "" {
		return
	}

	switch {
	case originAllowed(origin, allowOrigins):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Vary", "Origin")
	case allowAll:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	default:
		return
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Correlation-Id, Idempotency-Key")
}

func originAllowed(origin string, allow []string) bool {
	for _, a := range allow {
		a = strings.TrimSpace(a)
		if a != "*" && strings.EqualFold(a, strings.TrimSpace(origin)) {
			return true
		}
	}
	return false
}
