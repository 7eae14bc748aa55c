package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie holds the backend bearer token issued at login.
const AccessTokenCookie = "access_token"

// ProtectedPaths are the page prefixes that require a session.
var ProtectedPaths = []string{"/welcome", "/dashboard", "/volunteering", "/inventory", "/pos", "/cart"}

// AccessToken copies the access_token cookie, if any, into the request context.
func AccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := tokenFromCookie(r); token != "" {
			r = r.WithContext(WithAccessToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

type GateOptions struct {
	LoginPath string
	// RejectExpired treats a JWT whose exp claim has passed as no session.
	// The signature is not checked here; the backend remains the verifier.
	RejectExpired bool
	Now           func() time.Time
}

// RequireSession redirects page requests under ProtectedPaths to the login page
// when the caller has no session cookie.
func RequireSession(opts GateOptions) func(http.Handler) http.Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsProtectedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := tokenFromCookie(r)
			if token == "" || (opts.RejectExpired && tokenExpired(token, opts.Now())) {
				http.Redirect(w, r, opts.LoginPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IsProtectedPath(path string) bool {
	for _, p := range ProtectedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func tokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

// tokenExpired reports false for tokens that are not JWTs or carry no exp.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
