package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/sirupsen/logrus"
)

// NewPagesHandler serves everything outside /api. Pages are rendered by a
// separate frontend; without one configured the gateway answers 404.
func NewPagesHandler(frontendURL string, logger *logrus.Logger) http.Handler {
	if frontendURL == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteUpstreamError(w, r, http.StatusNotFound, "not found")
		})
	}

	target, err := url.Parse(frontendURL)
	if err != nil || target.Host == "" {
		logger.WithField("frontend_url", frontendURL).Fatal("invalid frontend url")
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WithError(err).WithField("path", r.URL.Path).Warn("frontend unreachable")
			WriteUpstreamError(w, r, http.StatusBadGateway, "frontend unavailable")
		},
	}
	return proxy
}
