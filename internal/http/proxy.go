package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	stdhttputil "net/http/httputil"
	"net/url"

	"github.com/svit-erp/portalgate/internal/httputil"
)

// NewUpstreamProxy returns a reverse proxy to the portal application at rawURL. Requests keep
// their path and query; the X-Forwarded-* headers are rebuilt from the client connection.
// Upstream failures answer 502.
func NewUpstreamProxy(rawURL string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme must be http or https", rawURL)
	}
	if target.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q: missing host", rawURL)
	}

	return &stdhttputil.ReverseProxy{
		Rewrite: func(r *stdhttputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			r.Out.Host = r.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("upstream request failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
			writeJSON(w, http.StatusBadGateway, httputil.ErrorResponse{
				Error:   "bad_gateway",
				Message: "The portal application is unavailable",
			})
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
