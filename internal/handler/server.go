package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/reviewdesk/internal/mockapi"
	"github.com/aryan0dhankhar/reviewdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/reviewdesk/internal/observability/tracing"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/audit"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/auth"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/middleware"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/ratelimit"
)

var errNoFixtures = errors.New("mock fixtures not loaded")

// ServerOptions wires the dev server
type ServerOptions struct {
	// Responder answers the API; nil disables the mock
	Responder *mockapi.Responder
	// Upstream receives requests the mock does not answer; nil means 404
	Upstream http.Handler
	// Tokens enables bearer-token checks on API routes when set
	Tokens         *auth.TokenManager
	Limiter        *ratelimit.Limiter
	ClientIPs      *middleware.ClientIPResolver
	Audit          *audit.Logger
	AllowedOrigins []string
	Checks         map[string]Checker
	Logger         *slog.Logger
}

// NewServer builds the dev server handler: probes and metrics on fixed
// routes, everything else through the mock responder and then upstream.
//
// Chain: request ID -> metrics -> tracing -> CORS -> sanitize -> content
// type -> login rate limit -> JWT (optional) -> audit -> mux
func NewServer(opts ServerOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Audit == nil {
		opts.Audit = audit.NewLogger(log)
	}

	fallback := opts.Upstream
	if fallback == nil {
		fallback = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, http.StatusNotFound, "not found")
		})
	}
	api := fallback
	if opts.Responder != nil {
		api = opts.Responder.Middleware(fallback)
	}

	health := NewHealthHandler(opts.Checks, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("GET /readyz", health.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", api)

	var h http.Handler = mux
	h = middleware.AuditMiddleware(opts.Audit)(h)
	if opts.Tokens != nil {
		h = middleware.JWTMiddleware(opts.Tokens, log)(h)
	}
	if opts.Limiter != nil {
		h = middleware.RateLimitMiddleware(opts.Limiter, opts.ClientIPs, log)(h)
	}
	h = middleware.RequireJSONBody(log)(h)
	h = middleware.SanitizeQuery(log)(h)
	h = middleware.CORSMiddleware(opts.AllowedOrigins)(h)
	h = tracing.Handler(h, "reviewdesk-server")
	h = metrics.HTTPMetricsMiddleware(routeLabel(opts.Responder))(h)
	h = middleware.RequestIDMiddleware(log)(h)
	return h
}

// routeLabel names requests by mock route so metrics stay bounded
func routeLabel(responder *mockapi.Responder) metrics.RouteLabeler {
	return func(r *http.Request) string {
		switch r.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			return r.URL.Path
		}
		if responder != nil {
			if rt, ok := responder.Match(r.Method, r.URL.Path); ok {
				return rt.Name
			}
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			return "passthrough"
		}
		return "other"
	}
}

// ResponderCheck is ready once the mock fixtures are loaded
func ResponderCheck(r *mockapi.Responder) Checker {
	return CheckFunc(func(context.Context) error {
		if r.Fixtures() == nil {
			return errNoFixtures
		}
		return nil
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
