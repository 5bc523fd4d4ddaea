package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/aryan0dhankhar/reviewdesk/internal/observability/tracing"
	"github.com/aryan0dhankhar/reviewdesk/internal/reliability/circuitbreaker"
)

// errUpstreamOpen is reported by the readiness check while the breaker is open
var errUpstreamOpen = errors.New("upstream circuit open")

// NewUpstreamBreaker returns the breaker guarding the upstream proxy
func NewUpstreamBreaker(logger *slog.Logger) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second,
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			logger.Warn("upstream circuit state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}),
	)
}

// NewUpstreamProxy forwards requests the mock does not answer to a real
// backend. Upstream 5xx responses and transport errors count against the
// breaker; while it is open requests fail fast with 503.
func NewUpstreamProxy(rawURL string, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) (http.Handler, Checker, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, nil, fmt.Errorf("invalid upstream url %q", rawURL)
	}
	if breaker == nil {
		breaker = NewUpstreamBreaker(logger)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = tracing.Transport(nil)
	proxy.ModifyResponse = func(resp *http.Response) error {
		if resp.StatusCode >= http.StatusInternalServerError {
			breaker.RecordFailure()
		} else {
			breaker.RecordSuccess()
		}
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		breaker.RecordFailure()
		logger.Error("upstream request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSONError(w, http.StatusBadGateway, "upstream unavailable")
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !breaker.AllowRequest() {
			writeJSONError(w, http.StatusServiceUnavailable, "upstream unavailable")
			return
		}
		proxy.ServeHTTP(w, r)
	})

	check := CheckFunc(func(ctx context.Context) error {
		if breaker.GetState() == circuitbreaker.StateOpen {
			return errUpstreamOpen
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.String(), nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		return nil
	})

	return handler, check, nil
}
