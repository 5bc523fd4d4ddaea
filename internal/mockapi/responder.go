package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aryan0dhankhar/reviewdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/auth"
	"github.com/aryan0dhankhar/reviewdesk/pkg/cache"
)

// Request is the part of an HTTP request a route handler sees
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Reply is a canned HTTP response
type Reply struct {
	Status int
	Header http.Header
	Body   []byte
}

// HandlerFunc builds the reply for a matched route
type HandlerFunc func(req *Request) *Reply

// Route is one row of the responder table
type Route struct {
	Name    string
	Method  string
	Path    string
	Delay   time.Duration
	handler HandlerFunc
}

// Matches reports whether method and path select this route. The path must
// equal the route path or end with it on a segment boundary.
func (rt Route) Matches(method, path string) bool {
	if !strings.EqualFold(method, rt.Method) {
		return false
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path == rt.Path || strings.HasSuffix(path, rt.Path)
}

// Options configures a Responder
type Options struct {
	// DelayScale multiplies every route delay. Zero disables delays.
	DelayScale float64
	Tokens     *auth.TokenManager
	Directory  *auth.Directory
	TokenTTL   time.Duration
	EnableXLSX bool
	Logger     *slog.Logger
}

// Responder answers API requests from an ordered route table. The first
// matching row wins; it keeps no state between calls.
type Responder struct {
	routes     []Route
	fixtures   *Fixtures
	tokens     *auth.TokenManager
	directory  *auth.Directory
	tokenTTL   time.Duration
	enableXLSX bool
	delayScale float64
	logger     *slog.Logger
	reports    *cache.Cache[[]byte]
	sleep      func(ctx context.Context, d time.Duration) error
}

const reportCacheTTL = 10 * time.Minute

// New creates a responder serving the embedded fixtures
func New(opts Options) (*Responder, error) {
	if opts.DelayScale < 0 {
		return nil, fmt.Errorf("delay scale must not be negative")
	}

	fixtures, err := LoadFixtures()
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tokens == nil {
		opts.Tokens = auth.NewTokenManager("", "")
	}
	if opts.Directory == nil {
		opts.Directory = auth.NewDirectory()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}

	r := &Responder{
		fixtures:   fixtures,
		tokens:     opts.Tokens,
		directory:  opts.Directory,
		tokenTTL:   opts.TokenTTL,
		enableXLSX: opts.EnableXLSX,
		delayScale: opts.DelayScale,
		logger:     opts.Logger,
		reports:    cache.New[[]byte](),
		sleep:      sleepContext,
	}
	r.routes = r.table()
	return r, nil
}

// table lists the routes in match order. Longer paths sharing a prefix with
// a shorter one come first.
func (r *Responder) table() []Route {
	return []Route{
		{Name: "auth.login", Method: http.MethodPost, Path: "/api/auth/login", Delay: 800 * time.Millisecond, handler: r.login},
		{Name: "dashboard.stats", Method: http.MethodGet, Path: "/api/dashboard/stats", Delay: 600 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.Dashboard })},
		{Name: "reviews.reply", Method: http.MethodPost, Path: "/api/reviews/reply", Delay: 700 * time.Millisecond, handler: r.reply},
		{Name: "reviews.list", Method: http.MethodGet, Path: "/api/reviews", Delay: 500 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.Reviews })},
		{Name: "analytics.channel_perf", Method: http.MethodGet, Path: "/api/analytics/channel-perf", Delay: 500 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.ChannelPerf })},
		{Name: "analytics.stores", Method: http.MethodGet, Path: "/api/analytics/stores", Delay: 600 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.Stores })},
		{Name: "analytics.heatmap", Method: http.MethodGet, Path: "/api/analytics/heatmap", Delay: 700 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.Heatmap })},
		{Name: "reports.download", Method: http.MethodGet, Path: "/api/reports/download", Delay: 1000 * time.Millisecond, handler: r.download},
		{Name: "reports.schedules", Method: http.MethodGet, Path: "/api/reports/schedules", Delay: 400 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.Schedules })},
		{Name: "settings.get", Method: http.MethodGet, Path: "/api/settings", Delay: 400 * time.Millisecond, handler: r.fixture(func(f *Fixtures) any { return f.Settings })},
		{Name: "settings.save", Method: http.MethodPut, Path: "/api/settings", Delay: 600 * time.Millisecond, handler: r.saveSettings},
	}
}

// Routes returns a copy of the route table in match order
func (r *Responder) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Fixtures returns the data the responder serves
func (r *Responder) Fixtures() *Fixtures {
	return r.fixtures
}

// Match returns the first route selected by method and path
func (r *Responder) Match(method, path string) (Route, bool) {
	for _, rt := range r.routes {
		if rt.Matches(method, path) {
			return rt, true
		}
	}
	return Route{}, false
}

// Respond answers req when a route matches. matched is false when the
// request should go to the next handler untouched. The simulated delay
// is applied before returning and is cut short by ctx.
func (r *Responder) Respond(ctx context.Context, req *http.Request) (reply *Reply, matched bool, err error) {
	rt, ok := r.Match(req.Method, req.URL.Path)
	if !ok {
		metrics.ObservePassthrough(req.Method)
		return nil, false, nil
	}

	var body []byte
	if req.Body != nil {
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, true, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	reply = rt.handler(&Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Body:   body,
	})

	delay := time.Duration(float64(rt.Delay) * r.delayScale)
	if err := r.sleep(ctx, delay); err != nil {
		return nil, true, err
	}

	metrics.ObserveMockResponse(rt.Name, reply.Status, delay)
	r.logger.Debug("mock response",
		slog.String("route", rt.Name),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", reply.Status),
		slog.Duration("delay", delay),
	)

	return reply, true, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jsonReply(status int, v any) *Reply {
	body, err := json.Marshal(v)
	if err != nil {
		return errorReply(http.StatusInternalServerError, "failed to encode response")
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Reply{Status: status, Header: h, Body: body}
}

func errorReply(status int, message string) *Reply {
	body, _ := json.Marshal(map[string]any{"success": false, "message": message})
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Reply{Status: status, Header: h, Body: body}
}

func fileReply(name, contentType string, data []byte) *Reply {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	return &Reply{Status: http.StatusOK, Header: h, Body: bytes.Clone(data)}
}
