package view

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/reviewdesk/internal/apiclient"
	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/mockapi"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
)

func newMockAPI(t *testing.T) *apiclient.Client {
	t.Helper()
	r, err := mockapi.New(mockapi.Options{EnableXLSX: true})
	require.NoError(t, err)
	return apiclient.NewClient("http://mock.local", r.Transport(nil), 0)
}

func TestLoginFormValidate(t *testing.T) {
	tests := []struct {
		form  LoginForm
		field string
	}{
		{LoginForm{Email: "admin@reviewdesk.io", Password: "x"}, ""},
		{LoginForm{Password: "x"}, "email"},
		{LoginForm{Email: "not-an-email", Password: "x"}, "email"},
		{LoginForm{Email: "Admin <admin@reviewdesk.io>", Password: "x"}, "email"},
		{LoginForm{Email: "admin@reviewdesk.io", Password: "   "}, "password"},
	}
	for _, tt := range tests {
		err := tt.form.Validate()
		if tt.field == "" {
			assert.NoError(t, err)
			continue
		}
		var v *ValidationError
		require.True(t, errors.As(err, &v), "form %+v", tt.form)
		assert.Equal(t, tt.field, v.Field)
	}
}

func TestNotifierAutoClears(t *testing.T) {
	n := NewNotifier(30 * time.Millisecond)
	n.Show(ToastSuccess, "saved")

	toast, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, Toast{Kind: ToastSuccess, Message: "saved"}, toast)

	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestNotifierReplaceRestartsTimer(t *testing.T) {
	n := NewNotifier(80 * time.Millisecond)
	n.Show(ToastInfo, "first")
	time.Sleep(50 * time.Millisecond)
	n.Show(ToastError, "second")
	time.Sleep(50 * time.Millisecond)

	toast, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", toast.Message)

	n.Dismiss()
	_, ok = n.Current()
	assert.False(t, ok)
}

type gatedDashboardAPI struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedDashboardAPI) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	n := g.calls.Add(1)
	if n == 1 {
		close(g.started)
		<-g.release
		return &domain.DashboardStats{KPIs: domain.KPIs{Volume: 1}}, nil
	}
	return &domain.DashboardStats{KPIs: domain.KPIs{Volume: 2}}, nil
}

func TestDashboardDiscardsSupersededFetch(t *testing.T) {
	api := &gatedDashboardAPI{started: make(chan struct{}), release: make(chan struct{})}
	notifier := NewNotifier(time.Minute)
	d := NewDashboard(api, notifier, nil)

	firstErr := make(chan error, 1)
	go func() { firstErr <- d.Load(context.Background()) }()
	<-api.started

	require.NoError(t, d.Load(context.Background()))
	close(api.release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	stats, ok := d.Stats()
	require.True(t, ok)
	assert.Equal(t, 2, stats.KPIs.Volume)
	assert.False(t, d.Loading())
	_, shown := notifier.Current()
	assert.False(t, shown, "a superseded fetch shows no toast")
}

type failingDashboardAPI struct{}

func (failingDashboardAPI) DashboardStats(context.Context) (*domain.DashboardStats, error) {
	return nil, &apiclient.APIError{Status: 500, Message: "down"}
}

func TestDashboardLoadFailureClearsLoading(t *testing.T) {
	d := NewDashboard(failingDashboardAPI{}, nil, nil)

	err := d.Load(context.Background())
	require.Error(t, err)
	assert.False(t, d.Loading())
	assert.Equal(t, err, d.Err())
	_, ok := d.Stats()
	assert.False(t, ok)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// unavailableAPI answers every call with 503
func unavailableAPI() *apiclient.Client {
	return apiclient.NewClient("http://down.local", roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"error":"maintenance"}`)),
			Request:    r,
		}, nil
	}), 0)
}

func TestLoadFailureShowsErrorToast(t *testing.T) {
	api := unavailableAPI()
	ctx := context.Background()

	loads := map[string]func(n *Notifier) error{
		"dashboard":        func(n *Notifier) error { return NewDashboard(api, n, nil).Load(ctx) },
		"reviews":          func(n *Notifier) error { return NewReviews(api, n, time.Second, nil).Load(ctx) },
		"analytics":        func(n *Notifier) error { return NewAnalytics(api, n, nil).Load(ctx) },
		"report schedules": func(n *Notifier) error { return NewReports(api, n, nil).Load(ctx) },
		"settings":         func(n *Notifier) error { return NewSettings(api, n, nil).Load(ctx) },
	}
	for what, load := range loads {
		t.Run(what, func(t *testing.T) {
			n := NewNotifier(time.Minute)
			require.Error(t, load(n))

			toast, ok := n.Current()
			require.True(t, ok)
			assert.Equal(t, ToastError, toast.Kind)
			assert.True(t, strings.HasPrefix(toast.Message, "Failed to load "+what+":"), toast.Message)
		})
	}
}

func TestDashboardAgainstMock(t *testing.T) {
	d := NewDashboard(newMockAPI(t), nil, nil)
	require.NoError(t, d.Load(context.Background()))

	stats, ok := d.Stats()
	require.True(t, ok)
	assert.InDelta(t, 38.8166, AverageNSS(stats.Charts.NSSTrend), 0.001)
	assert.Zero(t, AverageNSS(nil))
}

func TestAnalyticsAgainstMock(t *testing.T) {
	a := NewAnalytics(newMockAPI(t), nil, nil)
	require.NoError(t, a.Load(context.Background()))
	assert.False(t, a.Loading())

	perf := a.ChannelPerf()
	require.Len(t, perf, 3)
	assert.InDelta(t, 2.8333, AverageSpeed(perf), 0.001)
	assert.InDelta(t, 74.3333, AverageSentiment(perf), 0.001)
	assert.InDelta(t, 4.2, AverageStoreRating(a.Stores()), 0.001)

	heatmap, ok := a.Heatmap()
	require.True(t, ok)
	v, ok := HeatmapValue(heatmap, "Sun", "Morning")
	assert.True(t, ok)
	assert.Equal(t, 75.0, v)
	_, ok = HeatmapValue(heatmap, "Sun", "Night")
	assert.False(t, ok)
}

func TestReportsDownload(t *testing.T) {
	n := NewNotifier(time.Minute)
	r := NewReports(newMockAPI(t), n, nil)
	ctx := context.Background()

	require.NoError(t, r.Load(ctx))
	assert.Len(t, r.Schedules(), 3)

	file, err := r.Download(ctx, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "feedback-report.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	toast, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, ToastSuccess, toast.Kind)

	_, err = r.Download(ctx, "docx")
	assert.True(t, IsValidation(err))
	assert.False(t, r.Downloading())
}

type stubAuth struct{ err error }

func (s stubAuth) Login(context.Context, string, string) (*domain.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.LoginResult{Success: true, Token: "t"}, nil
}

type flagSession struct{ v bool }

func (f *flagSession) IsAuthenticated() bool { return f.v }

func TestLoginPageSubmit(t *testing.T) {
	s := &flagSession{}
	nav := router.NewNavigator(s, nil)
	nav.Navigate(router.PathSettings)

	page := NewLoginPage(stubAuth{err: errors.New("invalid credentials")}, nav, nil)
	loc, err := page.Submit(context.Background(), LoginForm{Email: "a@b.io", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, router.PathLogin, loc.Route.Path)

	_, err = page.Submit(context.Background(), LoginForm{Email: "a@b.io"})
	assert.True(t, IsValidation(err))

	page = NewLoginPage(stubAuth{}, nav, nil)
	s.v = true
	loc, err = page.Submit(context.Background(), LoginForm{Email: "a@b.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, router.PathSettings, loc.Route.Path)
	assert.False(t, page.Submitting())
}
