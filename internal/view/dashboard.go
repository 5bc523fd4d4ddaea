package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// DashboardAPI is the backend call used by the dashboard
type DashboardAPI interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// Dashboard shows headline KPIs and chart series
type Dashboard struct {
	api      DashboardAPI
	notifier *Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	gen     generation
	loading bool
	stats   *domain.DashboardStats
	err     error
}

func NewDashboard(api DashboardAPI, notifier *Notifier, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	return &Dashboard{api: api, notifier: notifier, logger: logger}
}

// Load fetches the stats. A result arriving after a newer Load started is
// dropped and ErrSuperseded returned.
func (d *Dashboard) Load(ctx context.Context) (err error) {
	defer func() {
		observeFetch("dashboard", err)
		reportFetchError(d.logger, d.notifier, "dashboard", "dashboard", err)
	}()

	d.mu.Lock()
	id := d.gen.next()
	d.loading = true
	d.mu.Unlock()

	stats, err := d.api.DashboardStats(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.gen.current(id) {
		return ErrSuperseded
	}
	d.loading = false
	d.err = err
	if err != nil {
		return err
	}
	d.stats = stats
	return nil
}

// Stats returns the loaded stats
func (d *Dashboard) Stats() (domain.DashboardStats, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stats == nil {
		return domain.DashboardStats{}, false
	}
	return *d.stats, true
}

func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Err is the error of the last completed fetch
func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// AverageNSS is the mean of the NSS trend
func AverageNSS(trend []domain.TrendPoint) float64 {
	return Average(trend, func(p domain.TrendPoint) float64 { return p.Value })
}

// Average is the mean of value over items, zero for an empty slice
func Average[T any](items []T, value func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += value(it)
	}
	return sum / float64(len(items))
}
