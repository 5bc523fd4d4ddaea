package view

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// AnalyticsAPI is the backend calls used by the analytics view
type AnalyticsAPI interface {
	ChannelPerformance(ctx context.Context) ([]domain.ChannelPerf, error)
	Stores(ctx context.Context) ([]domain.StoreRecord, error)
	Heatmap(ctx context.Context) (*domain.Heatmap, error)
}

// Analytics shows channel performance, the store league and the heatmap.
// Each resource is fetched and superseded independently.
type Analytics struct {
	api      AnalyticsAPI
	notifier *Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	perfGen     generation
	storesGen   generation
	heatmapGen  generation
	pending     int
	channelPerf []domain.ChannelPerf
	stores      []domain.StoreRecord
	heatmap     *domain.Heatmap
}

func NewAnalytics(api AnalyticsAPI, notifier *Notifier, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	return &Analytics{api: api, notifier: notifier, logger: logger}
}

// Load fetches the three analytics resources concurrently and returns the
// first error. Resources that did load are kept.
func (a *Analytics) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return a.loadChannelPerf(ctx) })
	g.Go(func() error { return a.loadStores(ctx) })
	g.Go(func() error { return a.loadHeatmap(ctx) })
	return g.Wait()
}

func (a *Analytics) begin(gen *generation) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending++
	return gen.next()
}

// finish runs under the lock; store is only called for the latest fetch
// that succeeded.
func (a *Analytics) finish(name string, gen *generation, id uint64, err error, store func()) error {
	a.mu.Lock()
	a.pending--
	switch {
	case !gen.current(id):
		err = ErrSuperseded
	case err == nil:
		store()
	}
	a.mu.Unlock()

	observeFetch(name, err)
	reportFetchError(a.logger, a.notifier, name, "analytics", err)
	return err
}

func (a *Analytics) loadChannelPerf(ctx context.Context) error {
	id := a.begin(&a.perfGen)
	perf, err := a.api.ChannelPerformance(ctx)
	return a.finish("analytics.channel_perf", &a.perfGen, id, err, func() { a.channelPerf = perf })
}

func (a *Analytics) loadStores(ctx context.Context) error {
	id := a.begin(&a.storesGen)
	stores, err := a.api.Stores(ctx)
	return a.finish("analytics.stores", &a.storesGen, id, err, func() { a.stores = stores })
}

func (a *Analytics) loadHeatmap(ctx context.Context) error {
	id := a.begin(&a.heatmapGen)
	heatmap, err := a.api.Heatmap(ctx)
	return a.finish("analytics.heatmap", &a.heatmapGen, id, err, func() { a.heatmap = heatmap })
}

// Loading reports whether any fetch is in flight
func (a *Analytics) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending > 0
}

func (a *Analytics) ChannelPerf() []domain.ChannelPerf {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ChannelPerf(nil), a.channelPerf...)
}

func (a *Analytics) Stores() []domain.StoreRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.StoreRecord(nil), a.stores...)
}

func (a *Analytics) Heatmap() (domain.Heatmap, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.heatmap == nil {
		return domain.Heatmap{}, false
	}
	return *a.heatmap, true
}

func AverageSpeed(perf []domain.ChannelPerf) float64 {
	return Average(perf, func(p domain.ChannelPerf) float64 { return p.Speed })
}

func AverageSentiment(perf []domain.ChannelPerf) float64 {
	return Average(perf, func(p domain.ChannelPerf) float64 { return p.Sentiment })
}

func AverageStoreRating(stores []domain.StoreRecord) float64 {
	return Average(stores, func(s domain.StoreRecord) float64 { return s.Rating })
}

// HeatmapValue looks up a cell, reporting false when absent
func HeatmapValue(h domain.Heatmap, day, slot string) (float64, bool) {
	for _, c := range h.Data {
		if c.Day == day && c.TimeSlot == slot {
			return c.Value, true
		}
	}
	return 0, false
}
