package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/reviewdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
)

// SessionRefresher re-checks the stored session
type SessionRefresher interface {
	IsAuthenticated() bool
	Refresh(ctx context.Context) (bool, error)
}

// Navigator is the part of the router the watcher drives
type Navigator interface {
	Current() router.Location
	Navigate(location string) router.Location
}

// SessionWatcher periodically re-checks the session token and sends the
// client back to login once it has expired.
type SessionWatcher struct {
	session  SessionRefresher
	nav      Navigator
	logger   *slog.Logger
	interval time.Duration
}

// NewSessionWatcher creates a new session watcher
func NewSessionWatcher(
	session SessionRefresher,
	nav Navigator,
	logger *slog.Logger,
	interval time.Duration,
) *SessionWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionWatcher{
		session:  session,
		nav:      nav,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the check loop until ctx is cancelled
func (w *SessionWatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("session watcher started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session watcher stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check refreshes the session once. It reports whether the session was
// signed out by this check.
func (w *SessionWatcher) Check(ctx context.Context) bool {
	was := w.session.IsAuthenticated()

	now, err := w.session.Refresh(ctx)
	if err != nil {
		w.logger.Error("failed to refresh session", slog.String("error", err.Error()))
		return false
	}
	if !was || now {
		return false
	}

	metrics.ObserveAuthEvent("expiry", "success")

	current := w.nav.Current().Route
	if current.Protected {
		w.nav.Navigate(router.LoginRedirect(current.Path))
	}
	w.logger.Info("session expired", slog.String("route", current.Path))
	return true
}
