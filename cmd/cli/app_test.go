package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/reviewdesk/internal/mockapi"
	"github.com/aryan0dhankhar/reviewdesk/internal/repository"
	"github.com/aryan0dhankhar/reviewdesk/internal/view"
	"github.com/aryan0dhankhar/reviewdesk/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		APIBaseURL:           "http://reviewdesk.test",
		APITimeout:           5 * time.Second,
		MockEnabled:          true,
		StorageBackend:       config.StorageMemory,
		ToastDuration:        time.Minute,
		ReplyCollapseDelay:   time.Millisecond,
		SessionCheckInterval: time.Hour,
	}
}

func newTestApp(t *testing.T, storage domain.LocalStorage) (*app, *bytes.Buffer) {
	t.Helper()

	log := logger.New(&bytes.Buffer{}, "error")
	responder, err := mockapi.New(mockapi.Options{Logger: log})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a, err := newApp(context.Background(), testConfig(), out, log, appOptions{
		storage:   storage,
		transport: responder.Transport(nil),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, out
}

func loggedIn(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	a, out := newTestApp(t, repository.NewMemoryLocalStorage())
	require.NoError(t, a.run(context.Background(), []string{"auth", "login", "-email", "manager@example.com", "-password", "secret"}))
	out.Reset()
	return a, out
}

func TestProtectedCommandsRequireLogin(t *testing.T) {
	for _, args := range [][]string{
		{"dashboard"},
		{"reviews"},
		{"analytics"},
		{"reports"},
		{"settings"},
	} {
		t.Run(args[0], func(t *testing.T) {
			a, _ := newTestApp(t, repository.NewMemoryLocalStorage())
			err := a.run(context.Background(), args)
			assert.ErrorIs(t, err, errSignInRequired)
			assert.ErrorContains(t, err, "reviewdesk auth login")
			assert.Equal(t, "/login", a.nav.Current().Route.Path)
		})
	}
}

func TestLoginPersistsSession(t *testing.T) {
	storage := repository.NewMemoryLocalStorage()
	a, out := newTestApp(t, storage)

	err := a.run(context.Background(), []string{"auth", "login", "-email", "manager@example.com", "-password", "secret", "-return", "/analytics"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Logged in as:")
	assert.Contains(t, out.String(), "(/analytics)")

	// a fresh process sees the stored session
	b, out := newTestApp(t, storage)
	require.NoError(t, b.run(context.Background(), []string{"auth", "who"}))
	assert.Contains(t, out.String(), "manager@example.com")
	assert.Contains(t, out.String(), "EXPIRES")
}

func TestLoginRejectsInvalidForm(t *testing.T) {
	a, _ := newTestApp(t, repository.NewMemoryLocalStorage())

	err := a.run(context.Background(), []string{"auth", "login", "-email", "not-an-email", "-password", "secret"})
	require.Error(t, err)
	assert.True(t, view.IsValidation(err))
	assert.False(t, a.session.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"auth", "logout"}))
	assert.Contains(t, out.String(), "✓ Logged out")

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"auth", "who"}))
	assert.Equal(t, "Not logged in\n", out.String())
}

func TestOpenUnknownRouteLandsOnDashboard(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"open", "/nowhere"}))
	assert.Equal(t, "Dashboard (/dashboard)\n", out.String())
}

func TestOpenProtectedRouteWhileSignedOut(t *testing.T) {
	a, out := newTestApp(t, repository.NewMemoryLocalStorage())

	require.NoError(t, a.run(context.Background(), []string{"open", "/reports"}))
	assert.Contains(t, out.String(), "Sign in (/login)")
	assert.Contains(t, out.String(), "Sign in to continue to /reports")
}

func TestDashboard(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"dashboard"}))
	assert.Contains(t, out.String(), "42.5")
	assert.Contains(t, out.String(), "Top stores")
}

func TestReviewsFilter(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"reviews", "list", "-status", "pending"}))
	assert.Contains(t, out.String(), "Showing 8 of 20 reviews (8 pending)")
	assert.Contains(t, out.String(), "rev-001")
	assert.NotContains(t, out.String(), "rev-002")
}

func TestReviewsReply(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"reviews", "reply", "rev-001", "Thanks", "for", "visiting"}))
	assert.Contains(t, out.String(), "✓ Reply sent successfully")

	err := a.run(context.Background(), []string{"reviews", "reply", "rev-999", "hello"})
	assert.ErrorContains(t, err, "rev-999 not found")

	err = a.run(context.Background(), []string{"reviews", "reply", "rev-001", "  "})
	assert.True(t, view.IsValidation(err))
}

func TestAnalytics(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"analytics"}))
	assert.Contains(t, out.String(), "CHANNEL")
	assert.Contains(t, out.String(), "Average rating: 4.20")
	assert.Contains(t, out.String(), "Sun")
}

func TestReportsDownload(t *testing.T) {
	a, out := loggedIn(t)
	dir := t.TempDir()

	require.NoError(t, a.run(context.Background(), []string{"reports", "download", "-o", dir, "CSV"}))
	assert.Contains(t, out.String(), "✓ Downloaded feedback-report.csv")

	data, err := os.ReadFile(filepath.Join(dir, "feedback-report.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	err = a.run(context.Background(), []string{"reports", "download", "-o", dir, "docx"})
	assert.True(t, view.IsValidation(err))
}

func TestReportSchedules(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"reports", "schedules"}))
	assert.Contains(t, out.String(), "FREQUENCY")
}

func TestSettingsEdit(t *testing.T) {
	a, out := loggedIn(t)

	require.NoError(t, a.run(context.Background(), []string{"settings", "set", "-dark-mode=true"}))
	assert.Contains(t, out.String(), "✓ Settings saved successfully")

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"settings", "add-rule", "neutral", "Thanks", "for", "the", "feedback"}))
	assert.Contains(t, out.String(), "Thanks for the feedback")

	err := a.run(context.Background(), []string{"settings", "add-rule", "angry", "Sorry"})
	assert.True(t, view.IsValidation(err))

	err = a.run(context.Background(), []string{"settings", "remove-rule", "rule-404"})
	assert.ErrorIs(t, err, view.ErrRuleNotFound)

	err = a.run(context.Background(), []string{"settings", "set"})
	assert.ErrorContains(t, err, "nothing to change")
}

func TestWatchStopsWithContext(t *testing.T) {
	a, out := loggedIn(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, a.run(ctx, []string{"watch", "-interval", "10ms"}))
	assert.Contains(t, out.String(), "NSS 42.5")
}

func TestWatchStopsWhenSignedOut(t *testing.T) {
	a, _ := loggedIn(t)

	done := make(chan error, 1)
	go func() {
		done <- a.run(context.Background(), []string{"watch", "-interval", "1h"})
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, a.session.Clear(context.Background()))
	a.session.SetAuthenticated(false)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errSignInRequired)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after sign out")
	}
}

func TestUnknownCommand(t *testing.T) {
	a, out := newTestApp(t, repository.NewMemoryLocalStorage())

	err := a.run(context.Background(), []string{"containers"})
	assert.ErrorContains(t, err, "unknown command")
	assert.Contains(t, out.String(), "Usage:")
}
