package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/repository"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/auth"
	"github.com/aryan0dhankhar/reviewdesk/internal/session"
)

func TestCheckSignsOutExpiredSession(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryLocalStorage()

	user := domain.UserInfo{ID: "usr-001", Email: "admin@reviewdesk.io"}
	token, err := auth.NewTokenManager("s", "").GenerateToken(user, time.Hour)
	require.NoError(t, err)
	require.NoError(t, storage.SetItem(ctx, domain.StorageKeyToken, token))

	clock := time.Now()
	store, err := session.New(ctx, storage, nil, session.WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	require.True(t, store.IsAuthenticated())

	nav := router.NewNavigator(store, nil)
	nav.Navigate(router.PathReviews)
	w := NewSessionWatcher(store, nav, nil, time.Minute)

	assert.False(t, w.Check(ctx))
	assert.Equal(t, router.PathReviews, nav.Current().Route.Path)

	clock = clock.Add(2 * time.Hour)
	assert.True(t, w.Check(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Zero(t, storage.Len())

	loc := nav.Current()
	assert.Equal(t, router.PathLogin, loc.Route.Path)
	assert.Equal(t, router.PathReviews, loc.ReturnURL)

	assert.False(t, w.Check(ctx))
}

func TestStartStopsOnCancel(t *testing.T) {
	store, err := session.New(context.Background(), repository.NewMemoryLocalStorage(), nil)
	require.NoError(t, err)
	w := NewSessionWatcher(store, router.NewNavigator(store, nil), nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
