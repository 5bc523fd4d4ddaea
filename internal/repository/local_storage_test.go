package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/infrastructure/redis"
)

// exerciseStorage runs the shared contract every backend must honour
func exerciseStorage(t *testing.T, s domain.LocalStorage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, domain.StorageKeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "fresh storage must be empty")

	require.NoError(t, s.SetItem(ctx, domain.StorageKeyToken, "tok-1"))
	require.NoError(t, s.SetItem(ctx, domain.StorageKeyToken, "tok-2"))
	v, ok, err := s.GetItem(ctx, domain.StorageKeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, s.RemoveItem(ctx, domain.StorageKeyToken))
	require.NoError(t, s.RemoveItem(ctx, domain.StorageKeyToken), "removing a missing key is a no-op")
	_, ok, err = s.GetItem(ctx, domain.StorageKeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLocalStorage(t *testing.T) {
	s := NewMemoryLocalStorage()
	exerciseStorage(t, s)
	assert.Zero(t, s.Len())
}

func TestFileLocalStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s, err := NewFileLocalStorage(path, nil)
	require.NoError(t, err)
	exerciseStorage(t, s)

	require.NoError(t, s.SetItem(context.Background(), domain.StorageKeyUser, `{"id":"usr-001"}`))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a second instance sees the persisted value
	again, err := NewFileLocalStorage(path, nil)
	require.NoError(t, err)
	v, ok, err := again.GetItem(context.Background(), domain.StorageKeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"usr-001"}`, v)
}

func TestFileLocalStorageToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileLocalStorage(path, nil)
	require.NoError(t, err)
	_, ok, err := s.GetItem(context.Background(), domain.StorageKeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileLocalStorageRequiresPath(t *testing.T) {
	_, err := NewFileLocalStorage("", nil)
	assert.Error(t, err)
}

func TestRedisLocalStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	s := NewRedisLocalStorage(client, "cli", nil)
	exerciseStorage(t, s)

	require.NoError(t, s.SetItem(context.Background(), domain.StorageKeyToken, "abc"))
	got, err := mr.Get("reviewdesk:storage:cli:authToken")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestPostgresLocalStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresLocalStorage(db, nil)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS local_storage")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureSchema(ctx))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM local_storage WHERE key = $1")).
		WithArgs("authToken").
		WillReturnError(sql.ErrNoRows)
	_, ok, err := s.GetItem(ctx, "authToken")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO local_storage")).
		WithArgs("authToken", "tok").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.SetItem(ctx, "authToken", "tok"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM local_storage WHERE key = $1")).
		WithArgs("authToken").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("tok"))
	v, ok, err := s.GetItem(ctx, "authToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM local_storage WHERE key = $1")).
		WithArgs("authToken").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.RemoveItem(ctx, "authToken"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value")).
		WithArgs("currentUser").
		WillReturnError(errors.New("connection reset"))
	_, _, err = s.GetItem(ctx, "currentUser")
	assert.ErrorContains(t, err, "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}
