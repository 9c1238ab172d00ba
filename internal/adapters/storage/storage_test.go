package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	local, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	stores := map[string]FileStorage{
		"local":  local,
		"memory": NewMemoryStorage(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Store(ctx, "backups/a.db", []byte("first")))
			require.NoError(t, store.Store(ctx, "backups/b.db", []byte("second")))
			require.NoError(t, store.Store(ctx, "other/c.db", []byte("third")))

			err := store.Store(ctx, "backups/a.db", []byte("again"))
			assert.ErrorIs(t, err, ErrFileAlreadyExists)

			data, err := store.Retrieve(ctx, "backups/a.db")
			require.NoError(t, err)
			assert.Equal(t, "first", string(data))

			files, err := store.List(ctx, "backups/")
			require.NoError(t, err)
			require.Len(t, files, 2)
			assert.Equal(t, "backups/a.db", files[0].Key)
			assert.Equal(t, int64(5), files[0].Size)
			assert.Equal(t, "backups/b.db", files[1].Key)

			require.NoError(t, store.Delete(ctx, "backups/a.db"))
			_, err = store.Retrieve(ctx, "backups/a.db")
			assert.True(t, IsNotFound(err))
			assert.True(t, IsNotFound(store.Delete(ctx, "backups/a.db")))
		})
	}
}

func TestLocalFileStorage_RejectsUnsafeKeys(t *testing.T) {
	store, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../escape", `dir\file`} {
		err := store.Store(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

// flakyStorage fails the first failures calls with a retryable error
type flakyStorage struct {
	FileStorage
	failures int
	calls    int
}

func (f *flakyStorage) Store(ctx context.Context, key string, data []byte) error {
	f.calls++
	if f.calls <= f.failures {
		return newStorageError("Store", key, errors.New("disk busy"), true)
	}
	return f.FileStorage.Store(ctx, key, data)
}

func TestRetryableFileStorage(t *testing.T) {
	fast := &RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}

	flaky := &flakyStorage{FileStorage: NewMemoryStorage(), failures: 2}
	require.NoError(t, NewRetryableFileStorage(flaky, fast).Store(context.Background(), "k", []byte("v")))
	assert.Equal(t, 3, flaky.calls)

	flaky = &flakyStorage{FileStorage: NewMemoryStorage(), failures: 5}
	err := NewRetryableFileStorage(flaky, fast).Store(context.Background(), "k", []byte("v"))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 3, flaky.calls)

	// non-retryable errors are returned at once
	inner := NewMemoryStorage()
	require.NoError(t, inner.Store(context.Background(), "k", []byte("v")))
	counting := &flakyStorage{FileStorage: inner}
	err = NewRetryableFileStorage(counting, fast).Store(context.Background(), "k", []byte("v"))
	assert.ErrorIs(t, err, ErrFileAlreadyExists)
	assert.Equal(t, 1, counting.calls)
}

func TestNew(t *testing.T) {
	store, err := New("memory", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, store)

	store, err = New("local", t.TempDir(), DefaultRetryConfig())
	require.NoError(t, err)
	assert.IsType(t, &RetryableFileStorage{}, store)

	_, err = New("s3", "", nil)
	assert.Error(t, err)
}
