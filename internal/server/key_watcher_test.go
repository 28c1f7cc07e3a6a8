package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"atscore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSecretSource serves a single mutable secret
type fakeSecretSource struct {
	mu     sync.Mutex
	secret *config.VaultSecret
	err    error
}

func (f *fakeSecretSource) GetSecretV2(path string) (*config.VaultSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secret, f.err
}

func (f *fakeSecretSource) set(secret *config.VaultSecret) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secret = secret
}

func TestAPIKeyWatcherPollRotatesOnNewVersion(t *testing.T) {
	source := &fakeSecretSource{secret: &config.VaultSecret{
		Data:    map[string]any{"keys": "alpha, beta"},
		Version: 1,
	}}

	var rotated [][]string
	kw := NewAPIKeyWatcher(source, "secret/data/atscore/api-keys", time.Minute, func(keys []string) {
		rotated = append(rotated, keys)
	}, nil)

	require.NoError(t, kw.poll())
	require.Len(t, rotated, 1)
	assert.Equal(t, []string{"alpha", "beta"}, rotated[0])

	// Same version is a no-op.
	require.NoError(t, kw.poll())
	assert.Len(t, rotated, 1)

	source.set(&config.VaultSecret{
		Data:    map[string]any{"keys": []any{"gamma"}},
		Version: 2,
	})
	require.NoError(t, kw.poll())
	require.Len(t, rotated, 2)
	assert.Equal(t, []string{"gamma"}, rotated[1])

	status := kw.Status()
	assert.Equal(t, int64(2), status["last_version"])
	assert.Equal(t, 2, status["rotations"])
	assert.Equal(t, false, status["running"])
	assert.Equal(t, "1m0s", status["poll_interval"])
}

func TestAPIKeyWatcherPollErrors(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSecretSource
		want   string
	}{
		{
			name:   "read failure",
			source: &fakeSecretSource{err: fmt.Errorf("permission denied")},
			want:   "failed to read secret",
		},
		{
			name:   "missing secret",
			source: &fakeSecretSource{},
			want:   "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			kw := NewAPIKeyWatcher(tt.source, "secret/data/missing", time.Minute, func([]string) { called = true }, nil)

			err := kw.poll()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.False(t, called)
		})
	}
}

func TestAPIKeyWatcherStartStop(t *testing.T) {
	source := &fakeSecretSource{secret: &config.VaultSecret{
		Data:    map[string]any{"keys": "k1"},
		Version: 3,
	}}

	got := make(chan []string, 1)
	kw := NewAPIKeyWatcher(source, "secret/data/keys", 10*time.Millisecond, func(keys []string) {
		select {
		case got <- keys:
		default:
		}
	}, nil)

	require.NoError(t, kw.Start())
	assert.Error(t, kw.Start())

	select {
	case keys := <-got:
		assert.Equal(t, []string{"k1"}, keys)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never rotated keys")
	}

	require.NoError(t, kw.Stop())
	require.NoError(t, kw.Stop())
	assert.Equal(t, false, kw.Status()["running"])
}
