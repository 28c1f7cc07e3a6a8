package server

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"atscore/internal/config"
	"atscore/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVocabulary(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
}

func TestVocabularyWatcherTriggersReload(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vocabulary.yaml")
	writeVocabulary(t, file, "skills:\n  - golang\n")

	var reloads atomic.Int32
	vw := NewVocabularyWatcher(file, 20*time.Millisecond, func() { reloads.Add(1) }, nil)
	require.NoError(t, vw.Start())
	t.Cleanup(func() { _ = vw.Stop() })

	assert.True(t, vw.IsRunning())
	assert.Error(t, vw.Start())

	writeVocabulary(t, file, "skills:\n  - golang\n  - kubernetes\n")

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	before := reloads.Load()
	writeVocabulary(t, filepath.Join(dir, "other.yaml"), "skills: []\n")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, reloads.Load())
}

func TestVocabularyWatcherStop(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vocabulary.yaml")
	writeVocabulary(t, file, "skills:\n  - golang\n")

	vw := NewVocabularyWatcher(file, 0, func() {}, nil)
	require.NoError(t, vw.Start())
	require.NoError(t, vw.Stop())
	require.NoError(t, vw.Stop())
	assert.False(t, vw.IsRunning())
	assert.Equal(t, file, vw.File())
}

func TestVocabularyWatcherMissingDirectory(t *testing.T) {
	vw := NewVocabularyWatcher(filepath.Join(t.TempDir(), "missing", "vocabulary.yaml"), 0, func() {}, nil)
	assert.Error(t, vw.Start())
	assert.False(t, vw.IsRunning())
}

func TestReloadVocabularySwapsEngine(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vocabulary.yaml")
	writeVocabulary(t, file, "skills:\n  - golang\n")

	cfg := &config.Config{}
	cfg.Scoring.Vocabulary.File = file

	s := NewServer(cfg, ServerConfig{}, nil)
	eng, err := scoring.NewEngine(scoring.Options{})
	require.NoError(t, err)
	s.SetEngine(eng)

	before := s.Engine()
	s.reloadVocabulary()

	after := s.Engine()
	require.NotSame(t, before, after)
	assert.Equal(t, 1, after.Vocabulary().Len())
	assert.Equal(t, int64(1), s.reloads.Load())

	// The previous snapshot is untouched.
	assert.Greater(t, before.Vocabulary().Len(), 1)
}

func TestReloadVocabularyKeepsEngineOnError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vocabulary.yaml")
	writeVocabulary(t, file, "skills: [unterminated\n")

	cfg := &config.Config{}
	cfg.Scoring.Vocabulary.File = file

	s := NewServer(cfg, ServerConfig{}, nil)
	eng, err := scoring.NewEngine(scoring.Options{})
	require.NoError(t, err)
	s.SetEngine(eng)

	s.reloadVocabulary()

	assert.Same(t, eng, s.Engine())
	assert.Zero(t, s.reloads.Load())
}
