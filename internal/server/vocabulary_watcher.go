package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"atscore/internal/errors"
	"atscore/internal/scoring"

	"github.com/fsnotify/fsnotify"
)

// VocabularyWatcher watches the skill vocabulary file and triggers a reload
// after it changes. Events are debounced so editors that write in several
// steps cause a single reload.
type VocabularyWatcher struct {
	mu sync.Mutex

	file        string
	lastModTime time.Time
	lastSize    int64

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	reloadCallback func()
	logger         *errors.Logger

	running bool
}

// NewVocabularyWatcher creates a watcher for file
func NewVocabularyWatcher(file string, debounceDelay time.Duration, reloadCallback func(), logger *errors.Logger) *VocabularyWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	if logger == nil {
		logger = errors.Discard()
	}

	return &VocabularyWatcher{
		file:           filepath.Clean(file),
		debounceDelay:  debounceDelay,
		stopChan:       make(chan struct{}),
		reloadChan:     make(chan struct{}, 1),
		reloadCallback: reloadCallback,
		logger:         logger,
	}
}

// Start begins watching the vocabulary file
func (vw *VocabularyWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if vw.running {
		return fmt.Errorf("vocabulary watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic replace-by-rename is seen too.
	dir := filepath.Dir(vw.file)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			vw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	vw.fsWatcher = watcher
	vw.hasChanged()

	vw.running = true
	go vw.watchLoop()

	vw.logger.Info("Vocabulary file watcher started",
		"file", vw.file,
		"debounce_delay", vw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (vw *VocabularyWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if !vw.running {
		return nil
	}

	close(vw.stopChan)
	if vw.debounceTimer != nil {
		vw.debounceTimer.Stop()
	}
	vw.running = false

	if err := vw.fsWatcher.Close(); err != nil {
		vw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	vw.logger.Info("Vocabulary file watcher stopped")
	return nil
}

func (vw *VocabularyWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-vw.fsWatcher.Events:
			if !ok {
				return
			}
			if vw.shouldProcessEvent(event) {
				vw.scheduleReload()
			}

		case err, ok := <-vw.fsWatcher.Errors:
			if !ok {
				return
			}
			vw.logger.LogError(err, "File watcher error")

		case <-vw.reloadChan:
			if vw.hasChanged() {
				vw.logger.Info("Vocabulary file changed, triggering reload", "file", vw.file)
				vw.reloadCallback()
			}

		case <-vw.stopChan:
			return
		}
	}
}

func (vw *VocabularyWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != vw.file {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasChanged compares the file's size and modification time with the last
// values seen. A missing file is not a change; the old vocabulary stays.
func (vw *VocabularyWatcher) hasChanged() bool {
	stat, err := os.Stat(vw.file)
	if err != nil {
		return false
	}
	if stat.ModTime().Equal(vw.lastModTime) && stat.Size() == vw.lastSize {
		return false
	}
	vw.lastModTime = stat.ModTime()
	vw.lastSize = stat.Size()
	return true
}

func (vw *VocabularyWatcher) scheduleReload() {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if vw.debounceTimer != nil {
		vw.debounceTimer.Stop()
	}
	vw.debounceTimer = time.AfterFunc(vw.debounceDelay, func() {
		select {
		case vw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (vw *VocabularyWatcher) IsRunning() bool {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	return vw.running
}

// File returns the watched path
func (vw *VocabularyWatcher) File() string {
	return vw.file
}

// reloadVocabulary rebuilds the engine around a freshly loaded vocabulary and
// swaps it in. On failure the previous engine keeps serving.
func (s *Server) reloadVocabulary() {
	ctx := context.Background()

	vocab, err := scoring.LoadVocabulary(s.AppConfig.Scoring.Vocabulary, s.Logger)
	if err != nil {
		s.Logger.LogError(err, "Failed to reload skill vocabulary")
		s.metrics.RecordVocabularyReload(ctx, false)
		return
	}

	next, err := s.Engine().WithVocabulary(vocab)
	if err != nil {
		s.Logger.LogError(err, "Failed to rebuild scoring engine")
		s.metrics.RecordVocabularyReload(ctx, false)
		return
	}

	s.engine.Store(next)
	s.reloads.Add(1)
	s.metrics.RecordVocabularyReload(ctx, true)
	s.Logger.Info("Skill vocabulary reloaded", "terms", vocab.Len())
}
