package directory

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KilimcininKorOglu/dirlite/internal/logging"
)

// WatcherConfig holds cached store configuration.
type WatcherConfig struct {
	FilePath     string
	PollInterval time.Duration // Default: 1s
	Debounce     time.Duration // Default: 200ms
	Logger       logging.Logger
	// OnReload, if set, is called after every successful reload with the
	// new record count.
	OnReload func(records int)
}

// CachedStore serves records from an in-memory snapshot of the records
// file and polls the file for changes. A reload builds a new snapshot and
// swaps it in atomically; snapshots already handed to searches are never
// modified.
type CachedStore struct {
	filePath     string
	pollInterval time.Duration
	debounce     time.Duration
	logger       logging.Logger
	onReload     func(records int)

	snapshot    atomic.Pointer[[]Record]
	lastModTime time.Time
	lastSize    int64

	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.Mutex
	running   bool
}

// NewCachedStore loads the records file and returns a store serving it.
// Call Start to begin watching for changes.
func NewCachedStore(cfg WatcherConfig) (*CachedStore, error) {
	if cfg.FilePath == "" {
		return nil, ErrMissingRecordsFile
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	// Get initial file stats
	info, err := os.Stat(cfg.FilePath)
	if err != nil {
		return nil, err
	}

	records, err := LoadFile(cfg.FilePath)
	if err != nil {
		return nil, err
	}

	s := &CachedStore{
		filePath:     cfg.FilePath,
		pollInterval: pollInterval,
		debounce:     debounce,
		logger:       logger,
		onReload:     cfg.OnReload,
		lastModTime:  info.ModTime(),
		lastSize:     info.Size(),
		stopCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
	}
	s.snapshot.Store(&records)
	return s, nil
}

// Records returns the current snapshot.
func (s *CachedStore) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return *s.snapshot.Load(), nil
}

// Start begins watching the records file for changes.
func (s *CachedStore) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.watchLoop()
}

// Stop stops watching the records file. A stopped store keeps serving its
// last snapshot and cannot be restarted.
func (s *CachedStore) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.stoppedCh
}

// IsRunning returns true if the watcher is running.
func (s *CachedStore) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// watchLoop is the main polling loop.
func (s *CachedStore) watchLoop() {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var pendingReload bool
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-s.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-ticker.C:
			changed, err := s.checkFileChanged()
			if err != nil {
				s.logger.Warn("records file stat failed", "path", s.filePath, "error", err)
				continue
			}

			if changed {
				pendingReload = true
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.NewTimer(s.debounce)
				debounceCh = debounceTimer.C
			}

		case <-debounceCh:
			if pendingReload {
				s.reload()
				pendingReload = false
			}
			debounceTimer = nil
			debounceCh = nil
		}
	}
}

// checkFileChanged checks if the records file has been modified.
func (s *CachedStore) checkFileChanged() (bool, error) {
	info, err := os.Stat(s.filePath)
	if err != nil {
		return false, err
	}

	modTime := info.ModTime()
	size := info.Size()

	if modTime != s.lastModTime || size != s.lastSize {
		s.lastModTime = modTime
		s.lastSize = size
		return true, nil
	}

	return false, nil
}

// reload replaces the snapshot. On failure the previous snapshot stays.
func (s *CachedStore) reload() {
	records, err := LoadFile(s.filePath)
	if err != nil {
		s.logger.Error("records reload failed", "path", s.filePath, "error", err)
		return
	}

	s.snapshot.Store(&records)
	s.logger.Info("records reloaded", "path", s.filePath, "records", len(records))

	if s.onReload != nil {
		s.onReload(len(records))
	}
}
