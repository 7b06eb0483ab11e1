// Package index owns the current crawl index and its durable snapshot.
//
// The store follows a load-at-startup, replace-on-successful-crawl,
// persist-best-effort discipline. Snapshot writes go to a temp file and are
// renamed into place so a crash mid-write never corrupts the previous copy.
// A failed durable write degrades the store to memory-only for that replace;
// the in-memory index is always updated.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/sasif-infinite/mcp/internal/crawler"
	"github.com/sasif-infinite/mcp/internal/metrics"
)

// Store holds the process-wide current index and its on-disk snapshot.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	current *crawler.Index
}

// NewStore creates a Store persisting to path.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load reads the durable snapshot into memory. Absence or corruption of the
// file yields (nil, false), never an error: a cold start is not a failure.
func (s *Store) Load() (*crawler.Index, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("index snapshot unreadable; starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return nil, false
	}
	var idx crawler.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		s.logger.Warn("index snapshot corrupt; starting empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, false
	}

	s.mu.Lock()
	s.current = &idx
	s.mu.Unlock()
	metrics.SetIndexPages(idx.PageCount())

	s.logger.Info("index snapshot loaded",
		zap.String("path", s.path),
		zap.Int("pages", idx.PageCount()))
	return &idx, true
}

// Replace installs idx as the current index. The durable write is
// best-effort: its failure is returned so the caller can log a warning, but
// the in-memory index is updated unconditionally either way.
//
// Callers must not pass an empty index; a crawl that produced zero pages
// leaves the existing index untouched (the stale-index fallback mechanism).
func (s *Store) Replace(idx *crawler.Index) error {
	if idx == nil || idx.PageCount() == 0 {
		return fmt.Errorf("index: refusing to replace with an empty index")
	}

	writeErr := s.writeSnapshot(idx)

	s.mu.Lock()
	s.current = idx
	s.mu.Unlock()
	metrics.SetIndexPages(idx.PageCount())

	if writeErr != nil {
		metrics.SnapshotWritten(metrics.SnapshotDegraded)
		return fmt.Errorf("index: durable write failed, memory-only: %w", writeErr)
	}
	metrics.SnapshotWritten(metrics.SnapshotOK)
	return nil
}

// Current returns the most recently held index, or (nil, false) if the store
// has never been populated.
func (s *Store) Current() (*crawler.Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// writeSnapshot serializes the index and renames it into place atomically.
func (s *Store) writeSnapshot(idx *crawler.Index) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	payload, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			s.logger.Debug("remove snapshot tmp", zap.Error(rmErr))
		}
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
