// Package store provides persistence backends for the processed-comment
// cache.
//
// This file implements the default flat-file backend. The format is
// newline-separated identifiers, oldest first, with no trailing newline
// after the final entry so a reload never observes a spurious empty
// trailing entry.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Constants for flat-file store configuration
const (
	// DefaultDirPermissions defines the default permissions for cache directories
	DefaultDirPermissions = 0755
	// DefaultFilePermissions defines the default permissions for the cache file
	DefaultFilePermissions = 0644
)

// FileStore persists the cache snapshot as a newline-separated file.
type FileStore struct {
	path string
}

// Compile-time check that FileStore implements CacheStore.
var _ CacheStore = (*FileStore)(nil)

// NewFileStore creates a flat-file cache store at the configured path.
// The parent directory is created immediately so a later Save cannot
// fail on a missing directory.
func NewFileStore(opts ...Option) (*FileStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("FileStore.NewFileStore: cache file path not set")
		return nil, fmt.Errorf("cache file path not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("FileStore.NewFileStore: failed to create cache directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	slog.Debug("FileStore.NewFileStore: cache directory verified", "dir", dir, "path", cfg.DSN)

	return &FileStore{path: cfg.DSN}, nil
}

// Load reads the persisted snapshot. A missing file yields an empty
// snapshot; the file is created lazily by the first Save.
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("FileStore.Load: cache file not found, starting empty", "path", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	lines := strings.Split(string(data), "\n")
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	slog.Debug("FileStore.Load: cache loaded", "path", s.path, "entries", len(ids))
	return ids, nil
}

// Save overwrites the cache file with ids, oldest first. No newline is
// written after the final entry.
func (s *FileStore) Save(ctx context.Context, ids []string) error {
	content := strings.Join(ids, "\n")
	if err := os.WriteFile(s.path, []byte(content), DefaultFilePermissions); err != nil {
		slog.Error("FileStore.Save: failed to write cache file", "error", err, "path", s.path)
		return fmt.Errorf("failed to write cache file %s: %w", s.path, err)
	}
	slog.Debug("FileStore.Save: cache saved", "path", s.path, "entries", len(ids))
	return nil
}

// Close is a no-op for the flat-file store.
func (s *FileStore) Close() error {
	return nil
}
