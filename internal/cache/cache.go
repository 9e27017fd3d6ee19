// Package cache keeps the last successfully fetched results on disk so a
// restarted server can serve them while the upstream store is unreachable.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/projectconfig"
)

const fileExt = ".json.gz"

// Cache stores result snapshots as gzipped JSON, one file per source.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key identifies the snapshot of one source configuration. Credentials in
// the DSN are part of the hash, never of the file name.
func Key(src projectconfig.SourceConfig) string {
	h := sha256.New()
	for _, s := range []string{src.Kind, src.Path, src.DSN, src.View, src.URL, src.AccountURL, src.Container, src.Blob} {
		writeString(h, s)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves the cached results for key if they exist.
func (c *Cache) Get(key string) ([]models.EvaluationResult, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.cachePath(key))
	if err != nil {
		return nil, false
	}
	defer f.Close() //nolint:errcheck

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer zr.Close() //nolint:errcheck

	var results []models.EvaluationResult
	if err := json.NewDecoder(zr).Decode(&results); err != nil {
		// Corrupt entry, treat as miss
		return nil, false
	}
	return results, true
}

// Put stores results under key, replacing any previous snapshot atomically.
func (c *Cache) Put(key string, results []models.EvaluationResult) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	zw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(results); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.cachePath(key)); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached snapshots
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Only remove a directory that holds nothing but snapshots.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), fileExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

// writeString writes a length-prefixed string so adjacent fields cannot run
// together.
func writeString(w io.Writer, s string) {
	fmt.Fprintf(w, "%d:%s;", len(s), s) //nolint:errcheck
}
