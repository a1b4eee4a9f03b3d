// Package cache stores judge verdicts on disk so repeated runs over the same
// agent output do not pay for the same judgment twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/agentsleague/prepeval/internal/models"
)

// Cache provides caching for metric verdicts
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// CacheKey generates a unique cache key for one judgment. The key covers the
// judge model, the metric and every input value.
func CacheKey(judgeModel, metric string, inputs map[string]string) (string, error) {
	h := sha256.New()

	if err := writeString(h, judgeModel); err != nil {
		return "", err
	}
	if err := writeString(h, metric); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeString(h, k); err != nil {
			return "", err
		}
		if err := writeString(h, inputs[k]); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached verdict if it exists
func (c *Cache) Get(key string) (*models.MetricEvaluationResult, bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	var result models.MetricEvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &result, true
}

// Put stores a verdict in the cache
func (c *Cache) Put(key string, result *models.MetricEvaluationResult) error {
	if c == nil || c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling verdict: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached verdicts
func (c *Cache) Clear() error {
	if c == nil || c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Refuse to delete anything that does not look like a verdict cache.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents "ab"+"c" colliding with "a"+"bc".
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
