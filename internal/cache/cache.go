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

	"github.com/beaconlabs/beacon/internal/backend"
	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/promptgen"
)

// Cache stores completed audit outcomes keyed by their inputs, so repeat
// runs against an unchanged profile skip the backend calls entirely.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a cache rooted at dir. An empty dir disables caching.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key generates a cache key for one audit run. The key covers:
// - the full brand profile
// - the prompt matrix configuration
// - each backend's kind, name, and model
// Changing any of these invalidates the cached outcome. API keys are
// deliberately excluded so key rotation does not bust the cache.
func Key(profile *models.BrandProfile, cfg promptgen.Config, backends []backend.Settings) (string, error) {
	h := sha256.New()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("marshaling profile: %w", err)
	}
	if _, err := h.Write(profileJSON); err != nil {
		return "", err
	}

	if err := writeInt(h, cfg.TargetTotal); err != nil {
		return "", err
	}
	dims := make([]string, 0, len(cfg.Weights))
	for dim := range cfg.Weights {
		dims = append(dims, string(dim))
	}
	sort.Strings(dims)
	for _, dim := range dims {
		if err := writeString(h, dim); err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(h, "%g\x00", cfg.Weights[models.Dimension(dim)]); err != nil {
			return "", err
		}
	}

	// Sort backends so configuration order does not affect the key.
	sorted := make([]backend.Settings, len(backends))
	copy(sorted, backends)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, s := range sorted {
		for _, field := range []string{s.Kind, s.Name, s.Model, s.BaseURL} {
			if err := writeString(h, field); err != nil {
				return "", err
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached audit outcome if one exists.
func (c *Cache) Get(key string) (*models.AuditOutcome, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	var outcome models.AuditOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &outcome, true
}

// Put stores an audit outcome in the cache.
func (c *Cache) Put(key string, outcome *models.AuditOutcome) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: only remove a directory that looks like ours.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	if len(entries) > 0 {
		hasValidCache := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			if filepath.Ext(entry.Name()) == ".json" {
				hasValidCache = true
			} else {
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key.
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents hash collisions between adjacent fields.
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeInt(w io.Writer, i int) error {
	_, err := fmt.Fprintf(w, "%d\x00", i)
	return err
}
