// Package projectconfig provides the ProjectConfig struct and loader for
// .beacon.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/beaconlabs/beacon/internal/backend"
)

// ConfigFileName is the project configuration file searched for by Load.
const ConfigFileName = ".beacon.yaml"

// Default values for project configuration. These are the single source of
// truth. New() references them and no other code should duplicate them.
const (
	DefaultProfilePath = "brand.yaml"
	DefaultResultsDir  = "results/"

	DefaultConcurrency    = 5
	DefaultTimeoutSec     = 120
	DefaultTargetPrompts  = 60
	DefaultJudgeBackend   = ""
	DefaultExtractBackend = ""

	DefaultCacheDir = ".beacon-cache"
	DefaultStoreDB  = ".beacon/runs.db"
)

// PathsConfig holds file and directory paths.
type PathsConfig struct {
	Profile string `yaml:"profile,omitempty"`
	Results string `yaml:"results,omitempty"`
}

// DefaultsConfig holds default audit execution parameters.
type DefaultsConfig struct {
	Concurrency    int    `yaml:"concurrency,omitempty"`
	Timeout        int    `yaml:"timeout,omitempty"`
	TargetPrompts  int    `yaml:"target_prompts,omitempty"`
	JudgeBackend   string `yaml:"judge_backend,omitempty"`
	ExtractBackend string `yaml:"extract_backend,omitempty"`
	Verbose        *bool  `yaml:"verbose,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// StoreConfig holds run-history database settings.
type StoreConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .beacon.yaml.
type ProjectConfig struct {
	Paths    PathsConfig        `yaml:"paths,omitempty"`
	Defaults DefaultsConfig     `yaml:"defaults,omitempty"`
	Cache    CacheConfig        `yaml:"cache,omitempty"`
	Store    StoreConfig        `yaml:"store,omitempty"`
	Backends []backend.Settings `yaml:"backends,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Profile: DefaultProfilePath,
			Results: DefaultResultsDir,
		},
		Defaults: DefaultsConfig{
			Concurrency:   DefaultConcurrency,
			Timeout:       DefaultTimeoutSec,
			TargetPrompts: DefaultTargetPrompts,
			Verbose:       boolPtr(false),
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Store: StoreConfig{
			Enabled: boolPtr(true),
			Path:    DefaultStoreDB,
		},
	}
}

// Timeout returns the per-query timeout as a duration.
func (c *ProjectConfig) Timeout() time.Duration {
	return time.Duration(c.Defaults.Timeout) * time.Second
}

// Load finds .beacon.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found, use defaults
		}
		return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .beacon.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Profile != "" {
		dst.Paths.Profile = src.Paths.Profile
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Defaults
	if src.Defaults.Concurrency != 0 {
		dst.Defaults.Concurrency = src.Defaults.Concurrency
	}
	if src.Defaults.Timeout != 0 {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.TargetPrompts != 0 {
		dst.Defaults.TargetPrompts = src.Defaults.TargetPrompts
	}
	if src.Defaults.JudgeBackend != "" {
		dst.Defaults.JudgeBackend = src.Defaults.JudgeBackend
	}
	if src.Defaults.ExtractBackend != "" {
		dst.Defaults.ExtractBackend = src.Defaults.ExtractBackend
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Store
	if src.Store.Enabled != nil {
		dst.Store.Enabled = src.Store.Enabled
	}
	if src.Store.Path != "" {
		dst.Store.Path = src.Store.Path
	}

	// Backends replace rather than merge; a partial backend list is ambiguous.
	if len(src.Backends) > 0 {
		dst.Backends = src.Backends
	}
}

func boolPtr(b bool) *bool {
	return &b
}
