// Package projectconfig provides the ProjectConfig struct and loader for
// .leaderboard.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/validation"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".leaderboard.yaml"

// Default values for project configuration. These are the single source of
// truth; New() references them and no other code should duplicate them.
const (
	DefaultSourceKind    = SourceFile
	DefaultResultsPath   = "leaderboard_results.json"
	DefaultView          = "leaderboard_results"
	DefaultSourceTimeout = 30 * time.Second

	DefaultPrimaryBenchmark = "dev_set_71_tasks"

	DefaultTab     = leaderboard.TabCurated
	DefaultTopN    = leaderboard.Limit(10)
	DefaultRecentN = leaderboard.Limit(10)

	DefaultServerPort = 5000

	DefaultCacheDir = ".leaderboard-cache"
)

// DefaultExclude lists benchmarks hidden unless a project overrides it.
var DefaultExclude = []string{"clean-sandboxes-tasks-eval-set"}

// Environment variables applied on top of the file.
const (
	EnvSourceKind = "LEADERBOARD_SOURCE_KIND"
	EnvDSN        = "LEADERBOARD_DSN"
	EnvSourceURL  = "LEADERBOARD_SOURCE_URL"
)

// Source kinds.
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceMySQL  = "mysql"
	SourceBlob   = "blob"
	SourceHTTP   = "http"
)

// SourceConfig selects where flat results are fetched from.
type SourceConfig struct {
	Kind       string `yaml:"kind,omitempty"`
	Path       string `yaml:"path,omitempty"`
	DSN        string `yaml:"dsn,omitempty"`
	View       string `yaml:"view,omitempty"`
	URL        string `yaml:"url,omitempty"`
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Blob       string `yaml:"blob,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
}

// BenchmarksConfig holds the static benchmark lists. A nil list is unset; an
// explicit empty list clears the default.
type BenchmarksConfig struct {
	Primary        string   `yaml:"primary,omitempty"`
	Exclude        []string `yaml:"exclude"`
	DefaultVisible []string `yaml:"default_visible"`
}

// ViewConfig holds the initial view mode.
type ViewConfig struct {
	Tab     leaderboard.Tab    `yaml:"tab,omitempty"`
	TopN    *leaderboard.Limit `yaml:"top_n,omitempty"`
	RecentN *leaderboard.Limit `yaml:"recent_n,omitempty"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CacheConfig holds the on-disk snapshot cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .leaderboard.yaml.
type ProjectConfig struct {
	Source     SourceConfig     `yaml:"source,omitempty"`
	Benchmarks BenchmarksConfig `yaml:"benchmarks,omitempty"`
	View       ViewConfig       `yaml:"view,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`

	path string
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Source: SourceConfig{
			Kind:    DefaultSourceKind,
			Path:    DefaultResultsPath,
			View:    DefaultView,
			Timeout: DefaultSourceTimeout.String(),
		},
		Benchmarks: BenchmarksConfig{
			Primary:        DefaultPrimaryBenchmark,
			Exclude:        slices.Clone(DefaultExclude),
			DefaultVisible: []string{},
		},
		View: ViewConfig{
			Tab:     DefaultTab,
			TopN:    limitPtr(DefaultTopN),
			RecentN: limitPtr(DefaultRecentN),
		},
		Server: ServerConfig{
			Port:           DefaultServerPort,
			AllowedOrigins: []string{},
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
	}
}

// Load finds .leaderboard.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, fills in missing fields with defaults and
// applies environment overrides. If no config file is found, returns defaults
// with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	return load(startDir, os.LookupEnv)
}

func load(startDir string, lookupEnv func(string) (string, bool)) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
			return nil, fmt.Errorf("invalid %s: %s", path, strings.Join(errs, "; "))
		}
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.path = path
	}

	applyEnv(cfg, lookupEnv)
	return cfg, nil
}

// Path returns the file the configuration was read from, or "" for defaults.
func (c *ProjectConfig) Path() string {
	return c.path
}

// findConfigFile walks up from dir looking for .leaderboard.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Source
	if src.Source.Kind != "" {
		dst.Source.Kind = src.Source.Kind
	}
	if src.Source.Path != "" {
		dst.Source.Path = src.Source.Path
	}
	if src.Source.DSN != "" {
		dst.Source.DSN = src.Source.DSN
	}
	if src.Source.View != "" {
		dst.Source.View = src.Source.View
	}
	if src.Source.URL != "" {
		dst.Source.URL = src.Source.URL
	}
	if src.Source.AccountURL != "" {
		dst.Source.AccountURL = src.Source.AccountURL
	}
	if src.Source.Container != "" {
		dst.Source.Container = src.Source.Container
	}
	if src.Source.Blob != "" {
		dst.Source.Blob = src.Source.Blob
	}
	if src.Source.Timeout != "" {
		dst.Source.Timeout = src.Source.Timeout
	}

	// Benchmarks
	if src.Benchmarks.Primary != "" {
		dst.Benchmarks.Primary = src.Benchmarks.Primary
	}
	if src.Benchmarks.Exclude != nil {
		dst.Benchmarks.Exclude = src.Benchmarks.Exclude
	}
	if src.Benchmarks.DefaultVisible != nil {
		dst.Benchmarks.DefaultVisible = src.Benchmarks.DefaultVisible
	}

	// View
	if src.View.Tab != "" {
		dst.View.Tab = src.View.Tab
	}
	if src.View.TopN != nil {
		dst.View.TopN = src.View.TopN
	}
	if src.View.RecentN != nil {
		dst.View.RecentN = src.View.RecentN
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.AllowedOrigins != nil {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
}

// applyEnv lets deployment secrets stay out of the checked-in file.
func applyEnv(cfg *ProjectConfig, lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv(EnvSourceKind); ok && v != "" {
		cfg.Source.Kind = v
	}
	if v, ok := lookupEnv(EnvDSN); ok && v != "" {
		cfg.Source.DSN = v
	}
	if v, ok := lookupEnv(EnvSourceURL); ok && v != "" {
		cfg.Source.URL = v
	}
}

// Validate checks cross-field constraints the schema cannot express.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if err := c.Leaderboard().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Source.validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := leaderboard.ParseTab(string(c.View.Tab)); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

func (s SourceConfig) validate() error {
	if _, err := s.TimeoutDuration(); err != nil {
		return err
	}
	missing := func(field string) error {
		return fmt.Errorf("source kind %q requires %s", s.Kind, field)
	}
	switch s.Kind {
	case SourceFile:
		if s.Path == "" {
			return missing("path")
		}
	case SourceSQLite, SourceMySQL:
		if s.DSN == "" {
			return missing("dsn (or " + EnvDSN + ")")
		}
	case SourceBlob:
		if s.AccountURL == "" || s.Container == "" || s.Blob == "" {
			return missing("account_url, container and blob")
		}
	case SourceHTTP:
		if s.URL == "" {
			return missing("url (or " + EnvSourceURL + ")")
		}
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	return nil
}

// TimeoutDuration parses the fetch timeout. Empty means the default.
func (s SourceConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return DefaultSourceTimeout, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid source timeout %q", s.Timeout)
	}
	return d, nil
}

// Leaderboard returns the static pipeline configuration.
func (c *ProjectConfig) Leaderboard() leaderboard.Config {
	return leaderboard.Config{
		Exclude:        slices.Clone(c.Benchmarks.Exclude),
		DefaultVisible: slices.Clone(c.Benchmarks.DefaultVisible),
		Primary:        c.Benchmarks.Primary,
	}
}

// ViewMode returns the initial view mode.
func (c *ProjectConfig) ViewMode() leaderboard.ViewMode {
	v := leaderboard.ViewMode{Tab: c.View.Tab, TopN: DefaultTopN, RecentN: DefaultRecentN}
	if c.View.TopN != nil {
		v.TopN = *c.View.TopN
	}
	if c.View.RecentN != nil {
		v.RecentN = *c.View.RecentN
	}
	return v
}

// CacheEnabled reports whether fetched snapshots are persisted to disk.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

func boolPtr(b bool) *bool {
	return &b
}

func limitPtr(l leaderboard.Limit) *leaderboard.Limit {
	return &l
}
