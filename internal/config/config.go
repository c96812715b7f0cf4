package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/marketindex/internal/domain/locale"
)

// Config holds the marketindex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Engine   EngineConfig   `yaml:"engine"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Locales  []LocaleConfig `yaml:"locales"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig addresses the search engine.
type EngineConfig struct {
	Driver           string   `yaml:"driver"` // redis, bleve (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"` // bleve only; empty = in memory
	Cluster          string   `yaml:"cluster"`
	Index            string   `yaml:"index"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// DatabaseConfig locates the primary store.
type DatabaseConfig struct {
	Path string `yaml:"path"` // empty = in memory
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// LocaleConfig is one supported locale.
type LocaleConfig struct {
	Tag      string `yaml:"tag"`
	Suffix   string `yaml:"suffix"`
	Analyzer string `yaml:"analyzer"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Driver == "" {
		c.Engine.Driver = "redis"
	}
	if len(c.Engine.Addrs) == 0 {
		c.Engine.Addrs = []string{"localhost:6379"}
	}
	if c.Engine.Cluster == "" {
		c.Engine.Cluster = "marketplace"
	}
	if c.Engine.Index == "" {
		c.Engine.Index = "classifieds"
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 10
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if len(c.Locales) == 0 {
		c.Locales = []LocaleConfig{{Tag: "fi"}, {Tag: "sv"}, {Tag: "en"}}
	}
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Engine.Driver {
	case "redis":
		if len(c.Engine.Addrs) == 0 {
			return fmt.Errorf("engine.addrs is required for the redis driver")
		}
	case "bleve":
	default:
		return fmt.Errorf("engine.driver must be \"redis\" or \"bleve\", got %q", c.Engine.Driver)
	}
	if !namePattern.MatchString(c.Engine.Cluster) {
		return fmt.Errorf("engine.cluster %q must match %s", c.Engine.Cluster, namePattern)
	}
	if !namePattern.MatchString(c.Engine.Index) {
		return fmt.Errorf("engine.index %q must match %s", c.Engine.Index, namePattern)
	}
	if _, err := c.LocaleTable(); err != nil {
		return fmt.Errorf("locales: %w", err)
	}
	return nil
}

// LocaleTable builds the locale table from the configured entries.
func (c *Config) LocaleTable() (locale.Table, error) {
	entries := make([]locale.Entry, len(c.Locales))
	for i, l := range c.Locales {
		entries[i] = locale.Entry{Tag: l.Tag, Suffix: l.Suffix, Analyzer: l.Analyzer}
	}
	return locale.NewTable(entries) //nolint:wrapcheck // caller adds context
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
