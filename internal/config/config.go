package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the docsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty api_keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis/Valkey connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
}

// SearchConfig holds vector search and index settings.
type SearchConfig struct {
	EmbedTimeoutMs  int  `yaml:"embed_timeout_ms"`
	QueryTimeoutMs  int  `yaml:"query_timeout_ms"`
	ResolveContent  bool `yaml:"resolve_content"`
	HNSWM           int  `yaml:"hnsw_m"`
	HNSWEFConstruct int  `yaml:"hnsw_ef_construction"`
}

// CacheConfig holds query and embedding cache settings.
type CacheConfig struct {
	TTLSec          int `yaml:"ttl_sec"`
	TimeoutMs       int `yaml:"timeout_ms"`
	EmbeddingTTLSec int `yaml:"embedding_ttl_sec"` // 0 = no expiry
}

// RateLimitConfig holds per-identity admission settings.
type RateLimitConfig struct {
	Limit     int64 `yaml:"limit"`
	TimeoutMs int   `yaml:"timeout_ms"`
	WindowSec int   `yaml:"window_sec"` // 0 = lifetime counter
}

// IngestConfig holds ingestion job settings.
type IngestConfig struct {
	Feed        string  `yaml:"feed"`
	Workers     int     `yaml:"workers"`
	RatePerSec  float64 `yaml:"rate_per_sec"`
	Burst       int     `yaml:"burst"`
	IntervalSec int     `yaml:"interval_sec"` // 0 = run once
}

// EmbedTimeout returns search.embed_timeout_ms as a duration.
func (c *SearchConfig) EmbedTimeout() time.Duration { return ms(c.EmbedTimeoutMs) }

// QueryTimeout returns search.query_timeout_ms as a duration.
func (c *SearchConfig) QueryTimeout() time.Duration { return ms(c.QueryTimeoutMs) }

// TTL returns cache.ttl_sec as a duration.
func (c *CacheConfig) TTL() time.Duration { return sec(c.TTLSec) }

// Timeout returns cache.timeout_ms as a duration.
func (c *CacheConfig) Timeout() time.Duration { return ms(c.TimeoutMs) }

// EmbeddingTTL returns cache.embedding_ttl_sec as a duration.
func (c *CacheConfig) EmbeddingTTL() time.Duration { return sec(c.EmbeddingTTLSec) }

// Timeout returns rate_limit.timeout_ms as a duration.
func (c *RateLimitConfig) Timeout() time.Duration { return ms(c.TimeoutMs) }

// Window returns rate_limit.window_sec as a duration. Zero means no expiry.
func (c *RateLimitConfig) Window() time.Duration { return sec(c.WindowSec) }

// Interval returns ingest.interval_sec as a duration. Zero means run once.
func (c *IngestConfig) Interval() time.Duration { return sec(c.IntervalSec) }

func ms(n int) time.Duration  { return time.Duration(n) * time.Millisecond }
func sec(n int) time.Duration { return time.Duration(n) * time.Second }

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Search.EmbedTimeoutMs <= 0 {
		c.Search.EmbedTimeoutMs = 5000
	}
	if c.Search.QueryTimeoutMs <= 0 {
		c.Search.QueryTimeoutMs = 2000
	}
	if c.Search.HNSWM <= 0 {
		c.Search.HNSWM = 16
	}
	if c.Search.HNSWEFConstruct <= 0 {
		c.Search.HNSWEFConstruct = 200
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.TimeoutMs <= 0 {
		c.Cache.TimeoutMs = 200
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 5
	}
	if c.RateLimit.TimeoutMs <= 0 {
		c.RateLimit.TimeoutMs = 500
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.RatePerSec <= 0 {
		c.Ingest.RatePerSec = 5
	}
	if c.Ingest.Burst <= 0 {
		c.Ingest.Burst = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	if c.RateLimit.WindowSec < 0 {
		return fmt.Errorf("rate_limit.window_sec must not be negative, got %d", c.RateLimit.WindowSec)
	}
	if c.Cache.EmbeddingTTLSec < 0 {
		return fmt.Errorf("cache.embedding_ttl_sec must not be negative, got %d", c.Cache.EmbeddingTTLSec)
	}
	if c.Ingest.IntervalSec < 0 {
		return fmt.Errorf("ingest.interval_sec must not be negative, got %d", c.Ingest.IntervalSec)
	}
	for i, k := range c.Auth.APIKeys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("auth.api_keys[%d] must not be empty", i)
		}
	}
	return nil
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
