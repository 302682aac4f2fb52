// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	servertls "github.com/msoukhomlinov/autotask-mcp/pkg/tls"
)

const (
	// ServiceName is the keyring service secrets are stored under.
	ServiceName = "autotask-mcp"

	// DefaultConfigFileName is the config file name without extension.
	DefaultConfigFileName = "autotask-mcp"

	// EnvPrefix prefixes environment overrides, e.g. AUTOTASK_MCP_AUTOTASK_SECRET.
	EnvPrefix = "AUTOTASK_MCP"
)

// Config is the complete server configuration.
// Priority: flags > environment > config file > keyring > defaults.
type Config struct {
	// DataDir comes from GetDataDir, never from the file.
	DataDir string `mapstructure:"-"`

	Autotask      AutotaskConfig      `mapstructure:"autotask"`
	Tools         ToolsConfig         `mapstructure:"tools"`
	Metadata      MetadataConfig      `mapstructure:"metadata"`
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AutotaskConfig holds the API connection settings.
type AutotaskConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	Username        string `mapstructure:"username"`
	IntegrationCode string `mapstructure:"integration_code"`
	Secret          string `mapstructure:"secret"` // flag/env/keyring only

	RateLimit     float64       `mapstructure:"rate_limit"`
	Burst         int           `mapstructure:"burst"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRecords    int           `mapstructure:"max_records"`

	// DryRun returns the request a write would send instead of sending it.
	DryRun bool `mapstructure:"dry_run"`
}

// ToolsConfig selects the tools that are synthesized.
type ToolsConfig struct {
	Namespace    string           `mapstructure:"namespace"`
	WriteEnabled bool             `mapstructure:"write_enabled"`
	Resources    []ResourceConfig `mapstructure:"resources"`
}

// ResourceConfig enables operations on one resource.
type ResourceConfig struct {
	Name       string   `mapstructure:"name"`
	Operations []string `mapstructure:"operations"`
}

// MetadataConfig selects where field metadata comes from and how it is
// cached.
type MetadataConfig struct {
	// Source is "api" or "files".
	Source string `mapstructure:"source"`

	// Dir holds <resource>.yaml files when Source is "files".
	Dir string `mapstructure:"dir"`

	Cache CacheConfig `mapstructure:"cache"`

	// RefreshSchedule is a cron expression for re-fetching metadata.
	// Empty disables scheduled refresh.
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

// CacheConfig configures the metadata cache backend.
type CacheConfig struct {
	// Backend is "memory", "sqlite", "redis", "postgres" or "none".
	Backend        string        `mapstructure:"backend"`
	TTL            time.Duration `mapstructure:"ttl"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	Passphrase     string        `mapstructure:"passphrase"` // flag/env/keyring only
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPrefix    string        `mapstructure:"redis_prefix"`
	PostgresDSN    string        `mapstructure:"postgres_dsn"` // flag/env/keyring only
	PostgresSchema string        `mapstructure:"postgres_schema"`
}

// ServerConfig configures the MCP transport.
type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport      string        `mapstructure:"transport"`
	HTTPAddr       string        `mapstructure:"http_addr"`
	HTTPPath       string        `mapstructure:"http_path"`
	AuthToken      string        `mapstructure:"auth_token"` // flag/env/keyring only
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	RequireSession bool          `mapstructure:"require_session"`

	// TLS serves the http transport over HTTPS.
	TLS servertls.Config `mapstructure:"tls"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// File receives logs; empty means stderr. Stdout is reserved for the
	// stdio transport.
	File string `mapstructure:"file"`
}

// ObservabilityConfig selects the tracer.
type ObservabilityConfig struct {
	// Tracer is "noop" or "otel".
	Tracer      string `mapstructure:"tracer"`
	ServiceName string `mapstructure:"service_name"`
}

// DefaultResources is the resource selection used when none is configured.
var DefaultResources = []ResourceConfig{
	{Name: "company", Operations: []string{"get", "getMany", "count"}},
	{Name: "contact", Operations: []string{"get", "getMany", "count"}},
	{Name: "ticket", Operations: []string{"get", "getMany", "count", "create", "update"}},
	{Name: "timeEntry", Operations: []string{"get", "getMany", "getPosted", "getUnposted"}},
	{Name: "resource", Operations: []string{"get", "getMany", "whoAmI"}},
}

// LoadConfig reads configuration into v from cfgFile, or from the first
// autotask-mcp.yaml found in the data directory, the working directory and
// /etc/autotask-mcp. A missing file is not an error.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(GetDataDir())
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/autotask-mcp/")
		v.SetConfigName(DefaultConfigFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return Decode(v)
}

// Decode unmarshals the current state of v and fills in secrets from the
// keyring. It is used again after the config file changes.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DataDir = GetDataDir()
	if cfg.Metadata.Cache.SQLitePath != "" {
		cfg.Metadata.Cache.SQLitePath = ExpandPath(cfg.Metadata.Cache.SQLitePath)
	}
	if cfg.Metadata.Dir != "" {
		cfg.Metadata.Dir = ExpandPath(cfg.Metadata.Dir)
	}
	if cfg.Server.TLS.CertFile != "" {
		cfg.Server.TLS.CertFile = ExpandPath(cfg.Server.TLS.CertFile)
		cfg.Server.TLS.KeyFile = ExpandPath(cfg.Server.TLS.KeyFile)
	}
	if len(cfg.Tools.Resources) == 0 {
		cfg.Tools.Resources = DefaultResources
	}

	// Keyring may be unavailable (headless hosts); secrets can still come
	// from flags or the environment.
	_ = loadSecretsFromKeyring(&cfg)

	return &cfg, nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	// Empty defaults make the keys visible to AutomaticEnv during Unmarshal.
	v.SetDefault("autotask.base_url", "")
	v.SetDefault("autotask.username", "")
	v.SetDefault("autotask.integration_code", "")
	v.SetDefault("autotask.secret", "")
	v.SetDefault("metadata.cache.passphrase", "")
	v.SetDefault("metadata.cache.postgres_dsn", "")
	v.SetDefault("server.auth_token", "")

	v.SetDefault("autotask.rate_limit", 5.0)
	v.SetDefault("autotask.burst", 5)
	v.SetDefault("autotask.retry_attempts", 3)
	v.SetDefault("autotask.timeout", "30s")
	v.SetDefault("autotask.max_records", 1000)
	v.SetDefault("autotask.dry_run", false)

	v.SetDefault("tools.namespace", "autotask")
	v.SetDefault("tools.write_enabled", false)

	v.SetDefault("metadata.source", "api")
	v.SetDefault("metadata.dir", "")
	v.SetDefault("metadata.cache.backend", "sqlite")
	v.SetDefault("metadata.cache.ttl", "24h")
	v.SetDefault("metadata.cache.sqlite_path", filepath.Join(GetDataDir(), "metadata.db"))
	v.SetDefault("metadata.cache.redis_addr", "")
	v.SetDefault("metadata.cache.redis_prefix", "autotask-mcp:")
	v.SetDefault("metadata.cache.postgres_schema", "public")
	v.SetDefault("metadata.refresh_schedule", "")

	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_addr", "127.0.0.1:8080")
	v.SetDefault("server.http_path", "/mcp")
	v.SetDefault("server.session_ttl", "30m")
	v.SetDefault("server.require_session", false)
	v.SetDefault("server.tls.mode", servertls.ModeOff)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	v.SetDefault("observability.tracer", "noop")
	v.SetDefault("observability.service_name", "autotask-mcp")
}

// Validate reports configuration that cannot produce a working server.
// Connection settings are checked by the client itself.
func (c *Config) Validate() error {
	var errs []error

	switch c.Metadata.Source {
	case "api":
	case "files":
		if c.Metadata.Dir == "" {
			errs = append(errs, errors.New("metadata.dir is required when metadata.source is files"))
		}
	default:
		errs = append(errs, fmt.Errorf("metadata.source must be api or files, got %q", c.Metadata.Source))
	}

	switch c.Metadata.Cache.Backend {
	case "none", "memory":
	case "sqlite":
		if c.Metadata.Cache.SQLitePath == "" {
			errs = append(errs, errors.New("metadata.cache.sqlite_path is required for the sqlite backend"))
		}
	case "redis":
		if c.Metadata.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("metadata.cache.redis_addr is required for the redis backend"))
		}
	case "postgres":
		if c.Metadata.Cache.PostgresDSN == "" {
			errs = append(errs, errors.New("metadata.cache.postgres_dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("metadata.cache.backend must be none, memory, sqlite, redis or postgres, got %q", c.Metadata.Cache.Backend))
	}

	switch c.Server.Transport {
	case "stdio", "http":
	default:
		errs = append(errs, fmt.Errorf("server.transport must be stdio or http, got %q", c.Server.Transport))
	}

	switch c.Server.TLS.Mode {
	case "", servertls.ModeOff, servertls.ModeSelfSigned:
	case servertls.ModeManual:
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file and key_file are required for manual TLS"))
		}
	default:
		errs = append(errs, fmt.Errorf("server.tls.mode must be off, manual or self-signed, got %q", c.Server.TLS.Mode))
	}

	switch c.Observability.Tracer {
	case "noop", "otel":
	default:
		errs = append(errs, fmt.Errorf("observability.tracer must be noop or otel, got %q", c.Observability.Tracer))
	}

	if strings.TrimSpace(c.Tools.Namespace) == "" {
		errs = append(errs, errors.New("tools.namespace must not be empty"))
	}
	seen := make(map[string]bool)
	for i, r := range c.Tools.Resources {
		key := strings.ToLower(r.Name)
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("tools.resources[%d]: name is required", i))
			continue
		case seen[key]:
			errs = append(errs, fmt.Errorf("tools.resources[%d]: duplicate resource %q", i, r.Name))
		}
		seen[key] = true
		for _, op := range r.Operations {
			if _, err := operation.Parse(op); err != nil {
				errs = append(errs, fmt.Errorf("tools.resources[%d] %s: %w", i, r.Name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// SecretMapping binds one keyring entry to a config field.
type SecretMapping struct {
	KeyringKey string
	Setter     func(*Config, string)
	IsSet      func(*Config) bool
}

// GetSecretMappings lists the secrets that may live in the keyring.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: "autotask_secret",
			Setter:     func(c *Config, val string) { c.Autotask.Secret = val },
			IsSet:      func(c *Config) bool { return c.Autotask.Secret != "" },
		},
		{
			KeyringKey: "cache_passphrase",
			Setter:     func(c *Config, val string) { c.Metadata.Cache.Passphrase = val },
			IsSet:      func(c *Config) bool { return c.Metadata.Cache.Passphrase != "" },
		},
		{
			KeyringKey: "cache_postgres_dsn",
			Setter:     func(c *Config, val string) { c.Metadata.Cache.PostgresDSN = val },
			IsSet:      func(c *Config) bool { return c.Metadata.Cache.PostgresDSN != "" },
		},
		{
			KeyringKey: "http_auth_token",
			Setter:     func(c *Config, val string) { c.Server.AuthToken = val },
			IsSet:      func(c *Config) bool { return c.Server.AuthToken != "" },
		},
	}
}

// loadSecretsFromKeyring fills unset secrets from the OS keyring. Missing
// entries are skipped; the first other keyring failure is returned after
// all mappings were tried.
func loadSecretsFromKeyring(cfg *Config) error {
	var firstErr error
	for _, m := range GetSecretMappings() {
		if m.IsSet(cfg) {
			continue
		}
		val, err := keyring.Get(ServiceName, m.KeyringKey)
		if err != nil {
			if !errors.Is(err, keyring.ErrNotFound) && firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.Setter(cfg, val)
	}
	return firstErr
}

// SaveSecret stores a secret in the OS keyring.
func SaveSecret(key, value string) error {
	if !isSecretKey(key) {
		return fmt.Errorf("unknown secret %q", key)
	}
	if err := keyring.Set(ServiceName, key, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", key, err)
	}
	return nil
}

// DeleteSecret removes a secret from the OS keyring.
func DeleteSecret(key string) error {
	if !isSecretKey(key) {
		return fmt.Errorf("unknown secret %q", key)
	}
	if err := keyring.Delete(ServiceName, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}

func isSecretKey(key string) bool {
	for _, m := range GetSecretMappings() {
		if m.KeyringKey == key {
			return true
		}
	}
	return false
}
