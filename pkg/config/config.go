// Package config loads portal configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hdcn/portal/pkg/identity"
	"github.com/hdcn/portal/pkg/observability"
	"github.com/hdcn/portal/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Identity provider configuration
	Identity identity.Config

	// Authorization configuration
	Authz AuthzConfig

	// Storage configuration
	Storage storage.Config

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Audit configuration
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// AuthzConfig holds permission-resolution settings
type AuthzConfig struct {
	// CatalogOverlayPath optionally points at a YAML file amending the
	// built-in role catalog.
	CatalogOverlayPath string

	// CacheSize bounds the permission cache entries.
	CacheSize int

	// CacheTTL bounds how long a resolved PermissionSet may be reused.
	CacheTTL time.Duration
}

// RateLimitConfig holds rate limiter settings
type RateLimitConfig struct {
	// RedisAddr enables the distributed limiter when set; empty means the
	// in-memory limiter.
	RedisAddr     string
	RedisPassword string

	RequestsPerWindow int
	WindowDuration    time.Duration
}

// AuditConfig holds audit logging settings
type AuditConfig struct {
	// FilePath enables the JSON-lines file logger when set.
	FilePath string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Identity:      loadIdentityConfig(),
		Authz:         loadAuthzConfig(),
		Storage:       loadStorageConfig(),
		RateLimit:     loadRateLimitConfig(),
		Audit:         loadAuditConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PORTAL_HOST", "0.0.0.0"),
		Port:            getEnv("PORTAL_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PORTAL_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PORTAL_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PORTAL_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PORTAL_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PORTAL_HEALTH_PORT", "9090"),
	}
}

func loadIdentityConfig() identity.Config {
	return identity.Config{
		IssuerURL:       getEnv("PORTAL_OIDC_ISSUER", ""),
		ClientID:        getEnv("PORTAL_OIDC_CLIENT_ID", ""),
		GroupsClaim:     getEnv("PORTAL_OIDC_GROUPS_CLAIM", identity.DefaultGroupsClaim),
		SkipIssuerCheck: getEnvBool("PORTAL_OIDC_SKIP_ISSUER_CHECK", false),
	}
}

func loadAuthzConfig() AuthzConfig {
	return AuthzConfig{
		CatalogOverlayPath: getEnv("PORTAL_ROLE_CATALOG_OVERLAY", ""),
		CacheSize:          getEnvInt("PORTAL_PERMISSION_CACHE_SIZE", 1024),
		CacheTTL:           getEnvDuration("PORTAL_PERMISSION_CACHE_TTL", 5*time.Minute),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()
	if storageType := getEnv("PORTAL_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}
	if prefix := getEnv("PORTAL_DYNAMODB_TABLE_PREFIX", ""); prefix != "" {
		cfg.TablePrefix = prefix
	}
	if region := getEnv("PORTAL_AWS_REGION", ""); region != "" {
		cfg.Region = region
	}
	if endpoint := getEnv("PORTAL_DYNAMODB_ENDPOINT", ""); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if accessKey := getEnv("PORTAL_AWS_ACCESS_KEY", ""); accessKey != "" {
		cfg.AccessKey = accessKey
	}
	if secretKey := getEnv("PORTAL_AWS_SECRET_KEY", ""); secretKey != "" {
		cfg.SecretKey = secretKey
	}
	if timeout := getEnvDuration("PORTAL_STORAGE_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RedisAddr:         getEnv("PORTAL_REDIS_ADDR", ""),
		RedisPassword:     getEnv("PORTAL_REDIS_PASSWORD", ""),
		RequestsPerWindow: getEnvInt("PORTAL_RATE_LIMIT_REQUESTS", 300),
		WindowDuration:    getEnvDuration("PORTAL_RATE_LIMIT_WINDOW", time.Minute),
	}
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		FilePath: getEnv("PORTAL_AUDIT_LOG_PATH", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("PORTAL_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("PORTAL_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PORTAL_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PORTAL_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PORTAL_OTEL_SERVICE_NAME", "portal"),
		OTelServiceVersion: getEnv("PORTAL_OTEL_SERVICE_VERSION", "dev"),
		OTelInsecure:       getEnvBool("PORTAL_OTEL_INSECURE", true),
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Identity.IssuerURL == "" {
		return fmt.Errorf("PORTAL_OIDC_ISSUER is required")
	}
	if c.Identity.ClientID == "" {
		return fmt.Errorf("PORTAL_OIDC_CLIENT_ID is required")
	}
	switch c.Storage.Type {
	case "memory", "dynamodb":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Authz.CacheTTL < 0 {
		return fmt.Errorf("permission cache TTL must not be negative")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit requests per window must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
