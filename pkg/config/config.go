package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Spec          SpecConfig          `mapstructure:"spec"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Identity      IdentityConfig      `mapstructure:"identity"`
	KMS           KMSConfig           `mapstructure:"kms"`
	Audit         AuditConfig         `mapstructure:"audit"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	ErrorTracking ErrorTrackingConfig `mapstructure:"error_tracking"`
	Middleware    MiddlewareConfig    `mapstructure:"middleware"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DrainTimeout    time.Duration `mapstructure:"drain_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
}

// SpecConfig locates the OpenAPI document that drives route resolution
// and schema projection.
type SpecConfig struct {
	// Path to the OpenAPI YAML document loaded at startup.
	Path string `mapstructure:"path"`
}

// StorageConfig selects and configures the backing StorageAdapter.
type StorageConfig struct {
	// Type selects the active adapter: "keystore" (Redis-backed key/kind
	// store) or "docstore" (MongoDB-backed collection store).
	Type     string         `mapstructure:"type"`
	Keystore KeystoreConfig `mapstructure:"keystore"`
	Docstore DocstoreConfig `mapstructure:"docstore"`
}

// KeystoreConfig configures the Redis-backed KeyStoreAdapter.
type KeystoreConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DocstoreConfig configures the MongoDB-backed CollectionStoreAdapter.
type DocstoreConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// IdentityConfig configures the OAuth2/JWT identity collaborator.
type IdentityConfig struct {
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
	JWKSURL  string `mapstructure:"jwks_url"`
}

// KMSConfig configures the cursor-encryption KMS collaborator. When
// KeyInfo is empty the codec falls back to a no-op pass-through, matching
// an unset KMS_KEY_INFO in deployment.
type KMSConfig struct {
	KeyInfo  string `mapstructure:"key_info"`
	KeyRing  string `mapstructure:"key_ring"`
	Key      string `mapstructure:"key"`
	Location string `mapstructure:"location"`
	Project  string `mapstructure:"project"`
	// LocalKey is a hex-encoded 32-byte key for the local AEAD stand-in
	// KMS used outside of a real cloud deployment.
	LocalKey string `mapstructure:"local_key"`
}

// AuditConfig names the table/collection audit diffs are written to.
// Writing is skipped entirely when Name is empty.
type AuditConfig struct {
	Name string `mapstructure:"name"`
}

// TracingConfig holds OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Endpoint       string `mapstructure:"endpoint"`
}

// CacheConfig holds cache provider configuration
type CacheConfig struct {
	Provider string         `mapstructure:"provider"` // memory, redis, memcache
	Redis    RedisConfig    `mapstructure:"redis"`
	Memcache MemcacheConfig `mapstructure:"memcache"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MemcacheConfig holds Memcache-specific configuration
type MemcacheConfig struct {
	Servers      []string      `mapstructure:"servers"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Dev  bool   `mapstructure:"dev"`
	Path string `mapstructure:"path"`
}

// MiddlewareConfig holds middleware configuration
type MiddlewareConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxRequestSize int64   `mapstructure:"max_request_size"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

// ErrorTrackingConfig holds error tracking configuration
type ErrorTrackingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Provider         string  `mapstructure:"provider"`           // sentry, noop
	DSN              string  `mapstructure:"dsn"`                // Sentry DSN
	Environment      string  `mapstructure:"environment"`        // e.g., production, staging, development
	Release          string  `mapstructure:"release"`            // Application version/release
	Debug            bool    `mapstructure:"debug"`              // Enable debug mode
	SampleRate       float64 `mapstructure:"sample_rate"`        // Error sample rate (0.0-1.0)
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"` // Traces sample rate (0.0-1.0)
}
