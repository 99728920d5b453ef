// Package config provides configuration management for chatforge.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for chatforge.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Auth is the authentication configuration.
	Auth AuthConfig `mapstructure:"auth" validate:"required"`

	// Redis is the Redis configuration (sessions, SMS code state).
	Redis RedisConfig `mapstructure:"redis"`

	// Storage is the user-store persistence configuration.
	Storage StorageConfig `mapstructure:"storage"`

	// LLM is the chat-model provider configuration.
	LLM LLMConfig `mapstructure:"llm"`

	// Memory is the vector-memory adapter configuration.
	Memory MemoryConfig `mapstructure:"memory"`

	// Chat is the WebSocket chat configuration.
	Chat ChatConfig `mapstructure:"chat"`

	// RateLimit is the auth-endpoint rate limiting configuration.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	// Must be generous enough to cover a full LLM stream.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the client.
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// AuthConfig holds JWT and SMS verification settings.
type AuthConfig struct {
	// JWTSecret is the HMAC signing secret. Required; there is no default.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required"`

	// JWTAlgorithm is the signing algorithm.
	JWTAlgorithm string `mapstructure:"jwt_algorithm" validate:"oneof=HS256 HS384 HS512"`

	// AccessTokenTTL is the access token lifetime.
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`

	// RefreshTokenTTL is the refresh token lifetime.
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`

	// StaticTokens maps fixed access tokens to user IDs. Test environments only.
	StaticTokens map[string]string `mapstructure:"static_tokens"`

	// BcryptCost is the bcrypt hashing cost.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`

	// SMS holds verification-code settings.
	SMS SMSConfig `mapstructure:"sms"`
}

// SMSConfig holds SMS verification-code settings.
type SMSConfig struct {
	// CodeLength is the number of digits in a verification code.
	CodeLength int `mapstructure:"code_length" validate:"min=4,max=10"`

	// CodeTTL is how long a sent code stays valid.
	CodeTTL time.Duration `mapstructure:"code_ttl"`

	// ResendCooldown is the minimum interval between sends to one phone.
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`

	// MaxAttempts is the number of wrong guesses before a code is invalidated.
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=1"`

	// DailyLimit caps sends per phone per UTC day.
	DailyLimit int `mapstructure:"daily_limit" validate:"min=1"`

	// TicketTTL is the lifetime of a one-time verification ticket.
	TicketTTL time.Duration `mapstructure:"ticket_ttl"`
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// StorageConfig holds user-store persistence settings.
type StorageConfig struct {
	// Type is the storage backend (memory, badger).
	Type string `mapstructure:"type" validate:"oneof=memory badger"`

	// Path is the BadgerDB directory path.
	Path string `mapstructure:"path"`

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool `mapstructure:"sync_writes"`

	// UserCacheSize is the max number of user records held in the read cache.
	UserCacheSize int64 `mapstructure:"user_cache_size" validate:"min=0"`
}

// LLMConfig holds chat-model provider settings. Any OpenAI-compatible
// endpoint works: set BaseURL and APIKey accordingly.
type LLMConfig struct {
	// Provider is the provider name (openai, deepseek, dashscope, moonshot, custom).
	Provider string `mapstructure:"provider"`

	// APIKey is the provider API key.
	APIKey string `mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint. Empty means the official OpenAI API.
	BaseURL string `mapstructure:"base_url"`

	// Model is the chat model identifier.
	Model string `mapstructure:"model"`

	// Timeout is the per-request deadline.
	Timeout time.Duration `mapstructure:"timeout"`

	// Temperature is the sampling temperature.
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

// MemoryConfig holds vector-memory adapter settings.
type MemoryConfig struct {
	// Enabled toggles the memory adapter.
	Enabled bool `mapstructure:"enabled"`

	// StorePath is the directory owned by the vector store.
	StorePath string `mapstructure:"store_path"`

	// EmbeddingAPIKey is the embedding provider API key.
	EmbeddingAPIKey string `mapstructure:"embedding_api_key"`

	// EmbeddingBaseURL overrides the embedding endpoint (OpenAI-compatible).
	EmbeddingBaseURL string `mapstructure:"embedding_base_url"`

	// EmbeddingModel is the embedding model identifier.
	EmbeddingModel string `mapstructure:"embedding_model"`

	// DefaultNamespace is substituted when a caller passes an empty namespace.
	DefaultNamespace string `mapstructure:"default_namespace"`

	// RulesPath is the normalization rule file. Empty or absent means no rules.
	RulesPath string `mapstructure:"rules_path"`

	// Compress enables gzip compression of persisted vectors.
	Compress bool `mapstructure:"compress"`
}

// ChatConfig holds WebSocket chat settings.
type ChatConfig struct {
	// MaxConnections caps concurrent WebSocket connections.
	MaxConnections int `mapstructure:"max_connections" validate:"min=1"`

	// MaxMessageSize caps a single message in bytes.
	MaxMessageSize int64 `mapstructure:"max_message_size" validate:"min=1"`

	// PingInterval is the server ping cadence.
	PingInterval time.Duration `mapstructure:"ping_interval"`

	// PongTimeout is how long to wait for a pong before dropping the peer.
	PongTimeout time.Duration `mapstructure:"pong_timeout"`

	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int `mapstructure:"send_buffer" validate:"min=1"`
}

// RateLimitConfig holds per-client rate limiting for auth endpoints.
type RateLimitConfig struct {
	// Enabled enables rate limiting.
	Enabled bool `mapstructure:"enabled"`

	// RPS is the sustained requests-per-second allowance per client.
	RPS float64 `mapstructure:"rps" validate:"min=0"`

	// Burst is the instantaneous burst allowance per client.
	Burst int `mapstructure:"burst" validate:"min=0"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the span exporter kind. Only "otlp" is supported.
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the OTLP collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Timeout is the exporter request timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are extra headers sent to the collector.
	Headers map[string]string `mapstructure:"headers"`

	// Sampler selects the sampling strategy (ratio, always_on, always_off).
	Sampler string `mapstructure:"sampler"`

	// SampleRate is the fraction of traces to sample (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration (without
// sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Env: %s}",
		c.App.Name, c.Server.Port, c.App.Environment)
}
