package config

import "time"

// DefaultConfig returns a Config with sensible defaults. The JWT secret has
// no default: it must come from a file or CHATFORGE_AUTH_JWT_SECRET.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "chatforge",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    120 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 15 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
			},
			CORS: CORSConfig{
				Enabled:          true,
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Auth-Token", "X-Request-ID"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: false,
				MaxAge:           300,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Auth: AuthConfig{
			JWTAlgorithm:    "HS256",
			AccessTokenTTL:  25 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			StaticTokens:    map[string]string{},
			BcryptCost:      12,
			SMS: SMSConfig{
				CodeLength:     6,
				CodeTTL:        5 * time.Minute,
				ResendCooldown: 60 * time.Second,
				MaxAttempts:    5,
				DailyLimit:     20,
				TicketTTL:      10 * time.Minute,
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Storage: StorageConfig{
			Type:          "badger",
			Path:          "./data/users",
			SyncWrites:    true,
			UserCacheSize: 10000,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			APIKey:      "",
			BaseURL:     "",
			Model:       "gpt-4o-mini",
			Timeout:     60 * time.Second,
			Temperature: 0.7,
		},
		Memory: MemoryConfig{
			Enabled:          false,
			StorePath:        "./data/memories",
			EmbeddingAPIKey:  "",
			EmbeddingBaseURL: "",
			EmbeddingModel:   "text-embedding-3-small",
			DefaultNamespace: "demo-user",
			RulesPath:        "",
			Compress:         true,
		},
		Chat: ChatConfig{
			MaxConnections: 1000,
			MaxMessageSize: 1 << 20, // 1MB
			PingInterval:   30 * time.Second,
			PongTimeout:    10 * time.Second,
			SendBuffer:     32,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     5,
			Burst:   10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlp",
			Endpoint:   "localhost:4317",
			Timeout:    10 * time.Second,
			Sampler:    "ratio",
			SampleRate: 0.1,
		},
	}
}
