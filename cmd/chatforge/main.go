package main

// @title ChatForge API
// @version 1.0
// @description Conversational backend with phone-verified accounts, streaming chat and long-term memory

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/chatforge/chatforge/config"
	"github.com/chatforge/chatforge/pkg/api"
	"github.com/chatforge/chatforge/pkg/api/handlers"
	"github.com/chatforge/chatforge/pkg/api/middleware"
	"github.com/chatforge/chatforge/pkg/auth"
	"github.com/chatforge/chatforge/pkg/chat"
	"github.com/chatforge/chatforge/pkg/llm"
	"github.com/chatforge/chatforge/pkg/logger"
	"github.com/chatforge/chatforge/pkg/memory"
	"github.com/chatforge/chatforge/pkg/metrics"
	"github.com/chatforge/chatforge/pkg/telemetry/tracing"
	"github.com/chatforge/chatforge/pkg/user"
	userbadger "github.com/chatforge/chatforge/pkg/user/badger"
	usermem "github.com/chatforge/chatforge/pkg/user/memory"
	"github.com/chatforge/chatforge/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting ChatForge",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Tracing
	tracingShutdown, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// User store
	users, err := newUserStore(cfg, log)
	if err != nil {
		log.Error("Failed to open user store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := users.Close(); err != nil {
			log.Error("Error closing user store", "error", err)
		}
	}()

	// Session store (refresh tokens, SMS code state)
	sessions := newSessionStore(cfg, log)

	// Auth service
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:       cfg.Auth.JWTSecret,
		Algorithm:    cfg.Auth.JWTAlgorithm,
		AccessTTL:    cfg.Auth.AccessTokenTTL,
		RefreshTTL:   cfg.Auth.RefreshTokenTTL,
		StaticTokens: cfg.Auth.StaticTokens,
	})
	if err != nil {
		log.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}
	authService := auth.NewService(users, tokens, sessions, auth.NewLogSender(log), auth.ServiceConfig{
		BcryptCost: cfg.Auth.BcryptCost,
		SMS: auth.SMSPolicy{
			CodeLength:     cfg.Auth.SMS.CodeLength,
			CodeTTL:        cfg.Auth.SMS.CodeTTL,
			TicketTTL:      cfg.Auth.SMS.TicketTTL,
			ResendCooldown: cfg.Auth.SMS.ResendCooldown,
			MaxAttempts:    cfg.Auth.SMS.MaxAttempts,
			DailyLimit:     int64(cfg.Auth.SMS.DailyLimit),
		},
	})

	// Memory adapter
	var memoryAdapter *memory.Adapter
	if cfg.Memory.Enabled {
		memoryAdapter = memory.NewAdapter(memory.Settings{
			StorePath:        cfg.Memory.StorePath,
			EmbeddingAPIKey:  cfg.Memory.EmbeddingAPIKey,
			EmbeddingBaseURL: cfg.Memory.EmbeddingBaseURL,
			EmbeddingModel:   cfg.Memory.EmbeddingModel,
			DefaultNamespace: cfg.Memory.DefaultNamespace,
			RulesPath:        cfg.Memory.RulesPath,
			Compress:         cfg.Memory.Compress,
		}, nil)
		if err := memoryAdapter.Init(); err != nil {
			log.Error("Failed to initialize memory adapter", "error", err)
			os.Exit(1)
		}
		log.Info("Memory adapter ready", "store_path", cfg.Memory.StorePath, "rules", cfg.Memory.RulesPath)
	}

	// LLM provider and generation service
	var llmService *llm.Service
	if cfg.LLM.APIKey != "" {
		provider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			log.Error("Failed to create LLM provider", "error", err)
			os.Exit(1)
		}
		var memorySource llm.MemorySource
		if memoryAdapter != nil {
			memorySource = memoryAdapter
		}
		llmService = llm.NewService(provider, memorySource, log)
		log.Info("LLM provider ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	} else {
		log.Warn("No LLM API key configured, llm_stream is disabled")
	}

	// Metrics
	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics.Enabled
	metricsCfg.Port = cfg.Metrics.Port
	metricsCfg.Path = cfg.Metrics.Path
	metricsManager := metrics.NewManager(metricsCfg)
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Chat plane
	chatManager := chat.NewManager(cfg.Chat.MaxConnections, cfg.Chat.MaxMessageSize, log)
	var memoryWriter chat.MemoryWriter
	if memoryAdapter != nil {
		memoryWriter = memoryAdapter
	}
	chatService := chat.NewService(chatManager, llmService, memoryWriter, memoryAdapter != nil, log)
	chatService.SetMetrics(metricsManager)

	wsHandler := handlers.NewWebSocketHandler(chatService, authService, log, handlers.WebSocketConfig{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		PingInterval:   cfg.Chat.PingInterval,
		PongTimeout:    cfg.Chat.PongTimeout,
		SendBuffer:     cfg.Chat.SendBuffer,
	})
	wsHandler.SetMetrics(metricsManager)

	var memoryHandler *handlers.MemoryHandler
	if memoryAdapter != nil {
		memoryHandler = handlers.NewMemoryHandler(memoryAdapter, log)
		memoryHandler.SetMetrics(metricsManager)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	authHandler := handlers.NewAuthHandler(authService, log)
	authHandler.SetMetrics(metricsManager)

	app := &appStatus{cfg: cfg, manager: chatManager}
	httpServer := api.NewHTTPServer(cfg, log, &api.Handlers{
		Auth:        authHandler,
		Health:      handlers.NewHealthHandler(app),
		Memory:      memoryHandler,
		WebSocket:   wsHandler,
		Authn:       authService,
		Metrics:     metricsManager,
		RateLimiter: limiter,
	})

	// Reload the log level when the config file changes.
	watcher := startConfigWatcher(ctx, *configPath, log)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("ChatForge is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
		"memory_enabled", cfg.Memory.Enabled,
	)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if watcher != nil {
		_ = watcher.Stop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}
	chatManager.Close()
	if err := tracingShutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", "error", err)
	}

	log.Info("ChatForge stopped gracefully")
}

// appStatus implements handlers.HealthSource.
type appStatus struct {
	cfg     *config.Config
	manager *chat.Manager
}

func (a *appStatus) IsHealthy() bool { return true }

func (a *appStatus) IsReady() bool { return true }

func (a *appStatus) GetStatus() map[string]any {
	return map[string]any{
		"version":            version.Version,
		"environment":        a.cfg.App.Environment,
		"active_connections": a.manager.Count(),
		"memory_enabled":     a.cfg.Memory.Enabled,
	}
}

func newUserStore(cfg *config.Config, log logger.Logger) (user.Repository, error) {
	switch cfg.Storage.Type {
	case "badger":
		store, err := userbadger.New(&userbadger.Config{
			Path:       cfg.Storage.Path,
			SyncWrites: cfg.Storage.SyncWrites,
			CacheSize:  cfg.Storage.UserCacheSize,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Initialized Badger user store", "path", cfg.Storage.Path)
		return store, nil
	case "memory":
		log.Info("Initialized in-memory user store")
		return usermem.New(), nil
	default:
		log.Warn("Unknown storage type, using in-memory user store", "type", cfg.Storage.Type)
		return usermem.New(), nil
	}
}

func newSessionStore(cfg *config.Config, log logger.Logger) auth.SessionStore {
	if cfg.Redis.Address == "" {
		log.Warn("No Redis address configured, sessions are held in memory")
		return auth.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info("Initialized Redis session store", "address", cfg.Redis.Address)
	return auth.NewRedisStore(client)
}

func startConfigWatcher(ctx context.Context, configPath string, log logger.Logger) *config.Watcher {
	if configPath == "" {
		return nil
	}
	watcher, err := config.NewWatcher(configPath, config.NewLoader())
	if err != nil {
		log.Warn("Config watcher unavailable", "error", err)
		return nil
	}
	watcher.OnChange(func(updated *config.Config) {
		level := logger.ParseLevel(updated.Log.Level)
		log.SetLevel(level)
		log.Info("Log level updated from config", "level", updated.Log.Level)
	})
	go func() {
		if err := watcher.Watch(ctx); err != nil {
			log.Warn("Config watcher stopped", "error", err)
		}
	}()
	return watcher
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("ChatForge - Conversational Backend\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("ChatForge - Conversational backend with accounts, chat and memory\n\n")
	fmt.Printf("Usage: chatforge [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  chatforge                                 # Run with default config\n")
	fmt.Printf("  chatforge -config config.yaml             # Use specific config file\n")
	fmt.Printf("  chatforge -port 9090 -log-level debug     # Override specific options\n")
	fmt.Printf("  chatforge -version                        # Print version info\n")
}
