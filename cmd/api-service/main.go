package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoangvq/summarize-be/internal/api/handler"
	"github.com/hoangvq/summarize-be/internal/api/router"
	"github.com/hoangvq/summarize-be/internal/config"
	"github.com/hoangvq/summarize-be/internal/events"
	"github.com/hoangvq/summarize-be/internal/extract"
	"github.com/hoangvq/summarize-be/internal/pipeline"
	"github.com/hoangvq/summarize-be/internal/store"
	"github.com/hoangvq/summarize-be/internal/summarize"
	"github.com/hoangvq/summarize-be/shared/logger"
	"github.com/hoangvq/summarize-be/shared/postgresql"
	"github.com/hoangvq/summarize-be/shared/rabbitmq"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting summarize API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	appLogger.Info("Database connection established")

	// Initialize the completion-event publisher
	publisher, rabbitClient, err := initPublisher(&cfg.Events, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	if rabbitClient != nil {
		defer rabbitClient.Close()
	}

	// Build the pipeline: store, extractor, summarizer gateway, orchestrator
	summaryStore := store.NewStore(dbClient)

	extractor := extract.NewHTTPClient(cfg.Extractor.BaseURL, cfg.Extractor.Timeout, appLogger.Logger)

	gateway, err := initGateway(&cfg.Summarizer, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer gateway: %w", err)
	}

	orchestrator := pipeline.NewOrchestrator(&pipeline.Config{
		Store:       summaryStore,
		Extractor:   extractor,
		Summarizer:  gateway,
		Publisher:   publisher,
		Logger:      appLogger.Logger,
		Concurrency: cfg.Pipeline.Concurrency,
		QueueSize:   cfg.Pipeline.QueueSize,
	})

	// Background units live on this context, not on request contexts
	pipelineCtx, pipelineCancel := context.WithCancel(context.Background())
	defer pipelineCancel()

	orchestrator.Start(pipelineCtx)

	// Initialize router
	r := initRouter(cfg.App.Environment, appLogger.Logger, orchestrator, summaryStore)

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("Summarize API service is running",
		slog.String("address", addr),
		slog.Int("pipeline_concurrency", cfg.Pipeline.Concurrency),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop accepting requests first, then drain the pipeline
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
	}

	shutdownTimeout := cfg.Pipeline.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	done := make(chan struct{})
	go func() {
		orchestrator.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Pipeline drained")
	case <-time.After(shutdownTimeout):
		appLogger.Warn("Pipeline shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initPublisher initializes the completion-event publisher. When events are
// disabled the pipeline runs with a no-op publisher.
func initPublisher(cfg *config.EventsConfig, logger *slog.Logger) (events.Publisher, *rabbitmq.Client, error) {
	if !cfg.Enabled {
		logger.Info("Summary events disabled")
		return events.NoopPublisher{}, nil, nil
	}

	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.RabbitMQ.Host,
		Port:               cfg.RabbitMQ.Port,
		User:               cfg.RabbitMQ.User,
		Password:           cfg.RabbitMQ.Password,
		VHost:              cfg.RabbitMQ.VHost,
		ExchangeName:       cfg.RabbitMQ.Exchange.Name,
		ExchangeType:       cfg.RabbitMQ.Exchange.Type,
		ExchangeDurable:    cfg.RabbitMQ.Exchange.Durable,
		ExchangeAutoDelete: cfg.RabbitMQ.Exchange.AutoDelete,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.RabbitMQ.Connection.RetryAttempts,
		RetryInterval:      cfg.RabbitMQ.Connection.RetryInterval,
		Heartbeat:          cfg.RabbitMQ.Connection.Heartbeat,
		PublishRetries:     cfg.RabbitMQ.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.RabbitMQ.Publish.RetryInterval,
	}

	client, err := rabbitmq.NewClient(rabbitConfig, logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("RabbitMQ connection established")

	return events.NewRabbitMQPublisher(client, logger), client, nil
}

// initGateway builds both providers and the fallback gateway around them
func initGateway(cfg *config.SummarizerConfig, logger *slog.Logger) (*summarize.Gateway, error) {
	primary, err := buildProvider(&cfg.Primary, cfg.Instruction, logger)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	secondary, err := buildProvider(&cfg.Secondary, cfg.Instruction, logger)
	if err != nil {
		return nil, fmt.Errorf("secondary provider: %w", err)
	}

	return summarize.NewGateway(primary, secondary, logger), nil
}

// buildProvider constructs a provider from config, reading its API key from
// the named environment variable
func buildProvider(cfg *config.ProviderConfig, instruction string, logger *slog.Logger) (summarize.Provider, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}

	switch cfg.Name {
	case "openai":
		return summarize.NewOpenAIProvider(&summarize.OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      apiKey,
			Model:       cfg.Model,
			Instruction: instruction,
			Timeout:     cfg.Timeout,
			Logger:      logger,
		}), nil
	case "gemini":
		return summarize.NewGeminiProvider(&summarize.GeminiConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      apiKey,
			Model:       cfg.Model,
			Instruction: instruction,
			Timeout:     cfg.Timeout,
			Logger:      logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, logger *slog.Logger, orchestrator *pipeline.Orchestrator, summaryStore *store.Store) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	handlerDeps := &handler.Dependencies{
		Logger:   logger,
		Pipeline: orchestrator,
		Store:    summaryStore,
	}

	return router.SetupRouter(handlerDeps)
}
