package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contentiq/contentiq/internal/adapters/cms"
	"github.com/contentiq/contentiq/internal/adapters/llm"
	"github.com/contentiq/contentiq/internal/adapters/store"
	"github.com/contentiq/contentiq/internal/api/handlers"
	"github.com/contentiq/contentiq/internal/api/routes"
	"github.com/contentiq/contentiq/internal/application/services"
	"github.com/contentiq/contentiq/internal/domain/providers"
	"github.com/contentiq/contentiq/internal/infrastructure/clients/redis"
	"github.com/contentiq/contentiq/internal/infrastructure/observability"
	"github.com/contentiq/contentiq/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	validation := cfg.Validate()
	for _, warning := range validation.Warnings {
		log.Printf("Warning: %s", warning)
	}
	if !validation.Valid() {
		for _, issue := range validation.Issues {
			log.Printf("Configuration issue: %s", issue)
		}
		log.Fatal("Configuration is incomplete, refusing to start")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Select the analytics backend. Redis is preferred; when it is not
	// reachable at startup the process runs on the in-memory store for
	// its whole lifetime rather than flip-flopping between backends.
	var analyticsStore providers.AnalyticsStore
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Redis unavailable, using in-memory analytics store: %v", err)
		analyticsStore = store.NewInstrumentedStore(store.NewMemoryStore(), "memory", metrics)
	} else {
		defer redisClient.Close()
		analyticsStore = store.NewInstrumentedStore(store.NewRedisStore(redisClient), "redis", metrics)
		log.Println("Redis client initialized successfully")
	}

	// Build the chat provider chain: Groq first, OpenAI as fallback
	var chatProviders []providers.ChatProvider
	if cfg.LLM.GroqAPIKey != "" {
		provider, err := llm.NewProvider("groq", cfg.LLM.GroqAPIKey, cfg.LLM.GroqBaseURL, cfg.LLM.GroqModel)
		if err != nil {
			log.Printf("Warning: Failed to initialize Groq provider: %v", err)
		} else {
			chatProviders = append(chatProviders, provider)
		}
	}
	if cfg.LLM.OpenAIAPIKey != "" {
		provider, err := llm.NewProvider("openai", cfg.LLM.OpenAIAPIKey, "", cfg.LLM.OpenAIModel)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI provider: %v", err)
		} else {
			chatProviders = append(chatProviders, provider)
		}
	}
	if len(chatProviders) == 0 {
		log.Println("Warning: No LLM providers configured, chat responses will be degraded")
	}

	// Initialize the CMS content provider (MCP tool subprocess)
	var contentProvider providers.ContentProvider
	if cfg.Contentstack.APIKey != "" && cfg.Contentstack.DeliveryToken != "" {
		contentProvider = cms.NewMCPAdapter(&cfg.Contentstack)
		defer func() {
			if err := contentProvider.Close(); err != nil {
				log.Printf("Error closing CMS provider: %v", err)
			}
		}()
		log.Println("CMS content provider initialized successfully")
	} else {
		log.Println("Warning: Contentstack not configured, CMS endpoints disabled")
	}

	// Initialize services
	analyticsService := services.NewAnalyticsService(analyticsStore)
	chatService := services.NewChatService(chatProviders, metrics)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService)
	contentHandler := handlers.NewContentHandler(contentProvider)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Set up router
	router := routes.NewRouter(
		chatHandler,
		contentHandler,
		analyticsHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // streaming responses can be long-lived
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
