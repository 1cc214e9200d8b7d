package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mission42/constellation-intent/internal/config"
	"github.com/mission42/constellation-intent/internal/creation"
	"github.com/mission42/constellation-intent/internal/handlers"
	"github.com/mission42/constellation-intent/internal/intent"
	"github.com/mission42/constellation-intent/internal/llm"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
	"github.com/mission42/constellation-intent/internal/transport"
)

const module = "main"

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.LogFilePath, cfg.IsProduction()).WithService(cfg.ServiceName)
	defer appLogger.Sync()

	appLogger.Info(module, "starting Mission42 intent service", map[string]interface{}{
		"service":  cfg.ServiceName,
		"provider": cfg.LLMProvider,
		"model":    cfg.LLMModel,
		"strategy": cfg.ExtractionStrategy,
	})

	provider, err := llm.NewProvider(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	extractor, err := intent.NewExtractor(cfg.ExtractionStrategy)
	if err != nil {
		log.Fatalf("Failed to initialize extractor: %v", err)
	}

	creator, err := creation.NewClient(cfg.CreationAPIURL,
		creation.WithTimeout(cfg.CreationTimeout),
		creation.WithAltitudeMode(cfg.CreationAltitudeMode),
	)
	if err != nil {
		log.Fatalf("Failed to initialize creation client: %v", err)
	}

	opts := []handlers.Option{
		handlers.WithLLMTimeout(cfg.LLMTimeout),
		handlers.WithMaxTokens(cfg.LLMMaxTokens),
		handlers.WithReadinessWindow(cfg.ReadinessWindow),
	}

	// NATS is optional: it adds a request/reply entry point and created events.
	var natsTransport *transport.NATSTransport
	if cfg.NatsEnabled() {
		natsTransport, err = transport.NewNATSTransport(cfg, nil, appLogger)
		if err != nil {
			log.Fatalf("Failed to initialize NATS transport: %v", err)
		}
		defer natsTransport.Close()
		opts = append(opts, handlers.WithEventPublisher(natsTransport))
	}

	resolver, err := handlers.NewResolverHandler(provider, extractor, creator, appLogger, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize resolver: %v", err)
	}

	if natsTransport != nil {
		natsTransport.SetResolver(resolver)
		if err := natsTransport.Start(); err != nil {
			log.Fatalf("Failed to start NATS transport: %v", err)
		}
	}

	server := transport.NewHTTPServer(cfg, transport.NewChatController(resolver, appLogger), appLogger)
	go func() {
		if err := server.Run(); err != nil {
			appLogger.Error(module, "http server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	appLogger.Info(module, "shutting down gracefully", map[string]interface{}{"signal": sig.String()})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Warn(module, "error during http shutdown", map[string]interface{}{"error": err.Error()})
	}

	appLogger.Info(module, "Mission42 intent service stopped", nil)
}
