// Command resolve runs one chat turn against the configured model and prints the
// response. It reads {"messages": [...]} from the file given as first argument,
// or from stdin.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/mission42/constellation-intent/internal/config"
	"github.com/mission42/constellation-intent/internal/creation"
	"github.com/mission42/constellation-intent/internal/handlers"
	"github.com/mission42/constellation-intent/internal/intent"
	"github.com/mission42/constellation-intent/internal/llm"
	"github.com/mission42/constellation-intent/internal/models"
	"github.com/mission42/constellation-intent/internal/pkg/logger"
)

func main() {
	strategy := flag.String("strategy", "", "extraction strategy override (structured or pattern)")
	verbose := flag.Bool("v", false, "log readiness signals and dispatch to stderr")
	trace := flag.Bool("trace", false, "print readiness signals and per-candidate outcomes with the response")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *strategy != "" {
		cfg.ExtractionStrategy = *strategy
	}

	request, err := readRequest(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read request: %v", err)
	}

	appLogger := logger.NewNopLogger()
	if *verbose {
		appLogger = logger.NewConsoleLogger(os.Stderr, zapcore.DebugLevel)
	}
	defer appLogger.Sync()

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

	resolver, err := handlers.NewResolverHandler(provider, extractor, creator, appLogger,
		handlers.WithLLMTimeout(cfg.LLMTimeout),
		handlers.WithMaxTokens(cfg.LLMMaxTokens),
		handlers.WithReadinessWindow(cfg.ReadinessWindow),
	)
	if err != nil {
		log.Fatalf("Failed to initialize resolver: %v", err)
	}

	turn, err := resolver.ResolveTurn(context.Background(), request)
	if err != nil {
		log.Fatalf("Resolve failed: %v", err)
	}

	var out interface{} = turn.Response
	if *trace {
		out = turn
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Failed to write response: %v", err)
	}
}

func readRequest(path string) (*models.ChatRequest, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var request models.ChatRequest
	if err := json.NewDecoder(r).Decode(&request); err != nil {
		return nil, fmt.Errorf("invalid request JSON: %w", err)
	}
	return &request, nil
}
