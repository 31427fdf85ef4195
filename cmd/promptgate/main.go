package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/promptgate/promptgate/config"
	"github.com/promptgate/promptgate/errors"
	"github.com/promptgate/promptgate/server"
	"github.com/promptgate/promptgate/server/handlers"
	"github.com/promptgate/promptgate/server/metrics"
	"github.com/promptgate/promptgate/server/middleware"
	"github.com/promptgate/promptgate/server/processing"
	"github.com/promptgate/promptgate/server/provider"
	"github.com/promptgate/promptgate/server/routing"
	"go.uber.org/zap"
)

var (
	configFile  = flag.String("config", "", "Optional YAML overlay for server tuning and presets")
	checkConfig = flag.Bool("validate", false, "Validate configuration and exit")
	version     = flag.Bool("version", false, "Print version and exit")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("promptgate %s\n", Version)
		os.Exit(0)
	}

	// Environment configuration is validated before anything else runs;
	// any failure here is fatal with a diagnostic naming every problem.
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *configFile != "" {
		if err := config.LoadFile(cfg, *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	}

	if *checkConfig {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Critical error: Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to sync logger: %v\n", syncErr)
		}
	}()
	errors.SetLogger(logger)

	m := metrics.NewMetrics()

	resources := processing.NewResourceLoader(cfg.Resources, logger)
	defer resources.Close()

	assembler := processing.NewAssembler(resources, logger)
	client := provider.NewOpenAIClient(cfg.OpenAI, cfg.Presets[config.DefaultPreset], logger)
	invoker := provider.NewInvoker(client, logger, m)

	chat := handlers.NewChatHandler(assembler, invoker, config.DefaultPreset, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, m)
	router := routing.NewRouter(cfg, chat, m, limiter, logger)

	srv := server.NewServer(cfg.Server, router, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("Starting promptgate",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
		zap.String("environment", cfg.Environment),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
