package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compucar-promo/internal/config"
	"compucar-promo/internal/database"
	"compucar-promo/internal/events"
	"compucar-promo/internal/handler"
	"compucar-promo/internal/promo"
	"compucar-promo/internal/repository"
	"compucar-promo/internal/router"
	"compucar-promo/internal/service"

	"github.com/twmb/franz-go/pkg/kgo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting promo code API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Apply schema migrations
	if err := database.RunMigrations(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize repositories and the validation engine
	promoRepo := repository.NewPromoRepository(pool, logger)
	redemptionRepo := repository.NewRedemptionRepository(pool, logger)
	validator := promo.NewValidator(promoRepo, logger)

	// Initialize event plumbing; without Kafka the service runs HTTP-only.
	var publisher service.Publisher = service.NopPublisher{}
	var producerClient, consumerClient *kgo.Client

	if cfg.Kafka.Enabled {
		producerClient, err = events.NewProducerClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return fmt.Errorf("failed to create Kafka producer client: %w", err)
		}
		defer producerClient.Close()
		publisher = events.NewPublisher(producerClient, logger)
	} else {
		logger.Info().Msg("Kafka disabled, redemption events will not be published")
	}

	// Initialize service
	promoService := service.NewPromoService(validator, promoRepo, redemptionRepo, publisher, logger)

	// Consume order-finalization events when Kafka is enabled.
	if cfg.Kafka.Enabled {
		consumerClient, err = events.NewConsumerClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.GroupID)
		if err != nil {
			return fmt.Errorf("failed to create Kafka consumer client: %w", err)
		}
		defer consumerClient.Close()

		consumer := events.NewConsumer(consumerClient, promoService, logger)
		go consumer.Start(ctx)
	}

	// Initialize HTTP handlers
	promoHandler := handler.NewPromoHandler(promoService, logger)
	adminHandler := handler.NewAdminHandler(promoService, logger)

	// Initialize router
	mux := router.New(promoHandler, adminHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the consumer before draining HTTP
		cancel()

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
