package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"compucar-promo/internal/config"
	"compucar-promo/internal/database"
	"compucar-promo/internal/importer"
	"compucar-promo/internal/promo"
	"compucar-promo/internal/repository"
	"compucar-promo/internal/service"
)

// promo-import bulk-loads promo code definitions from a gzipped CSV file,
// either local or in S3 (with -s3, the argument is an object key).
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	useS3 := flag.Bool("s3", false, "read the definition file from the configured S3 bucket")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: promo-import [-s3] <path-or-key>")
	}
	ref := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	promoRepo := repository.NewPromoRepository(pool, logger)
	redemptionRepo := repository.NewRedemptionRepository(pool, logger)
	validator := promo.NewValidator(promoRepo, logger)
	promoService := service.NewPromoService(validator, promoRepo, redemptionRepo, nil, logger)

	var source importer.Source
	if *useS3 {
		if !cfg.S3.Enabled {
			return fmt.Errorf("-s3 requires S3 configuration (S3_ENABLED, S3_BUCKET)")
		}
		source, err = importer.NewS3Source(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 source: %w", err)
		}
	} else {
		source = importer.NewFileSource(logger)
	}

	result, err := importer.New(source, promoService, logger).Import(ctx, ref)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d promo codes (%d duplicates skipped)\n", result.Created, result.Duplicates)

	return nil
}
