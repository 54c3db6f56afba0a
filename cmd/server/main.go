package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"hilyte/internal/classifier"
	"hilyte/internal/classifier/claude"
	"hilyte/internal/classifier/gemini"
	"hilyte/internal/config"
	"hilyte/internal/handler"
	"hilyte/internal/ocr"
	"hilyte/internal/port"
	"hilyte/internal/repository/postgres"
	"hilyte/internal/router"
	"hilyte/internal/service"
	s3storage "hilyte/internal/storage/s3"
	"hilyte/internal/taxonomy"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	divisionRepo := postgres.NewDivisionRepo(db)
	runRepo := postgres.NewRunRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize the OCR adapter and LLM classifier chain
	ocrClient := ocr.NewClient(&cfg.OCR)
	llm, err := buildClassifier(&cfg.Classifier)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}

	// Division taxonomy: prefer the seeded database table, fall back to the
	// built-in CSI MasterFormat set when the table is empty or unreachable.
	table := loadDivisionTable(divisionRepo)

	// Initialize services
	extractionSvc := service.NewExtractionService(cfg, ocrClient, llm, table, runRepo, s3Client)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	exportH := handler.NewExportHandler(extractionSvc)
	divisionH := handler.NewDivisionHandler(divisionRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(extractionH, exportH, divisionH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildClassifier registers the provider factories and assembles the
// primary/secondary fallback chain from config.
func buildClassifier(cfg *config.ClassifierConfig) (port.Classifier, error) {
	classifier.RegisterProvider("claude", func(c *config.ClassifierProviderConfig) (port.Classifier, error) {
		return claude.NewClassifier(c), nil
	})
	classifier.RegisterProvider("gemini", func(c *config.ClassifierProviderConfig) (port.Classifier, error) {
		return gemini.NewClassifier(c), nil
	})

	primary, err := classifier.NewClassifier(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	providers := []port.Classifier{primary}
	names := []string{cfg.Primary.Provider}
	if secondaryCfg := cfg.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := classifier.NewClassifier(secondaryCfg)
		if err != nil {
			return nil, err
		}
		providers = append(providers, secondary)
		names = append(names, secondaryCfg.Provider)
	}

	return classifier.NewFallbackClassifier(providers, names), nil
}

func loadDivisionTable(repo port.DivisionRepository) taxonomy.Table {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	divs, err := repo.ListActive(ctx)
	if err != nil || len(divs) == 0 {
		log.Printf("[SERVER] division table not seeded, using built-in defaults (err=%v)", err)
		return taxonomy.DefaultTable()
	}
	log.Printf("[SERVER] loaded %d divisions from database", len(divs))
	return taxonomy.NewTable(divs)
}
