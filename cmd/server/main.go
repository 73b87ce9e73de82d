package main

import (
	"fmt"
	"log"

	"itemize/internal/app"
	"itemize/internal/config"
	"itemize/internal/email/noop"
	"itemize/internal/email/ses"
	"itemize/internal/handler"
	"itemize/internal/port"
	"itemize/internal/repository/postgres"
	"itemize/internal/router"
	"itemize/internal/service"
	s3storage "itemize/internal/storage/s3"
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

	components, err := app.Build(cfg, app.Flags{})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer components.Close()

	invoiceRepo := postgres.NewInvoiceRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	invoiceSvc := service.NewInvoiceService(
		components.Pipeline, invoiceRepo, s3Client, components.Source, notifier, cfg.Email.DigestTo)

	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(invoiceH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func buildNotifier(cfg *config.Config) (port.EscalationNotifier, error) {
	switch cfg.Email.Provider {
	case "ses":
		n, err := ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return n, nil
	default:
		return noop.NewNoopSender(), nil
	}
}
