package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/foliocms/folio/internal/api"
	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/config"
	"github.com/foliocms/folio/pkg/metrics"
	"github.com/foliocms/folio/pkg/storage"
	"github.com/foliocms/folio/pkg/tenant"
	"github.com/foliocms/folio/pkg/tenant/deletion"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logger
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	fmt.Println("Folio - multi-tenant CMS backend")
	logger.Info("Log level set to: %s", level)

	// Initialize metrics before any store is created so every collector
	// lands in the same registry
	if cfg.Server.MetricsEnabled {
		metrics.InitRegistry()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create stores
	objects, err := config.CreateObjectStore(ctx, &cfg.Objects, metrics.NewObjectStoreMetrics())
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	documents, err := config.CreateDocumentStore(ctx, &cfg.Documents)
	if err != nil {
		log.Fatalf("Failed to create document store: %v", err)
	}
	defer func() {
		if err := documents.Close(); err != nil {
			logger.Error("Failed to close document store: %v", err)
		}
	}()

	accounts, err := config.CreateIdentityProvider(ctx, &cfg.Identity)
	if err != nil {
		log.Fatalf("Failed to create identity provider: %v", err)
	}

	// Assemble domain services
	services := api.Services{
		Storage: storage.NewManager(objects, metrics.NewStorageMetrics()),
		Quota:   storage.NewAccountant(objects),
		Tenants: tenant.NewRepository(documents),
		Deletion: deletion.NewOrchestrator(deletion.OrchestratorConfig{
			Documents: documents,
			Objects:   objects,
			Identity:  accounts,
			BatchSize: cfg.Tenants.DeletionBatchSize,
			Metrics:   metrics.NewDeletionMetrics(),
		}),
		Documents: documents,
		TenantDefaults: api.Defaults{
			QuotaBytes: cfg.Tenants.DefaultQuotaBytes,
			MaxBlogs:   cfg.Tenants.DefaultMaxBlogs,
		},
	}

	server := api.NewServer(api.Config{
		ListenAddr:      cfg.Server.ListenAddr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		MetricsEnabled:  cfg.Server.MetricsEnabled,
	}, services)

	logger.Info("Server is running. Press Ctrl+C to stop.")
	if err := server.Run(ctx); err != nil {
		logger.Error("Server error: %v", err)
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}
