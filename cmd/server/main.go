package main

import (
	"fmt"
	"log"
	"os"

	"github.com/comparewise/backend/config"
	httpDelivery "github.com/comparewise/backend/internal/delivery/http"
	"github.com/comparewise/backend/internal/infrastructure/axesso"
	"github.com/comparewise/backend/internal/infrastructure/index"
	"github.com/comparewise/backend/internal/infrastructure/session"
	"github.com/comparewise/backend/internal/infrastructure/storage"
	"github.com/comparewise/backend/internal/usecase"
	"github.com/spf13/afero"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting CompareWise Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Credentials are not required to start; calls made without them fail upstream
	if cfg.Lookup.APIKey == "" {
		log.Printf("WARNING: product lookup API key NOT CONFIGURED - lookups will fail!")
	}
	if cfg.LLM.APIKey == "" {
		log.Printf("WARNING: LLM API key NOT CONFIGURED - chat will fail!")
	}

	// Initialize infrastructure dependencies
	writer, err := storage.NewFileWriter(afero.NewOsFs(), cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("Failed to prepare storage directory: %v", err)
	}
	log.Printf("Product records directory: %s", writer.Dir())

	lookupClient := axesso.NewClient(
		cfg.Lookup.APIKey,
		cfg.Lookup.APIHost,
		cfg.Lookup.BaseURL,
		cfg.Lookup.MarketplaceURL,
		cfg.Lookup.Timeout,
	)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		lookupClient.SetDebug(true)
		log.Printf("Lookup client debug mode enabled")
	}

	indexer := index.NewBuilder(
		index.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL),
		afero.NewOsFs(),
		index.Options{
			Model:          cfg.LLM.Model,
			EmbeddingModel: cfg.LLM.EmbeddingModel,
			Temperature:    cfg.LLM.Temperature,
			SystemPrompt:   cfg.LLM.SystemPrompt,
			TopK:           cfg.LLM.TopK,
			ChunkSize:      cfg.LLM.ChunkSize,
			ChunkOverlap:   cfg.LLM.ChunkOverlap,
		},
	)
	log.Printf("LLM: model=%s, embeddings=%s, top_k=%d", cfg.LLM.Model, cfg.LLM.EmbeddingModel, cfg.LLM.TopK)

	sessions := session.NewMemoryStore(cfg.Session.TTL)
	defer sessions.Close()
	log.Printf("Session TTL: %s", cfg.Session.TTL)

	// Initialize usecase layer
	sessionService := usecase.NewSessionService(sessions, lookupClient, writer, indexer)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(sessionService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
