package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-dwh/internal/api"
	"telegram-dwh/internal/assistant"
	"telegram-dwh/internal/config"
	"telegram-dwh/internal/logic"
	"telegram-dwh/internal/media"
	"telegram-dwh/internal/mtproto"
	"telegram-dwh/internal/persona"
	"telegram-dwh/internal/telegram"
)

func main() {
	// Load .env for local development; absence is fine
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure data directories exist
	for _, dir := range []string{filepath.Dir(cfg.Telegram.SessionFile), filepath.Dir(cfg.Media.IndexPath), cfg.Media.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create data directory %s: %v", dir, err)
		}
	}

	// Transport and session gateway
	client := mtproto.New(mtproto.Config{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		SessionFile: cfg.Telegram.SessionFile,
	})
	gateway := telegram.NewGateway(client, cfg.TelegramConfigured(), cfg.Telegram.Phone)
	if !cfg.TelegramConfigured() {
		log.Println("Warning: Telegram API credentials not configured, data endpoints disabled")
	}
	defer gateway.Close()

	svc := logic.NewService(gateway)

	// Media blob cache
	index, err := media.NewIndex(cfg.Media.IndexPath)
	if err != nil {
		log.Fatalf("Failed to open media index: %v", err)
	}
	defer index.Close()
	if err := index.Migrate(); err != nil {
		log.Fatalf("Failed to migrate media index: %v", err)
	}
	log.Println("Media index migrated successfully")

	store, err := media.NewStore(gateway, index, cfg.Media.Dir)
	if err != nil {
		log.Fatalf("Failed to create media store: %v", err)
	}

	janitor := media.NewJanitor(index, cfg.Media.TTL, cfg.Media.SweepInterval)
	janitor.Start()

	// Persona analysis (optional)
	var analyzer *persona.Analyzer
	if cfg.OpenAI.APIKey != "" {
		assistantClient := assistant.NewClient(cfg.OpenAI.APIKey, assistant.WithModel(cfg.OpenAI.Model))
		analyzer = persona.NewAnalyzer(svc, assistantClient)
		log.Println("OpenAI client initialized")
	} else {
		log.Println("Warning: OpenAI API key not configured, persona analysis disabled")
	}

	router := api.NewRouter(svc, gateway, store, analyzer, cfg.UpstreamTimeout)

	// Setup server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		janitor.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		close(done)
	}()

	log.Printf("Server starting on port %s", cfg.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	<-done
	log.Println("Server stopped gracefully")
}
