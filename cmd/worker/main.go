package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dealscout/dealscout/internal/config"
	"github.com/dealscout/dealscout/internal/dedup"
	"github.com/dealscout/dealscout/internal/engine"
	"github.com/dealscout/dealscout/internal/extractor"
	"github.com/dealscout/dealscout/internal/patterns"
	"github.com/dealscout/dealscout/internal/publisher"
	"github.com/dealscout/dealscout/internal/resolver"
	"github.com/dealscout/dealscout/internal/source"
	"github.com/dealscout/dealscout/internal/status"
	"github.com/dealscout/dealscout/internal/validator"
)

const cycleTimeout = 4 * time.Minute

type Server struct {
	engine *engine.Engine
}

func main() {
	slog.Info("Starting deal worker...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker configured",
		"country", cfg.Country,
		"source_channel", cfg.SourceChannelID,
		"publish_channel", cfg.PublishChannelID,
		"interval", cfg.CycleInterval)

	ctx := context.Background()

	store, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing seen-store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// NewBotAPI calls getMe, so an unreachable or misconfigured publishing
	// surface fails here, before the scheduler starts.
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		slog.Error("Critical error connecting Telegram bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot connected", "username", bot.Self.UserName)

	lib := patterns.New(cfg.CurrencySymbol, cfg.DecimalSeparator, cfg.Domains, cfg.ShortLinkDomains)
	res := resolver.New(lib)
	ext := extractor.New(lib, res, cfg.AffiliateTag, cfg.Country, cfg.CurrencySymbol, cfg.Domains[0])
	v := validator.New(cfg.MinDiscountPercent, cfg.MaxPriceMinor)
	reader := source.NewTelegramReader(bot, cfg.SourceChannelID)
	pub := publisher.NewTelegram(bot, cfg.PublishChannelID, cfg.CurrencySymbol, cfg.DisclosureLink)

	eng := engine.New(reader, ext, v, store, pub, cfg)
	srv := &Server{engine: eng}

	mux := http.NewServeMux()
	mux.HandleFunc("/scrape", srv.ScrapeHandler)
	mux.HandleFunc("/health", srv.HealthHandler)
	mux.HandleFunc("/stats", srv.StatsHandler)
	mux.Handle("/metrics", status.Handler())

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	schedCtx, stopScheduler := context.WithCancel(ctx)
	go runScheduler(schedCtx, eng, cfg.CycleInterval)

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)
		stopScheduler()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped.")
}

// newStore picks the dedup backend: Firestore when a project is configured,
// else the JSON file, else process memory.
func newStore(ctx context.Context, cfg *config.Config) (dedup.Store, error) {
	switch {
	case cfg.FirestoreProject != "":
		slog.Info("Seen-store: Firestore", "project", cfg.FirestoreProject)
		return dedup.NewFirestoreStore(ctx, cfg.FirestoreProject)
	case cfg.SeenFilePath != "":
		slog.Info("Seen-store: JSON file", "path", cfg.SeenFilePath)
		return dedup.NewFileStore(cfg.SeenFilePath)
	default:
		slog.Info("Seen-store: in-memory")
		return dedup.NewMemoryStore(), nil
	}
}

// runScheduler triggers one cycle immediately, then one per interval.
// Overlap is impossible: the engine skips a trigger while a cycle runs.
func runScheduler(ctx context.Context, eng *engine.Engine, interval time.Duration) {
	runCycle(ctx, eng)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCycle(ctx, eng)
		}
	}
}

func runCycle(ctx context.Context, eng *engine.Engine) {
	cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()
	if _, err := eng.RunCycle(cycleCtx); err != nil && !errors.Is(err, engine.ErrCycleRunning) {
		slog.Error("Cycle failed", "error", err)
	}
}

// ScrapeHandler triggers a cycle asynchronously, mirroring the original
// worker endpoint the coordinator polled.
func (s *Server) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Panic in triggered cycle", "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
		defer cancel()
		if _, err := s.engine.RunCycle(ctx); errors.Is(err, engine.ErrCycleRunning) {
			slog.Info("Cycle already running, trigger skipped")
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Extraction cycle started.")
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%q}`+"\n", time.Now().Format(time.RFC3339))
}

func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		slog.Error("Failed to encode stats", "error", err)
	}
}
