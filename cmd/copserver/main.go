// Command copserver runs the INDOPACOM theater common operating picture API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/talgya/theater-cop/internal/api"
	"github.com/talgya/theater-cop/internal/config"
	"github.com/talgya/theater-cop/internal/llm"
	"github.com/talgya/theater-cop/internal/persistence"
	"github.com/talgya/theater-cop/internal/theater"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("INDOPACOM COP: theater logistics picture",
		"nodes", len(theater.Nodes()),
		"assets", len(theater.Assets()),
		"routes", len(theater.Routes()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := db.SeedMessages(theater.SeedMessages()); err != nil {
		slog.Error("failed to seed messages", "error", err)
		os.Exit(1)
	}
	if first, ok, err := db.GetMeta("first_boot"); err != nil {
		slog.Warn("read first_boot failed", "error", err)
	} else if ok {
		slog.Info("resuming archive", "first_boot", first)
	} else if err := db.SaveMeta("first_boot", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("record first_boot failed", "error", err)
	}

	// ── LLM Client ───────────────────────────────────────────────────
	apiServer := &api.Server{
		DB:          db,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
		BriefingTTL: cfg.BriefingTTL,
		TickerTTL:   cfg.TickerTTL,
		Projector:   theater.NewProjector(42),
		StartedAt:   time.Now(),
	}

	llmClient, err := llm.NewClient(ctx, llm.Config{
		APIKey:    cfg.APIKey(),
		Model:     cfg.Model,
		MaxPerMin: cfg.LLMPerMin,
	})
	switch {
	case err != nil:
		slog.Error("LLM client init failed, panels will show fallback text", "error", err)
	case llmClient == nil:
		slog.Warn("GEMINI_API_KEY not set, LLM features disabled (panels will use fallback)")
	default:
		slog.Info("LLM client enabled", "model", llmClient.Model(), "per_minute", cfg.LLMPerMin)
		apiServer.LLM = llmClient
		apiServer.Chats = llmClient
		apiServer.Model = llmClient.Model()
	}

	if cfg.AdminKey == "" {
		slog.Warn("COP_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	// ── Metrics ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apiServer.Metrics = api.MustNewMetrics(reg)
	apiServer.Gatherer = reg

	// ── HTTP API ──────────────────────────────────────────────────────
	srv := apiServer.Start()
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)

	<-ctx.Done()
	slog.Info("received signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	fmt.Println("COP stopped.")
}
