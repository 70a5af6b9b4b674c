// Command worldd runs the consequence propagation engine for a persistent
// galactic RPG world.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/GameMasterRPG/GalacticConsequence/internal/api"
	"github.com/GameMasterRPG/GalacticConsequence/internal/config"
	"github.com/GameMasterRPG/GalacticConsequence/internal/dialogue"
	"github.com/GameMasterRPG/GalacticConsequence/internal/engine"
	"github.com/GameMasterRPG/GalacticConsequence/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Galactic Consequence — persistent world consequence engine")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	wf, err := config.LoadWorldFile(cfg.WorldFile)
	if err != nil {
		slog.Error("failed to load world file", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	st, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Dialogue ──────────────────────────────────────────────────────
	var gen dialogue.Generator
	if client := dialogue.NewClient(cfg.DialogueAPIKey, cfg.DialogueURL, cfg.DialogueModel); client != nil {
		gen = client
		slog.Info("dialogue client enabled", "model", cfg.DialogueModel)
	} else {
		slog.Warn("DIALOGUE_API_KEY not set — NPC replies will use canned fallbacks")
	}

	// ── World ─────────────────────────────────────────────────────────
	world, err := engine.NewWorld(st, engine.Options{
		Seed:        cfg.Seed,
		RegionCount: wf.Regions,
		Factions:    wf.Factions,
		Templates:   wf.QuestTemplates,
		NPCNames:    wf.NPCs,
		Dialogue:    gen,
		LockWait:    cfg.LockWait,
	})
	if err != nil {
		slog.Error("failed to initialize world", "error", err)
		st.Close()
		os.Exit(1)
	}
	defer world.Close()

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("WORLDD_ADMIN_KEY not set — control-plane POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		World:    world,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Ticker ────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	ticker := engine.NewTicker(world, cfg.TickInterval)
	go ticker.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("\nThe galaxy is watching. API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Running... (Ctrl+C to stop)")

	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	cancel()

	fmt.Println("Engine stopped. World state persisted.")
}
