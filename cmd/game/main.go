package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatianab/backrooms/internal/auth"
	"github.com/tatianab/backrooms/internal/config"
	"github.com/tatianab/backrooms/internal/engine"
	"github.com/tatianab/backrooms/internal/session"
	"github.com/tatianab/backrooms/internal/store"
	"github.com/tatianab/backrooms/internal/telemetry"
	"github.com/tatianab/backrooms/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logFile, err := tea.LogToFile("backrooms.log", "")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	shutdown, err := telemetry.Setup(ctx, "backrooms-game", cfg.OTelEndpoint)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}
	defer shutdown(ctx)

	st, err := store.Open(cfg.Store, cfg.SaveDir, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	gen, err := engine.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer gen.Close()

	player := cfg.Player
	if player == "" {
		player = os.Getenv("USER")
	}
	if player == "" {
		player = "wanderer"
	}

	game := session.New(auth.Player(player), st, gen, session.Options{
		GeneratorTimeout: cfg.GeneratorTimeout,
		Logger:           log.New(logFile, "session: ", log.LstdFlags),
	})

	if err := tui.Run(game); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
