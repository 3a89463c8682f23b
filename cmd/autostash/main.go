package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/autostash/internal/config"
	"github.com/xonecas/autostash/internal/engine"
	"github.com/xonecas/autostash/internal/tui"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config-path>\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := setupFileLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to setup logging: %v\n", err)
	}

	sys, err := engine.Bootstrap(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting autostash: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.New(sys.Fabric.AsContract()))

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running autostash: %v\n", err)
		sys.Shutdown()
		os.Exit(1)
	}

	if err := sys.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		os.Exit(1)
	}
}

func setupFileLogging(cfg *config.Config) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logPath := cfg.LogPathOrDefault()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return err
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	log.Logger = log.Output(file)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	return nil
}
