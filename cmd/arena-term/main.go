package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Echo-Arena/internal/app"
	"github.com/Garsondee/Echo-Arena/internal/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "arena-term:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "echo_arena.yaml", "optional YAML settings file")
	logPath := flag.String("log", "", "write logs to this file (the terminal is taken by the game)")
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	status := term.NewStatus()
	a, err := app.Bootstrap(app.Options{
		ConfigPath: *cfgPath,
		Presenter:  status,
		LogOutput:  logOut,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	f, err := term.New(term.Options{Screen: screen, Session: a.Session, Status: status, Log: a.Log})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := f.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Log.Info().Msg("terminal session ended")
	return nil
}
