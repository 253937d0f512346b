// campfire runs a single survival session in the local terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"campfire/assets"
	"campfire/internal/config"
	"campfire/internal/game"
	xlog "campfire/internal/log"

	"github.com/gdamore/tcell/v2"
)

func main() {
	configPath := flag.String("config", "", "Path to a settings YAML file")
	logPath := flag.String("log", "", "Write logs to this file (discarded when empty)")
	name := flag.String("name", "", "Player name")
	flag.Parse()

	if err := run(*configPath, *logPath, *name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, name string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The screen owns stderr, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logPath != "" {
		f, err := xlog.OpenFile(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	xlog.Configure(xlog.Config{Level: settings.LogLevel, Output: out, Console: logPath != ""})

	tables, err := assets.Load(settings.TablesPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []game.Option{}
	if name != "" {
		opts = append(opts, game.WithPlayerName(name))
	}
	if settings.WatchTables && settings.TablesPath != "" {
		w, err := config.WatchTables(ctx, settings.TablesPath, config.DefaultDebounce)
		if err != nil {
			return err
		}
		defer w.Close() //nolint:errcheck
		opts = append(opts, game.WithTableUpdates(w.Updates()))
	}

	g, err := game.New(settings, tables, opts...)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	return g.Run(ctx, screen)
}
