package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utkarsh5026/servertls/pkg/conf"
	"github.com/utkarsh5026/servertls/pkg/render"
)

func main() {
	format := flag.String("format", render.FormatYAML, "Output format: yaml or json")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] config.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"servertls.yaml"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configs, err := conf.LoadAll(ctx, paths...)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Debug("Configuration loaded successfully", "files", len(configs))

	if err := render.Render(os.Stdout, *format, configs...); err != nil {
		slog.Error("Failed to render server contexts", "error", err)
		os.Exit(1)
	}
}
