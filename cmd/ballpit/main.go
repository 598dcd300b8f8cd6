// Ball pit viewer: colliders exported from a modelling tool, a floor, and a
// row of balls to kick around.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ballpit/internal/config"
)

func main() {
	configPath := flag.String("config", "ballpit.yaml", "YAML config; defaults are used when the file is absent")
	colliders := flag.String("colliders", "", "collider JSON file, overrides colliders.path")
	noAudio := flag.Bool("mute", false, "disable impact sounds")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *colliders != "" {
		cfg.Colliders.Path = *colliders
	}
	if *noAudio {
		cfg.Audio.Enabled = false
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("ballpit failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
