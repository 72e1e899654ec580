// Package app is the composition root: it loads configuration, builds
// the reconciliation engine, starts the decoder feed and the config
// watcher, and runs the UI until the context is cancelled.
package app

import (
	"context"
	"fmt"

	"meshdeck/internal/config"
	"meshdeck/internal/feed"
	"meshdeck/internal/state"
	"meshdeck/internal/ui"
)

// Options configure the meshdeck application.
type Options struct {
	ConfigPath string // empty uses ~/.config/meshdeck/config.toml
	FeedPath   string // overrides the config's feed_path when set
}

// Run boots meshdeck until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.FeedPath != "" {
		cfg.FeedPath = opts.FeedPath
	}

	engine := state.New(cfg.OwnID, cfg.OperatorPosition)
	engine.Logf("meshdeck starting, own node %s", cfg.OwnID.Hex())

	// The decoder may not have produced any events yet; that is a
	// diagnostic, not a startup failure.
	if err := feed.Start(ctx, engine, cfg.FeedPath); err != nil {
		engine.Logf("feed unavailable: %v", err)
	}

	stopWatch, err := watchConfig(ctx, engine, cfg.Path)
	if err != nil {
		engine.Logf("config watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	return ui.Run(ui.Options{
		Context: ctx,
		Engine:  engine,
		Theme:   cfg.Theme,
	})
}
