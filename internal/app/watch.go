package app

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"meshdeck/internal/config"
	"meshdeck/internal/state"
)

// watchConfig re-reads the config file whenever it changes so an
// operator can adjust their position without restarting. Only the
// position is live-reloaded; everything else needs a restart.
func watchConfig(ctx context.Context, engine *state.Engine, path string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace the file on save, which
	// drops a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				reloadPosition(engine, path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("config watch: %v", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

// reloadPosition re-parses the config and re-injects the operator
// position, triggering a distance recalculation for every node.
func reloadPosition(engine *state.Engine, path string) {
	cfg, err := config.Load(path)
	if err != nil {
		engine.Logf("config reload failed: %v", err)
		return
	}
	engine.SetOperatorPosition(cfg.OperatorPosition)
	if cfg.OperatorPosition != nil {
		engine.Logf("operator position updated to %.4f, %.4f",
			cfg.OperatorPosition.Latitude, cfg.OperatorPosition.Longitude)
	} else {
		engine.Logf("operator position cleared")
	}
}
