// cmd/zenith-sim/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/opd-ai/go-zenith/pkg/config"
	"github.com/opd-ai/go-zenith/pkg/engine"
	"github.com/opd-ai/go-zenith/pkg/event"
	"github.com/opd-ai/go-zenith/pkg/level"
	"github.com/opd-ai/go-zenith/pkg/logging"
)

type options struct {
	configPath string
	levelPath  string
	ticks      uint64
	watch      bool
}

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), "")

	configPath := flag.String("config", "physics.json", "Path to physics configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	levelPath := flag.String("level", "levels/arena.yaml", "Path to YAML level file")
	ticks := flag.Uint64("ticks", 0, "Number of ticks to run (0 runs until interrupted)")
	watch := flag.Bool("watch", false, "Reload the level when its file changes")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		configPath: *configPath,
		levelPath:  *levelPath,
		ticks:      *ticks,
		watch:      *watch,
	}
	if err := run(ctx, opts, logger); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context, path string, logger *logging.Logger) (*config.PhysicsConfig, error) {
	var cfg *config.PhysicsConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment configuration: %w", err)
	}
	return cfg, nil
}

// buildWorld creates a world from a level file and hooks its events up to
// the log.
func buildWorld(ctx context.Context, cfg *config.PhysicsConfig, path string, logger *logging.Logger) (*engine.World, error) {
	def, err := level.Load(path)
	if err != nil {
		return nil, err
	}
	w, err := engine.NewWorld(cfg, logger)
	if err != nil {
		return nil, err
	}

	w.EventBus.Subscribe(event.StaticContact, func(e event.Event) {
		ev := e.(*event.ContactEvent)
		logger.Debug(ctx, "Static contact",
			"tick", ev.Tick,
			"body", int(ev.Body),
			"owner", uint64(ev.Contact.Owner),
			"normal_speed", ev.Contact.NormalSpeed,
			"tangent_speed", ev.Contact.TangentSpeed,
		)
	})
	w.EventBus.Subscribe(event.TriggerOverlap, func(e event.Event) {
		ev := e.(*event.OverlapEvent)
		logger.Debug(ctx, "Trigger overlap",
			"tick", ev.Tick,
			"body", int(ev.Body),
			"owner", uint64(ev.Owner),
			"intensity", ev.Intensity,
		)
	})
	w.EventBus.Subscribe(event.LevelLoaded, func(e event.Event) {
		ev := e.(*event.LevelEvent)
		logger.Info(ctx, "Level loaded",
			"level_path", ev.Path,
			"objects", ev.Objects,
			"colliders", ev.Colliders,
			"bodies", ev.Bodies,
		)
	})

	if err := def.Apply(ctx, w); err != nil {
		return nil, err
	}
	objects, colliders, bodies := w.Counts()
	w.EventBus.Publish(event.NewLevelEvent(w, path, objects, colliders, bodies))
	return w, nil
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	cfg, err := loadConfig(ctx, opts.configPath, logger)
	if err != nil {
		return err
	}

	world, err := buildWorld(ctx, cfg, opts.levelPath, logger)
	if err != nil {
		return err
	}

	var reload <-chan string
	var watchErrs <-chan error
	if opts.watch {
		watcher, err := level.NewWatcher(filepath.Dir(opts.levelPath))
		if err != nil {
			return fmt.Errorf("failed to watch level: %w", err)
		}
		defer watcher.Close()
		reload, watchErrs = watcher.Events, watcher.Errors
	}

	logger.Info(ctx, "Starting simulation",
		"level_path", opts.levelPath,
		"tick_rate", cfg.TickRate,
		"workers", cfg.Workers,
		"ticks", opts.ticks,
	)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TickRate))
	defer ticker.Stop()

	var done uint64
	for opts.ticks == 0 || done < opts.ticks {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Shutting down simulation", "ticks", done)
			summarize(ctx, world, logger)
			return nil
		case path, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			if filepath.Clean(path) != filepath.Clean(opts.levelPath) {
				continue
			}
			next, err := buildWorld(ctx, cfg, opts.levelPath, logger)
			if err != nil {
				logger.Error(ctx, "Level reload failed, keeping current world", err,
					"level_path", opts.levelPath,
				)
				continue
			}
			world = next
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn(ctx, "Level watcher error", "error", err.Error())
		case <-ticker.C:
			if err := world.Step(ctx); err != nil {
				return err
			}
			done++
		}
	}

	summarize(ctx, world, logger)
	return nil
}

func summarize(ctx context.Context, w *engine.World, logger *logging.Logger) {
	for _, s := range w.Snapshot() {
		pos := s.Pos.Vec().Add(s.Rem)
		logger.Info(ctx, "Body state",
			"tick", w.Tick(),
			"body", int(s.Handle),
			"x", pos.X,
			"y", pos.Y,
			"vx", s.Vel.X,
			"vy", s.Vel.Y,
			"contacts", len(s.Contacts),
			"overlaps", len(s.Overlaps),
		)
	}
}
