package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emberengine/ember/internal/config"
	"github.com/emberengine/ember/internal/core/event"
	"github.com/emberengine/ember/internal/engine"
	"github.com/emberengine/ember/internal/render"
	"github.com/emberengine/ember/internal/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/ember.toml"
	if p := os.Getenv("EMBER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Renderer: websocket viewer when enabled, headless otherwise
	var renderer render.Renderer = render.Noop{}
	if cfg.Renderer.Enabled {
		viewer := render.NewViewer(log)
		if err := viewer.Start(ctx, cfg.Renderer.BindAddress); err != nil {
			return fmt.Errorf("viewer: %w", err)
		}
		renderer = viewer
	}

	// 4. Build the engine
	eng, err := engine.New(cfg, renderer, log)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	// 5. Spawn the boot scene, if configured
	if cfg.Engine.Scene != "" {
		s, err := scene.Load(cfg.Engine.Scene)
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		if err := scene.Spawn(s, eng); err != nil {
			return fmt.Errorf("spawn scene: %w", err)
		}
		log.Info("scene spawned",
			zap.String("scene", s.Name),
			zap.Int("entities", eng.Entities.Count()))
	}

	// 6. Log collisions at debug level so demo scenes are observable headless
	eng.Bus.Subscribe(event.Collision, func(any) {
		log.Debug("collision")
	})

	// 7. Run until signalled
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutdown signal", zap.String("signal", sig.String()))
		eng.Stop()
	}()

	return eng.Run(ctx)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
