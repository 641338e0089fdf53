package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/api"
	"github.com/spritedeck/spritedeck-agent/internal/config"
	"github.com/spritedeck/spritedeck-agent/internal/db"
	"github.com/spritedeck/spritedeck-agent/internal/logging"
	"github.com/spritedeck/spritedeck-agent/internal/overlay"
	"github.com/spritedeck/spritedeck-agent/internal/playback"
	"github.com/spritedeck/spritedeck-agent/internal/segment"
	"github.com/spritedeck/spritedeck-agent/internal/settings"
	"github.com/spritedeck/spritedeck-agent/internal/ui"
	"github.com/spritedeck/spritedeck-agent/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting spritedeck agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := settings.NewRepository(database.Conn())
	settingsSvc := settings.NewService(repo, cfg.RecentFilesLimit(), logger)

	bootCtx := context.Background()
	deviceID, err := settingsSvc.EnsureDeviceID(bootCtx)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}
	authToken, err := settingsSvc.EnsureAuthToken(bootCtx)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                 SPRITEDECK AGENT v%-7s                 ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	autoSave, err := settingsSvc.GetBool(bootCtx, settings.KeyAutoSave, cfg.AutoSave())
	if err != nil {
		logger.Warn("failed to read auto-save setting, using default", "error", err)
		autoSave = cfg.AutoSave()
	}

	store := segment.NewStore(logging.WithComponent(logger, "store"), autoSave)
	cache := overlay.NewCache()
	sync := overlay.NewSync(store, cache, nil, logging.WithComponent(logger, "sync"))
	spriteServer := playback.NewServer(logging.WithComponent(logger, "playback"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload the store when something else rewrites the active sidecar file.
	sidecarWatcher := watcher.NewPollWatcher(cfg.WatchInterval(), logging.WithComponent(logger, "watcher"))
	sidecarWatcher.OnChange(func(path string, event watcher.EventType) {
		if event == watcher.EventDelete {
			return
		}
		if err := store.Load(path); err != nil {
			logger.Warn("failed to reload sidecar", "path", path, "error", err)
			return
		}
		sync.SyncFromStore()
	})
	defer sidecarWatcher.Stop()

	watchSidecar := func(spritePath string) {
		sidecar, err := segment.SidecarPath(spritePath)
		if err != nil {
			logger.Warn("cannot derive sidecar path", "sprite", spritePath, "error", err)
			return
		}
		if err := sidecarWatcher.Watch(ctx, sidecar); err != nil {
			logger.Warn("failed to watch sidecar", "path", sidecar, "error", err)
		}
	}

	// Restore the last-opened sprite sheet if its sidecar is still around.
	if lastSprite, err := settingsSvc.Get(bootCtx, settings.KeyLastSprite); err == nil && lastSprite != "" {
		if _, err := os.Stat(lastSprite); err == nil {
			if sidecar, err := segment.SidecarPath(lastSprite); err == nil {
				if _, maxFrames, err := segment.PeekSidecar(sidecar); err == nil && maxFrames > 0 {
					store.SetSpriteContext(lastSprite, maxFrames)
					sync.SyncFromStore()
					watchSidecar(lastSprite)
					logging.WithSprite(logger, lastSprite).Info("restored last sprite", "segments", store.Count())
				}
			}
		}
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:            cfg.Port(),
		PreviewFPS:      cfg.PreviewFPS(),
		Store:           store,
		Sync:            sync,
		SpriteServer:    spriteServer,
		SettingsService: settingsSvc,
		Repository:      repo,
		Logger:          logger,
		StartTime:       startTime,
		DeviceID:        deviceID,
		OnSpriteOpened:  watchSidecar,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Store:    store,
			Logger:   logging.WithComponent(logger, "tray"),
			AutoSave: autoSave,
			OnSave: func() error {
				return store.Save()
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	if store.SpritePath() != "" && store.Count() > 0 {
		if err := store.Save(); err != nil {
			logger.Error("failed to save segments on shutdown", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
