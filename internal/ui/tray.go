package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/getlantern/systray"
	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

type Tray struct {
	store  *segment.Store
	logger *slog.Logger

	spriteItem   *systray.MenuItem
	segmentsItem *systray.MenuItem
	autoSaveItem *systray.MenuItem

	mu       sync.Mutex
	autoSave bool

	onSave func() error
	onQuit func()
}

type TrayConfig struct {
	Store    *segment.Store
	Logger   *slog.Logger
	AutoSave bool
	OnSave   func() error
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		store:    cfg.Store,
		logger:   cfg.Logger,
		autoSave: cfg.AutoSave,
		onSave:   cfg.OnSave,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("SpriteDeck")
	systray.SetTooltip("SpriteDeck Agent")

	t.spriteItem = systray.AddMenuItem("Sprite: none", "Currently open sprite sheet")
	t.spriteItem.Disable()

	t.segmentsItem = systray.AddMenuItem("Segments: 0", "Defined animation segments")
	t.segmentsItem.Disable()

	systray.AddSeparator()

	t.autoSaveItem = systray.AddMenuItem(t.autoSaveTitle(), "Toggle saving on every change")

	saveItem := systray.AddMenuItem("Save Now", "Write segments to the sidecar file")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit SpriteDeck Agent")

	// Keep the menu counters current as segments change.
	t.store.Subscribe(func(segment.Event) {
		t.refresh()
	})
	t.refresh()

	go func() {
		for {
			select {
			case <-t.autoSaveItem.ClickedCh:
				t.toggleAutoSave()
			case <-saveItem.ClickedCh:
				t.handleSave()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.spriteItem == nil || t.segmentsItem == nil {
		return
	}

	sprite := "none"
	if path := t.store.SpritePath(); path != "" {
		sprite = filepath.Base(path)
	}
	t.spriteItem.SetTitle("Sprite: " + sprite)
	t.segmentsItem.SetTitle(fmt.Sprintf("Segments: %d", t.store.Count()))
}

func (t *Tray) toggleAutoSave() {
	t.mu.Lock()
	t.autoSave = !t.autoSave
	enabled := t.autoSave
	t.mu.Unlock()

	t.store.SetAutoSave(enabled)
	t.autoSaveItem.SetTitle(t.autoSaveTitle())
	t.logger.Info("auto-save toggled from tray", "enabled", enabled)
}

func (t *Tray) autoSaveTitle() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.autoSave {
		return "Auto-Save: On"
	}
	return "Auto-Save: Off"
}

func (t *Tray) handleSave() {
	if t.onSave == nil {
		return
	}
	if err := t.onSave(); err != nil {
		t.logger.Error("failed to save segments", "error", err)
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
