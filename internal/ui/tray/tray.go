// Package tray keeps the application reachable from the system tray while the
// main window is hidden.
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
)

const menuTitle = "Gamer Timer"

// App is the part of desktop.App the tray drives.
type App interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Icons are shown while no timer runs and while at least one does.
type Icons struct {
	Idle    fyne.Resource
	Running fyne.Resource
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow          func()
	OnPreferences   func()
	OnPauseAll      func()
	OnCloseOverlays func()
	OnQuit          func()
}

// Manager handles system tray state.
type Manager struct {
	app        App
	icons      Icons
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	running    int
}

// New creates a tray manager and installs its menu.
func New(app App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		icons:     icons,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem(statusLabel(0), nil)
	manager.statusItem.Disabled = true
	manager.pauseItem = fyne.NewMenuItem("Pause all timers", call(&manager.callbacks.OnPauseAll))
	manager.pauseItem.Disabled = true

	manager.refreshMenu()
	manager.refreshIcon()
	return manager
}

// Menu returns the menu currently installed in the tray.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu(menuTitle,
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show timers", call(&manager.callbacks.OnShow)),
		fyne.NewMenuItem("Preferences", call(&manager.callbacks.OnPreferences)),
		manager.pauseItem,
		fyne.NewMenuItem("Close all overlays", call(&manager.callbacks.OnCloseOverlays)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", call(&manager.callbacks.OnQuit)),
	)
}

// SetRunning updates the running timer count shown in the menu.
func (manager *Manager) SetRunning(count int) {
	if count == manager.running {
		return
	}
	wasRunning := manager.running > 0
	manager.running = count
	manager.statusItem.Label = statusLabel(count)
	manager.pauseItem.Disabled = count == 0
	manager.refreshMenu()
	if wasRunning != (count > 0) {
		manager.refreshIcon()
	}
}

// Running returns the last count passed to SetRunning.
func (manager *Manager) Running() int {
	return manager.running
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

func (manager *Manager) refreshIcon() {
	icon := manager.icons.Idle
	if manager.running > 0 && manager.icons.Running != nil {
		icon = manager.icons.Running
	}
	if manager.app != nil && icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func statusLabel(running int) string {
	switch running {
	case 0:
		return "No timers running"
	case 1:
		return "1 timer running"
	default:
		return fmt.Sprintf("%d timers running", running)
	}
}

func call(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
