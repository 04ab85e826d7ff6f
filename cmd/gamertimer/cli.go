package main

import (
	"strings"

	"gamertimer/internal/core/protocol"
	"gamertimer/internal/logging"
	"gamertimer/internal/ui/preferences"

	"github.com/pkg/errors"
)

type cli struct {
	Config     string   `help:"settings file, .yaml or .toml" type:"path"`
	DataDir    string   `name:"data-dir" help:"directory of the timer store" type:"path"`
	Store      string   `help:"timer store backend (leveldb, file)"`
	LogLevel   string   `name:"log-level" help:"log level (debug, info, warn, error)"`
	LogFormat  string   `name:"log-format" help:"log format (terminal, json)"`
	LogFile    string   `name:"log-file" help:"write logs to this file instead of stderr" type:"path"`
	Toggle     []string `help:"start or pause timers in the running instance" placeholder:"ID"`
	Reset      []string `help:"reset timers in the running instance" placeholder:"ID"`
	Overlay    []string `help:"open the overlay of timers in the running instance" placeholder:"ID"`
	Background bool     `help:"start hidden in the system tray"`
}

// apply overrides settings with the flags that were given.
func (c cli) apply(settings preferences.Settings) (preferences.Settings, error) {
	if store := strings.TrimSpace(c.Store); store != "" {
		if store != preferences.StoreLevelDB && store != preferences.StoreFile {
			return settings, errors.Errorf("invalid store backend, %q", store)
		}
		settings.StoreBackend = store
	}
	if c.DataDir != "" {
		settings.DataDir = c.DataDir
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return settings, err
		}
		settings.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		format, err := logging.ParseFormat(c.LogFormat)
		if err != nil {
			return settings, err
		}
		settings.LogFormat = format
	}
	return settings.Normalize(), nil
}

// commands returns what a second launch forwards to the running instance.
func (c cli) commands() []protocol.Command {
	var commands []protocol.Command
	for _, id := range c.Toggle {
		commands = append(commands, protocol.Command{Kind: protocol.CommandToggle, TimerID: id})
	}
	for _, id := range c.Reset {
		commands = append(commands, protocol.Command{Kind: protocol.CommandReset, TimerID: id})
	}
	for _, id := range c.Overlay {
		commands = append(commands, protocol.Command{Kind: protocol.CommandActivate, TimerID: id})
	}
	if len(commands) == 0 && !c.Background {
		commands = append(commands, protocol.Command{Kind: protocol.CommandActivate})
	}
	return commands
}
