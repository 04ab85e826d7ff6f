//go:build darwin

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Enabled reports whether the launch agent exists.
func (item *LoginItem) Enabled() bool {
	path, err := item.plistPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (item *LoginItem) enable() error {
	path, err := item.plistPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create LaunchAgents dir")
	}
	return errors.Wrap(os.WriteFile(path, []byte(item.plist()), 0o644), "write plist")
}

func (item *LoginItem) disable() error {
	path, err := item.plistPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove plist")
	}
	return nil
}

func (item *LoginItem) label() string {
	return "com.gamertimer." + item.slug()
}

func (item *LoginItem) plistPath() (string, error) {
	base := item.baseDir
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		base = filepath.Join(homeDir, "Library")
	}
	return filepath.Join(base, "LaunchAgents", item.label()+".plist"), nil
}

func (item *LoginItem) plist() string {
	escape := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;").Replace

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>--background</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, escape(item.label()), escape(item.execPath))
}
