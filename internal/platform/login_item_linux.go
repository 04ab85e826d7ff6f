//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Enabled reports whether the autostart desktop entry exists.
func (item *LoginItem) Enabled() bool {
	path, err := item.entryPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (item *LoginItem) enable() error {
	path, err := item.entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create autostart dir")
	}
	return errors.Wrap(os.WriteFile(path, []byte(item.desktopEntry()), 0o644), "write desktop entry")
}

func (item *LoginItem) disable() error {
	path, err := item.entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove desktop entry")
	}
	return nil
}

func (item *LoginItem) entryPath() (string, error) {
	base := item.baseDir
	if base == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve user config dir")
		}
		base = configDir
	}
	return filepath.Join(base, "autostart", item.slug()+".desktop"), nil
}

func (item *LoginItem) desktopEntry() string {
	execLine := item.execPath
	if strings.Contains(execLine, " ") && !strings.HasPrefix(execLine, `"`) {
		execLine = `"` + execLine + `"`
	}

	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s --background
X-GNOME-Autostart-enabled=true
Terminal=false
`, item.name, execLine)
}
