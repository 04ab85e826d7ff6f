package platform

import (
	"strings"

	"github.com/pkg/errors"
)

// LoginItem registers the application to start with the user session.
type LoginItem struct {
	name     string
	execPath string
	baseDir  string
}

// NewLoginItem describes the login entry for execPath.
func NewLoginItem(name, execPath string) *LoginItem {
	return &LoginItem{name: name, execPath: execPath}
}

// Apply enables or disables the entry.
func (item *LoginItem) Apply(enabled bool) error {
	if item.name == "" {
		return errors.New("login item: app name is empty")
	}
	if enabled {
		if item.execPath == "" {
			return errors.New("login item: exec path is empty")
		}
		return errors.Wrap(item.enable(), "enable login item")
	}
	return errors.Wrap(item.disable(), "disable login item")
}

func (item *LoginItem) slug() string {
	name := strings.ToLower(strings.TrimSpace(item.name))
	return strings.ReplaceAll(name, " ", "-")
}
