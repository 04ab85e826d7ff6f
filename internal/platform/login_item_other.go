//go:build !linux && !darwin && !windows

package platform

import "github.com/pkg/errors"

var errLoginItemUnsupported = errors.New("login items are not supported on this platform")

// Enabled always reports false.
func (item *LoginItem) Enabled() bool {
	return false
}

func (item *LoginItem) enable() error {
	return errLoginItemUnsupported
}

func (item *LoginItem) disable() error {
	return nil
}
