//go:build !windows

package overlay

import "fyne.io/fyne/v2"

// The translucent background carries the opacity on these platforms and the
// borderless splash window already floats above the main window.

func applyNativeOpacity(fyne.Window, uint8) {}

func keepOnTop(fyne.Window) {}
