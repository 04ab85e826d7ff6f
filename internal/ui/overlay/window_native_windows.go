//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
)

const (
	gwlExStyle  = -20
	wsExLayered = 0x00080000
	lwaAlpha    = 0x2

	hwndTopmost   = ^uintptr(0)
	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010
)

var (
	user32                         = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW          = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procSetWindowPos               = user32.NewProc("SetWindowPos")
)

// withHandle runs fn with the HWND of window on the native thread.
func withHandle(window fyne.Window, fn func(hwnd uintptr)) {
	nativeWindow, ok := window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		var hwnd uintptr
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		}
		if hwnd != 0 {
			fn(hwnd)
		}
	})
}

// applyNativeOpacity makes the whole window translucent, not only its background.
func applyNativeOpacity(window fyne.Window, alpha uint8) {
	withHandle(window, func(hwnd uintptr) {
		exStyle := int64(gwlExStyle)
		index := uintptr(exStyle)
		style, _, _ := procGetWindowLongPtrW.Call(hwnd, index)
		if style&wsExLayered == 0 {
			procSetWindowLongPtrW.Call(hwnd, index, style|wsExLayered)
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), lwaAlpha)
	})
}

// keepOnTop raises the overlay above normal windows, including games in
// borderless mode.
func keepOnTop(window fyne.Window) {
	withHandle(window, func(hwnd uintptr) {
		procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize|swpNoActivate)
	})
}
