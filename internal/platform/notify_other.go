//go:build !linux

package platform

func newNativeNotifier() nativeNotifier {
	return nil
}
