package platform

// NotifyFunc shows a notification through the GUI toolkit.
type NotifyFunc func(title, body string)

// Notifier sends desktop notifications.
type Notifier struct {
	appName  string
	fallback NotifyFunc
	native   nativeNotifier
}

type nativeNotifier interface {
	notify(appName, title, body string) error
}

// NewNotifier prefers the native notification service and uses fallback when
// it is unavailable.
func NewNotifier(appName string, fallback NotifyFunc) *Notifier {
	return &Notifier{
		appName:  appName,
		fallback: fallback,
		native:   newNativeNotifier(),
	}
}

// Notify shows title and body.
func (notifier *Notifier) Notify(title, body string) error {
	if notifier.native != nil {
		if err := notifier.native.notify(notifier.appName, title, body); err == nil || notifier.fallback == nil {
			return err
		}
	}
	if notifier.fallback != nil {
		notifier.fallback(title, body)
	}
	return nil
}
