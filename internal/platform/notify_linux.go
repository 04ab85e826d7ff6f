//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

const (
	notificationsName      = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsExpiresMS = int32(5000)
)

type dbusNotifier struct{}

func newNativeNotifier() nativeNotifier {
	return dbusNotifier{}
}

func (dbusNotifier) notify(appName, title, body string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return errors.Wrap(err, "connect session bus")
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)),
	}
	call := conn.Object(notificationsName, dbus.ObjectPath(notificationsPath)).Call(
		notificationsName+".Notify", 0,
		appName, uint32(0), "", title, body, []string{}, hints, notificationsExpiresMS,
	)
	return errors.Wrap(call.Err, "send notification")
}
