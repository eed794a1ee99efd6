package notification

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest      = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
)

// Urgency hint values understood by freedesktop notification daemons.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// busObject is the subset of dbus.BusObject used to post notifications.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DesktopNotifier posts reminders through the freedesktop notification daemon
// on the D-Bus session bus. Each reminder replaces the previous popup.
type DesktopNotifier struct {
	conn    *dbus.Conn
	obj     busObject
	appName string
	expire  time.Duration

	mu     sync.Mutex
	lastID uint32
}

// NewDesktopNotifier connects to the session bus.
func NewDesktopNotifier(appName string, expire time.Duration) (*DesktopNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	n := newDesktopNotifier(conn.Object(notificationsDest, notificationsPath), appName, expire)
	n.conn = conn
	return n, nil
}

func newDesktopNotifier(obj busObject, appName string, expire time.Duration) *DesktopNotifier {
	return &DesktopNotifier{
		obj:     obj,
		appName: appName,
		expire:  expire,
	}
}

// Send implements the Notifier interface
func (d *DesktopNotifier) Send(notification Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// -1 lets the notification daemon pick the expiry
	timeout := int32(-1)
	if d.expire > 0 {
		timeout = int32(d.expire.Milliseconds())
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyFor(notification.Variant)),
	}

	var id uint32
	err := d.obj.
		Call(notificationsInterface+".Notify", 0,
			d.appName,
			d.lastID,
			"",
			notification.Title,
			notification.Message,
			[]string{},
			hints,
			timeout,
		).
		Store(&id)
	if err != nil {
		return fmt.Errorf("failed to send desktop notification: %w", err)
	}

	d.lastID = id
	return nil
}

// Close closes the session bus connection.
func (d *DesktopNotifier) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func urgencyFor(variant string) byte {
	switch variant {
	case "error":
		return urgencyCritical
	case "success":
		return urgencyLow
	default:
		return urgencyNormal
	}
}
