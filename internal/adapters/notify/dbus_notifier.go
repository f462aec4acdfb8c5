package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"tomat/internal/logging"
	"tomat/internal/ports"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
	notifyMethod      = notificationsName + ".Notify"
	appName           = "tomat"
)

// Connector opens the bus connection; swapped out in tests
type Connector func() (Caller, error)

// Caller is the subset of *dbus.Conn the notifier needs
type Caller interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// DBusNotifier implements ports.Notifier over the freedesktop Notifications D-Bus API
type DBusNotifier struct {
	conn    Caller
	connect Connector
	icon    string
	mu      sync.Mutex
	timeout int32 // milliseconds
}

// Compile-time interface verification
var _ ports.Notifier = (*DBusNotifier)(nil)

// NewDBusNotifier creates a notifier that connects to the session bus lazily
func NewDBusNotifier(icon string, timeoutMillis int) *DBusNotifier {
	return &DBusNotifier{
		connect: func() (Caller, error) { return dbus.SessionBus() },
		icon:    icon,
		timeout: int32(timeoutMillis),
	}
}

// Notify sends one notification and returns the bus error, if any
func (n *DBusNotifier) Notify(ctx context.Context, summary, body string) error {
	conn, err := n.connection()
	if err != nil {
		return err
	}

	obj := conn.Object(notificationsName, notificationsPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		appName,
		uint32(0),
		n.icon,
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		n.timeout,
	)
	if call.Err != nil {
		n.reset()
		return fmt.Errorf("notification failed: %w", call.Err)
	}

	logging.Logger.Debug("Notification sent", "summary", summary)
	return nil
}

func (n *DBusNotifier) connection() (Caller, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		return n.conn, nil
	}
	conn, err := n.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	n.conn = conn
	return conn, nil
}

// reset drops the cached connection so the next call reconnects
func (n *DBusNotifier) reset() {
	n.mu.Lock()
	n.conn = nil
	n.mu.Unlock()
}
