package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	hasOwner     = "org.freedesktop.DBus.NameHasOwner"

	// expireDefault lets the notification server pick the timeout.
	expireDefault = int32(-1)
)

var ErrNoNotificationService = errors.New("notify: no notification service on the session bus")

// busConn is the part of *dbus.Conn the notifier uses.
type busConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	BusObject() dbus.BusObject
	Close() error
}

type DBusNotifier struct {
	mu   sync.Mutex
	conn busConn
	log  *log.Logger
	// lastID is handed back as replaces_id so a newer reminder replaces the
	// previous bubble instead of stacking.
	lastID uint32
}

func NewDBusNotifier(logger *log.Logger) (*DBusNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return newDBusNotifier(conn, logger), nil
}

func newDBusNotifier(conn busConn, logger *log.Logger) *DBusNotifier {
	return &DBusNotifier{conn: conn, log: logger}
}

func (d *DBusNotifier) Send(ctx context.Context, n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj := d.conn.Object(notifyObj, notifyPath)
	if obj == nil {
		return fmt.Errorf("did not find object %s (%s) on session bus", notifyObj, notifyPath)
	}

	call := obj.CallWithContext(ctx,
		notifyMethod,
		0,
		AppName,
		d.lastID,
		"",
		n.Title,
		n.Body,
		[]string{},
		map[string]dbus.Variant{},
		expireDefault,
	)
	if call.Err != nil {
		if d.log != nil {
			d.log.Printf("[ERROR] Cannot send notification %q: %s\n", n.Title, call.Err.Error())
		}
		return call.Err
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		d.lastID = id
	}
	return nil
}

func (d *DBusNotifier) Probe(ctx context.Context) error {
	var owned bool
	call := d.conn.BusObject().CallWithContext(ctx, hasOwner, 0, notifyObj)
	if call.Err != nil {
		return fmt.Errorf("probe notification service: %w", call.Err)
	}
	if err := call.Store(&owned); err != nil {
		return fmt.Errorf("probe notification service: %w", err)
	}
	if !owned {
		return ErrNoNotificationService
	}
	return nil
}

func (d *DBusNotifier) Close() error {
	return d.conn.Close()
}
