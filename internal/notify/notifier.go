package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const AppName = "remindd"

// DefaultTitle heads every reminder notification; the body carries the name.
const DefaultTitle = "Reminder"

const (
	KindDBus = "dbus"
	KindExec = "exec"
	KindNone = "none"
)

type Notification struct {
	Title string
	Body  string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Prober is implemented by notifiers that can tell up front whether a
// notification would reach the user.
type Prober interface {
	Probe(ctx context.Context) error
}

type NoopNotifier struct{}

func (NoopNotifier) Send(context.Context, Notification) error { return nil }

// New builds the notifier named by kind. A D-Bus notifier that cannot reach
// the session bus is returned as an error so the caller can fall back.
func New(kind string, logger *log.Logger) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindDBus:
		return NewDBusNotifier(logger)
	case KindExec:
		return ExecNotifier{}, nil
	case KindNone:
		return NoopNotifier{}, nil
	default:
		return nil, fmt.Errorf("notify: unknown notifier %q", kind)
	}
}

// Probe reports whether n can deliver. Notifiers without a probe are assumed
// to work.
func Probe(ctx context.Context, n Notifier) error {
	p, ok := n.(Prober)
	if !ok {
		return nil
	}
	return p.Probe(ctx)
}
