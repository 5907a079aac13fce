package notify

import (
	"context"
	"log"

	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// Trigger turns fired alarms into notifications. It keeps no state between
// alarms: each one is sent once and never retried.
type Trigger struct {
	notifier Notifier
	log      *log.Logger
}

func NewTrigger(n Notifier, logger *log.Logger) *Trigger {
	if n == nil {
		n = NoopNotifier{}
	}
	return &Trigger{notifier: n, log: logger}
}

func NotificationFor(a scheduler.Alarm) Notification {
	return Notification{Title: DefaultTitle, Body: a.Name}
}

func (t *Trigger) Fire(ctx context.Context, a scheduler.Alarm) (Notification, error) {
	n := NotificationFor(a)
	if err := t.notifier.Send(ctx, n); err != nil {
		t.logf("[ERROR] notify slot %d (%s): %v", a.Slot, a.Name, err)
		return n, err
	}
	t.logf("[INFO] notified slot %d: %s", a.Slot, a.Name)
	return n, nil
}

// Run fires every alarm from alarms until the channel closes or ctx ends.
func (t *Trigger) Run(ctx context.Context, alarms <-chan scheduler.Alarm) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-alarms:
			if !ok {
				return
			}
			_, _ = t.Fire(ctx, a)
		}
	}
}

func (t *Trigger) logf(format string, args ...any) {
	if t.log != nil {
		t.log.Printf(format, args...)
	}
}
