package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/sandeepkv93/remindd/internal/scheduler"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestTriggerFireSendsNameAsBody(t *testing.T) {
	rec := &recordingNotifier{}
	trig := NewTrigger(rec, nil)

	n, err := trig.Fire(t.Context(), scheduler.Alarm{Slot: 1, Name: "Dentist"})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if n.Title != DefaultTitle || n.Body != "Dentist" {
		t.Fatalf("unexpected notification: %#v", n)
	}
	if rec.count() != 1 {
		t.Fatalf("expected one send, got %d", rec.count())
	}
}

func TestTriggerFireDoesNotRetry(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("bus gone")}
	trig := NewTrigger(rec, nil)

	if _, err := trig.Fire(t.Context(), scheduler.Alarm{Slot: 1, Name: "x"}); err == nil {
		t.Fatal("expected send error to be returned")
	}
	if rec.count() != 1 {
		t.Fatalf("expected a single attempt, got %d", rec.count())
	}
}

func TestTriggerRunDrainsUntilClosed(t *testing.T) {
	rec := &recordingNotifier{}
	trig := NewTrigger(rec, nil)
	ch := make(chan scheduler.Alarm, 3)
	ch <- scheduler.Alarm{Slot: 1, Name: "a"}
	ch <- scheduler.Alarm{Slot: 1, Name: "b"}
	close(ch)

	done := make(chan struct{})
	go func() {
		trig.Run(t.Context(), ch)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after channel close")
	}
	if rec.count() != 2 {
		t.Fatalf("expected two notifications, got %d", rec.count())
	}
}

func TestTriggerRunStopsOnContext(t *testing.T) {
	trig := NewTrigger(nil, nil)
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		trig.Run(ctx, make(chan scheduler.Alarm))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run ignored cancellation")
	}
}

func TestNewSelectsNotifier(t *testing.T) {
	if n, err := New("none", nil); err != nil {
		t.Fatalf("none: %v", err)
	} else if _, ok := n.(NoopNotifier); !ok {
		t.Fatalf("expected NoopNotifier, got %T", n)
	}
	if n, err := New("EXEC", nil); err != nil {
		t.Fatalf("exec: %v", err)
	} else if _, ok := n.(ExecNotifier); !ok {
		t.Fatalf("expected ExecNotifier, got %T", n)
	}
	if _, err := New("pigeon", nil); err == nil {
		t.Fatal("expected unknown notifier error")
	}
}

func TestProbeWithoutProberSucceeds(t *testing.T) {
	if err := Probe(t.Context(), NoopNotifier{}); err != nil {
		t.Fatalf("probe noop: %v", err)
	}
}

func TestEscapeAppleScript(t *testing.T) {
	got := escapeAppleScript(`say "hi" \ bye`)
	want := `say \"hi\" \\ bye`
	if got != want {
		t.Fatalf("escapeAppleScript = %q, want %q", got, want)
	}
}

// fakeObject answers the two calls the notifier makes. The embedded
// interface is nil; any other method would panic.
type fakeObject struct {
	dbus.BusObject
	method string
	args   []any
	reply  []any
	err    error
}

func (f *fakeObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.method = method
	f.args = args
	return &dbus.Call{Err: f.err, Body: f.reply}
}

type fakeConn struct {
	notify *fakeObject
	bus    *fakeObject
	closed bool
}

func (c *fakeConn) Object(string, dbus.ObjectPath) dbus.BusObject { return c.notify }
func (c *fakeConn) BusObject() dbus.BusObject                   { return c.bus }
func (c *fakeConn) Close() error                                { c.closed = true; return nil }

func TestDBusNotifierSendsNotifyCall(t *testing.T) {
	conn := &fakeConn{notify: &fakeObject{reply: []any{uint32(42)}}}
	d := newDBusNotifier(conn, nil)

	if err := d.Send(t.Context(), Notification{Title: "Reminder", Body: "Dentist"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if conn.notify.method != notifyMethod {
		t.Fatalf("called %q", conn.notify.method)
	}
	args := conn.notify.args
	if len(args) != 8 || args[0] != AppName || args[3] != "Reminder" || args[4] != "Dentist" {
		t.Fatalf("unexpected notify args: %#v", args)
	}
	if args[1] != uint32(0) {
		t.Fatalf("first notification should not replace anything, got %v", args[1])
	}

	if err := d.Send(t.Context(), Notification{Title: "Reminder", Body: "Again"}); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if conn.notify.args[1] != uint32(42) {
		t.Fatalf("expected replaces_id 42, got %v", conn.notify.args[1])
	}

	if err := d.Close(); err != nil || !conn.closed {
		t.Fatalf("close: %v closed=%v", err, conn.closed)
	}
}

func TestDBusNotifierSendError(t *testing.T) {
	conn := &fakeConn{notify: &fakeObject{err: errors.New("no reply")}}
	d := newDBusNotifier(conn, nil)
	if err := d.Send(t.Context(), Notification{Title: "t", Body: "b"}); err == nil {
		t.Fatal("expected error from failed call")
	}
}

func TestDBusProbe(t *testing.T) {
	owned := newDBusNotifier(&fakeConn{bus: &fakeObject{reply: []any{true}}}, nil)
	if err := owned.Probe(t.Context()); err != nil {
		t.Fatalf("probe owned: %v", err)
	}

	bus := &fakeObject{reply: []any{false}}
	missing := newDBusNotifier(&fakeConn{bus: bus}, nil)
	if err := missing.Probe(t.Context()); !errors.Is(err, ErrNoNotificationService) {
		t.Fatalf("expected ErrNoNotificationService, got %v", err)
	}
	if bus.method != hasOwner || len(bus.args) != 1 || bus.args[0] != notifyObj {
		t.Fatalf("unexpected probe call %q %#v", bus.method, bus.args)
	}

	broken := newDBusNotifier(&fakeConn{bus: &fakeObject{err: errors.New("denied")}}, nil)
	if err := broken.Probe(t.Context()); err == nil {
		t.Fatal("expected probe error")
	}
}
