package controller

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
)

func setup(t *testing.T, policy SlotPolicy) (*Controller, *storage.SQLiteRepository, *scheduler.Engine) {
	t.Helper()
	repo, err := storage.OpenSQLite(storage.DriverCGO, filepath.Join(t.TempDir(), "controller.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	// The engine is never started, so armed alarms stay pending for
	// inspection.
	engine := scheduler.NewEngine(4)
	t.Cleanup(engine.Stop)
	return New(repo, engine, time.Local, policy, nil), repo, engine
}

func TestAddPersistsAndArmsNoonDayBefore(t *testing.T) {
	c, repo, engine := setup(t, FixedSlot{})

	res, err := c.Add(t.Context(), "X", "25/12/2030")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !res.Scheduled || res.ParseErr != nil {
		t.Fatalf("expected scheduled result, got %#v", res)
	}

	rows, err := repo.GetAll(t.Context())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "X" || rows[0].Date != "25/12/2030" {
		t.Fatalf("unexpected rows: %#v", rows)
	}

	want := time.Date(2030, 12, 24, 12, 0, 0, 0, time.Local)
	pending := engine.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected one pending alarm, got %#v", pending)
	}
	if pending[0].Slot != NotificationID || pending[0].Name != "X" || !pending[0].FireAt.Equal(want) {
		t.Fatalf("unexpected alarm: %#v", pending[0])
	}
	if !res.FireAt.Equal(want) {
		t.Fatalf("result fire time = %v, want %v", res.FireAt, want)
	}
}

func TestDeleteRemovesRowAndCancelsFixedSlot(t *testing.T) {
	c, repo, engine := setup(t, FixedSlot{})

	res, err := c.Add(t.Context(), "X", "25/12/2030")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Delete(t.Context(), res.Reminder); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, _ := repo.GetAll(t.Context())
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %#v", rows)
	}
	if p := engine.Pending(); len(p) != 0 {
		t.Fatalf("expected slot 1 cancelled, got %#v", p)
	}
}

func TestDeleteOfAnyReminderCancelsSharedAlarm(t *testing.T) {
	c, _, engine := setup(t, FixedSlot{})

	first, _ := c.Add(t.Context(), "first", "01/06/2031")
	if _, err := c.Add(t.Context(), "second", "02/06/2031"); err != nil {
		t.Fatalf("add second: %v", err)
	}
	if err := c.Delete(t.Context(), first.Reminder); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if p := engine.Pending(); len(p) != 0 {
		t.Fatalf("expected the shared slot cancelled, got %#v", p)
	}
}

func TestSecondAddReplacesPendingAlarm(t *testing.T) {
	c, repo, engine := setup(t, FixedSlot{})

	if _, err := c.Add(t.Context(), "A", "10/10/2030"); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := c.Add(t.Context(), "B", "11/11/2030"); err != nil {
		t.Fatalf("add B: %v", err)
	}

	rows, _ := repo.GetAll(t.Context())
	if len(rows) != 2 {
		t.Fatalf("expected both rows persisted, got %#v", rows)
	}
	pending := engine.Pending()
	if len(pending) != 1 || pending[0].Name != "B" {
		t.Fatalf("expected only B pending, got %#v", pending)
	}
}

func TestPerReminderSlotKeepsBothAlarms(t *testing.T) {
	c, _, engine := setup(t, PerReminderSlot{})

	a, _ := c.Add(t.Context(), "A", "10/10/2030")
	if _, err := c.Add(t.Context(), "B", "11/11/2030"); err != nil {
		t.Fatalf("add B: %v", err)
	}
	if n := len(engine.Pending()); n != 2 {
		t.Fatalf("expected two pending alarms, got %d", n)
	}
	if err := c.Delete(t.Context(), a.Reminder); err != nil {
		t.Fatalf("delete: %v", err)
	}
	pending := engine.Pending()
	if len(pending) != 1 || pending[0].Name != "B" {
		t.Fatalf("expected B left pending, got %#v", pending)
	}
}

func TestAddWithBadDateKeepsRow(t *testing.T) {
	c, repo, engine := setup(t, FixedSlot{})

	res, err := c.Add(t.Context(), "Y", "2030-12-25")
	if err != nil {
		t.Fatalf("add returned error for a parse failure: %v", err)
	}
	if res.Scheduled || !errors.Is(res.ParseErr, model.ErrInvalidDate) {
		t.Fatalf("expected parse failure result, got %#v", res)
	}
	rows, _ := repo.GetAll(t.Context())
	if len(rows) != 1 || rows[0].Date != "2030-12-25" {
		t.Fatalf("expected unparsable row kept, got %#v", rows)
	}
	if p := engine.Pending(); len(p) != 0 {
		t.Fatalf("expected no alarm, got %#v", p)
	}
}

func TestAddPastDateStillSchedules(t *testing.T) {
	c, _, engine := setup(t, FixedSlot{})

	res, err := c.Add(t.Context(), "old", "01/01/2000")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !res.Scheduled {
		t.Fatalf("expected past date scheduled, got %#v", res)
	}
	if n := len(engine.Pending()); n != 1 {
		t.Fatalf("expected pending alarm, got %d", n)
	}
}

func TestDeleteMissingRowIsIgnored(t *testing.T) {
	c, _, _ := setup(t, FixedSlot{})
	if err := c.Delete(t.Context(), model.Reminder{ID: 999}); err != nil {
		t.Fatalf("expected missing row ignored, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Insert(context.Context, model.Reminder) (int64, error) {
	return 0, errors.New("disk full")
}
func (failingStore) GetAll(context.Context) ([]model.Reminder, error) {
	return nil, errors.New("disk full")
}
func (failingStore) Delete(context.Context, model.Reminder) error { return errors.New("disk full") }

type countingScheduler struct {
	mu        sync.Mutex
	scheduled int
	cancelled int
}

func (s *countingScheduler) Schedule(context.Context, scheduler.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled++
	return nil
}

func (s *countingScheduler) Cancel(context.Context, int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled++
	return false
}

func TestPersistenceFailuresAreReturned(t *testing.T) {
	sched := &countingScheduler{}
	c := New(failingStore{}, sched, nil, nil, nil)

	if _, err := c.Add(t.Context(), "x", "01/01/2030"); err == nil {
		t.Fatal("expected insert failure")
	}
	if err := c.Delete(t.Context(), model.Reminder{ID: 1}); err == nil {
		t.Fatal("expected delete failure")
	}
	if _, err := c.Refresh(t.Context()); err == nil {
		t.Fatal("expected refresh failure")
	}
	if sched.scheduled != 0 || sched.cancelled != 0 {
		t.Fatalf("scheduler touched after persistence failure: %+v", sched)
	}
}

func TestScheduleFailureIsReported(t *testing.T) {
	c, _, engine := setup(t, FixedSlot{})
	engine.Stop()

	res, err := c.Add(t.Context(), "late", "01/01/2031")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if res.Scheduled || !errors.Is(res.ScheduleErr, scheduler.ErrEngineStopped) {
		t.Fatalf("expected schedule error, got %#v", res)
	}
}

func TestSlotPolicyFor(t *testing.T) {
	for in, want := range map[string]string{"": "fixed", "fixed": "fixed", " Per-Reminder ": "per-reminder"} {
		p, err := SlotPolicyFor(in)
		if err != nil {
			t.Fatalf("SlotPolicyFor(%q): %v", in, err)
		}
		if p.Name() != want {
			t.Fatalf("SlotPolicyFor(%q) = %s, want %s", in, p.Name(), want)
		}
	}
	if _, err := SlotPolicyFor("random"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
