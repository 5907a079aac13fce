package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
)

// NotificationID is the alarm slot every reminder shares under FixedSlot.
const NotificationID = 1

type Store interface {
	Insert(ctx context.Context, r model.Reminder) (int64, error)
	GetAll(ctx context.Context) ([]model.Reminder, error)
	Delete(ctx context.Context, r model.Reminder) error
}

type AlarmScheduler interface {
	Schedule(ctx context.Context, a scheduler.Alarm) error
	Cancel(ctx context.Context, slot int) bool
}

// SlotPolicy maps a reminder to the alarm slot it occupies.
type SlotPolicy interface {
	Slot(r model.Reminder) int
	Name() string
}

// FixedSlot puts every reminder in NotificationID, so a newer alarm replaces
// the pending one and deleting any reminder cancels whatever is pending.
type FixedSlot struct{}

func (FixedSlot) Slot(model.Reminder) int { return NotificationID }
func (FixedSlot) Name() string            { return "fixed" }

// PerReminderSlot gives each reminder its own alarm.
type PerReminderSlot struct{}

func (PerReminderSlot) Slot(r model.Reminder) int { return int(r.ID) }
func (PerReminderSlot) Name() string              { return "per-reminder" }

func SlotPolicyFor(name string) (SlotPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed":
		return FixedSlot{}, nil
	case "per-reminder":
		return PerReminderSlot{}, nil
	default:
		return nil, fmt.Errorf("controller: unknown alarm slot policy %q", name)
	}
}

type AddResult struct {
	Reminder    model.Reminder
	Scheduled   bool
	FireAt      time.Time
	ParseErr    error
	ScheduleErr error
}

type Controller struct {
	store  Store
	alarms AlarmScheduler
	loc    *time.Location
	policy SlotPolicy
	log    *log.Logger
}

func New(store Store, alarms AlarmScheduler, loc *time.Location, policy SlotPolicy, logger *log.Logger) *Controller {
	if loc == nil {
		loc = time.Local
	}
	if policy == nil {
		policy = FixedSlot{}
	}
	return &Controller{store: store, alarms: alarms, loc: loc, policy: policy, log: logger}
}

func (c *Controller) Location() *time.Location { return c.loc }

// Add persists the reminder and then arms its alarm. A date that does not
// parse leaves the row in place and is reported through AddResult.ParseErr.
func (c *Controller) Add(ctx context.Context, name, date string) (AddResult, error) {
	r := model.Reminder{Name: name, Date: date}
	id, err := c.store.Insert(ctx, r)
	if err != nil {
		c.logf("[ERROR] insert reminder %q: %v", name, err)
		return AddResult{}, fmt.Errorf("insert reminder: %w", err)
	}
	r.ID = id
	res := AddResult{Reminder: r}

	fireAt, err := model.ReminderFireTime(r, c.loc)
	if err != nil {
		c.logf("[WARN] reminder %d: %v", id, err)
		res.ParseErr = err
		return res, nil
	}
	res.FireAt = fireAt

	alarm := scheduler.Alarm{Slot: c.policy.Slot(r), FireAt: fireAt, Name: r.Name}
	if err := c.alarms.Schedule(ctx, alarm); err != nil {
		c.logf("[ERROR] schedule reminder %d: %v", id, err)
		res.ScheduleErr = err
		return res, nil
	}
	res.Scheduled = true
	c.logf("[DEBUG] reminder %d armed in slot %d for %s", id, alarm.Slot, fireAt.Format(time.RFC3339))
	return res, nil
}

// Delete removes the row and disarms its slot. A row that is already gone is
// not an error.
func (c *Controller) Delete(ctx context.Context, r model.Reminder) error {
	if err := c.store.Delete(ctx, r); err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.logf("[ERROR] delete reminder %d: %v", r.ID, err)
		return fmt.Errorf("delete reminder: %w", err)
	}
	slot := c.policy.Slot(r)
	if !c.alarms.Cancel(ctx, slot) {
		c.logf("[DEBUG] no pending alarm in slot %d", slot)
	}
	return nil
}

func (c *Controller) Refresh(ctx context.Context) ([]model.Reminder, error) {
	items, err := c.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	return items, nil
}

func (c *Controller) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}
