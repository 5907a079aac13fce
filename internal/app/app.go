// Package app wires the store, alarm engine, notifier and controller into
// one process-wide context with explicit Open and Close.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/controller"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
)

const probeTimeout = 2 * time.Second

var newNotifier = notify.New

type App struct {
	Config     config.RuntimeConfig
	Location   *time.Location
	Repo       *storage.SQLiteRepository
	Engine     *scheduler.Engine
	Notifier   notify.Notifier
	Trigger    *notify.Trigger
	Controller *controller.Controller
	Log        *log.Logger
	// ProbeErr is set when notifications are unlikely to reach the user.
	// It is checked once at startup.
	ProbeErr error
	Restored int
}

func Open(ctx context.Context, cfg config.RuntimeConfig, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := controller.SlotPolicyFor(cfg.AlarmSlots)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.SQLiteDriver, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Location: loc, Repo: repo, Log: logger}

	a.Notifier, a.ProbeErr = openNotifier(ctx, cfg.Notifier, logger)
	a.Trigger = notify.NewTrigger(a.Notifier, logger)

	a.Engine = scheduler.NewEngine(cfg.SchedulerBuffer,
		scheduler.WithJournal(alarmJournal{repo: repo}),
		scheduler.WithLogger(logger),
	)
	a.Restored, err = a.Engine.Restore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("restore alarms: %w", err)
	}

	a.Controller = controller.New(repo, a.Engine, loc, policy, logger)
	if logger != nil {
		logger.Printf("[INFO] opened %s (%s), %d alarm(s) restored, slots=%s", cfg.DBPath, cfg.SQLiteDriver, a.Restored, policy.Name())
	}
	return a, nil
}

// openNotifier never fails: an unreachable notification service degrades to
// a no-op notifier plus a probe error for the startup warning.
func openNotifier(ctx context.Context, kind string, logger *log.Logger) (notify.Notifier, error) {
	n, err := newNotifier(kind, logger)
	if err != nil {
		if logger != nil {
			logger.Printf("[WARN] notifier %s unavailable: %v", kind, err)
		}
		return notify.NoopNotifier{}, err
	}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := notify.Probe(pctx, n); err != nil {
		if logger != nil {
			logger.Printf("[WARN] notifier %s probe failed: %v", kind, err)
		}
		return n, err
	}
	return n, nil
}

// Start runs the alarm loop. One-shot commands skip it so restored alarms that
// are already due stay journaled for the daemon.
func (a *App) Start() {
	a.Engine.Start()
}

func (a *App) Close() error {
	var errs []error
	if a.Engine != nil {
		a.Engine.Stop()
	}
	if c, ok := a.Notifier.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if a.Repo != nil {
		errs = append(errs, a.Repo.Close())
	}
	return errors.Join(errs...)
}

// alarmJournal stores engine alarms in the alarms table.
type alarmJournal struct {
	repo *storage.SQLiteRepository
}

func (j alarmJournal) PutAlarm(ctx context.Context, a scheduler.Alarm) error {
	return j.repo.PutAlarm(ctx, toRecord(a))
}

func (j alarmJournal) DeleteAlarm(ctx context.Context, a scheduler.Alarm) error {
	return j.repo.DeleteAlarm(ctx, toRecord(a))
}

func (j alarmJournal) ListAlarms(ctx context.Context) ([]scheduler.Alarm, error) {
	records, err := j.repo.ListAlarms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.Alarm, 0, len(records))
	for _, r := range records {
		out = append(out, scheduler.Alarm{Slot: r.Slot, FireAt: r.FireAt, Name: r.Name})
	}
	return out, nil
}

func toRecord(a scheduler.Alarm) storage.AlarmRecord {
	return storage.AlarmRecord{Slot: a.Slot, FireAt: a.FireAt, Name: a.Name}
}
