package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/sandeepkv93/remindd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

const (
	// DriverCGO is mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite, for builds without cgo.
	DriverPure = "sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path with the named driver and migrates it.
func OpenSQLite(driver, path string) (*SQLiteRepository, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPure {
		return nil, fmt.Errorf("storage: unsupported sqlite driver %q", driver)
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent add/delete commands.
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Insert(ctx context.Context, in model.Reminder) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO reminders (name, date) VALUES (?, ?)`, in.Name, in.Date)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, date FROM reminders ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reminder, 0)
	for rows.Next() {
		item, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Delete(ctx context.Context, in model.Reminder) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, in.ID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) PutAlarm(ctx context.Context, in AlarmRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alarms (slot, fire_at, name) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET fire_at = excluded.fire_at, name = excluded.name`,
		in.Slot, mustTime(in.FireAt), in.Name,
	)
	return err
}

// DeleteAlarm removes the slot only while it still holds in; a newer alarm
// written to the same slot is left alone.
func (r *SQLiteRepository) DeleteAlarm(ctx context.Context, in AlarmRecord) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE slot = ? AND fire_at = ? AND name = ?`,
		in.Slot, mustTime(in.FireAt), in.Name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListAlarms(ctx context.Context) ([]AlarmRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot, fire_at, name FROM alarms ORDER BY fire_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AlarmRecord, 0)
	for rows.Next() {
		item, scanErr := scanAlarm(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReminder(s scanner) (model.Reminder, error) {
	var out model.Reminder
	if err := s.Scan(&out.ID, &out.Name, &out.Date); err != nil {
		return model.Reminder{}, err
	}
	return out, nil
}

func scanAlarm(s scanner) (AlarmRecord, error) {
	var out AlarmRecord
	var fireAt string
	if err := s.Scan(&out.Slot, &fireAt, &out.Name); err != nil {
		return AlarmRecord{}, err
	}
	parsed, err := parseRequiredTime(fireAt)
	if err != nil {
		return AlarmRecord{}, err
	}
	out.FireAt = parsed
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
