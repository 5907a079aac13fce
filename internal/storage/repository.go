package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/remindd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the reminder table. GetAll orders by the date column as
// text, so dd/MM/yyyy values sort by day-of-month first, not chronologically.
type Repository interface {
	Insert(ctx context.Context, in model.Reminder) (int64, error)
	GetAll(ctx context.Context) ([]model.Reminder, error)
	Delete(ctx context.Context, in model.Reminder) error
}

// AlarmRepository persists pending alarms so they survive a restart.
type AlarmRepository interface {
	PutAlarm(ctx context.Context, in AlarmRecord) error
	DeleteAlarm(ctx context.Context, in AlarmRecord) error
	ListAlarms(ctx context.Context) ([]AlarmRecord, error)
}
