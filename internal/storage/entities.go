package storage

import "time"

// AlarmRecord is one row of the alarm journal. Slot is the alarm key, so a
// slot holds at most one pending alarm.
type AlarmRecord struct {
	Slot   int
	FireAt time.Time
	Name   string
}
