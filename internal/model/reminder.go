package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the dd/MM/yyyy text form reminders carry their date in.
const DateLayout = "02/01/2006"

// parseLayout also accepts days and months without a leading zero.
const parseLayout = "2/1/2006"

// FireHour is the local hour of day a reminder notification goes off.
const FireHour = 12

var ErrInvalidDate = errors.New("model: invalid reminder date")

// Reminder is a named event the user wants to be notified about the day
// before it happens. ID is assigned by the store on insert.
type Reminder struct {
	ID   int64
	Name string
	Date string
}

func (r Reminder) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Date)
}

// FormatDate renders the calendar day of t as dd/MM/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a dd/MM/yyyy string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(parseLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}
	return parsed, nil
}

// FireTime returns local midday of the calendar day before date.
func FireTime(date time.Time) time.Time {
	y, mo, d := date.Date()
	noon := time.Date(y, mo, d, FireHour, 0, 0, 0, date.Location())
	return noon.AddDate(0, 0, -1)
}

// ReminderFireTime parses the reminder's date in loc and returns when its
// notification should fire.
func ReminderFireTime(r Reminder, loc *time.Location) (time.Time, error) {
	date, err := ParseDate(r.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return FireTime(date), nil
}

// StepDate moves a date by days and months, keeping it at midnight in its
// own location.
func StepDate(date time.Time, months, days int) time.Time {
	y, mo, d := date.Date()
	start := time.Date(y, mo, d, 0, 0, 0, 0, date.Location())
	return start.AddDate(0, months, days)
}
