package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// opTimeout bounds each store round trip started from the UI.
const opTimeout = 5 * time.Second

func loadRemindersCmd(c Controller) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		items, err := c.Refresh(ctx)
		return RemindersLoadedMsg{Items: items, Err: err}
	}
}

func addReminderCmd(c Controller, name, date string) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		res, err := c.Add(ctx, name, date)
		return ReminderAddedMsg{Result: res, Err: err}
	}
}

func deleteReminderCmd(c Controller, r model.Reminder) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return ReminderDeletedMsg{Reminder: r, Err: c.Delete(ctx, r)}
	}
}

func waitForAlarmCmd(ch <-chan scheduler.Alarm) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		a, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmFiredMsg{Alarm: a}
	}
}

func fireAlarmCmd(t AlarmTrigger, a scheduler.Alarm) tea.Cmd {
	if t == nil {
		return func() tea.Msg { return NotificationSentMsg{Alarm: a} }
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		n, err := t.Fire(ctx, a)
		return NotificationSentMsg{Alarm: a, Notification: n, Err: err}
	}
}

func clearStatusAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return ClearStatusMsg{Seq: seq} })
}
