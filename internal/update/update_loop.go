package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/views"
)

// ParseFailedText is the transient status shown when a date does not parse.
const ParseFailedText = "Failed to parse date"

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadRemindersCmd(m.controller), waitForAlarmCmd(m.alarms))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.syncList()
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}
		if m.Screen == ScreenAdd {
			return m.handleFormKey(typed)
		}
		return m.handleListKey(typed)
	case RemindersLoadedMsg:
		m.Loading = false
		if typed.Err != nil {
			return m.fail(typed.Err)
		}
		m.Reminders = typed.Items
		m.clampCursor()
		m.syncList()
		return m, nil
	case ReminderAddedMsg:
		return m.onReminderAdded(typed)
	case ReminderDeletedMsg:
		if typed.Err != nil {
			next, cmd := m.fail(typed.Err)
			return next, tea.Batch(cmd, loadRemindersCmd(m.controller))
		}
		status := m.setStatus(fmt.Sprintf("deleted: %s", typed.Reminder.Name), false)
		reload := m.reload()
		return m, tea.Batch(status, reload)
	case AlarmFiredMsg:
		return m, tea.Batch(fireAlarmCmd(m.trigger, typed.Alarm), waitForAlarmCmd(m.alarms))
	case NotificationSentMsg:
		m.Fired = append(m.Fired, FiredNotification{Name: typed.Alarm.Name, At: m.now(), Err: typed.Err})
		if len(m.Fired) > maxFiredLog {
			m.Fired = m.Fired[len(m.Fired)-maxFiredLog:]
		}
		var cmd tea.Cmd
		if typed.Err != nil {
			cmd = m.setStatus(fmt.Sprintf("notification failed: %v", typed.Err), true)
		} else {
			cmd = m.setStatus(fmt.Sprintf("reminder: %s", typed.Alarm.Name), false)
		}
		return m, cmd
	case SetStatusMsg:
		cmd := m.setStatus(typed.Text, typed.IsError)
		return m, cmd
	case ClearStatusMsg:
		if typed.Seq == m.statusSeq {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		return m.fail(typed.Err)
	}
	return m, nil
}

func (m Model) onReminderAdded(msg ReminderAddedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.fail(msg.Err)
	}
	res := msg.Result
	var status tea.Cmd
	switch {
	case res.ParseErr != nil:
		status = m.setStatus(ParseFailedText, true)
	case res.ScheduleErr != nil:
		status = m.setStatus(fmt.Sprintf("saved %s but could not schedule it: %v", res.Reminder.Name, res.ScheduleErr), true)
	default:
		status = m.setStatus(fmt.Sprintf("reminder set for %s", res.FireAt.In(m.loc).Format("Mon 02/01/2006 15:04")), false)
	}
	reload := m.reload()
	return m, tea.Batch(status, reload)
}

// fail records err and shows it until the next status replaces it.
func (m Model) fail(err error) (Model, tea.Cmd) {
	if err == nil {
		return m, nil
	}
	m.LastError = err
	cmd := m.setStatus(err.Error(), true)
	return m, cmd
}

// setStatus shows text and schedules its removal. Errors stay up longer.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.Status = StatusBar{Text: text, IsError: isErr}
	ttl := m.statusTTL
	if isErr {
		ttl *= 2
	}
	return clearStatusAfter(ttl, m.statusSeq)
}

func (m *Model) reload() tea.Cmd {
	m.Loading = true
	return loadRemindersCmd(m.controller)
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Reminders) {
		m.Cursor = len(m.Reminders) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.Screen {
	case ScreenAdd:
		leftPane = m.renderAddForm()
	default:
		leftPane = m.renderReminderList()
	}
	rightPane := strings.TrimSpace(m.renderCommandPalette() + "\n" + m.renderHelpIfVisible())
	if rightPane == "" {
		rightPane = m.renderSelectionDetail()
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("remindd | %s | %d reminder(s) | %s", m.Screen, len(m.Reminders), m.loc),
		Warning:      m.PermissionWarning,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: m.renderFiredView(),
		Footer:       m.footer(),
	})
}

func (m Model) footer() string {
	if m.Screen == ScreenAdd {
		return "keys: tab field | up/down day | [ ] or shift+up/down month | enter save | esc cancel"
	}
	return fmt.Sprintf("keys: %s add | %s/x delete | %s refresh | / cmd | %s help | %s quit",
		m.Keys.Add, m.Keys.Delete, m.Keys.Refresh, m.Keys.Help, m.Keys.Quit)
}
