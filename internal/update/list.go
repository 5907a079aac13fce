package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/model"
)

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Reminders)-1 {
			m.Cursor++
		}
	case "home", "g":
		m.Cursor = 0
	case "end", "G":
		m.Cursor = len(m.Reminders) - 1
		m.clampCursor()
	case m.Keys.Add:
		m.openAddForm()
		return m, nil
	case m.Keys.Delete, "x", "delete":
		selected, ok := m.SelectedReminder()
		if !ok {
			cmd := m.setStatus("nothing to delete", false)
			return m, cmd
		}
		return m, deleteReminderCmd(m.controller, selected)
	case m.Keys.Refresh:
		cmd := m.reload()
		return m, cmd
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	default:
		return m, nil
	}
	m.syncList()
	return m, nil
}

// syncList mirrors Reminders and Cursor into the bubbles list.
func (m *Model) syncList() {
	width := 56
	if m.width > 0 {
		width = max(m.width/2-4, 30)
	}
	m.reminderList.SetSize(width, 14)

	items := make([]list.Item, 0, len(m.Reminders))
	for _, r := range m.Reminders {
		items = append(items, listItem{title: displayName(r), description: m.describeDate(r)})
	}
	m.reminderList.SetItems(items)
	if len(items) > 0 {
		m.reminderList.Select(m.Cursor)
	}
}

func (m Model) describeDate(r model.Reminder) string {
	fireAt, err := model.ReminderFireTime(r, m.loc)
	if err != nil {
		return fmt.Sprintf("%s | date not recognised", r.Date)
	}
	return fmt.Sprintf("%s | notifies %s", r.Date, fireAt.Format("02/01 15:04"))
}

func displayName(r model.Reminder) string {
	if r.Name == "" {
		return "(unnamed)"
	}
	return r.Name
}
