package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/model"
)

func (m *Model) openAddForm() {
	m.Screen = ScreenAdd
	m.Form = AddFormState{Focus: fieldName, Date: m.today()}
	m.nameInput.SetValue("")
	m.dateInput.SetValue(model.FormatDate(m.Form.Date))
	m.focusField(fieldName)
}

func (m *Model) closeAddForm() {
	m.Screen = ScreenList
	m.nameInput.Blur()
	m.dateInput.Blur()
}

func (m *Model) focusField(f formField) {
	m.Form.Focus = f
	if f == fieldName {
		m.nameInput.Focus()
		m.dateInput.Blur()
		return
	}
	m.dateInput.Focus()
	m.nameInput.Blur()
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeAddForm()
		cmd := m.setStatus("add cancelled", false)
		return m, cmd
	case "enter":
		name := m.nameInput.Value()
		date := strings.TrimSpace(m.dateInput.Value())
		m.closeAddForm()
		return m, addReminderCmd(m.controller, name, date)
	case "tab", "shift+tab":
		if m.Form.Focus == fieldName {
			m.focusField(fieldDate)
		} else {
			m.focusField(fieldName)
		}
		return m, nil
	}

	if m.Form.Focus == fieldName {
		if msg.String() == "down" {
			m.focusField(fieldDate)
			return m, nil
		}
		m.nameInput = typeInto(m.nameInput, msg)
		return m, nil
	}

	switch msg.String() {
	case "up":
		m.stepDate(0, 1)
	case "down":
		m.stepDate(0, -1)
	case "shift+up", "]":
		m.stepDate(1, 0)
	case "shift+down", "[":
		m.stepDate(-1, 0)
	default:
		m.dateInput = typeInto(m.dateInput, msg)
	}
	return m, nil
}

// stepDate moves from the typed date when it parses, otherwise from the last
// stepped date.
func (m *Model) stepDate(months, days int) {
	base := m.Form.Date
	if typed, err := model.ParseDate(m.dateInput.Value(), m.loc); err == nil {
		base = typed
	}
	m.Form.Date = model.StepDate(base, months, days)
	m.dateInput.SetValue(model.FormatDate(m.Form.Date))
	m.dateInput.CursorEnd()
}

func (m Model) formPreview() string {
	date := strings.TrimSpace(m.dateInput.Value())
	fireAt, err := model.ReminderFireTime(model.Reminder{Date: date}, m.loc)
	if err != nil {
		return "date not recognised: the reminder is saved without a notification"
	}
	return fmt.Sprintf("notifies %s", fireAt.Format("Mon 02/01/2006 15:04"))
}
