package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		m.commandInput = typeInto(m.commandInput, msg)
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		status := m.setStatus(err.Error(), true)
		return m, status
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			follow = addReminderCmd(m.controller, a.Name, a.Date)
			return commands.Result{Message: fmt.Sprintf("adding %s on %s", a.Name, a.Date)}, nil
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			if d.Row > len(m.Reminders) {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("no reminder in row %d (%d listed)", d.Row, len(m.Reminders)),
				}
			}
			target := m.Reminders[d.Row-1]
			m.Cursor = d.Row - 1
			follow = deleteReminderCmd(m.controller, target)
			return commands.Result{Message: fmt.Sprintf("deleting %s", target)}, nil
		},
		Refresh: func() (commands.Result, error) {
			follow = m.reload()
			return commands.Result{Message: "refreshing"}, nil
		},
	})

	var status tea.Cmd
	if err != nil {
		status = m.setStatus(err.Error(), true)
	} else {
		status = m.setStatus(res.Message, false)
	}
	m.syncList()
	return m, tea.Batch(status, follow)
}
