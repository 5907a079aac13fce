package update

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// typeInto appends runes directly so a burst of typed characters lands in
// order; other keys go through the input's own handling.
func typeInto(in textinput.Model, msg tea.KeyMsg) textinput.Model {
	if msg.Type == tea.KeyRunes {
		in.SetValue(in.Value() + string(msg.Runes))
		in.CursorEnd()
		return in
	}
	in, _ = in.Update(msg)
	return in
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
