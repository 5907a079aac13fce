package views

import (
	"fmt"
	"strings"
)

type ListPanelData struct {
	ListView string
	Count    int
	Loading  bool
}

type AddFormData struct {
	NameView    string
	DateView    string
	DateFocused bool
	Preview     string
}

type ReminderDetailData struct {
	Row     int
	Name    string
	Date    string
	Summary string
}

type HelpPanelData struct {
	Screen   string
	Bindings []string
	HelpView string
	About    string
}

type FiredData struct {
	Name  string
	At    string
	Level string
	Error string
}

func RenderReminderList(data ListPanelData) string {
	var b strings.Builder
	b.WriteString("reminders:\n")
	b.WriteString("actions: [a]add [d]delete [r]refresh\n")
	if data.Loading {
		b.WriteString("(loading...)\n")
	}
	if data.Count == 0 && !data.Loading {
		b.WriteString("(no reminders yet, press a to add one)")
		return b.String()
	}
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

func RenderAddForm(data AddFormData) string {
	nameMark, dateMark := cursorStyle.Render(">"), " "
	if data.DateFocused {
		nameMark, dateMark = " ", cursorStyle.Render(">")
	}
	var b strings.Builder
	b.WriteString("new reminder:\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", nameMark, data.NameView))
	b.WriteString(fmt.Sprintf("%s %s\n\n", dateMark, data.DateView))
	if data.Preview != "" {
		b.WriteString(data.Preview + "\n")
	}
	b.WriteString("actions: [enter]save [esc]cancel")
	return b.String()
}

func RenderReminderDetail(data ReminderDetailData) string {
	if data.Row == 0 {
		return "selected:\n(no selection)"
	}
	return fmt.Sprintf("selected:\nrow: %d\nname: %s\ndate: %s\n%s", data.Row, data.Name, data.Date, data.Summary)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s\nadd <name> <dd/MM/yyyy> | delete <row#> | refresh", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	out := fmt.Sprintf("help:\n%s screen:\n%s\n%s",
		strings.ToLower(data.Screen),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
	if data.About != "" {
		out += "\n\n" + data.About
	}
	return out
}

// RenderFiredPanel lists the newest limit notifications, newest first.
func RenderFiredPanel(items []FiredData, limit int) string {
	if len(items) == 0 {
		return ""
	}
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	var b strings.Builder
	b.WriteString("notifications:")
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		b.WriteString(fmt.Sprintf("\n[%s] %s %s", strings.ToUpper(it.Level), it.At, it.Name))
		if it.Error != "" {
			b.WriteString(" (" + it.Error + ")")
		}
	}
	return b.String()
}
