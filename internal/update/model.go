package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/remindd/internal/controller"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

type Screen string

const (
	ScreenList Screen = "List"
	ScreenAdd  Screen = "Add"
)

const (
	defaultStatusTTL = 4 * time.Second
	maxFiredLog      = 20
)

// Controller is the slice of controller.Controller the UI drives.
type Controller interface {
	Add(ctx context.Context, name, date string) (controller.AddResult, error)
	Delete(ctx context.Context, r model.Reminder) error
	Refresh(ctx context.Context) ([]model.Reminder, error)
}

type AlarmTrigger interface {
	Fire(ctx context.Context, a scheduler.Alarm) (notify.Notification, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add     string
	Delete  string
	Refresh string
	Help    string
	Quit    string
}

type formField int

const (
	fieldName formField = iota
	fieldDate
)

type AddFormState struct {
	Focus formField
	// Date is the day the stepper keys move from. The date input may hold
	// typed text that does not parse.
	Date time.Time
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// FiredNotification records an alarm that reached the trigger.
type FiredNotification struct {
	Name string
	At   time.Time
	Err  error
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type Options struct {
	Controller Controller
	Alarms     <-chan scheduler.Alarm
	Trigger    AlarmTrigger
	Location   *time.Location
	StatusTTL  time.Duration
	// PermissionErr is the startup notifier probe result.
	PermissionErr error
	Now           func() time.Time
}

type Model struct {
	Screen            Screen
	Reminders         []model.Reminder
	Cursor            int
	Form              AddFormState
	Palette           CommandPaletteState
	HelpVisible       bool
	Status            StatusBar
	Keys              GlobalKeyMap
	Fired             []FiredNotification
	PermissionWarning string
	Loading           bool
	Quitting          bool
	LastError         error

	controller Controller
	alarms     <-chan scheduler.Alarm
	trigger    AlarmTrigger
	loc        *time.Location
	statusTTL  time.Duration
	statusSeq  int
	now        func() time.Time
	width      int

	reminderList list.Model
	nameInput    textinput.Model
	dateInput    textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type RemindersLoadedMsg struct {
	Items []model.Reminder
	Err   error
}

type ReminderAddedMsg struct {
	Result controller.AddResult
	Err    error
}

type ReminderDeletedMsg struct {
	Reminder model.Reminder
	Err      error
}

type AlarmFiredMsg struct {
	Alarm scheduler.Alarm
}

type NotificationSentMsg struct {
	Alarm        scheduler.Alarm
	Notification notify.Notification
	Err          error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg clears the status bar only if no newer status replaced the
// one that scheduled it.
type ClearStatusMsg struct {
	Seq int
}

type AppErrorMsg struct {
	Err error
}

func NewModel(opts Options) Model {
	m := Model{
		Screen:     ScreenList,
		controller: opts.Controller,
		alarms:     opts.Alarms,
		trigger:    opts.Trigger,
		loc:        opts.Location,
		statusTTL:  opts.StatusTTL,
		now:        opts.Now,
		Keys: GlobalKeyMap{
			Add:     "a",
			Delete:  "d",
			Refresh: "r",
			Help:    "?",
			Quit:    "q",
		},
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.statusTTL <= 0 {
		m.statusTTL = defaultStatusTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	if opts.PermissionErr != nil {
		m.PermissionWarning = "desktop notifications unavailable: " + opts.PermissionErr.Error()
	}
	m.initBubbleComponents()
	m.syncList()
	return m
}

func (m *Model) initBubbleComponents() {
	m.reminderList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 14)
	m.reminderList.Title = "Reminders"
	m.reminderList.SetShowHelp(false)
	m.reminderList.SetShowStatusBar(false)
	m.reminderList.SetFilteringEnabled(false)

	m.nameInput = textinput.New()
	m.nameInput.Prompt = "name> "
	m.nameInput.Placeholder = "what to remember"
	m.nameInput.CharLimit = 256
	m.nameInput.Width = 42

	m.dateInput = textinput.New()
	m.dateInput.Prompt = "date> "
	m.dateInput.Placeholder = "dd/MM/yyyy"
	m.dateInput.CharLimit = 16
	m.dateInput.Width = 12

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.helpModel.ShowAll = true
}

func (m Model) today() time.Time {
	return model.StepDate(m.now().In(m.loc), 0, 0)
}

// SelectedReminder returns the row under the cursor.
func (m Model) SelectedReminder() (model.Reminder, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Reminders) {
		return model.Reminder{}, false
	}
	return m.Reminders[m.Cursor], true
}
