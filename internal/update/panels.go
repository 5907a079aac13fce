package update

import (
	"github.com/sandeepkv93/remindd/internal/views"
)

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderReminderList() string {
	return views.RenderReminderList(views.ListPanelData{
		ListView: m.reminderList.View(),
		Count:    len(m.Reminders),
		Loading:  m.Loading,
	})
}

func (m Model) renderAddForm() string {
	return views.RenderAddForm(views.AddFormData{
		NameView:    m.nameInput.View(),
		DateView:    m.dateInput.View(),
		DateFocused: m.Form.Focus == fieldDate,
		Preview:     m.formPreview(),
	})
}

func (m Model) renderSelectionDetail() string {
	r, ok := m.SelectedReminder()
	if !ok {
		return views.RenderReminderDetail(views.ReminderDetailData{})
	}
	return views.RenderReminderDetail(views.ReminderDetailData{
		Row:     m.Cursor + 1,
		Name:    displayName(r),
		Date:    r.Date,
		Summary: m.describeDate(r),
	})
}

func (m Model) renderFiredView() string {
	items := make([]views.FiredData, 0, len(m.Fired))
	for _, f := range m.Fired {
		errText := ""
		if f.Err != nil {
			errText = f.Err.Error()
		}
		items = append(items, views.FiredData{
			Name:  f.Name,
			At:    f.At.In(m.loc).Format("02/01 15:04"),
			Level: levelFromError(f.Err != nil),
			Error: errText,
		})
	}
	return views.RenderFiredPanel(items, 5)
}
