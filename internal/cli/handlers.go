package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/remindd/internal/app"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/update"
)

const fireLayout = "Mon 02/01/2006 15:04"

func runAdd(cmd *cobra.Command, a *app.App, name, date string) error {
	res, err := a.Controller.Add(cmd.Context(), name, date)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "saved #%d %s\n", res.Reminder.ID, res.Reminder)
	switch {
	case res.ParseErr != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", update.ParseFailedText, res.ParseErr)
	case res.ScheduleErr != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "not scheduled: %v\n", res.ScheduleErr)
	default:
		fmt.Fprintf(out, "notifies %s\n", res.FireAt.In(a.Location).Format(fireLayout))
	}
	return nil
}

func runList(cmd *cobra.Command, a *app.App, showAlarms bool) error {
	items, err := a.Controller.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No reminders")
	} else {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDATE\tNOTIFIES")
		for _, r := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Date, notifiesColumn(r, a.Location))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if showAlarms {
		pending := a.Engine.Pending()
		fmt.Fprintf(out, "\n%d pending alarm(s)\n", len(pending))
		for _, p := range pending {
			fmt.Fprintf(out, "slot %d: %s at %s\n", p.Slot, p.Name, p.FireAt.In(a.Location).Format(fireLayout))
		}
	}
	return nil
}

func notifiesColumn(r model.Reminder, loc *time.Location) string {
	fireAt, err := model.ReminderFireTime(r, loc)
	if err != nil {
		return "-"
	}
	return fireAt.Format(fireLayout)
}

func runDelete(cmd *cobra.Command, a *app.App, id int64) error {
	if err := a.Controller.Delete(cmd.Context(), model.Reminder{ID: id}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
	return nil
}
