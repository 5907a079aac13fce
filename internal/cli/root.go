package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/remindd/internal/app"
	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/update"
)

// TUIRunner runs the interactive UI against an opened app.
type TUIRunner func(ctx context.Context, a *app.App) error

type RootCommand struct {
	cmd    *cobra.Command
	config config.RuntimeConfig
	runTUI TUIRunner
}

func NewRootCommand(cfg config.RuntimeConfig) *RootCommand {
	root := &RootCommand{config: cfg, runTUI: runBubbleTea}

	root.cmd = &cobra.Command{
		Use:   "remindd",
		Short: "Personal reminders with a desktop notification the day before",
		Long: `remindd keeps a list of named reminders with a dd/MM/yyyy date and sends a
desktop notification at 12:00 on the day before each one.

Run without a subcommand for the terminal UI, or use "remindd daemon" to
deliver notifications headless.

CONFIGURATION:
  Priority order: command-line flags > environment (and .env) > defaults

    REMINDD_DB_PATH           SQLite database file
    REMINDD_SQLITE_DRIVER     sqlite3 (cgo) or sqlite (pure Go)
    REMINDD_NOTIFIER          dbus, exec or none
    REMINDD_ALARM_SLOTS       fixed (one shared alarm) or per-reminder
    REMINDD_SCHEDULER_BUFFER  fired-alarm buffer size
    REMINDD_TIMEZONE          IANA zone for fire times (default: local)
    REMINDD_LOG_LEVEL         DEBUG, INFO, WARN or ERROR
    REMINDD_LOG_FILE          log file used by the terminal UI
    REMINDD_STATUS_SECONDS    how long status messages stay up`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.applyFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runInteractive(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()
	return root
}

func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// Command exposes the cobra command for argument and output wiring.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Config() config.RuntimeConfig {
	return r.config
}

func (r *RootCommand) SetTUIRunner(run TUIRunner) {
	r.runTUI = run
}

func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()
	flags.String("db", "", "SQLite database file (overrides REMINDD_DB_PATH)")
	flags.String("driver", "", "SQLite driver: sqlite3 or sqlite (overrides REMINDD_SQLITE_DRIVER)")
	flags.String("notifier", "", "Notifier: dbus, exec or none (overrides REMINDD_NOTIFIER)")
	flags.String("alarm-slots", "", "Alarm slots: fixed or per-reminder (overrides REMINDD_ALARM_SLOTS)")
	flags.String("timezone", "", "IANA timezone for fire times (overrides REMINDD_TIMEZONE)")
	flags.String("log-level", "", "Log level (overrides REMINDD_LOG_LEVEL)")
	flags.String("log-file", "", "Log file for the terminal UI (overrides REMINDD_LOG_FILE)")
}

func (r *RootCommand) applyFlags() error {
	flags := r.cmd.PersistentFlags()
	if v, _ := flags.GetString("db"); v != "" {
		r.config.DBPath = v
	}
	if v, _ := flags.GetString("driver"); v != "" {
		r.config.SQLiteDriver = strings.ToLower(v)
	}
	if v, _ := flags.GetString("notifier"); v != "" {
		r.config.Notifier = strings.ToLower(v)
	}
	if v, _ := flags.GetString("alarm-slots"); v != "" {
		r.config.AlarmSlots = strings.ToLower(v)
	}
	if v, _ := flags.GetString("timezone"); v != "" {
		r.config.Timezone = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		r.config.LogLevel = strings.ToUpper(v)
	}
	if v, _ := flags.GetString("log-file"); v != "" {
		r.config.LogFile = v
	}
	return r.config.Validate()
}

func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newDaemonCommand(),
		r.newAddCommand(),
		r.newListCommand(),
		r.newDeleteCommand(),
	)
}

// openApp opens the app for a one-shot command. Notifications are not sent
// from these, so the notifier is never probed.
func (r *RootCommand) openApp(cmd *cobra.Command) (*app.App, error) {
	cfg := r.config
	cfg.Notifier = notify.KindNone
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return app.Open(cmd.Context(), cfg, logger)
}

func (r *RootCommand) runInteractive(cmd *cobra.Command) error {
	logger, closer, err := logging.OpenFile(r.config.LogFile, r.config.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.Open(cmd.Context(), r.config, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start()
	return r.runTUI(cmd.Context(), a)
}

func runBubbleTea(ctx context.Context, a *app.App) error {
	m := update.NewModel(update.Options{
		Controller:    a.Controller,
		Alarms:        a.Engine.C(),
		Trigger:       a.Trigger,
		Location:      a.Location,
		StatusTTL:     a.Config.StatusTTL(),
		PermissionErr: a.ProbeErr,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (r *RootCommand) newDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Deliver reminder notifications without the terminal UI",
		Long:  "Restore journaled alarms and send each notification when it falls due. Stops on SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runDaemon(cmd)
		},
	}
}

func (r *RootCommand) runDaemon(cmd *cobra.Command) error {
	logger, err := logging.New(cmd.ErrOrStderr(), r.config.LogLevel)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, r.config, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.ProbeErr != nil {
		logger.Printf("[WARN] notifications may not be shown: %v", a.ProbeErr)
	}

	a.Start()
	logger.Printf("[INFO] daemon running, %d alarm(s) pending", len(a.Engine.Pending()))
	a.Trigger.Run(ctx, a.Engine.C())
	logDaemonExit(logger, a)
	return nil
}

func logDaemonExit(logger *log.Logger, a *app.App) {
	if n := a.Engine.Dropped(); n > 0 {
		logger.Printf("[WARN] %d fired alarm(s) were dropped", n)
	}
	logger.Printf("[INFO] daemon stopped, %d alarm(s) still pending", len(a.Engine.Pending()))
}

func (r *RootCommand) newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME DATE",
		Short: "Add a reminder (DATE is dd/MM/yyyy)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return runAdd(cmd, a, args[0], args[1])
		},
	}
}

func (r *RootCommand) newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders in stored order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			showAlarms, _ := cmd.Flags().GetBool("alarms")
			return runList(cmd, a, showAlarms)
		},
	}
	cmd.Flags().Bool("alarms", false, "Also list pending alarms")
	return cmd
}

func (r *RootCommand) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a reminder by id and cancel its alarm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := r.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return runDelete(cmd, a, id)
		},
	}
}

func parseID(raw string) (int64, error) {
	var id int64
	if _, err := fmt.Sscan(raw, &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", raw)
	}
	return id, nil
}
