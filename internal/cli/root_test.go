package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/remindd/internal/app"
	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/update"
)

func testConfig(t *testing.T) config.RuntimeConfig {
	t.Helper()
	cfg := config.DefaultRuntimeConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "remindd.db")
	cfg.LogFile = filepath.Join(t.TempDir(), "remindd.log")
	cfg.Notifier = notify.KindNone
	cfg.Timezone = "UTC"
	return cfg
}

func run(t *testing.T, cfg config.RuntimeConfig, args ...string) (string, string, error) {
	t.Helper()
	return runContext(t, t.Context(), cfg, args...)
}

func runContext(t *testing.T, ctx context.Context, cfg config.RuntimeConfig, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand(cfg)
	var stdout, stderr bytes.Buffer
	root.Command().SetOut(&stdout)
	root.Command().SetErr(&stderr)
	root.Command().SetArgs(args)
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestAddListDelete(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, cfg, "add", "Dentist", "25/12/2040")
	require.NoError(t, err)
	assert.Contains(t, out, "saved #1 Dentist (25/12/2040)")
	assert.Contains(t, out, "notifies Mon 24/12/2040 12:00")

	out, _, err = run(t, cfg, "list", "--alarms")
	require.NoError(t, err)
	assert.Contains(t, out, "Dentist")
	assert.Contains(t, out, "25/12/2040")
	assert.Contains(t, out, "1 pending alarm(s)")
	assert.Contains(t, out, "slot 1: Dentist")

	out, _, err = run(t, cfg, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted #1")

	out, _, err = run(t, cfg, "list", "--alarms")
	require.NoError(t, err)
	assert.Contains(t, out, "No reminders")
	assert.Contains(t, out, "0 pending alarm(s)")
}

func TestAddWithBadDateKeepsRow(t *testing.T) {
	cfg := testConfig(t)

	out, errOut, err := run(t, cfg, "add", "Party", "2040-12-25")
	require.NoError(t, err)
	assert.Contains(t, out, "saved #1")
	assert.Contains(t, errOut, update.ParseFailedText)

	out, _, err = run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Party")
	assert.Contains(t, out, "-")
}

func TestAddRequiresTwoArgs(t *testing.T) {
	_, _, err := run(t, testConfig(t), "add", "only-name")
	assert.Error(t, err)
}

func TestDeleteRejectsBadID(t *testing.T) {
	_, _, err := run(t, testConfig(t), "delete", "zero")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reminder id")

	_, _, err = run(t, testConfig(t), "delete", "0")
	assert.Error(t, err)
}

func TestDeleteMissingReminderSucceeds(t *testing.T) {
	out, _, err := run(t, testConfig(t), "delete", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted #42")
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)
	other := filepath.Join(t.TempDir(), "flag.db")

	root := NewRootCommand(cfg)
	root.Command().SetOut(&bytes.Buffer{})
	root.Command().SetErr(&bytes.Buffer{})
	root.Command().SetArgs([]string{"--db", other, "--driver", "sqlite", "--alarm-slots", "per-reminder", "--log-level", "debug", "list"})
	require.NoError(t, root.ExecuteContext(t.Context()))

	got := root.Config()
	assert.Equal(t, other, got.DBPath)
	assert.Equal(t, "sqlite", got.SQLiteDriver)
	assert.Equal(t, "per-reminder", got.AlarmSlots)
	assert.Equal(t, "DEBUG", got.LogLevel)
	assert.FileExists(t, other)
}

func TestFlagValuesAreCaseInsensitive(t *testing.T) {
	root := NewRootCommand(testConfig(t))
	root.Command().SetOut(&bytes.Buffer{})
	root.Command().SetErr(&bytes.Buffer{})
	root.Command().SetArgs([]string{"--notifier", "NONE", "--driver", "SQLITE", "--alarm-slots", "Per-Reminder", "--log-level", "warn", "list"})
	require.NoError(t, root.ExecuteContext(t.Context()))

	got := root.Config()
	assert.Equal(t, "none", got.Notifier)
	assert.Equal(t, "sqlite", got.SQLiteDriver)
	assert.Equal(t, "per-reminder", got.AlarmSlots)
	assert.Equal(t, "WARN", got.LogLevel)
}

func TestInvalidFlagFailsValidation(t *testing.T) {
	_, _, err := run(t, testConfig(t), "--notifier", "pigeon", "list")
	assert.Error(t, err)
}

func TestRootRunsTUIRunner(t *testing.T) {
	cfg := testConfig(t)
	root := NewRootCommand(cfg)
	root.Command().SetArgs([]string{})

	var called bool
	root.SetTUIRunner(func(ctx context.Context, a *app.App) error {
		called = true
		assert.NotNil(t, a.Controller)
		assert.Equal(t, "UTC", a.Location.String())
		return nil
	})
	require.NoError(t, root.ExecuteContext(t.Context()))
	assert.True(t, called)
	assert.FileExists(t, cfg.LogFile)
}

func TestDaemonDeliversOverdueAlarm(t *testing.T) {
	cfg := testConfig(t)

	// A past date still gets an alarm, which is journaled because one-shot
	// commands never start the engine.
	_, _, err := run(t, cfg, "add", "Overdue", "01/01/2001")
	require.NoError(t, err)
	out, _, err := run(t, cfg, "list", "--alarms")
	require.NoError(t, err)
	require.Contains(t, out, "1 pending alarm(s)")

	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()
	_, errOut, err := runContext(t, ctx, cfg, "daemon")
	require.NoError(t, err)
	assert.Contains(t, errOut, "daemon running")
	assert.Contains(t, errOut, "notified slot 1: Overdue")

	a, err := app.Open(t.Context(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, 0, a.Restored)
}
