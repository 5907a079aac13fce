package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sandeepkv93/remindd/internal/controller"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/storage"
)

const (
	EnvDBPath          = "REMINDD_DB_PATH"
	EnvSQLiteDriver    = "REMINDD_SQLITE_DRIVER"
	EnvNotifier        = "REMINDD_NOTIFIER"
	EnvAlarmSlots      = "REMINDD_ALARM_SLOTS"
	EnvSchedulerBuffer = "REMINDD_SCHEDULER_BUFFER"
	EnvTimezone        = "REMINDD_TIMEZONE"
	EnvLogLevel        = "REMINDD_LOG_LEVEL"
	EnvLogFile         = "REMINDD_LOG_FILE"
	EnvStatusSeconds   = "REMINDD_STATUS_SECONDS"
)

// DatabaseName is the file the reminders table lives in.
const DatabaseName = "reminder_database.db"

type RuntimeConfig struct {
	DBPath          string
	SQLiteDriver    string
	Notifier        string
	AlarmSlots      string
	SchedulerBuffer int
	// Timezone is an IANA name; empty means the local zone.
	Timezone      string
	LogLevel      string
	LogFile       string
	StatusSeconds int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:          filepath.Join(dataDir(), "remindd", DatabaseName),
		SQLiteDriver:    storage.DriverCGO,
		Notifier:        notify.KindDBus,
		AlarmSlots:      "fixed",
		SchedulerBuffer: 64,
		LogLevel:        logging.DefaultLevel,
		LogFile:         filepath.Join(stateDir(), "remindd", "remindd.log"),
		StatusSeconds:   4,
	}
}

// LoadDotEnv reads KEY=VALUE files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString(EnvDBPath); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString(EnvSQLiteDriver); ok {
		cfg.SQLiteDriver = strings.ToLower(v)
	}
	if v, ok := getEnvString(EnvNotifier); ok {
		cfg.Notifier = strings.ToLower(v)
	}
	if v, ok := getEnvString(EnvAlarmSlots); ok {
		cfg.AlarmSlots = strings.ToLower(v)
	}
	if v, ok := getEnvInt(EnvSchedulerBuffer); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString(EnvTimezone); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToUpper(v)
	}
	if v, ok := getEnvString(EnvLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvInt(EnvStatusSeconds); ok && v > 0 {
		cfg.StatusSeconds = v
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.SQLiteDriver != storage.DriverCGO && c.SQLiteDriver != storage.DriverPure {
		errs = append(errs, fmt.Errorf("sqlite driver %q: want %s or %s", c.SQLiteDriver, storage.DriverCGO, storage.DriverPure))
	}
	switch c.Notifier {
	case notify.KindDBus, notify.KindExec, notify.KindNone:
	default:
		errs = append(errs, fmt.Errorf("notifier %q: want dbus, exec or none", c.Notifier))
	}
	if _, err := controller.SlotPolicyFor(c.AlarmSlots); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.SchedulerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("scheduler buffer %d must be positive", c.SchedulerBuffer))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, defaulting to time.Local.
func (c RuntimeConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c RuntimeConfig) StatusTTL() time.Duration {
	return time.Duration(c.StatusSeconds) * time.Second
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}
