package update

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
	"github.com/spf13/viper"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
)

const envPrefix = "DAYPLAN_"

type RuntimeConfig struct {
	DBPath               string
	LogFile              string
	LogLevel             string
	LogFormat            string
	PollInterval         time.Duration
	SnoozeMinutes        int
	MinGapMinutes        int
	HorizonDays          int
	DesktopNotifications bool
	Bell                 bool
	EventBuffer          int
}

// DataDir is where the database, log and config file live by default.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".dayplan"
	}
	return filepath.Join(home, ".dayplan")
}

func DefaultRuntimeConfig() RuntimeConfig {
	dir := DataDir()
	return RuntimeConfig{
		DBPath:               filepath.Join(dir, "dayplan.db"),
		LogFile:              filepath.Join(dir, "dayplan.log"),
		LogLevel:             "info",
		LogFormat:            "text",
		PollInterval:         scheduler.DefaultPollInterval,
		SnoozeMinutes:        5,
		MinGapMinutes:        15,
		HorizonDays:          model.DefaultHorizonDays,
		DesktopNotifications: false,
		Bell:                 true,
		EventBuffer:          64,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString(envPrefix + "DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString(envPrefix + "LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString(envPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString(envPrefix + "LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := getEnvDuration(envPrefix + "POLL_INTERVAL"); ok && v > 0 {
		cfg.PollInterval = v
	}
	if v, ok := getEnvInt(envPrefix + "SNOOZE_MINUTES"); ok && v > 0 {
		cfg.SnoozeMinutes = v
	}
	if v, ok := getEnvInt(envPrefix + "MIN_GAP_MINUTES"); ok && v >= 0 {
		cfg.MinGapMinutes = v
	}
	if v, ok := getEnvInt(envPrefix + "HORIZON_DAYS"); ok && v > 0 {
		cfg.HorizonDays = v
	}
	if v, ok := getEnvBool(envPrefix + "DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvBool(envPrefix + "BELL"); ok {
		cfg.Bell = v
	}
	if v, ok := getEnvInt(envPrefix + "EVENT_BUFFER"); ok && v > 0 {
		cfg.EventBuffer = v
	}
	return cfg
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
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

type fileConfig struct {
	DBPath               string        `mapstructure:"db_path"`
	LogFile              string        `mapstructure:"log_file"`
	LogLevel             string        `mapstructure:"log_level"`
	LogFormat            string        `mapstructure:"log_format"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	SnoozeMinutes        int           `mapstructure:"snooze_minutes"`
	MinGapMinutes        *int          `mapstructure:"min_gap_minutes"`
	HorizonDays          int           `mapstructure:"horizon_days"`
	DesktopNotifications *bool         `mapstructure:"desktop_notifications"`
	Bell                 *bool         `mapstructure:"bell"`
	EventBuffer          int           `mapstructure:"event_buffer"`
}

// LoadConfigFile layers a YAML config file over base. An empty path looks for
// config.yaml in DataDir and treats its absence as "no overrides"; an
// explicit path must exist.
func LoadConfigFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = filepath.Join(DataDir(), "config.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		return base, fmt.Errorf("config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return base, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg := base
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.PollInterval > 0 {
		cfg.PollInterval = fc.PollInterval
	}
	if fc.SnoozeMinutes > 0 {
		cfg.SnoozeMinutes = fc.SnoozeMinutes
	}
	if fc.MinGapMinutes != nil && *fc.MinGapMinutes >= 0 {
		cfg.MinGapMinutes = *fc.MinGapMinutes
	}
	if fc.HorizonDays > 0 {
		cfg.HorizonDays = fc.HorizonDays
	}
	if fc.DesktopNotifications != nil {
		cfg.DesktopNotifications = *fc.DesktopNotifications
	}
	if fc.Bell != nil {
		cfg.Bell = *fc.Bell
	}
	if fc.EventBuffer > 0 {
		cfg.EventBuffer = fc.EventBuffer
	}
	return cfg, nil
}

// LoadRuntimeConfig resolves defaults, then the config file, then .env and
// DAYPLAN_* variables, in increasing precedence.
func LoadRuntimeConfig(configPath string, dotenvPaths ...string) (RuntimeConfig, error) {
	cfg, err := LoadConfigFile(configPath, DefaultRuntimeConfig())
	if err != nil {
		return cfg, err
	}
	if err := LoadDotEnv(dotenvPaths...); err != nil {
		return cfg, err
	}
	return RuntimeConfigFromEnv(cfg), nil
}

func (c RuntimeConfig) SnoozeDuration() time.Duration {
	return time.Duration(c.SnoozeMinutes) * time.Minute
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

// getEnvDuration accepts Go duration syntax or a bare number of seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
