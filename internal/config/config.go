package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DirName is the data directory under the user's home.
	DirName = ".timesheet"
	// FileName is the config file inside DirName.
	FileName = "config.yaml"
	// DBFileName is the default database file inside DirName.
	DBFileName = "timesheets.db"
	// EnvPrefix prefixes every environment override, e.g. TIMESHEET_LOG_LEVEL.
	EnvPrefix = "TIMESHEET"
	// EnvDB is the short environment override for the database path.
	EnvDB = "TIMESHEET_DB"
)

// Config is the root configuration for timesheet, stored in ~/.timesheet/config.yaml.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Report  ReportConfig  `mapstructure:"report"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	// DBPath is the SQLite file. A leading ~/ expands to the home directory.
	DBPath string `mapstructure:"db_path"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	// Format is the default output of "report": csv, md or json.
	Format string `mapstructure:"format"`
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# timesheet configuration - ~/.timesheet/config.yaml
#
# All settings are optional. Environment variables override this file:
#   TIMESHEET_DB                database path (also TIMESHEET_STORAGE_DB_PATH)
#   TIMESHEET_LOG_LEVEL         log level
#   TIMESHEET_REPORT_FORMAT     default report format

storage:
  # SQLite database holding the times table.
  db_path: "~/.timesheet/timesheets.db"

log:
  # debug, info, warn or error. Logs go to stderr.
  level: "warn"

report:
  # Default output of "timesheet report": csv, md or json.
  format: "csv"
`

// Dir returns the data directory (~/.timesheet).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns the path to ~/.timesheet/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.db_path", "~/"+DirName+"/"+DBFileName)
	v.SetDefault("log.level", "warn")
	v.SetDefault("report.format", "csv")
}

// Load reads the config file at path, creating it with annotated defaults on
// first run. An empty path means DefaultPath. Environment variables take
// precedence over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("storage.db_path", EnvDB, EnvPrefix+"_STORAGE_DB_PATH"); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvDB, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			// First run: write the annotated template so users can discover options.
			if writeErr := writeDefault(path); writeErr != nil {
				slog.Warn("could not create config file", "path", path, "error", writeErr)
			} else {
				slog.Info("created default config file", "path", path)
			}
		default:
			return nil, fmt.Errorf("reading config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	dbPath, err := ExpandHome(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DBPath = dbPath

	return &cfg, nil
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// SetupLogger installs a text slog handler writing to w at the given level.
func SetupLogger(w io.Writer, level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
