package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AccountConfig identifies the mailbox account being synchronized.
type AccountConfig struct {
	// Email is the account address, used as the IMAP/SMTP login and
	// as the From address of an emailed report.
	Email string `mapstructure:"email" yaml:"email"`

	// PasswordCmd is a shell command line whose stdout is the account
	// password (e.g. "pass show mailstat/me@example.com"). When empty
	// the password is looked up in the OS keyring instead.
	PasswordCmd string `mapstructure:"password_cmd" yaml:"password_cmd"`
}

// IMAPConfig holds the mailbox server settings.
type IMAPConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// TLS selects implicit TLS when true, STARTTLS when false.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	// Folder is the mailbox folder to synchronize.
	Folder string `mapstructure:"folder" yaml:"folder"`
}

// SMTPConfig holds the outbound mail server settings for report delivery.
type SMTPConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// TLS selects implicit TLS when true, STARTTLS when false.
	TLS bool `mapstructure:"tls" yaml:"tls"`
}

// SyncConfig controls the synchronization run.
type SyncConfig struct {
	// LookbackDays sets the cutoff: entries older than this many days
	// before the run start are out of scope.
	LookbackDays int `mapstructure:"lookback_days" yaml:"lookback_days"`

	// PageSize is the number of entries requested per mailbox page.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// MaxPages bounds the number of pages fetched in one run as a
	// guard against a backend that never signals exhaustion.
	// Zero means unbounded.
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`

	// Snapshot is the path of the snapshot file. A leading ~ expands
	// to the home directory.
	Snapshot string `mapstructure:"snapshot" yaml:"snapshot"`
}

// ReportConfig controls report output.
type ReportConfig struct {
	// Email enables sending the report by mail after the run.
	Email bool `mapstructure:"email" yaml:"email"`

	// To lists the report recipients.
	To []string `mapstructure:"to" yaml:"to"`

	// Chart is the output path of the day-count line chart.
	Chart string `mapstructure:"chart" yaml:"chart"`

	// Tables enables boxed terminal tables after the CSV output.
	Tables bool `mapstructure:"tables" yaml:"tables"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Account AccountConfig `mapstructure:"account" yaml:"account"`
	IMAP    IMAPConfig    `mapstructure:"imap" yaml:"imap"`
	SMTP    SMTPConfig    `mapstructure:"smtp" yaml:"smtp"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailstat/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailstat", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		IMAP: IMAPConfig{
			Host:   "imap.gmail.com",
			Port:   "993",
			TLS:    true,
			Folder: "INBOX",
		},
		SMTP: SMTPConfig{
			Port: "465",
			TLS:  true,
		},
		Sync: SyncConfig{
			LookbackDays: 14,
			PageSize:     100,
			Snapshot:     "~/.local/share/mailstat/snapshot.jsonl",
		},
		Report: ReportConfig{
			Chart: "var/count-by-date.png",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// setDefaults registers the default value of every key so missing keys
// resolve to sensible values and flag bindings have a base to override.
func setDefaults(v *viper.Viper) {
	v.SetDefault("account.email", "")
	v.SetDefault("account.password_cmd", "")
	v.SetDefault("imap.host", "imap.gmail.com")
	v.SetDefault("imap.port", "993")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.folder", "INBOX")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "465")
	v.SetDefault("smtp.tls", true)
	v.SetDefault("sync.lookback_days", 14)
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("sync.max_pages", 0)
	v.SetDefault("sync.snapshot", "~/.local/share/mailstat/snapshot.jsonl")
	v.SetDefault("report.email", false)
	v.SetDefault("report.to", []string{})
	v.SetDefault("report.chart", "var/count-by-date.png")
	v.SetDefault("report.tables", false)
	v.SetDefault("log.level", "info")
}

// NewViper returns a viper instance preloaded with the configuration
// defaults and environment bindings, for callers that bind command-line
// flags before loading. Every key is overridable through an environment
// variable, e.g. MAILSTAT_IMAP_HOST for imap.host.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MAILSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration from the given YAML file path into v.
// If the file does not exist, the defaults (and any bound flags) stand.
func LoadConfig(v *viper.Viper, path string) (*AppConfig, error) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		switch err.(type) {
		case *os.PathError, viper.ConfigFileNotFoundError:
			// Missing file: defaults, environment, and bound flags stand.
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Sync.Snapshot = ExpandHome(cfg.Sync.Snapshot)
	cfg.Report.Chart = ExpandHome(cfg.Report.Chart)

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("account", cfg.Account)
	v.Set("imap", cfg.IMAP)
	v.Set("smtp", cfg.SMTP)
	v.Set("sync", cfg.Sync)
	v.Set("report", cfg.Report)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// ExpandHome replaces a leading ~ in path with the home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
