package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Printer  PrinterConfig  `mapstructure:"printer"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Wizard   WizardConfig   `mapstructure:"wizard"`
	Log      LogConfig      `mapstructure:"log"`
	Demo     DemoConfig     `mapstructure:"demo"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// APIConfig points at the booth backend.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	TokenEnv string        `mapstructure:"token_env"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PrinterConfig is forwarded untouched to the print service.
type PrinterConfig struct {
	ID   string `mapstructure:"id"`
	Size string `mapstructure:"size"`
}

// CaptureConfig selects where photos come from. Dir wins over File when both are set.
type CaptureConfig struct {
	Dir  string `mapstructure:"dir"`
	File string `mapstructure:"file"`
}

// WizardConfig holds the step transition pacing.
type WizardConfig struct {
	ForwardDelay   time.Duration `mapstructure:"forward_delay"`
	ForwardSettle  time.Duration `mapstructure:"forward_settle"`
	BackwardDelay  time.Duration `mapstructure:"backward_delay"`
	BackwardSettle time.Duration `mapstructure:"backward_settle"`
	Toast          time.Duration `mapstructure:"toast"`
}

// LogConfig holds the log file location and level.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// DemoConfig drives the offline backend. Enabled when api.base_url is empty.
type DemoConfig struct {
	TemplatesDir string `mapstructure:"templates_dir"`
	SpoolDir     string `mapstructure:"spool_dir"`
}

// PrintSizes lists the paper sizes the print service accepts.
var PrintSizes = []string{"4x6", "5x7", "6x8", "2x6"}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "photobooth")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(dataDir(), "photobooth.db"))
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.token_env", "PHOTOBOOTH_API_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("printer.id", "")
	v.SetDefault("printer.size", "4x6")
	v.SetDefault("capture.dir", "")
	v.SetDefault("capture.file", "")
	v.SetDefault("wizard.forward_delay", 300*time.Millisecond)
	v.SetDefault("wizard.forward_settle", 300*time.Millisecond)
	v.SetDefault("wizard.backward_delay", 10*time.Millisecond)
	v.SetDefault("wizard.backward_settle", 10*time.Millisecond)
	v.SetDefault("wizard.toast", 2*time.Second)
	v.SetDefault("log.path", filepath.Join(dataDir(), "photobooth.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("demo.templates_dir", filepath.Join(dataDir(), "templates"))
	v.SetDefault("demo.spool_dir", filepath.Join(dataDir(), "spool"))
}

// Path returns the config file location honoring PHOTOBOOTH_CONFIG.
func Path() string {
	if p := os.Getenv("PHOTOBOOTH_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "photobooth", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix PHOTOBOOTH_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("PHOTOBOOTH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Printer.Size = NormalizePrintSize(c.Printer.Size)
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token is written in plain text; prefer the token env var or the secrets store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("api.token", cfg.API.Token)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("printer.id", cfg.Printer.ID)
	v.Set("printer.size", cfg.Printer.Size)
	v.Set("capture.dir", cfg.Capture.Dir)
	v.Set("capture.file", cfg.Capture.File)
	v.Set("wizard.forward_delay", cfg.Wizard.ForwardDelay.String())
	v.Set("wizard.forward_settle", cfg.Wizard.ForwardSettle.String())
	v.Set("wizard.backward_delay", cfg.Wizard.BackwardDelay.String())
	v.Set("wizard.backward_settle", cfg.Wizard.BackwardSettle.String())
	v.Set("wizard.toast", cfg.Wizard.Toast.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("demo.templates_dir", cfg.Demo.TemplatesDir)
	v.Set("demo.spool_dir", cfg.Demo.SpoolDir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects settings the kiosk cannot run with.
func (c Config) Validate() error {
	if err := ValidatePrintSize(c.Printer.Size); err != nil {
		return err
	}
	w := c.Wizard
	if w.ForwardDelay < 0 || w.ForwardSettle < 0 || w.BackwardDelay < 0 || w.BackwardSettle < 0 || w.Toast < 0 {
		return fmt.Errorf("wizard: delays must not be negative")
	}
	return nil
}

// NormalizePrintSize returns size in the form PrintSizes uses ("4X6 " becomes "4x6").
func NormalizePrintSize(size string) string {
	return strings.ToLower(strings.TrimSpace(size))
}

// ValidatePrintSize checks size against PrintSizes and suggests the closest match.
func ValidatePrintSize(size string) error {
	size = NormalizePrintSize(size)
	best, bestDist := "", -1
	for _, s := range PrintSizes {
		if s == size {
			return nil
		}
		d := levenshtein.ComputeDistance(size, s)
		if bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	return fmt.Errorf("printer: unknown print size %q (did you mean %q?)", size, best)
}

// Offline reports whether no backend is configured and the demo backend should be used.
func (c Config) Offline() bool {
	return strings.TrimSpace(c.API.BaseURL) == ""
}
