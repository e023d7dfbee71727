package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/photobooth/internal/api"
	"github.com/jask/photobooth/internal/capture"
	"github.com/jask/photobooth/internal/config"
	"github.com/jask/photobooth/internal/database"
	"github.com/jask/photobooth/internal/database/repository"
	"github.com/jask/photobooth/internal/logging"
	"github.com/jask/photobooth/internal/prefs"
	"github.com/jask/photobooth/internal/secrets"
	"github.com/jask/photobooth/internal/service"
	"github.com/jask/photobooth/internal/session"
	"github.com/jask/photobooth/internal/tui"
	"github.com/jask/photobooth/internal/wizard"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "photobooth",
	Short: "Photo booth kiosk",
	Long: `Runs the photo booth kiosk: contact details, style, template, capture and result.

With api.base_url unset the kiosk runs offline against demo.templates_dir and spools
prints into demo.spool_dir.`,
	SilenceUsage: true,
	RunE:         runKiosk,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runKiosk(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Path, cfg.Log.Level, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	// repositories
	values := repository.NewSessionValueRepo(db)
	contacts := repository.NewContactRepo(db)
	jobs := repository.NewPrintJobRepo(db)

	sess := session.New(ctx, values, log.Named("session"))
	if err := sess.Load(); err != nil {
		log.Warn("restore session", zap.Error(err))
	}

	backend := newBackend(cfg)
	src, err := capture.New(cfg.Capture.Dir, cfg.Capture.File)
	if err != nil {
		log.Warn("capture disabled", zap.Error(err))
	}
	log.Info("kiosk starting",
		zap.Bool("offline", cfg.Offline()),
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("printer", cfg.Printer.ID),
		zap.String("size", cfg.Printer.Size))

	services := tui.Services{
		Contacts:  &service.ContactService{Backend: backend, Contacts: contacts, Log: log.Named("contact")},
		Templates: &service.TemplateService{Backend: backend, Log: log.Named("templates")},
		Prints:    &service.PrintService{Backend: backend, Jobs: jobs, Log: log.Named("print")},
		Capture:   &service.CaptureService{Source: src, Backend: backend, Log: log.Named("capture")},
	}
	app := tui.New(ctx, sess, services, tui.Options{
		Timing: wizard.Timing{
			ForwardDelay:   cfg.Wizard.ForwardDelay,
			ForwardSettle:  cfg.Wizard.ForwardSettle,
			BackwardDelay:  cfg.Wizard.BackwardDelay,
			BackwardSettle: cfg.Wizard.BackwardSettle,
		},
		Toast:      cfg.Wizard.Toast,
		Printer:    cfg.Printer.ID,
		PrintSize:  cfg.Printer.Size,
		PrintSizes: config.PrintSizes,
		SavePrint: func(printer, size string) error {
			return prefs.SavePrint(prefs.Print{Printer: printer, Size: size})
		},
	}, log.Named("tui"))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// loadConfig reads config, applies saved print preferences and validates the result.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	if p, err := prefs.LoadPrint(); err == nil {
		if p.Printer != "" {
			cfg.Printer.ID = p.Printer
		}
		if p.Size != "" && config.ValidatePrintSize(p.Size) == nil {
			cfg.Printer.Size = config.NormalizePrintSize(p.Size)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newBackend(cfg config.Config) api.Backend {
	if cfg.Offline() {
		return api.NewDemo(cfg.Demo.TemplatesDir, cfg.Demo.SpoolDir)
	}
	return api.NewClient(cfg.API.BaseURL, resolveToken(cfg), cfg.API.Timeout)
}

// resolveToken prefers the env var, then the encrypted store, then the config file.
func resolveToken(cfg config.Config) string {
	if env := strings.TrimSpace(cfg.API.TokenEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	if store, err := secrets.NewStore(); err == nil {
		if tok, err := store.Get(cfg.API.BaseURL); err == nil {
			return tok
		}
	}
	return strings.TrimSpace(cfg.API.Token)
}
