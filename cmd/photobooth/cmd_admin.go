package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/photobooth/internal/config"
	"github.com/jask/photobooth/internal/database"
	"github.com/jask/photobooth/internal/database/repository"
	"github.com/jask/photobooth/internal/secrets"
	"github.com/jask/photobooth/internal/service"
)

var (
	configForce    bool
	contactsStatus string
	contactsID     string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the kiosk configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings (defaults plus env overrides) to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.Path()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store or remove the backend API token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Encrypt and store the token for api.base_url",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := tokenStore()
		if err != nil {
			return err
		}
		tok := strings.TrimSpace(args[0])
		if tok == "" {
			return errors.New("token is empty")
		}
		if err := store.Put(cfg.API.BaseURL, tok); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token stored for %s\n", cfg.API.BaseURL)
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored token for api.base_url",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, store, err := tokenStore()
		if err != nil {
			return err
		}
		if err := store.Delete(cfg.API.BaseURL); err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token cleared for %s\n", cfg.API.BaseURL)
		return nil
	},
}

func tokenStore() (config.Config, *secrets.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.Offline() {
		return config.Config{}, nil, errors.New("api.base_url is not set")
	}
	store, err := secrets.NewStore()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, store, nil
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete delivered visitor data (session values, sent contacts, print log)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := database.OpenMigrated(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := (&service.MaintenanceService{DB: db}).Purge(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "purged")
		return nil
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List recorded contact submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := database.OpenMigrated(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := repository.NewContactRepo(db)
		out := cmd.OutOrStdout()
		if contactsID != "" {
			c, err := repo.Get(cmd.Context(), contactsID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("contact %s not found", contactsID)
			}
			fmt.Fprintln(out, contactLine(*c))
			return nil
		}
		list, err := repo.ListByStatus(cmd.Context(), contactsStatus)
		if err != nil {
			return err
		}
		for _, c := range list {
			fmt.Fprintln(out, contactLine(c))
		}
		if len(list) == 0 {
			fmt.Fprintf(out, "no %s contacts\n", contactsStatus)
		}
		return nil
	},
}

func contactLine(c repository.Contact) string {
	line := fmt.Sprintf("%s  %-20s %-14s %s", c.CreatedAt.Format("2006-01-02 15:04"), c.Name, c.Phone, c.Status)
	if c.Error != nil {
		line += "  " + *c.Error
	}
	return line
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)
	contactsCmd.Flags().StringVar(&contactsStatus, "status", repository.StatusFailed, "Status to list (pending, sent, failed)")
	contactsCmd.Flags().StringVar(&contactsID, "id", "", "Show a single contact by id")
	rootCmd.AddCommand(configCmd, tokenCmd, purgeCmd, contactsCmd)
}
