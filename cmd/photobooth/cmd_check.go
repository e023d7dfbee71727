package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jask/photobooth/internal/service"
)

var checkTimeout time.Duration

// checkCmd verifies the backend answers template requests for every gender.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch templates for every gender and report the counts",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 15*time.Second, "Overall timeout")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend := newBackend(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	counts := make([]int, len(service.Genders))
	g, gctx := errgroup.WithContext(ctx)
	for i, gender := range service.Genders {
		i, gender := i, gender
		g.Go(func() error {
			list, err := backend.FetchTemplates(gctx, gender)
			if err != nil {
				return fmt.Errorf("templates for %s: %w", gender, err)
			}
			counts[i] = len(list)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Offline() {
		fmt.Fprintf(out, "backend: offline (%s)\n", cfg.Demo.TemplatesDir)
	} else {
		fmt.Fprintf(out, "backend: %s\n", cfg.API.BaseURL)
	}
	for i, gender := range service.Genders {
		fmt.Fprintf(out, "%-6s %d templates\n", gender, counts[i])
	}
	return nil
}
