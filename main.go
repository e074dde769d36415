package main

import (
	"context"
	"fmt"
	"os"

	"sheet2form/internal/app"
	"sheet2form/internal/browser"
	"sheet2form/internal/spreadsheet"
	"sheet2form/internal/submission"
	"sheet2form/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	app.SetupEnvironment()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("sheet2form failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheet2form",
		Short: "Submit spreadsheet rows into a web form",
		Long: `sheet2form reads rows from an xlsx workbook or a Google sheet and types
each row's values into the text fields of a web form, one row at a time.

Without a subcommand it opens the interactive screen.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	rootCmd.AddCommand(newRunCmd(), newInspectCmd())
	return rootCmd
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The screen owns the terminal, so logs go to a file.
	logFile, err := app.RedirectLogs(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log.Info().
		Str("source", cfg.Source).
		Str("url", cfg.FormURL).
		Bool("headless", cfg.Headless).
		Msg("Starting interactive session")

	deps := tui.Dependencies{
		Load: func(ctx context.Context, source string) (*spreadsheet.Sheet, error) {
			return spreadsheet.Load(ctx, source, cfg)
		},
		Controller: newController(cfg),
	}

	if _, err := tea.NewProgram(tui.New(deps, cfg), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}

func newController(cfg *app.Config) *submission.Controller {
	submitter := submission.NewSubmitter(browser.NewChromeDriver(), browserOptions(cfg), cfg.AttemptTimeout)
	return submission.NewController(submitter)
}

func browserOptions(cfg *app.Config) browser.Options {
	return browser.Options{
		Headless:  cfg.Headless,
		ExecPath:  cfg.ChromePath,
		UserAgent: cfg.UserAgent,
	}
}
