package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/artsel/internal/adapters/render/page"
	browsetui "github.com/bnema/artsel/internal/adapters/tui/browse"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const logFileMode = 0o600

func newBrowseCmd(root *rootOptions) *cobra.Command {
	var startPage int
	var exportPath string
	var resolve bool
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through artworks interactively and select rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if resolve && exportPath == "" {
				return errors.New("--resolve requires --export")
			}

			index, err := pageIndex(startPage)
			if err != nil {
				return err
			}

			logOutput := io.Discard
			if logFile != "" {
				file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer file.Close()
				logOutput = file
			}

			app, err := wireApp(cmd, root, logOutput)
			if err != nil {
				return err
			}

			browser := app.newBrowser()
			model := browsetui.New(cmd.Context(), browser, browsetui.Options{
				StartPage:   index,
				BulkDefault: app.cfg.Bulk.Default,
				Logger:      app.logger,
			})

			p := tea.NewProgram(
				model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}

			ids := browser.SelectedIDs()
			app.logger.Info("session finished", "selected", len(ids))
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), page.SelectedLine(len(ids))); err != nil {
				return err
			}

			if exportPath == "" {
				return nil
			}
			return runExport(cmd, app, exportPath, ids, resolve, false)
		},
	}

	cmd.Flags().IntVar(&startPage, "page", 1, "Page to open first (1-based)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the selected ids to a TOML report on quit")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Look up title and artist of every selected id in the report")
	cmd.Flags().StringVar(&logFile, "logfile", "", "Append logs to this file instead of discarding them")

	return cmd
}
