package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/artsel/internal/application"
	"github.com/bnema/artsel/internal/domain"
	"github.com/spf13/cobra"
)

func newPageCmd(root *rootOptions) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "page N",
		Short: "Fetch and display one page of artworks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}

			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse page number %q: %w", args[0], err)
			}
			index, err := pageIndex(number)
			if err != nil {
				return err
			}

			app, err := wireApp(cmd, root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			browser := app.newBrowser()
			snapshot, err := loadPage(cmd, app, browser, index, out.asJSON)
			if err != nil {
				return err
			}

			return writeSnapshotOutput(cmd, snapshot, browser.SelectedIDs(), out)
		},
	}

	registerOutputFlags(cmd, &out)

	return cmd
}

// loadPage shows a spinner on stderr unless the output is machine readable.
// Only the fetch runs under the spinner; the result is delivered here.
func loadPage(cmd *cobra.Command, app *app, browser *application.Browser, index int, quiet bool) (application.Snapshot, error) {
	if quiet {
		return browser.Load(cmd.Context(), index)
	}

	req, err := browser.Navigate(index)
	if err != nil {
		return browser.Snapshot(), err
	}

	var page domain.Page
	label := fmt.Sprintf("Fetching page %d (request %d)...", req.PageIndex+1, req.Seq)
	fetchErr := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), app.logs, label, func(ctx context.Context) error {
		var err error
		page, err = browser.Fetch(ctx, req)
		return err
	})

	return browser.Deliver(req, page, fetchErr)
}
