package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bnema/artsel/internal/application"
	"github.com/bnema/artsel/internal/domain"
	"github.com/spf13/cobra"
)

type replayEventKind string

const (
	eventPage   replayEventKind = "page"
	eventToggle replayEventKind = "toggle"
	eventRow    replayEventKind = "row"
	eventAll    replayEventKind = "all"
	eventNone   replayEventKind = "none"
	eventApply  replayEventKind = "apply"
)

type replayEvent struct {
	kind replayEventKind
	n    int
	ids  []domain.ArtworkID
	raw  string
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	var out outputOptions
	var exportPath string
	var resolve bool

	cmd := &cobra.Command{
		Use:   "replay EVENT...",
		Short: "Drive a selection session from scripted events",
		Long: `Replay applies listing events in order and prints the final page and selection.

Events:
  page:N            load page N (1-based)
  toggle:ID[,ID...] set the checked rows of the current page to exactly these ids
  row:ID            flip one row of the current page
  all | none        check or clear every row of the current page
  apply:N           check the first N rows of the current page
  @FILE             read events from FILE, one per line, # starts a comment`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			if resolve && exportPath == "" {
				return errors.New("--resolve requires --export")
			}

			events, err := parseReplayArgs(args)
			if err != nil {
				return err
			}

			app, err := wireApp(cmd, root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			browser := app.newBrowser()
			snapshot, err := replay(cmd, app, browser, events, out.asJSON)
			if err != nil {
				return err
			}

			if err := writeSnapshotOutput(cmd, snapshot, browser.SelectedIDs(), out); err != nil {
				return err
			}

			if exportPath == "" {
				return nil
			}
			return runExport(cmd, app, exportPath, browser.SelectedIDs(), resolve, out.asJSON)
		},
	}

	registerOutputFlags(cmd, &out)
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the selected ids to a TOML report")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Look up title and artist of every selected id in the report")

	return cmd
}

func replay(cmd *cobra.Command, app *app, browser *application.Browser, events []replayEvent, quiet bool) (application.Snapshot, error) {
	snapshot := browser.Snapshot()
	for _, event := range events {
		var err error
		switch event.kind {
		case eventPage:
			snapshot, err = loadPage(cmd, app, browser, event.n, quiet)
		case eventToggle:
			snapshot = browser.ToggleSelection(pageRecords(snapshot.Page, event.ids))
		case eventRow:
			snapshot = browser.ToggleRow(event.ids[0])
		case eventAll:
			snapshot = browser.SetPageSelected(true)
		case eventNone:
			snapshot = browser.SetPageSelected(false)
		case eventApply:
			snapshot = browser.BulkApply(event.n)
		}
		if err != nil {
			return snapshot, fmt.Errorf("event %q: %w", event.raw, err)
		}
	}

	return snapshot, nil
}

// pageRecords resolves ids against the resident page. Ids that are not on the
// page are passed through as bare records.
func pageRecords(page domain.Page, ids []domain.ArtworkID) []domain.Artwork {
	records := make([]domain.Artwork, 0, len(ids))
	for _, id := range ids {
		record := domain.Artwork{ID: id}
		for _, candidate := range page.Records {
			if candidate.ID == id {
				record = candidate
				break
			}
		}
		records = append(records, record)
	}
	return records
}

func runExport(cmd *cobra.Command, app *app, path string, ids []domain.ArtworkID, resolve, quiet bool) error {
	var export domain.SelectionExport
	var written string
	run := func(ctx context.Context) error {
		var err error
		export, written, err = app.exportSelection(ctx, path, ids, resolve)
		return err
	}

	var err error
	if resolve && !quiet {
		err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), app.logs, "Resolving selected artworks...", run)
	} else {
		err = run(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("export selection: %w", err)
	}

	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d selected artworks to %s\n", export.Count(), written)
	return err
}

func parseReplayArgs(args []string) ([]replayEvent, error) {
	var events []replayEvent
	for _, arg := range args {
		if file, ok := strings.CutPrefix(arg, "@"); ok {
			fromFile, err := readReplayFile(file)
			if err != nil {
				return nil, err
			}
			events = append(events, fromFile...)
			continue
		}

		event, err := parseReplayEvent(arg)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func readReplayFile(path string) ([]replayEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay script: %w", err)
	}
	defer file.Close()

	var events []replayEvent
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text, _, _ := strings.Cut(scanner.Text(), "#")
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		event, err := parseReplayEvent(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay script: %w", err)
	}

	return events, nil
}

func parseReplayEvent(raw string) (replayEvent, error) {
	name, value, hasValue := strings.Cut(strings.TrimSpace(raw), ":")
	event := replayEvent{kind: replayEventKind(strings.ToLower(name)), raw: raw}

	switch event.kind {
	case eventAll, eventNone:
		if hasValue {
			return replayEvent{}, fmt.Errorf("event %q takes no value", raw)
		}
		return event, nil
	case eventPage:
		number, err := parseEventInt(raw, value)
		if err != nil {
			return replayEvent{}, err
		}
		event.n, err = pageIndex(number)
		if err != nil {
			return replayEvent{}, fmt.Errorf("event %q: %w", raw, err)
		}
		return event, nil
	case eventApply:
		n, err := parseEventInt(raw, value)
		if err != nil {
			return replayEvent{}, err
		}
		event.n = n
		return event, nil
	case eventRow:
		ids, err := parseEventIDs(raw, value)
		if err != nil {
			return replayEvent{}, err
		}
		if len(ids) != 1 {
			return replayEvent{}, fmt.Errorf("event %q: want exactly one id", raw)
		}
		event.ids = ids
		return event, nil
	case eventToggle:
		if !hasValue {
			return replayEvent{}, fmt.Errorf("event %q: missing ids (use toggle: to clear the page)", raw)
		}
		ids, err := parseEventIDs(raw, value)
		if err != nil {
			return replayEvent{}, err
		}
		event.ids = ids
		return event, nil
	default:
		return replayEvent{}, fmt.Errorf("unknown replay event %q", raw)
	}
}

func parseEventInt(raw, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("event %q: %w", raw, err)
	}
	return n, nil
}

func parseEventIDs(raw, value string) ([]domain.ArtworkID, error) {
	var ids []domain.ArtworkID
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("event %q: invalid id %q", raw, part)
		}
		ids = append(ids, domain.ArtworkID(id))
	}
	return ids, nil
}
