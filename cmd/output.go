package cmd

import (
	"encoding/json"
	"fmt"

	pageview "github.com/bnema/artsel/internal/adapters/render/page"
	tablerender "github.com/bnema/artsel/internal/adapters/render/table"
	"github.com/bnema/artsel/internal/application"
	"github.com/bnema/artsel/internal/domain"
	"github.com/spf13/cobra"
)

const (
	formatView  = "view"
	formatTable = "table"
)

type outputOptions struct {
	format string
	asJSON bool
}

func (o outputOptions) validate() error {
	switch o.format {
	case formatView, formatTable:
		return nil
	default:
		return fmt.Errorf("invalid format %q (want %s or %s)", o.format, formatView, formatTable)
	}
}

func registerOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	cmd.Flags().StringVar(&opts.format, "format", formatView, "Output format (view, table)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Render JSON output")
}

type artworkOutput struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	PlaceOfOrigin string `json:"place_of_origin,omitempty"`
	ArtistDisplay string `json:"artist_display,omitempty"`
	Inscriptions  string `json:"inscriptions,omitempty"`
	DateStart     *int   `json:"date_start"`
	DateEnd       *int   `json:"date_end"`
	Selected      bool   `json:"selected"`
}

type snapshotOutput struct {
	Page          int             `json:"page"`
	PageCount     int             `json:"page_count"`
	Total         int             `json:"total"`
	FirstRow      int             `json:"first_row"`
	LastRow       int             `json:"last_row"`
	Records       []artworkOutput `json:"records"`
	SelectedCount int             `json:"selected_count"`
	SelectedIDs   []int64         `json:"selected_ids"`
}

func toSnapshotOutput(snapshot application.Snapshot, selected []domain.ArtworkID) snapshotOutput {
	records := make([]artworkOutput, 0, len(snapshot.Page.Records))
	for _, artwork := range snapshot.Page.Records {
		records = append(records, artworkOutput{
			ID:            int64(artwork.ID),
			Title:         artwork.Title,
			PlaceOfOrigin: artwork.PlaceOfOrigin,
			ArtistDisplay: artwork.ArtistDisplay,
			Inscriptions:  artwork.Inscriptions,
			DateStart:     artwork.DateStart,
			DateEnd:       artwork.DateEnd,
			Selected:      snapshot.IsChecked(artwork.ID),
		})
	}

	ids := make([]int64, 0, len(selected))
	for _, id := range selected {
		ids = append(ids, int64(id))
	}

	return snapshotOutput{
		Page:          snapshot.Page.Index + 1,
		PageCount:     snapshot.PageCount,
		Total:         snapshot.Page.Total,
		FirstRow:      snapshot.FirstRow,
		LastRow:       snapshot.LastRow,
		Records:       records,
		SelectedCount: snapshot.SelectedCount,
		SelectedIDs:   ids,
	}
}

func writeSnapshotOutput(cmd *cobra.Command, snapshot application.Snapshot, selected []domain.ArtworkID, opts outputOptions) error {
	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(toSnapshotOutput(snapshot, selected))
	}

	if opts.format == formatTable {
		rendered, err := tablerender.Encode(snapshot)
		if err != nil {
			return fmt.Errorf("render table: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(rendered)
		return err
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), pageview.Render(snapshot, pageview.RenderOptions{}))
	return err
}

// pageIndex converts a 1-based page number from the command line.
func pageIndex(number int) (int, error) {
	if number < 1 {
		return 0, fmt.Errorf("%w: page numbers start at 1, got %d", domain.ErrInvalidPageIndex, number)
	}
	return number - 1, nil
}
