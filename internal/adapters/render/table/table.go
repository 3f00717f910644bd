package table

import (
	"bytes"
	"fmt"

	"github.com/bnema/artsel/internal/adapters/render/page"
	"github.com/bnema/artsel/internal/application"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	titleWidthMax  = 40
	artistWidthMax = 32
)

// Encode renders the resident page with a checkbox column and a footer
// carrying the selection counter.
func Encode(snapshot application.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	t := prettytable.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(page.PageLine(snapshot))
	t.AppendHeader(prettytable.Row{"Sel", "ID", "Title", "Place of origin", "Artist", "Inscriptions", "Start", "End"})
	for _, artwork := range snapshot.Page.Records {
		mark := "[ ]"
		if snapshot.IsChecked(artwork.ID) {
			mark = "[x]"
		}
		t.AppendRow(prettytable.Row{
			mark,
			artwork.ID,
			page.TitleOrUntitled(artwork.Title),
			artwork.PlaceOfOrigin,
			artwork.ArtistLine(),
			artwork.Inscriptions,
			year(artwork.DateStart),
			year(artwork.DateEnd),
		})
	}
	t.AppendFooter(prettytable.Row{"", "", page.SelectedLine(snapshot.SelectedCount)})
	t.SetColumnConfigs([]prettytable.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: titleWidthMax},
		{Number: 5, WidthMax: artistWidthMax},
		{Number: 6, WidthMax: artistWidthMax},
	})

	style := prettytable.StyleLight
	style.Options.DrawBorder = false
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.Render()

	return buf.Bytes(), nil
}

func year(value *int) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%d", *value)
}
