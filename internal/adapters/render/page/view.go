package page

import (
	"fmt"
	"strings"

	"github.com/bnema/artsel/internal/application"
	"github.com/bnema/artsel/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultTitleWidth = 48

type RenderOptions struct {
	// TitleWidth truncates long titles; zero means the default.
	TitleWidth int
}

// Render draws a snapshot as plain terminal output.
func Render(snapshot application.Snapshot, opts RenderOptions) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Art Institute of Chicago: Artworks"),
		s.header.Render(PageLine(snapshot)),
		s.selected.Render(SelectedLine(snapshot.SelectedCount)),
	}

	if snapshot.Loading {
		lines = append(lines, s.warning.Render(fmt.Sprintf("[loading page %d]", snapshot.RequestedIndex+1)))
	}

	if len(snapshot.Page.Records) == 0 {
		lines = append(lines, s.empty.Render("No artworks on this page."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([]string, 0, len(snapshot.Page.Records))
	for _, artwork := range snapshot.Page.Records {
		rows = append(rows, renderRow(artwork, snapshot.IsChecked(artwork.ID), opts, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SelectedLine is the running counter shown under the page header.
func SelectedLine(count int) string {
	return fmt.Sprintf("Selected: %d rows", count)
}

// PageLine summarizes the resident page, e.g. "page 2 of 3 · Showing 13 to 24 of 34 entries".
func PageLine(snapshot application.Snapshot) string {
	if snapshot.PageCount == 0 {
		return "no entries"
	}

	return fmt.Sprintf("page %d of %d · Showing %d to %d of %d entries",
		snapshot.Page.Index+1, snapshot.PageCount, snapshot.FirstRow, snapshot.LastRow, snapshot.Page.Total)
}

func renderRow(artwork domain.Artwork, checked bool, opts RenderOptions, s styles) string {
	box := s.box.Render("[ ]")
	if checked {
		box = s.checked.Render("[x]")
	}

	width := opts.TitleWidth
	if width <= 0 {
		width = defaultTitleWidth
	}

	parts := []string{box, " ", s.id.Render(fmt.Sprintf("%d", artwork.ID)), "  ", s.name.Render(Truncate(TitleOrUntitled(artwork.Title), width))}
	if detail := detailLine(artwork); detail != "" {
		parts = append(parts, "  ", s.detail.Render(detail))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func detailLine(artwork domain.Artwork) string {
	fields := make([]string, 0, 3)
	for _, value := range []string{artwork.ArtistLine(), artwork.PlaceOfOrigin, artwork.DateRange()} {
		if value = strings.TrimSpace(value); value != "" {
			fields = append(fields, value)
		}
	}
	return strings.Join(fields, " · ")
}

func TitleOrUntitled(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

// Truncate shortens value to width runes, marking the cut with an ellipsis.
func Truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 1 {
		return string(runes[:max(width, 0)])
	}
	return string(runes[:width-1]) + "…"
}
