package domain

import (
	"fmt"
	"strings"
)

type ArtworkID int64

type Artwork struct {
	ID            ArtworkID
	Title         string
	PlaceOfOrigin string
	ArtistDisplay string
	Inscriptions  string
	DateStart     *int
	DateEnd       *int
}

// Identity returns the durable key of the artwork across page fetches.
func (a Artwork) Identity() ArtworkID {
	return a.ID
}

// DateRange renders the start/end years, collapsing equal years.
func (a Artwork) DateRange() string {
	switch {
	case a.DateStart == nil && a.DateEnd == nil:
		return ""
	case a.DateStart == nil:
		return formatYear(*a.DateEnd)
	case a.DateEnd == nil || *a.DateStart == *a.DateEnd:
		return formatYear(*a.DateStart)
	default:
		return formatYear(*a.DateStart) + "-" + formatYear(*a.DateEnd)
	}
}

// ArtistLine returns the first line of the multi-line artist display.
func (a Artwork) ArtistLine() string {
	line, _, _ := strings.Cut(a.ArtistDisplay, "\n")
	return strings.TrimSpace(line)
}

func formatYear(year int) string {
	if year < 0 {
		return fmt.Sprintf("%d BCE", -year)
	}

	return fmt.Sprintf("%d", year)
}
