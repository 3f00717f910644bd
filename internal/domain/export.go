package domain

import "time"

type ExportedArtwork struct {
	ID     ArtworkID
	Title  string
	Artist string
}

// SelectionExport is a write-only report of a session's selected identities.
type SelectionExport struct {
	SessionID  string
	ExportedAt time.Time
	IDs        []ArtworkID
	Artworks   []ExportedArtwork
}

func (e SelectionExport) Count() int {
	return len(e.IDs)
}
