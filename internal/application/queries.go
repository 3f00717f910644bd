package application

import "github.com/bnema/artsel/internal/domain"

type Snapshot struct {
	Page           domain.Page
	View           []domain.Artwork
	SelectedCount  int
	Loading        bool
	RequestedIndex int
	PageCount      int
	FirstRow       int
	LastRow        int
}

func (s Snapshot) IsChecked(id domain.ArtworkID) bool {
	for _, record := range s.View {
		if record.ID == id {
			return true
		}
	}
	return false
}
