package ports

import (
	"context"

	"github.com/bnema/artsel/internal/domain"
)

// PageSource fetches one page of artworks by 0-based page index.
type PageSource interface {
	FetchPage(ctx context.Context, pageIndex int) (domain.Page, error)
}

type ArtworkLookup interface {
	LookupArtworks(ctx context.Context, ids []domain.ArtworkID) ([]domain.Artwork, error)
}
