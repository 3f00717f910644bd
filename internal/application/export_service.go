package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bnema/artsel/internal/domain"
	"github.com/bnema/artsel/internal/ports"
	"golang.org/x/sync/errgroup"
)

var ErrNoExporter = errors.New("no selection exporter configured")

type ExportOptions struct {
	BatchSize   int
	Concurrency int
	Logger      *slog.Logger
}

type ExportService struct {
	lookup   ports.ArtworkLookup
	exporter ports.SelectionExporter
	clock    ports.Clock
	opts     ExportOptions
}

func NewExportService(lookup ports.ArtworkLookup, exporter ports.SelectionExporter, clock ports.Clock, opts ExportOptions) *ExportService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = domain.DefaultPageSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &ExportService{lookup: lookup, exporter: exporter, clock: clock, opts: opts}
}

// Export writes the given identities as a report. With resolve set, titles and
// artists are looked up in batches; ids the catalog no longer knows keep an
// empty title.
func (s *ExportService) Export(ctx context.Context, sessionID string, ids []domain.ArtworkID, resolve bool) (domain.SelectionExport, error) {
	if s.exporter == nil {
		return domain.SelectionExport{}, ErrNoExporter
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	export := domain.SelectionExport{
		SessionID:  sessionID,
		ExportedAt: s.clock.Now().UTC(),
		IDs:        sorted,
	}

	if resolve && len(sorted) > 0 {
		artworks, err := s.resolve(ctx, sorted)
		if err != nil {
			return domain.SelectionExport{}, fmt.Errorf("resolve selected artworks: %w", err)
		}
		export.Artworks = artworks
	}

	if err := s.exporter.Export(ctx, export); err != nil {
		return domain.SelectionExport{}, fmt.Errorf("write selection export: %w", err)
	}

	s.opts.Logger.Info("selection exported", "count", export.Count(), "resolved", len(export.Artworks))
	return export, nil
}

func (s *ExportService) resolve(ctx context.Context, ids []domain.ArtworkID) ([]domain.ExportedArtwork, error) {
	if s.lookup == nil {
		return nil, errors.New("artwork lookup is not configured")
	}

	batches := slices.Collect(slices.Chunk(ids, s.opts.BatchSize))
	results := make([][]domain.Artwork, len(batches))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.Concurrency)
	for i, batch := range batches {
		eg.Go(func() error {
			s.opts.Logger.DebugContext(egctx, "resolving artworks", "batch", i, "size", len(batch))
			artworks, err := s.lookup.LookupArtworks(egctx, batch)
			if err != nil {
				return err
			}
			results[i] = artworks
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[domain.ArtworkID]domain.Artwork, len(ids))
	for _, batch := range results {
		for _, artwork := range batch {
			byID[artwork.ID] = artwork
		}
	}

	resolved := make([]domain.ExportedArtwork, 0, len(ids))
	for _, id := range ids {
		artwork := byID[id]
		resolved = append(resolved, domain.ExportedArtwork{ID: id, Title: artwork.Title, Artist: artwork.ArtistLine()})
	}

	return resolved, nil
}
