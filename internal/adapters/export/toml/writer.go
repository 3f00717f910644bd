package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/artsel/internal/domain"
	"github.com/bnema/artsel/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	exportFileMode  = 0o644
	exportDirMode   = 0o755
	tempFilePattern = ".artsel-export-*.toml.tmp"
)

// Writer writes selection reports. It never reads them back into a session;
// Read exists for inspecting a written report.
type Writer struct {
	path string
}

var _ ports.SelectionExporter = (*Writer)(nil)

func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("export path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve export path: %w", err)
	}

	return &Writer{path: filepath.Clean(absPath)}, nil
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Export(ctx context.Context, export domain.SelectionExport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := toSchema(export)
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode export file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), exportDirMode); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(w.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp export file: %w", err)
	}

	if err := tempFile.Chmod(exportFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp export file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp export file: %w", err)
	}

	if err := os.Rename(tempName, w.path); err != nil {
		return fmt.Errorf("replace export file: %w", err)
	}

	cleanup = false
	return nil
}

func Read(path string) (domain.SelectionExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SelectionExport{}, fmt.Errorf("read export file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.SelectionExport{}, fmt.Errorf("decode export file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return domain.SelectionExport{}, err
	}
	file.applyDefaults()

	return fromSchema(file), nil
}

func toSchema(export domain.SelectionExport) fileSchema {
	ids := make([]int64, 0, len(export.IDs))
	for _, id := range export.IDs {
		ids = append(ids, int64(id))
	}

	var artworks []artworkSchema
	for _, artwork := range export.Artworks {
		artworks = append(artworks, artworkSchema{ID: int64(artwork.ID), Title: artwork.Title, Artist: artwork.Artist})
	}

	return fileSchema{
		SessionID:  export.SessionID,
		ExportedAt: formatTime(export.ExportedAt),
		Count:      len(ids),
		IDs:        ids,
		Artworks:   artworks,
	}
}

func fromSchema(file fileSchema) domain.SelectionExport {
	ids := make([]domain.ArtworkID, 0, len(file.IDs))
	for _, id := range file.IDs {
		ids = append(ids, domain.ArtworkID(id))
	}

	var artworks []domain.ExportedArtwork
	for _, artwork := range file.Artworks {
		artworks = append(artworks, domain.ExportedArtwork{ID: domain.ArtworkID(artwork.ID), Title: artwork.Title, Artist: artwork.Artist})
	}

	return domain.SelectionExport{
		SessionID:  file.SessionID,
		ExportedAt: parseTime(file.ExportedAt),
		IDs:        ids,
		Artworks:   artworks,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
