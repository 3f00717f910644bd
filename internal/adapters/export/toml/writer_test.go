package toml

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/artsel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "selection.toml")
	writer, err := NewWriter(path)
	require.NoError(t, err)
	assert.Equal(t, path, writer.Path())

	export := domain.SelectionExport{
		SessionID:  "9d4c6e1a-3b7f-4c1e-9d55-0c2b7a1f4e10",
		ExportedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		IDs:        []domain.ArtworkID{1, 13, 14},
		Artworks: []domain.ExportedArtwork{
			{ID: 1, Title: "Water Lilies", Artist: "Claude Monet"},
			{ID: 13, Title: "Nighthawks", Artist: "Edward Hopper"},
			{ID: 14, Title: "Untitled"},
		},
	}

	require.NoError(t, writer.Export(context.Background(), export))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, export, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(exportFileMode), info.Mode().Perm())
}

func TestWriterWritesVersionAndCount(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "selection.toml")
	writer, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, writer.Export(context.Background(), domain.SelectionExport{SessionID: "s", IDs: []domain.ArtworkID{5, 6}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "version = 1")
	assert.Contains(t, content, "count = 2")
	assert.NotContains(t, content, "[[artworks]]")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "temp file left behind: %s", entry.Name())
	}
}

func TestWriterOverwritesPreviousExport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "selection.toml")
	writer, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, writer.Export(context.Background(), domain.SelectionExport{IDs: []domain.ArtworkID{1, 2, 3}}))
	require.NoError(t, writer.Export(context.Background(), domain.SelectionExport{IDs: []domain.ArtworkID{9}}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ArtworkID{9}, got.IDs)
}

func TestWriterRespectsCancelledContext(t *testing.T) {
	t.Parallel()

	writer, err := NewWriter(filepath.Join(t.TempDir(), "selection.toml"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, writer.Export(ctx, domain.SelectionExport{}), context.Canceled)
}

func TestReadRejectsNewerSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "selection.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 2\nids = [1]\n"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export schema version 2")
}

func TestNewWriterRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewWriter("")
	require.Error(t, err)
}
