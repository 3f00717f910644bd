package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version    int             `toml:"version"`
	SessionID  string          `toml:"session_id"`
	ExportedAt string          `toml:"exported_at"`
	Count      int             `toml:"count"`
	IDs        []int64         `toml:"ids"`
	Artworks   []artworkSchema `toml:"artworks,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported export schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type artworkSchema struct {
	ID     int64  `toml:"id"`
	Title  string `toml:"title"`
	Artist string `toml:"artist,omitempty"`
}
