package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	UI      uiSchema      `toml:"ui"`
	Session sessionSchema `toml:"session"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported preferences schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type uiSchema struct {
	Theme     string `toml:"theme"`
	UpdatedAt string `toml:"updated_at,omitempty"`
}

type sessionSchema struct {
	LastEmail string `toml:"last_email,omitempty"`
}
