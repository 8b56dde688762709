// Package compendium loads the published reference catalog from JSON files
// into memory. The catalog is read once at startup and served read-only.
package compendium

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
)

type entryJSON struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	SRD     bool   `json:"srd"`
	Summary string `json:"summary"`
}

var filesByKind = map[domain.Kind]string{
	domain.KindMonster: "monsters.json",
	domain.KindSpell:   "spells.json",
}

// Store serves compendium entities from memory. Safe for concurrent use after
// Load returns.
type Store struct {
	byKind map[domain.Kind][]domain.Entity
}

// Load reads the catalog files from dir. Every registered kind must have its
// file present and well formed; a partial catalog is treated as a failure.
func Load(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, apperrors.New(apperrors.CodeCompendiumLoadFailed, "compendium directory is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCompendiumLoadFailed, "stat compendium directory", err)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads the catalog files from the root of fsys.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{byKind: make(map[domain.Kind][]domain.Entity, len(filesByKind))}
	for _, kind := range domain.Kinds() {
		entities, err := loadKind(fsys, kind)
		if err != nil {
			return nil, err
		}
		store.byKind[kind] = entities
	}
	return store, nil
}

func loadKind(fsys fs.FS, kind domain.Kind) ([]domain.Entity, error) {
	file := filesByKind[kind]
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCompendiumLoadFailed,
			fmt.Sprintf("read catalog file %s", file), err)
	}

	var entries []entryJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCompendiumLoadFailed,
			fmt.Sprintf("parse catalog file %s", file), err)
	}

	entities := make([]domain.Entity, 0, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, apperrors.WithMetadata(apperrors.CodeCompendiumLoadFailed,
				"catalog entry has no name",
				map[string]string{"File": file, "Index": fmt.Sprintf("%d", i)})
		}
		entities = append(entities, domain.Entity{
			Name:    name,
			Kind:    kind,
			Source:  strings.TrimSpace(entry.Source),
			SRD:     entry.SRD,
			Summary: entry.Summary,
		})
	}
	return entities, nil
}

// ListAll returns every compendium entity of the kind. The returned slice is
// a copy callers may reorder.
func (s *Store) ListAll(kind domain.Kind) []domain.Entity {
	if s == nil {
		return nil
	}
	entities := s.byKind[kind]
	out := make([]domain.Entity, len(entities))
	copy(out, entities)
	return out
}
