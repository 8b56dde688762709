// Package importer loads a homebrew collection JSON file into the lookup
// store and optionally activates it.
package importer

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/grimoire.space/internal/platform/cmd"
	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	"github.com/louisbranch/grimoire.space/internal/platform/id"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage/sqlite"
)

// Config holds importer command configuration.
type Config struct {
	DBPath string `env:"GRIMOIRE_SPACE_LOOKUP_DB_PATH" envDefault:"data/lookup.db"`

	File             string
	ActivateUser     string
	ActivateCampaign string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the homebrew SQLite database")
	fs.StringVar(&cfg.File, "file", "", "Path to the collection JSON file to import")
	fs.StringVar(&cfg.ActivateUser, "activate-user", "", "Activate the imported collection for this user")
	fs.StringVar(&cfg.ActivateCampaign, "activate-campaign", "", "Activate the imported collection for this campaign")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type collectionJSON struct {
	Name     string       `json:"name"`
	OwnerID  string       `json:"owner_id"`
	Kind     string       `json:"kind"`
	Entities []entityJSON `json:"entities"`
}

type entityJSON struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Run imports one collection file and reports the created id on out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if strings.TrimSpace(cfg.File) == "" {
		return fmt.Errorf("collection file is required")
	}

	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("read collection file: %w", err)
	}
	var doc collectionJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse collection file: %w", err)
	}

	collection, entities, err := buildCollection(doc)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open lookup store: %w", err)
	}
	defer store.Close()

	if err := store.CreateCollection(ctx, collection, entities); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	fmt.Fprintf(out, "imported collection %s (%s, %d entities)\n", collection.ID, collection.Name, len(entities))

	if user := strings.TrimSpace(cfg.ActivateUser); user != "" {
		if err := store.SetActiveCollection(ctx, user, collection.ID); err != nil {
			return fmt.Errorf("activate for user %s: %w", user, err)
		}
		fmt.Fprintf(out, "activated for user %s\n", user)
	}
	if campaign := strings.TrimSpace(cfg.ActivateCampaign); campaign != "" {
		if err := store.ActivateForCampaign(ctx, campaign, collection.ID); err != nil {
			return fmt.Errorf("activate for campaign %s: %w", campaign, err)
		}
		fmt.Fprintf(out, "activated for campaign %s\n", campaign)
	}
	return nil
}

func buildCollection(doc collectionJSON) (storage.Collection, []storage.Entity, error) {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return storage.Collection{}, nil, apperrors.New(apperrors.CodeCollectionNameEmpty,
			"collection name is required")
	}
	ownerID := strings.TrimSpace(doc.OwnerID)
	if ownerID == "" {
		return storage.Collection{}, nil, apperrors.New(apperrors.CodeCollectionOwnerEmpty,
			"collection owner is required")
	}
	kind, err := domain.ParseKind(doc.Kind)
	if err != nil {
		return storage.Collection{}, nil, apperrors.WithMetadata(apperrors.CodeCollectionKindInvalid,
			"collection kind is not registered",
			map[string]string{"Kind": doc.Kind})
	}

	collectionID, err := id.NewID()
	if err != nil {
		return storage.Collection{}, nil, fmt.Errorf("generate collection id: %w", err)
	}
	collection := storage.Collection{
		ID:      collectionID,
		OwnerID: ownerID,
		Name:    name,
		Kind:    kind,
	}
	entities := make([]storage.Entity, 0, len(doc.Entities))
	for _, entity := range doc.Entities {
		entityName := strings.TrimSpace(entity.Name)
		if entityName == "" {
			return storage.Collection{}, nil, apperrors.New(apperrors.CodeCollectionEntityNameEmpty,
				"collection entity name is required")
		}
		entities = append(entities, storage.Entity{
			Name:    entityName,
			Kind:    kind,
			Summary: entity.Summary,
		})
	}
	return collection, entities, nil
}
