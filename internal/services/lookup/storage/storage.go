// Package storage defines persistence contracts for lookup service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNoActiveCollection indicates the user has no active personal
	// collection for the requested kind. It is an expected outcome, not a
	// failure.
	ErrNoActiveCollection = errors.New("no active collection")
)

// Collection stores one homebrew collection record.
type Collection struct {
	ID        string
	OwnerID   string
	Name      string
	Kind      domain.Kind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entity stores one named entry inside a homebrew collection.
type Entity struct {
	CollectionID string
	Name         string
	Kind         domain.Kind
	Summary      string
	CreatedAt    time.Time
}

// CollectionPage stores one page of collection records.
type CollectionPage struct {
	Collections   []Collection
	NextPageToken string
}

// CollectionStore persists homebrew collections and their activation state.
// A user activates at most one personal collection per kind; a campaign
// activates any number of collections.
type CollectionStore interface {
	CreateCollection(ctx context.Context, collection Collection, entities []Entity) error
	GetCollection(ctx context.Context, id string) (Collection, error)
	ListEntities(ctx context.Context, collectionID string) ([]Entity, error)

	// GetActiveCollection returns the user's active personal collection for
	// the kind, or ErrNoActiveCollection.
	GetActiveCollection(ctx context.Context, userID string, kind domain.Kind) (Collection, error)
	SetActiveCollection(ctx context.Context, userID string, collectionID string) error

	// ListCampaignCollections pages through collections activated for the
	// campaign, filtered to the kind.
	ListCampaignCollections(ctx context.Context, campaignID string, kind domain.Kind, pageSize int, pageToken string) (CollectionPage, error)
	ActivateForCampaign(ctx context.Context, campaignID string, collectionID string) error
}

// CompendiumStore serves the published reference catalog. Implementations are
// read-only and safe for concurrent use.
type CompendiumStore interface {
	ListAll(kind domain.Kind) []domain.Entity
}
