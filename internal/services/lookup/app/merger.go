// Package app orchestrates name resolution: it assembles the layered
// candidate universe, ranks matches, and drives interactive disambiguation.
package app

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage"
)

const defaultPageSize = 50

// Merger assembles the request-scoped candidate set from the compendium and
// the active homebrew collections.
type Merger struct {
	Compendium  storage.CompendiumStore
	Collections storage.CollectionStore
	// PageSize bounds each campaign collection page fetch. Zero means
	// defaultPageSize.
	PageSize int
}

// entityKey identifies an entity by normalized name and origin. The origin
// is the collection id for homebrew entities and the sourcebook tag for
// compendium entities, so same-name entries from distinct origins stay
// distinct candidates.
type entityKey struct {
	name   string
	origin string
}

// Merge builds the candidate universe for one request: compendium entities
// first, then the user's active personal collection, then every collection
// active for the campaign except the personal one. A user without an active
// collection contributes nothing; that is not an error. Store failures are
// reported as collection-unavailable so callers can retry.
func (m *Merger) Merge(ctx context.Context, kind domain.Kind, userID, campaignID string) (domain.CandidateSet, error) {
	set := domain.CandidateSet{}
	seen := make(map[entityKey]struct{})
	for _, entity := range m.Compendium.ListAll(kind) {
		key := entityKey{name: domain.NormalizeName(entity.Name), origin: entity.Source}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set.Entities = append(set.Entities, entity)
	}

	personal, err := m.Collections.GetActiveCollection(ctx, userID, kind)
	switch {
	case errors.Is(err, storage.ErrNoActiveCollection):
		// Normal case, contributes nothing.
	case err != nil:
		return domain.CandidateSet{}, apperrors.Wrap(apperrors.CodeCollectionUnavailable,
			"fetch active personal collection", err)
	default:
		set.PersonalCollectionID = personal.ID
		if err := m.appendCollection(ctx, &set, personal.ID, seen); err != nil {
			return domain.CandidateSet{}, err
		}
	}

	if campaignID == "" {
		return set, nil
	}

	pageSize := m.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageToken := ""
	for {
		if err := ctx.Err(); err != nil {
			return domain.CandidateSet{}, err
		}
		page, err := m.Collections.ListCampaignCollections(ctx, campaignID, kind, pageSize, pageToken)
		if err != nil {
			return domain.CandidateSet{}, apperrors.Wrap(apperrors.CodeCollectionUnavailable,
				"list campaign collections", err)
		}
		for _, collection := range page.Collections {
			if collection.ID == set.PersonalCollectionID {
				// Already contributed by the personal layer.
				continue
			}
			if err := m.appendCollection(ctx, &set, collection.ID, seen); err != nil {
				return domain.CandidateSet{}, err
			}
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return set, nil
}

func (m *Merger) appendCollection(ctx context.Context, set *domain.CandidateSet, collectionID string, seen map[entityKey]struct{}) error {
	entities, err := m.Collections.ListEntities(ctx, collectionID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeCollectionUnavailable, "list collection entities", err)
	}
	for _, entity := range entities {
		key := entityKey{name: domain.NormalizeName(entity.Name), origin: collectionID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set.Entities = append(set.Entities, domain.Entity{
			Name:         entity.Name,
			Kind:         entity.Kind,
			Source:       domain.SourceHomebrew,
			CollectionID: collectionID,
			Summary:      entity.Summary,
		})
	}
	return nil
}
