package app

import (
	"context"
	"sort"
	"strings"

	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage"
)

type fakeCompendium struct {
	byKind map[domain.Kind][]domain.Entity
}

func (f *fakeCompendium) ListAll(kind domain.Kind) []domain.Entity {
	entities := f.byKind[kind]
	out := make([]domain.Entity, len(entities))
	copy(out, entities)
	return out
}

type fakeCollectionStore struct {
	// active maps "userID/kind" to the active personal collection.
	active map[string]storage.Collection
	// entities maps collection id to its entries.
	entities map[string][]storage.Entity
	// campaign maps campaign id to activated collections.
	campaign map[string][]storage.Collection

	activeErr   error
	listErr     error
	entitiesErr error
}

func activeKey(userID string, kind domain.Kind) string {
	return userID + "/" + string(kind)
}

func (f *fakeCollectionStore) GetActiveCollection(_ context.Context, userID string, kind domain.Kind) (storage.Collection, error) {
	if f.activeErr != nil {
		return storage.Collection{}, f.activeErr
	}
	collection, ok := f.active[activeKey(userID, kind)]
	if !ok {
		return storage.Collection{}, storage.ErrNoActiveCollection
	}
	return collection, nil
}

func (f *fakeCollectionStore) ListCampaignCollections(_ context.Context, campaignID string, kind domain.Kind, pageSize int, pageToken string) (storage.CollectionPage, error) {
	if f.listErr != nil {
		return storage.CollectionPage{}, f.listErr
	}
	var matched []storage.Collection
	for _, collection := range f.campaign[campaignID] {
		if collection.Kind != kind {
			continue
		}
		if pageToken != "" && collection.ID <= pageToken {
			continue
		}
		matched = append(matched, collection)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := storage.CollectionPage{}
	for _, collection := range matched {
		if len(page.Collections) == pageSize {
			page.NextPageToken = page.Collections[pageSize-1].ID
			break
		}
		page.Collections = append(page.Collections, collection)
	}
	return page, nil
}

func (f *fakeCollectionStore) ListEntities(_ context.Context, collectionID string) ([]storage.Entity, error) {
	if f.entitiesErr != nil {
		return nil, f.entitiesErr
	}
	return f.entities[collectionID], nil
}

func (f *fakeCollectionStore) GetCollection(_ context.Context, id string) (storage.Collection, error) {
	for _, collections := range f.campaign {
		for _, collection := range collections {
			if collection.ID == id {
				return collection, nil
			}
		}
	}
	for _, collection := range f.active {
		if collection.ID == id {
			return collection, nil
		}
	}
	return storage.Collection{}, storage.ErrNotFound
}

func (f *fakeCollectionStore) CreateCollection(context.Context, storage.Collection, []storage.Entity) error {
	return nil
}

func (f *fakeCollectionStore) SetActiveCollection(context.Context, string, string) error {
	return nil
}

func (f *fakeCollectionStore) ActivateForCampaign(context.Context, string, string) error {
	return nil
}

type fakePrompter struct {
	reply PromptReply
	err   error
	// waitForCtx makes the prompt block until its context is done and
	// return the context error, imitating a user who never answers.
	waitForCtx bool

	calls    int
	lastReq  PromptRequest
	released int
}

func (f *fakePrompter) Prompt(ctx context.Context, req PromptRequest) (PromptReply, error) {
	f.calls++
	f.lastReq = req
	if f.waitForCtx {
		<-ctx.Done()
		f.released++
		return PromptReply{}, ctx.Err()
	}
	if f.err != nil {
		return PromptReply{}, f.err
	}
	return f.reply, nil
}

func homebrewEntity(name, collectionID string, kind domain.Kind) domain.Entity {
	return domain.Entity{
		Name:         name,
		Kind:         kind,
		Source:       domain.SourceHomebrew,
		CollectionID: collectionID,
	}
}

func entityNames(entities []domain.Entity) string {
	names := make([]string, len(entities))
	for i, entity := range entities {
		names[i] = entity.Name
	}
	return strings.Join(names, ",")
}
