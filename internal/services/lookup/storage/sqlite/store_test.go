package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetCollectionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 12, 10, 30, 0, 0, time.UTC)
	input := storage.Collection{
		ID:        "col-1",
		OwnerID:   "user-1",
		Name:      "Valley Bestiary",
		Kind:      domain.KindMonster,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entities := []storage.Entity{
		{Name: "Gob Lord", Summary: "A goblin warlord"},
		{Name: "Sun Wraith", Summary: "A burning spirit"},
	}
	if err := store.CreateCollection(context.Background(), input, entities); err != nil {
		t.Fatalf("create collection: %v", err)
	}

	got, err := store.GetCollection(context.Background(), "col-1")
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if got.Name != input.Name {
		t.Fatalf("name = %q, want %q", got.Name, input.Name)
	}
	if got.Kind != domain.KindMonster {
		t.Fatalf("kind = %q, want %q", got.Kind, domain.KindMonster)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}

	listed, err := store.ListEntities(context.Background(), "col-1")
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("len(entities) = %d, want 2", len(listed))
	}
	if listed[0].Name != "Gob Lord" {
		t.Fatalf("entities[0].Name = %q, want %q", listed[0].Name, "Gob Lord")
	}
	if listed[0].Kind != domain.KindMonster {
		t.Fatalf("entities[0].Kind = %q, want %q", listed[0].Kind, domain.KindMonster)
	}
}

func TestCreateCollectionReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := storage.Collection{
		ID:      "col-dup",
		OwnerID: "user-1",
		Name:    "Duplicate Collection",
		Kind:    domain.KindSpell,
	}
	if err := store.CreateCollection(context.Background(), input, nil); err != nil {
		t.Fatalf("create initial collection: %v", err)
	}
	err := store.CreateCollection(context.Background(), input, nil)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetCollectionReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetCollection(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing collection error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestGetActiveCollection(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createCollection(t, store, "col-monsters", "user-1", domain.KindMonster)
	createCollection(t, store, "col-spells", "user-1", domain.KindSpell)

	t.Run("no activation", func(t *testing.T) {
		_, err := store.GetActiveCollection(context.Background(), "user-1", domain.KindMonster)
		if !errors.Is(err, storage.ErrNoActiveCollection) {
			t.Fatalf("error = %v, want %v", err, storage.ErrNoActiveCollection)
		}
	})

	t.Run("activation is per kind", func(t *testing.T) {
		if err := store.SetActiveCollection(context.Background(), "user-1", "col-monsters"); err != nil {
			t.Fatalf("set active collection: %v", err)
		}

		got, err := store.GetActiveCollection(context.Background(), "user-1", domain.KindMonster)
		if err != nil {
			t.Fatalf("get active collection: %v", err)
		}
		if got.ID != "col-monsters" {
			t.Fatalf("id = %q, want %q", got.ID, "col-monsters")
		}

		_, err = store.GetActiveCollection(context.Background(), "user-1", domain.KindSpell)
		if !errors.Is(err, storage.ErrNoActiveCollection) {
			t.Fatalf("spell activation error = %v, want %v", err, storage.ErrNoActiveCollection)
		}
	})

	t.Run("reactivation replaces", func(t *testing.T) {
		createCollection(t, store, "col-monsters-2", "user-1", domain.KindMonster)
		if err := store.SetActiveCollection(context.Background(), "user-1", "col-monsters-2"); err != nil {
			t.Fatalf("set active collection: %v", err)
		}

		got, err := store.GetActiveCollection(context.Background(), "user-1", domain.KindMonster)
		if err != nil {
			t.Fatalf("get active collection: %v", err)
		}
		if got.ID != "col-monsters-2" {
			t.Fatalf("id = %q, want %q", got.ID, "col-monsters-2")
		}
	})
}

func TestSetActiveCollectionRequiresExistingCollection(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.SetActiveCollection(context.Background(), "user-1", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListCampaignCollectionsPaged(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, id := range []string{"col-a", "col-b", "col-c"} {
		createCollection(t, store, id, "user-1", domain.KindMonster)
		if err := store.ActivateForCampaign(context.Background(), "camp-1", id); err != nil {
			t.Fatalf("activate %s: %v", id, err)
		}
	}
	createCollection(t, store, "col-spells", "user-1", domain.KindSpell)
	if err := store.ActivateForCampaign(context.Background(), "camp-1", "col-spells"); err != nil {
		t.Fatalf("activate col-spells: %v", err)
	}

	first, err := store.ListCampaignCollections(context.Background(), "camp-1", domain.KindMonster, 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Collections) != 2 {
		t.Fatalf("first page size = %d, want 2", len(first.Collections))
	}
	if first.NextPageToken == "" {
		t.Fatal("expected next page token")
	}
	if first.Collections[0].ID != "col-a" || first.Collections[1].ID != "col-b" {
		t.Fatalf("first page ids = %q, %q", first.Collections[0].ID, first.Collections[1].ID)
	}

	second, err := store.ListCampaignCollections(context.Background(), "camp-1", domain.KindMonster, 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Collections) != 1 {
		t.Fatalf("second page size = %d, want 1", len(second.Collections))
	}
	if second.Collections[0].ID != "col-c" {
		t.Fatalf("second page id = %q, want %q", second.Collections[0].ID, "col-c")
	}
	if second.NextPageToken != "" {
		t.Fatalf("second page token = %q, want empty", second.NextPageToken)
	}
}

func TestActivateForCampaignIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createCollection(t, store, "col-1", "user-1", domain.KindMonster)

	for range 2 {
		if err := store.ActivateForCampaign(context.Background(), "camp-1", "col-1"); err != nil {
			t.Fatalf("activate for campaign: %v", err)
		}
	}

	page, err := store.ListCampaignCollections(context.Background(), "camp-1", domain.KindMonster, 10, "")
	if err != nil {
		t.Fatalf("list campaign collections: %v", err)
	}
	if len(page.Collections) != 1 {
		t.Fatalf("len(collections) = %d, want 1", len(page.Collections))
	}
}

func createCollection(t *testing.T, store *Store, id, ownerID string, kind domain.Kind) {
	t.Helper()

	err := store.CreateCollection(context.Background(), storage.Collection{
		ID:      id,
		OwnerID: ownerID,
		Name:    "Collection " + id,
		Kind:    kind,
	}, []storage.Entity{{Name: "Entry " + id}})
	if err != nil {
		t.Fatalf("create collection %s: %v", id, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "lookup.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
