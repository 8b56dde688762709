package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage/sqlite"
)

func writeCollectionFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "collection.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write collection file: %v", err)
	}
	return path
}

func TestRunImportsAndActivates(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "lookup.db")
	file := writeCollectionFile(t, `{
		"name": "Valley Bestiary",
		"owner_id": "user-1",
		"kind": "monster",
		"entities": [
			{"name": "Gob Lord", "summary": "A goblin warlord"},
			{"name": "Sun Wraith"}
		]
	}`)

	var out bytes.Buffer
	err := Run(context.Background(), Config{
		DBPath:           dbPath,
		File:             file,
		ActivateUser:     "user-1",
		ActivateCampaign: "camp-1",
	}, &out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "2 entities") {
		t.Errorf("output = %q, want entity count", out.String())
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	active, err := store.GetActiveCollection(context.Background(), "user-1", domain.KindMonster)
	if err != nil {
		t.Fatalf("get active collection: %v", err)
	}
	if active.Name != "Valley Bestiary" {
		t.Errorf("active collection = %q, want %q", active.Name, "Valley Bestiary")
	}

	page, err := store.ListCampaignCollections(context.Background(), "camp-1", domain.KindMonster, 10, "")
	if err != nil {
		t.Fatalf("list campaign collections: %v", err)
	}
	if len(page.Collections) != 1 {
		t.Fatalf("len(collections) = %d, want 1", len(page.Collections))
	}
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		wantCode apperrors.Code
	}{
		{
			name:     "missing name",
			content:  `{"owner_id": "user-1", "kind": "monster"}`,
			wantCode: apperrors.CodeCollectionNameEmpty,
		},
		{
			name:     "missing owner",
			content:  `{"name": "Bestiary", "kind": "monster"}`,
			wantCode: apperrors.CodeCollectionOwnerEmpty,
		},
		{
			name:     "bad kind",
			content:  `{"name": "Bestiary", "owner_id": "user-1", "kind": "artifact"}`,
			wantCode: apperrors.CodeCollectionKindInvalid,
		},
		{
			name:     "unnamed entity",
			content:  `{"name": "Bestiary", "owner_id": "user-1", "kind": "monster", "entities": [{"name": " "}]}`,
			wantCode: apperrors.CodeCollectionEntityNameEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := writeCollectionFile(t, tt.content)
			err := Run(context.Background(), Config{
				DBPath: filepath.Join(t.TempDir(), "lookup.db"),
				File:   file,
			}, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected error")
			}
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperrors.Error, got %T", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestRunRequiresFile(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), Config{DBPath: filepath.Join(t.TempDir(), "lookup.db")}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
