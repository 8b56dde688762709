package domain

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{name: "monster", input: "monster", want: KindMonster},
		{name: "spell", input: "spell", want: KindSpell},
		{name: "mixed case with spaces", input: "  Monster ", want: KindMonster},
		{name: "unknown", input: "artifact", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var appErr *apperrors.Error
				if !errors.As(err, &appErr) {
					t.Fatalf("expected *apperrors.Error, got %T", err)
				}
				if appErr.Code != apperrors.CodeLookupKindInvalid {
					t.Errorf("Code = %v, want %v", appErr.Code, apperrors.CodeLookupKindInvalid)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEntityHomebrew(t *testing.T) {
	t.Parallel()

	if (Entity{Name: "Goblin"}).Homebrew() {
		t.Error("compendium entity reported as homebrew")
	}
	if !(Entity{Name: "Gob Lord", CollectionID: "col-1"}).Homebrew() {
		t.Error("collection entity not reported as homebrew")
	}
}

func TestCandidateSetProvenance(t *testing.T) {
	t.Parallel()

	set := CandidateSet{PersonalCollectionID: "col-personal"}

	tests := []struct {
		name   string
		entity Entity
		want   Provenance
	}{
		{name: "compendium", entity: Entity{Name: "Goblin"}, want: ProvenanceCompendium},
		{name: "personal", entity: Entity{Name: "Gob Lord", CollectionID: "col-personal"}, want: ProvenancePersonal},
		{name: "campaign", entity: Entity{Name: "Gob King", CollectionID: "col-other"}, want: ProvenanceCampaign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := set.Provenance(tt.entity); got != tt.want {
				t.Errorf("Provenance() = %v, want %v", got, tt.want)
			}
		})
	}
}
