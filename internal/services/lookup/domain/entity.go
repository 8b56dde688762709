// Package domain holds the lookup domain model: reference entities, homebrew
// collections, candidate sets, and the pure matching/filtering rules applied
// to them.
package domain

import (
	"strings"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
)

// Kind identifies a reference content domain.
type Kind string

const (
	KindMonster Kind = "monster"
	KindSpell   Kind = "spell"
)

// Kinds lists every registered content kind.
func Kinds() []Kind {
	return []Kind{KindMonster, KindSpell}
}

// Valid reports whether the kind is registered.
func (k Kind) Valid() bool {
	switch k {
	case KindMonster, KindSpell:
		return true
	}
	return false
}

// ParseKind maps free-form input to a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", apperrors.WithMetadata(apperrors.CodeLookupKindInvalid,
			"content kind is not registered",
			map[string]string{"Kind": value})
	}
	return kind, nil
}

// SourceHomebrew tags entities contributed by homebrew collections. Compendium
// entities carry the sourcebook tag of the publication they came from.
const SourceHomebrew = "homebrew"

// Entity is one named reference item. Entities are immutable value objects for
// the duration of a request; they are rebuilt from raw records on every
// request and carry no persistent identity.
type Entity struct {
	Name         string
	Kind         Kind
	Source       string
	SRD          bool
	CollectionID string // empty for compendium entries
	Summary      string
}

// Homebrew reports whether this entity came from a homebrew collection.
func (e Entity) Homebrew() bool {
	return e.CollectionID != ""
}

// Collection is a named bag of homebrew entities scoped to a user or campaign.
type Collection struct {
	ID       string
	OwnerID  string
	Name     string
	Kind     Kind
	Entities []Entity
}

// Provenance identifies which layer of the candidate universe an entity came
// from.
type Provenance string

const (
	ProvenanceCompendium Provenance = "compendium"
	ProvenancePersonal   Provenance = "personal"
	ProvenanceCampaign   Provenance = "campaign"
)

// CandidateSet is the ephemeral, request-scoped candidate universe: compendium
// entities first, then the requester's personal collection, then
// campaign-active collections.
type CandidateSet struct {
	Entities []Entity
	// PersonalCollectionID is the requester's active collection id, or empty
	// when the requester has none.
	PersonalCollectionID string
}

// Provenance reports which layer contributed the entity.
func (s CandidateSet) Provenance(e Entity) Provenance {
	switch {
	case e.CollectionID == "":
		return ProvenanceCompendium
	case e.CollectionID == s.PersonalCollectionID:
		return ProvenancePersonal
	default:
		return ProvenanceCampaign
	}
}
