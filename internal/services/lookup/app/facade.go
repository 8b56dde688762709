package app

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
)

const defaultCutoff = 0.05

// Labeler decorates a candidate name for prompt display. It never affects
// matching or ranking.
type Labeler func(domain.Entity) string

// HomebrewLabeler appends marker to names contributed by homebrew
// collections.
func HomebrewLabeler(marker string) Labeler {
	return func(e domain.Entity) string {
		if e.Homebrew() && marker != "" {
			return e.Name + " " + marker
		}
		return e.Name
	}
}

// Request carries one resolution call into the facade.
type Request struct {
	Query      string
	UserID     string
	CampaignID string
	Channel    string
	// SRDOnly restricts candidates to the freely redistributable subset.
	SRDOnly bool
	// Filter is an optional AIP-160 expression over name, kind, source, and
	// srd, ANDed with the built-in predicates.
	Filter string
	// Cutoff overrides the resolver's default similarity cutoff when
	// set. Zero is a valid override that accepts any similarity. Must
	// stay in [0, 1].
	Cutoff *float64
}

// Resolver is the per-kind entry point callers use to turn free text into
// exactly one entity.
type Resolver struct {
	Merger *Merger
	Engine *Engine
	// Label decorates prompt entries. Nil means a plain homebrew marker.
	Label Labeler
	// DefaultCutoff applies when a request does not set one. Zero means
	// defaultCutoff.
	DefaultCutoff float64
}

// ResolveMonster resolves a monster name, prompting the user when ambiguous.
func (r *Resolver) ResolveMonster(ctx context.Context, req Request) (domain.Result, error) {
	return r.Resolve(ctx, domain.KindMonster, req)
}

// ResolveSpell resolves a spell name, prompting the user when ambiguous.
func (r *Resolver) ResolveSpell(ctx context.Context, req Request) (domain.Result, error) {
	return r.Resolve(ctx, domain.KindSpell, req)
}

// Resolve assembles the candidate universe for the kind and runs the
// disambiguation protocol.
func (r *Resolver) Resolve(ctx context.Context, kind domain.Kind, req Request) (domain.Result, error) {
	params, err := r.buildParams(ctx, kind, req)
	if err != nil {
		return domain.Result{}, err
	}

	result, err := r.Engine.Resolve(ctx, params)
	if err != nil {
		return domain.Result{}, err
	}
	result.SRDOnly = req.SRDOnly
	return result, nil
}

// ResolveExact is the non-interactive entry point: it returns the single
// unambiguous exact match or a no-match result, never prompting.
func (r *Resolver) ResolveExact(ctx context.Context, kind domain.Kind, req Request) (domain.Result, error) {
	params, err := r.buildParams(ctx, kind, req)
	if err != nil {
		return domain.Result{}, err
	}

	result := r.Engine.ResolveExact(params)
	result.SRDOnly = req.SRDOnly
	return result, nil
}

func (r *Resolver) buildParams(ctx context.Context, kind domain.Kind, req Request) (ResolveParams, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return ResolveParams{}, apperrors.New(apperrors.CodeLookupQueryEmpty, "query is required")
	}
	if !kind.Valid() {
		return ResolveParams{}, apperrors.WithMetadata(apperrors.CodeLookupKindInvalid,
			"content kind is not registered",
			map[string]string{"Kind": string(kind)})
	}

	cutoff := r.DefaultCutoff
	if cutoff == 0 {
		cutoff = defaultCutoff
	}
	if req.Cutoff != nil {
		cutoff = *req.Cutoff
	}
	if cutoff < 0 || cutoff > 1 {
		return ResolveParams{}, apperrors.New(apperrors.CodeLookupCutoffInvalid,
			"cutoff must be between 0 and 1")
	}

	base, err := domain.CompilePredicate(req.Filter)
	if err != nil {
		return ResolveParams{}, err
	}
	var builtins []domain.Predicate
	if req.SRDOnly {
		builtins = append(builtins, domain.SRDOnly)
	}
	predicate := domain.And(append([]domain.Predicate{base}, builtins...)...)

	set, err := r.Merger.Merge(ctx, kind, req.UserID, req.CampaignID)
	if err != nil {
		return ResolveParams{}, err
	}

	label := r.Label
	if label == nil {
		label = HomebrewLabeler("[homebrew]")
	}

	return ResolveParams{
		Query:      query,
		Candidates: set,
		Predicate:  predicate,
		Cutoff:     cutoff,
		Label:      label,
		UserID:     req.UserID,
		Channel:    req.Channel,
	}, nil
}
