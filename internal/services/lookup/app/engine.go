package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
)

const (
	defaultMaxChoices    = 10
	defaultPromptTimeout = 30 * time.Second
)

// PromptRequest describes one disambiguation prompt addressed to a single
// user.
type PromptRequest struct {
	UserID  string
	Channel string
	Query   string
	// Labels are the decorated candidate names, ordered best match first.
	Labels []string
}

// PromptReply is the user's answer to a prompt. Selected indexes into the
// request Labels; Declined means the user explicitly refused to choose.
type PromptReply struct {
	Selected int
	Declined bool
}

// Prompter presents an ordered choice to a user and blocks until the user
// answers, the context expires, or the transport fails.
type Prompter interface {
	Prompt(ctx context.Context, req PromptRequest) (PromptReply, error)
}

// ResolveParams carries one resolution call through the engine.
type ResolveParams struct {
	Query      string
	Candidates domain.CandidateSet
	// Predicate restricts eligibility. Nil accepts every candidate.
	Predicate domain.Predicate
	// Cutoff is the minimum similarity for a non-exact candidate to stay
	// eligible, in [0, 1].
	Cutoff float64
	// Label decorates an entity for prompt display only. Nil means the raw
	// entity name.
	Label   func(domain.Entity) string
	UserID  string
	Channel string
}

// Engine decides whether a query auto-resolves, needs a prompt, or misses.
type Engine struct {
	Prompter Prompter
	// MaxChoices bounds the prompt length. Zero means defaultMaxChoices.
	MaxChoices int
	// Timeout bounds one prompt round trip. Zero means defaultPromptTimeout.
	Timeout time.Duration
}

// Resolve runs the matching and disambiguation protocol for one query.
//
// A single exact match resolves immediately without prompting. Multiple exact
// matches, or multiple above-cutoff fuzzy matches, prompt the user. Prompt
// timeout and explicit decline both yield a cancelled result; cancellation of
// ctx itself propagates as an error.
func (e *Engine) Resolve(ctx context.Context, params ResolveParams) (domain.Result, error) {
	eligible := make([]domain.Entity, 0, len(params.Candidates.Entities))
	for _, candidate := range params.Candidates.Entities {
		if params.Predicate != nil && !params.Predicate(candidate) {
			continue
		}
		eligible = append(eligible, candidate)
	}
	if len(eligible) == 0 {
		return domain.Result{Outcome: domain.OutcomeNoMatch}, nil
	}

	scored := domain.ScoreAll(eligible, params.Query)

	var exact []domain.Scored
	for _, s := range scored {
		if s.Exact {
			exact = append(exact, s)
		}
	}
	if len(exact) == 1 {
		return e.resolved(params.Candidates, exact[0].Entity), nil
	}

	remaining := scored
	if len(exact) > 1 {
		remaining = exact
	} else {
		kept := remaining[:0]
		for _, s := range remaining {
			if s.Similarity >= params.Cutoff {
				kept = append(kept, s)
			}
		}
		remaining = kept
	}
	if len(remaining) == 0 {
		return domain.Result{Outcome: domain.OutcomeNoMatch}, nil
	}
	if len(remaining) == 1 {
		return e.resolved(params.Candidates, remaining[0].Entity), nil
	}

	domain.SortScored(remaining)
	maxChoices := e.MaxChoices
	if maxChoices <= 0 {
		maxChoices = defaultMaxChoices
	}
	if len(remaining) > maxChoices {
		remaining = remaining[:maxChoices]
	}

	selected, result, err := e.prompt(ctx, params, remaining)
	if err != nil || result.Outcome != "" {
		return result, err
	}
	return e.resolved(params.Candidates, remaining[selected].Entity), nil
}

// prompt runs one bounded prompt round trip. A non-empty result outcome means
// the prompt terminated without a selection.
func (e *Engine) prompt(ctx context.Context, params ResolveParams, choices []domain.Scored) (int, domain.Result, error) {
	if e.Prompter == nil {
		return 0, domain.Result{}, apperrors.New(apperrors.CodePromptUnavailable,
			"no prompter is configured")
	}

	labels := make([]string, len(choices))
	for i, choice := range choices {
		if params.Label != nil {
			labels[i] = params.Label(choice.Entity)
		} else {
			labels[i] = choice.Entity.Name
		}
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultPromptTimeout
	}
	promptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := e.Prompter.Prompt(promptCtx, PromptRequest{
		UserID:  params.UserID,
		Channel: params.Channel,
		Query:   params.Query,
		Labels:  labels,
	})
	if err != nil {
		// The prompt deadline elapsing means the user never answered,
		// which callers treat like an explicit decline. The enclosing
		// request being cancelled is the caller's problem and
		// propagates.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return 0, domain.Result{Outcome: domain.OutcomeCancelled}, nil
		}
		if ctx.Err() != nil {
			return 0, domain.Result{}, ctx.Err()
		}
		return 0, domain.Result{}, apperrors.Wrap(apperrors.CodePromptUnavailable,
			"prompt user for selection", err)
	}
	if reply.Declined {
		return 0, domain.Result{Outcome: domain.OutcomeCancelled}, nil
	}
	if reply.Selected < 0 || reply.Selected >= len(choices) {
		return 0, domain.Result{}, apperrors.WithMetadata(apperrors.CodePromptChoiceInvalid,
			"selected choice is out of range",
			map[string]string{"Selected": fmt.Sprintf("%d", reply.Selected)})
	}
	return reply.Selected, domain.Result{}, nil
}

func (e *Engine) resolved(set domain.CandidateSet, entity domain.Entity) domain.Result {
	return domain.Result{
		Outcome:    domain.OutcomeResolved,
		Entity:     &entity,
		Provenance: set.Provenance(entity),
	}
}

// ResolveExact is the non-interactive entry point: it returns the single
// exact match when one exists and is unambiguous, and a no-match result
// otherwise. It never prompts.
func (e *Engine) ResolveExact(params ResolveParams) domain.Result {
	var match *domain.Entity
	for _, candidate := range params.Candidates.Entities {
		if params.Predicate != nil && !params.Predicate(candidate) {
			continue
		}
		exact, _ := domain.Score(params.Query, candidate.Name)
		if !exact {
			continue
		}
		if match != nil {
			return domain.Result{Outcome: domain.OutcomeNoMatch}
		}
		entity := candidate
		match = &entity
	}
	if match == nil {
		return domain.Result{Outcome: domain.OutcomeNoMatch}
	}
	return domain.Result{
		Outcome:    domain.OutcomeResolved,
		Entity:     match,
		Provenance: params.Candidates.Provenance(*match),
	}
}
