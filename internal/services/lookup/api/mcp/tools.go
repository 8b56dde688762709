package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
	errcatalog "github.com/louisbranch/grimoire.space/internal/platform/errors/i18n"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/app"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
)

// lookupInput is the shared input shape for the per-kind lookup tools.
type lookupInput struct {
	Name       string   `json:"name" jsonschema:"entity name to resolve"`
	UserID     string   `json:"user_id" jsonschema:"requesting user identifier"`
	CampaignID string   `json:"campaign_id,omitempty" jsonschema:"originating campaign identifier"`
	SRDOnly    bool     `json:"srd_only,omitempty" jsonschema:"restrict candidates to the SRD subset"`
	Filter     string   `json:"filter,omitempty" jsonschema:"optional AIP-160 filter over name, kind, source, and srd"`
	Cutoff     *float64 `json:"cutoff,omitempty" jsonschema:"minimum similarity for fuzzy candidates, between 0 and 1"`
	ExactOnly  bool     `json:"exact_only,omitempty" jsonschema:"resolve only on a single unambiguous exact match, never prompting"`
	Locale     string   `json:"locale,omitempty" jsonschema:"BCP 47 locale for informational messages"`
}

// lookupResult is the shared output shape for the per-kind lookup tools.
type lookupResult struct {
	Outcome    string `json:"outcome" jsonschema:"resolved, no_match, or cancelled"`
	Name       string `json:"name,omitempty" jsonschema:"resolved entity name"`
	Kind       string `json:"kind,omitempty" jsonschema:"resolved entity kind"`
	Source     string `json:"source,omitempty" jsonschema:"sourcebook tag or homebrew"`
	SRD        bool   `json:"srd,omitempty" jsonschema:"whether the entity is in the SRD subset"`
	Provenance string `json:"provenance,omitempty" jsonschema:"layer the entity came from: compendium, personal, or campaign"`
	Summary    string `json:"summary,omitempty" jsonschema:"short entity description"`
	Note       string `json:"note,omitempty" jsonschema:"informational message about the result"`
}

func monsterLookupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "monster_lookup",
		Description: "Resolves a free-text monster name against the compendium and active homebrew collections, prompting on ambiguity.",
	}
}

func spellLookupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "spell_lookup",
		Description: "Resolves a free-text spell name against the compendium and active homebrew collections, prompting on ambiguity.",
	}
}

func registerLookupTools(server *Server) {
	mcp.AddTool(server.mcpServer, monsterLookupTool(), lookupHandler(server, domain.KindMonster))
	mcp.AddTool(server.mcpServer, spellLookupTool(), lookupHandler(server, domain.KindSpell))
}

func lookupHandler(server *Server, kind domain.Kind) mcp.ToolHandlerFor[lookupInput, lookupResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input lookupInput) (*mcp.CallToolResult, lookupResult, error) {
		resolver := server.resolver(req.Session, input.Locale)
		request := app.Request{
			Query:      input.Name,
			UserID:     input.UserID,
			CampaignID: input.CampaignID,
			SRDOnly:    input.SRDOnly,
			Filter:     input.Filter,
			Cutoff:     input.Cutoff,
		}

		var (
			result domain.Result
			err    error
		)
		if input.ExactOnly {
			result, err = resolver.ResolveExact(ctx, kind, request)
		} else {
			result, err = resolver.Resolve(ctx, kind, request)
		}
		if err != nil {
			return nil, lookupResult{}, localizedError(err, input.Locale)
		}

		return nil, server.toLookupResult(result, input.Locale), nil
	}
}

// localizedError decorates domain errors with a translated user-facing
// message before they cross the tool boundary. Non-domain errors pass
// through untouched.
func localizedError(err error, locale string) error {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return err
	}
	catalog := errcatalog.GetCatalog(locale)
	message := catalog.Format(string(domainErr.Code), domainErr.Metadata)
	return domainErr.ToGRPCStatus(catalog.Locale(), message)
}

func (s *Server) toLookupResult(result domain.Result, locale string) lookupResult {
	messages := s.messages(locale)

	out := lookupResult{Outcome: string(result.Outcome)}
	switch result.Outcome {
	case domain.OutcomeResolved:
		out.Name = result.Entity.Name
		out.Kind = string(result.Entity.Kind)
		out.Source = result.Entity.Source
		out.SRD = result.Entity.SRD
		out.Provenance = string(result.Provenance)
		out.Summary = result.Entity.Summary
	case domain.OutcomeNoMatch:
		out.Note = messages["lookup.no_match"]
	case domain.OutcomeCancelled:
		out.Note = messages["lookup.cancelled"]
	}
	if result.SRDOnly {
		note := messages["lookup.srd_only"]
		if out.Note != "" {
			note = out.Note + " " + note
		}
		out.Note = note
	}
	return out
}
