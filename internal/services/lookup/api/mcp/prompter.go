package mcp

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/grimoire.space/internal/services/lookup/app"
)

// elicitPrompter bridges the engine's prompt contract onto MCP elicitation.
// The choice list is presented as a string enum so any conforming client can
// render it.
type elicitPrompter struct {
	session        *mcp.ServerSession
	promptTemplate string
}

func (p *elicitPrompter) Prompt(ctx context.Context, req app.PromptRequest) (app.PromptReply, error) {
	if p.session == nil {
		return app.PromptReply{}, fmt.Errorf("no session for elicitation")
	}

	options := choiceOptions(req.Labels)
	enum := make([]any, len(options))
	for i, option := range options {
		enum[i] = option
	}

	result, err := p.session.Elicit(ctx, &mcp.ElicitParams{
		Message: p.promptMessage(req.Query),
		RequestedSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"choice": {Type: "string", Enum: enum},
			},
			Required: []string{"choice"},
		},
	})
	if err != nil {
		return app.PromptReply{}, err
	}
	if result.Action != "accept" {
		return app.PromptReply{Declined: true}, nil
	}

	choice, ok := result.Content["choice"].(string)
	if !ok {
		return app.PromptReply{}, fmt.Errorf("elicitation returned no choice")
	}
	return app.PromptReply{Selected: choiceIndex(options, choice)}, nil
}

// choiceOptions numbers each label with its one-based position. Labels are
// not unique, two same-name candidates from different collections carry the
// same decorated text, so the enum values must encode the position.
func choiceOptions(labels []string) []string {
	options := make([]string, len(labels))
	for i, label := range labels {
		options[i] = fmt.Sprintf("%d. %s", i+1, label)
	}
	return options
}

// choiceIndex maps the accepted enum value back to its candidate index.
// Returns -1 for anything outside the offered options.
func choiceIndex(options []string, choice string) int {
	for i, option := range options {
		if option == choice {
			return i
		}
	}
	return -1
}

func (p *elicitPrompter) promptMessage(query string) string {
	tmpl, err := template.New("prompt").Parse(p.promptTemplate)
	if err != nil {
		return p.promptTemplate
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{"Query": query}); err != nil {
		return p.promptTemplate
	}
	return buf.String()
}
