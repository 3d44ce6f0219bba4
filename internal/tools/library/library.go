// Package library implements the document tools: plan_export and plan_import.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/plan"
)

// --- plan_export ---

type Export struct {
	engine *engine.Engine
}

func NewExport(e *engine.Engine) *Export { return &Export{engine: e} }

func (t *Export) Name() string { return "plan_export" }
func (t *Export) Description() string {
	return "Export the whole template collection as a library document: {version, templates}. The document round-trips through plan_import."
}
func (t *Export) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *Export) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(t.engine.Export())
}

// --- plan_import ---

type importParams struct {
	Document json.RawMessage `json:"document"`
}

type Import struct {
	engine *engine.Engine
}

func NewImport(e *engine.Engine) *Import { return &Import{engine: e} }

func (t *Import) Name() string { return "plan_import" }
func (t *Import) Description() string {
	return "Import a library document. Template IDs that already exist are rejected; nothing is imported unless every template is accepted."
}
func (t *Import) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "document": {"type": "object", "description": "A library document: {version, templates: [...]}"}
  },
  "required": ["document"]
}`)
}

func (t *Import) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p importParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if len(p.Document) == 0 {
		return mcp.ErrorResult("document is required"), nil
	}

	lib, err := plan.DecodeLibrary(strings.NewReader(string(p.Document)))
	if err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid library document: %v", err)), nil
	}

	count, diags, err := t.engine.Import(lib)
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		b, merr := json.MarshalIndent(diags, "", "  ")
		if merr != nil {
			return nil, fmt.Errorf("marshaling diagnostics: %w", merr)
		}
		return &mcp.ToolsCallResult{
			Content: []mcp.ContentBlock{mcp.TextContent(string(b))},
			IsError: true,
		}, nil
	}
	return mcp.JSONResult(map[string]any{
		"imported": count,
	})
}
