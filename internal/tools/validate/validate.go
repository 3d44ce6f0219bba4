// Package validate implements the read-side analysis tools: plan_validate and
// plan_validate_all.
package validate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/plan"
)

// --- plan_validate ---

type validateParams struct {
	ID string `json:"id"`
}

type Validate struct {
	engine *engine.Engine
}

func NewValidate(e *engine.Engine) *Validate { return &Validate{engine: e} }

func (t *Validate) Name() string { return "plan_validate" }
func (t *Validate) Description() string {
	return "Flatten a container into its chronological schedule and run it through the resource ledger. Returns the container's contract (inputs it needs up front, outputs it leaves behind), the first and last atomic steps, and every diagnostic: overlaps, unsatisfied consumption, orphaned production, missing templates, link and ratio violations."
}
func (t *Validate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container to validate"}
  },
  "required": ["id"]
}`)
}

func (t *Validate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p validateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	res, diags := t.engine.ValidateContainer(plan.TemplateID(p.ID))
	if !diags.OK() {
		b, err := json.MarshalIndent(diags, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling diagnostics: %w", err)
		}
		return &mcp.ToolsCallResult{
			Content: []mcp.ContentBlock{mcp.TextContent(string(b))},
			IsError: true,
		}, nil
	}
	return mcp.JSONResult(res)
}

// --- plan_validate_all ---

type ValidateAll struct {
	engine *engine.Engine
}

func NewValidateAll(e *engine.Engine) *ValidateAll { return &ValidateAll{engine: e} }

func (t *ValidateAll) Name() string { return "plan_validate_all" }
func (t *ValidateAll) Description() string {
	return "Validate every container in the library against one snapshot and return a per-container summary plus aggregate counts."
}
func (t *ValidateAll) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *ValidateAll) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(t.engine.ValidateAll())
}
