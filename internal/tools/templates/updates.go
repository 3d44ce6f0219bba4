package templates

// Update and delete tools: plan_update_duration, plan_update_intent,
// plan_update_consume, plan_update_produce, plan_delete_template.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/plan"
)

// --- plan_update_duration ---

type updateDurationParams struct {
	ID       string `json:"id"`
	Duration int64  `json:"duration_ms"`
}

type UpdateDuration struct {
	engine *engine.Engine
}

func NewUpdateDuration(e *engine.Engine) *UpdateDuration { return &UpdateDuration{engine: e} }

func (t *UpdateDuration) Name() string { return "plan_update_duration" }
func (t *UpdateDuration) Description() string {
	return "Change a template's estimated duration. The duration ratio rule is re-checked downward over the template's children and upward over every parent chain; the update aborts if any pair would violate it."
}
func (t *UpdateDuration) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "duration_ms": {"type": "integer", "description": "New duration in milliseconds (must be positive)"}
  },
  "required": ["id", "duration_ms"]
}`)
}

func (t *UpdateDuration) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateDurationParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	updated, diags, err := t.engine.UpdateDuration(plan.TemplateID(p.ID), plan.Duration(p.Duration))
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(updated)
}

// --- plan_update_intent ---

type updateIntentParams struct {
	ID     string `json:"id"`
	Intent string `json:"intent"`
}

type UpdateIntent struct {
	engine *engine.Engine
}

func NewUpdateIntent(e *engine.Engine) *UpdateIntent { return &UpdateIntent{engine: e} }

func (t *UpdateIntent) Name() string { return "plan_update_intent" }
func (t *UpdateIntent) Description() string {
	return "Change a template's intent text."
}
func (t *UpdateIntent) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "intent": {"type": "string"}
  },
  "required": ["id", "intent"]
}`)
}

func (t *UpdateIntent) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateIntentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.Intent == "" {
		return mcp.ErrorResult("id and intent are required"), nil
	}

	updated, diags, err := t.engine.UpdateIntent(plan.TemplateID(p.ID), p.Intent)
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(updated)
}

// --- plan_update_consume / plan_update_produce ---

type updateLedgerParams struct {
	ID     string             `json:"id"`
	Ledger map[string]float64 `json:"ledger"`
}

type UpdateLedger struct {
	engine  *engine.Engine
	consume bool
}

func NewUpdateConsume(e *engine.Engine) *UpdateLedger { return &UpdateLedger{engine: e, consume: true} }
func NewUpdateProduce(e *engine.Engine) *UpdateLedger { return &UpdateLedger{engine: e} }

func (t *UpdateLedger) Name() string {
	if t.consume {
		return "plan_update_consume"
	}
	return "plan_update_produce"
}

func (t *UpdateLedger) Description() string {
	side := "produce"
	if t.consume {
		side = "consume"
	}
	return fmt.Sprintf("Replace an atomic template's %s ledger. The vocabulary rule is re-checked: measurable substances must carry a unit token.", side)
}

func (t *UpdateLedger) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the atomic template"},
    "ledger": {"type": "object", "additionalProperties": {"type": "number"}}
  },
  "required": ["id", "ledger"]
}`)
}

func (t *UpdateLedger) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateLedgerParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	var (
		updated *plan.Template
		diags   plan.Diagnostics
		err     error
	)
	if t.consume {
		updated, diags, err = t.engine.UpdateConsume(plan.TemplateID(p.ID), plan.Ledger(p.Ledger))
	} else {
		updated, diags, err = t.engine.UpdateProduce(plan.TemplateID(p.ID), plan.Ledger(p.Ledger))
	}
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(updated)
}

// --- plan_delete_template ---

type deleteTemplateParams struct {
	ID string `json:"id"`
}

type DeleteTemplate struct {
	engine *engine.Engine
}

func NewDeleteTemplate(e *engine.Engine) *DeleteTemplate { return &DeleteTemplate{engine: e} }

func (t *DeleteTemplate) Name() string { return "plan_delete_template" }
func (t *DeleteTemplate) Description() string {
	return "Delete a template that no container references. Deleting a container removes the back-reference from each of its children first."
}
func (t *DeleteTemplate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"}
  },
  "required": ["id"]
}`)
}

func (t *DeleteTemplate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deleteTemplateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	diags, err := t.engine.DeleteTemplate(plan.TemplateID(p.ID))
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(map[string]any{
		"deleted": p.ID,
	})
}
