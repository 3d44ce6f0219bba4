// Package arrange implements the layout-algebra tools: plan_layout,
// plan_pack, plan_equally_distribute, plan_distribute_by_interval,
// plan_fit_to_last, plan_insert_gap, plan_add_to_end, plan_push_to_start,
// plan_insert_at, plan_delete_segment.
package arrange

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/layout"
	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/plan"
)

// diagResult renders a diagnostic list as an error tool result.
func diagResult(diags plan.Diagnostics) (*mcp.ToolsCallResult, error) {
	b, err := json.MarshalIndent(diags, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling diagnostics: %w", err)
	}
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{mcp.TextContent(string(b))},
		IsError: true,
	}, nil
}

// containerResult wraps the standard (template, diags, err) triple every
// layout operation returns.
func containerResult(updated *plan.Template, diags plan.Diagnostics, err error) (*mcp.ToolsCallResult, error) {
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(updated)
}

// --- plan_layout ---

type applyLayoutParams struct {
	ID           string `json:"id"`
	Distribution string `json:"distribution"`
	Gap          int64  `json:"gap_ms,omitempty"`
}

type ApplyLayout struct {
	engine *engine.Engine
}

func NewApplyLayout(e *engine.Engine) *ApplyLayout { return &ApplyLayout{engine: e} }

func (t *ApplyLayout) Name() string { return "plan_layout" }
func (t *ApplyLayout) Description() string {
	return "Arrange a container's segments under a distribution: start, end, center (packed with the given gap and aligned), space-between (first at origin, last at the end, equal interior gaps), space-around, or space-evenly. Segment order is preserved; only offsets change."
}
func (t *ApplyLayout) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"},
    "distribution": {"type": "string", "enum": ["start", "end", "center", "space-between", "space-around", "space-evenly"]},
    "gap_ms": {"type": "integer", "description": "Gap between segments for start/end/center (default 0)"}
  },
  "required": ["id", "distribution"]
}`)
}

func (t *ApplyLayout) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p applyLayoutParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	dist, ok := layout.ParseDistribution(p.Distribution)
	if !ok {
		return mcp.ErrorResult(fmt.Sprintf("unknown distribution %q", p.Distribution)), nil
	}

	return containerResult(t.engine.ApplyLayout(plan.TemplateID(p.ID), dist, plan.Duration(p.Gap)))
}

// --- plan_pack ---

type containerOnlyParams struct {
	ID string `json:"id"`
}

var containerOnlySchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"}
  },
  "required": ["id"]
}`)

type Pack struct {
	engine *engine.Engine
}

func NewPack(e *engine.Engine) *Pack { return &Pack{engine: e} }

func (t *Pack) Name() string { return "plan_pack" }
func (t *Pack) Description() string {
	return "Pack a container's segments back to back from the origin with no gaps. Never resizes the container."
}
func (t *Pack) InputSchema() json.RawMessage { return containerOnlySchema }

func (t *Pack) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p containerOnlyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	return containerResult(t.engine.Pack(plan.TemplateID(p.ID)))
}

// --- plan_equally_distribute ---

type EquallyDistribute struct {
	engine *engine.Engine
}

func NewEquallyDistribute(e *engine.Engine) *EquallyDistribute {
	return &EquallyDistribute{engine: e}
}

func (t *EquallyDistribute) Name() string { return "plan_equally_distribute" }
func (t *EquallyDistribute) Description() string {
	return "Spread a container's segments so the first starts at the origin, the last ends at the container duration, and the interior gaps are equal."
}
func (t *EquallyDistribute) InputSchema() json.RawMessage { return containerOnlySchema }

func (t *EquallyDistribute) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p containerOnlyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	return containerResult(t.engine.EquallyDistribute(plan.TemplateID(p.ID)))
}

// --- plan_distribute_by_interval ---

type distributeByIntervalParams struct {
	ID       string `json:"id"`
	Interval int64  `json:"interval_ms"`
}

type DistributeByInterval struct {
	engine *engine.Engine
}

func NewDistributeByInterval(e *engine.Engine) *DistributeByInterval {
	return &DistributeByInterval{engine: e}
}

func (t *DistributeByInterval) Name() string { return "plan_distribute_by_interval" }
func (t *DistributeByInterval) Description() string {
	return "Lay a container's segments out back to back with a fixed interval between them, starting at the origin. Never resizes the container."
}
func (t *DistributeByInterval) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"},
    "interval_ms": {"type": "integer", "description": "Interval between segments in milliseconds"}
  },
  "required": ["id", "interval_ms"]
}`)
}

func (t *DistributeByInterval) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p distributeByIntervalParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	return containerResult(t.engine.DistributeByInterval(plan.TemplateID(p.ID), plan.Duration(p.Interval)))
}

// --- plan_fit_to_last ---

type FitToLast struct {
	engine *engine.Engine
}

func NewFitToLast(e *engine.Engine) *FitToLast { return &FitToLast{engine: e} }

func (t *FitToLast) Name() string { return "plan_fit_to_last" }
func (t *FitToLast) Description() string {
	return "Resize a container to the latest trailing edge of its segments. The ratio rule is re-checked against every direct child and every parent; resize the children first if a child would equal the new duration."
}
func (t *FitToLast) InputSchema() json.RawMessage { return containerOnlySchema }

func (t *FitToLast) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p containerOnlyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	return containerResult(t.engine.FitToLast(plan.TemplateID(p.ID)))
}

// --- plan_insert_gap ---

type insertGapParams struct {
	ID          string `json:"id"`
	BeforeIndex int    `json:"before_index"`
	Gap         int64  `json:"gap_ms"`
}

type InsertGap struct {
	engine *engine.Engine
}

func NewInsertGap(e *engine.Engine) *InsertGap { return &InsertGap{engine: e} }

func (t *InsertGap) Name() string { return "plan_insert_gap" }
func (t *InsertGap) Description() string {
	return "Shift the segment at before_index and every later segment right by gap_ms. Never resizes the container."
}
func (t *InsertGap) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"},
    "before_index": {"type": "integer", "description": "Index of the first segment to shift"},
    "gap_ms": {"type": "integer", "description": "Gap to insert in milliseconds"}
  },
  "required": ["id", "before_index", "gap_ms"]
}`)
}

func (t *InsertGap) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p insertGapParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	return containerResult(t.engine.InsertGap(plan.TemplateID(p.ID), p.BeforeIndex, plan.Duration(p.Gap)))
}
