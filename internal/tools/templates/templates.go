// Package templates implements the planmcp template tools: plan_create_atomic,
// plan_create_container, plan_get_template, plan_list_templates,
// plan_search_intent, plan_get_vocabulary.
package templates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/planmcp/internal/engine"
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

// --- plan_create_atomic ---

type createAtomicParams struct {
	ID          string             `json:"id,omitempty"`
	Intent      string             `json:"intent"`
	AuthorID    string             `json:"author_id,omitempty"`
	Version     int                `json:"version,omitempty"`
	Duration    int64              `json:"duration_ms"`
	WillConsume map[string]float64 `json:"will_consume,omitempty"`
	WillProduce map[string]float64 `json:"will_produce,omitempty"`
}

type CreateAtomic struct {
	engine *engine.Engine
}

func NewCreateAtomic(e *engine.Engine) *CreateAtomic { return &CreateAtomic{engine: e} }

func (t *CreateAtomic) Name() string { return "plan_create_atomic" }
func (t *CreateAtomic) Description() string {
	return "Create an atomic template: a step with a positive duration that consumes and produces named quantities of variables. Variable names for measurable substances must carry a unit token (e.g. flour_grams, not flour)."
}
func (t *CreateAtomic) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "Optional template ID; generated when omitted"},
    "intent": {"type": "string", "description": "What the step accomplishes"},
    "author_id": {"type": "string"},
    "version": {"type": "integer"},
    "duration_ms": {"type": "integer", "description": "Estimated duration in milliseconds (must be positive)"},
    "will_consume": {"type": "object", "additionalProperties": {"type": "number"}},
    "will_produce": {"type": "object", "additionalProperties": {"type": "number"}}
  },
  "required": ["intent", "duration_ms"]
}`)
}

func (t *CreateAtomic) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createAtomicParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.Intent == "" {
		return mcp.ErrorResult("intent is required"), nil
	}

	created, diags, err := t.engine.CreateAtomic(engine.CreateAtomicParams{
		ID:          plan.TemplateID(p.ID),
		Intent:      p.Intent,
		AuthorID:    p.AuthorID,
		Version:     p.Version,
		Duration:    plan.Duration(p.Duration),
		WillConsume: plan.Ledger(p.WillConsume),
		WillProduce: plan.Ledger(p.WillProduce),
	})
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(created)
}

// --- plan_create_container ---

type segmentSpec struct {
	TemplateID     string `json:"template_id"`
	RelationshipID string `json:"relationship_id,omitempty"`
	Offset         int64  `json:"offset_ms"`
}

type createContainerParams struct {
	ID       string        `json:"id,omitempty"`
	Intent   string        `json:"intent"`
	AuthorID string        `json:"author_id,omitempty"`
	Version  int           `json:"version,omitempty"`
	Duration int64         `json:"duration_ms"`
	Segments []segmentSpec `json:"segments,omitempty"`
}

type CreateContainer struct {
	engine *engine.Engine
}

func NewCreateContainer(e *engine.Engine) *CreateContainer { return &CreateContainer{engine: e} }

func (t *CreateContainer) Name() string { return "plan_create_container" }
func (t *CreateContainer) Description() string {
	return "Create a container template that arranges existing child templates along a relative time axis. Every child must already exist; each gets a back-reference to the new container. Child durations must lie in [container/10, container)."
}
func (t *CreateContainer) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "Optional template ID; generated when omitted"},
    "intent": {"type": "string"},
    "author_id": {"type": "string"},
    "version": {"type": "integer"},
    "duration_ms": {"type": "integer", "description": "Container duration in milliseconds (must be positive)"},
    "segments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "template_id": {"type": "string", "description": "ID of the child template"},
          "relationship_id": {"type": "string", "description": "Optional; generated when omitted"},
          "offset_ms": {"type": "integer", "description": "Offset from the container origin"}
        },
        "required": ["template_id", "offset_ms"]
      }
    }
  },
  "required": ["intent", "duration_ms"]
}`)
}

func (t *CreateContainer) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createContainerParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.Intent == "" {
		return mcp.ErrorResult("intent is required"), nil
	}

	specs := make([]engine.SegmentSpec, 0, len(p.Segments))
	for _, s := range p.Segments {
		specs = append(specs, engine.SegmentSpec{
			TemplateID:     plan.TemplateID(s.TemplateID),
			RelationshipID: plan.RelationshipID(s.RelationshipID),
			Offset:         plan.Duration(s.Offset),
		})
	}

	created, diags, err := t.engine.CreateContainer(engine.CreateContainerParams{
		ID:       plan.TemplateID(p.ID),
		Intent:   p.Intent,
		AuthorID: p.AuthorID,
		Version:  p.Version,
		Duration: plan.Duration(p.Duration),
		Segments: specs,
	})
	if err != nil {
		return nil, err
	}
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(created)
}

// --- plan_get_template ---

type getTemplateParams struct {
	ID string `json:"id"`
}

type GetTemplate struct {
	engine *engine.Engine
}

func NewGetTemplate(e *engine.Engine) *GetTemplate { return &GetTemplate{engine: e} }

func (t *GetTemplate) Name() string { return "plan_get_template" }
func (t *GetTemplate) Description() string {
	return "Get the full template for an ID, including segments, ledgers, and parent references."
}
func (t *GetTemplate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"}
  },
  "required": ["id"]
}`)
}

func (t *GetTemplate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getTemplateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	tpl, diags := t.engine.GetTemplate(plan.TemplateID(p.ID))
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(tpl)
}

// --- plan_list_templates ---

type listTemplatesParams struct {
	Kind string `json:"kind,omitempty"`
}

type ListTemplates struct {
	engine *engine.Engine
}

func NewListTemplates(e *engine.Engine) *ListTemplates { return &ListTemplates{engine: e} }

func (t *ListTemplates) Name() string { return "plan_list_templates" }
func (t *ListTemplates) Description() string {
	return "List metadata for every template, optionally filtered by kind (atomic or container)."
}
func (t *ListTemplates) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "kind": {"type": "string", "enum": ["atomic", "container"]}
  }
}`)
}

func (t *ListTemplates) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listTemplatesParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	metas, diags := t.engine.ListTemplates(plan.Kind(p.Kind))
	if !diags.OK() {
		return diagResult(diags)
	}
	return mcp.JSONResult(map[string]any{
		"templates": metas,
		"count":     len(metas),
	})
}

// --- plan_search_intent ---

type searchIntentParams struct {
	Query string `json:"query"`
}

type SearchIntent struct {
	engine *engine.Engine
}

func NewSearchIntent(e *engine.Engine) *SearchIntent { return &SearchIntent{engine: e} }

func (t *SearchIntent) Name() string { return "plan_search_intent" }
func (t *SearchIntent) Description() string {
	return "Find templates whose intent contains the query substring, case-insensitively."
}
func (t *SearchIntent) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string"}
  },
  "required": ["query"]
}`)
}

func (t *SearchIntent) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p searchIntentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.Query == "" {
		return mcp.ErrorResult("query is required"), nil
	}

	metas, _ := t.engine.SearchIntent(p.Query)
	return mcp.JSONResult(map[string]any{
		"templates": metas,
		"count":     len(metas),
	})
}

// --- plan_get_vocabulary ---

type GetVocabulary struct {
	engine *engine.Engine
}

func NewGetVocabulary(e *engine.Engine) *GetVocabulary { return &GetVocabulary{engine: e} }

func (t *GetVocabulary) Name() string { return "plan_get_vocabulary" }
func (t *GetVocabulary) Description() string {
	return "Get the sorted unique set of variable names used across every atomic template's ledgers."
}
func (t *GetVocabulary) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *GetVocabulary) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	names := t.engine.GetVocabulary()
	return mcp.JSONResult(map[string]any{
		"variables": names,
		"count":     len(names),
	})
}
