package arrange

// Insertion and removal tools: plan_add_to_end, plan_push_to_start,
// plan_insert_at, plan_delete_segment. Every insertion creates the
// back-reference on the child.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/plan"
)

// --- plan_add_to_end ---

type addChildParams struct {
	ID             string `json:"id"`
	ChildID        string `json:"child_id"`
	RelationshipID string `json:"relationship_id,omitempty"`
}

var addChildSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"},
    "child_id": {"type": "string", "description": "ID of the child template to insert"},
    "relationship_id": {"type": "string", "description": "Optional; generated when omitted"}
  },
  "required": ["id", "child_id"]
}`)

type AddToEnd struct {
	engine *engine.Engine
}

func NewAddToEnd(e *engine.Engine) *AddToEnd { return &AddToEnd{engine: e} }

func (t *AddToEnd) Name() string { return "plan_add_to_end" }
func (t *AddToEnd) Description() string {
	return "Append a child after the latest trailing edge of the container's existing segments (at the origin for an empty container). The child must satisfy the duration ratio rule."
}
func (t *AddToEnd) InputSchema() json.RawMessage { return addChildSchema }

func (t *AddToEnd) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p addChildParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.ChildID == "" {
		return mcp.ErrorResult("id and child_id are required"), nil
	}
	return containerResult(t.engine.AddToEnd(
		plan.TemplateID(p.ID), plan.TemplateID(p.ChildID), plan.RelationshipID(p.RelationshipID)))
}

// --- plan_push_to_start ---

type PushToStart struct {
	engine *engine.Engine
}

func NewPushToStart(e *engine.Engine) *PushToStart { return &PushToStart{engine: e} }

func (t *PushToStart) Name() string { return "plan_push_to_start" }
func (t *PushToStart) Description() string {
	return "Insert a child at the container origin and shift every existing segment right by the child's duration."
}
func (t *PushToStart) InputSchema() json.RawMessage { return addChildSchema }

func (t *PushToStart) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p addChildParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.ChildID == "" {
		return mcp.ErrorResult("id and child_id are required"), nil
	}
	return containerResult(t.engine.PushToStart(
		plan.TemplateID(p.ID), plan.TemplateID(p.ChildID), plan.RelationshipID(p.RelationshipID)))
}

// --- plan_insert_at ---

type insertAtParams struct {
	ID             string `json:"id"`
	ChildID        string `json:"child_id"`
	Offset         int64  `json:"offset_ms"`
	RelationshipID string `json:"relationship_id,omitempty"`
}

type InsertAt struct {
	engine *engine.Engine
}

func NewInsertAt(e *engine.Engine) *InsertAt { return &InsertAt{engine: e} }

func (t *InsertAt) Name() string { return "plan_insert_at" }
func (t *InsertAt) Description() string {
	return "Insert a child at the given offset; every segment currently starting at or after that offset shifts right by the child's duration."
}
func (t *InsertAt) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"},
    "child_id": {"type": "string", "description": "ID of the child template to insert"},
    "offset_ms": {"type": "integer", "description": "Offset from the container origin"},
    "relationship_id": {"type": "string", "description": "Optional; generated when omitted"}
  },
  "required": ["id", "child_id", "offset_ms"]
}`)
}

func (t *InsertAt) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p insertAtParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.ChildID == "" {
		return mcp.ErrorResult("id and child_id are required"), nil
	}
	return containerResult(t.engine.InsertAt(
		plan.TemplateID(p.ID), plan.TemplateID(p.ChildID),
		plan.Duration(p.Offset), plan.RelationshipID(p.RelationshipID)))
}

// --- plan_delete_segment ---

type deleteSegmentParams struct {
	ID             string `json:"id"`
	RelationshipID string `json:"relationship_id"`
}

type DeleteSegment struct {
	engine *engine.Engine
}

func NewDeleteSegment(e *engine.Engine) *DeleteSegment { return &DeleteSegment{engine: e} }

func (t *DeleteSegment) Name() string { return "plan_delete_segment" }
func (t *DeleteSegment) Description() string {
	return "Remove the segment with the given relationship ID from a container, along with the matching back-reference on the child."
}
func (t *DeleteSegment) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "ID of the container"},
    "relationship_id": {"type": "string", "description": "Relationship ID of the segment to remove"}
  },
  "required": ["id", "relationship_id"]
}`)
}

func (t *DeleteSegment) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deleteSegmentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.RelationshipID == "" {
		return mcp.ErrorResult("id and relationship_id are required"), nil
	}
	return containerResult(t.engine.DeleteSegment(
		plan.TemplateID(p.ID), plan.RelationshipID(p.RelationshipID)))
}
