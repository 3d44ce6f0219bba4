package arrange

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

func seededEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(store.NewMemory())

	_, diags, err := e.CreateAtomic(engine.CreateAtomicParams{ID: "A", Intent: "first", Duration: 200})
	require.NoError(t, err)
	require.True(t, diags.OK())
	_, diags, err = e.CreateAtomic(engine.CreateAtomicParams{ID: "B", Intent: "second", Duration: 200})
	require.NoError(t, err)
	require.True(t, diags.OK())

	_, diags, err = e.CreateContainer(engine.CreateContainerParams{
		ID: "P", Intent: "plan", Duration: 1000,
		Segments: []engine.SegmentSpec{
			{TemplateID: "A", RelationshipID: "r1", Offset: 100},
			{TemplateID: "B", RelationshipID: "r2", Offset: 500},
		},
	})
	require.NoError(t, err)
	require.True(t, diags.OK())
	return e
}

func TestPackToolExecute(t *testing.T) {
	e := seededEngine(t)
	tool := NewPack(e)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"id":"P"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var updated plan.Template
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &updated))
	assert.Equal(t, plan.Duration(0), updated.Segments[0].Offset)
	assert.Equal(t, plan.Duration(200), updated.Segments[1].Offset)
}

func TestApplyLayoutToolRejectsUnknownDistribution(t *testing.T) {
	e := seededEngine(t)
	tool := NewApplyLayout(e)

	res, err := tool.Execute(context.Background(),
		json.RawMessage(`{"id":"P","distribution":"diagonal"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestApplyLayoutToolSpaceBetween(t *testing.T) {
	e := seededEngine(t)
	tool := NewApplyLayout(e)

	res, err := tool.Execute(context.Background(),
		json.RawMessage(`{"id":"P","distribution":"space-between"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var updated plan.Template
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &updated))
	assert.Equal(t, plan.Duration(0), updated.Segments[0].Offset)
	assert.Equal(t, plan.Duration(800), updated.Segments[1].Offset)
}

func TestAddToEndToolReportsDiagnostics(t *testing.T) {
	e := seededEngine(t)
	tool := NewAddToEnd(e)

	res, err := tool.Execute(context.Background(),
		json.RawMessage(`{"id":"P","child_id":"ghost"}`))
	require.NoError(t, err)
	require.True(t, res.IsError)

	var diags plan.Diagnostics
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &diags))
	assert.True(t, diags.Has(plan.DiagNotFound))
}

func TestDeleteSegmentToolMissingArgs(t *testing.T) {
	e := seededEngine(t)
	tool := NewDeleteSegment(e)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"id":"P"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
