package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

func container(id plan.TemplateID, dur plan.Duration) *plan.Template {
	return &plan.Template{ID: id, Kind: plan.KindContainer, Duration: dur}
}

func atomic(id plan.TemplateID, dur plan.Duration) *plan.Template {
	return &plan.Template{ID: id, Kind: plan.KindAtomic, Duration: dur}
}

func TestAddSegmentTwiceSameChild(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 400)

	require.Nil(t, AddSegment(p, a, "r1", 0))
	require.Nil(t, AddSegment(p, a, "r2", 500))

	// Two independent placements, two back-references.
	require.Len(t, p.Segments, 2)
	require.Equal(t, []plan.ParentRef{
		{ParentID: "P", RelationshipID: "r1"},
		{ParentID: "P", RelationshipID: "r2"},
	}, a.Refs)
}

func TestAddSegmentRejectsRelationshipCollision(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 400)
	b := atomic("B", 400)

	require.Nil(t, AddSegment(p, a, "r1", 0))
	d := AddSegment(p, b, "r1", 500)
	require.NotNil(t, d)
	assert.Equal(t, plan.DiagLinkIntegrity, d.Kind)
	assert.Len(t, p.Segments, 1)
	assert.Empty(t, b.Refs)
}

func TestAddSegmentRejectsAtomicParent(t *testing.T) {
	a := atomic("A", 400)
	b := atomic("B", 400)
	d := AddSegment(a, b, "r1", 0)
	require.NotNil(t, d)
	assert.Equal(t, plan.DiagWrongKind, d.Kind)
}

func TestRemoveSegmentLeavesOtherPlacement(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 400)
	require.Nil(t, AddSegment(p, a, "r1", 0))
	require.Nil(t, AddSegment(p, a, "r2", 500))

	warning, diag := RemoveSegment(p, a, "r1")
	require.Nil(t, diag)
	require.Nil(t, warning)

	require.Len(t, p.Segments, 1)
	require.Equal(t, plan.RelationshipID("r2"), p.Segments[0].RelationshipID)
	require.Equal(t, []plan.ParentRef{{ParentID: "P", RelationshipID: "r2"}}, a.Refs)
}

func TestRemoveSegmentMissingSegment(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 400)
	_, diag := RemoveSegment(p, a, "nope")
	require.NotNil(t, diag)
	assert.Equal(t, plan.DiagLinkIntegrity, diag.Kind)
}

func TestRemoveSegmentMissingBackRefWarns(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 400)
	// Segment exists but the child never got its back-reference.
	p.Segments = append(p.Segments, plan.Segment{TemplateID: "A", RelationshipID: "r1", Offset: 0})

	warning, diag := RemoveSegment(p, a, "r1")
	require.Nil(t, diag)
	require.NotNil(t, warning)
	assert.Equal(t, plan.DiagLinkIntegrity, warning.Kind)
	assert.Empty(t, p.Segments)
}

func TestInsertSegmentAtPosition(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 100)
	b := atomic("B", 100)
	c := atomic("C", 100)

	require.Nil(t, AddSegment(p, a, "ra", 0))
	require.Nil(t, AddSegment(p, b, "rb", 200))
	require.Nil(t, InsertSegmentAt(p, c, "rc", 100, 1))

	require.Equal(t, plan.RelationshipID("ra"), p.Segments[0].RelationshipID)
	require.Equal(t, plan.RelationshipID("rc"), p.Segments[1].RelationshipID)
	require.Equal(t, plan.RelationshipID("rb"), p.Segments[2].RelationshipID)
	require.True(t, c.HasRef("P", "rc"))
}

func TestCheckContainer(t *testing.T) {
	p := container("P", 1000)
	a := atomic("A", 400)
	require.Nil(t, AddSegment(p, a, "r1", 0))

	snap := store.Snapshot{"P": p, "A": a}
	assert.Empty(t, CheckContainer(snap, p))

	// Strip the back-reference: asymmetry.
	a.Refs = nil
	diags := CheckContainer(snap, p)
	require.Len(t, diags, 1)
	assert.Equal(t, plan.DiagLinkIntegrity, diags[0].Kind)

	// Missing child template.
	delete(snap, "A")
	diags = CheckContainer(snap, p)
	require.Len(t, diags, 1)
	assert.Equal(t, plan.DiagMissingTemplate, diags[0].Kind)
}
