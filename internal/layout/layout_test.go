package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/plan"
)

// durs builds a Durations resolver from a fixed map.
func durs(m map[plan.TemplateID]plan.Duration) Durations {
	return func(id plan.TemplateID) (plan.Duration, bool) {
		d, ok := m[id]
		return d, ok
	}
}

func testContainer(dur plan.Duration, offsets ...plan.Duration) (*plan.Template, Durations) {
	c := &plan.Template{ID: "C", Kind: plan.KindContainer, Duration: dur}
	m := map[plan.TemplateID]plan.Duration{}
	for i, off := range offsets {
		id := plan.TemplateID(string(rune('A' + i)))
		c.Segments = append(c.Segments, plan.Segment{
			TemplateID:     id,
			RelationshipID: plan.RelationshipID(string(rune('a' + i))),
			Offset:         off,
		})
		m[id] = 100 * plan.Duration(i+1) // A=100, B=200, C=300, ...
	}
	return c, durs(m)
}

func offsets(c *plan.Template) []plan.Duration {
	out := make([]plan.Duration, len(c.Segments))
	for i, s := range c.Segments {
		out[i] = s.Offset
	}
	return out
}

func TestPack(t *testing.T) {
	c, d := testContainer(1000, 500, 50, 700)
	require.Nil(t, Pack(c, d))
	assert.Equal(t, []plan.Duration{0, 100, 300}, offsets(c))
}

func TestPackIsIdempotent(t *testing.T) {
	c, d := testContainer(1000, 500, 50, 700)
	require.Nil(t, Pack(c, d))
	before := c.Clone()
	require.Nil(t, Pack(c, d))
	if diff := cmp.Diff(before, c); diff != "" {
		t.Fatalf("pack not idempotent (-first +second):\n%s", diff)
	}
}

func TestApplyStartZeroEqualsPack(t *testing.T) {
	c1, d1 := testContainer(1000, 500, 50, 700)
	c2, d2 := testContainer(1000, 500, 50, 700)
	require.Nil(t, Pack(c1, d1))
	require.Nil(t, Apply(c2, d2, Start, 0))
	assert.Equal(t, offsets(c1), offsets(c2))
}

func TestApplyStartWithGap(t *testing.T) {
	c, d := testContainer(1000, 0, 0)
	require.Nil(t, Apply(c, d, Start, 50))
	// A=100 at 0, gap 50, B=200 at 150.
	assert.Equal(t, []plan.Duration{0, 150}, offsets(c))
}

func TestApplyEnd(t *testing.T) {
	c, d := testContainer(1000, 0, 0)
	require.Nil(t, Apply(c, d, End, 0))
	// Run is 300; aligned right: A at 700, B at 800.
	assert.Equal(t, []plan.Duration{700, 800}, offsets(c))
}

func TestApplyCenter(t *testing.T) {
	c, d := testContainer(1000, 0, 0)
	require.Nil(t, Apply(c, d, Center, 0))
	// Run is 300; lead (1000-300)/2 = 350.
	assert.Equal(t, []plan.Duration{350, 450}, offsets(c))
}

func TestApplySpaceBetween(t *testing.T) {
	c, d := testContainer(1000, 0, 0)
	require.Nil(t, Apply(c, d, SpaceBetween, 0))
	// First at origin, last (B=200) ends at 1000.
	assert.Equal(t, []plan.Duration{0, 800}, offsets(c))
}

func TestApplySpaceBetweenEqualsEquallyDistribute(t *testing.T) {
	c1, d1 := testContainer(1000, 500, 50, 700)
	c2, d2 := testContainer(1000, 500, 50, 700)
	require.Nil(t, Apply(c1, d1, SpaceBetween, 0))
	require.Nil(t, EquallyDistribute(c2, d2))
	assert.Equal(t, offsets(c1), offsets(c2))
}

func TestApplySpaceBetweenSingleSegment(t *testing.T) {
	c, d := testContainer(1000, 400)
	require.Nil(t, Apply(c, d, SpaceBetween, 0))
	assert.Equal(t, []plan.Duration{0}, offsets(c))
}

func TestApplySpaceEvenly(t *testing.T) {
	c, d := testContainer(900, 0, 0)
	require.Nil(t, Apply(c, d, SpaceEvenly, 0))
	// Free 600 over three equal gaps of 200: A at 200, B at 500, 200 trailing.
	assert.Equal(t, []plan.Duration{200, 500}, offsets(c))
}

func TestApplySpaceAround(t *testing.T) {
	c, d := testContainer(900, 0, 0)
	require.Nil(t, Apply(c, d, SpaceAround, 0))
	// Free 600 over weights 1,2,1: lead 150, interior 300, trail 150.
	assert.Equal(t, []plan.Duration{150, 550}, offsets(c))
}

func TestApplyFailsWhenRunExceedsDuration(t *testing.T) {
	c, d := testContainer(250, 0, 0) // segments total 300
	before := offsets(c)

	diag := Apply(c, d, Start, 0)
	require.NotNil(t, diag)
	assert.Equal(t, plan.DiagInvalidDuration, diag.Kind)
	// The container is untouched on failure.
	assert.Equal(t, before, offsets(c))

	require.NotNil(t, Apply(c, d, SpaceBetween, 0))
}

func TestApplyMissingChild(t *testing.T) {
	c, _ := testContainer(1000, 0, 0)
	diag := Apply(c, durs(nil), Start, 0)
	require.NotNil(t, diag)
	assert.Equal(t, plan.DiagMissingTemplate, diag.Kind)
}

func TestApplyEmptyContainerIsNoOp(t *testing.T) {
	c := &plan.Template{ID: "C", Kind: plan.KindContainer, Duration: 500}
	require.Nil(t, Apply(c, durs(nil), SpaceEvenly, 0))
}

func TestDistributeByInterval(t *testing.T) {
	c, d := testContainer(1000, 500, 50, 700)
	require.Nil(t, DistributeByInterval(c, d, 50))
	// A=100 at 0, B=200 at 150, C=300 at 400; ends at 700.
	assert.Equal(t, []plan.Duration{0, 150, 400}, offsets(c))
}

func TestDistributeByIntervalOverflow(t *testing.T) {
	c, d := testContainer(400, 0, 0)
	diag := DistributeByInterval(c, d, 500)
	require.NotNil(t, diag)
	assert.Equal(t, plan.DiagInvalidDuration, diag.Kind)
}

func TestFitToLast(t *testing.T) {
	c, d := testContainer(1000, 0, 150)
	// B=200 at 150 ends at 350.
	require.Nil(t, FitToLast(c, d))
	assert.Equal(t, plan.Duration(350), c.Duration)
}

func TestFitToLastIsIdempotent(t *testing.T) {
	c, d := testContainer(1000, 0, 150)
	require.Nil(t, FitToLast(c, d))
	first := c.Duration
	require.Nil(t, FitToLast(c, d))
	assert.Equal(t, first, c.Duration)
}

func TestFitToLastUsesLatestTrailingEdge(t *testing.T) {
	// First segment outlasts the second.
	c := &plan.Template{ID: "C", Kind: plan.KindContainer, Duration: 1000}
	c.Segments = []plan.Segment{
		{TemplateID: "long", RelationshipID: "r1", Offset: 0},
		{TemplateID: "short", RelationshipID: "r2", Offset: 300},
	}
	d := durs(map[plan.TemplateID]plan.Duration{"long": 800, "short": 100})
	require.Nil(t, FitToLast(c, d))
	assert.Equal(t, plan.Duration(800), c.Duration)
}

func TestFitToLastEmptyContainer(t *testing.T) {
	c := &plan.Template{ID: "C", Kind: plan.KindContainer, Duration: 500}
	diag := FitToLast(c, durs(nil))
	require.NotNil(t, diag)
	assert.Equal(t, plan.DiagEmptyContainer, diag.Kind)
}

func TestInsertGap(t *testing.T) {
	c, d := testContainer(1000, 0, 150, 400)
	require.Nil(t, InsertGap(c, d, 1, 100))
	assert.Equal(t, []plan.Duration{0, 250, 500}, offsets(c))
}

func TestInsertGapIndexOutOfRange(t *testing.T) {
	c, d := testContainer(1000, 0, 150)
	require.NotNil(t, InsertGap(c, d, 2, 100))
	require.NotNil(t, InsertGap(c, d, -1, 100))
}

func TestInsertGapOverflow(t *testing.T) {
	c, d := testContainer(700, 0, 150, 400) // C=300 at 400 ends at 700
	diag := InsertGap(c, d, 0, 100)
	require.NotNil(t, diag)
	assert.Equal(t, plan.DiagInvalidDuration, diag.Kind)
}

func TestAppendOffset(t *testing.T) {
	c, d := testContainer(1000, 0, 150)
	off, diag := AppendOffset(c, d)
	require.Nil(t, diag)
	assert.Equal(t, plan.Duration(350), off)

	empty := &plan.Template{ID: "E", Kind: plan.KindContainer, Duration: 500}
	off, diag = AppendOffset(empty, durs(nil))
	require.Nil(t, diag)
	assert.Equal(t, plan.Duration(0), off)
}

func TestShiftFromAndInsertPosition(t *testing.T) {
	c, _ := testContainer(1000, 0, 200, 600)
	assert.Equal(t, 1, InsertPosition(c, 100))
	assert.Equal(t, 1, InsertPosition(c, 200))
	assert.Equal(t, 3, InsertPosition(c, 700))

	ShiftFrom(c, 200, 50)
	assert.Equal(t, []plan.Duration{0, 250, 650}, offsets(c))
}
