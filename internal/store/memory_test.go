package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/plan"
)

func atomic(id plan.TemplateID, dur plan.Duration) *plan.Template {
	return &plan.Template{ID: id, Kind: plan.KindAtomic, Intent: "step " + string(id), Duration: dur}
}

func TestMemoryInsertRejectsDuplicates(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Insert(atomic("a", 100)))
	require.ErrorIs(t, m.Insert(atomic("a", 200)), ErrDuplicateID)

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, plan.Duration(100), got.Duration)
}

func TestMemoryReplaceRequiresExisting(t *testing.T) {
	m := NewMemory()
	require.ErrorIs(t, m.Replace(atomic("a", 100)), ErrNotFound)

	require.NoError(t, m.Insert(atomic("a", 100)))
	require.NoError(t, m.Replace(atomic("a", 250)))
	got, _ := m.Get("a")
	assert.Equal(t, plan.Duration(250), got.Duration)
}

func TestMemoryGetClones(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Insert(atomic("a", 100)))

	got, _ := m.Get("a")
	got.Duration = 999
	again, _ := m.Get("a")
	assert.Equal(t, plan.Duration(100), again.Duration)
}

func TestMemorySnapshotIsolation(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Insert(atomic("a", 100)))

	snap := m.Snapshot()
	snap.Get("a").Duration = 999
	require.NoError(t, m.Insert(atomic("b", 100)))

	// Snapshot does not see later inserts, store does not see snapshot edits.
	assert.Nil(t, snap.Get("b"))
	got, _ := m.Get("a")
	assert.Equal(t, plan.Duration(100), got.Duration)
}

func TestMemoryCommitUpsertsBatch(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Insert(atomic("a", 100)))

	require.NoError(t, m.Commit(map[plan.TemplateID]*plan.Template{
		"a": atomic("a", 300),
		"b": atomic("b", 400),
	}))

	a, _ := m.Get("a")
	b, _ := m.Get("b")
	assert.Equal(t, plan.Duration(300), a.Duration)
	assert.Equal(t, plan.Duration(400), b.Duration)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Insert(atomic("a", 100)))
	require.NoError(t, m.Delete("a"))
	assert.False(t, m.Contains("a"))
	// Deleting a missing ID is a no-op.
	require.NoError(t, m.Delete("a"))
}
