package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/plan"
)

func openTestDB(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteInsertGet(t *testing.T) {
	s, _ := openTestDB(t)

	tpl := &plan.Template{
		ID:          "a",
		Kind:        plan.KindAtomic,
		Intent:      "mix batter",
		Duration:    400,
		WillConsume: plan.Ledger{"flour_grams": 500},
		WillProduce: plan.Ledger{"batter_grams": 500},
	}
	require.NoError(t, s.Insert(tpl))
	require.ErrorIs(t, s.Insert(tpl), ErrDuplicateID)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, tpl.Intent, got.Intent)
	assert.Equal(t, 500.0, got.WillConsume["flour_grams"])
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("missing"))
}

func TestSQLiteReplace(t *testing.T) {
	s, _ := openTestDB(t)
	require.ErrorIs(t, s.Replace(atomic("a", 100)), ErrNotFound)

	require.NoError(t, s.Insert(atomic("a", 100)))
	require.NoError(t, s.Replace(atomic("a", 300)))
	got, _ := s.Get("a")
	assert.Equal(t, plan.Duration(300), got.Duration)
}

func TestSQLiteCommitAndSnapshot(t *testing.T) {
	s, _ := openTestDB(t)
	require.NoError(t, s.Insert(atomic("a", 100)))

	require.NoError(t, s.Commit(map[plan.TemplateID]*plan.Template{
		"a": atomic("a", 300),
		"b": atomic("b", 400),
	}))

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, plan.Duration(300), snap.Get("a").Duration)
	assert.Equal(t, plan.Duration(400), snap.Get("b").Duration)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	s, path := openTestDB(t)
	require.NoError(t, s.Insert(atomic("a", 100)))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("a")
	require.True(t, ok)
	assert.Equal(t, plan.Duration(100), got.Duration)
}

func TestSQLiteDelete(t *testing.T) {
	s, _ := openTestDB(t)
	require.NoError(t, s.Insert(atomic("a", 100)))
	require.NoError(t, s.Delete("a"))
	assert.False(t, s.Contains("a"))
	require.NoError(t, s.Delete("a"))
}
