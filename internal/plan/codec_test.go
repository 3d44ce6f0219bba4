package plan

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleTemplates() map[TemplateID]*Template {
	return map[TemplateID]*Template{
		"atom-1": {
			ID:       "atom-1",
			Kind:     KindAtomic,
			Intent:   "knead dough",
			AuthorID: "author-7",
			Version:  2,
			Duration: 400,
			Refs: []ParentRef{
				{ParentID: "cont-1", RelationshipID: "rel-1"},
			},
			WillConsume: Ledger{"flour_grams": 500, "water_ml": 250.5},
			WillProduce: Ledger{"dough_grams": 750},
		},
		"cont-1": {
			ID:       "cont-1",
			Kind:     KindContainer,
			Intent:   "bake bread",
			Version:  1,
			Duration: 1000,
			Segments: []Segment{
				{TemplateID: "atom-1", RelationshipID: "rel-1", Offset: 0},
			},
		},
	}
}

func TestLibraryRoundTrip(t *testing.T) {
	lib := NewLibrary(sampleTemplates())

	var buf bytes.Buffer
	require.NoError(t, lib.Encode(&buf))

	decoded, err := DecodeLibrary(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(lib, decoded); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNewLibrarySortsAndClones(t *testing.T) {
	templates := sampleTemplates()
	lib := NewLibrary(templates)

	require.Len(t, lib.Templates, 2)
	require.Equal(t, TemplateID("atom-1"), lib.Templates[0].ID)
	require.Equal(t, TemplateID("cont-1"), lib.Templates[1].ID)

	// Mutating the document must not touch the source map.
	lib.Templates[0].WillConsume["flour_grams"] = 999
	require.Equal(t, 500.0, templates["atom-1"].WillConsume["flour_grams"])
}

func TestCheckWireTemplate(t *testing.T) {
	cases := []struct {
		name    string
		tpl     *Template
		wantErr string
	}{
		{
			name:    "missing id",
			tpl:     &Template{Kind: KindAtomic, Duration: 100},
			wantErr: "missing id",
		},
		{
			name:    "unknown discriminator",
			tpl:     &Template{ID: "x", Kind: "blob", Duration: 100},
			wantErr: "unknown templateType",
		},
		{
			name: "atomic with segments",
			tpl: &Template{ID: "x", Kind: KindAtomic, Duration: 100,
				Segments: []Segment{{TemplateID: "y", RelationshipID: "r", Offset: 0}}},
			wantErr: "carries segments",
		},
		{
			name: "container with ledger",
			tpl: &Template{ID: "x", Kind: KindContainer, Duration: 100,
				WillProduce: Ledger{"bread_count": 1}},
			wantErr: "carries a ledger",
		},
		{
			name:    "negative duration",
			tpl:     &Template{ID: "x", Kind: KindAtomic, Duration: -1},
			wantErr: "negative duration",
		},
		{
			name: "negative quantity",
			tpl: &Template{ID: "x", Kind: KindAtomic, Duration: 100,
				WillConsume: Ledger{"water_ml": -3}},
			wantErr: "negative",
		},
		{
			name: "valid atomic",
			tpl: &Template{ID: "x", Kind: KindAtomic, Duration: 100,
				WillConsume: Ledger{"water_ml": 3}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckWireTemplate(tc.tpl)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestTemplateClone(t *testing.T) {
	orig := sampleTemplates()["atom-1"]
	clone := orig.Clone()

	clone.Refs[0].RelationshipID = "changed"
	clone.WillConsume["flour_grams"] = 1
	require.Equal(t, RelationshipID("rel-1"), orig.Refs[0].RelationshipID)
	require.Equal(t, 500.0, orig.WillConsume["flour_grams"])
}

func TestLedgerNames(t *testing.T) {
	l := Ledger{"z_units": 1, "a_count": 2, "m_grams": 3}
	require.Equal(t, []string{"a_count", "m_grams", "z_units"}, l.Names())
	require.True(t, Ledger{}.IsEmpty())
	require.Nil(t, Ledger(nil).Clone())
}

func TestDiagnosticsHelpers(t *testing.T) {
	ds := Diagnostics{
		NotFound("a"),
		DuplicateID("b"),
		NotFound("c"),
	}
	require.False(t, ds.OK())
	require.True(t, ds.Has(DiagNotFound))
	require.False(t, ds.Has(DiagOverlap))
	require.Len(t, ds.OfKind(DiagNotFound), 2)
	require.True(t, Diagnostics(nil).OK())
}
