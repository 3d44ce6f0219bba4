package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/plan"
)

func TestCheckName(t *testing.T) {
	c := Default()

	cases := []struct {
		name string
		ok   bool
	}{
		// Substances without units are rejected.
		{"flour", false},
		{"water", false},
		{"chopped_wood", false},
		{"fabric-roll", false},

		// Substance plus unit token passes.
		{"flour_grams", true},
		{"water_ml", true},
		{"diced_chicken_lbs", true},
		{"fuel_liters", true},
		{"metal_kg", true},
		{"fabric_yards", true},

		// Countable suffixes pass trivially, even over a substance.
		{"bowls_count", true},
		{"egg_count", true},
		{"bread_servings", true},
		{"chicken_pieces", true},

		// Names without any substance are unconstrained.
		{"bowls", true},
		{"sharpened_knife", true},
		{"preheated_oven", true},

		// Case and delimiters are normalized.
		{"Flour_Grams", true},
		{"FLOUR", false},
		{"olive oil", false},
		{"olive oil tbsp", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := c.CheckName(tc.name)
			if tc.ok {
				assert.Nil(t, d, "expected %q to pass", tc.name)
			} else {
				require.NotNil(t, d, "expected %q to fail", tc.name)
				assert.Equal(t, plan.DiagBadVariableName, d.Kind)
				assert.Equal(t, tc.name, d.Variable)
			}
		})
	}
}

func TestCheckLedger(t *testing.T) {
	c := Default()

	diags := c.CheckLedger(plan.Ledger{
		"flour":       2,
		"water_ml":    250,
		"sugar":       1,
		"bowls_count": 1,
	})
	require.Len(t, diags, 2)
	// Ordered by variable name.
	assert.Equal(t, "flour", diags[0].Variable)
	assert.Equal(t, "sugar", diags[1].Variable)

	assert.Empty(t, c.CheckLedger(nil))
}

func TestCustomRules(t *testing.T) {
	c := New(Rules{
		Substances:        []string{"plasma"},
		Units:             []string{"cells"},
		CountableSuffixes: []string{"batches"},
	})

	assert.NotNil(t, c.CheckName("plasma"))
	assert.Nil(t, c.CheckName("plasma_cells"))
	assert.Nil(t, c.CheckName("plasma_batches"))
	// Default substances are not in the custom list.
	assert.Nil(t, c.CheckName("flour"))
}

func TestRulesMerge(t *testing.T) {
	merged := DefaultRules().Merge(Rules{Units: []string{"dollops"}})
	c := New(merged)

	// Substances kept from defaults, units replaced.
	assert.NotNil(t, c.CheckName("flour_grams"))
	assert.Nil(t, c.CheckName("flour_dollops"))
}
