// Package vocab enforces the variable naming rule: a variable whose name
// contains a measurable substance must also carry a unit token. The word
// lists are data, not code — they ship as defaults and can be replaced or
// extended through configuration.
package vocab

import (
	"strings"

	"github.com/emergent-company/planmcp/internal/plan"
)

// Rules holds the closed word lists the checker evaluates against.
type Rules struct {
	// Substances are measurable materials that require a unit.
	Substances []string `toml:"substances"`
	// Units are tokens that satisfy the requirement.
	Units []string `toml:"units"`
	// CountableSuffixes are trailing tokens that make a variable purely
	// countable, which satisfies the rule trivially.
	CountableSuffixes []string `toml:"countable_suffixes"`
}

// DefaultRules returns the built-in word lists.
func DefaultRules() Rules {
	return Rules{
		Substances: []string{
			"water", "flour", "oil", "butter", "sugar", "salt", "milk",
			"egg", "eggs", "chicken", "beef", "rice",
			"fabric", "thread", "fuel", "chemicals", "metal", "wood",
			"paint", "cement", "sand",
		},
		Units: []string{
			"cups", "cup", "grams", "gram", "g", "kg",
			"liters", "liter", "l", "ml",
			"tbsp", "tsp", "oz", "lbs", "lb", "pounds",
			"meters", "meter", "m", "cm", "yards",
			"gallons", "quarts",
			"pieces", "count", "units", "servings",
		},
		CountableSuffixes: []string{"count", "units", "servings", "pieces"},
	}
}

// Merge overlays non-empty lists from other onto r.
func (r Rules) Merge(other Rules) Rules {
	if len(other.Substances) > 0 {
		r.Substances = other.Substances
	}
	if len(other.Units) > 0 {
		r.Units = other.Units
	}
	if len(other.CountableSuffixes) > 0 {
		r.CountableSuffixes = other.CountableSuffixes
	}
	return r
}

// Checker evaluates variable names against a fixed rule set.
type Checker struct {
	substances map[string]struct{}
	units      map[string]struct{}
	suffixes   []string
}

// New builds a checker from the given rules.
func New(rules Rules) *Checker {
	c := &Checker{
		substances: make(map[string]struct{}, len(rules.Substances)),
		units:      make(map[string]struct{}, len(rules.Units)),
		suffixes:   make([]string, len(rules.CountableSuffixes)),
	}
	for _, s := range rules.Substances {
		c.substances[strings.ToLower(s)] = struct{}{}
	}
	for _, u := range rules.Units {
		c.units[strings.ToLower(u)] = struct{}{}
	}
	for i, s := range rules.CountableSuffixes {
		c.suffixes[i] = strings.ToLower(s)
	}
	return c
}

// Default returns a checker over the built-in word lists.
func Default() *Checker { return New(DefaultRules()) }

// tokenize lowercases the name and splits on the delimiters variable names
// are written with.
func tokenize(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
}

// CheckName returns nil if the name satisfies the vocabulary rule, or a
// bad-variable-name diagnostic naming the substance that triggered it.
func (c *Checker) CheckName(name string) *plan.Diagnostic {
	tokens := tokenize(name)

	substance := ""
	for _, tok := range tokens {
		if _, ok := c.substances[tok]; ok {
			substance = tok
			break
		}
	}
	if substance == "" {
		return nil
	}

	// Purely countable outputs satisfy the rule trivially.
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		for _, suffix := range c.suffixes {
			if last == suffix {
				return nil
			}
		}
	}

	for _, tok := range tokens {
		if _, ok := c.units[tok]; ok {
			return nil
		}
	}

	d := plan.BadVariableName(name, substance)
	return &d
}

// CheckLedger applies CheckName to every variable in the ledger, diagnostics
// ordered by variable name.
func (c *Checker) CheckLedger(l plan.Ledger) plan.Diagnostics {
	var out plan.Diagnostics
	for _, name := range l.Names() {
		if d := c.CheckName(name); d != nil {
			out = append(out, *d)
		}
	}
	return out
}
