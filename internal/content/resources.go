// Package content provides the static MCP resources planmcp serves alongside
// its tools: the vocabulary reference and the tool quick reference.
package content

import (
	"strings"

	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/vocab"
)

// VocabularyResource renders the active variable-name word lists.
type VocabularyResource struct {
	Rules vocab.Rules
}

func (r *VocabularyResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "planmcp://vocabulary",
		Name:        "Variable vocabulary rules",
		Description: "The measurable-substance and unit word lists the variable naming rule is checked against",
		MimeType:    "text/markdown",
	}
}

func (r *VocabularyResource) Read() (*mcp.ResourcesReadResult, error) {
	var sb strings.Builder
	sb.WriteString("# Variable vocabulary rules\n\n")
	sb.WriteString("A variable name whose tokens include a measurable substance must also\n")
	sb.WriteString("include a unit token. Names ending in a countable suffix (")
	sb.WriteString(strings.Join(r.Rules.CountableSuffixes, ", "))
	sb.WriteString(") satisfy the rule trivially.\n\n")
	sb.WriteString("Good: `flour_grams`, `diced_chicken_lbs`, `bowls_count`\n")
	sb.WriteString("Bad: `flour`, `chopped_wood`\n\n")
	sb.WriteString("## Measurable substances\n\n")
	sb.WriteString(strings.Join(r.Rules.Substances, ", "))
	sb.WriteString("\n\n## Unit tokens\n\n")
	sb.WriteString(strings.Join(r.Rules.Units, ", "))
	sb.WriteString("\n")

	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{{
			URI:      "planmcp://vocabulary",
			MimeType: "text/markdown",
			Text:     sb.String(),
		}},
	}, nil
}

// ToolReferenceResource is a quick reference over the tool surface.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "planmcp://tool-reference",
		Name:        "Tool quick reference",
		Description: "One-line usage summary for every planmcp tool",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	text := `# planmcp tool reference

Templates
  plan_create_atomic        Create a step that consumes/produces variables
  plan_create_container     Arrange existing templates on a time axis
  plan_get_template         Full template by ID
  plan_list_templates       Metadata for all templates (optional kind filter)
  plan_search_intent        Case-insensitive substring search over intents
  plan_get_vocabulary       All variable names in use
  plan_update_duration      Change duration (ratio rule re-checked up and down)
  plan_update_intent        Change intent text
  plan_update_consume       Replace a consume ledger (vocabulary re-checked)
  plan_update_produce       Replace a produce ledger (vocabulary re-checked)
  plan_delete_template      Delete an unreferenced template

Layout
  plan_layout               start | end | center | space-between | space-around | space-evenly
  plan_pack                 Back to back from the origin
  plan_equally_distribute   Edge to edge with equal interior gaps
  plan_distribute_by_interval  Fixed interval between segments
  plan_fit_to_last          Resize the container to its latest trailing edge
  plan_insert_gap           Shift a suffix of the segments right
  plan_add_to_end           Append a child after the last trailing edge
  plan_push_to_start        Insert a child at the origin, shifting the rest
  plan_insert_at            Insert a child at an offset, shifting later segments
  plan_delete_segment       Remove one segment and its back-reference

Analysis
  plan_validate             Contract + diagnostics for one container
  plan_validate_all         Per-container summary across the library

Documents
  plan_export               Library document {version, templates}
  plan_import               All-or-nothing import of a library document

The duration ratio rule binds every parent/child pair: child duration in
[parent/10, parent). Offsets are milliseconds from the container origin.
`

	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{{
			URI:      "planmcp://tool-reference",
			MimeType: "text/markdown",
			Text:     text,
		}},
	}, nil
}
