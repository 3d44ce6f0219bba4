// Package plan defines the template model for the planning engine: atomic and
// container templates, segments, parent references, ledgers, and the
// structured diagnostics every engine operation reports.
package plan

// TemplateID identifies a template. IDs are opaque; the engine assigns a UUID
// when the caller does not supply one.
type TemplateID string

// RelationshipID identifies a single placement of a child inside a container.
// Two placements of the same child in the same container carry distinct
// relationship IDs and are tracked independently.
type RelationshipID string

// Duration is a non-negative count of milliseconds. Zero is invalid for
// atomic templates.
type Duration int64

// Kind discriminates the two template variants.
type Kind string

const (
	KindAtomic    Kind = "atomic"
	KindContainer Kind = "container"
)

// ParentRef is the back-reference a child holds for each segment that names
// it: the containing template and the relationship ID of that segment.
type ParentRef struct {
	ParentID       TemplateID     `json:"parentId"`
	RelationshipID RelationshipID `json:"relationshipId"`
}

// Segment is a single placement of a child template inside a container.
// Offset is relative to the container's local origin.
type Segment struct {
	TemplateID     TemplateID     `json:"templateId"`
	RelationshipID RelationshipID `json:"relationshipId"`
	Offset         Duration       `json:"offset"`
}

// End returns the segment's trailing edge given the child's duration.
func (s Segment) End(childDuration Duration) Duration {
	return s.Offset + childDuration
}

// Template is the tagged union of the two template variants. Kind selects
// which variant-specific fields are meaningful: WillConsume/WillProduce for
// atomics, Segments for containers. Every site that branches on Kind must
// name both cases.
type Template struct {
	ID       TemplateID  `json:"id"`
	Kind     Kind        `json:"templateType"`
	Intent   string      `json:"intent"`
	AuthorID string      `json:"authorId,omitempty"`
	Version  int         `json:"version"`
	Duration Duration    `json:"estimatedDuration"`
	Refs     []ParentRef `json:"references,omitempty"`

	// Atomic fields.
	WillConsume Ledger `json:"willConsume,omitempty"`
	WillProduce Ledger `json:"willProduce,omitempty"`

	// Container fields.
	Segments []Segment `json:"segments,omitempty"`
}

// IsAtomic reports whether the template is the atomic variant.
func (t *Template) IsAtomic() bool { return t.Kind == KindAtomic }

// IsContainer reports whether the template is the container variant.
func (t *Template) IsContainer() bool { return t.Kind == KindContainer }

// Clone returns a deep copy. Engine operations mutate clones and commit them
// atomically, so the stored template is never half-edited.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	if t.Refs != nil {
		c.Refs = make([]ParentRef, len(t.Refs))
		copy(c.Refs, t.Refs)
	}
	if t.Segments != nil {
		c.Segments = make([]Segment, len(t.Segments))
		copy(c.Segments, t.Segments)
	}
	c.WillConsume = t.WillConsume.Clone()
	c.WillProduce = t.WillProduce.Clone()
	return &c
}

// HasRef reports whether the template holds a back-reference for the given
// (parent, relationship) pair.
func (t *Template) HasRef(parent TemplateID, rel RelationshipID) bool {
	for _, r := range t.Refs {
		if r.ParentID == parent && r.RelationshipID == rel {
			return true
		}
	}
	return false
}

// SegmentByRelationship returns the index of the segment with the given
// relationship ID, or -1.
func (t *Template) SegmentByRelationship(rel RelationshipID) int {
	for i, s := range t.Segments {
		if s.RelationshipID == rel {
			return i
		}
	}
	return -1
}
