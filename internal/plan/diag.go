package plan

import "fmt"

// DiagKind enumerates every way an operation can fail or a container can be
// wrong. The set is closed: callers switch on it to render messages or map
// to transport errors.
type DiagKind string

const (
	DiagNotFound           DiagKind = "not-found"
	DiagDuplicateID        DiagKind = "duplicate-id"
	DiagInvalidDuration    DiagKind = "invalid-duration"
	DiagRatioTooSmall      DiagKind = "ratio-too-small"
	DiagRatioTooLarge      DiagKind = "ratio-too-large"
	DiagBadVariableName    DiagKind = "bad-variable-name"
	DiagMissingTemplate    DiagKind = "missing-template"
	DiagOverlap            DiagKind = "overlap"
	DiagUnsatisfiedConsume DiagKind = "unsatisfied-consume"
	DiagUnsatisfiedProduce DiagKind = "unsatisfied-produce"
	DiagEmptyContainer     DiagKind = "empty-container"
	DiagLinkIntegrity      DiagKind = "link-integrity"
	DiagWrongKind          DiagKind = "wrong-kind"
)

// Diagnostic is one structured failure report. Kind selects which of the
// optional fields are populated; Message is always a rendered, user-actionable
// sentence.
type Diagnostic struct {
	Kind    DiagKind `json:"kind"`
	Message string   `json:"message"`

	TemplateID     TemplateID     `json:"templateId,omitempty"`
	OtherID        TemplateID     `json:"otherId,omitempty"`
	ParentID       TemplateID     `json:"parentId,omitempty"`
	ChildID        TemplateID     `json:"childId,omitempty"`
	RelationshipID RelationshipID `json:"relationshipId,omitempty"`

	ParentIntent string `json:"parentIntent,omitempty"`
	ChildIntent  string `json:"childIntent,omitempty"`

	Variable  string  `json:"variable,omitempty"`
	Required  float64 `json:"required,omitempty"`
	Available float64 `json:"available,omitempty"`
	Produced  float64 `json:"produced,omitempty"`
	Consumed  float64 `json:"consumed,omitempty"`

	Offset        Duration `json:"offset,omitempty"`
	OverlapStart  Duration `json:"overlapStart,omitempty"`
	OverlapEnd    Duration `json:"overlapEnd,omitempty"`
	Observed      Duration `json:"observed,omitempty"`
	RequiredBound Duration `json:"requiredBound,omitempty"`

	ObservedKind Kind `json:"observedKind,omitempty"`
	ExpectedKind Kind `json:"expectedKind,omitempty"`
}

func (d *Diagnostic) Error() string { return d.Message }

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// OK reports whether the list is empty.
func (ds Diagnostics) OK() bool { return len(ds) == 0 }

// Has reports whether any diagnostic of the given kind is present.
func (ds Diagnostics) Has(kind DiagKind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// OfKind returns all diagnostics of the given kind.
func (ds Diagnostics) OfKind(kind DiagKind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// --- Constructors ---

// NotFound reports a lookup for an ID the store does not hold.
func NotFound(id TemplateID) Diagnostic {
	return Diagnostic{
		Kind:       DiagNotFound,
		TemplateID: id,
		Message:    fmt.Sprintf("template %s not found", id),
	}
}

// DuplicateID reports an insert whose ID already exists.
func DuplicateID(id TemplateID) Diagnostic {
	return Diagnostic{
		Kind:       DiagDuplicateID,
		TemplateID: id,
		Message:    fmt.Sprintf("template %s already exists", id),
	}
}

// InvalidDuration reports a time value that breaks its bound: a non-positive
// duration, a negative offset, gap or interval, a segment that runs past its
// container, or an unusable layout argument.
func InvalidDuration(id TemplateID, observed Duration, context string) Diagnostic {
	return Diagnostic{
		Kind:       DiagInvalidDuration,
		TemplateID: id,
		Observed:   observed,
		Message:    fmt.Sprintf("invalid duration %dms for %s: %s", observed, id, context),
	}
}

// RatioTooSmall reports a child shorter than a tenth of its parent. parentDur
// is the (possibly hypothetical) container duration the check ran against.
func RatioTooSmall(parent, child *Template, parentDur, observed, requiredMin Duration) Diagnostic {
	return Diagnostic{
		Kind:          DiagRatioTooSmall,
		ParentID:      parent.ID,
		ParentIntent:  parent.Intent,
		ChildID:       child.ID,
		ChildIntent:   child.Intent,
		Observed:      observed,
		RequiredBound: requiredMin,
		Message: fmt.Sprintf("child %q (%dms) is too short for container %q: must be at least %dms (one tenth of %dms)",
			child.Intent, observed, parent.Intent, requiredMin, parentDur),
	}
}

// RatioTooLarge reports a child at least as long as its parent.
func RatioTooLarge(parent, child *Template, observed, requiredMax Duration) Diagnostic {
	return Diagnostic{
		Kind:          DiagRatioTooLarge,
		ParentID:      parent.ID,
		ParentIntent:  parent.Intent,
		ChildID:       child.ID,
		ChildIntent:   child.Intent,
		Observed:      observed,
		RequiredBound: requiredMax,
		Message: fmt.Sprintf("child %q (%dms) is too long for container %q: must be strictly less than %dms",
			child.Intent, observed, parent.Intent, requiredMax),
	}
}

// BadVariableName reports a measurable-substance variable missing a unit token.
func BadVariableName(name, substance string) Diagnostic {
	return Diagnostic{
		Kind:     DiagBadVariableName,
		Variable: name,
		Message: fmt.Sprintf("variable %q names a measurable substance (%s) but carries no unit: append a unit token such as %q",
			name, substance, name+"_grams"),
	}
}

// MissingTemplate reports a segment whose target is absent from the store.
func MissingTemplate(referenced, container TemplateID) Diagnostic {
	return Diagnostic{
		Kind:       DiagMissingTemplate,
		TemplateID: referenced,
		ParentID:   container,
		Message:    fmt.Sprintf("container %s references missing template %s", container, referenced),
	}
}

// Overlap reports two atomics whose half-open intervals intersect.
func Overlap(a, b *Template, start, end Duration) Diagnostic {
	return Diagnostic{
		Kind:         DiagOverlap,
		TemplateID:   a.ID,
		OtherID:      b.ID,
		ParentIntent: a.Intent,
		ChildIntent:  b.Intent,
		OverlapStart: start,
		OverlapEnd:   end,
		Message: fmt.Sprintf("steps %q and %q overlap between %dms and %dms",
			a.Intent, b.Intent, start, end),
	}
}

// UnsatisfiedConsume reports a consumption the running ledger cannot cover.
func UnsatisfiedConsume(atomic *Template, variable string, required, available float64, offset Duration) Diagnostic {
	return Diagnostic{
		Kind:        DiagUnsatisfiedConsume,
		TemplateID:  atomic.ID,
		ChildIntent: atomic.Intent,
		Variable:    variable,
		Required:    required,
		Available:   available,
		Offset:      offset,
		Message: fmt.Sprintf("step %q at %dms needs %g of %q but only %g is available",
			atomic.Intent, offset, required, variable, available),
	}
}

// UnsatisfiedProduce reports production that nothing later consumes and that
// the final step does not export.
func UnsatisfiedProduce(producer *Template, variable string, produced, consumed float64) Diagnostic {
	return Diagnostic{
		Kind:        DiagUnsatisfiedProduce,
		TemplateID:  producer.ID,
		ChildIntent: producer.Intent,
		Variable:    variable,
		Produced:    produced,
		Consumed:    consumed,
		Message: fmt.Sprintf("step %q produces %q (%g produced, %g consumed) but it is neither consumed later nor exported by the final step",
			producer.Intent, variable, produced, consumed),
	}
}

// EmptyContainer reports a container with no segments.
func EmptyContainer(container TemplateID) Diagnostic {
	return Diagnostic{
		Kind:       DiagEmptyContainer,
		TemplateID: container,
		Message:    fmt.Sprintf("container %s has no segments", container),
	}
}

// LinkIntegrity reports an asymmetry between a container's segments and a
// child's back-references.
func LinkIntegrity(parent, child TemplateID, rel RelationshipID, asymmetry string) Diagnostic {
	return Diagnostic{
		Kind:           DiagLinkIntegrity,
		ParentID:       parent,
		ChildID:        child,
		RelationshipID: rel,
		Message:        fmt.Sprintf("link between %s and %s (relationship %s): %s", parent, child, rel, asymmetry),
	}
}

// WrongKind reports an atomic where a container was required, or vice versa.
func WrongKind(id TemplateID, observed, expected Kind) Diagnostic {
	return Diagnostic{
		Kind:         DiagWrongKind,
		TemplateID:   id,
		ObservedKind: observed,
		ExpectedKind: expected,
		Message:      fmt.Sprintf("template %s is %s, expected %s", id, observed, expected),
	}
}
