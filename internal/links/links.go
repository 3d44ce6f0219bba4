// Package links keeps the parent→child segments list and the child→parent
// references list in lockstep. All functions operate on working copies; the
// engine commits both sides together or not at all.
package links

import (
	"fmt"

	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

// AddSegment appends a segment to parent and the matching back-reference to
// child. A relationship ID already used under the same parent is rejected;
// re-adding the same (parent, relationship) back-reference is idempotent.
func AddSegment(parent, child *plan.Template, rel plan.RelationshipID, offset plan.Duration) *plan.Diagnostic {
	if !parent.IsContainer() {
		d := plan.WrongKind(parent.ID, parent.Kind, plan.KindContainer)
		return &d
	}
	if parent.SegmentByRelationship(rel) >= 0 {
		d := plan.LinkIntegrity(parent.ID, child.ID, rel, "relationship id already in use under this parent")
		return &d
	}

	parent.Segments = append(parent.Segments, plan.Segment{
		TemplateID:     child.ID,
		RelationshipID: rel,
		Offset:         offset,
	})
	if !child.HasRef(parent.ID, rel) {
		child.Refs = append(child.Refs, plan.ParentRef{ParentID: parent.ID, RelationshipID: rel})
	}
	return nil
}

// InsertSegmentAt behaves like AddSegment but places the segment at the given
// position in the segment list instead of appending.
func InsertSegmentAt(parent, child *plan.Template, rel plan.RelationshipID, offset plan.Duration, index int) *plan.Diagnostic {
	if d := AddSegment(parent, child, rel, offset); d != nil {
		return d
	}
	if index < 0 {
		index = 0
	}
	last := len(parent.Segments) - 1
	if index >= last {
		return nil
	}
	seg := parent.Segments[last]
	copy(parent.Segments[index+1:], parent.Segments[index:last])
	parent.Segments[index] = seg
	return nil
}

// RemoveSegment removes the segment with the given relationship ID from
// parent and the matching back-reference from child. A missing segment is a
// link-integrity failure; a missing back-reference is reported as a warning
// while the segment is still removed.
func RemoveSegment(parent, child *plan.Template, rel plan.RelationshipID) (warning *plan.Diagnostic, err *plan.Diagnostic) {
	idx := parent.SegmentByRelationship(rel)
	if idx < 0 {
		d := plan.LinkIntegrity(parent.ID, child.ID, rel, "no segment with this relationship id")
		return nil, &d
	}
	parent.Segments = append(parent.Segments[:idx], parent.Segments[idx+1:]...)

	refIdx := -1
	for i, r := range child.Refs {
		if r.ParentID == parent.ID && r.RelationshipID == rel {
			refIdx = i
			break
		}
	}
	if refIdx < 0 {
		d := plan.LinkIntegrity(parent.ID, child.ID, rel, "segment had no matching back-reference on the child")
		return &d, nil
	}
	child.Refs = append(child.Refs[:refIdx], child.Refs[refIdx+1:]...)
	return nil, nil
}

// CheckContainer verifies that every segment of the container has exactly one
// matching back-reference on its child. Back-references that name the
// container without a matching segment are not checked.
func CheckContainer(snap store.Snapshot, container *plan.Template) plan.Diagnostics {
	var out plan.Diagnostics
	for _, seg := range container.Segments {
		child := snap.Get(seg.TemplateID)
		if child == nil {
			out = append(out, plan.MissingTemplate(seg.TemplateID, container.ID))
			continue
		}
		matches := 0
		for _, r := range child.Refs {
			if r.ParentID == container.ID && r.RelationshipID == seg.RelationshipID {
				matches++
			}
		}
		switch {
		case matches == 0:
			out = append(out, plan.LinkIntegrity(container.ID, child.ID, seg.RelationshipID,
				"segment has no matching back-reference on the child"))
		case matches > 1:
			out = append(out, plan.LinkIntegrity(container.ID, child.ID, seg.RelationshipID,
				fmt.Sprintf("child holds %d back-references for one segment", matches)))
		}
	}
	return out
}
