// Package ratio enforces the duration ratio rule between a container and its
// direct children: parent/10 <= child < parent. The lower bound is inclusive,
// the upper bound strict.
package ratio

import (
	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

// MinChildDuration returns the smallest child duration the rule accepts for
// the given parent duration. Integer milliseconds round the tenth upward, so
// the comparison child*10 >= parent holds exactly.
func MinChildDuration(parent plan.Duration) plan.Duration {
	return (parent + 9) / 10
}

// CheckSegment validates one parent/child pair under their current durations.
func CheckSegment(parent, child *plan.Template) *plan.Diagnostic {
	return checkDurations(parent, child, parent.Duration, child.Duration)
}

func checkDurations(parent, child *plan.Template, parentDur, childDur plan.Duration) *plan.Diagnostic {
	if childDur*10 < parentDur {
		d := plan.RatioTooSmall(parent, child, parentDur, childDur, MinChildDuration(parentDur))
		return &d
	}
	if childDur >= parentDur {
		d := plan.RatioTooLarge(parent, child, childDur, parentDur)
		return &d
	}
	return nil
}

// CheckContainer validates every direct child of the container against the
// hypothetical duration newDuration. A container with no segments is valid
// vacuously. Segments naming absent templates are skipped here; the flattener
// reports those.
func CheckContainer(snap store.Snapshot, container *plan.Template, newDuration plan.Duration) plan.Diagnostics {
	var out plan.Diagnostics
	for _, seg := range container.Segments {
		child := snap.Get(seg.TemplateID)
		if child == nil {
			continue
		}
		if d := checkDurations(container, child, newDuration, child.Duration); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// CheckChild validates the child's hypothetical duration against every parent
// named in its references, then walks each parent chain upward re-validating
// under the parents' current durations. The change never cascades sizes; it
// cascades validation, because a container's duration bounds every level
// below it.
func CheckChild(snap store.Snapshot, child *plan.Template, newDuration plan.Duration) plan.Diagnostics {
	var out plan.Diagnostics
	visited := map[plan.TemplateID]bool{child.ID: true}

	for _, ref := range child.Refs {
		parent := snap.Get(ref.ParentID)
		if parent == nil {
			out = append(out, plan.MissingTemplate(ref.ParentID, child.ID))
			continue
		}
		if d := checkDurations(parent, child, parent.Duration, newDuration); d != nil {
			out = append(out, *d)
		}
		out = append(out, checkAncestors(snap, parent, visited)...)
	}
	return out
}

// checkAncestors re-runs CheckSegment for each (grandparent, parent) pair up
// every reference chain, visiting each ancestor once.
func checkAncestors(snap store.Snapshot, node *plan.Template, visited map[plan.TemplateID]bool) plan.Diagnostics {
	if visited[node.ID] {
		return nil
	}
	visited[node.ID] = true

	var out plan.Diagnostics
	for _, ref := range node.Refs {
		parent := snap.Get(ref.ParentID)
		if parent == nil {
			out = append(out, plan.MissingTemplate(ref.ParentID, node.ID))
			continue
		}
		if d := CheckSegment(parent, node); d != nil {
			out = append(out, *d)
		}
		out = append(out, checkAncestors(snap, parent, visited)...)
	}
	return out
}
