// Package schedule turns a container tree into a chronological list of atomic
// steps and runs that list through a resource ledger to derive the
// container's input/output contract.
package schedule

import (
	"sort"

	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

// Item is one atomic occurrence at an absolute offset from the root
// container's origin.
type Item struct {
	Atomic *plan.Template
	Offset plan.Duration
}

// End returns the item's trailing edge.
func (it Item) End() plan.Duration { return it.Offset + it.Atomic.Duration }

// Flattened is the result of walking a container tree: atomic items sorted by
// absolute offset (ties keep discovery order) plus any diagnostics the walk
// produced.
type Flattened struct {
	Items       []Item
	Diagnostics plan.Diagnostics
}

// frame is one pending walk step. trail holds the container chain that led
// here, so a malformed store with a container cycle terminates instead of
// recursing forever.
type frame struct {
	id    plan.TemplateID
	from  plan.TemplateID
	base  plan.Duration
	trail []plan.TemplateID
}

// Flatten walks every segment of the container, resolving children from the
// snapshot. Atomics are emitted at parentOffset + segment.offset; nested
// containers recurse with the cumulative offset. Missing templates surface as
// missing-template diagnostics and the walk continues past them.
func Flatten(snap store.Snapshot, container *plan.Template) *Flattened {
	out := &Flattened{}

	// Explicit work stack; segments are pushed in reverse so pop order
	// matches segment order, which defines discovery order for ties.
	var stack []frame
	push := func(parent *plan.Template, base plan.Duration, trail []plan.TemplateID) {
		for i := len(parent.Segments) - 1; i >= 0; i-- {
			seg := parent.Segments[i]
			stack = append(stack, frame{
				id:    seg.TemplateID,
				from:  parent.ID,
				base:  base + seg.Offset,
				trail: trail,
			})
		}
	}

	rootTrail := []plan.TemplateID{container.ID}
	push(container, 0, rootTrail)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t := snap.Get(f.id)
		if t == nil {
			out.Diagnostics = append(out.Diagnostics, plan.MissingTemplate(f.id, f.from))
			continue
		}

		switch t.Kind {
		case plan.KindAtomic:
			out.Items = append(out.Items, Item{Atomic: t, Offset: f.base})
		case plan.KindContainer:
			if contains(f.trail, t.ID) {
				out.Diagnostics = append(out.Diagnostics, plan.LinkIntegrity(f.from, t.ID, "",
					"container cycle detected; skipping nested walk"))
				continue
			}
			trail := make([]plan.TemplateID, len(f.trail), len(f.trail)+1)
			copy(trail, f.trail)
			push(t, f.base, append(trail, t.ID))
		default:
			out.Diagnostics = append(out.Diagnostics, plan.WrongKind(t.ID, t.Kind, plan.KindAtomic))
		}
	}

	sort.SliceStable(out.Items, func(i, j int) bool {
		return out.Items[i].Offset < out.Items[j].Offset
	})
	return out
}

func contains(ids []plan.TemplateID, id plan.TemplateID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// FirstIndex returns the index of the item with the smallest absolute offset,
// or -1 when the list is empty.
func (f *Flattened) FirstIndex() int {
	if len(f.Items) == 0 {
		return -1
	}
	return 0
}

// LastIndex returns the index of the item with the largest trailing edge, the
// later occurrence winning ties. Returns -1 when the list is empty.
func (f *Flattened) LastIndex() int {
	last := -1
	var end plan.Duration
	for i, it := range f.Items {
		if last < 0 || it.End() >= end {
			last, end = i, it.End()
		}
	}
	return last
}
