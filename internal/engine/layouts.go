package engine

import (
	"github.com/emergent-company/planmcp/internal/layout"
	"github.com/emergent-company/planmcp/internal/links"
	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/ratio"
)

// mutateContainer runs one layout-algebra step against a working copy of the
// container, then re-checks the ratio rule downward over the children, the
// offset bounds, and — when the container duration changed — the ratio rule
// upward over every parent chain. Nothing commits unless every check passes.
func (e *Engine) mutateContainer(id plan.TemplateID, op string, fn func(w *workingSet, c *plan.Template) plan.Diagnostics) (*plan.Template, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := newWorkingSet(e.store.Snapshot())
	c := w.get(id)
	if c == nil {
		return nil, plan.Diagnostics{plan.NotFound(id)}, nil
	}
	if !c.IsContainer() {
		return nil, plan.Diagnostics{plan.WrongKind(id, c.Kind, plan.KindContainer)}, nil
	}
	oldDuration := c.Duration

	if diags := fn(w, c); !diags.OK() {
		return nil, diags, nil
	}

	view := w.view()
	var diags plan.Diagnostics
	diags = append(diags, ratio.CheckContainer(view, c, c.Duration)...)
	diags = append(diags, segmentBounds(w, c, c.Duration)...)
	if c.Duration != oldDuration {
		diags = append(diags, ratio.CheckChild(view, c, c.Duration)...)
	}
	if !diags.OK() {
		return nil, diags, nil
	}

	if err := e.commit(w); err != nil {
		return nil, nil, err
	}
	e.logger.Info("layout operation", "op", op, "id", id, "duration_ms", c.Duration)
	return c.Clone(), nil, nil
}

// asDiags lifts an optional diagnostic into a list.
func asDiags(d *plan.Diagnostic) plan.Diagnostics {
	if d == nil {
		return nil
	}
	return plan.Diagnostics{*d}
}

// ApplyLayout arranges the container's segments under the given distribution.
func (e *Engine) ApplyLayout(id plan.TemplateID, dist layout.Distribution, gap plan.Duration) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "apply-layout", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		return asDiags(layout.Apply(c, w.durations, dist, gap))
	})
}

// Pack arranges the segments back to back from the origin.
func (e *Engine) Pack(id plan.TemplateID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "pack", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		return asDiags(layout.Pack(c, w.durations))
	})
}

// EquallyDistribute spreads the segments edge to edge with equal interior
// gaps.
func (e *Engine) EquallyDistribute(id plan.TemplateID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "equally-distribute", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		return asDiags(layout.EquallyDistribute(c, w.durations))
	})
}

// DistributeByInterval lays the segments out with a fixed interval between
// them.
func (e *Engine) DistributeByInterval(id plan.TemplateID, interval plan.Duration) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "distribute-by-interval", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		return asDiags(layout.DistributeByInterval(c, w.durations, interval))
	})
}

// FitToLast shrinks the container duration to its latest trailing edge.
func (e *Engine) FitToLast(id plan.TemplateID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "fit-to-last", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		return asDiags(layout.FitToLast(c, w.durations))
	})
}

// InsertGap shifts the segment at beforeIndex and every later segment by
// gapDuration.
func (e *Engine) InsertGap(id plan.TemplateID, beforeIndex int, gapDuration plan.Duration) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "insert-gap", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		return asDiags(layout.InsertGap(c, w.durations, beforeIndex, gapDuration))
	})
}

// AddToEnd appends a new segment after the latest trailing edge.
func (e *Engine) AddToEnd(id, childID plan.TemplateID, rel plan.RelationshipID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "add-to-end", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		child := w.get(childID)
		if child == nil {
			return plan.Diagnostics{plan.NotFound(childID)}
		}
		offset, diag := layout.AppendOffset(c, w.durations)
		if diag != nil {
			return asDiags(diag)
		}
		return asDiags(links.AddSegment(c, child, e.relationshipID(rel), offset))
	})
}

// PushToStart inserts a new segment at the origin and shifts every existing
// segment right by the child's duration.
func (e *Engine) PushToStart(id, childID plan.TemplateID, rel plan.RelationshipID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "push-to-start", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		child := w.get(childID)
		if child == nil {
			return plan.Diagnostics{plan.NotFound(childID)}
		}
		layout.ShiftFrom(c, 0, child.Duration)
		return asDiags(links.InsertSegmentAt(c, child, e.relationshipID(rel), 0, 0))
	})
}

// InsertAt inserts a new segment at the given offset; every segment starting
// at or after that offset shifts right by the child's duration.
func (e *Engine) InsertAt(id, childID plan.TemplateID, offset plan.Duration, rel plan.RelationshipID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "insert-at", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		if offset < 0 {
			return plan.Diagnostics{plan.InvalidDuration(id, offset, "segment offsets must be non-negative")}
		}
		child := w.get(childID)
		if child == nil {
			return plan.Diagnostics{plan.NotFound(childID)}
		}
		pos := layout.InsertPosition(c, offset)
		layout.ShiftFrom(c, offset, child.Duration)
		return asDiags(links.InsertSegmentAt(c, child, e.relationshipID(rel), offset, pos))
	})
}

// DeleteSegment removes the segment with the given relationship ID and the
// matching back-reference on the child. A missing back-reference is logged as
// an integrity warning; the segment is still removed.
func (e *Engine) DeleteSegment(id plan.TemplateID, rel plan.RelationshipID) (*plan.Template, plan.Diagnostics, error) {
	return e.mutateContainer(id, "delete-segment", func(w *workingSet, c *plan.Template) plan.Diagnostics {
		idx := c.SegmentByRelationship(rel)
		if idx < 0 {
			return plan.Diagnostics{plan.LinkIntegrity(id, "", rel, "no segment with this relationship id")}
		}
		child := w.get(c.Segments[idx].TemplateID)
		if child == nil {
			// Child already gone; drop the dangling segment.
			c.Segments = append(c.Segments[:idx], c.Segments[idx+1:]...)
			return nil
		}
		warning, diag := links.RemoveSegment(c, child, rel)
		if warning != nil {
			e.logger.Warn("link integrity warning", "parent", id, "child", child.ID, "detail", warning.Message)
		}
		return asDiags(diag)
	})
}
