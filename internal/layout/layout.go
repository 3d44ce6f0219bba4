// Package layout implements the closed catalogue of container arrangement
// operations. Every operation rewrites segment offsets (and for fit-to-last
// the container duration) on a working copy, preserving segment identities
// and list order; the engine re-checks link and ratio invariants before
// anything is committed.
package layout

import (
	"fmt"

	"github.com/emergent-company/planmcp/internal/plan"
)

// Distribution selects how apply-layout spaces the segments.
type Distribution string

const (
	Start        Distribution = "start"
	End          Distribution = "end"
	Center       Distribution = "center"
	SpaceBetween Distribution = "space-between"
	SpaceAround  Distribution = "space-around"
	SpaceEvenly  Distribution = "space-evenly"
)

// ParseDistribution maps a wire string onto a Distribution.
func ParseDistribution(s string) (Distribution, bool) {
	switch Distribution(s) {
	case Start, End, Center, SpaceBetween, SpaceAround, SpaceEvenly:
		return Distribution(s), true
	}
	return "", false
}

// Durations resolves a child template's duration. The engine backs this with
// a store snapshot.
type Durations func(id plan.TemplateID) (plan.Duration, bool)

// resolve collects the duration of every segment's child in list order.
func resolve(c *plan.Template, durs Durations) ([]plan.Duration, *plan.Diagnostic) {
	out := make([]plan.Duration, len(c.Segments))
	for i, seg := range c.Segments {
		d, ok := durs(seg.TemplateID)
		if !ok {
			diag := plan.MissingTemplate(seg.TemplateID, c.ID)
			return nil, &diag
		}
		out[i] = d
	}
	return out, nil
}

// lastEnd returns the largest trailing edge across all segments.
func lastEnd(c *plan.Template, childDurs []plan.Duration) plan.Duration {
	var end plan.Duration
	for i, seg := range c.Segments {
		if e := seg.End(childDurs[i]); e > end {
			end = e
		}
	}
	return end
}

// checkBounds verifies the offset bound: every segment fits inside the
// container, equality allowed at the trailing edge.
func checkBounds(c *plan.Template, childDurs []plan.Duration) *plan.Diagnostic {
	if end := lastEnd(c, childDurs); end > c.Duration {
		diag := plan.InvalidDuration(c.ID, end,
			fmt.Sprintf("arranged segments end at %dms, past the container duration of %dms", end, c.Duration))
		return &diag
	}
	return nil
}

// Apply places the segments in their existing list order under the chosen
// distribution. gap only applies to start, end, and center; the space-*
// distributions derive their gaps from the free room. Fails without mutating
// the container when the arrangement cannot fit.
func Apply(c *plan.Template, durs Durations, dist Distribution, gap plan.Duration) *plan.Diagnostic {
	if gap < 0 {
		diag := plan.InvalidDuration(c.ID, gap, "gap must be non-negative")
		return &diag
	}
	n := len(c.Segments)
	if n == 0 {
		return nil
	}
	childDurs, diag := resolve(c, durs)
	if diag != nil {
		return diag
	}

	var total plan.Duration
	for _, d := range childDurs {
		total += d
	}

	// gaps[0] leads the first segment; gaps[i] separates segment i-1 from i.
	gaps := make([]plan.Duration, n)

	switch dist {
	case Start, End, Center:
		run := total + gap*plan.Duration(n-1)
		if run > c.Duration {
			diag := plan.InvalidDuration(c.ID, run,
				fmt.Sprintf("packed length %dms exceeds container duration %dms", run, c.Duration))
			return &diag
		}
		for i := 1; i < n; i++ {
			gaps[i] = gap
		}
		switch dist {
		case Start:
			gaps[0] = 0
		case End:
			gaps[0] = c.Duration - run
		case Center:
			gaps[0] = (c.Duration - run) / 2
		}

	case SpaceBetween, SpaceAround, SpaceEvenly:
		free := c.Duration - total
		if free < 0 {
			diag := plan.InvalidDuration(c.ID, total,
				fmt.Sprintf("segments total %dms, more than the container duration %dms", total, c.Duration))
			return &diag
		}
		distributeFree(gaps, free, dist, n)

	default:
		diag := plan.InvalidDuration(c.ID, 0, fmt.Sprintf("unknown distribution %q", dist))
		return &diag
	}

	off := plan.Duration(0)
	for i := range c.Segments {
		off += gaps[i]
		c.Segments[i].Offset = off
		off += childDurs[i]
	}
	return nil
}

// distributeFree splits the free room across the leading gap and the n-1
// interior gaps according to the distribution's weights. Integer remainders
// are spread by cumulative rounding so the segments always fit exactly.
// Trailing room is whatever the weights leave over.
func distributeFree(gaps []plan.Duration, free plan.Duration, dist Distribution, n int) {
	// Weight of the leading gap, each interior gap, and the trailing gap.
	var lead, interior, trail int64
	switch dist {
	case SpaceBetween:
		lead, interior, trail = 0, 1, 0
	case SpaceAround:
		lead, interior, trail = 1, 2, 1
	case SpaceEvenly:
		lead, interior, trail = 1, 1, 1
	}

	totalW := lead + interior*int64(n-1) + trail
	if totalW == 0 {
		// space-between with a single segment: pin it to the origin.
		return
	}

	// Cumulative share at each boundary keeps the sum of assigned gaps exact.
	cum := int64(0)
	prev := plan.Duration(0)
	assign := func(i int, w int64) {
		cum += w
		share := plan.Duration(int64(free) * cum / totalW)
		gaps[i] = share - prev
		prev = share
	}
	assign(0, lead)
	for i := 1; i < n; i++ {
		assign(i, interior)
	}
}

// Pack arranges the segments back to back from the origin. Equivalent to
// Apply(start, 0); never resizes the container.
func Pack(c *plan.Template, durs Durations) *plan.Diagnostic {
	return Apply(c, durs, Start, 0)
}

// EquallyDistribute spreads the segments so the first starts at the origin,
// the last ends at the container duration, and the interior gaps are equal.
// Equivalent to Apply(space-between, 0).
func EquallyDistribute(c *plan.Template, durs Durations) *plan.Diagnostic {
	return Apply(c, durs, SpaceBetween, 0)
}

// DistributeByInterval lays the segments out back to back with a fixed
// interval between them. Never resizes; fails if the run overflows the
// container.
func DistributeByInterval(c *plan.Template, durs Durations, interval plan.Duration) *plan.Diagnostic {
	if interval < 0 {
		diag := plan.InvalidDuration(c.ID, interval, "interval must be non-negative")
		return &diag
	}
	childDurs, diag := resolve(c, durs)
	if diag != nil {
		return diag
	}
	off := plan.Duration(0)
	for i := range c.Segments {
		if i > 0 {
			off += interval
		}
		c.Segments[i].Offset = off
		off += childDurs[i]
	}
	return checkBounds(c, childDurs)
}

// FitToLast shrinks (or grows) the container duration to the latest trailing
// edge of its segments. The engine re-checks the ratio rule on every direct
// child and on every parent of the container afterwards.
func FitToLast(c *plan.Template, durs Durations) *plan.Diagnostic {
	if len(c.Segments) == 0 {
		diag := plan.EmptyContainer(c.ID)
		return &diag
	}
	childDurs, diag := resolve(c, durs)
	if diag != nil {
		return diag
	}
	c.Duration = lastEnd(c, childDurs)
	return nil
}

// InsertGap shifts the segment at beforeIndex and every later segment by
// gap. Never resizes; fails if the shifted run overflows the container.
func InsertGap(c *plan.Template, durs Durations, beforeIndex int, gap plan.Duration) *plan.Diagnostic {
	if gap < 0 {
		diag := plan.InvalidDuration(c.ID, gap, "gap must be non-negative")
		return &diag
	}
	if beforeIndex < 0 || beforeIndex >= len(c.Segments) {
		diag := plan.InvalidDuration(c.ID, plan.Duration(beforeIndex),
			fmt.Sprintf("segment index %d out of range (container has %d segments)", beforeIndex, len(c.Segments)))
		return &diag
	}
	childDurs, diag := resolve(c, durs)
	if diag != nil {
		return diag
	}
	for i := beforeIndex; i < len(c.Segments); i++ {
		c.Segments[i].Offset += gap
	}
	return checkBounds(c, childDurs)
}

// AppendOffset returns the offset add-to-end uses: the latest trailing edge
// of the existing segments, or the origin for an empty container.
func AppendOffset(c *plan.Template, durs Durations) (plan.Duration, *plan.Diagnostic) {
	childDurs, diag := resolve(c, durs)
	if diag != nil {
		return 0, diag
	}
	return lastEnd(c, childDurs), nil
}

// ShiftFrom adds delta to every segment whose offset is at or past from.
// insert-at and push-to-start use this to make room for the new child.
func ShiftFrom(c *plan.Template, from, delta plan.Duration) {
	for i := range c.Segments {
		if c.Segments[i].Offset >= from {
			c.Segments[i].Offset += delta
		}
	}
}

// InsertPosition returns the list index at which a segment starting at offset
// keeps the list chronological: before the first segment at or past offset.
func InsertPosition(c *plan.Template, offset plan.Duration) int {
	for i, seg := range c.Segments {
		if seg.Offset >= offset {
			return i
		}
	}
	return len(c.Segments)
}
