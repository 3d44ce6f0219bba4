package schedule

import (
	"sort"

	"github.com/emergent-company/planmcp/internal/plan"
)

// qtyEpsilon absorbs float accumulation noise in ledger comparisons.
const qtyEpsilon = 1e-9

// Result is the outcome of simulating a flattened schedule: the container's
// contract and every diagnostic the walk produced. A container is valid iff
// Diagnostics is empty.
type Result struct {
	ContainerID plan.TemplateID  `json:"containerId"`
	IsValid     bool             `json:"isValid"`
	Inputs      plan.Ledger      `json:"contractInputs"`
	Outputs     plan.Ledger      `json:"contractOutputs"`
	FirstAtomic plan.TemplateID  `json:"firstAtomic,omitempty"`
	LastAtomic  plan.TemplateID  `json:"lastAtomic,omitempty"`
	Diagnostics plan.Diagnostics `json:"diagnostics,omitempty"`
}

// Simulate runs the flattened schedule through a variable-quantity ledger.
// Deficits at the first atomic become contract inputs; leftovers produced
// last by the final atomic become contract outputs; everything else is a
// diagnostic. Overlap detection runs independently of the ledger walk, so
// both kinds of diagnostics can be reported together.
func Simulate(container *plan.Template, f *Flattened) *Result {
	res := &Result{
		ContainerID: container.ID,
		Inputs:      plan.Ledger{},
		Outputs:     plan.Ledger{},
	}
	res.Diagnostics = append(res.Diagnostics, f.Diagnostics...)

	if len(container.Segments) == 0 {
		res.Diagnostics = append(res.Diagnostics, plan.EmptyContainer(container.ID))
		res.IsValid = false
		return res
	}

	firstIdx := f.FirstIndex()
	lastIdx := f.LastIndex()
	if firstIdx >= 0 {
		res.FirstAtomic = f.Items[firstIdx].Atomic.ID
		res.LastAtomic = f.Items[lastIdx].Atomic.ID
	}

	res.Diagnostics = append(res.Diagnostics, detectOverlaps(f.Items)...)
	res.Diagnostics = append(res.Diagnostics, res.walkLedger(f, firstIdx, lastIdx)...)

	res.IsValid = len(res.Diagnostics) == 0
	return res
}

// walkLedger iterates the schedule in order: each atomic consumes, then
// produces. Populates res.Inputs/res.Outputs as a side effect.
func (res *Result) walkLedger(f *Flattened, firstIdx, lastIdx int) plan.Diagnostics {
	var diags plan.Diagnostics

	running := plan.Ledger{}
	produced := plan.Ledger{}
	consumed := plan.Ledger{}
	lastProducer := map[string]int{}

	for i, it := range f.Items {
		for _, v := range it.Atomic.WillConsume.Names() {
			q := it.Atomic.WillConsume[v]
			avail := running[v]
			if deficit := q - avail; deficit > qtyEpsilon {
				if i == firstIdx {
					res.Inputs.Add(v, deficit)
				} else {
					diags = append(diags, plan.UnsatisfiedConsume(it.Atomic, v, q, avail, it.Offset))
				}
			}
			if avail-q > 0 {
				running[v] = avail - q
			} else {
				running[v] = 0
			}
			consumed.Add(v, q)
		}
		for _, v := range it.Atomic.WillProduce.Names() {
			q := it.Atomic.WillProduce[v]
			running.Add(v, q)
			produced.Add(v, q)
			lastProducer[v] = i
		}
	}

	for _, v := range unionNames(produced, consumed) {
		remaining := produced[v] - consumed[v]
		if remaining <= qtyEpsilon {
			continue
		}
		idx := lastProducer[v]
		if idx == lastIdx {
			res.Outputs.Add(v, remaining)
		} else {
			diags = append(diags, plan.UnsatisfiedProduce(f.Items[idx].Atomic, v, produced[v], consumed[v]))
		}
	}
	return diags
}

// detectOverlaps reports one diagnostic per pair of atomics whose half-open
// intervals intersect. Items arrive sorted by offset, so the inner scan stops
// at the first item starting past the current one's end.
func detectOverlaps(items []Item) plan.Diagnostics {
	var diags plan.Diagnostics
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[j].Offset >= items[i].End() {
				break
			}
			start := items[j].Offset
			end := items[i].End()
			if items[j].End() < end {
				end = items[j].End()
			}
			if end > start {
				diags = append(diags, plan.Overlap(items[i].Atomic, items[j].Atomic, start, end))
			}
		}
	}
	return diags
}

// ContractAtomic synthesizes an atomic template carrying the container's
// contract signature. For a parent's ledger walk, a valid container consumed
// as a child is indistinguishable from this atomic.
func ContractAtomic(container *plan.Template, res *Result) *plan.Template {
	return &plan.Template{
		ID:          container.ID,
		Kind:        plan.KindAtomic,
		Intent:      container.Intent,
		AuthorID:    container.AuthorID,
		Version:     container.Version,
		Duration:    container.Duration,
		WillConsume: res.Inputs.Clone(),
		WillProduce: res.Outputs.Clone(),
	}
}

func unionNames(a, b plan.Ledger) []string {
	seen := map[string]struct{}{}
	var names []string
	for v := range a {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			names = append(names, v)
		}
	}
	for v := range b {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			names = append(names, v)
		}
	}
	sort.Strings(names)
	return names
}
