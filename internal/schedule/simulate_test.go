package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

// twoStepSnapshot builds the canonical two-atom container: A consumes x and
// produces y, B consumes y and produces z, back to back inside C.
func twoStepSnapshot(bOffset plan.Duration) (store.Snapshot, *plan.Template) {
	a := atomic("A", 400, plan.Ledger{"x": 1}, plan.Ledger{"y": 1})
	b := atomic("B", 400, plan.Ledger{"y": 1}, plan.Ledger{"z": 1})
	c := container("C", 1000, seg("A", "r1", 0), seg("B", "r2", bOffset))
	return store.Snapshot{"A": a, "B": b, "C": c}, c
}

func TestSimulateBalancedLedger(t *testing.T) {
	snap, c := twoStepSnapshot(400)
	res := Simulate(c, Flatten(snap, c))

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, plan.Ledger{"x": 1}, res.Inputs)
	assert.Equal(t, plan.Ledger{"z": 1}, res.Outputs)
	assert.Equal(t, plan.TemplateID("A"), res.FirstAtomic)
	assert.Equal(t, plan.TemplateID("B"), res.LastAtomic)
}

func TestSimulateOverlapStillComputesContract(t *testing.T) {
	snap, c := twoStepSnapshot(300)
	res := Simulate(c, Flatten(snap, c))

	assert.False(t, res.IsValid)
	overlaps := res.Diagnostics.OfKind(plan.DiagOverlap)
	require.Len(t, overlaps, 1)
	assert.Equal(t, plan.TemplateID("A"), overlaps[0].TemplateID)
	assert.Equal(t, plan.TemplateID("B"), overlaps[0].OtherID)
	assert.Equal(t, plan.Duration(300), overlaps[0].OverlapStart)
	assert.Equal(t, plan.Duration(400), overlaps[0].OverlapEnd)

	// The ledger walk runs independently of the overlap check.
	assert.Equal(t, plan.Ledger{"x": 1}, res.Inputs)
	assert.Equal(t, plan.Ledger{"z": 1}, res.Outputs)
	assert.Len(t, res.Diagnostics, 1)
}

func TestSimulateOrphanProduction(t *testing.T) {
	a := atomic("A", 400, plan.Ledger{"x": 1}, plan.Ledger{"y": 1})
	b := atomic("B", 400, nil, plan.Ledger{"z": 1})
	c := container("C", 1000, seg("A", "r1", 0), seg("B", "r2", 400))
	snap := store.Snapshot{"A": a, "B": b, "C": c}

	res := Simulate(c, Flatten(snap, c))
	assert.False(t, res.IsValid)

	orphans := res.Diagnostics.OfKind(plan.DiagUnsatisfiedProduce)
	require.Len(t, orphans, 1)
	assert.Equal(t, plan.TemplateID("A"), orphans[0].TemplateID)
	assert.Equal(t, "y", orphans[0].Variable)
	assert.Equal(t, 1.0, orphans[0].Produced)
	assert.Equal(t, 0.0, orphans[0].Consumed)

	// z is produced by the last atomic and exported.
	assert.Equal(t, plan.Ledger{"z": 1}, res.Outputs)
}

func TestSimulateUnsatisfiedConsume(t *testing.T) {
	a := atomic("A", 400, nil, plan.Ledger{"y": 1})
	// B needs more y than A produced.
	b := atomic("B", 400, plan.Ledger{"y": 3}, plan.Ledger{"z": 1})
	c := container("C", 1000, seg("A", "r1", 0), seg("B", "r2", 400))
	snap := store.Snapshot{"A": a, "B": b, "C": c}

	res := Simulate(c, Flatten(snap, c))
	assert.False(t, res.IsValid)

	deficits := res.Diagnostics.OfKind(plan.DiagUnsatisfiedConsume)
	require.Len(t, deficits, 1)
	assert.Equal(t, plan.TemplateID("B"), deficits[0].TemplateID)
	assert.Equal(t, "y", deficits[0].Variable)
	assert.Equal(t, 3.0, deficits[0].Required)
	assert.Equal(t, 1.0, deficits[0].Available)
	assert.Equal(t, plan.Duration(400), deficits[0].Offset)
}

func TestSimulateFirstAtomicDeficitBecomesInput(t *testing.T) {
	// A alone: everything it consumes is an up-front input.
	a := atomic("A", 400, plan.Ledger{"flour_grams": 500, "water_ml": 250}, plan.Ledger{"dough_grams": 750})
	c := container("C", 1000, seg("A", "r1", 0))
	snap := store.Snapshot{"A": a, "C": c}

	res := Simulate(c, Flatten(snap, c))
	assert.True(t, res.IsValid)
	assert.Equal(t, plan.Ledger{"flour_grams": 500, "water_ml": 250}, res.Inputs)
	assert.Equal(t, plan.Ledger{"dough_grams": 750}, res.Outputs)
	assert.Equal(t, res.FirstAtomic, res.LastAtomic)
}

func TestSimulateEmptyContainer(t *testing.T) {
	c := container("C", 1000)
	snap := store.Snapshot{"C": c}

	res := Simulate(c, Flatten(snap, c))
	assert.False(t, res.IsValid)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, plan.DiagEmptyContainer, res.Diagnostics[0].Kind)
	assert.Empty(t, res.Inputs)
	assert.Empty(t, res.Outputs)
}

func TestSimulatePartialConsumptionFlagsLastProducer(t *testing.T) {
	// A produces 2 y, B consumes only 1; A is not the last atomic.
	a := atomic("A", 400, nil, plan.Ledger{"y": 2})
	b := atomic("B", 400, plan.Ledger{"y": 1}, plan.Ledger{"z": 1})
	c := container("C", 1000, seg("A", "r1", 0), seg("B", "r2", 400))
	snap := store.Snapshot{"A": a, "B": b, "C": c}

	res := Simulate(c, Flatten(snap, c))
	orphans := res.Diagnostics.OfKind(plan.DiagUnsatisfiedProduce)
	require.Len(t, orphans, 1)
	assert.Equal(t, 2.0, orphans[0].Produced)
	assert.Equal(t, 1.0, orphans[0].Consumed)
	assert.NotContains(t, res.Outputs, "y")
}

func TestContractAtomicEquivalence(t *testing.T) {
	// Inner container C: contract inputs {x:1}, outputs {z:1}.
	snap, c := twoStepSnapshot(400)
	inner := Simulate(c, Flatten(snap, c))
	require.True(t, inner.IsValid)

	// Outer container P holds C and a final step D consuming z.
	d := atomic("D", 600, plan.Ledger{"z": 1}, plan.Ledger{"bread_count": 1})
	p := container("P", 5000, seg("C", "rc", 0), seg("D", "rd", 2000))
	snap["D"] = d
	snap["P"] = p

	// Recursive path: walk P's tree down to the atomics.
	recursive := Simulate(p, Flatten(snap, p))

	// Synthetic path: replace C with an atomic carrying its contract.
	synthSnap := store.Snapshot{}
	for id, tpl := range snap {
		synthSnap[id] = tpl
	}
	synthSnap["C"] = ContractAtomic(c, inner)
	synthetic := Simulate(p, Flatten(synthSnap, p))

	assert.Equal(t, recursive.IsValid, synthetic.IsValid)
	assert.Equal(t, recursive.Inputs, synthetic.Inputs)
	assert.Equal(t, recursive.Outputs, synthetic.Outputs)
	assert.Len(t, synthetic.Diagnostics, len(recursive.Diagnostics))
}
