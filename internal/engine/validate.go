package engine

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/emergent-company/planmcp/internal/links"
	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/ratio"
	"github.com/emergent-company/planmcp/internal/schedule"
	"github.com/emergent-company/planmcp/internal/store"
)

// validateSnapshot diagnoses one container against a snapshot: link
// integrity, the ratio rule over direct children, then the flattened schedule
// through the ledger simulator.
func validateSnapshot(snap store.Snapshot, c *plan.Template) *schedule.Result {
	structural := links.CheckContainer(snap, c)
	structural = append(structural, ratio.CheckContainer(snap, c, c.Duration)...)

	res := schedule.Simulate(c, schedule.Flatten(snap, c))
	if len(structural) > 0 {
		res.Diagnostics = append(structural, res.Diagnostics...)
		res.IsValid = false
	}
	return res
}

// ValidateContainer flattens the container and runs the ledger simulation,
// returning the contract and the full diagnostic list. Validity is never
// cached; every call recomputes from the current snapshot.
func (e *Engine) ValidateContainer(id plan.TemplateID) (*schedule.Result, plan.Diagnostics) {
	e.mu.RLock()
	snap := e.store.Snapshot()
	e.mu.RUnlock()

	c := snap.Get(id)
	if c == nil {
		return nil, plan.Diagnostics{plan.NotFound(id)}
	}
	if !c.IsContainer() {
		return nil, plan.Diagnostics{plan.WrongKind(id, c.Kind, plan.KindContainer)}
	}
	return validateSnapshot(snap, c), nil
}

// ContainerSummary is one row of the validate-all report.
type ContainerSummary struct {
	ID          plan.TemplateID `json:"id"`
	Intent      string          `json:"intent"`
	IsValid     bool            `json:"isValid"`
	Diagnostics int             `json:"diagnosticCount"`
}

// LibraryReport aggregates validate-all across every container.
type LibraryReport struct {
	Containers        []ContainerSummary    `json:"containers"`
	TotalContainers   int                   `json:"totalContainers"`
	ValidContainers   int                   `json:"validContainers"`
	InvalidContainers int                   `json:"invalidContainers"`
	DiagnosticsByKind map[plan.DiagKind]int `json:"diagnosticsByKind,omitempty"`
}

// ValidateAll validates every container against one snapshot. Containers are
// checked concurrently; the report is ordered by container ID so the output
// is deterministic.
func (e *Engine) ValidateAll() *LibraryReport {
	e.mu.RLock()
	snap := e.store.Snapshot()
	e.mu.RUnlock()

	var ids []plan.TemplateID
	for id, t := range snap {
		if t.IsContainer() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]*schedule.Result, len(ids))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, id := range ids {
		g.Go(func() error {
			results[i] = validateSnapshot(snap, snap.Get(id))
			return nil
		})
	}
	g.Wait()

	report := &LibraryReport{
		TotalContainers:   len(ids),
		DiagnosticsByKind: map[plan.DiagKind]int{},
	}
	for i, id := range ids {
		res := results[i]
		report.Containers = append(report.Containers, ContainerSummary{
			ID:          id,
			Intent:      snap.Get(id).Intent,
			IsValid:     res.IsValid,
			Diagnostics: len(res.Diagnostics),
		})
		if res.IsValid {
			report.ValidContainers++
		} else {
			report.InvalidContainers++
		}
		for _, d := range res.Diagnostics {
			report.DiagnosticsByKind[d.Kind]++
		}
	}
	if len(report.DiagnosticsByKind) == 0 {
		report.DiagnosticsByKind = nil
	}
	return report
}

// Export returns the library document for the whole collection.
func (e *Engine) Export() *plan.Library {
	e.mu.RLock()
	snap := e.store.Snapshot()
	e.mu.RUnlock()
	return plan.NewLibrary(snap)
}

// Import inserts every template of the library document. IDs that already
// exist are rejected; on any diagnostic nothing is imported.
func (e *Engine) Import(lib *plan.Library) (int, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var diags plan.Diagnostics
	batch := make(map[plan.TemplateID]*plan.Template, len(lib.Templates))
	for _, t := range lib.Templates {
		if err := plan.CheckWireTemplate(t); err != nil {
			diags = append(diags, plan.InvalidDuration(t.ID, t.Duration, err.Error()))
			continue
		}
		if e.store.Contains(t.ID) {
			diags = append(diags, plan.DuplicateID(t.ID))
			continue
		}
		if _, dup := batch[t.ID]; dup {
			diags = append(diags, plan.DuplicateID(t.ID))
			continue
		}
		batch[t.ID] = t.Clone()
	}
	if !diags.OK() {
		return 0, diags, nil
	}
	if err := e.store.Commit(batch); err != nil {
		return 0, nil, err
	}
	e.logger.Info("imported library", "templates", len(batch))
	return len(batch), nil, nil
}
