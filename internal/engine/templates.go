package engine

import (
	"sort"
	"strings"

	"github.com/emergent-company/planmcp/internal/links"
	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/ratio"
)

// CreateAtomicParams are the arguments for create-atomic. ID is optional; the
// engine assigns a UUID when absent.
type CreateAtomicParams struct {
	ID          plan.TemplateID
	Intent      string
	AuthorID    string
	Version     int
	Duration    plan.Duration
	WillConsume plan.Ledger
	WillProduce plan.Ledger
}

// SegmentSpec names one child placement when creating a container. The
// relationship ID is optional; the engine assigns a UUID when absent.
type SegmentSpec struct {
	TemplateID     plan.TemplateID
	RelationshipID plan.RelationshipID
	Offset         plan.Duration
}

// CreateContainerParams are the arguments for create-container.
type CreateContainerParams struct {
	ID       plan.TemplateID
	Intent   string
	AuthorID string
	Version  int
	Duration plan.Duration
	Segments []SegmentSpec
}

// CreateAtomic creates an atomic template in isolation. The duration must be
// positive and every ledger variable must satisfy the vocabulary rule.
func (e *Engine) CreateAtomic(p CreateAtomicParams) (*plan.Template, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var diags plan.Diagnostics
	if p.Duration <= 0 {
		diags = append(diags, plan.InvalidDuration(p.ID, p.Duration, "atomic templates need a positive duration"))
	}
	diags = append(diags, e.vocab.CheckLedger(p.WillConsume)...)
	diags = append(diags, e.vocab.CheckLedger(p.WillProduce)...)
	diags = append(diags, checkQuantities(p.ID, p.WillConsume)...)
	diags = append(diags, checkQuantities(p.ID, p.WillProduce)...)
	if !diags.OK() {
		return nil, diags, nil
	}

	id := p.ID
	if id == "" {
		id = plan.TemplateID(e.newID())
	}
	if e.store.Contains(id) {
		return nil, plan.Diagnostics{plan.DuplicateID(id)}, nil
	}

	t := &plan.Template{
		ID:          id,
		Kind:        plan.KindAtomic,
		Intent:      p.Intent,
		AuthorID:    p.AuthorID,
		Version:     p.Version,
		Duration:    p.Duration,
		WillConsume: p.WillConsume.Clone(),
		WillProduce: p.WillProduce.Clone(),
	}
	if err := e.store.Insert(t); err != nil {
		return nil, nil, err
	}
	e.logger.Info("created atomic template", "id", id, "intent", p.Intent, "duration_ms", p.Duration)
	return t.Clone(), nil, nil
}

// CreateContainer creates a container template over children that must
// already exist, adding the back-reference to every named child. The ratio
// and offset invariants are checked against each segment before anything
// commits.
func (e *Engine) CreateContainer(p CreateContainerParams) (*plan.Template, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var diags plan.Diagnostics
	if p.Duration <= 0 {
		diags = append(diags, plan.InvalidDuration(p.ID, p.Duration, "container templates need a positive duration"))
	}
	if !diags.OK() {
		return nil, diags, nil
	}

	id := p.ID
	if id == "" {
		id = plan.TemplateID(e.newID())
	}
	if e.store.Contains(id) {
		return nil, plan.Diagnostics{plan.DuplicateID(id)}, nil
	}

	w := newWorkingSet(e.store.Snapshot())
	c := &plan.Template{
		ID:       id,
		Kind:     plan.KindContainer,
		Intent:   p.Intent,
		AuthorID: p.AuthorID,
		Version:  p.Version,
		Duration: p.Duration,
	}
	w.add(c)

	for _, spec := range p.Segments {
		child := w.get(spec.TemplateID)
		if child == nil {
			diags = append(diags, plan.NotFound(spec.TemplateID))
			continue
		}
		if spec.Offset < 0 {
			diags = append(diags, plan.InvalidDuration(id, spec.Offset, "segment offsets must be non-negative"))
			continue
		}
		rel := e.relationshipID(spec.RelationshipID)
		if d := links.AddSegment(c, child, rel, spec.Offset); d != nil {
			diags = append(diags, *d)
			continue
		}
		if d := ratio.CheckSegment(c, child); d != nil {
			diags = append(diags, *d)
		}
		if spec.Offset+child.Duration > c.Duration {
			diags = append(diags, plan.InvalidDuration(id, spec.Offset+child.Duration,
				"segment extends past the container duration"))
		}
	}
	if !diags.OK() {
		return nil, diags, nil
	}

	if err := e.commit(w); err != nil {
		return nil, nil, err
	}
	e.logger.Info("created container template", "id", id, "intent", p.Intent,
		"duration_ms", p.Duration, "segments", len(c.Segments))
	return c.Clone(), nil, nil
}

// GetTemplate returns the full template for the given ID.
func (e *Engine) GetTemplate(id plan.TemplateID) (*plan.Template, plan.Diagnostics) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.store.Get(id)
	if !ok {
		return nil, plan.Diagnostics{plan.NotFound(id)}
	}
	return t, nil
}

// TemplateMeta is the summary row list-templates and search-intent return.
type TemplateMeta struct {
	ID           plan.TemplateID `json:"id"`
	Kind         plan.Kind       `json:"templateType"`
	Intent       string          `json:"intent"`
	Duration     plan.Duration   `json:"estimatedDuration"`
	Version      int             `json:"version"`
	AuthorID     string          `json:"authorId,omitempty"`
	SegmentCount int             `json:"segmentCount"`
	ParentCount  int             `json:"parentCount"`
}

func metaOf(t *plan.Template) TemplateMeta {
	return TemplateMeta{
		ID:           t.ID,
		Kind:         t.Kind,
		Intent:       t.Intent,
		Duration:     t.Duration,
		Version:      t.Version,
		AuthorID:     t.AuthorID,
		SegmentCount: len(t.Segments),
		ParentCount:  len(t.Refs),
	}
}

// ListTemplates returns metadata for every template, optionally filtered by
// kind ("atomic" or "container"; empty means both). Rows are sorted by ID.
func (e *Engine) ListTemplates(kind plan.Kind) ([]TemplateMeta, plan.Diagnostics) {
	if kind != "" && kind != plan.KindAtomic && kind != plan.KindContainer {
		return nil, plan.Diagnostics{plan.WrongKind("", kind, plan.KindAtomic)}
	}
	e.mu.RLock()
	snap := e.store.Snapshot()
	e.mu.RUnlock()

	var out []TemplateMeta
	for _, t := range snap {
		if kind != "" && t.Kind != kind {
			continue
		}
		out = append(out, metaOf(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SearchIntent returns metadata for templates whose intent contains the query
// substring, case-insensitively.
func (e *Engine) SearchIntent(query string) ([]TemplateMeta, plan.Diagnostics) {
	e.mu.RLock()
	snap := e.store.Snapshot()
	e.mu.RUnlock()

	q := strings.ToLower(query)
	var out []TemplateMeta
	for _, t := range snap {
		if strings.Contains(strings.ToLower(t.Intent), q) {
			out = append(out, metaOf(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetVocabulary returns the sorted unique set of variable names across every
// atomic's consume and produce ledgers.
func (e *Engine) GetVocabulary() []string {
	e.mu.RLock()
	snap := e.store.Snapshot()
	e.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, t := range snap {
		if !t.IsAtomic() {
			continue
		}
		for name := range t.WillConsume {
			seen[name] = struct{}{}
		}
		for name := range t.WillProduce {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateDuration changes a template's duration and re-validates the ratio
// rule downward over the template's children and upward over every parent
// chain.
func (e *Engine) UpdateDuration(id plan.TemplateID, newDuration plan.Duration) (*plan.Template, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if newDuration <= 0 {
		return nil, plan.Diagnostics{plan.InvalidDuration(id, newDuration, "durations must be positive")}, nil
	}

	w := newWorkingSet(e.store.Snapshot())
	t := w.get(id)
	if t == nil {
		return nil, plan.Diagnostics{plan.NotFound(id)}, nil
	}

	var diags plan.Diagnostics
	switch t.Kind {
	case plan.KindContainer:
		diags = append(diags, ratio.CheckContainer(w.snap, t, newDuration)...)
		diags = append(diags, segmentBounds(w, t, newDuration)...)
	case plan.KindAtomic:
		// Nothing below an atomic to re-check.
	}
	diags = append(diags, ratio.CheckChild(w.snap, t, newDuration)...)
	diags = append(diags, parentBounds(w, t, newDuration)...)
	if !diags.OK() {
		return nil, diags, nil
	}

	t.Duration = newDuration
	if err := e.commit(w); err != nil {
		return nil, nil, err
	}
	e.logger.Info("updated duration", "id", id, "duration_ms", newDuration)
	return t.Clone(), nil, nil
}

// segmentBounds checks that every segment still fits inside the hypothetical
// container duration.
func segmentBounds(w *workingSet, c *plan.Template, duration plan.Duration) plan.Diagnostics {
	var out plan.Diagnostics
	for _, seg := range c.Segments {
		d, ok := w.durations(seg.TemplateID)
		if !ok {
			continue
		}
		if seg.End(d) > duration {
			out = append(out, plan.InvalidDuration(c.ID, seg.End(d),
				"segment extends past the container duration"))
		}
	}
	return out
}

// parentBounds checks that every placement of the child still fits inside its
// parent if the child's duration becomes newDuration.
func parentBounds(w *workingSet, child *plan.Template, newDuration plan.Duration) plan.Diagnostics {
	var out plan.Diagnostics
	for _, ref := range child.Refs {
		parent := w.snap.Get(ref.ParentID)
		if parent == nil {
			continue
		}
		idx := parent.SegmentByRelationship(ref.RelationshipID)
		if idx < 0 {
			continue
		}
		if end := parent.Segments[idx].End(newDuration); end > parent.Duration {
			out = append(out, plan.InvalidDuration(parent.ID, end,
				"segment would extend past the container duration"))
		}
	}
	return out
}

// UpdateIntent changes a template's intent text.
func (e *Engine) UpdateIntent(id plan.TemplateID, intent string) (*plan.Template, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.store.Get(id)
	if !ok {
		return nil, plan.Diagnostics{plan.NotFound(id)}, nil
	}
	t.Intent = intent
	if err := e.store.Replace(t); err != nil {
		return nil, nil, err
	}
	e.logger.Info("updated intent", "id", id)
	return t.Clone(), nil, nil
}

// UpdateConsume replaces an atomic's consume ledger; the vocabulary rule is
// re-checked.
func (e *Engine) UpdateConsume(id plan.TemplateID, ledger plan.Ledger) (*plan.Template, plan.Diagnostics, error) {
	return e.updateLedger(id, ledger, true)
}

// UpdateProduce replaces an atomic's produce ledger; the vocabulary rule is
// re-checked.
func (e *Engine) UpdateProduce(id plan.TemplateID, ledger plan.Ledger) (*plan.Template, plan.Diagnostics, error) {
	return e.updateLedger(id, ledger, false)
}

func (e *Engine) updateLedger(id plan.TemplateID, ledger plan.Ledger, consume bool) (*plan.Template, plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.store.Get(id)
	if !ok {
		return nil, plan.Diagnostics{plan.NotFound(id)}, nil
	}
	if !t.IsAtomic() {
		return nil, plan.Diagnostics{plan.WrongKind(id, t.Kind, plan.KindAtomic)}, nil
	}

	var diags plan.Diagnostics
	diags = append(diags, e.vocab.CheckLedger(ledger)...)
	diags = append(diags, checkQuantities(id, ledger)...)
	if !diags.OK() {
		return nil, diags, nil
	}

	if consume {
		t.WillConsume = ledger.Clone()
	} else {
		t.WillProduce = ledger.Clone()
	}
	if err := e.store.Replace(t); err != nil {
		return nil, nil, err
	}
	e.logger.Info("updated ledger", "id", id, "side", map[bool]string{true: "consume", false: "produce"}[consume])
	return t.Clone(), nil, nil
}

// checkQuantities rejects negative quantities.
func checkQuantities(id plan.TemplateID, l plan.Ledger) plan.Diagnostics {
	var out plan.Diagnostics
	for _, name := range l.Names() {
		if l[name] < 0 {
			out = append(out, plan.Diagnostic{
				Kind:       plan.DiagBadVariableName,
				TemplateID: id,
				Variable:   name,
				Message:    "variable " + name + " has a negative quantity",
			})
		}
	}
	return out
}

// DeleteTemplate removes a template that no container references. Deleting a
// container strips the back-reference from each of its children first.
func (e *Engine) DeleteTemplate(id plan.TemplateID) (plan.Diagnostics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := newWorkingSet(e.store.Snapshot())
	t := w.get(id)
	if t == nil {
		return plan.Diagnostics{plan.NotFound(id)}, nil
	}
	if len(t.Refs) > 0 {
		var diags plan.Diagnostics
		for _, ref := range t.Refs {
			diags = append(diags, plan.LinkIntegrity(ref.ParentID, id, ref.RelationshipID,
				"template is still referenced; remove the segment first"))
		}
		return diags, nil
	}

	if t.IsContainer() {
		segs := make([]plan.Segment, len(t.Segments))
		copy(segs, t.Segments)
		for _, seg := range segs {
			child := w.get(seg.TemplateID)
			if child == nil {
				continue
			}
			links.RemoveSegment(t, child, seg.RelationshipID)
		}
	}
	delete(w.batch, id)
	if err := e.commit(w); err != nil {
		return nil, err
	}
	if err := e.store.Delete(id); err != nil {
		return nil, err
	}
	e.logger.Info("deleted template", "id", id)
	return nil, nil
}
