// Package engine is the facade over the planning core. Every named operation
// validates its arguments, mutates working copies, re-checks the link and
// ratio invariants, and either commits the whole working set to the store or
// returns diagnostics without touching it.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
	"github.com/emergent-company/planmcp/internal/vocab"
)

// Engine serializes all mutations against a single store. Mutations take the
// exclusive lock; read-side queries share a snapshot and never observe an
// in-flight mutation.
type Engine struct {
	mu     sync.RWMutex
	store  store.Store
	vocab  *vocab.Checker
	logger *slog.Logger
	newID  func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithVocabulary replaces the default vocabulary checker.
func WithVocabulary(c *vocab.Checker) Option {
	return func(e *Engine) { e.vocab = c }
}

// WithIDGenerator replaces the default UUID generator. Tests use this for
// deterministic IDs.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an engine over the given store.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		vocab:  vocab.Default(),
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// workingSet is the mutable view a single operation edits. Templates are
// cloned out of the snapshot on first access; commit writes every touched
// template back in one batch.
type workingSet struct {
	snap  store.Snapshot
	batch map[plan.TemplateID]*plan.Template
}

func newWorkingSet(snap store.Snapshot) *workingSet {
	return &workingSet{snap: snap, batch: make(map[plan.TemplateID]*plan.Template)}
}

// get returns the working copy for id, cloning it from the snapshot on first
// access. Returns nil if the snapshot does not hold the ID.
func (w *workingSet) get(id plan.TemplateID) *plan.Template {
	if t, ok := w.batch[id]; ok {
		return t
	}
	t := w.snap.Get(id)
	if t == nil {
		return nil
	}
	c := t.Clone()
	w.batch[id] = c
	return c
}

// add registers a freshly created template in the working set.
func (w *workingSet) add(t *plan.Template) {
	w.batch[t.ID] = t
}

// durations resolves child durations against the working set first, then the
// snapshot, so layout math sees in-flight edits.
func (w *workingSet) durations(id plan.TemplateID) (plan.Duration, bool) {
	if t, ok := w.batch[id]; ok {
		return t.Duration, true
	}
	if t := w.snap.Get(id); t != nil {
		return t.Duration, true
	}
	return 0, false
}

// view returns a snapshot that prefers working copies over stored state, for
// invariant checks that must see the edit before it commits.
func (w *workingSet) view() store.Snapshot {
	v := make(store.Snapshot, len(w.snap)+len(w.batch))
	for id, t := range w.snap {
		v[id] = t
	}
	for id, t := range w.batch {
		v[id] = t
	}
	return v
}

// commit writes the working set to the store. Store I/O failures are
// infrastructure errors, not diagnostics.
func (e *Engine) commit(w *workingSet) error {
	if err := e.store.Commit(w.batch); err != nil {
		e.logger.Error("commit failed", "error", err)
		return fmt.Errorf("committing working set: %w", err)
	}
	return nil
}

// relationshipID returns the given relationship ID or generates one.
func (e *Engine) relationshipID(rel plan.RelationshipID) plan.RelationshipID {
	if rel != "" {
		return rel
	}
	return plan.RelationshipID(e.newID())
}
