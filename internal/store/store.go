// Package store owns the template collection. The engine funnels every
// mutation through a single commit, so a Store only needs atomic lookup,
// insert, replace, and batched commit; it never enforces link or ratio
// invariants itself.
package store

import (
	"errors"

	"github.com/emergent-company/planmcp/internal/plan"
)

// Common errors. Callers translate these into structured diagnostics.
var (
	ErrNotFound    = errors.New("template not found")
	ErrDuplicateID = errors.New("template id already exists")
)

// Snapshot is a point-in-time copy of the collection. The map and the
// templates it holds are owned by the caller; mutating them does not affect
// the store.
type Snapshot map[plan.TemplateID]*plan.Template

// Get returns the template with the given ID, or nil.
func (s Snapshot) Get(id plan.TemplateID) *plan.Template { return s[id] }

// Store is the collection interface the engine consumes. Implementations
// must make Commit all-or-nothing.
type Store interface {
	// Get returns a copy of the template with the given ID.
	Get(id plan.TemplateID) (*plan.Template, bool)

	// Contains reports whether the ID is present.
	Contains(id plan.TemplateID) bool

	// Insert adds a new template. Returns ErrDuplicateID if the ID exists.
	Insert(t *plan.Template) error

	// Replace overwrites an existing template. Returns ErrNotFound if the
	// ID is absent.
	Replace(t *plan.Template) error

	// Snapshot returns a copy of the whole collection.
	Snapshot() Snapshot

	// Commit applies every entry in the batch, inserting or replacing as
	// needed. Either all entries apply or none do.
	Commit(batch map[plan.TemplateID]*plan.Template) error

	// Delete removes a template. Missing IDs are a no-op.
	Delete(id plan.TemplateID) error

	// Close releases any underlying resources.
	Close() error
}
