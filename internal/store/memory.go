package store

import (
	"fmt"
	"sync"

	"github.com/emergent-company/planmcp/internal/plan"
)

// Memory is an in-process Store. Templates are cloned on the way in and out,
// so callers can never alias stored state.
type Memory struct {
	mu        sync.RWMutex
	templates map[plan.TemplateID]*plan.Template
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{templates: make(map[plan.TemplateID]*plan.Template)}
}

// Get returns a copy of the template with the given ID.
func (m *Memory) Get(id plan.TemplateID) (*plan.Template, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Contains reports whether the ID is present.
func (m *Memory) Contains(id plan.TemplateID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.templates[id]
	return ok
}

// Insert adds a new template, rejecting duplicate IDs.
func (m *Memory) Insert(t *plan.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.templates[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	m.templates[t.ID] = t.Clone()
	return nil
}

// Replace overwrites an existing template.
func (m *Memory) Replace(t *plan.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.templates[t.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ID)
	}
	m.templates[t.ID] = t.Clone()
	return nil
}

// Snapshot returns a copy of the whole collection.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(Snapshot, len(m.templates))
	for id, t := range m.templates {
		snap[id] = t.Clone()
	}
	return snap
}

// Commit applies the batch. The in-memory map is only touched once every
// entry has been cloned, so a panic mid-clone cannot leave a partial write.
func (m *Memory) Commit(batch map[plan.TemplateID]*plan.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := make(map[plan.TemplateID]*plan.Template, len(batch))
	for id, t := range batch {
		staged[id] = t.Clone()
	}
	for id, t := range staged {
		m.templates[id] = t
	}
	return nil
}

// Delete removes a template. Missing IDs are a no-op.
func (m *Memory) Delete(id plan.TemplateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
