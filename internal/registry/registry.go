// Package registry associates shared-data groups with their canonical
// datasets and key indexes. Events only affect views registered under
// the same group, so the registry is the scoping boundary for linking.
package registry

import (
	"sync"

	"brushlink/internal/domain"
	"brushlink/internal/keyindex"
)

// Group binds one canonical dataset to the views that share a
// selection. It lives for the visualization session and is destroyed
// on teardown.
type Group struct {
	ID    domain.GroupID
	Index *keyindex.Index

	rows []Row
}

// Rows returns the canonical ordered rows, for collaborators (such as
// an aggregation engine) that recompute summaries from the active
// selection.
func (g *Group) Rows() []Row {
	return g.rows
}

// Registry tracks the groups of one session.
type Registry struct {
	mu     sync.RWMutex
	groups map[domain.GroupID]*Group
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		groups: make(map[domain.GroupID]*Group),
	}
}

// Register adds a group with the given key index. Re-registering with
// an identical key domain returns the existing group; a conflicting
// domain fails with DuplicateGroup.
func (r *Registry) Register(id domain.GroupID, idx *keyindex.Index) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.groups[id]; ok {
		if existing.Index.Domain().Equal(idx.Domain()) {
			return existing, nil
		}
		return nil, domain.DuplicateGroup(id)
	}

	g := &Group{ID: id, Index: idx}
	r.groups[id] = g
	return g, nil
}

// Lookup returns the group or fails with UnknownGroup.
func (r *Registry) Lookup(id domain.GroupID) (*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return nil, domain.UnknownGroup(id)
	}
	return g, nil
}

// Remove drops a group on session teardown. Removing an unknown group
// is a no-op.
func (r *Registry) Remove(id domain.GroupID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.groups, id)
}

// GroupIDs returns the ids of all registered groups.
func (r *Registry) GroupIDs() []domain.GroupID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.GroupID, 0, len(r.groups))
	for id := range r.groups {
		ids = append(ids, id)
	}
	return ids
}
