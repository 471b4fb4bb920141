package services

import (
	"sync/atomic"

	"github.com/kestrelhq/botgate/internal/core/domain"
)

// tagSnapshot is one immutable generation of the capability tag catalog.
type tagSnapshot struct {
	byID map[string]domain.CapabilityTag
	all  []domain.CapabilityTag
}

var emptyTagSnapshot = &tagSnapshot{byID: map[string]domain.CapabilityTag{}}

// TagRegistry holds the capability tag catalog. The loader replaces the whole
// set atomically on every refresh; readers never observe a partial update and
// never take a lock.
type TagRegistry struct {
	snap atomic.Pointer[tagSnapshot]
}

func NewTagRegistry() *TagRegistry {
	r := &TagRegistry{}
	r.snap.Store(emptyTagSnapshot)
	return r
}

// Replace publishes a new generation of the catalog.
func (r *TagRegistry) Replace(tags []domain.CapabilityTag) {
	snap := &tagSnapshot{
		byID: make(map[string]domain.CapabilityTag, len(tags)),
		all:  make([]domain.CapabilityTag, len(tags)),
	}
	copy(snap.all, tags)
	for _, t := range tags {
		snap.byID[t.TagID] = t
	}
	r.snap.Store(snap)
}

// Get looks up a single tag by id.
func (r *TagRegistry) Get(tagID string) (domain.CapabilityTag, bool) {
	t, ok := r.snap.Load().byID[tagID]
	return t, ok
}

// List returns the current generation. Callers must not mutate it.
func (r *TagRegistry) List() []domain.CapabilityTag {
	return r.snap.Load().all
}

// Len reports the current catalog size.
func (r *TagRegistry) Len() int {
	return len(r.snap.Load().all)
}
