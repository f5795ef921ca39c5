// Package registry keeps the ordered, deduplicated set of admitted bridge
// providers.
package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/settlement-switch/internal/adapter"
)

// Entry is one provider ever admitted, with its current membership flag
type Entry struct {
	ID       common.Address
	Admitted bool
}

// Registry is an ordered collection of providers keyed by id. An id is in the
// ordered list exactly when its membership flag is set.
//
// Registry is not safe for concurrent use; the owning router serializes
// access and enforces authority.
type Registry struct {
	order    []common.Address
	admitted map[common.Address]bool
	adapters map[common.Address]adapter.BridgeAdapter

	// history keeps first-admission order of every id
	history []common.Address
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		admitted: make(map[common.Address]bool),
		adapters: make(map[common.Address]adapter.BridgeAdapter),
	}
}

// Add appends id to the ordered list. It reports false when id is already
// admitted.
func (r *Registry) Add(id common.Address, a adapter.BridgeAdapter) bool {
	if r.admitted[id] {
		return false
	}
	if _, seen := r.adapters[id]; !seen {
		r.history = append(r.history, id)
	}
	r.admitted[id] = true
	r.adapters[id] = a
	r.order = append(r.order, id)
	return true
}

// Remove clears the membership flag of id and rebuilds the ordered list
// without it. It reports false when id is not admitted.
func (r *Registry) Remove(id common.Address) bool {
	if !r.admitted[id] {
		return false
	}
	r.admitted[id] = false

	rebuilt := make([]common.Address, 0, len(r.order)-1)
	for _, other := range r.order {
		if r.admitted[other] {
			rebuilt = append(rebuilt, other)
		}
	}
	r.order = rebuilt
	return true
}

// Contains reports whether id is currently admitted
func (r *Registry) Contains(id common.Address) bool {
	return r.admitted[id]
}

// Get returns the admitted provider with id
func (r *Registry) Get(id common.Address) (adapter.BridgeAdapter, bool) {
	if !r.admitted[id] {
		return nil, false
	}
	return r.adapters[id], true
}

// IDs returns the admitted ids in registration order
func (r *Registry) IDs() []common.Address {
	out := make([]common.Address, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of admitted providers
func (r *Registry) Len() int {
	return len(r.order)
}

// Each calls fn for every admitted provider in registration order until fn
// returns false
func (r *Registry) Each(fn func(id common.Address, a adapter.BridgeAdapter) bool) {
	for _, id := range r.order {
		if !fn(id, r.adapters[id]) {
			return
		}
	}
}

// History returns every id ever admitted, in first-admission order, with
// its current flag
func (r *Registry) History() []Entry {
	out := make([]Entry, len(r.history))
	for i, id := range r.history {
		out[i] = Entry{ID: id, Admitted: r.admitted[id]}
	}
	return out
}
