// Package dispatch implements a generic keyed-multimap callback table: a
// registration returns an opaque id, and a dispatch walks every binding
// set that matches a (scope, kind, filter) key in a fixed bucket order.
// It knows nothing about the domain types dispatched through it — the
// caller supplies ids, kinds and filters as plain integers and payloads as
// `any` — so it carries no import on the package that embeds it.
package dispatch

import "sync"

// key identifies one binding bucket.
type key struct {
	scope    uint64 // device id, or 0 for global
	kind     uint32
	hasFilter bool
	filter   uint64
}

// Table is a registration/dispatch multimap, as described in spec §4.5.
// The zero value is not usable; use New.
type Table struct {
	mu        sync.RWMutex
	nextID    uint64
	callbacks map[uint64]func(payload any)
	bindings  map[key]map[uint64]struct{}
}

// New returns an empty dispatch table.
func New() *Table {
	return &Table{
		nextID:    1,
		callbacks: map[uint64]func(payload any){},
		bindings:  map[key]map[uint64]struct{}{},
	}
}

// Register inserts fn under the given scope/kind/filter and returns a fresh
// callback id usable with Unregister.
func (t *Table) Register(scope uint64, kind uint32, hasFilter bool, filter uint64, fn func(payload any)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.callbacks[id] = fn

	k := key{scope: scope, kind: kind, hasFilter: hasFilter, filter: filter}
	set, ok := t.bindings[k]
	if !ok {
		set = map[uint64]struct{}{}
		t.bindings[k] = set
	}
	set[id] = struct{}{}
	return id
}

// Unregister removes a callback id from the callback map. Dangling bindings
// referencing it are purged lazily on next dispatch.
func (t *Table) Unregister(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.callbacks, id)
}

// UnregisterScope removes every callback registered under scope (used when
// a device is destroyed).
func (t *Table) UnregisterScope(scope uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, set := range t.bindings {
		if k.scope != scope {
			continue
		}
		for id := range set {
			delete(t.callbacks, id)
		}
		delete(t.bindings, k)
	}
}

// Dispatch fans payload out to every live callback bound to (scope, kind)
// across four buckets, in the order spec §4.5 requires: scoped+filtered,
// scoped-only, global+filtered, global-only. hasFilter/filter select which
// filtered bucket is consulted; pass hasFilter=false to skip filtered
// buckets entirely.
func (t *Table) Dispatch(scope uint64, kind uint32, hasFilter bool, filter uint64, payload any) {
	buckets := []key{
		{scope: scope, kind: kind, hasFilter: false},
		{scope: 0, kind: kind, hasFilter: false},
	}
	if hasFilter {
		buckets = []key{
			{scope: scope, kind: kind, hasFilter: true, filter: filter},
			{scope: scope, kind: kind, hasFilter: false},
			{scope: 0, kind: kind, hasFilter: true, filter: filter},
			{scope: 0, kind: kind, hasFilter: false},
		}
	}

	for _, k := range buckets {
		t.dispatchBucket(k, payload)
	}
}

func (t *Table) dispatchBucket(k key, payload any) {
	t.mu.Lock()
	set, ok := t.bindings[k]
	if !ok || len(set) == 0 {
		t.mu.Unlock()
		return
	}
	var fns []func(payload any)
	var dead []uint64
	for id := range set {
		fn, ok := t.callbacks[id]
		if !ok {
			dead = append(dead, id)
			continue
		}
		fns = append(fns, fn)
	}
	for _, id := range dead {
		delete(set, id)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(payload)
	}
}
