// Package idalloc provides a process-unique, monotonically increasing
// identifier source. Zero is reserved as the sentinel/global identifier and
// is never returned by Reserve.
package idalloc

import "sync/atomic"

// Allocator hands out unique, never-repeating, never-zero uint64 values.
// The zero value of Allocator is ready to use.
type Allocator struct {
	next atomic.Uint64
}

// Reserve returns the next identifier and advances the counter. Safe for
// concurrent use.
func (a *Allocator) Reserve() uint64 {
	return a.next.Add(1)
}
