package llvm

import (
	"fmt"
	"sync/atomic"
)

// handle is satisfied by every opaque handle category.
type handle interface {
	~uintptr
}

// ownedState is shared by every reference to one backend allocation.
type ownedState[H handle] struct {
	raw     H
	refs    atomic.Int64
	dispose func(H)
}

// Owned is one reference to a backend allocation that must be disposed
// exactly once. References are created by Acquire and Share and dropped
// by Release; the dispose function runs when the last one is dropped.
//
// Copying an *Owned copies the pointer, not the reference. Use Share to
// hand an independent reference to another owner.
type Owned[H handle] struct {
	state    *ownedState[H]
	released bool
}

// Acquire takes ownership of raw. dispose is called with raw once all
// references have been released. A nil raw handle is a programming error:
// creation calls that may fail must be checked before acquiring.
func Acquire[H handle](raw H, dispose func(H)) *Owned[H] {
	if raw == 0 {
		panic(fmt.Sprintf("llvm: acquire of nil %T", raw))
	}
	if dispose == nil {
		panic("llvm: acquire without dispose function")
	}
	st := &ownedState[H]{raw: raw, dispose: dispose}
	st.refs.Store(1)
	return &Owned[H]{state: st}
}

// Share returns a new reference to the same allocation.
func (o *Owned[H]) Share() *Owned[H] {
	if o == nil || o.released {
		panic("llvm: share of released handle")
	}
	o.state.refs.Add(1)
	return &Owned[H]{state: o.state}
}

// Release drops this reference. Releasing the same reference again is a
// no-op; other references stay valid until they are released too.
func (o *Owned[H]) Release() {
	if o == nil || o.released {
		return
	}
	o.released = true
	if o.state.refs.Add(-1) == 0 {
		o.state.dispose(o.state.raw)
	}
}

// Raw returns the handle for passing into foreign calls. Ownership is
// unaffected.
func (o *Owned[H]) Raw() H {
	if o == nil || o.released {
		panic("llvm: use of released handle")
	}
	return o.state.raw
}

// Refs reports how many live references share the allocation.
func (o *Owned[H]) Refs() int {
	if o == nil || o.state == nil {
		return 0
	}
	return int(o.state.refs.Load())
}

// Released reports whether this reference has been dropped.
func (o *Owned[H]) Released() bool {
	return o == nil || o.released
}
