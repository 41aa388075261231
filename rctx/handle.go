package rctx

import (
	"fmt"
	"sync/atomic"
)

// Handle is a refcounted reference to a resource registered in a
// Context. Clone increments the shared refcount, Release decrements
// it. The underlying GPU object is destroyed when the last handle is
// released.
type Handle struct {
	id       uint64
	ctx      *Context
	released atomic.Bool
}

func (h *Handle) ID() uint64 {
	return h.id
}

func (h *Handle) Context() *Context {
	return h.ctx
}

// Clone returns a new handle to the same resource.
func (h *Handle) Clone() *Handle {
	if h.released.Load() {
		panic(fmt.Sprintf("clone of released handle for resource %d", h.id))
	}

	h.ctx.AddRef(h.id)

	return &Handle{id: h.id, ctx: h.ctx}
}

// Release gives up this handle. Releasing the same handle twice panics.
func (h *Handle) Release() {
	if h.released.Swap(true) {
		panic(fmt.Sprintf("handle for resource %d released twice", h.id))
	}

	h.ctx.Deref(h.id)
}

// Resource resolves the handle to its concrete object.
func (h *Handle) Resource() *Ref {
	return h.ctx.GetResource(h.id)
}
