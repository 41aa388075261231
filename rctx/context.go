// Package rctx implements the engine-wide resource context: a reference
// counted registry mapping opaque integer IDs to concrete GPU objects.
// Resources registered here outlive any single frame graph and are
// destroyed once the last handle is released.
package rctx

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/oliverbestmann/webgpu/wgpu"
)

// Kind identifies the concrete GPU object held by a Ref.
type Kind uint8

const (
	KindTexture Kind = iota
	KindBuffer
	KindPipeline
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindBuffer:
		return "buffer"
	case KindPipeline:
		return "pipeline"
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Ref is a registered concrete GPU object. The accessors panic when
// called for the wrong kind, surfacing lifetime and wiring bugs at the
// call site instead of corrupting state further down.
type Ref struct {
	id   uint64
	kind Kind

	view     *wgpu.TextureView
	buffer   *wgpu.Buffer
	pipeline *wgpu.RenderPipeline

	destroy func()
	written atomic.Bool
}

func (r *Ref) ID() uint64 {
	return r.id
}

func (r *Ref) Kind() Kind {
	return r.kind
}

func (r *Ref) TextureView() *wgpu.TextureView {
	if r.kind != KindTexture {
		panic(fmt.Sprintf("resource %d is a %s, not a texture", r.id, r.kind))
	}

	return r.view
}

func (r *Ref) Buffer() *wgpu.Buffer {
	if r.kind != KindBuffer {
		panic(fmt.Sprintf("resource %d is a %s, not a buffer", r.id, r.kind))
	}

	return r.buffer
}

func (r *Ref) Pipeline() *wgpu.RenderPipeline {
	if r.kind != KindPipeline {
		panic(fmt.Sprintf("resource %d is a %s, not a pipeline", r.id, r.kind))
	}

	return r.pipeline
}

// FirstWrite marks the resource as written and reports whether it was
// untouched before this call. Render dispatch uses this to decide
// between the clearing and the load preserving attachment ops.
func (r *Ref) FirstWrite() bool {
	return !r.written.Swap(true)
}

type entry struct {
	refs int64
	res  *Ref
}

// Context is the process-wide refcounted resource table. All methods
// are safe for concurrent use; handles may be cloned and released from
// any goroutine.
type Context struct {
	lastResID      atomic.Uint64
	lastObjectID   atomic.Uint64
	lastMaterialID atomic.Uint64
	lastPSOID      atomic.Uint64

	mu  sync.RWMutex
	res map[uint64]*entry
}

func New() *Context {
	return &Context{
		res: map[uint64]*entry{},
	}
}

// AllocObjectID hands out a new scene object ID. IDs are monotonic and
// never reused; 0 stays invalid.
func (c *Context) AllocObjectID() uint64 {
	return c.lastObjectID.Add(1)
}

func (c *Context) AllocMaterialID() uint64 {
	return c.lastMaterialID.Add(1)
}

func (c *Context) AllocPSOID() uint64 {
	return c.lastPSOID.Add(1)
}

// RegisterTexture registers a texture view with an initial refcount of
// one. destroy runs exactly once, when the last handle is released, and
// may be nil for externally owned objects such as swapchain views.
func (c *Context) RegisterTexture(view *wgpu.TextureView, destroy func()) *Handle {
	return c.register(&Ref{kind: KindTexture, view: view, destroy: destroy})
}

func (c *Context) RegisterBuffer(buffer *wgpu.Buffer, destroy func()) *Handle {
	return c.register(&Ref{kind: KindBuffer, buffer: buffer, destroy: destroy})
}

func (c *Context) RegisterPipeline(pipeline *wgpu.RenderPipeline, destroy func()) *Handle {
	return c.register(&Ref{kind: KindPipeline, pipeline: pipeline, destroy: destroy})
}

func (c *Context) register(ref *Ref) *Handle {
	ref.id = c.lastResID.Add(1)

	c.mu.Lock()
	c.res[ref.id] = &entry{refs: 1, res: ref}
	c.mu.Unlock()

	return &Handle{id: ref.id, ctx: c}
}

// AddRef increments the refcount of a live resource.
func (c *Context) AddRef(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.res[id]
	if !ok {
		panic(fmt.Sprintf("add ref on unknown or destroyed resource %d", id))
	}

	e.refs++
}

// Deref decrements the refcount. Reaching zero removes the resource
// from the table and runs its destroy hook.
func (c *Context) Deref(id uint64) {
	c.mu.Lock()

	e, ok := c.res[id]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("deref on unknown or destroyed resource %d", id))
	}

	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return
	}

	delete(c.res, id)
	c.mu.Unlock()

	if e.res.destroy != nil {
		e.res.destroy()
	}
}

// GetResource returns the concrete object for a live resource ID.
// Asking for an unknown or destroyed ID is a programming error and
// panics immediately.
func (c *Context) GetResource(id uint64) *Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.res[id]
	if !ok {
		panic(fmt.Sprintf("get resource %d: unknown or already destroyed", id))
	}

	return e.res
}

// Len reports the number of live resources.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.res)
}
