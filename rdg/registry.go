package rdg

import (
	"fmt"
	"sync"

	"github.com/lumengine/lumen/rctx"
)

// aliasDepthLimit bounds alias chain traversal. Compile rejects longer
// chains, so hitting the limit at resolution time is a registry bug.
const aliasDepthLimit = 4

// Registry is the per-graph table of virtual resources. It resolves
// IDs to concrete GPU objects, materializing graph-owned textures and
// buffers lazily on first access and caching them for the life of the
// registry.
type Registry struct {
	mu sync.Mutex

	nodes map[ResourceID]*ResourceNode

	// concrete holds lazily materialized and imported resources
	concrete map[ResourceID]*rctx.Handle

	creator resourceCreator
}

// resourceCreator materializes a declared resource into a concrete,
// refcounted GPU object. Implemented by GraphBackend.
type resourceCreator interface {
	CreateResource(node *ResourceNode) *rctx.Handle
}

func newRegistry(nodes map[ResourceID]*ResourceNode) *Registry {
	return &Registry{
		nodes:    nodes,
		concrete: map[ResourceID]*rctx.Handle{},
	}
}

// Import binds an externally owned concrete object to a declared
// import slot for the duration of the frame, transferring one
// reference to the registry. Re-importing releases the previously held
// reference. Importing into an unknown or non-import slot panics.
func (r *Registry) Import(id ResourceID, handle *rctx.Handle) {
	r.mu.Lock()

	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		panic(fmt.Sprintf("import into unknown resource %d", id))
	}

	switch node.Ty.(type) {
	case ImportTextureInfo, ImportBufferInfo:
	default:
		r.mu.Unlock()
		panic(fmt.Sprintf("import into resource %d (%s), which is not an import slot", id, node.Name))
	}

	prev := r.concrete[id]
	r.concrete[id] = handle
	r.mu.Unlock()

	if prev != nil && prev != handle {
		prev.Release()
	}
}

// Deregister drops the concrete binding of a resource, releasing the
// registry's reference to it.
func (r *Registry) Deregister(id ResourceID) {
	r.mu.Lock()
	handle, ok := r.concrete[id]
	delete(r.concrete, id)
	r.mu.Unlock()

	if ok && handle != nil {
		handle.Release()
	}
}

// Node returns the declared descriptor of a resource.
func (r *Registry) Node(id ResourceID) (*ResourceNode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[id]

	return node, ok
}

// GetUnderlying resolves a virtual resource to its concrete object and
// final (non-alias) descriptor. Aliases are followed to their target;
// graph-owned textures and buffers materialize on first access; an
// import slot that was not supplied this frame panics, naming the
// resource, since the frame driver forgot to inject it.
func (r *Registry) GetUnderlying(id ResourceID) (*rctx.Handle, *ResourceNode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.resolveLocked(id, 0)
}

func (r *Registry) resolveLocked(id ResourceID, depth int) (*rctx.Handle, *ResourceNode) {
	if depth > aliasDepthLimit {
		panic(fmt.Sprintf("alias chain for resource %d exceeds depth %d", id, aliasDepthLimit))
	}

	node, ok := r.nodes[id]
	if !ok {
		panic(fmt.Sprintf("resolve unknown resource %d", id))
	}

	switch ty := node.Ty.(type) {
	case AliasInfo:
		return r.resolveLocked(ty.Target, depth+1)

	case ImportTextureInfo, ImportBufferInfo:
		handle, ok := r.concrete[node.ID]
		if !ok {
			panic(fmt.Sprintf("resource %q (%d) was not imported before use", node.Name, node.ID))
		}

		return handle, node

	default:
		if handle, ok := r.concrete[node.ID]; ok {
			return handle, node
		}

		if r.creator == nil {
			panic(fmt.Sprintf("resource %q (%d) needs materialization outside of execute", node.Name, node.ID))
		}

		handle := r.creator.CreateResource(node)
		r.concrete[node.ID] = handle

		return handle, node
	}
}

// Release drops all concrete bindings held by the registry. Called
// when the graph is rebuilt or discarded.
func (r *Registry) Release() {
	r.mu.Lock()
	handles := make([]*rctx.Handle, 0, len(r.concrete))
	for id, handle := range r.concrete {
		if handle != nil {
			handles = append(handles, handle)
		}
		delete(r.concrete, id)
	}
	r.mu.Unlock()

	for _, handle := range handles {
		handle.Release()
	}
}

func (r *Registry) attach(creator resourceCreator) {
	r.mu.Lock()
	r.creator = creator
	r.mu.Unlock()
}
