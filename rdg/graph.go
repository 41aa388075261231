package rdg

import (
	"github.com/google/uuid"
	"github.com/lumengine/lumen/logx"
)

// Graph is the compiled, executable form of a builder: an ordered pass
// list plus the registry resolving its virtual resources. Passes run
// strictly in declaration order; the graph performs no dependency
// sorting or barrier insertion, same-queue submission order carries
// the write-before-read guarantees.
type Graph struct {
	id       uuid.UUID
	name     string
	passes   []*RenderPass
	registry *Registry
	msaa     uint32
	present  PresentTarget
}

func (g *Graph) ID() uuid.UUID {
	return g.id
}

func (g *Graph) Name() string {
	return g.name
}

// Registry exposes the graph's resource registry, used to import the
// swapchain view before each execute.
func (g *Graph) Registry() *Registry {
	return g.registry
}

func (g *Graph) MSAA() uint32 {
	return g.msaa
}

func (g *Graph) Present() PresentTarget {
	return g.present
}

// Passes returns the compiled passes in execution order.
func (g *Graph) Passes() []*RenderPass {
	return g.passes
}

// ImportTargetID names the slot the frame driver must import the
// swapchain view into: the resolve slot when multisampling is active,
// the color slot otherwise.
func (g *Graph) ImportTargetID() ResourceID {
	if g.msaa > 1 {
		return RTResolveID
	}

	return RTColorID
}

// TargetsSurface reports whether any pass renders to the present
// target, meaning the graph must be rebuilt when the surface changes.
func (g *Graph) TargetsSurface() bool {
	for _, pass := range g.passes {
		if pass.TargetsDefault() {
			return true
		}
	}

	return false
}

// Execute runs every pass through its four lifecycle stages and
// submits the accumulated command buffers in pass order. parameter is
// handed opaquely to the executors.
func (g *Graph) Execute(backend *GraphBackend, parameter any) {
	g.registry.attach(backend)

	for _, pass := range g.passes {
		g.executePass(pass, backend, parameter)
	}
}

func (g *Graph) executePass(pass *RenderPass, backend *GraphBackend, parameter any) {
	ctx := &PassContext{
		Name:      pass.Name,
		Parameter: parameter,
		Registry:  g.registry,
		Driver:    backend.Driver(),
	}

	if pass.clearOnly {
		engine := backend.DispatchRenderWithClear(pass, g.registry)
		engine.Begin().End()
		engine.Close()

		return
	}

	executor := pass.executor.Acquire()
	defer pass.executor.Release()

	copyEngine := backend.DispatchCopy(pass)

	if !executor.Prepare(ctx, copyEngine) {
		copyEngine.Close()

		logx.L().Debug("pass skipped, clearing targets", "graph", g.name, "pass", pass.Name)

		// still apply the declared target ops so a skipped pass never
		// leaves stale content behind
		engine := backend.DispatchRender(pass, g.registry)
		engine.Begin().End()
		engine.Close()

		return
	}

	// copy work submits before any render work of this pass
	copyEngine.Close()

	executor.Queue(ctx)

	renderEngine := backend.DispatchRender(pass, g.registry)
	executor.Render(ctx, renderEngine)
	renderEngine.Close()

	executor.Cleanup(ctx)
}

// Release drops the registry's concrete resources. Call when the graph
// is rebuilt or discarded.
func (g *Graph) Release() {
	g.registry.Release()
}
