package rdg

import (
	"errors"
	"fmt"
	"sync"
)

// Executor is the polymorphic unit of work behind a pass. The graph
// drives it through the four lifecycle stages per frame, in order:
// Prepare (staging uploads), Queue (bind groups, pipeline lookups),
// Render (draw calls) and Cleanup (per-frame scratch state).
//
// Prepare returning false skips the remaining stages this frame; the
// graph still clears the pass's declared targets so a skipped pass
// never leaves stale content on screen.
type Executor interface {
	Prepare(ctx *PassContext, engine *CopyEngine) bool
	Queue(ctx *PassContext)
	Render(ctx *PassContext, engine *RenderEngine)
	Cleanup(ctx *PassContext)
}

// SharedExecutor guards an executor with a lock so that setup code
// holding a reference and the executing graph never race. The graph
// holds the lock across all four stages of one pass execution.
type SharedExecutor struct {
	mu    sync.Mutex
	inner Executor
}

func ShareExecutor(e Executor) *SharedExecutor {
	return &SharedExecutor{inner: e}
}

// Acquire locks the executor and returns it. Callers must pair it with
// Release.
func (s *SharedExecutor) Acquire() Executor {
	s.mu.Lock()

	return s.inner
}

func (s *SharedExecutor) Release() {
	s.mu.Unlock()
}

// PassContext is handed to executors during every stage of one pass.
type PassContext struct {
	// Name of the executing pass.
	Name string

	// Parameter is the opaque per-frame value given to Graph.Execute,
	// typically the frame's render sources.
	Parameter any

	// Registry resolves the pass's declared resources.
	Registry *Registry

	// Driver reaches the GPU device for bind group and pipeline setup.
	Driver Driver
}

// RenderPass is one compiled pass of a graph.
type RenderPass struct {
	Name      string
	Technique string

	Inputs  PassParameter
	Outputs PassParameter
	Targets RenderTargetDescriptor

	executor *SharedExecutor

	// clearOnly passes carry no executor and only apply their declared
	// attachment ops.
	clearOnly bool
}

// TargetsDefault reports whether the pass renders to the present
// target.
func (p *RenderPass) TargetsDefault() bool {
	return p.Targets.HasDefault()
}

// RenderPassBuilder declares one pass for a graph.
type RenderPassBuilder struct {
	name      string
	technique string
	inputs    PassParameter
	outputs   PassParameter
	targets   *RenderTargetDescriptor
	executor  *SharedExecutor
}

func NewRenderPassBuilder(name string) *RenderPassBuilder {
	return &RenderPassBuilder{name: name}
}

// ReadTexture declares a texture the pass samples from.
func (b *RenderPassBuilder) ReadTexture(id ResourceID) *RenderPassBuilder {
	b.inputs.Textures = append(b.inputs.Textures, ResourceClaim{ID: id, Usage: UsageTextureRead})

	return b
}

// WriteTexture declares a texture the pass writes to.
func (b *RenderPassBuilder) WriteTexture(id ResourceID) *RenderPassBuilder {
	b.outputs.Textures = append(b.outputs.Textures, ResourceClaim{ID: id, Usage: UsageTextureWrite})

	return b
}

// ReadWriteTexture declares a texture the pass both reads and writes.
func (b *RenderPassBuilder) ReadWriteTexture(id ResourceID) *RenderPassBuilder {
	b.inputs.Textures = append(b.inputs.Textures, ResourceClaim{ID: id, Usage: UsageTextureReadWrite})
	b.outputs.Textures = append(b.outputs.Textures, ResourceClaim{ID: id, Usage: UsageTextureReadWrite})

	return b
}

// ReadBuffer declares a buffer the pass reads.
func (b *RenderPassBuilder) ReadBuffer(id ResourceID) *RenderPassBuilder {
	b.inputs.Buffers = append(b.inputs.Buffers, ResourceClaim{ID: id, Usage: UsageBufferRead})

	return b
}

// SetTechnique names the shader technique the pass renders with.
func (b *RenderPassBuilder) SetTechnique(name string) *RenderPassBuilder {
	b.technique = name

	return b
}

// AsyncExecute installs the shared executor driving the pass.
func (b *RenderPassBuilder) AsyncExecute(executor *SharedExecutor) *RenderPassBuilder {
	b.executor = executor

	return b
}

// RenderTarget declares the pass's attachments.
func (b *RenderPassBuilder) RenderTarget(desc RenderTargetDescriptor) *RenderPassBuilder {
	b.targets = &desc

	return b
}

// DefaultColorDepthTarget binds the pass to the present color and
// depth targets with load preserving ops.
func (b *RenderPassBuilder) DefaultColorDepthTarget() *RenderPassBuilder {
	return b.RenderTarget(RenderTargetDescriptor{
		Colors: []ColorTargetDescriptor{
			{
				Prefer:  DefaultAttachment(),
				Resolve: NoAttachment(),
				Ops:     ResourceOps{Store: true},
			},
		},
		Depth: &DepthTargetDescriptor{
			Prefer:   DefaultAttachment(),
			DepthOps: &ResourceOps{Store: true},
		},
	})
}

var errNoExecutor = errors.New("pass declares no executor")
var errNoTargets = errors.New("pass declares no render targets")

func (b *RenderPassBuilder) build() (*RenderPass, error) {
	if b.executor == nil {
		return nil, fmt.Errorf("pass %q: %w", b.name, errNoExecutor)
	}

	if b.targets == nil {
		return nil, fmt.Errorf("pass %q: %w", b.name, errNoTargets)
	}

	return &RenderPass{
		Name:      b.name,
		Technique: b.technique,
		Inputs:    b.inputs,
		Outputs:   b.outputs,
		Targets:   *b.targets,
		executor:  b.executor,
	}, nil
}

// ClearPassBuilder declares a pass that only applies the clear ops of
// its render target descriptor, with no executor behind it.
type ClearPassBuilder struct {
	name    string
	targets *RenderTargetDescriptor
}

func NewClearPassBuilder(name string) *ClearPassBuilder {
	return &ClearPassBuilder{name: name}
}

func (b *ClearPassBuilder) RenderTarget(desc RenderTargetDescriptor) *ClearPassBuilder {
	b.targets = &desc

	return b
}

func (b *ClearPassBuilder) build() (*RenderPass, error) {
	if b.targets == nil {
		return nil, fmt.Errorf("clear pass %q: %w", b.name, errNoTargets)
	}

	return &RenderPass{
		Name:      b.name,
		Targets:   *b.targets,
		clearOnly: true,
	}, nil
}
