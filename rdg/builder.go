package rdg

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lumengine/lumen/glm"
	"github.com/lumengine/lumen/logx"
	"github.com/oliverbestmann/webgpu/wgpu"
)

var ErrNoPresentTarget = errors.New("no present target set")
var ErrAliasCycle = errors.New("alias chain is cyclic or too deep")
var ErrUnknownResource = errors.New("pass references unknown resource")

// PresentTarget describes the swapchain surface the graph renders to.
type PresentTarget struct {
	Size   glm.Vec2u
	Format wgpu.TextureFormat
	Clear  *ClearValue
}

type passDecl interface {
	build() (*RenderPass, error)
}

// GraphBuilder accumulates resource declarations and passes, then
// compiles them into an executable Graph. Compile freezes the builder;
// mutating it afterwards panics. Compiling again yields a graph with
// identical resource numbering and pass order.
type GraphBuilder struct {
	name   string
	lastID ResourceID
	nodes  map[ResourceID]*ResourceNode

	passes  []passDecl
	msaa    uint32
	present *PresentTarget

	compiled bool
}

func NewGraphBuilder(name string) *GraphBuilder {
	return &GraphBuilder{
		name:   name,
		lastID: firstUserID,
		nodes:  map[ResourceID]*ResourceNode{},
		msaa:   1,
	}
}

func (b *GraphBuilder) ensureMutable() {
	if b.compiled {
		panic("graph builder mutated after compile")
	}
}

func (b *GraphBuilder) allocate(name string, ty ResourceType) ResourceID {
	b.ensureMutable()

	id := b.lastID
	b.lastID++

	b.nodes[id] = &ResourceNode{ID: id, Name: name, Ty: ty}

	return id
}

// AllocateTexture declares a graph-owned texture, materialized lazily
// on first use.
func (b *GraphBuilder) AllocateTexture(name string, info TextureInfo) ResourceID {
	return b.allocate(name, info)
}

// AllocateBuffer declares a graph-owned buffer.
func (b *GraphBuilder) AllocateBuffer(name string, info BufferInfo) ResourceID {
	return b.allocate(name, info)
}

// AliasResource declares a resource that reuses the backing object of
// target.
func (b *GraphBuilder) AliasResource(target ResourceID) ResourceID {
	return b.allocate("alias", AliasInfo{Target: target})
}

// ImportTexture declares a slot for an externally owned texture.
func (b *GraphBuilder) ImportTexture(name string) ResourceID {
	return b.allocate(name, ImportTextureInfo{})
}

// ImportBuffer declares a slot for an externally owned buffer.
func (b *GraphBuilder) ImportBuffer(name string) ResourceID {
	return b.allocate(name, ImportBufferInfo{})
}

// SetMSAA configures the sample count used when resolving default
// color targets. Levels above one make compile allocate a multisampled
// color target and wire resolve attachments into every pass using the
// default slot.
func (b *GraphBuilder) SetMSAA(samples uint32) {
	b.ensureMutable()

	if samples == 0 {
		samples = 1
	}

	b.msaa = samples
}

// SetPresentTarget reserves the default color/depth resources with the
// surface's size and format, so frame-time imports know the expected
// dimensions.
func (b *GraphBuilder) SetPresentTarget(size glm.Vec2u, format wgpu.TextureFormat, clear *ClearValue) {
	b.ensureMutable()

	b.present = &PresentTarget{Size: size, Format: format, Clear: clear}
}

// AddRenderPass appends a declared pass. Passes execute in declaration
// order; the builder performs no dependency sorting, ordering them
// correctly is the caller's contract.
func (b *GraphBuilder) AddRenderPass(pass *RenderPassBuilder) {
	b.ensureMutable()

	b.passes = append(b.passes, pass)
}

// AddClearPass appends a pass that only clears its declared targets.
func (b *GraphBuilder) AddClearPass(pass *ClearPassBuilder) {
	b.ensureMutable()

	b.passes = append(b.passes, pass)
}

// Compile validates the declarations and freezes them into an
// executable graph.
func (b *GraphBuilder) Compile() (*Graph, error) {
	if b.present == nil {
		return nil, fmt.Errorf("graph %q: %w", b.name, ErrNoPresentTarget)
	}

	nodes := b.finalNodes()

	if err := validateAliases(nodes); err != nil {
		return nil, fmt.Errorf("graph %q: %w", b.name, err)
	}

	passes := make([]*RenderPass, 0, len(b.passes)+1)
	hasDefault := false

	for _, decl := range b.passes {
		pass, err := decl.build()
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", b.name, err)
		}

		if err := validateClaims(pass, nodes); err != nil {
			return nil, fmt.Errorf("graph %q: %w", b.name, err)
		}

		b.rewireMSAA(pass)

		if pass.TargetsDefault() {
			hasDefault = true
		}

		passes = append(passes, pass)
	}

	// nothing draws to the surface, still clear and present it
	if !hasDefault && b.present.Clear != nil {
		clear, err := NewClearPassBuilder("present clear").
			RenderTarget(RenderTargetDescriptor{
				Colors: []ColorTargetDescriptor{
					{Prefer: DefaultAttachment(), Resolve: NoAttachment(), Ops: ResourceOps{Store: true}},
				},
			}).
			build()
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", b.name, err)
		}

		b.rewireMSAA(clear)
		passes = append([]*RenderPass{clear}, passes...)
	}

	b.compiled = true

	g := &Graph{
		id:       uuid.New(),
		name:     b.name,
		passes:   passes,
		registry: newRegistry(nodes),
		msaa:     b.msaa,
		present:  *b.present,
	}

	logx.L().Info("compiled render graph",
		"graph", g.name,
		"id", g.id,
		"passes", len(passes),
		"resources", len(nodes),
		"msaa", b.msaa)

	return g, nil
}

// finalNodes merges the user declarations with the reserved present
// target resources. With multisampling the default color target
// becomes a graph-owned multisampled texture and the swapchain view is
// imported into the resolve slot instead.
func (b *GraphBuilder) finalNodes() map[ResourceID]*ResourceNode {
	nodes := make(map[ResourceID]*ResourceNode, len(b.nodes)+3)
	for id, node := range b.nodes {
		nodes[id] = node
	}

	depthSamples := uint32(1)

	if b.msaa > 1 {
		depthSamples = b.msaa

		nodes[RTColorID] = &ResourceNode{
			ID:   RTColorID,
			Name: "back_buffer_msaa",
			Ty: TextureInfo{
				Size:        glm.Vec3u{b.present.Size[0], b.present.Size[1], 1},
				Format:      b.present.Format,
				SampleCount: b.msaa,
				Usage:       wgpu.TextureUsageRenderAttachment,
				Clear:       b.present.Clear,
			},
		}

		nodes[RTResolveID] = &ResourceNode{
			ID:   RTResolveID,
			Name: "back_buffer",
			Ty:   ImportTextureInfo{},
		}
	} else {
		nodes[RTColorID] = &ResourceNode{
			ID:   RTColorID,
			Name: "back_buffer",
			Ty:   ImportTextureInfo{Clear: b.present.Clear},
		}
	}

	nodes[RTDepthID] = &ResourceNode{
		ID:   RTDepthID,
		Name: "back_depth",
		Ty: TextureInfo{
			Size:        glm.Vec3u{b.present.Size[0], b.present.Size[1], 1},
			Format:      wgpu.TextureFormatDepth32Float,
			SampleCount: depthSamples,
			Usage:       wgpu.TextureUsageRenderAttachment,
			Clear:       ClearDepthStencil(1, 0),
		},
	}

	return nodes
}

// rewireMSAA wires a resolve attachment into every default color slot
// when multisampling is active. The slices are cloned first so that
// compiling the builder twice never mutates shared descriptor state.
func (b *GraphBuilder) rewireMSAA(pass *RenderPass) {
	if b.msaa <= 1 {
		return
	}

	colors := make([]ColorTargetDescriptor, len(pass.Targets.Colors))
	copy(colors, pass.Targets.Colors)

	for i := range colors {
		if colors[i].Prefer.Kind == AttachDefault && colors[i].Resolve.Kind == AttachNone {
			colors[i].Resolve = ResourceAttachment(RTResolveID)
		}
	}

	pass.Targets.Colors = colors
}

func validateAliases(nodes map[ResourceID]*ResourceNode) error {
	for id, node := range nodes {
		alias, ok := node.Ty.(AliasInfo)
		if !ok {
			continue
		}

		current := alias.Target
		for depth := 1; ; depth++ {
			if depth > aliasDepthLimit {
				return fmt.Errorf("%w: resource %d", ErrAliasCycle, id)
			}

			target, ok := nodes[current]
			if !ok {
				return fmt.Errorf("%w: alias %d targets %d", ErrUnknownResource, id, current)
			}

			next, ok := target.Ty.(AliasInfo)
			if !ok {
				break
			}

			current = next.Target
		}
	}

	return nil
}

func validateClaims(pass *RenderPass, nodes map[ResourceID]*ResourceNode) error {
	check := func(claims []ResourceClaim) error {
		for _, claim := range claims {
			if _, ok := nodes[claim.ID]; !ok {
				return fmt.Errorf("%w: pass %q claims %d", ErrUnknownResource, pass.Name, claim.ID)
			}
		}

		return nil
	}

	if err := check(pass.Inputs.Textures); err != nil {
		return err
	}
	if err := check(pass.Inputs.Buffers); err != nil {
		return err
	}
	if err := check(pass.Outputs.Textures); err != nil {
		return err
	}
	if err := check(pass.Outputs.Buffers); err != nil {
		return err
	}

	for _, c := range pass.Targets.Colors {
		if c.Prefer.Kind == AttachResource {
			if _, ok := nodes[c.Prefer.ID]; !ok {
				return fmt.Errorf("%w: pass %q targets %d", ErrUnknownResource, pass.Name, c.Prefer.ID)
			}
		}
	}

	if d := pass.Targets.Depth; d != nil && d.Prefer.Kind == AttachResource {
		if _, ok := nodes[d.Prefer.ID]; !ok {
			return fmt.Errorf("%w: pass %q targets %d", ErrUnknownResource, pass.Name, d.Prefer.ID)
		}
	}

	return nil
}
