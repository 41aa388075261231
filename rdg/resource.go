// Package rdg implements the render dependency graph: an ordered list
// of render/compute passes operating over virtual GPU resources.
// Virtual resources are declared on a builder, resolved lazily into
// concrete textures and buffers during execution, and may alias each
// other to reuse GPU memory across passes.
package rdg

import (
	"github.com/lumengine/lumen/glm"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// ResourceID names a virtual resource within one graph. IDs are only
// meaningful together with the registry of the graph that issued them.
type ResourceID uint32

// Reserved IDs for the present targets. The windowing layer injects
// the live swapchain view into the color slot (or the resolve slot
// when multisampling is active) before every execute.
const (
	RTColorID ResourceID = iota
	RTResolveID
	RTDepthID

	firstUserID
)

// ClearValue carries the clear constants for one attachment.
type ClearValue struct {
	Color   wgpu.Color
	Depth   float32
	Stencil uint32
}

// ClearColor returns a clear value for a color attachment.
func ClearColor(c wgpu.Color) *ClearValue {
	return &ClearValue{Color: c}
}

// ClearDepthStencil returns a clear value for a depth/stencil attachment.
func ClearDepthStencil(depth float32, stencil uint32) *ClearValue {
	return &ClearValue{Depth: depth, Stencil: stencil}
}

// ResourceOps declares the load/store behavior of one attachment slot.
// A nil Load preserves the previous contents; the declared clear of the
// backing resource still applies the first time the concrete object is
// written.
type ResourceOps struct {
	Load  *ClearValue
	Store bool
}

// ResourceUsage tags how a pass touches a declared resource. The
// declaration is a documented contract; the graph does not verify the
// pass against it at render time.
type ResourceUsage uint8

const (
	UsageTextureRead ResourceUsage = iota
	UsageTextureWrite
	UsageTextureReadWrite
	UsageBufferRead
	UsagePipelineBuffer
	UsageRenderTargetRead
	UsageRenderTargetWrite
)

// ResourceClaim is one declared input or output of a pass.
type ResourceClaim struct {
	ID    ResourceID
	Usage ResourceUsage
}

// PassParameter lists the declared texture and buffer claims of a pass.
type PassParameter struct {
	Textures []ResourceClaim
	Buffers  []ResourceClaim
}

// ResourceType describes what a virtual resource resolves to. The set
// of variants is closed.
type ResourceType interface {
	isResourceType()
}

// TextureInfo declares a graph-owned texture. Size z > 1 declares a
// layered 3D texture.
type TextureInfo struct {
	Size        glm.Vec3u
	Format      wgpu.TextureFormat
	SampleCount uint32
	Usage       wgpu.TextureUsage
	Clear       *ClearValue
}

// BufferInfo declares a graph-owned buffer.
type BufferInfo struct {
	Size  uint64
	Usage wgpu.BufferUsage
}

// ImportTextureInfo declares a slot for an externally owned texture,
// injected per frame through Registry.Import.
type ImportTextureInfo struct {
	Clear *ClearValue
}

// ImportBufferInfo declares a slot for an externally owned buffer.
type ImportBufferInfo struct{}

// AliasInfo makes a resource a pure redirect to another one, reusing
// the target's backing object without a new allocation.
type AliasInfo struct {
	Target ResourceID
}

func (TextureInfo) isResourceType()       {}
func (BufferInfo) isResourceType()        {}
func (ImportTextureInfo) isResourceType() {}
func (ImportBufferInfo) isResourceType()  {}
func (AliasInfo) isResourceType()         {}

// ResourceNode is one declared virtual resource. Nodes are owned by
// the registry of their graph.
type ResourceNode struct {
	ID   ResourceID
	Name string
	Ty   ResourceType
}

// DeclaredClear returns the clear value declared for the resource, or
// nil when it has none.
func (n *ResourceNode) DeclaredClear() *ClearValue {
	switch ty := n.Ty.(type) {
	case TextureInfo:
		return ty.Clear
	case ImportTextureInfo:
		return ty.Clear
	}

	return nil
}
