package rdg

import (
	"fmt"

	"github.com/lumengine/lumen/logx"
	"github.com/lumengine/lumen/rctx"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// GraphBackend creates concrete GPU resources for a graph and opens
// the copy/render engines that carry its command submission. Created
// resources are registered with the resource context so they are
// refcounted independently of any single graph.
type GraphBackend struct {
	driver Driver
	rctx   *rctx.Context
}

func NewGraphBackend(driver Driver, rc *rctx.Context) *GraphBackend {
	return &GraphBackend{driver: driver, rctx: rc}
}

func (b *GraphBackend) Driver() Driver {
	return b.driver
}

func (b *GraphBackend) Context() *rctx.Context {
	return b.rctx
}

// CreateResource materializes a declared texture or buffer. Asking for
// an import or alias node is a graph bug and panics.
func (b *GraphBackend) CreateResource(node *ResourceNode) *rctx.Handle {
	switch info := node.Ty.(type) {
	case TextureInfo:
		return b.createTexture(node.Name, info)

	case BufferInfo:
		buffer := b.driver.CreateBuffer(&wgpu.BufferDescriptor{
			Label: node.Name,
			Size:  info.Size,
			Usage: info.Usage,
		})

		logx.L().Debug("materialized buffer", "resource", node.Name, "size", info.Size)

		return b.rctx.RegisterBuffer(buffer.Raw(), buffer.Release)

	default:
		panic(fmt.Sprintf("create resource %q: type %T is not materializable", node.Name, node.Ty))
	}
}

func (b *GraphBackend) createTexture(name string, info TextureInfo) *rctx.Handle {
	samples := info.SampleCount
	if samples == 0 {
		samples = 1
	}

	dimension := wgpu.TextureDimension2D
	layers := info.Size[2]
	if layers == 0 {
		layers = 1
	}
	if layers > 1 {
		dimension = wgpu.TextureDimension3D
	}

	texture := b.driver.CreateTexture(&wgpu.TextureDescriptor{
		Label: name,
		Size: wgpu.Extent3D{
			Width:              info.Size[0],
			Height:             info.Size[1],
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     dimension,
		Format:        info.Format,
		Usage:         info.Usage,
	})

	logx.L().Debug("materialized texture",
		"resource", name,
		"width", info.Size[0], "height", info.Size[1],
		"format", info.Format, "samples", samples)

	return b.rctx.RegisterTexture(texture.View(), texture.Release)
}

// RemoveResource releases the backend's reference to a materialized
// resource.
func (b *GraphBackend) RemoveResource(handle *rctx.Handle) {
	handle.Release()
}

// DispatchCopy opens a copy engine scoped to one pass.
func (b *GraphBackend) DispatchCopy(pass *RenderPass) *CopyEngine {
	return newCopyEngine(b.driver, pass.Name)
}

// DispatchRender opens a render engine over the pass's declared
// targets.
func (b *GraphBackend) DispatchRender(pass *RenderPass, registry *Registry) *RenderEngine {
	return &RenderEngine{driver: b.driver, backend: b, pass: pass, registry: registry}
}

// DispatchRenderWithClear opens a render engine that applies the
// declared clear values unconditionally, regardless of whether the
// targets were written before.
func (b *GraphBackend) DispatchRenderWithClear(pass *RenderPass, registry *Registry) *RenderEngine {
	return &RenderEngine{driver: b.driver, backend: b, pass: pass, registry: registry, forceClear: true}
}

// renderPassDescriptor resolves the pass's attachment slots through
// the registry. Two parallel op tables exist per slot, one clearing
// and one load preserving; the clearing table applies on an explicit
// clear op, on the first write to the backing resource, or when the
// engine forces clears.
func (b *GraphBackend) renderPassDescriptor(pass *RenderPass, registry *Registry, forceClear bool) *wgpu.RenderPassDescriptor {
	desc := &wgpu.RenderPassDescriptor{
		Label: pass.Name,
	}

	for _, c := range pass.Targets.Colors {
		id, ok := c.Prefer.resolveID(RTColorID)
		if !ok {
			continue
		}

		handle, node := registry.GetUnderlying(id)
		res := handle.Resource()
		fresh := res.FirstWrite()

		att := wgpu.RenderPassColorAttachment{
			View:    res.TextureView(),
			StoreOp: storeOp(c.Ops.Store),
		}

		if rid, ok := c.Resolve.resolveID(RTResolveID); ok {
			resolveHandle, _ := registry.GetUnderlying(rid)
			resolveHandle.Resource().FirstWrite()
			att.ResolveTarget = resolveHandle.Resource().TextureView()
		}

		switch {
		case c.Ops.Load != nil:
			att.LoadOp = wgpu.LoadOpClear
			att.ClearValue = c.Ops.Load.Color

		case (forceClear || fresh) && node.DeclaredClear() != nil:
			att.LoadOp = wgpu.LoadOpClear
			att.ClearValue = node.DeclaredClear().Color

		default:
			att.LoadOp = wgpu.LoadOpLoad
		}

		desc.ColorAttachments = append(desc.ColorAttachments, att)
	}

	if depth := pass.Targets.Depth; depth != nil {
		if id, ok := depth.Prefer.resolveID(RTDepthID); ok {
			handle, node := registry.GetUnderlying(id)
			res := handle.Resource()
			fresh := res.FirstWrite()

			att := &wgpu.RenderPassDepthStencilAttachment{
				View:         res.TextureView(),
				DepthStoreOp: wgpu.StoreOpStore,
			}

			ops := depth.DepthOps

			switch {
			case ops != nil && ops.Load != nil:
				att.DepthLoadOp = wgpu.LoadOpClear
				att.DepthClearValue = ops.Load.Depth
				att.DepthStoreOp = storeOp(ops.Store)

			case (forceClear || fresh) && node.DeclaredClear() != nil:
				att.DepthLoadOp = wgpu.LoadOpClear
				att.DepthClearValue = node.DeclaredClear().Depth

			default:
				att.DepthLoadOp = wgpu.LoadOpLoad
				if ops != nil {
					att.DepthStoreOp = storeOp(ops.Store)
				}
			}

			desc.DepthStencilAttachment = att
		}
	}

	return desc
}

func storeOp(store bool) wgpu.StoreOp {
	if store {
		return wgpu.StoreOpStore
	}

	return wgpu.StoreOpDiscard
}
