package rdg

import (
	"github.com/lumengine/lumen/gpu"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// Driver is the seam between the graph and the GPU. The production
// implementation wraps a wgpu device/queue pair; tests install a
// recording fake.
type Driver interface {
	// Device returns the underlying wgpu device for executors that
	// build pipelines and bind groups. May be nil under test drivers.
	Device() *wgpu.Device

	CreateTexture(desc *wgpu.TextureDescriptor) Texture
	CreateBuffer(desc *wgpu.BufferDescriptor) Buffer

	NewEncoder(label string) Encoder

	// Submit hands finished command buffers to the GPU queue. Buffers
	// execute in submission order.
	Submit(buffers ...CommandBuffer)
}

// Texture is a driver-owned texture with its identity view.
type Texture interface {
	View() *wgpu.TextureView
	Release()
}

// Buffer is a driver-owned buffer.
type Buffer interface {
	Raw() *wgpu.Buffer
	Release()
}

// Encoder records GPU commands for one engine.
type Encoder interface {
	BeginRenderPass(desc *wgpu.RenderPassDescriptor) PassEncoder
	CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64)
	Finish(label string) CommandBuffer
	Release()
}

// PassEncoder records draw commands for one opened render pass.
type PassEncoder interface {
	// Raw exposes the wgpu pass encoder for draw calls. Nil under test
	// drivers.
	Raw() *wgpu.RenderPassEncoder
	End()
}

// CommandBuffer is a finished batch of GPU commands.
type CommandBuffer interface {
	Release()
}

// WGPUDriver drives a real wgpu device.
type WGPUDriver struct {
	ctx *gpu.Context
}

func NewWGPUDriver(ctx *gpu.Context) *WGPUDriver {
	return &WGPUDriver{ctx: ctx}
}

func (d *WGPUDriver) Device() *wgpu.Device {
	return d.ctx.Device
}

func (d *WGPUDriver) CreateTexture(desc *wgpu.TextureDescriptor) Texture {
	texture := d.ctx.Device.CreateTexture(desc)
	view := texture.CreateView(nil)

	return &wgpuTexture{texture: texture, view: view}
}

func (d *WGPUDriver) CreateBuffer(desc *wgpu.BufferDescriptor) Buffer {
	return &wgpuBuffer{buffer: d.ctx.Device.CreateBuffer(desc)}
}

func (d *WGPUDriver) NewEncoder(label string) Encoder {
	enc := d.ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})

	return &wgpuEncoder{enc: enc}
}

func (d *WGPUDriver) Submit(buffers ...CommandBuffer) {
	raw := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		raw = append(raw, b.(*wgpuCommandBuffer).buf)
	}

	d.ctx.Queue.Submit(raw...)

	for _, b := range buffers {
		b.Release()
	}
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *wgpuTexture) View() *wgpu.TextureView {
	return t.view
}

func (t *wgpuTexture) Release() {
	t.view.Release()
	t.texture.Release()
}

type wgpuBuffer struct {
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) Raw() *wgpu.Buffer {
	return b.buffer
}

func (b *wgpuBuffer) Release() {
	b.buffer.Release()
}

type wgpuEncoder struct {
	enc *wgpu.CommandEncoder
}

func (e *wgpuEncoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) PassEncoder {
	return &wgpuPassEncoder{pass: e.enc.BeginRenderPass(desc)}
}

func (e *wgpuEncoder) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64) {
	e.enc.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (e *wgpuEncoder) Finish(label string) CommandBuffer {
	return &wgpuCommandBuffer{buf: e.enc.Finish(&wgpu.CommandBufferDescriptor{Label: label})}
}

func (e *wgpuEncoder) Release() {
	e.enc.Release()
}

type wgpuPassEncoder struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuPassEncoder) Raw() *wgpu.RenderPassEncoder {
	return p.pass
}

func (p *wgpuPassEncoder) End() {
	p.pass.End()
}

type wgpuCommandBuffer struct {
	buf *wgpu.CommandBuffer
}

func (c *wgpuCommandBuffer) Release() {
	c.buf.Release()
}
