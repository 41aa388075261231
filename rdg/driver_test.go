package rdg

import (
	"github.com/oliverbestmann/webgpu/wgpu"
)

// fakeDriver records created resources and submitted command buffers
// without touching a GPU. Texture views are distinct sentinel pointers
// so attachment wiring can be asserted by identity.
type fakeDriver struct {
	createdTextures []string
	createdBuffers  []string

	// texture views by descriptor label, for attachment identity checks
	views map[string]*wgpu.TextureView

	// submitted command buffers in queue order
	submitted []*fakeCommandBuffer
}

func (d *fakeDriver) Device() *wgpu.Device {
	return nil
}

func (d *fakeDriver) CreateTexture(desc *wgpu.TextureDescriptor) Texture {
	d.createdTextures = append(d.createdTextures, desc.Label)

	view := new(wgpu.TextureView)
	if d.views == nil {
		d.views = map[string]*wgpu.TextureView{}
	}
	d.views[desc.Label] = view

	return &fakeTexture{view: view}
}

func (d *fakeDriver) CreateBuffer(desc *wgpu.BufferDescriptor) Buffer {
	d.createdBuffers = append(d.createdBuffers, desc.Label)

	return &fakeBuffer{}
}

func (d *fakeDriver) NewEncoder(label string) Encoder {
	return &fakeEncoder{label: label}
}

func (d *fakeDriver) Submit(buffers ...CommandBuffer) {
	for _, b := range buffers {
		d.submitted = append(d.submitted, b.(*fakeCommandBuffer))
	}
}

func (d *fakeDriver) submittedLabels() []string {
	labels := make([]string, 0, len(d.submitted))
	for _, b := range d.submitted {
		labels = append(labels, b.label)
	}

	return labels
}

type fakeTexture struct {
	view     *wgpu.TextureView
	released bool
}

func (t *fakeTexture) View() *wgpu.TextureView {
	return t.view
}

func (t *fakeTexture) Release() {
	t.released = true
}

type fakeBuffer struct {
	released bool
}

func (b *fakeBuffer) Raw() *wgpu.Buffer {
	return nil
}

func (b *fakeBuffer) Release() {
	b.released = true
}

type fakeEncoder struct {
	label  string
	passes []*wgpu.RenderPassDescriptor
	copies int
}

func (e *fakeEncoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) PassEncoder {
	e.passes = append(e.passes, desc)

	return &fakePassEncoder{}
}

func (e *fakeEncoder) CopyBufferToBuffer(_ *wgpu.Buffer, _ uint64, _ *wgpu.Buffer, _, _ uint64) {
	e.copies++
}

func (e *fakeEncoder) Finish(label string) CommandBuffer {
	return &fakeCommandBuffer{label: label, passes: e.passes, copies: e.copies}
}

func (e *fakeEncoder) Release() {}

type fakePassEncoder struct {
	ended bool
}

func (p *fakePassEncoder) Raw() *wgpu.RenderPassEncoder {
	return nil
}

func (p *fakePassEncoder) End() {
	p.ended = true
}

type fakeCommandBuffer struct {
	label  string
	passes []*wgpu.RenderPassDescriptor
	copies int
}

func (c *fakeCommandBuffer) Release() {}
