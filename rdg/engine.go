package rdg

import (
	"github.com/oliverbestmann/webgpu/wgpu"
)

// CopyEngine scopes the staging/copy work of one pass. The command
// encoder is created on first use, so an engine that saw no work
// submits nothing on Close.
type CopyEngine struct {
	driver  Driver
	label   string
	encoder Encoder
	closed  bool
}

func newCopyEngine(driver Driver, label string) *CopyEngine {
	return &CopyEngine{driver: driver, label: label}
}

// Encoder returns the engine's command encoder, creating it on first
// use.
func (e *CopyEngine) Encoder() Encoder {
	if e.closed {
		panic("copy engine used after close: " + e.label)
	}

	if e.encoder == nil {
		e.encoder = e.driver.NewEncoder(e.label)
	}

	return e.encoder
}

// CopyBufferToBuffer records a buffer copy.
func (e *CopyEngine) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64) {
	e.Encoder().CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

// Close finishes and submits the accumulated copy commands. Closing an
// unused engine is a no-op.
func (e *CopyEngine) Close() {
	if e.closed {
		return
	}
	e.closed = true

	if e.encoder == nil {
		return
	}

	buf := e.encoder.Finish(e.label)
	e.encoder.Release()
	e.encoder = nil

	e.driver.Submit(buf)
}

// RenderEngine scopes the draw work of one pass. Begin opens a GPU
// render pass against the pass's resolved attachments; Close finishes
// and submits the accumulated commands. Engines are single-owner and
// must stay on the render thread.
type RenderEngine struct {
	driver     Driver
	backend    *GraphBackend
	pass       *RenderPass
	registry   *Registry
	forceClear bool

	encoder Encoder
	closed  bool
}

// Begin opens a render pass over the declared targets. The first write
// to a fresh backing resource applies its declared clear value; later
// opens load the previous contents. Callers must End the returned
// encoder before calling Begin again or Close.
func (e *RenderEngine) Begin() PassEncoder {
	if e.closed {
		panic("render engine used after close: " + e.pass.Name)
	}

	if e.encoder == nil {
		e.encoder = e.driver.NewEncoder(e.pass.Name)
	}

	desc := e.backend.renderPassDescriptor(e.pass, e.registry, e.forceClear)

	return e.encoder.BeginRenderPass(desc)
}

// Close finishes and submits the accumulated render commands. Closing
// an engine that never began a pass submits nothing.
func (e *RenderEngine) Close() {
	if e.closed {
		return
	}
	e.closed = true

	if e.encoder == nil {
		return
	}

	buf := e.encoder.Finish(e.pass.Name)
	e.encoder.Release()
	e.encoder = nil

	e.driver.Submit(buf)
}
