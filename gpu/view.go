package gpu

import (
	"fmt"

	"github.com/lumengine/lumen/logx"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// View manages the configured surface and hands out one frame at a
// time. Offscreen targets (depth, multisample color) are owned by the
// render graph, not by the view.
type View struct {
	*Context

	surfaceConfig *wgpu.SurfaceConfiguration
}

func NewView(ctx *Context, format wgpu.TextureFormat) *View {
	caps := ctx.Surface.GetCapabilities(ctx.Adapter)
	logx.L().Info("available surface formats", "formats", caps.Formats)

	return &View{
		Context: ctx,
		surfaceConfig: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      format,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],

			// try to reduce input latency
			DesiredMaximumFrameLatency: 1,
		},
	}
}

func (v *View) Format() wgpu.TextureFormat {
	return v.surfaceConfig.Format
}

func (v *View) Size() (width, height uint32) {
	return v.surfaceConfig.Width, v.surfaceConfig.Height
}

// Configure (re)configures the surface for the given size.
func (v *View) Configure(width, height uint32) {
	v.surfaceConfig.Width = width
	v.surfaceConfig.Height = height
	v.Surface.Configure(v.Device, v.surfaceConfig)
}

// Frame is one acquired swapchain texture with its identity view.
type Frame struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView

	surface *wgpu.Surface
}

// AcquireFrame gets the current surface texture. Call Present or
// Release on the returned frame.
func (v *View) AcquireFrame() (*Frame, error) {
	texture, err := v.Surface.TryGetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("get current texture: %w", err)
	}

	return &Frame{
		Texture: texture,
		View:    texture.CreateView(nil),
		surface: v.Surface,
	}, nil
}

// Present shows the frame and releases its view.
func (f *Frame) Present() {
	f.surface.Present()
	f.View.Release()
}

// Release drops the frame without presenting, for error paths.
func (f *Frame) Release() {
	f.View.Release()
	f.Texture.Release()
}
