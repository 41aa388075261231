// Package window owns the GLFW window and its webgpu surface
// descriptor.
package window

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/lumengine/lumen/logx"
	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/oliverbestmann/webgpu/wgpuglfw"
	"github.com/pkg/profile"
)

type Options struct {
	Title  string
	Width  uint32
	Height uint32

	// Profile starts a CPU profile for the lifetime of the window.
	Profile bool
}

type Window struct {
	win  *glfw.Window
	prof interface{ Stop() }
}

func New(opts Options) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(int(opts.Width), int(opts.Height), opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()

		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{win: win}

	if opts.Profile {
		w.prof = profile.Start(profile.CPUProfile)
	}

	logx.L().Info("window created", "title", opts.Title, "width", opts.Width, "height", opts.Height)

	return w, nil
}

// SurfaceDescriptor returns the platform surface descriptor for the
// window, used to create the webgpu surface.
func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

func (w *Window) Size() (uint32, uint32) {
	width, height := w.win.GetSize()

	return uint32(width), uint32(height)
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// Run drives the frame loop until the window closes or the frame
// callback fails. Events are polled before every frame.
func (w *Window) Run(frame func() error) error {
	for !w.win.ShouldClose() {
		glfw.PollEvents()

		if err := frame(); err != nil {
			return err
		}
	}

	return nil
}

func (w *Window) Terminate() {
	if w.prof != nil {
		w.prof.Stop()
	}

	w.win.Destroy()
	glfw.Terminate()
}
