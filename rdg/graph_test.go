package rdg

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lumengine/lumen/glm"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// recordingExecutor logs its lifecycle stages and renders a single
// empty pass, which is enough to drive command buffer submission.
type recordingExecutor struct {
	log  []string
	skip bool
}

func (e *recordingExecutor) Prepare(_ *PassContext, _ *CopyEngine) bool {
	e.log = append(e.log, "prepare")

	return !e.skip
}

func (e *recordingExecutor) Queue(_ *PassContext) {
	e.log = append(e.log, "queue")
}

func (e *recordingExecutor) Render(_ *PassContext, engine *RenderEngine) {
	e.log = append(e.log, "render")

	engine.Begin().End()
}

func (e *recordingExecutor) Cleanup(_ *PassContext) {
	e.log = append(e.log, "cleanup")
}

func drawPass(name string, exec Executor) *RenderPassBuilder {
	return NewRenderPassBuilder(name).
		AsyncExecute(ShareExecutor(exec)).
		DefaultColorDepthTarget()
}

func importSwapchain(g *Graph, backend *GraphBackend) *wgpu.TextureView {
	view := new(wgpu.TextureView)
	g.Registry().Import(g.ImportTargetID(), backend.Context().RegisterTexture(view, nil))

	return view
}

func TestPassesExecuteInDeclarationOrder(t *testing.T) {
	execs := []*recordingExecutor{{}, {}, {}}

	g, driver, backend := compiled(t, func(b *GraphBuilder) {
		b.AddRenderPass(drawPass("shadow", execs[0]))
		b.AddRenderPass(drawPass("opaque", execs[1]))
		b.AddRenderPass(drawPass("overlay", execs[2]))
	})

	importSwapchain(g, backend)
	g.Execute(backend, nil)

	want := []string{"shadow", "opaque", "overlay"}
	if got := driver.submittedLabels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("submitted %v, want %v", got, want)
	}
}

func TestExecutorStageOrder(t *testing.T) {
	exec := &recordingExecutor{}

	g, _, backend := compiled(t, func(b *GraphBuilder) {
		b.AddRenderPass(drawPass("opaque", exec))
	})

	importSwapchain(g, backend)
	g.Execute(backend, nil)

	want := []string{"prepare", "queue", "render", "cleanup"}
	if !reflect.DeepEqual(exec.log, want) {
		t.Fatalf("stages %v, want %v", exec.log, want)
	}
}

func TestSkippedPassStillAppliesTargetOps(t *testing.T) {
	exec := &recordingExecutor{skip: true}

	g, driver, backend := compiled(t, func(b *GraphBuilder) {
		b.AddRenderPass(drawPass("opaque", exec))
	})

	importSwapchain(g, backend)
	g.Execute(backend, nil)

	if want := []string{"prepare"}; !reflect.DeepEqual(exec.log, want) {
		t.Fatalf("stages %v, want %v", exec.log, want)
	}

	if len(driver.submitted) != 1 {
		t.Fatalf("submitted %d buffers, want 1", len(driver.submitted))
	}

	passes := driver.submitted[0].passes
	if len(passes) != 1 || len(passes[0].ColorAttachments) != 1 {
		t.Fatalf("expected one render pass with one color attachment")
	}

	if passes[0].ColorAttachments[0].LoadOp != wgpu.LoadOpClear {
		t.Fatalf("skipped pass did not clear its color target")
	}
}

func TestResolveTargetWiredForMultisampling(t *testing.T) {
	exec := &recordingExecutor{}

	g, driver, backend := compiled(t, func(b *GraphBuilder) {
		b.SetMSAA(4)
		b.AddRenderPass(drawPass("opaque", exec))
	})

	if g.ImportTargetID() != RTResolveID {
		t.Fatalf("import target is %d, want the resolve slot", g.ImportTargetID())
	}

	pass := g.Passes()[0]
	resolve := pass.Targets.Colors[0].Resolve
	if resolve.Kind != AttachResource || resolve.ID != RTResolveID {
		t.Fatalf("resolve attachment is %+v, want the resolve slot", resolve)
	}

	swapchain := importSwapchain(g, backend)
	g.Execute(backend, nil)

	if len(driver.submitted) != 1 {
		t.Fatalf("submitted %d buffers, want 1", len(driver.submitted))
	}

	att := driver.submitted[0].passes[0].ColorAttachments[0]

	if att.ResolveTarget != swapchain {
		t.Fatalf("resolve target is not the imported swapchain view")
	}

	if att.View != driver.views["back_buffer_msaa"] {
		t.Fatalf("color view is not the multisampled back buffer")
	}
}

func TestRepeatedCompilationIsDeterministic(t *testing.T) {
	declare := func() *GraphBuilder {
		b := NewGraphBuilder("frame")
		b.SetPresentTarget(glm.Vec2u{800, 600}, wgpu.TextureFormatBGRA8Unorm, ClearColor(wgpu.Color{A: 1}))
		b.AllocateTexture("shadow_map", testTextureInfo())
		b.AllocateBuffer("instances", BufferInfo{Size: 256, Usage: wgpu.BufferUsageStorage})
		b.AddRenderPass(drawPass("opaque", &recordingExecutor{}))
		b.AddRenderPass(drawPass("overlay", &recordingExecutor{}))

		return b
	}

	g1, err := declare().Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	g2, err := declare().Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	names := func(g *Graph) []string {
		out := make([]string, 0, len(g.Passes()))
		for _, p := range g.Passes() {
			out = append(out, p.Name)
		}

		return out
	}

	if !reflect.DeepEqual(names(g1), names(g2)) {
		t.Fatalf("pass order differs: %v vs %v", names(g1), names(g2))
	}

	for id := ResourceID(0); id < firstUserID+2; id++ {
		n1, ok1 := g1.Registry().Node(id)
		n2, ok2 := g2.Registry().Node(id)

		if ok1 != ok2 {
			t.Fatalf("resource %d exists in only one graph", id)
		}
		if ok1 && n1.Name != n2.Name {
			t.Fatalf("resource %d named %q vs %q", id, n1.Name, n2.Name)
		}
	}
}

func TestClearsFirstFrameLoadsSecond(t *testing.T) {
	build := func() (*Graph, *fakeDriver, *GraphBackend) {
		return compiled(t, func(b *GraphBuilder) {
			b.AddRenderPass(drawPass("opaque", &recordingExecutor{}))
		})
	}

	g1, driver1, backend := build()

	// both frames present into the same persistent offscreen texture
	swapchain := backend.Context().RegisterTexture(new(wgpu.TextureView), nil)

	g1.Registry().Import(g1.ImportTargetID(), swapchain.Clone())
	g1.Execute(backend, nil)

	if len(driver1.submitted) != 1 {
		t.Fatalf("frame 1 submitted %d buffers, want 1", len(driver1.submitted))
	}

	att := driver1.submitted[0].passes[0].ColorAttachments[0]
	if att.LoadOp != wgpu.LoadOpClear {
		t.Fatalf("frame 1 color load op is %v, want clear", att.LoadOp)
	}
	if att.ClearValue != (wgpu.Color{A: 1}) {
		t.Fatalf("frame 1 cleared to %+v, want declared value", att.ClearValue)
	}

	// rebuild an identical graph for the next frame, sharing the target
	g2, err := func() (*Graph, error) {
		b := NewGraphBuilder("test")
		b.SetPresentTarget(glm.Vec2u{800, 600}, wgpu.TextureFormatBGRA8Unorm, ClearColor(wgpu.Color{A: 1}))
		b.AddRenderPass(drawPass("opaque", &recordingExecutor{}))

		return b.Compile()
	}()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	driver2 := &fakeDriver{}
	backend2 := NewGraphBackend(driver2, backend.Context())

	g2.Registry().Import(g2.ImportTargetID(), swapchain.Clone())
	g2.Execute(backend2, nil)

	if len(driver2.submitted) != 1 {
		t.Fatalf("frame 2 submitted %d buffers, want 1", len(driver2.submitted))
	}

	if op := driver2.submitted[0].passes[0].ColorAttachments[0].LoadOp; op != wgpu.LoadOpLoad {
		t.Fatalf("frame 2 color load op is %v, want load", op)
	}
}

func TestAutoClearPassWhenNothingDrawsToSurface(t *testing.T) {
	g, driver, backend := compiled(t, nil)

	if len(g.Passes()) != 1 || !g.Passes()[0].clearOnly {
		t.Fatalf("expected a single clear pass, got %d passes", len(g.Passes()))
	}

	importSwapchain(g, backend)
	g.Execute(backend, nil)

	if len(driver.submitted) != 1 {
		t.Fatalf("submitted %d buffers, want 1", len(driver.submitted))
	}

	att := driver.submitted[0].passes[0].ColorAttachments[0]
	if att.LoadOp != wgpu.LoadOpClear || att.ClearValue != (wgpu.Color{A: 1}) {
		t.Fatalf("clear pass did not apply the present clear value")
	}
}

func TestBuilderFrozenAfterCompile(t *testing.T) {
	b := NewGraphBuilder("frozen")
	b.SetPresentTarget(glm.Vec2u{16, 16}, wgpu.TextureFormatBGRA8Unorm, nil)

	if _, err := b.Compile(); err != nil {
		t.Fatalf("compile: %v", err)
	}

	assertPanics(t, func() {
		b.AllocateTexture("late", testTextureInfo())
	})
}

func TestCompileWithoutPresentTargetFails(t *testing.T) {
	b := NewGraphBuilder("headless")

	if _, err := b.Compile(); !errors.Is(err, ErrNoPresentTarget) {
		t.Fatalf("compile error %v, want ErrNoPresentTarget", err)
	}
}

func TestCompileRejectsPassWithoutExecutor(t *testing.T) {
	b := NewGraphBuilder("broken")
	b.SetPresentTarget(glm.Vec2u{16, 16}, wgpu.TextureFormatBGRA8Unorm, nil)
	b.AddRenderPass(NewRenderPassBuilder("opaque").DefaultColorDepthTarget())

	if _, err := b.Compile(); !errors.Is(err, errNoExecutor) {
		t.Fatalf("compile error %v, want errNoExecutor", err)
	}
}

func TestCompileRejectsUnknownClaims(t *testing.T) {
	b := NewGraphBuilder("broken")
	b.SetPresentTarget(glm.Vec2u{16, 16}, wgpu.TextureFormatBGRA8Unorm, nil)
	b.AddRenderPass(drawPass("opaque", &recordingExecutor{}).ReadTexture(4711))

	if _, err := b.Compile(); !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("compile error %v, want ErrUnknownResource", err)
	}
}

func TestExecuteWithoutImportPanics(t *testing.T) {
	g, _, backend := compiled(t, func(b *GraphBuilder) {
		b.AddRenderPass(drawPass("opaque", &recordingExecutor{}))
	})

	assertPanics(t, func() {
		g.Execute(backend, nil)
	})
}

func TestCopySubmitsBeforeRender(t *testing.T) {
	exec := &copyingExecutor{}

	g, driver, backend := compiled(t, func(b *GraphBuilder) {
		b.AddRenderPass(drawPass("upload", exec))
	})

	importSwapchain(g, backend)
	g.Execute(backend, nil)

	want := []string{"upload", "upload"}
	if got := driver.submittedLabels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("submitted %v, want copy then render buffer", got)
	}

	if driver.submitted[0].copies != 1 {
		t.Fatalf("first submitted buffer carries %d copies, want 1", driver.submitted[0].copies)
	}

	if len(driver.submitted[1].passes) != 1 {
		t.Fatalf("second submitted buffer carries %d render passes, want 1", len(driver.submitted[1].passes))
	}
}

// copyingExecutor records one staging copy during Prepare and draws an
// empty pass during Render.
type copyingExecutor struct{}

func (e *copyingExecutor) Prepare(_ *PassContext, engine *CopyEngine) bool {
	engine.CopyBufferToBuffer(nil, 0, nil, 0, 16)

	return true
}

func (e *copyingExecutor) Queue(_ *PassContext) {}

func (e *copyingExecutor) Render(_ *PassContext, engine *RenderEngine) {
	engine.Begin().End()
}

func (e *copyingExecutor) Cleanup(_ *PassContext) {}
