package rctx

import (
	"sync"
	"testing"
)

func TestDestroyExactlyOnce(t *testing.T) {
	ctx := New()

	var destroyed int
	h := ctx.RegisterTexture(nil, func() { destroyed++ })

	c1 := h.Clone()
	c2 := c1.Clone()

	h.Release()
	if destroyed != 0 {
		t.Fatalf("destroyed after releasing 1 of 3 handles")
	}

	c2.Release()
	if destroyed != 0 {
		t.Fatalf("destroyed after releasing 2 of 3 handles")
	}

	c1.Release()
	if destroyed != 1 {
		t.Fatalf("destroyed %d times, want exactly once", destroyed)
	}

	if ctx.Len() != 0 {
		t.Fatalf("context still holds %d resources", ctx.Len())
	}
}

func TestGetResourceAfterDestroyPanics(t *testing.T) {
	ctx := New()

	h := ctx.RegisterBuffer(nil, nil)
	id := h.ID()
	h.Release()

	assertPanics(t, func() { ctx.GetResource(id) })
}

func TestDoubleReleasePanics(t *testing.T) {
	ctx := New()

	h := ctx.RegisterTexture(nil, nil)
	h.Release()

	assertPanics(t, func() { h.Release() })
}

func TestCloneOfReleasedHandlePanics(t *testing.T) {
	ctx := New()

	h := ctx.RegisterTexture(nil, nil)
	c := h.Clone()
	h.Release()

	// the clone keeps the resource alive, the released handle is dead
	assertPanics(t, func() { h.Clone() })

	c.Release()
}

func TestKindMismatchPanics(t *testing.T) {
	ctx := New()

	h := ctx.RegisterTexture(nil, nil)
	defer h.Release()

	assertPanics(t, func() { h.Resource().Buffer() })
	assertPanics(t, func() { h.Resource().Pipeline() })
}

func TestConcurrentCloneRelease(t *testing.T) {
	ctx := New()

	var destroyed int
	h := ctx.RegisterTexture(nil, func() { destroyed++ })

	const workers = 16

	var wg sync.WaitGroup
	for range workers {
		c := h.Clone()

		wg.Add(1)
		go func() {
			defer wg.Done()

			cc := c.Clone()
			cc.Release()
			c.Release()
		}()
	}

	wg.Wait()
	h.Release()

	if destroyed != 1 {
		t.Fatalf("destroyed %d times, want exactly once", destroyed)
	}
}

func TestAllocIDsMonotonic(t *testing.T) {
	ctx := New()

	prev := ctx.AllocObjectID()
	for range 100 {
		id := ctx.AllocObjectID()
		if id <= prev {
			t.Fatalf("object id %d not larger than previous %d", id, prev)
		}
		prev = id
	}

	if ctx.AllocMaterialID() != 1 || ctx.AllocPSOID() != 1 {
		t.Fatalf("id spaces are not independent")
	}
}

func TestFirstWrite(t *testing.T) {
	ctx := New()

	h := ctx.RegisterTexture(nil, nil)
	defer h.Release()

	if !h.Resource().FirstWrite() {
		t.Fatalf("first write not reported on fresh resource")
	}

	if h.Resource().FirstWrite() {
		t.Fatalf("first write reported twice")
	}
}

func assertPanics(t *testing.T, f func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()

	f()
}
