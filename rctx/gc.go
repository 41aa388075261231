package rctx

import (
	"runtime"

	"github.com/lumengine/lumen/logx"
)

// AutoRelease arranges for the handle to be released when it is
// garbage collected. Useful for long-lived resources whose owner has
// no natural point to call Release.
func AutoRelease(h *Handle) *Handle {
	runtime.SetFinalizer(h, releaseNow)

	return h
}

func releaseNow(h *Handle) {
	if h.released.Load() {
		return
	}

	logx.L().Debug("releasing garbage collected resource handle", "id", h.id)
	h.Release()
}
