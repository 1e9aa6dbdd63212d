package renderer

import (
	"fmt"
	"math"
	"sync"

	"github.com/richinsley/goshaderbg/graphics"
)

// Surface describes the backing store the background renders into.
type Surface struct {
	BackingWidth     int
	BackingHeight    int
	DevicePixelRatio float64
	RenderScale      float64
}

// ComputeSurface derives the backing store for a logical viewport. Each axis
// is floor(viewport * ratio * scale), never less than one pixel.
func ComputeSurface(viewportW, viewportH, ratio, scale float64) Surface {
	if ratio <= 0 {
		ratio = 1
	}
	return Surface{
		BackingWidth:     backingDim(viewportW, ratio, scale),
		BackingHeight:    backingDim(viewportH, ratio, scale),
		DevicePixelRatio: ratio,
		RenderScale:      scale,
	}
}

func backingDim(v, ratio, scale float64) int {
	d := int(math.Floor(v * ratio * scale))
	if d < 1 {
		return 1
	}
	return d
}

// ResizeController keeps the backing store and GPU viewport in step with the
// host viewport and pixel ratio. Resize events may arrive on any goroutine and
// only mark the surface stale; the GPU side is updated by Apply and Sync,
// which run on the render goroutine.
type ResizeController struct {
	host  graphics.Host
	dev   graphics.Device
	scale float64

	mu      sync.Mutex
	surface Surface
	applied bool
	stale   bool
	stopped bool
	failed  Surface
	remove  func()
}

// NewResizeController subscribes to host resize events. Call Apply once to
// size the surface for the initial viewport.
func NewResizeController(host graphics.Host, dev graphics.Device, scale float64) *ResizeController {
	r := &ResizeController{host: host, dev: dev, scale: scale}
	r.remove = host.OnResize(r.markStale)
	return r
}

func (r *ResizeController) markStale() {
	r.mu.Lock()
	if !r.stopped {
		r.stale = true
	}
	r.mu.Unlock()
}

// Sync applies a resize that arrived since the last call.
func (r *ResizeController) Sync() error {
	r.mu.Lock()
	stale := r.stale
	r.mu.Unlock()
	if !stale {
		return nil
	}
	return r.Apply()
}

// Apply recomputes the surface and, when it changed, resizes the backing
// store and the viewport to match. The new surface is only published once
// the backing store accepted it; on failure the previous one stays in effect
// and the resize is retried on the next Sync.
func (r *ResizeController) Apply() error {
	w, h := r.host.ViewportSize()
	next := ComputeSurface(w, h, r.host.DevicePixelRatio(), r.scale)

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stale = false
	if r.applied && next == r.surface {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	if err := r.host.SetBackingSize(next.BackingWidth, next.BackingHeight); err != nil {
		r.mu.Lock()
		r.stale = true
		repeat := r.failed == next
		r.failed = next
		r.mu.Unlock()
		err = fmt.Errorf("failed to resize backing store to %dx%d: %w", next.BackingWidth, next.BackingHeight, err)
		if !repeat {
			logger.Warning(err)
		}
		return err
	}
	r.dev.Viewport(next.BackingWidth, next.BackingHeight)

	r.mu.Lock()
	r.surface = next
	r.applied = true
	r.failed = Surface{}
	r.mu.Unlock()

	logger.Debugf("backing store %dx%d (viewport %.0fx%.0f, ratio %.2f, scale %.2f)",
		next.BackingWidth, next.BackingHeight, w, h, next.DevicePixelRatio, next.RenderScale)
	return nil
}

// Surface returns the last applied surface.
func (r *ResizeController) Surface() Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

// Stop removes the resize listener. Later calls do nothing.
func (r *ResizeController) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.stale = false
	r.mu.Unlock()
	r.remove()
}
