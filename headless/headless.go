// Package headless provides a window-less host with a manual clock. Pointer
// and resize events are injected by the caller, and frames only run when the
// caller pumps them, which makes rendering deterministic for export and tests.
package headless

import (
	"sort"
	"sync"
	"time"

	"github.com/richinsley/goshaderbg/graphics"
)

type Host struct {
	mu sync.Mutex

	width, height float64
	ratio         float64

	backingW, backingH int
	surface            graphics.Surface

	now time.Duration

	nextListener uint64
	pointer      map[uint64]func(x, y float64)
	resize       map[uint64]func()

	nextFrame graphics.FrameHandle
	frames    map[graphics.FrameHandle]graphics.FrameFunc
}

// New creates a host with a logical viewport of width x height at the given
// device pixel ratio.
func New(width, height, ratio float64) *Host {
	return &Host{
		width:   width,
		height:  height,
		ratio:   ratio,
		pointer: make(map[uint64]func(x, y float64)),
		resize:  make(map[uint64]func()),
		frames:  make(map[graphics.FrameHandle]graphics.FrameFunc),
	}
}

// SetSurface attaches a backing store. It is resized by SetBackingSize and
// bound before every frame.
func (h *Host) SetSurface(s graphics.Surface) {
	h.mu.Lock()
	h.surface = s
	h.mu.Unlock()
}

func (h *Host) ViewportSize() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Host) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ratio
}

func (h *Host) SetBackingSize(width, height int) error {
	h.mu.Lock()
	h.backingW, h.backingH = width, height
	s := h.surface
	h.mu.Unlock()
	if s != nil {
		return s.Resize(width, height)
	}
	return nil
}

// BackingSize reports the last size requested by the renderer.
func (h *Host) BackingSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backingW, h.backingH
}

func (h *Host) OnPointerMove(fn func(clientX, clientY float64)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextListener++
	id := h.nextListener
	h.pointer[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.pointer, id)
		h.mu.Unlock()
	}
}

func (h *Host) OnResize(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextListener++
	id := h.nextListener
	h.resize[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.resize, id)
		h.mu.Unlock()
	}
}

// Listeners returns the number of registered pointer and resize listeners.
func (h *Host) Listeners() (pointer, resize int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pointer), len(h.resize)
}

func (h *Host) RequestFrame(fn graphics.FrameFunc) graphics.FrameHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	return h.nextFrame
}

func (h *Host) CancelFrame(handle graphics.FrameHandle) {
	h.mu.Lock()
	delete(h.frames, handle)
	h.mu.Unlock()
}

// Pending returns the number of frame callbacks waiting for the next pump.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

func (h *Host) Now() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// Advance moves the clock forward without running frames.
func (h *Host) Advance(d time.Duration) {
	h.mu.Lock()
	h.now += d
	h.mu.Unlock()
}

// RunFrame runs every callback queued before the call, in request order.
// Callbacks requested while running wait for the next pump. It returns the
// number of callbacks run.
func (h *Host) RunFrame() int {
	h.mu.Lock()
	handles := make([]graphics.FrameHandle, 0, len(h.frames))
	for handle := range h.frames {
		handles = append(handles, handle)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	queued := make([]graphics.FrameFunc, len(handles))
	for i, handle := range handles {
		queued[i] = h.frames[handle]
		delete(h.frames, handle)
	}
	now := h.now
	s := h.surface
	h.mu.Unlock()

	if s != nil && len(queued) > 0 {
		s.Bind()
	}
	for _, fn := range queued {
		fn(now)
	}
	return len(queued)
}

// Step advances the clock by d and runs one frame.
func (h *Host) Step(d time.Duration) int {
	h.Advance(d)
	return h.RunFrame()
}

// MovePointer delivers a pointer event at logical viewport coordinates.
func (h *Host) MovePointer(clientX, clientY float64) {
	for _, fn := range h.pointerListeners() {
		fn(clientX, clientY)
	}
}

// Resize changes the viewport and pixel ratio and notifies resize listeners.
func (h *Host) Resize(width, height, ratio float64) {
	h.mu.Lock()
	h.width, h.height, h.ratio = width, height, ratio
	listeners := make([]func(), 0, len(h.resize))
	for _, id := range sortedKeys(h.resize) {
		listeners = append(listeners, h.resize[id])
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (h *Host) pointerListeners() []func(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]func(x, y float64), 0, len(h.pointer))
	for _, id := range sortedKeys(h.pointer) {
		out = append(out, h.pointer[id])
	}
	return out
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

var _ graphics.Host = (*Host)(nil)
