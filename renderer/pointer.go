package renderer

import (
	"sync"

	"github.com/richinsley/goshaderbg/graphics"
)

// PointerState is the normalized pointer position. Y grows upwards to match
// gl_FragCoord. Target is the latest raw sample, Current trails it.
type PointerState struct {
	TargetX, TargetY   float64
	CurrentX, CurrentY float64
}

// PointerTracker samples pointer movement into a normalized target.
// Event delivery may happen on any goroutine.
type PointerTracker struct {
	host graphics.Host

	mu      sync.Mutex
	x, y    float64
	remove  func()
	stopped bool
}

// NewPointerTracker starts listening on host with an initial target.
func NewPointerTracker(host graphics.Host, x, y float64) *PointerTracker {
	p := &PointerTracker{host: host, x: clamp01(x), y: clamp01(y)}
	p.remove = host.OnPointerMove(p.handle)
	return p
}

func (p *PointerTracker) handle(clientX, clientY float64) {
	w, h := p.host.ViewportSize()
	if w <= 0 || h <= 0 {
		return
	}
	x := clamp01(clientX / w)
	y := clamp01(1 - clientY/h)

	p.mu.Lock()
	if !p.stopped {
		p.x, p.y = x, y
	}
	p.mu.Unlock()
}

// Target returns the latest sample.
func (p *PointerTracker) Target() (x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y
}

// Stop removes the listener. Later calls do nothing.
func (p *PointerTracker) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	p.remove()
}

// Smoother is an exponential low-pass filter advanced once per frame.
type Smoother struct {
	Alpha float64
}

// Step moves current a fraction alpha of the way towards target.
func (s Smoother) Step(current, target float64) float64 {
	return current + (target-current)*s.Alpha
}

// Advance smooths both axes of st in place.
func (s Smoother) Advance(st *PointerState) {
	st.CurrentX = s.Step(st.CurrentX, st.TargetX)
	st.CurrentY = s.Step(st.CurrentY, st.TargetY)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}
