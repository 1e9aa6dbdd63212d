package renderer

import (
	"fmt"
	"time"

	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/log"
	"github.com/richinsley/goshaderbg/shader"
	"github.com/richinsley/goshaderbg/translator"
)

var logger = log.New("renderer")

// State is the lifecycle position of a Background.
type State int

const (
	Uninitialized State = iota
	Running
	Disposed
	// Failed means the background never started. It draws nothing and owns
	// no GPU objects.
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Disposed:
		return "disposed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config selects the visual and its performance knobs.
type Config struct {
	Sources    shader.Sources
	Translator translator.Translator

	RenderScale float64
	Smoothing   float64
}

func (c Config) validate() error {
	if !(c.RenderScale > 0 && c.RenderScale <= 1) {
		return fmt.Errorf("%w: render scale %v outside (0,1]", ErrInvalidConfig, c.RenderScale)
	}
	if !(c.Smoothing > 0 && c.Smoothing <= 1) {
		return fmt.Errorf("%w: smoothing %v outside (0,1]", ErrInvalidConfig, c.Smoothing)
	}
	return nil
}

// FrameClock measures time since mount.
type FrameClock struct {
	Start   time.Duration
	Elapsed float64
}

// Tick recomputes Elapsed, in seconds, for the host clock reading now.
func (c *FrameClock) Tick(now time.Duration) float64 {
	c.Elapsed = (now - c.Start).Seconds()
	return c.Elapsed
}

// Background is one mounted instance of the procedural background. It owns
// its program, geometry, listeners and frame loop, and releases them all on
// Dispose. Mount, Dispose and frame callbacks must run on the goroutine that
// owns the GL context; pointer and resize events may arrive from anywhere and
// never touch the GPU themselves.
type Background struct {
	dev  graphics.Device
	host graphics.Host
	cfg  Config

	state State
	err   error

	program *Program
	quad    *Quad
	pointer *PointerTracker
	resize  *ResizeController

	smoother Smoother
	mouse    PointerState
	clock    FrameClock
	handle   graphics.FrameHandle

	frames uint64
	last   FrameUniforms
}

// Mount creates the program, uploads the quad, starts listening and schedules
// the first frame. It never fails loudly: when the environment or the shaders
// are unusable the returned background is in the Failed state, Err reports
// why and nothing is ever drawn.
func Mount(dev graphics.Device, host graphics.Host, cfg Config) *Background {
	b := &Background{
		dev:      dev,
		host:     host,
		cfg:      cfg,
		smoother: Smoother{Alpha: cfg.Smoothing},
	}
	if dev == nil || host == nil {
		b.fail(ErrUnsupported)
		return b
	}
	if err := cfg.validate(); err != nil {
		b.fail(err)
		return b
	}

	prog, err := CompileProgram(dev, cfg.Translator, cfg.Sources)
	if err != nil {
		b.fail(err)
		return b
	}
	quad, err := UploadQuad(dev, prog.Position)
	if err != nil {
		prog.Release(dev)
		b.fail(err)
		return b
	}
	b.program = prog
	b.quad = quad

	b.mouse = PointerState{TargetX: 0.5, TargetY: 0.5, CurrentX: 0.5, CurrentY: 0.5}
	b.pointer = NewPointerTracker(host, b.mouse.TargetX, b.mouse.TargetY)
	b.resize = NewResizeController(host, dev, cfg.RenderScale)
	if err := b.resize.Apply(); err != nil {
		b.pointer.Stop()
		b.resize.Stop()
		quad.Release(dev)
		prog.Release(dev)
		b.program, b.quad = nil, nil
		b.fail(err)
		return b
	}

	b.clock = FrameClock{Start: host.Now()}
	b.state = Running
	b.handle = host.RequestFrame(b.tick)

	s := b.resize.Surface()
	logger.Infof("background running at %dx%d", s.BackingWidth, s.BackingHeight)
	return b
}

func (b *Background) fail(err error) {
	b.state = Failed
	b.err = err
	logger.Warningf("background disabled: %v", err)
}

func (b *Background) tick(now time.Duration) {
	if b.state != Running {
		return
	}
	b.handle = 0

	// A failed resize keeps the previous surface; Sync retries next frame.
	_ = b.resize.Sync()

	elapsed := b.clock.Tick(now)
	b.mouse.TargetX, b.mouse.TargetY = b.pointer.Target()
	b.smoother.Advance(&b.mouse)
	surface := b.resize.Surface()

	u := FrameUniforms{
		Width:  surface.BackingWidth,
		Height: surface.BackingHeight,
		Time:   elapsed,
		MouseX: b.mouse.CurrentX,
		MouseY: b.mouse.CurrentY,
	}
	b.dev.UseProgram(b.program.Handle())
	b.program.Uniforms.Upload(b.dev, u)
	b.quad.Draw(b.dev)

	b.frames++
	b.last = u
	b.handle = b.host.RequestFrame(b.tick)
}

// Dispose stops the frame loop, removes the listeners and frees the GPU
// objects, in that order. It is safe to call at any time and more than once.
func (b *Background) Dispose() {
	if b.state != Running {
		return
	}
	b.state = Disposed
	if b.handle != 0 {
		b.host.CancelFrame(b.handle)
		b.handle = 0
	}

	b.pointer.Stop()
	b.resize.Stop()

	b.quad.Release(b.dev)
	b.program.Release(b.dev)
	logger.Infof("background disposed after %d frames", b.frames)
}

func (b *Background) State() State {
	return b.state
}

// Err returns the diagnostic that put the background in the Failed state.
func (b *Background) Err() error {
	return b.err
}

// Surface returns the current backing store description.
func (b *Background) Surface() Surface {
	if b.resize == nil {
		return Surface{}
	}
	return b.resize.Surface()
}

// Pointer returns the pointer state as of the last frame.
func (b *Background) Pointer() PointerState {
	return b.mouse
}

// Frames returns the number of frames drawn.
func (b *Background) Frames() uint64 {
	return b.frames
}

// LastUniforms returns the values written on the last frame.
func (b *Background) LastUniforms() FrameUniforms {
	return b.last
}
