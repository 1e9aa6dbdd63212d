package glfwcontext

import (
	"runtime"
	"sort"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/log"
	"github.com/richinsley/goshaderbg/options"
)

var logger = log.New("glfwcontext")

// Context is a GLFW window acting as the renderer host. All methods must be
// called from the main thread, where GLFW delivers its callbacks.
type Context struct {
	window  *glfw.Window
	surface graphics.Surface

	nextListener uint64
	pointer      map[uint64]func(x, y float64)
	resize       map[uint64]func()

	nextFrame graphics.FrameHandle
	frames    map[graphics.FrameHandle]graphics.FrameFunc

	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

// New creates the window and makes its GL 4.1 core context current.
func New(opts *options.Options, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	var monitor *glfw.Monitor
	width, height := opts.Width, opts.Height
	if visible && opts.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			mode := monitor.GetVideoMode()
			width, height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(width, height, "goshaderbg", monitor, nil)
	if err != nil {
		return nil, err
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	c := &Context{
		window:       win,
		pointer:      make(map[uint64]func(x, y float64)),
		resize:       make(map[uint64]func()),
		frames:       make(map[graphics.FrameHandle]graphics.FrameFunc),
		keyCallbacks: make(map[glfw.Key]func()),
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetCursorPosCallback(c.glfwCursorPosCallback)
	win.SetSizeCallback(func(w *glfw.Window, width, height int) { c.notifyResize() })
	win.SetContentScaleCallback(func(w *glfw.Window, x, y float32) { c.notifyResize() })

	return c, nil
}

// SetSurface attaches the backing store drawn by the renderer. It is bound
// before frame callbacks run and presented before buffers are swapped.
func (c *Context) SetSurface(s graphics.Surface) {
	c.surface = s
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) glfwCursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	for _, id := range sortedKeys(c.pointer) {
		if fn, ok := c.pointer[id]; ok {
			fn(xpos, ypos)
		}
	}
}

func (c *Context) notifyResize() {
	for _, id := range sortedKeys(c.resize) {
		if fn, ok := c.resize[id]; ok {
			fn()
		}
	}
}

// ViewportSize returns the window size in screen coordinates, the space
// GLFW reports cursor positions in.
func (c *Context) ViewportSize() (float64, float64) {
	w, h := c.window.GetSize()
	return float64(w), float64(h)
}

// DevicePixelRatio is the framebuffer to window size ratio. It falls back to
// the monitor content scale while the window is minimized.
func (c *Context) DevicePixelRatio() float64 {
	winWidth, _ := c.window.GetSize()
	fbWidth, _ := c.window.GetFramebufferSize()
	if winWidth > 0 && fbWidth > 0 {
		return float64(fbWidth) / float64(winWidth)
	}
	x, _ := c.window.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

func (c *Context) SetBackingSize(width, height int) error {
	if c.surface == nil {
		return nil
	}
	return c.surface.Resize(width, height)
}

func (c *Context) OnPointerMove(fn func(clientX, clientY float64)) func() {
	c.nextListener++
	id := c.nextListener
	c.pointer[id] = fn
	return func() { delete(c.pointer, id) }
}

func (c *Context) OnResize(fn func()) func() {
	c.nextListener++
	id := c.nextListener
	c.resize[id] = fn
	return func() { delete(c.resize, id) }
}

func (c *Context) RequestFrame(fn graphics.FrameFunc) graphics.FrameHandle {
	c.nextFrame++
	c.frames[c.nextFrame] = fn
	return c.nextFrame
}

func (c *Context) CancelFrame(h graphics.FrameHandle) {
	delete(c.frames, h)
}

func (c *Context) Now() time.Duration {
	return time.Duration(glfw.GetTime() * float64(time.Second))
}

// Run pumps frames until the window is asked to close. Each iteration runs
// the callbacks queued so far, presents the surface, swaps (waiting for
// vsync when enabled) and polls events.
func (c *Context) Run() {
	for !c.window.ShouldClose() {
		c.runFrame()
		c.EndFrame()
	}
}

func (c *Context) runFrame() {
	if len(c.frames) == 0 {
		return
	}
	handles := make([]graphics.FrameHandle, 0, len(c.frames))
	for h := range c.frames {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	queued := make([]graphics.FrameFunc, len(handles))
	for i, h := range handles {
		queued[i] = c.frames[h]
		delete(c.frames, h)
	}

	if c.surface != nil {
		c.surface.Bind()
	}
	now := c.Now()
	for _, fn := range queued {
		fn(now)
	}
}

// EndFrame presents the backing store, swaps buffers and polls events.
func (c *Context) EndFrame() {
	if c.surface != nil {
		fbWidth, fbHeight := c.window.GetFramebufferSize()
		c.surface.Present(fbWidth, fbHeight)
	}
	c.window.SwapBuffers()
	glfw.PollEvents()
}

// Close asks the pump to stop after the current frame.
func (c *Context) Close() {
	c.window.SetShouldClose(true)
}

// Shutdown only destroys the window.
func (c *Context) Shutdown() {
	c.window.SetCursorPosCallback(nil)
	c.window.SetSizeCallback(nil)
	c.window.SetContentScaleCallback(nil)
	c.window.SetKeyCallback(nil)
	c.window.Destroy()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	logger.Info("GLFW initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	logger.Info("GLFW terminated")
}

var _ graphics.Host = (*Context)(nil)

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
