package renderer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/headless"
	"github.com/richinsley/goshaderbg/shader"
	"github.com/richinsley/goshaderbg/translator"
)

// mockDevice records every GPU call. Shader sources containing "INVALID" fail
// to compile, like a real compiler rejecting a syntax error.
type mockDevice struct {
	nextID uint32

	failLink   bool
	failBuffer bool
	missing    map[string]bool

	liveShaders  map[graphics.Shader]bool
	livePrograms map[graphics.Program]bool
	liveBuffers  map[graphics.Buffer]bool

	deletedShaders  int
	deletedPrograms int
	deletedBuffers  int

	locations map[string]graphics.Location
	names     map[graphics.Location]string
	sources   []string

	viewportW, viewportH int
	viewportCalls        int

	used          graphics.Program
	attribEnabled bool
	uniform1f     map[string]float32
	uniform2f     map[string][2]float32
	uniformWrites int
	draws         int
	lastDrawCount int
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		missing:      map[string]bool{},
		liveShaders:  map[graphics.Shader]bool{},
		livePrograms: map[graphics.Program]bool{},
		liveBuffers:  map[graphics.Buffer]bool{},
		locations:    map[string]graphics.Location{},
		names:        map[graphics.Location]string{},
		uniform1f:    map[string]float32{},
		uniform2f:    map[string][2]float32{},
	}
}

func (d *mockDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *mockDevice) CompileShader(stage graphics.Stage, source string) (graphics.Shader, error) {
	d.sources = append(d.sources, source)
	if strings.Contains(source, "INVALID") {
		return 0, &graphics.ShaderError{Stage: stage.String(), Log: "0:1: 'INVALID' : syntax error"}
	}
	s := graphics.Shader(d.id())
	d.liveShaders[s] = true
	return s, nil
}

func (d *mockDevice) DeleteShader(s graphics.Shader) {
	delete(d.liveShaders, s)
	d.deletedShaders++
}

func (d *mockDevice) LinkProgram(vs, fs graphics.Shader) (graphics.Program, error) {
	if d.failLink {
		return 0, errors.New("error: varying mismatch")
	}
	p := graphics.Program(d.id())
	d.livePrograms[p] = true
	return p, nil
}

func (d *mockDevice) DeleteProgram(p graphics.Program) {
	delete(d.livePrograms, p)
	d.deletedPrograms++
}

func (d *mockDevice) UseProgram(p graphics.Program) { d.used = p }

func (d *mockDevice) lookup(name string) (graphics.Location, bool) {
	if d.missing[name] {
		return -1, false
	}
	loc, ok := d.locations[name]
	if !ok {
		loc = graphics.Location(len(d.locations))
		d.locations[name] = loc
		d.names[loc] = name
	}
	return loc, true
}

func (d *mockDevice) UniformLocation(p graphics.Program, name string) (graphics.Location, bool) {
	return d.lookup(name)
}

func (d *mockDevice) AttribLocation(p graphics.Program, name string) (graphics.Location, bool) {
	return d.lookup(name)
}

func (d *mockDevice) CreateVertexBuffer(data []float32) (graphics.Buffer, error) {
	if d.failBuffer {
		return 0, errors.New("out of memory")
	}
	if len(data) != QuadVertexCount*2 {
		return 0, fmt.Errorf("unexpected vertex data length %d", len(data))
	}
	b := graphics.Buffer(d.id())
	d.liveBuffers[b] = true
	return b, nil
}

func (d *mockDevice) EnableAttrib(b graphics.Buffer, attrib graphics.Location, components int) {
	d.attribEnabled = components == 2
}

func (d *mockDevice) DeleteBuffer(b graphics.Buffer) {
	delete(d.liveBuffers, b)
	d.deletedBuffers++
}

func (d *mockDevice) Viewport(w, h int) {
	d.viewportW, d.viewportH = w, h
	d.viewportCalls++
}

func (d *mockDevice) Uniform1f(loc graphics.Location, v float32) {
	d.uniform1f[d.names[loc]] = v
	d.uniformWrites++
}

func (d *mockDevice) Uniform2f(loc graphics.Location, x, y float32) {
	d.uniform2f[d.names[loc]] = [2]float32{x, y}
	d.uniformWrites++
}

func (d *mockDevice) DrawTriangles(b graphics.Buffer, first, count int) {
	d.draws++
	d.lastDrawCount = count
}

func (d *mockDevice) live() int {
	return len(d.liveShaders) + len(d.livePrograms) + len(d.liveBuffers)
}

// prefixTranslator renames every background input the way ANGLE does.
type prefixTranslator struct{}

func (prefixTranslator) Translate(stage graphics.Stage, source string) (*translator.Result, error) {
	if strings.Contains(source, "UNTRANSLATABLE") {
		return nil, errors.New("unsupported construct")
	}
	return &translator.Result{
		Code: "// translated\n" + source,
		Names: map[string]string{
			shader.PositionAttrib:    "_uposition",
			shader.ResolutionUniform: "_uresolution",
			shader.TimeUniform:       "_utime",
			shader.MouseUniform:      "_umouse",
		},
	}, nil
}

// stickyHost never cancels frames, so a callback queued before Dispose still
// fires afterwards.
type stickyHost struct {
	*headless.Host
	cancels int
}

func (h *stickyHost) CancelFrame(graphics.FrameHandle) { h.cancels++ }

// recordingSurface counts GPU surface operations for the offscreen driver.
type recordingSurface struct {
	w, h  int
	reads int
}

func (s *recordingSurface) Resize(w, h int) error { s.w, s.h = w, h; return nil }
func (s *recordingSurface) Size() (int, int)      { return s.w, s.h }
func (s *recordingSurface) Bind()                 {}
func (s *recordingSurface) Present(int, int)      {}
func (s *recordingSurface) ReadPixels(dst []byte) error {
	if len(dst) != s.w*s.h*4 {
		return fmt.Errorf("buffer of %d bytes for %dx%d surface", len(dst), s.w, s.h)
	}
	s.reads++
	return nil
}
func (s *recordingSurface) Destroy() {}

// flakySurface rejects the next failures resizes.
type flakySurface struct {
	recordingSurface
	failures int
}

func (s *flakySurface) Resize(w, h int) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("framebuffer incomplete")
	}
	return s.recordingSurface.Resize(w, h)
}

// latchedHost hands out the resize listener it registered, so a caller can
// deliver an event that was already in flight when the listener was removed.
type latchedHost struct {
	*headless.Host
	resize func()
}

func (h *latchedHost) OnResize(fn func()) func() {
	h.resize = fn
	return h.Host.OnResize(fn)
}

func testConfig() Config {
	return Config{
		Sources:     shader.Default(),
		RenderScale: 0.75,
		Smoothing:   0.05,
	}
}

const frame = 20 * time.Millisecond
