package graphics

import "fmt"

// Stage identifies a step of the shader pipeline.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Opaque GPU object handles. The zero value never names a live object.
type (
	Shader  uint32
	Program uint32
	Buffer  uint32
)

// Location is a resolved uniform or attribute slot. Lookups report presence
// separately; a Location is only meaningful when the lookup said it exists.
type Location int32

// ShaderError describes a failed compile, link or upload. Stage is one of
// "vertex", "fragment", "link", "translate" or "geometry".
type ShaderError struct {
	Stage string
	Log   string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("%s shader error: %s", e.Stage, e.Log)
}

// Device is the set of GPU operations the background renderer needs.
// All methods must be called from the goroutine that owns the GL context.
type Device interface {
	CompileShader(stage Stage, source string) (Shader, error)
	DeleteShader(s Shader)
	LinkProgram(vs, fs Shader) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)

	UniformLocation(p Program, name string) (Location, bool)
	AttribLocation(p Program, name string) (Location, bool)

	// CreateVertexBuffer uploads data once.
	CreateVertexBuffer(data []float32) (Buffer, error)
	// EnableAttrib feeds attrib from b with the given float components per vertex.
	EnableAttrib(b Buffer, attrib Location, components int)
	DeleteBuffer(b Buffer)

	Viewport(width, height int)
	Uniform1f(loc Location, v float32)
	Uniform2f(loc Location, x, y float32)
	DrawTriangles(b Buffer, first, count int)
}
