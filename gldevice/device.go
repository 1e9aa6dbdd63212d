// Package gldevice implements the graphics contracts on OpenGL 4.1 core.
package gldevice

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/log"
)

var logger = log.New("gldevice")

var glInitOnce sync.Once
var glInitErr error

// Init loads the GL function pointers. The context must be current.
func Init() error {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
		if glInitErr == nil {
			logger.Infof("OpenGL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
		}
	})
	if glInitErr != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", glInitErr)
	}
	return nil
}

// Device issues GL calls on the current context. Every vertex buffer gets its
// own vertex array object, as the core profile requires.
type Device struct {
	vbos map[graphics.Buffer]uint32
}

// New initializes GL and returns a device bound to the current context.
func New() (*Device, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return &Device{vbos: make(map[graphics.Buffer]uint32)}, nil
}

func (d *Device) CompileShader(stage graphics.Stage, source string) (graphics.Shader, error) {
	var shaderType uint32
	switch stage {
	case graphics.VertexStage:
		shaderType = gl.VERTEX_SHADER
	case graphics.FragmentStage:
		shaderType = gl.FRAGMENT_SHADER
	default:
		return 0, fmt.Errorf("unknown shader stage %v", stage)
	}
	shader, err := compileShader(source, shaderType)
	if err != nil {
		return 0, &graphics.ShaderError{Stage: stage.String(), Log: err.Error()}
	}
	return graphics.Shader(shader), nil
}

func (d *Device) DeleteShader(s graphics.Shader) {
	if s != 0 {
		gl.DeleteShader(uint32(s))
	}
}

func (d *Device) LinkProgram(vs, fs graphics.Shader) (graphics.Program, error) {
	program, err := linkProgram(uint32(vs), uint32(fs))
	if err != nil {
		return 0, &graphics.ShaderError{Stage: "link", Log: err.Error()}
	}
	return graphics.Program(program), nil
}

func (d *Device) DeleteProgram(p graphics.Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

func (d *Device) UseProgram(p graphics.Program) {
	gl.UseProgram(uint32(p))
}

func (d *Device) UniformLocation(p graphics.Program, name string) (graphics.Location, bool) {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	return graphics.Location(loc), loc >= 0
}

func (d *Device) AttribLocation(p graphics.Program, name string) (graphics.Location, bool) {
	loc := gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
	return graphics.Location(loc), loc >= 0
}

func (d *Device) CreateVertexBuffer(data []float32) (graphics.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty vertex data")
	}
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	if vao == 0 || vbo == 0 {
		return 0, fmt.Errorf("failed to allocate vertex buffer: gl error 0x%x", gl.GetError())
	}
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindVertexArray(0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteBuffers(1, &vbo)
		gl.DeleteVertexArrays(1, &vao)
		return 0, fmt.Errorf("failed to upload vertex data: gl error 0x%x", errCode)
	}
	d.vbos[graphics.Buffer(vao)] = vbo
	return graphics.Buffer(vao), nil
}

func (d *Device) EnableAttrib(b graphics.Buffer, attrib graphics.Location, components int) {
	gl.BindVertexArray(uint32(b))
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbos[b])
	gl.EnableVertexAttribArray(uint32(attrib))
	gl.VertexAttribPointer(uint32(attrib), int32(components), gl.FLOAT, false, int32(components)*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (d *Device) DeleteBuffer(b graphics.Buffer) {
	vbo, ok := d.vbos[b]
	if !ok {
		return
	}
	delete(d.vbos, b)
	vao := uint32(b)
	gl.DeleteBuffers(1, &vbo)
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Uniform1f(loc graphics.Location, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *Device) Uniform2f(loc graphics.Location, x, y float32) {
	gl.Uniform2f(int32(loc), x, y)
}

func (d *Device) DrawTriangles(b graphics.Buffer, first, count int) {
	gl.BindVertexArray(uint32(b))
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
	gl.BindVertexArray(0)
}

func linkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(logText, "\x00"))
	}
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(logText, "\x00"))
	}
	return shader, nil
}

var (
	_ graphics.Device  = (*Device)(nil)
	_ graphics.Surface = (*Surface)(nil)
)
