package renderer

import (
	"errors"

	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/shader"
	"github.com/richinsley/goshaderbg/translator"
)

// Location is an optional uniform or attribute slot. Optimizing compilers drop
// unused inputs, so an absent location is normal and writes to it are skipped.
type Location struct {
	Loc     graphics.Location
	Present bool
}

// Program is a linked background program with its resolved inputs. It is
// immutable once compiled.
type Program struct {
	handle   graphics.Program
	vertex   graphics.Shader
	fragment graphics.Shader

	Uniforms Uniforms
	Position Location

	released bool
}

// CompileProgram translates, compiles and links src. On failure every object
// created so far is released and the error is a *graphics.ShaderError naming
// the failing stage. A nil translator compiles the sources as given.
func CompileProgram(dev graphics.Device, tr translator.Translator, src shader.Sources) (*Program, error) {
	vsRes, err := translate(tr, graphics.VertexStage, src.Vertex)
	if err != nil {
		return nil, err
	}
	fsRes, err := translate(tr, graphics.FragmentStage, src.Fragment)
	if err != nil {
		return nil, err
	}

	vs, err := dev.CompileShader(graphics.VertexStage, vsRes.Code)
	if err != nil {
		return nil, asShaderError(graphics.VertexStage.String(), err)
	}
	fs, err := dev.CompileShader(graphics.FragmentStage, fsRes.Code)
	if err != nil {
		dev.DeleteShader(vs)
		return nil, asShaderError(graphics.FragmentStage.String(), err)
	}

	handle, err := dev.LinkProgram(vs, fs)
	if err != nil {
		dev.DeleteShader(vs)
		dev.DeleteShader(fs)
		return nil, asShaderError("link", err)
	}

	p := &Program{
		handle:   handle,
		vertex:   vs,
		fragment: fs,
	}
	p.Uniforms.Resolution = uniformLocation(dev, handle, fsRes.Name(shader.ResolutionUniform))
	p.Uniforms.Time = uniformLocation(dev, handle, fsRes.Name(shader.TimeUniform))
	p.Uniforms.Mouse = uniformLocation(dev, handle, fsRes.Name(shader.MouseUniform))

	loc, ok := dev.AttribLocation(handle, vsRes.Name(shader.PositionAttrib))
	p.Position = Location{Loc: loc, Present: ok}

	return p, nil
}

// Handle returns the linked program.
func (p *Program) Handle() graphics.Program {
	return p.handle
}

// Release deletes the program and its shaders. Later calls do nothing.
func (p *Program) Release(dev graphics.Device) {
	if p == nil || p.released {
		return
	}
	p.released = true
	dev.DeleteProgram(p.handle)
	dev.DeleteShader(p.vertex)
	dev.DeleteShader(p.fragment)
}

func translate(tr translator.Translator, stage graphics.Stage, source string) (*translator.Result, error) {
	if tr == nil {
		return &translator.Result{Code: source}, nil
	}
	res, err := tr.Translate(stage, source)
	if err != nil {
		return nil, asShaderError("translate", err)
	}
	return res, nil
}

func uniformLocation(dev graphics.Device, p graphics.Program, name string) Location {
	loc, ok := dev.UniformLocation(p, name)
	return Location{Loc: loc, Present: ok}
}

func asShaderError(stage string, err error) error {
	var se *graphics.ShaderError
	if errors.As(err, &se) {
		return se
	}
	return &graphics.ShaderError{Stage: stage, Log: err.Error()}
}
