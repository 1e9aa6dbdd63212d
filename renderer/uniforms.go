package renderer

import "github.com/richinsley/goshaderbg/graphics"

// Uniforms are the three inputs every background fragment shader consumes.
type Uniforms struct {
	Resolution Location
	Time       Location
	Mouse      Location
}

// FrameUniforms is the snapshot written for one tick.
type FrameUniforms struct {
	Width, Height  int
	Time           float64
	MouseX, MouseY float64
}

// Upload writes v into the current program, skipping absent locations.
func (u *Uniforms) Upload(dev graphics.Device, v FrameUniforms) {
	if u.Resolution.Present {
		dev.Uniform2f(u.Resolution.Loc, float32(v.Width), float32(v.Height))
	}
	if u.Time.Present {
		dev.Uniform1f(u.Time.Loc, float32(v.Time))
	}
	if u.Mouse.Present {
		dev.Uniform2f(u.Mouse.Loc, float32(v.MouseX), float32(v.MouseY))
	}
}
