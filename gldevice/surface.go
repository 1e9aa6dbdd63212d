package gldevice

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderbg/shader"
)

var blitQuadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Surface is an RGBA8 framebuffer object used as the backing store. Present
// scales it onto the window with linear filtering, which is how a render
// scale below one turns into a cheaper, softer image.
type Surface struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int

	blitProgram uint32
	textureLoc  int32
	radiusLoc   int32
	zoomLoc     int32
	opacityLoc  int32

	presentation shader.Presentation
	quadVAO     uint32
	quadVBO     uint32
}

// NewSurface creates the blit pipeline. Storage is allocated by Resize.
func NewSurface() (*Surface, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	s := &Surface{presentation: shader.Sharp}

	vsSource, fsSource := shader.BlitShaders()
	vs, err := compileShader(vsSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	fs, err := compileShader(fsSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	s.blitProgram, err = linkProgram(vs, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	if err != nil {
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	s.textureLoc = gl.GetUniformLocation(s.blitProgram, gl.Str(shader.BlitTextureUniform+"\x00"))
	s.radiusLoc = gl.GetUniformLocation(s.blitProgram, gl.Str(shader.BlitRadiusUniform+"\x00"))
	s.zoomLoc = gl.GetUniformLocation(s.blitProgram, gl.Str(shader.BlitZoomUniform+"\x00"))
	s.opacityLoc = gl.GetUniformLocation(s.blitProgram, gl.Str(shader.BlitOpacityUniform+"\x00"))

	gl.GenVertexArrays(1, &s.quadVAO)
	gl.GenBuffers(1, &s.quadVBO)
	gl.BindVertexArray(s.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(blitQuadVertices)*4, gl.Ptr(blitQuadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenFramebuffers(1, &s.fbo)
	gl.GenTextures(1, &s.textureID)
	return s, nil
}

// Resize reallocates the color attachment. Unchanged sizes are a no-op.
func (s *Surface) Resize(width, height int) error {
	if width == s.width && height == s.height {
		return nil
	}
	gl.BindTexture(gl.TEXTURE_2D, s.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("backing store fbo %dx%d is not complete: 0x%x", width, height, status)
	}
	s.width, s.height = width, height
	logger.Debugf("backing store fbo resized to %dx%d", width, height)
	return nil
}

// SetPresentation changes how Present draws the surface onto the window.
func (s *Surface) SetPresentation(p shader.Presentation) {
	s.presentation = p
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

func (s *Surface) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
}

// Present draws the surface over the whole default framebuffer. The viewport
// is restored afterwards so it keeps matching the backing store.
func (s *Surface) Present(fbWidth, fbHeight int) {
	var viewport [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &viewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(s.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.textureID)
	if s.textureLoc != -1 {
		gl.Uniform1i(s.textureLoc, 0)
	}
	rx, ry, zoom, opacity := s.presentation.Uniforms(fbWidth, fbHeight)
	gl.Uniform2f(s.radiusLoc, rx, ry)
	gl.Uniform1f(s.zoomLoc, zoom)
	gl.Uniform1f(s.opacityLoc, opacity)
	gl.BindVertexArray(s.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.Viewport(viewport[0], viewport[1], viewport[2], viewport[3])
}

// ReadPixels reads the surface as RGBA8, bottom row first.
func (s *Surface) ReadPixels(dst []byte) error {
	if len(dst) != s.width*s.height*4 {
		return fmt.Errorf("buffer of %d bytes does not fit a %dx%d surface", len(dst), s.width, s.height)
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, s.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(s.width), int32(s.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(dst))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return fmt.Errorf("glReadPixels failed: 0x%x", errCode)
	}
	return nil
}

func (s *Surface) Destroy() {
	gl.DeleteFramebuffers(1, &s.fbo)
	gl.DeleteTextures(1, &s.textureID)
	gl.DeleteProgram(s.blitProgram)
	gl.DeleteBuffers(1, &s.quadVBO)
	gl.DeleteVertexArrays(1, &s.quadVAO)
}
