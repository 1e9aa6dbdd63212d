package renderer

import (
	"github.com/richinsley/goshaderbg/graphics"
)

// QuadVertexCount is the number of vertices drawn every frame.
const QuadVertexCount = 6

// Two triangles covering clip space.
var quadVertices = []float32{
	-1.0, -1.0, 1.0, -1.0, -1.0, 1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Quad is the static full-viewport geometry.
type Quad struct {
	buffer   graphics.Buffer
	released bool
}

// UploadQuad uploads the quad once and feeds it to the position attribute.
func UploadQuad(dev graphics.Device, position Location) (*Quad, error) {
	buf, err := dev.CreateVertexBuffer(quadVertices)
	if err != nil {
		return nil, asShaderError("geometry", err)
	}
	if position.Present {
		dev.EnableAttrib(buf, position.Loc, 2)
	}
	return &Quad{buffer: buf}, nil
}

// Draw issues the six quad vertices as two triangles.
func (q *Quad) Draw(dev graphics.Device) {
	dev.DrawTriangles(q.buffer, 0, QuadVertexCount)
}

// Release frees the vertex buffer. Later calls do nothing.
func (q *Quad) Release(dev graphics.Device) {
	if q == nil || q.released {
		return
	}
	q.released = true
	dev.DeleteBuffer(q.buffer)
}
