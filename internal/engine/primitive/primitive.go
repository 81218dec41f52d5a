// Package primitive draws the unit cube used for cube-face capture and the
// full-screen quad used for 2D lookup generation.
package primitive

import (
	"unsafe"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// Vertex counts of the two shapes.
const (
	CubeVertices = 36
	QuadVertices = 4
)

// cubeData is position, normal, uv per vertex, wound counter-clockwise seen
// from outside.
var cubeData = [CubeVertices * 8]float32{
	// back face
	-1, -1, -1, 0, 0, -1, 0, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	1, -1, -1, 0, 0, -1, 1, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	-1, -1, -1, 0, 0, -1, 0, 0,
	-1, 1, -1, 0, 0, -1, 0, 1,
	// front face
	-1, -1, 1, 0, 0, 1, 0, 0,
	1, -1, 1, 0, 0, 1, 1, 0,
	1, 1, 1, 0, 0, 1, 1, 1,
	1, 1, 1, 0, 0, 1, 1, 1,
	-1, 1, 1, 0, 0, 1, 0, 1,
	-1, -1, 1, 0, 0, 1, 0, 0,
	// left face
	-1, 1, 1, -1, 0, 0, 1, 0,
	-1, 1, -1, -1, 0, 0, 1, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, 1, -1, 0, 0, 0, 0,
	-1, 1, 1, -1, 0, 0, 1, 0,
	// right face
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, -1, 1, 0, 0, 1, 1,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, 1, 1, 0, 0, 0, 0,
	// bottom face
	-1, -1, -1, 0, -1, 0, 0, 1,
	1, -1, -1, 0, -1, 0, 1, 1,
	1, -1, 1, 0, -1, 0, 1, 0,
	1, -1, 1, 0, -1, 0, 1, 0,
	-1, -1, 1, 0, -1, 0, 0, 0,
	-1, -1, -1, 0, -1, 0, 0, 1,
	// top face
	-1, 1, -1, 0, 1, 0, 0, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	1, 1, -1, 0, 1, 0, 1, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	-1, 1, -1, 0, 1, 0, 0, 1,
	-1, 1, 1, 0, 1, 0, 0, 0,
}

// quadData is position, uv for a triangle strip covering clip space.
var quadData = [QuadVertices * 5]float32{
	-1, 1, 0, 0, 1,
	-1, -1, 0, 0, 0,
	1, 1, 0, 1, 1,
	1, -1, 0, 1, 0,
}

type shape struct {
	vao, vbo uint32
}

func (s *shape) ready() bool { return s.vao != 0 }

// Renderer owns the geometry of both shapes. Each shape is uploaded on its
// first draw and reused afterwards.
type Renderer struct {
	dev  gfx.Device
	cube shape
	quad shape
}

func New(dev gfx.Device) *Renderer {
	return &Renderer{dev: dev}
}

func (r *Renderer) upload(s *shape, data []float32, attribs []int32) {
	s.vao = r.dev.CreateVertexArray()
	s.vbo = r.dev.CreateBuffer()
	r.dev.BindVertexArray(s.vao)
	r.dev.BindBuffer(gfx.ArrayBuffer, s.vbo)
	r.dev.BufferData(gfx.ArrayBuffer, len(data)*4, unsafe.Pointer(&data[0]), gfx.StaticDraw)

	var stride int32
	for _, n := range attribs {
		stride += n * 4
	}
	var offset uintptr
	for i, n := range attribs {
		r.dev.EnableVertexAttribArray(uint32(i))
		r.dev.VertexAttribPointer(uint32(i), n, gfx.Float, false, stride, offset)
		offset += uintptr(n * 4)
	}
	r.dev.BindBuffer(gfx.ArrayBuffer, 0)
	r.dev.BindVertexArray(0)
}

// DrawCube draws the unit cube with the current program: 36 vertices with
// position, normal and uv attributes at locations 0, 1 and 2.
func (r *Renderer) DrawCube() {
	if !r.cube.ready() {
		r.upload(&r.cube, cubeData[:], []int32{3, 3, 2})
	}
	r.dev.BindVertexArray(r.cube.vao)
	r.dev.DrawArrays(gfx.Triangles, 0, CubeVertices)
	r.dev.BindVertexArray(0)
}

// DrawQuad draws a full-screen quad as a 4-vertex triangle strip with
// position and uv at locations 0 and 1.
func (r *Renderer) DrawQuad() {
	if !r.quad.ready() {
		r.upload(&r.quad, quadData[:], []int32{3, 2})
	}
	r.dev.BindVertexArray(r.quad.vao)
	r.dev.DrawArrays(gfx.TriangleStrip, 0, QuadVertices)
	r.dev.BindVertexArray(0)
}

// Release deletes the uploaded geometry. The renderer can be used again
// afterwards and re-uploads on the next draw.
func (r *Renderer) Release() {
	for _, s := range []*shape{&r.cube, &r.quad} {
		if s.vao != 0 {
			r.dev.DeleteVertexArray(s.vao)
			r.dev.DeleteBuffer(s.vbo)
		}
		*s = shape{}
	}
}
