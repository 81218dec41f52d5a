// Package gfx defines the graphics device surface used by the engine.
//
// Engine packages talk to a Device instead of calling OpenGL directly. The
// gldevice package provides the real implementation and gfxtest provides an
// in-memory recorder for tests.
package gfx

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Device is the subset of OpenGL 4.1 core used by the renderer.
// Object names are plain uint32 values; 0 is never a valid object.
type Device interface {
	// Framebuffers
	CreateFramebuffer() uint32
	DeleteFramebuffer(fbo uint32)
	BindFramebuffer(target, fbo uint32)
	FramebufferTexture2D(attachment, texTarget, texture uint32, level int32)
	FramebufferRenderbuffer(attachment, rbo uint32)
	CheckFramebufferStatus() uint32
	BlitFramebuffer(src, dst uint32, srcW, srcH, dstW, dstH int32, filter uint32)

	// Renderbuffers
	CreateRenderbuffer() uint32
	DeleteRenderbuffer(rbo uint32)
	RenderbufferStorage(rbo, internalFormat uint32, width, height int32)
	RenderbufferSize(rbo uint32) (width, height int32)

	// Textures
	CreateTexture() uint32
	DeleteTexture(tex uint32)
	IsTexture(tex uint32) bool
	ActiveTexture(unit uint32) // zero-based, not GL_TEXTURE0+n
	BindTexture(target, tex uint32)
	TexImage2D(target uint32, level int32, internalFormat uint32, width, height int32, format, xtype uint32, pixels unsafe.Pointer)
	TexParameteri(target, pname uint32, param int32)
	TexParameterf(target, pname uint32, param float32)
	GenerateMipmap(target uint32)
	GetTexImage(target uint32, level int32, format, xtype uint32, pixels unsafe.Pointer)
	MaxAnisotropy() float32

	// Programs and uniforms
	CreateProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	ActiveUniforms(program uint32) []string
	UniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, index, binding uint32)
	Uniform1i(loc, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	Uniform3f(loc int32, x, y, z float32)
	UniformMatrix3fv(loc int32, m mgl32.Mat3)
	UniformMatrix4fv(loc int32, m mgl32.Mat4)

	// Buffers
	CreateBuffer() uint32
	DeleteBuffer(buf uint32)
	BindBuffer(target, buf uint32)
	BufferData(target uint32, size int, data unsafe.Pointer, usage uint32)
	BufferSubData(target uint32, offset, size int, data unsafe.Pointer)
	BindBufferBase(target, index, buf uint32)

	// Vertex arrays and draws
	CreateVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	IsVertexArray(vao uint32) bool
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	DrawArrays(mode uint32, first, count int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)

	// Fixed-function state
	Viewport(x, y, width, height int32)
	CurrentViewport() [4]int32
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(capability uint32)
	Disable(capability uint32)
	DepthFunc(fn uint32)
	ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer)
	GetError() uint32
}

// CubeFace returns the texture target of cube face i (0..5), starting at +X.
func CubeFace(i int) uint32 {
	return TextureCubeMapPositiveX + uint32(i)
}
