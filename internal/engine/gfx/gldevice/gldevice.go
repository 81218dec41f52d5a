// Package gldevice implements gfx.Device on top of go-gl.
package gldevice

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// Device forwards gfx.Device calls to the current OpenGL context.
// All methods must be called from the thread that owns the context.
type Device struct {
	maxAnisotropy float32
}

var _ gfx.Device = (*Device)(nil)

// New loads the GL function pointers for the current context and logs the
// driver details.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(log *zap.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	glsl := gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
	log.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.String("glsl", glsl),
	)

	d := &Device{}
	if hasExtension("GL_EXT_texture_filter_anisotropic") || hasExtension("GL_ARB_texture_filter_anisotropic") {
		gl.GetFloatv(gfx.MaxTextureMaxAnisotropy, &d.maxAnisotropy)
		log.Debug("anisotropic filtering available", zap.Float32("max", d.maxAnisotropy))
	}
	return d, nil
}

func hasExtension(name string) bool {
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))) == name {
			return true
		}
	}
	return false
}

func (d *Device) CreateFramebuffer() uint32 {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return fbo
}

func (d *Device) DeleteFramebuffer(fbo uint32) { gl.DeleteFramebuffers(1, &fbo) }

func (d *Device) BindFramebuffer(target, fbo uint32) { gl.BindFramebuffer(target, fbo) }

func (d *Device) FramebufferTexture2D(attachment, texTarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, texTarget, texture, level)
}

func (d *Device) FramebufferRenderbuffer(attachment, rbo uint32) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, rbo)
}

func (d *Device) CheckFramebufferStatus() uint32 {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
}

func (d *Device) BlitFramebuffer(src, dst uint32, srcW, srcH, dstW, dstH int32, filter uint32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst)
	gl.BlitFramebuffer(0, 0, srcW, srcH, 0, 0, dstW, dstH, gl.COLOR_BUFFER_BIT, filter)
	gl.BindFramebuffer(gl.FRAMEBUFFER, dst)
}

func (d *Device) CreateRenderbuffer() uint32 {
	var rbo uint32
	gl.GenRenderbuffers(1, &rbo)
	return rbo
}

func (d *Device) DeleteRenderbuffer(rbo uint32) { gl.DeleteRenderbuffers(1, &rbo) }

func (d *Device) RenderbufferStorage(rbo, internalFormat uint32, width, height int32) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, internalFormat, width, height)
}

func (d *Device) RenderbufferSize(rbo uint32) (width, height int32) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.GetRenderbufferParameteriv(gl.RENDERBUFFER, gl.RENDERBUFFER_WIDTH, &width)
	gl.GetRenderbufferParameteriv(gl.RENDERBUFFER, gl.RENDERBUFFER_HEIGHT, &height)
	return width, height
}

func (d *Device) CreateTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (d *Device) DeleteTexture(tex uint32) { gl.DeleteTextures(1, &tex) }

func (d *Device) IsTexture(tex uint32) bool { return gl.IsTexture(tex) }

func (d *Device) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (d *Device) BindTexture(target, tex uint32) { gl.BindTexture(target, tex) }

func (d *Device) TexImage2D(target uint32, level int32, internalFormat uint32, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.TexImage2D(target, level, int32(internalFormat), width, height, 0, format, xtype, pixels)
}

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (d *Device) TexParameterf(target, pname uint32, param float32) {
	gl.TexParameterf(target, pname, param)
}

func (d *Device) GenerateMipmap(target uint32) { gl.GenerateMipmap(target) }

func (d *Device) GetTexImage(target uint32, level int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(target, level, format, xtype, pixels)
}

func (d *Device) MaxAnisotropy() float32 { return d.maxAnisotropy }

// CreateProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error carrying the driver log.
func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programLog(program)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link: %s", gfx.ErrCompile, log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", gfx.ErrCompile, name, strings.TrimRight(string(log), "\x00"))
	}

	return shader, nil
}

func programLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	log := make([]byte, logLen+1)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// ActiveUniforms lists the active uniform names of a linked program. Array
// uniforms are expanded to one name per element.
func (d *Device) ActiveUniforms(program uint32) []string {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 {
		return nil
	}

	names := make([]string, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		if size > 1 && strings.HasSuffix(name, "[0]") {
			base := strings.TrimSuffix(name, "[0]")
			for j := int32(0); j < size; j++ {
				names = append(names, fmt.Sprintf("%s[%d]", base, j))
			}
			continue
		}
		names = append(names, name)
	}
	return names
}

func (d *Device) UniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
}

func (d *Device) UniformBlockBinding(program, index, binding uint32) {
	gl.UniformBlockBinding(program, index, binding)
}

func (d *Device) Uniform1i(loc, v int32) { gl.Uniform1i(loc, v) }

func (d *Device) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (d *Device) Uniform2f(loc int32, x, y float32) { gl.Uniform2f(loc, x, y) }

func (d *Device) Uniform3f(loc int32, x, y, z float32) { gl.Uniform3f(loc, x, y, z) }

func (d *Device) UniformMatrix3fv(loc int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMatrix4fv(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (d *Device) BindBuffer(target, buf uint32) { gl.BindBuffer(target, buf) }

func (d *Device) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	gl.BufferData(target, size, data, usage)
}

func (d *Device) BufferSubData(target uint32, offset, size int, data unsafe.Pointer) {
	gl.BufferSubData(target, offset, size, data)
}

func (d *Device) BindBufferBase(target, index, buf uint32) {
	gl.BindBufferBase(target, index, buf)
}

func (d *Device) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) IsVertexArray(vao uint32) bool { return gl.IsVertexArray(vao) }

func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (d *Device) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElementsWithOffset(mode, count, xtype, offset)
}

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) CurrentViewport() [4]int32 {
	var vp [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	return vp
}

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear(mask uint32) { gl.Clear(mask) }

func (d *Device) Enable(capability uint32) { gl.Enable(capability) }

func (d *Device) Disable(capability uint32) { gl.Disable(capability) }

func (d *Device) DepthFunc(fn uint32) { gl.DepthFunc(fn) }

func (d *Device) ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, format, xtype, pixels)
}

func (d *Device) GetError() uint32 { return gl.GetError() }
