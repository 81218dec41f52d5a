// Package gfxtest provides an in-memory gfx.Device for tests.
//
// The device keeps enough state to check render target wiring without a GL
// context. It tracks objects, attachments, storage sizes, bindings, uniform
// values and every draw. It does not rasterize.
//
// Framebuffer completeness is stricter than OpenGL 4.1: attachments of
// different sizes report FramebufferUnsupported.
package gfxtest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// ImageKey identifies one image of a texture: a 2D target or cube face, and a level.
type ImageKey struct {
	Target uint32
	Level  int32
}

// Image is the storage of one texture image.
type Image struct {
	Width, Height  int32
	InternalFormat uint32
	Data           []byte
}

// Texture is a texture object.
type Texture struct {
	ID      uint32
	Target  uint32 // set by the first bind
	Images  map[ImageKey]*Image
	Params  map[uint32]int32
	FParams map[uint32]float32
	Mipmaps int // GenerateMipmap calls
}

// Attachment is one framebuffer attachment point.
type Attachment struct {
	Renderbuffer bool
	Name         uint32
	Target       uint32
	Level        int32
}

// Framebuffer is a framebuffer object.
type Framebuffer struct {
	ID          uint32
	Attachments map[uint32]Attachment
}

// Renderbuffer is a renderbuffer object.
type Renderbuffer struct {
	ID            uint32
	Format        uint32
	Width, Height int32
	Allocations   int
}

// Program is a linked program. Uniform names are read from the GLSL source.
type Program struct {
	ID               uint32
	Vertex, Fragment string
	Uniforms         []string
	Values           map[int32]any
	Blocks           []string
	BlockBindings    map[uint32]uint32
}

// Buffer is a buffer object.
type Buffer struct {
	ID    uint32
	Data  []byte
	Usage uint32
}

// UnitTarget names a texture binding point.
type UnitTarget struct {
	Unit   uint32
	Target uint32
}

// Draw records one draw call and the state it ran against.
type Draw struct {
	Program     uint32
	Uniforms    map[string]any
	Framebuffer uint32
	Status      uint32
	Color       Attachment
	ColorSize   [2]int32
	DepthSize   [2]int32
	Viewport    [4]int32
	Mode        uint32
	Count       int32
	Indexed     bool
	VAO         uint32
	Textures    map[UnitTarget]uint32
}

// Blit records one framebuffer blit.
type Blit struct {
	Src, Dst               uint32
	SrcW, SrcH, DstW, DstH int32
	Filter                 uint32
}

// Device is a recording gfx.Device.
type Device struct {
	next uint32

	Textures      map[uint32]*Texture
	Framebuffers  map[uint32]*Framebuffer
	Renderbuffers map[uint32]*Renderbuffer
	Programs      map[uint32]*Program
	Buffers       map[uint32]*Buffer
	VertexArrays  map[uint32]bool

	BoundFramebuffer uint32
	ActiveUnit       uint32
	Bindings         map[UnitTarget]uint32
	BoundBuffers     map[uint32]uint32
	BufferBases      map[uint32]uint32
	CurrentProgram   uint32
	BoundVAO         uint32
	ViewportRect     [4]int32
	Enabled          map[uint32]bool
	DepthFn          uint32
	ClearRGBA        [4]float32

	Draws  []Draw
	Clears int
	Blits  []Blit

	Anisotropy float32
	errors     []uint32
}

var _ gfx.Device = (*Device)(nil)

// New returns an empty device with a 1x1 default viewport.
func New() *Device {
	return &Device{
		Textures:      make(map[uint32]*Texture),
		Framebuffers:  make(map[uint32]*Framebuffer),
		Renderbuffers: make(map[uint32]*Renderbuffer),
		Programs:      make(map[uint32]*Program),
		Buffers:       make(map[uint32]*Buffer),
		VertexArrays:  make(map[uint32]bool),
		Bindings:      make(map[UnitTarget]uint32),
		BoundBuffers:  make(map[uint32]uint32),
		BufferBases:   make(map[uint32]uint32),
		Enabled:       make(map[uint32]bool),
		ViewportRect:  [4]int32{0, 0, 1, 1},
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

// PushError queues a code for GetError.
func (d *Device) PushError(code uint32) {
	d.errors = append(d.errors, code)
}

// LiveObjects counts objects that were created and not deleted.
func (d *Device) LiveObjects() int {
	n := len(d.Textures) + len(d.Framebuffers) + len(d.Renderbuffers) + len(d.Programs) + len(d.Buffers)
	for _, alive := range d.VertexArrays {
		if alive {
			n++
		}
	}
	return n
}

// DrawsWith returns the draws issued with program.
func (d *Device) DrawsWith(program uint32) []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.Program == program {
			out = append(out, dr)
		}
	}
	return out
}

// ImageOf returns the image of tex at target/level, or nil.
func (d *Device) ImageOf(tex, target uint32, level int32) *Image {
	t, ok := d.Textures[tex]
	if !ok {
		return nil
	}
	return t.Images[ImageKey{Target: target, Level: level}]
}

// Floats decodes a float32 slice from buffer bytes.
func Floats(b []byte) []float32 {
	if len(b) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}

// Framebuffers

func (d *Device) CreateFramebuffer() uint32 {
	id := d.id()
	d.Framebuffers[id] = &Framebuffer{ID: id, Attachments: make(map[uint32]Attachment)}
	return id
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	if d.BoundFramebuffer == fbo {
		d.BoundFramebuffer = 0
	}
	delete(d.Framebuffers, fbo)
}

func (d *Device) BindFramebuffer(target, fbo uint32) {
	if fbo != 0 {
		if _, ok := d.Framebuffers[fbo]; !ok {
			d.PushError(gfx.InvalidOperation)
			return
		}
	}
	d.BoundFramebuffer = fbo
}

func (d *Device) FramebufferTexture2D(attachment, texTarget, texture uint32, level int32) {
	fb, ok := d.Framebuffers[d.BoundFramebuffer]
	if !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	if texture == 0 {
		delete(fb.Attachments, attachment)
		return
	}
	if _, ok := d.Textures[texture]; !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	fb.Attachments[attachment] = Attachment{Name: texture, Target: texTarget, Level: level}
}

func (d *Device) FramebufferRenderbuffer(attachment, rbo uint32) {
	fb, ok := d.Framebuffers[d.BoundFramebuffer]
	if !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	if rbo == 0 {
		delete(fb.Attachments, attachment)
		return
	}
	if _, ok := d.Renderbuffers[rbo]; !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	fb.Attachments[attachment] = Attachment{Renderbuffer: true, Name: rbo}
}

func (d *Device) attachmentSize(a Attachment) (int32, int32, bool) {
	if a.Renderbuffer {
		rb, ok := d.Renderbuffers[a.Name]
		if !ok || rb.Width == 0 || rb.Height == 0 {
			return 0, 0, false
		}
		return rb.Width, rb.Height, true
	}
	img := d.ImageOf(a.Name, a.Target, a.Level)
	if img == nil || img.Width == 0 || img.Height == 0 {
		return 0, 0, false
	}
	return img.Width, img.Height, true
}

func (d *Device) CheckFramebufferStatus() uint32 {
	if d.BoundFramebuffer == 0 {
		return gfx.FramebufferComplete
	}
	fb := d.Framebuffers[d.BoundFramebuffer]
	if len(fb.Attachments) == 0 {
		return gfx.FramebufferIncompleteMissingAttachment
	}
	var w, h int32
	first := true
	for _, a := range fb.Attachments {
		aw, ah, ok := d.attachmentSize(a)
		if !ok {
			return gfx.FramebufferIncompleteAttachment
		}
		if first {
			w, h, first = aw, ah, false
			continue
		}
		if aw != w || ah != h {
			return gfx.FramebufferUnsupported
		}
	}
	if _, ok := fb.Attachments[gfx.ColorAttachment0]; !ok {
		return gfx.FramebufferIncompleteDrawBuffer
	}
	return gfx.FramebufferComplete
}

func (d *Device) BlitFramebuffer(src, dst uint32, srcW, srcH, dstW, dstH int32, filter uint32) {
	d.Blits = append(d.Blits, Blit{Src: src, Dst: dst, SrcW: srcW, SrcH: srcH, DstW: dstW, DstH: dstH, Filter: filter})
}

// Renderbuffers

func (d *Device) CreateRenderbuffer() uint32 {
	id := d.id()
	d.Renderbuffers[id] = &Renderbuffer{ID: id}
	return id
}

func (d *Device) DeleteRenderbuffer(rbo uint32) {
	delete(d.Renderbuffers, rbo)
	for _, fb := range d.Framebuffers {
		for k, a := range fb.Attachments {
			if a.Renderbuffer && a.Name == rbo {
				delete(fb.Attachments, k)
			}
		}
	}
}

func (d *Device) RenderbufferStorage(rbo, internalFormat uint32, width, height int32) {
	rb, ok := d.Renderbuffers[rbo]
	if !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	rb.Format = internalFormat
	rb.Width, rb.Height = width, height
	rb.Allocations++
}

func (d *Device) RenderbufferSize(rbo uint32) (int32, int32) {
	rb, ok := d.Renderbuffers[rbo]
	if !ok {
		return 0, 0
	}
	return rb.Width, rb.Height
}

// Textures

func (d *Device) CreateTexture() uint32 {
	id := d.id()
	d.Textures[id] = &Texture{
		ID:      id,
		Images:  make(map[ImageKey]*Image),
		Params:  make(map[uint32]int32),
		FParams: make(map[uint32]float32),
	}
	return id
}

func (d *Device) DeleteTexture(tex uint32) {
	delete(d.Textures, tex)
	for k, v := range d.Bindings {
		if v == tex {
			d.Bindings[k] = 0
		}
	}
	for _, fb := range d.Framebuffers {
		for k, a := range fb.Attachments {
			if !a.Renderbuffer && a.Name == tex {
				delete(fb.Attachments, k)
			}
		}
	}
}

func (d *Device) IsTexture(tex uint32) bool {
	t, ok := d.Textures[tex]
	return ok && t.Target != 0
}

func (d *Device) ActiveTexture(unit uint32) { d.ActiveUnit = unit }

func (d *Device) BindTexture(target, tex uint32) {
	if tex != 0 {
		t, ok := d.Textures[tex]
		if !ok {
			d.PushError(gfx.InvalidOperation)
			return
		}
		if t.Target == 0 {
			t.Target = target
		} else if t.Target != target {
			d.PushError(gfx.InvalidOperation)
			return
		}
	}
	d.Bindings[UnitTarget{Unit: d.ActiveUnit, Target: target}] = tex
}

func bindTarget(target uint32) uint32 {
	if target >= gfx.TextureCubeMapPositiveX && target <= gfx.TextureCubeMapNegativeZ {
		return gfx.TextureCubeMap
	}
	return target
}

func (d *Device) boundTexture(target uint32) *Texture {
	id := d.Bindings[UnitTarget{Unit: d.ActiveUnit, Target: bindTarget(target)}]
	return d.Textures[id]
}

func components(format uint32) int {
	switch format {
	case gfx.Red:
		return 1
	case gfx.RG:
		return 2
	case gfx.RGB:
		return 3
	default:
		return 4
	}
}

func typeSize(xtype uint32) int {
	if xtype == gfx.Float || xtype == gfx.UnsignedInt {
		return 4
	}
	return 1
}

func pixelBytes(width, height int32, format, xtype uint32) int {
	return int(width) * int(height) * components(format) * typeSize(xtype)
}

func (d *Device) TexImage2D(target uint32, level int32, internalFormat uint32, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	t := d.boundTexture(target)
	if t == nil {
		d.PushError(gfx.InvalidOperation)
		return
	}
	img := &Image{Width: width, Height: height, InternalFormat: internalFormat}
	n := pixelBytes(width, height, format, xtype)
	img.Data = make([]byte, n)
	if pixels != nil && n > 0 {
		copy(img.Data, unsafe.Slice((*byte)(pixels), n))
	}
	t.Images[ImageKey{Target: target, Level: level}] = img
}

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	if t := d.boundTexture(target); t != nil {
		t.Params[pname] = param
	}
}

func (d *Device) TexParameterf(target, pname uint32, param float32) {
	if t := d.boundTexture(target); t != nil {
		t.FParams[pname] = param
	}
}

// GenerateMipmap allocates the full chain below level 0 of every face.
func (d *Device) GenerateMipmap(target uint32) {
	t := d.boundTexture(target)
	if t == nil {
		d.PushError(gfx.InvalidOperation)
		return
	}
	faces := []uint32{gfx.Texture2D}
	if target == gfx.TextureCubeMap {
		faces = faces[:0]
		for i := 0; i < 6; i++ {
			faces = append(faces, gfx.CubeFace(i))
		}
	}
	for _, face := range faces {
		base := t.Images[ImageKey{Target: face}]
		if base == nil {
			d.PushError(gfx.InvalidOperation)
			return
		}
		w, h := base.Width, base.Height
		for level := int32(1); w > 1 || h > 1; level++ {
			w, h = max(w/2, 1), max(h/2, 1)
			key := ImageKey{Target: face, Level: level}
			if _, ok := t.Images[key]; !ok {
				t.Images[key] = &Image{Width: w, Height: h, InternalFormat: base.InternalFormat}
			}
		}
	}
	t.Mipmaps++
}

func (d *Device) GetTexImage(target uint32, level int32, format, xtype uint32, pixels unsafe.Pointer) {
	t := d.boundTexture(target)
	if t == nil {
		d.PushError(gfx.InvalidOperation)
		return
	}
	img := t.Images[ImageKey{Target: target, Level: level}]
	if img == nil {
		d.PushError(gfx.InvalidOperation)
		return
	}
	n := pixelBytes(img.Width, img.Height, format, xtype)
	dst := unsafe.Slice((*byte)(pixels), n)
	copy(dst, img.Data)
}

func (d *Device) MaxAnisotropy() float32 { return d.Anisotropy }

// Programs

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:highp|mediump|lowp)\s+)?\w+\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	blockDecl   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(\w+)\s*\{`)
)

func parseUniforms(src string, seen map[string]bool, names []string) []string {
	for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
		if m[2] == "" {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
			continue
		}
		n, _ := strconv.Atoi(m[2])
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%s[%d]", m[1], i)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// CreateProgram "links" a program. Sources that are empty or contain an
// #error directive fail like a real compiler would.
func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	for stage, src := range map[string]string{"vertex": vertexSrc, "fragment": fragmentSrc} {
		if strings.TrimSpace(src) == "" || strings.Contains(src, "#error") {
			return 0, fmt.Errorf("%w: %s shader: 0:1: error directive", gfx.ErrCompile, stage)
		}
	}

	id := d.id()
	p := &Program{
		ID:            id,
		Vertex:        vertexSrc,
		Fragment:      fragmentSrc,
		Values:        make(map[int32]any),
		BlockBindings: make(map[uint32]uint32),
	}
	seen := make(map[string]bool)
	p.Uniforms = parseUniforms(vertexSrc, seen, nil)
	p.Uniforms = parseUniforms(fragmentSrc, seen, p.Uniforms)
	for _, src := range []string{vertexSrc, fragmentSrc} {
		for _, m := range blockDecl.FindAllStringSubmatch(src, -1) {
			p.Blocks = append(p.Blocks, m[1])
		}
	}
	d.Programs[id] = p
	return id, nil
}

func (d *Device) DeleteProgram(program uint32) {
	if d.CurrentProgram == program {
		d.CurrentProgram = 0
	}
	delete(d.Programs, program)
}

func (d *Device) UseProgram(program uint32) {
	if program != 0 {
		if _, ok := d.Programs[program]; !ok {
			d.PushError(gfx.InvalidOperation)
			return
		}
	}
	d.CurrentProgram = program
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	p, ok := d.Programs[program]
	if !ok {
		d.PushError(gfx.InvalidOperation)
		return -1
	}
	for i, n := range p.Uniforms {
		if n == name {
			return int32(i)
		}
	}
	return -1
}

func (d *Device) ActiveUniforms(program uint32) []string {
	p, ok := d.Programs[program]
	if !ok {
		return nil
	}
	return append([]string(nil), p.Uniforms...)
}

func (d *Device) UniformBlockIndex(program uint32, name string) uint32 {
	p, ok := d.Programs[program]
	if !ok {
		return gfx.InvalidIndex
	}
	for i, b := range p.Blocks {
		if b == name {
			return uint32(i)
		}
	}
	return gfx.InvalidIndex
}

func (d *Device) UniformBlockBinding(program, index, binding uint32) {
	p, ok := d.Programs[program]
	if !ok || int(index) >= len(p.Blocks) {
		d.PushError(gfx.InvalidValue)
		return
	}
	p.BlockBindings[index] = binding
}

func (d *Device) setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	p, ok := d.Programs[d.CurrentProgram]
	if !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	p.Values[loc] = v
}

// Value returns the value last set for a uniform name of program.
func (d *Device) Value(program uint32, name string) (any, bool) {
	p, ok := d.Programs[program]
	if !ok {
		return nil, false
	}
	for i, n := range p.Uniforms {
		if n == name {
			v, set := p.Values[int32(i)]
			return v, set
		}
	}
	return nil, false
}

func (d *Device) Uniform1i(loc, v int32) { d.setUniform(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32) { d.setUniform(loc, v) }
func (d *Device) Uniform2f(loc int32, x, y float32) { d.setUniform(loc, mgl32.Vec2{x, y}) }
func (d *Device) Uniform3f(loc int32, x, y, z float32) { d.setUniform(loc, mgl32.Vec3{x, y, z}) }
func (d *Device) UniformMatrix3fv(loc int32, m mgl32.Mat3) { d.setUniform(loc, m) }
func (d *Device) UniformMatrix4fv(loc int32, m mgl32.Mat4) { d.setUniform(loc, m) }

// Buffers

func (d *Device) CreateBuffer() uint32 {
	id := d.id()
	d.Buffers[id] = &Buffer{ID: id}
	return id
}

func (d *Device) DeleteBuffer(buf uint32) {
	delete(d.Buffers, buf)
	for k, v := range d.BoundBuffers {
		if v == buf {
			d.BoundBuffers[k] = 0
		}
	}
}

func (d *Device) BindBuffer(target, buf uint32) {
	if buf != 0 {
		if _, ok := d.Buffers[buf]; !ok {
			d.PushError(gfx.InvalidOperation)
			return
		}
	}
	d.BoundBuffers[target] = buf
}

func (d *Device) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	b.Data = make([]byte, size)
	b.Usage = usage
	if data != nil && size > 0 {
		copy(b.Data, unsafe.Slice((*byte)(data), size))
	}
}

func (d *Device) BufferSubData(target uint32, offset, size int, data unsafe.Pointer) {
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok || offset+size > len(b.Data) {
		d.PushError(gfx.InvalidValue)
		return
	}
	copy(b.Data[offset:offset+size], unsafe.Slice((*byte)(data), size))
}

func (d *Device) BindBufferBase(target, index, buf uint32) {
	if _, ok := d.Buffers[buf]; !ok {
		d.PushError(gfx.InvalidOperation)
		return
	}
	d.BufferBases[index] = buf
	d.BoundBuffers[target] = buf
}

// Vertex arrays and draws

func (d *Device) CreateVertexArray() uint32 {
	id := d.id()
	d.VertexArrays[id] = true
	return id
}

func (d *Device) DeleteVertexArray(vao uint32) {
	if d.BoundVAO == vao {
		d.BoundVAO = 0
	}
	delete(d.VertexArrays, vao)
}

func (d *Device) BindVertexArray(vao uint32) {
	if vao != 0 && !d.VertexArrays[vao] {
		d.PushError(gfx.InvalidOperation)
		return
	}
	d.BoundVAO = vao
}

func (d *Device) IsVertexArray(vao uint32) bool { return d.VertexArrays[vao] }

func (d *Device) EnableVertexAttribArray(index uint32) {}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
}

func (d *Device) record(mode uint32, count int32, indexed bool) {
	if d.BoundVAO == 0 || d.CurrentProgram == 0 {
		d.PushError(gfx.InvalidOperation)
	}
	dr := Draw{
		Program:     d.CurrentProgram,
		Uniforms:    make(map[string]any),
		Framebuffer: d.BoundFramebuffer,
		Status:      d.CheckFramebufferStatus(),
		Viewport:    d.ViewportRect,
		Mode:        mode,
		Count:       count,
		Indexed:     indexed,
		VAO:         d.BoundVAO,
		Textures:    make(map[UnitTarget]uint32),
	}
	if p, ok := d.Programs[d.CurrentProgram]; ok {
		for loc, v := range p.Values {
			dr.Uniforms[p.Uniforms[loc]] = v
		}
	}
	for k, v := range d.Bindings {
		if v != 0 {
			dr.Textures[k] = v
		}
	}
	if fb, ok := d.Framebuffers[d.BoundFramebuffer]; ok {
		if a, ok := fb.Attachments[gfx.ColorAttachment0]; ok {
			dr.Color = a
			w, h, _ := d.attachmentSize(a)
			dr.ColorSize = [2]int32{w, h}
		}
		if a, ok := fb.Attachments[gfx.DepthAttachment]; ok {
			w, h, _ := d.attachmentSize(a)
			dr.DepthSize = [2]int32{w, h}
		}
	}
	d.Draws = append(d.Draws, dr)
}

func (d *Device) DrawArrays(mode uint32, first, count int32) { d.record(mode, count, false) }

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	d.record(mode, count, true)
}

// State

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
}

func (d *Device) CurrentViewport() [4]int32 { return d.ViewportRect }

func (d *Device) ClearColor(r, g, b, a float32) { d.ClearRGBA = [4]float32{r, g, b, a} }

func (d *Device) Clear(mask uint32) { d.Clears++ }

func (d *Device) Enable(capability uint32) { d.Enabled[capability] = true }

func (d *Device) Disable(capability uint32) { d.Enabled[capability] = false }

func (d *Device) DepthFunc(fn uint32) { d.DepthFn = fn }

func (d *Device) ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	n := pixelBytes(width, height, format, xtype)
	clear(unsafe.Slice((*byte)(pixels), n))
}

func (d *Device) GetError() uint32 {
	if len(d.errors) == 0 {
		return gfx.NoError
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}
