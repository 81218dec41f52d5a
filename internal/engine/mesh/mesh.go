// Package mesh uploads indexed geometry and draws it with the PBR program.
package mesh

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/ibl"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
)

// Vertex is the interleaved vertex layout. Attribute locations follow the
// field order, 0 through 4.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

const vertexSize = int32(unsafe.Sizeof(Vertex{}))

type attribute struct {
	size   int32
	offset uintptr
}

var attributes = [...]attribute{
	{3, unsafe.Offsetof(Vertex{}.Position)},
	{3, unsafe.Offsetof(Vertex{}.Normal)},
	{2, unsafe.Offsetof(Vertex{}.TexCoords)},
	{3, unsafe.Offsetof(Vertex{}.Tangent)},
	{3, unsafe.Offsetof(Vertex{}.Bitangent)},
}

// Mesh is uploaded geometry plus its material.
type Mesh struct {
	dev       gfx.Device
	log       *zap.Logger
	fallbacks *texture.Fallbacks

	vao, vbo, ebo uint32
	indexCount    int32
	material      Material

	warned map[uint32]bool
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithLogger sets the logger for draw warnings.
func WithLogger(log *zap.Logger) Option {
	return func(m *Mesh) { m.log = log }
}

// WithFallbacks sets the textures that replace invalid material handles at
// draw time.
func WithFallbacks(f *texture.Fallbacks) Option {
	return func(m *Mesh) { m.fallbacks = f }
}

// New uploads vertices and indices into a VAO with vertex and index buffers.
func New(dev gfx.Device, vertices []Vertex, indices []uint32, material Material, opts ...Option) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, gfx.Fatalf("new mesh", "%d vertices, %d indices", len(vertices), len(indices))
	}
	m := &Mesh{
		dev:        dev,
		log:        zap.NewNop(),
		material:   material,
		indexCount: int32(len(indices)),
		warned:     make(map[uint32]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.vao = dev.CreateVertexArray()
	m.vbo = dev.CreateBuffer()
	m.ebo = dev.CreateBuffer()

	dev.BindVertexArray(m.vao)
	dev.BindBuffer(gfx.ArrayBuffer, m.vbo)
	dev.BufferData(gfx.ArrayBuffer, len(vertices)*int(vertexSize), unsafe.Pointer(&vertices[0]), gfx.StaticDraw)
	dev.BindBuffer(gfx.ElementArrayBuffer, m.ebo)
	dev.BufferData(gfx.ElementArrayBuffer, len(indices)*4, unsafe.Pointer(&indices[0]), gfx.StaticDraw)

	for i, a := range attributes {
		dev.EnableVertexAttribArray(uint32(i))
		dev.VertexAttribPointer(uint32(i), a.size, gfx.Float, false, vertexSize, a.offset)
	}
	dev.BindVertexArray(0)

	if err := gfx.CheckError(dev, "upload mesh"); err != nil {
		m.Release()
		return nil, gfx.Fatal("new mesh", err)
	}
	return m, nil
}

// Material returns the mesh material.
func (m *Mesh) Material() Material { return m.material }

// IndexCount returns the number of indices drawn.
func (m *Mesh) IndexCount() int32 { return m.indexCount }

// VAO returns the vertex array name, 0 after Release.
func (m *Mesh) VAO() uint32 { return m.vao }

// DrawPBR binds the material and IBL textures, draws the mesh with
// program, and unbinds every unit it touched.
//
// Material textures go to consecutive units from 0 in channel order, the
// IBL irradiance, prefilter and BRDF textures to the three units after
// them. A material handle the device does not recognise is replaced by the
// channel fallback. The returned error only carries warnings.
func (m *Mesh) DrawPBR(program *shader.Program, bundle ibl.Bundle, tb *gfx.TextureBindings) error {
	if err := program.Use(); err != nil {
		return err
	}
	defer tb.UnbindTouched()

	// Fallbacks are created through unit 0, so every slot is resolved
	// before the first material bind.
	var errs error
	slots, base := UnitLayout(m.material)
	for i := range slots {
		if err := m.resolveSlot(&slots[i]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for _, s := range slots {
		errs = multierr.Append(errs, tb.Bind(s.Unit, gfx.Texture2D, s.Texture))
		program.SetInt(s.Sampler, int32(s.Unit))
	}

	errs = multierr.Append(errs, tb.Bind(base, gfx.TextureCubeMap, bundle.Irradiance))
	errs = multierr.Append(errs, tb.Bind(base+1, gfx.TextureCubeMap, bundle.Prefilter))
	errs = multierr.Append(errs, tb.Bind(base+2, gfx.Texture2D, bundle.BRDFLUT))
	program.SetInt(IrradianceSampler, int32(base))
	program.SetInt(PrefilterSampler, int32(base+1))
	program.SetInt(BRDFLUTSampler, int32(base+2))
	program.SetFloat(PrefilterLevels, float32(bundle.PrefilterLevels))

	if !m.dev.IsVertexArray(m.vao) {
		m.log.Warn("draw skipped, invalid vertex array", zap.Uint32("vao", m.vao))
		return multierr.Append(errs, gfx.Warning("draw mesh", fmt.Errorf("%w: vertex array %d", gfx.ErrInvalidHandle, m.vao)))
	}
	m.dev.BindVertexArray(m.vao)
	m.dev.DrawElements(gfx.Triangles, m.indexCount, gfx.UnsignedInt, 0)
	m.dev.BindVertexArray(0)
	return errs
}

// resolveSlot swaps an unrecognised slot texture for the channel fallback.
// The slot is left as is when no fallback is configured, and the later bind
// reports it.
func (m *Mesh) resolveSlot(s *Slot) error {
	if s.Texture == 0 || m.fallbacks == nil || m.dev.IsTexture(s.Texture) {
		return nil
	}
	invalid := gfx.Warning("bind texture", fmt.Errorf("%w: texture %d on unit %d", gfx.ErrInvalidHandle, s.Texture, s.Unit))
	fb, err := m.fallbacks.Get(s.Channel)
	if err != nil {
		return multierr.Append(invalid, err)
	}
	if !m.warned[s.Texture] {
		m.warned[s.Texture] = true
		m.log.Warn("material texture replaced by fallback",
			zap.Stringer("channel", s.Channel),
			zap.Int("index", s.Index),
			zap.Uint32("texture", s.Texture))
	}
	s.Texture = fb
	return invalid
}

// Release deletes the vertex array and buffers. Material textures belong
// to the texture cache and are not deleted.
func (m *Mesh) Release() {
	if m == nil || m.vao == 0 {
		return
	}
	m.dev.DeleteVertexArray(m.vao)
	m.dev.DeleteBuffer(m.vbo)
	m.dev.DeleteBuffer(m.ebo)
	m.vao, m.vbo, m.ebo = 0, 0, 0
}
