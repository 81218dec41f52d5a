// Package shader wraps linked GL programs with memoized uniform lookup,
// startup validation of uniform names, and the camera uniform block.
package shader

import (
	"fmt"
	"slices"
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader/shaders"
)

// Camera uniform block layout (std140). The offsets must match the
// CameraMatrices block declared in the PBR shaders.
const (
	CameraBlock   = "CameraMatrices"
	CameraBinding = 0

	ViewOffset       = 0
	ProjectionOffset = 64
	CamPosOffset     = 128
	CameraBlockSize  = 144
)

// CameraData is the per-frame content of the camera block.
type CameraData struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Position   mgl32.Vec3
}

// Program is a linked vertex/fragment program.
//
// A Program that failed to build is not returned, so a non-nil Program is
// valid until Release. Release and Take follow the same rules as the
// texture types.
type Program struct {
	dev  gfx.Device
	log  *zap.Logger
	name string
	id   uint32

	locations map[string]int32
	ubo       uint32
}

// New compiles and links a program. A compile or link failure is fatal and
// carries the driver log.
func New(dev gfx.Device, name, vertexSrc, fragmentSrc string, log *zap.Logger) (*Program, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("shader")

	id, err := dev.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		log.Error("program build failed", zap.String("program", name), zap.Error(err))
		return nil, gfx.Fatal("build program "+name, err)
	}
	log.Debug("program created", zap.String("program", name), zap.Uint32("id", id))
	return &Program{
		dev:       dev,
		log:       log,
		name:      name,
		id:        id,
		locations: make(map[string]int32),
	}, nil
}

// Load builds src and validates it against its declared uniforms and
// blocks.
func Load(dev gfx.Device, src shaders.Source, log *zap.Logger) (*Program, error) {
	p, err := New(dev, src.Name, src.Vertex, src.Fragment, log)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(src.Uniforms, src.Blocks); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Name returns the program name used in logs.
func (p *Program) Name() string { return p.name }

// ID returns the GL name, 0 after Release or Take.
func (p *Program) ID() uint32 { return p.id }

// Valid reports whether the program can be used.
func (p *Program) Valid() bool { return p != nil && p.id != 0 }

// Use makes the program current.
func (p *Program) Use() error {
	if !p.Valid() {
		return gfx.Warning("use program", gfx.ErrReleased)
	}
	p.dev.UseProgram(p.id)
	return nil
}

// Location returns the location of a uniform. Lookups are memoized; a name
// the program does not have is logged once and cached as -1.
func (p *Program) Location(name string) int32 {
	if !p.Valid() {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	if loc < 0 {
		p.log.Warn("uniform not found",
			zap.String("program", p.name),
			zap.String("uniform", name))
		loc = -1
	}
	p.locations[name] = loc
	return loc
}

// HasUniform reports whether the program has an active uniform name.
func (p *Program) HasUniform(name string) bool {
	return p.Location(name) >= 0
}

func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.SetInt(name, i)
}

func (p *Program) SetInt(name string, v int32) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform1i(loc, v)
	}
}

func (p *Program) SetFloat(name string, v float32) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform1f(loc, v)
	}
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform2f(loc, v[0], v[1])
	}
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (p *Program) SetMat3(name string, m mgl32.Mat3) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.UniformMatrix3fv(loc, m)
	}
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.UniformMatrix4fv(loc, m)
	}
}

// Uniforms lists the active uniforms of the linked program.
func (p *Program) Uniforms() []string {
	return p.dev.ActiveUniforms(p.id)
}

// Validate checks that every uniform and block the host sets exists in the
// linked program. Missing names are a fatal error listing all of them.
// Active uniforms the host never sets are only logged. Found locations are
// cached.
func (p *Program) Validate(uniforms, blocks []string) error {
	active := p.Uniforms()

	var missing []string
	for _, name := range uniforms {
		if !slices.Contains(active, name) {
			missing = append(missing, name)
			continue
		}
		p.locations[name] = p.dev.UniformLocation(p.id, name)
	}
	for _, name := range blocks {
		if p.dev.UniformBlockIndex(p.id, name) == gfx.InvalidIndex {
			missing = append(missing, "block "+name)
		}
	}
	if len(missing) > 0 {
		p.log.Error("program is missing uniforms",
			zap.String("program", p.name),
			zap.Strings("missing", missing))
		return gfx.Fatal("validate program "+p.name,
			fmt.Errorf("%w: %s", gfx.ErrUniformNotFound, strings.Join(missing, ", ")))
	}

	for _, name := range active {
		if !slices.Contains(uniforms, name) && !blockMember(name) {
			p.log.Debug("active uniform not set by host",
				zap.String("program", p.name),
				zap.String("uniform", name))
		}
	}
	return nil
}

// blockMember reports names the driver lists for CameraMatrices members.
func blockMember(name string) bool {
	switch name {
	case "view", "projection", "camPos":
		return true
	}
	return false
}

// InitUBOs allocates the camera block buffer and binds it to its binding
// point.
func (p *Program) InitUBOs() error {
	if !p.Valid() {
		return gfx.Warning("init ubos", gfx.ErrReleased)
	}
	if p.ubo == 0 {
		p.ubo = p.dev.CreateBuffer()
	}
	p.dev.BindBuffer(gfx.UniformBuffer, p.ubo)
	p.dev.BufferData(gfx.UniformBuffer, CameraBlockSize, nil, gfx.DynamicDraw)
	p.dev.BindBuffer(gfx.UniformBuffer, 0)
	p.dev.BindBufferBase(gfx.UniformBuffer, CameraBinding, p.ubo)
	return gfx.CheckError(p.dev, "init ubos")
}

// BindUBOs connects the program's camera block to the binding point.
func (p *Program) BindUBOs() error {
	if !p.Valid() {
		return gfx.Warning("bind ubos", gfx.ErrReleased)
	}
	idx := p.dev.UniformBlockIndex(p.id, CameraBlock)
	if idx == gfx.InvalidIndex {
		p.log.Warn("uniform block not found",
			zap.String("program", p.name),
			zap.String("block", CameraBlock))
		return gfx.Warning("bind ubos", fmt.Errorf("%w: block %s", gfx.ErrUniformNotFound, CameraBlock))
	}
	p.dev.UniformBlockBinding(p.id, idx, CameraBinding)
	return nil
}

// SetCameraData writes the camera block with three sub-writes at the
// block's fixed offsets.
func (p *Program) SetCameraData(c CameraData) error {
	if p.ubo == 0 {
		return gfx.Warning("set camera data", gfx.ErrInvalidHandle)
	}
	p.dev.BindBuffer(gfx.UniformBuffer, p.ubo)
	p.dev.BufferSubData(gfx.UniformBuffer, ViewOffset, 64, unsafe.Pointer(&c.View[0]))
	p.dev.BufferSubData(gfx.UniformBuffer, ProjectionOffset, 64, unsafe.Pointer(&c.Projection[0]))
	p.dev.BufferSubData(gfx.UniformBuffer, CamPosOffset, 12, unsafe.Pointer(&c.Position[0]))
	p.dev.BindBuffer(gfx.UniformBuffer, 0)
	p.dev.BindBufferBase(gfx.UniformBuffer, CameraBinding, p.ubo)
	return nil
}

// Take moves ownership into a new Program and empties p.
func (p *Program) Take() *Program {
	moved := *p
	*p = Program{}
	return &moved
}

// Release deletes the program and its camera buffer.
func (p *Program) Release() {
	if p == nil || p.id == 0 {
		return
	}
	if p.ubo != 0 {
		p.dev.DeleteBuffer(p.ubo)
	}
	p.dev.DeleteProgram(p.id)
	*p = Program{}
}
