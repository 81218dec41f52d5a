package texture

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/pkg/envmap"
)

// CubeOptions configures a cube texture. Zero values select RGB16F storage
// with linear filtering and no mip chain.
type CubeOptions struct {
	InternalFormat uint32
	MinFilter      int32
	MagFilter      int32
}

func (o CubeOptions) withDefaults() CubeOptions {
	if o.InternalFormat == 0 {
		o.InternalFormat = gfx.RGB16F
	}
	if o.MinFilter == 0 {
		o.MinFilter = gfx.Linear
	}
	if o.MagFilter == 0 {
		o.MagFilter = gfx.Linear
	}
	return o
}

// usesMipmaps reports whether a minification filter samples mip levels.
func usesMipmaps(filter int32) bool {
	switch filter {
	case gfx.NearestMipmapNearest, gfx.LinearMipmapNearest, gfx.NearestMipmapLinear, gfx.LinearMipmapLinear:
		return true
	}
	return false
}

// Cube is a six-face texture used as a render destination and as a
// sampler input.
//
// A Cube owns its GL name. Copying the struct would alias the name, so
// ownership moves with Take, which leaves the source empty. Release on an
// empty Cube does nothing.
type Cube struct {
	tb     *gfx.TextureBindings
	id     uint32
	size   int32
	levels int32
	opts   CubeOptions
}

// NewCube allocates all six faces at size. When the minification filter
// samples mip levels the full chain is allocated immediately.
func NewCube(tb *gfx.TextureBindings, size int32, opts CubeOptions) (*Cube, error) {
	if size <= 0 {
		return nil, gfx.Fatalf("create cube", "invalid size %d", size)
	}
	c := &Cube{tb: tb, opts: opts.withDefaults()}
	c.id = tb.Device().CreateTexture()
	c.allocate(size)

	dev := tb.Device()
	dev.TexParameteri(gfx.TextureCubeMap, gfx.TextureWrapS, gfx.ClampToEdge)
	dev.TexParameteri(gfx.TextureCubeMap, gfx.TextureWrapT, gfx.ClampToEdge)
	dev.TexParameteri(gfx.TextureCubeMap, gfx.TextureWrapR, gfx.ClampToEdge)
	dev.TexParameteri(gfx.TextureCubeMap, gfx.TextureMinFilter, c.opts.MinFilter)
	dev.TexParameteri(gfx.TextureCubeMap, gfx.TextureMagFilter, c.opts.MagFilter)

	if usesMipmaps(c.opts.MinFilter) {
		dev.GenerateMipmap(gfx.TextureCubeMap)
		c.levels = int32(envmap.MipLevels(int(size)))
	}
	if err := gfx.CheckError(dev, "create cube"); err != nil {
		c.Release()
		return nil, gfx.Fatal("create cube", err)
	}
	return c, nil
}

// allocate binds the cube and gives every face level-0 storage.
func (c *Cube) allocate(size int32) {
	c.size = size
	c.levels = 1
	c.tb.Edit(gfx.TextureCubeMap, c.id)
	dev := c.tb.Device()
	for i := 0; i < envmap.FaceCount; i++ {
		dev.TexImage2D(gfx.CubeFace(i), 0, c.opts.InternalFormat, size, size, gfx.RGB, gfx.Float, nil)
	}
}

// ID returns the GL name, 0 after Release or Take.
func (c *Cube) ID() uint32 { return c.id }

// Valid reports whether the cube still owns a texture.
func (c *Cube) Valid() bool { return c.id != 0 }

// Size returns the level-0 edge length.
func (c *Cube) Size() int32 { return c.size }

// Levels returns the number of allocated mip levels.
func (c *Cube) Levels() int32 { return c.levels }

// InternalFormat returns the storage format.
func (c *Cube) InternalFormat() uint32 { return c.opts.InternalFormat }

// MipSize returns the edge length of level.
func (c *Cube) MipSize(level int) int32 {
	return int32(envmap.MipSize(int(c.size), level))
}

// Bind binds the cube to a texture unit for sampling.
func (c *Cube) Bind(unit uint32) error {
	if c.id == 0 {
		return gfx.Warning("bind cube", gfx.ErrReleased)
	}
	return c.tb.Bind(unit, gfx.TextureCubeMap, c.id)
}

// GenerateMipmaps rebuilds the mip chain from level 0.
func (c *Cube) GenerateMipmaps() error {
	if c.id == 0 {
		return gfx.Warning("generate cube mipmaps", gfx.ErrReleased)
	}
	c.tb.Edit(gfx.TextureCubeMap, c.id)
	c.tb.Device().GenerateMipmap(gfx.TextureCubeMap)
	c.levels = int32(envmap.MipLevels(int(c.size)))
	return gfx.CheckError(c.tb.Device(), "generate cube mipmaps")
}

// Reallocate replaces the storage of all faces with size×size images. Any
// mip chain is dropped and rebuilt when the filter needs one.
func (c *Cube) Reallocate(size int32) error {
	if c.id == 0 {
		return gfx.Warning("reallocate cube", gfx.ErrReleased)
	}
	if size <= 0 {
		return gfx.Warnf("reallocate cube", "invalid size %d", size)
	}
	c.allocate(size)
	if usesMipmaps(c.opts.MinFilter) {
		c.tb.Device().GenerateMipmap(gfx.TextureCubeMap)
		c.levels = int32(envmap.MipLevels(int(size)))
	}
	return gfx.CheckError(c.tb.Device(), "reallocate cube")
}

// ReadFace reads one face at level back as RGB floats, row 0 first.
func (c *Cube) ReadFace(face int, level int) ([]float32, error) {
	if c.id == 0 {
		return nil, gfx.Warning("read cube face", gfx.ErrReleased)
	}
	if face < 0 || face >= envmap.FaceCount {
		return nil, gfx.Warnf("read cube face", "face %d out of range", face)
	}
	if level < 0 || int32(level) >= c.levels {
		return nil, gfx.Warnf("read cube face", "level %d out of range [0,%d)", level, c.levels)
	}
	n := c.MipSize(level)
	pix := make([]float32, int(n*n)*3)
	c.tb.Edit(gfx.TextureCubeMap, c.id)
	c.tb.Device().GetTexImage(gfx.CubeFace(face), int32(level), gfx.RGB, gfx.Float, unsafe.Pointer(&pix[0]))
	if err := gfx.CheckError(c.tb.Device(), "read cube face"); err != nil {
		return nil, err
	}
	return pix, nil
}

// ReadCube reads level of every face into a CPU cube.
func (c *Cube) ReadCube(level int) (*envmap.Cube, error) {
	out := envmap.NewCube(int(c.MipSize(level)))
	for f := 0; f < envmap.FaceCount; f++ {
		pix, err := c.ReadFace(f, level)
		if err != nil {
			return nil, fmt.Errorf("face %s: %w", envmap.Face(f), err)
		}
		out.Faces[f] = pix
	}
	return out, nil
}

// Take moves ownership into a new Cube and empties c.
func (c *Cube) Take() *Cube {
	moved := *c
	*c = Cube{}
	return &moved
}

// Release deletes the texture. It is safe to call on an empty Cube.
func (c *Cube) Release() {
	if c.id == 0 {
		return
	}
	c.tb.Drop(c.id)
	c.tb.Device().DeleteTexture(c.id)
	*c = Cube{}
}
