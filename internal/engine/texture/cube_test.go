package texture

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx/gfxtest"
)

func newBindings() (*gfxtest.Device, *gfx.TextureBindings) {
	dev := gfxtest.New()
	return dev, gfx.NewTextureBindings(dev, nil)
}

func TestNewCubeAllocatesFaces(t *testing.T) {
	tests := []struct {
		name       string
		opts       CubeOptions
		wantLevels int32
	}{
		{"linear", CubeOptions{}, 1},
		{"trilinear", CubeOptions{MinFilter: gfx.LinearMipmapLinear}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, tb := newBindings()
			c, err := NewCube(tb, 128, tt.opts)
			if err != nil {
				t.Fatalf("NewCube failed: %v", err)
			}
			if c.Levels() != tt.wantLevels {
				t.Errorf("Levels() = %d, want %d", c.Levels(), tt.wantLevels)
			}
			for face := 0; face < 6; face++ {
				for level := int32(0); level < tt.wantLevels; level++ {
					img := dev.ImageOf(c.ID(), gfx.CubeFace(face), level)
					if img == nil {
						t.Fatalf("face %d level %d not allocated", face, level)
					}
					if want := int32(128 >> level); img.Width != want || img.Height != want {
						t.Errorf("face %d level %d = %dx%d, want %d", face, level, img.Width, img.Height, want)
					}
					if img.InternalFormat != gfx.RGB16F {
						t.Errorf("internal format = 0x%X, want RGB16F", img.InternalFormat)
					}
				}
			}
			params := dev.Textures[c.ID()].Params
			if params[gfx.TextureWrapR] != gfx.ClampToEdge {
				t.Error("wrap R should clamp to edge")
			}
			if params[gfx.TextureMinFilter] != c.opts.MinFilter {
				t.Errorf("min filter = 0x%X", params[gfx.TextureMinFilter])
			}
		})
	}
}

func TestNewCubeRejectsInvalidSize(t *testing.T) {
	_, tb := newBindings()
	_, err := NewCube(tb, 0, CubeOptions{})
	if !gfx.IsFatal(err) {
		t.Errorf("NewCube(0) error = %v, want fatal", err)
	}
}

func TestCubeTakeAndRelease(t *testing.T) {
	dev, tb := newBindings()
	c, err := NewCube(tb, 32, CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id := c.ID()

	moved := c.Take()
	if c.Valid() || c.ID() != 0 {
		t.Error("source should be empty after Take")
	}
	if moved.ID() != id || moved.Size() != 32 {
		t.Errorf("moved cube = id %d size %d", moved.ID(), moved.Size())
	}

	// releasing the empty source must not touch the moved texture
	c.Release()
	if _, ok := dev.Textures[id]; !ok {
		t.Fatal("releasing an empty cube deleted the texture")
	}

	moved.Release()
	moved.Release()
	if _, ok := dev.Textures[id]; ok {
		t.Error("texture still alive after Release")
	}
	if err := moved.Bind(0); !errors.Is(err, gfx.ErrReleased) || !gfx.IsWarning(err) {
		t.Errorf("Bind after Release = %v, want released warning", err)
	}
}

func TestCubeBindUsesTracker(t *testing.T) {
	dev, tb := newBindings()
	c, err := NewCube(tb, 16, CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Bind(5); err != nil {
		t.Fatal(err)
	}
	if got := dev.Bindings[gfxtest.UnitTarget{Unit: 5, Target: gfx.TextureCubeMap}]; got != c.ID() {
		t.Errorf("unit 5 = %d, want %d", got, c.ID())
	}
	if got := tb.TouchedUnits(); len(got) != 1 || got[0] != 5 {
		t.Errorf("touched units = %v", got)
	}
}

func TestCubeReallocateAndMipmaps(t *testing.T) {
	dev, tb := newBindings()
	c, err := NewCube(tb, 64, CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Reallocate(16); err != nil {
		t.Fatal(err)
	}
	if img := dev.ImageOf(c.ID(), gfx.TextureCubeMapNegativeZ, 0); img == nil || img.Width != 16 {
		t.Fatalf("face not reallocated: %+v", img)
	}
	if err := c.GenerateMipmaps(); err != nil {
		t.Fatal(err)
	}
	if c.Levels() != 5 {
		t.Errorf("Levels() = %d, want 5", c.Levels())
	}
	if dev.Textures[c.ID()].Mipmaps != 1 {
		t.Errorf("GenerateMipmap calls = %d", dev.Textures[c.ID()].Mipmaps)
	}
	if got := c.MipSize(2); got != 4 {
		t.Errorf("MipSize(2) = %d, want 4", got)
	}
}

func TestCubeReadFace(t *testing.T) {
	_, tb := newBindings()
	c, err := NewCube(tb, 4, CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	pix, err := c.ReadFace(3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != 4*4*3 {
		t.Errorf("len = %d, want 48", len(pix))
	}
	if _, err := c.ReadFace(6, 0); err == nil {
		t.Error("face 6 should fail")
	}
	if _, err := c.ReadFace(0, 1); err == nil {
		t.Error("level 1 of a single-level cube should fail")
	}

	cube, err := c.ReadCube(0)
	if err != nil {
		t.Fatal(err)
	}
	if cube.Size != 4 {
		t.Errorf("ReadCube size = %d", cube.Size)
	}
}
