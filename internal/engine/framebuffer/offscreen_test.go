package framebuffer

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
)

type fixture struct {
	dev *gfxtest.Device
	tb  *gfx.TextureBindings
	o   *Offscreen
	rb  *Renderbuffer
}

func newFixture(t *testing.T, depth int32) *fixture {
	t.Helper()
	dev := gfxtest.New()
	o, err := NewOffscreen(dev, nil)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := NewRenderbuffer(dev, gfx.DepthComponent24, depth, depth)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.AttachRenderbuffer(rb, gfx.DepthAttachment); err != nil {
		t.Fatal(err)
	}
	return &fixture{dev: dev, tb: gfx.NewTextureBindings(dev, nil), o: o, rb: rb}
}

func TestNewOffscreenHasNoAttachments(t *testing.T) {
	dev := gfxtest.New()
	o, err := NewOffscreen(dev, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Framebuffers[o.ID()].Attachments); n != 0 {
		t.Errorf("attachments = %d, want 0", n)
	}
	err = o.Check()
	var status *gfx.FramebufferStatusError
	if !errors.As(err, &status) || status.Status != gfx.FramebufferIncompleteMissingAttachment {
		t.Errorf("Check() = %v, want missing attachment", err)
	}
}

func TestAttachTextureChecksCompleteness(t *testing.T) {
	f := newFixture(t, 32)
	cube, err := texture.NewCube(f.tb, 32, texture.CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for face := 0; face < 6; face++ {
		if err := f.o.AttachTexture(cube, gfx.ColorAttachment0, gfx.CubeFace(face), 0); err != nil {
			t.Fatalf("face %d: %v", face, err)
		}
		got := f.dev.Framebuffers[f.o.ID()].Attachments[gfx.ColorAttachment0]
		if got.Name != cube.ID() || got.Target != gfx.CubeFace(face) {
			t.Errorf("face %d attachment = %+v", face, got)
		}
	}

	// a 64² cube does not match the 32² depth buffer
	big, err := texture.NewCube(f.tb, 64, texture.CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	err = f.o.AttachTexture(big, gfx.ColorAttachment0, gfx.TextureCubeMapPositiveX, 0)
	if !errors.Is(err, gfx.ErrIncompleteFramebuffer) {
		t.Fatalf("mismatched attach = %v, want incomplete framebuffer", err)
	}
	if !gfx.IsWarning(err) {
		t.Errorf("incomplete attach should be a warning, got %v", err)
	}
}

func TestAttachTextureUnallocatedMip(t *testing.T) {
	f := newFixture(t, 16)
	cube, err := texture.NewCube(f.tb, 32, texture.CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// level 1 was never allocated on a single-level cube
	err = f.o.AttachTexture(cube, gfx.ColorAttachment0, gfx.TextureCubeMapPositiveX, 1)
	var status *gfx.FramebufferStatusError
	if !errors.As(err, &status) || status.Status != gfx.FramebufferIncompleteAttachment {
		t.Errorf("attach = %v, want incomplete attachment", err)
	}
}

func TestAttachReleasedHandles(t *testing.T) {
	f := newFixture(t, 8)
	cube, err := texture.NewCube(f.tb, 8, texture.CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	cube.Release()
	if err := f.o.AttachTexture(cube, gfx.ColorAttachment0, gfx.TextureCubeMapPositiveX, 0); !errors.Is(err, gfx.ErrInvalidHandle) {
		t.Errorf("attach released cube = %v", err)
	}
	if err := f.o.AttachRenderbuffer(&Renderbuffer{}, gfx.DepthAttachment); !errors.Is(err, gfx.ErrInvalidHandle) {
		t.Errorf("attach empty renderbuffer = %v", err)
	}
}

func TestResizeReallocatesCubeAndDepth(t *testing.T) {
	f := newFixture(t, 32)
	cube, err := texture.NewCube(f.tb, 32, texture.CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.o.AttachTexture(cube, gfx.ColorAttachment0, gfx.TextureCubeMapPositiveX, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.o.Resize(16, 16); err != nil {
		t.Fatal(err)
	}
	if cube.Size() != 16 {
		t.Errorf("cube size = %d, want 16", cube.Size())
	}
	if w, h := f.rb.Size(); w != 16 || h != 16 {
		t.Errorf("depth = %dx%d, want 16x16", w, h)
	}
	if err := f.o.Check(); err != nil {
		t.Errorf("target incomplete after Resize: %v", err)
	}
}

func TestResizeDepthPerMip(t *testing.T) {
	f := newFixture(t, 128)
	cube, err := texture.NewCube(f.tb, 128, texture.CubeOptions{MinFilter: gfx.LinearMipmapLinear})
	if err != nil {
		t.Fatal(err)
	}
	for mip := 0; mip < 5; mip++ {
		size := cube.MipSize(mip)
		if err := f.o.ResizeDepth(size, size); err != nil {
			t.Fatal(err)
		}
		for face := 0; face < 6; face++ {
			if err := f.o.AttachTexture(cube, gfx.ColorAttachment0, gfx.CubeFace(face), int32(mip)); err != nil {
				t.Fatalf("mip %d face %d: %v", mip, face, err)
			}
		}
		if w, h := f.rb.Size(); w != 128>>mip || h != 128>>mip {
			t.Errorf("mip %d depth = %dx%d", mip, w, h)
		}
	}
	// the mip chain must survive depth resizes
	if img := f.dev.ImageOf(cube.ID(), gfx.TextureCubeMapPositiveX, 0); img.Width != 128 {
		t.Errorf("level 0 reallocated to %d", img.Width)
	}
}

func TestDetachColorAndRelease(t *testing.T) {
	f := newFixture(t, 4)
	lut, err := texture.NewBRDFLUT(f.tb, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.o.AttachTexture(lut, gfx.ColorAttachment0, gfx.Texture2D, 0); err != nil {
		t.Fatal(err)
	}
	f.o.DetachColor()
	if _, ok := f.dev.Framebuffers[f.o.ID()].Attachments[gfx.ColorAttachment0]; ok {
		t.Error("color still attached")
	}

	id := f.o.ID()
	moved := f.o.Take()
	f.o.Release()
	if _, ok := f.dev.Framebuffers[id]; !ok {
		t.Fatal("releasing the moved-from target deleted the framebuffer")
	}
	moved.Release()
	if _, ok := f.dev.Framebuffers[id]; ok {
		t.Error("framebuffer not deleted")
	}
	if err := moved.Check(); !errors.Is(err, gfx.ErrReleased) {
		t.Errorf("Check after Release = %v", err)
	}
	if f.rb.ID() == 0 {
		t.Error("Release must not delete the renderbuffer")
	}
}
