package framebuffer

import (
	"testing"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx/gfxtest"
)

func TestFramebufferLifecycle(t *testing.T) {
	dev := gfxtest.New()
	tb := gfx.NewTextureBindings(dev, nil)

	fb, err := New(tb, 200, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if dev.BoundFramebuffer != 0 {
		t.Error("New should leave the default framebuffer bound")
	}

	dev.Viewport(0, 0, 100, 50)
	restore := fb.BindWithViewport()
	if dev.BoundFramebuffer != fb.FBO() || dev.ViewportRect != [4]int32{0, 0, 200, 100} {
		t.Errorf("bound %d viewport %v", dev.BoundFramebuffer, dev.ViewportRect)
	}
	restore()
	if dev.BoundFramebuffer != 0 || dev.ViewportRect != [4]int32{0, 0, 100, 50} {
		t.Errorf("restore: bound %d viewport %v", dev.BoundFramebuffer, dev.ViewportRect)
	}

	if err := fb.Resize(400, 200); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if img := dev.ImageOf(fb.ColorTexture(), gfx.Texture2D, 0); img.Width != 400 || img.Height != 200 {
		t.Errorf("color = %dx%d", img.Width, img.Height)
	}

	fb.BlitToDefault(200, 100)
	if len(dev.Blits) != 1 {
		t.Fatalf("blits = %d", len(dev.Blits))
	}
	if b := dev.Blits[0]; b.Src != fb.FBO() || b.Dst != 0 || b.SrcW != 400 || b.DstW != 200 || b.Filter != uint32(gfx.Linear) {
		t.Errorf("blit = %+v", b)
	}

	if px := fb.ReadPixels(); len(px) != 400*200*4 {
		t.Errorf("ReadPixels len = %d", len(px))
	}

	fb.Destroy()
	if n := dev.LiveObjects(); n != 0 {
		t.Errorf("live objects after Destroy = %d", n)
	}
}

func TestFramebufferClampsSize(t *testing.T) {
	dev := gfxtest.New()
	fb, err := New(gfx.NewTextureBindings(dev, nil), 0, -5)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := fb.Size(); w != 1 || h != 1 {
		t.Errorf("Size() = %dx%d, want 1x1", w, h)
	}
}
