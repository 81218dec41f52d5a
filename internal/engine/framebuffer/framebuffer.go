// Package framebuffer provides render targets for offscreen rendering.
//
// Offscreen is the shared capture target of the IBL passes: attachments are
// swapped between draws. Framebuffer is a fixed color+depth target for
// whole-frame rendering such as supersampling.
package framebuffer

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
)

// Framebuffer manages an offscreen render target with color and depth attachments.
type Framebuffer struct {
	dev    gfx.Device
	target *Offscreen
	color  *texture.Texture2D
	depth  *Renderbuffer
	width  int32
	height int32
}

// New creates a new framebuffer with the specified dimensions.
func New(tb *gfx.TextureBindings, width, height int32) (*Framebuffer, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb := &Framebuffer{
		dev:    tb.Device(),
		width:  width,
		height: height,
	}

	if err := fb.create(tb); err != nil {
		fb.Destroy()
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create(tb *gfx.TextureBindings) error {
	var err error
	if fb.target, err = NewOffscreen(fb.dev, nil); err != nil {
		return err
	}
	if fb.color, err = texture.NewRenderTarget(tb, fb.width, fb.height, gfx.RGBA8); err != nil {
		return err
	}
	if fb.depth, err = NewRenderbuffer(fb.dev, gfx.DepthComponent24, fb.width, fb.height); err != nil {
		return err
	}
	if err = fb.target.AttachRenderbuffer(fb.depth, gfx.DepthAttachment); err != nil {
		return err
	}
	if err = fb.target.AttachTexture(fb.color, gfx.ColorAttachment0, gfx.Texture2D, 0); err != nil {
		return err
	}
	fb.target.Unbind()
	return nil
}

// Bind makes this framebuffer the current render target.
func (fb *Framebuffer) Bind() {
	fb.target.Bind()
	fb.dev.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	fb.target.Unbind()
}

// BindWithViewport binds and sets viewport, saving previous state.
// Returns a restore function that rebinds the default framebuffer and the
// previous viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	prev := fb.dev.CurrentViewport()
	fb.Bind()

	return func() {
		fb.target.Unbind()
		fb.dev.Viewport(prev[0], prev[1], prev[2], prev[3])
	}
}

// Clear clears color and depth buffers with the specified color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	fb.dev.ClearColor(r, g, b, a)
	fb.dev.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)
}

// ColorTexture returns the color attachment texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.color.ID()
}

// FBO returns the underlying framebuffer object ID.
func (fb *Framebuffer) FBO() uint32 {
	return fb.target.ID()
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize updates the framebuffer dimensions if they have changed.
func (fb *Framebuffer) Resize(width, height int32) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == fb.width && height == fb.height {
		return nil
	}

	fb.width = width
	fb.height = height

	if err := fb.color.Resize(width, height); err != nil {
		return err
	}
	if err := fb.target.ResizeDepth(width, height); err != nil {
		return err
	}
	err := fb.target.Check()
	fb.target.Unbind()
	return err
}

// BlitToDefault copies the color buffer to the default framebuffer with
// linear filtering, scaling to dstW×dstH.
func (fb *Framebuffer) BlitToDefault(dstW, dstH int32) {
	fb.dev.BlitFramebuffer(fb.target.ID(), 0, fb.width, fb.height, dstW, dstH, uint32(gfx.Linear))
}

// ReadPixels reads the framebuffer color attachment into a byte slice.
// Rows are bottom-up as OpenGL stores them.
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)

	fb.target.Bind()
	fb.dev.ReadPixels(0, 0, fb.width, fb.height, gfx.RGBA, gfx.UnsignedByte, unsafe.Pointer(&pixels[0]))
	fb.target.Unbind()

	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.target != nil {
		fb.target.Release()
	}
	if fb.color != nil {
		fb.color.Release()
	}
	if fb.depth != nil {
		fb.depth.Release()
	}
}
