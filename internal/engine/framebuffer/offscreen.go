package framebuffer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// Attachable is a texture that can be attached as a color target.
type Attachable interface {
	ID() uint32
}

// Reallocator is a square color target whose level-0 storage can be
// reallocated, such as texture.Cube.
type Reallocator interface {
	Attachable
	Reallocate(size int32) error
}

type colorAttachment struct {
	tex    Attachable
	slot   uint32
	target uint32
	level  int32
}

// Offscreen is a framebuffer object whose attachments are swapped between
// passes. One Offscreen is reused for every face and mip level a pass
// renders, so the destination must be re-attached before each draw.
type Offscreen struct {
	dev gfx.Device
	log *zap.Logger
	fbo uint32

	color     *colorAttachment
	depth     *Renderbuffer
	depthSlot uint32
}

// NewOffscreen allocates a framebuffer with no attachments.
func NewOffscreen(dev gfx.Device, log *zap.Logger) (*Offscreen, error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Offscreen{
		dev: dev,
		log: log.Named("framebuffer"),
		fbo: dev.CreateFramebuffer(),
	}
	if o.fbo == 0 {
		return nil, gfx.Fatal("create offscreen", gfx.ErrInvalidHandle)
	}
	return o, nil
}

// ID returns the framebuffer name, 0 after Release or Take.
func (o *Offscreen) ID() uint32 { return o.fbo }

// Valid reports whether the target owns a framebuffer.
func (o *Offscreen) Valid() bool { return o.fbo != 0 }

// Bind makes the target the active draw framebuffer.
func (o *Offscreen) Bind() {
	o.dev.BindFramebuffer(gfx.Framebuffer, o.fbo)
}

// Unbind restores the default framebuffer.
func (o *Offscreen) Unbind() {
	o.dev.BindFramebuffer(gfx.Framebuffer, 0)
}

// AttachTexture attaches level of tex as a color image. target is a cube
// face or gfx.Texture2D. Completeness is checked after every attach; an
// incomplete target yields a warning wrapping *gfx.FramebufferStatusError
// and the caller must skip the draw.
func (o *Offscreen) AttachTexture(tex Attachable, slot, target uint32, level int32) error {
	if o.fbo == 0 {
		return gfx.Warning("attach texture", gfx.ErrReleased)
	}
	if tex == nil || tex.ID() == 0 {
		return gfx.Warning("attach texture", gfx.ErrInvalidHandle)
	}
	o.Bind()
	o.dev.FramebufferTexture2D(slot, target, tex.ID(), level)
	o.color = &colorAttachment{tex: tex, slot: slot, target: target, level: level}

	if err := o.Check(); err != nil {
		o.log.Warn("incomplete framebuffer after attach",
			zap.Uint32("texture", tex.ID()),
			zap.Uint32("target", target),
			zap.Int32("mip", level),
			zap.Error(err))
		return err
	}
	return nil
}

// AttachRenderbuffer attaches rb at slot. Completeness is not checked here
// because a color attachment always follows before drawing.
func (o *Offscreen) AttachRenderbuffer(rb *Renderbuffer, slot uint32) error {
	if o.fbo == 0 {
		return gfx.Warning("attach renderbuffer", gfx.ErrReleased)
	}
	if rb == nil || !rb.Valid() {
		return gfx.Warning("attach renderbuffer", gfx.ErrInvalidHandle)
	}
	o.Bind()
	o.dev.FramebufferRenderbuffer(slot, rb.ID())
	o.depth = rb
	o.depthSlot = slot
	return nil
}

// DetachColor removes the color attachment.
func (o *Offscreen) DetachColor() {
	if o.fbo == 0 || o.color == nil {
		return
	}
	o.Bind()
	o.dev.FramebufferTexture2D(o.color.slot, o.color.target, 0, 0)
	o.color = nil
}

// Depth returns the attached renderbuffer, or nil.
func (o *Offscreen) Depth() *Renderbuffer { return o.depth }

// Resize reallocates the attached color image and the depth renderbuffer
// at w×h. The color image is only reallocated when it is level 0 of a
// square target that supports it. Smaller mip levels keep their storage;
// use ResizeDepth for those.
func (o *Offscreen) Resize(w, h int32) error {
	if o.fbo == 0 {
		return gfx.Warning("resize offscreen", gfx.ErrReleased)
	}
	if o.color != nil && o.color.level == 0 {
		if r, ok := o.color.tex.(Reallocator); ok && w == h {
			if err := r.Reallocate(w); err != nil {
				return err
			}
		}
	}
	return o.ResizeDepth(w, h)
}

// ResizeDepth reallocates only the attached depth renderbuffer.
func (o *Offscreen) ResizeDepth(w, h int32) error {
	if o.fbo == 0 {
		return gfx.Warning("resize depth", gfx.ErrReleased)
	}
	if o.depth == nil {
		return nil
	}
	if cw, ch := o.depth.Size(); cw == w && ch == h {
		return nil
	}
	return o.depth.Storage(o.depth.Format(), w, h)
}

// Check binds the target and reports its completeness.
func (o *Offscreen) Check() error {
	if o.fbo == 0 {
		return gfx.Warning("check framebuffer", gfx.ErrReleased)
	}
	o.Bind()
	if status := o.dev.CheckFramebufferStatus(); status != gfx.FramebufferComplete {
		return gfx.Warning("check framebuffer", &gfx.FramebufferStatusError{Status: status})
	}
	return nil
}

// Take moves ownership into a new Offscreen and empties o.
func (o *Offscreen) Take() *Offscreen {
	moved := *o
	*o = Offscreen{}
	return &moved
}

// Release deletes the framebuffer. Attached textures and renderbuffers are
// owned elsewhere and are not deleted.
func (o *Offscreen) Release() {
	if o.fbo == 0 {
		return
	}
	o.dev.DeleteFramebuffer(o.fbo)
	*o = Offscreen{}
}
