package framebuffer

import (
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// Renderbuffer is depth storage for an offscreen target. It is move-only in
// the same way as texture.Cube: Take empties the source and Release on an
// empty value does nothing.
type Renderbuffer struct {
	dev    gfx.Device
	id     uint32
	format uint32
}

// NewRenderbuffer allocates a renderbuffer with format storage of w×h.
func NewRenderbuffer(dev gfx.Device, format uint32, w, h int32) (*Renderbuffer, error) {
	rb := &Renderbuffer{dev: dev, id: dev.CreateRenderbuffer()}
	if err := rb.Storage(format, w, h); err != nil {
		rb.Release()
		return nil, gfx.Fatal("create renderbuffer", err)
	}
	return rb, nil
}

// Storage (re)allocates the storage. Attachments keep referring to the
// renderbuffer, so an attached depth buffer follows the new size.
func (rb *Renderbuffer) Storage(format uint32, w, h int32) error {
	if rb.id == 0 {
		return gfx.Warning("renderbuffer storage", gfx.ErrReleased)
	}
	if w <= 0 || h <= 0 {
		return gfx.Warnf("renderbuffer storage", "invalid size %dx%d", w, h)
	}
	rb.dev.RenderbufferStorage(rb.id, format, w, h)
	rb.format = format
	return gfx.CheckError(rb.dev, "renderbuffer storage")
}

// Size returns the storage size reported by the device.
func (rb *Renderbuffer) Size() (w, h int32) {
	if rb.id == 0 {
		return 0, 0
	}
	return rb.dev.RenderbufferSize(rb.id)
}

// Format returns the internal format of the storage.
func (rb *Renderbuffer) Format() uint32 { return rb.format }

// ID returns the GL name, 0 after Release or Take.
func (rb *Renderbuffer) ID() uint32 { return rb.id }

// Valid reports whether the renderbuffer owns a GL name.
func (rb *Renderbuffer) Valid() bool { return rb.id != 0 }

// Take moves ownership into a new Renderbuffer and empties rb.
func (rb *Renderbuffer) Take() *Renderbuffer {
	moved := *rb
	*rb = Renderbuffer{}
	return &moved
}

// Release deletes the renderbuffer.
func (rb *Renderbuffer) Release() {
	if rb.id == 0 {
		return
	}
	rb.dev.DeleteRenderbuffer(rb.id)
	*rb = Renderbuffer{}
}
