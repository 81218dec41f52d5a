// Package supersample renders frames at a multiple of the window size and
// downsamples them to the default framebuffer.
package supersample

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// DefaultScale is the supersampling factor used by the demo.
const DefaultScale = 2

// Renderer owns the scaled scene framebuffer.
type Renderer struct {
	dev     gfx.Device
	log     *zap.Logger
	fb      *framebuffer.Framebuffer
	scale   int32
	winW    int32
	winH    int32
	restore func()
}

// New creates a renderer for a window of width×height pixels.
func New(tb *gfx.TextureBindings, width, height, scale int, log *zap.Logger) (*Renderer, error) {
	if scale < 1 {
		return nil, gfx.Fatalf("supersample", "scale %d < 1", scale)
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		dev:   tb.Device(),
		log:   log,
		scale: int32(scale),
		winW:  clamp(width),
		winH:  clamp(height),
	}
	fb, err := framebuffer.New(tb, r.winW*r.scale, r.winH*r.scale)
	if err != nil {
		return nil, fmt.Errorf("supersample: %w", err)
	}
	r.fb = fb
	return r, nil
}

func clamp(v int) int32 {
	if v < 1 {
		return 1
	}
	return int32(v)
}

// Framebuffer returns the scaled scene target.
func (r *Renderer) Framebuffer() *framebuffer.Framebuffer { return r.fb }

// Scale returns the supersampling factor.
func (r *Renderer) Scale() int { return int(r.scale) }

// WindowSize returns the size frames are downsampled to.
func (r *Renderer) WindowSize() (width, height int32) { return r.winW, r.winH }

// BeginRender binds the scene target with its viewport.
func (r *Renderer) BeginRender() {
	if r.restore != nil {
		r.log.Warn("BeginRender called twice without EndRender")
		return
	}
	r.restore = r.fb.BindWithViewport()
}

// EndRender downsamples the frame to the default framebuffer with linear
// filtering and restores the previous viewport.
func (r *Renderer) EndRender() {
	if r.restore == nil {
		return
	}
	r.restore()
	r.restore = nil
	r.fb.BlitToDefault(r.winW, r.winH)
	r.dev.Viewport(0, 0, r.winW, r.winH)
}

// OnResize resizes the scene target to scale×(width, height).
func (r *Renderer) OnResize(width, height int) {
	r.winW, r.winH = clamp(width), clamp(height)
	if err := r.fb.Resize(r.winW*r.scale, r.winH*r.scale); err != nil {
		r.log.Error("resizing supersample target", zap.Error(err))
		return
	}
	r.log.Debug("supersample target resized",
		zap.Int32("width", r.winW*r.scale),
		zap.Int32("height", r.winH*r.scale))
}

// Release frees the scene target.
func (r *Renderer) Release() {
	if r.fb != nil {
		r.fb.Destroy()
		r.fb = nil
	}
}
