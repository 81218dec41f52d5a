package gfx

import (
	"fmt"

	"go.uber.org/zap"
)

type bindingKey struct {
	unit   uint32
	target uint32
}

// TextureBindings tracks which texture is bound to each texture unit.
//
// One instance is owned by the draw path and passed to every draw that binds
// textures. It skips redundant binds, refuses handles the device does not
// recognise, and remembers every unit it touched so the caller can reset
// them after the draw.
type TextureBindings struct {
	dev    Device
	log    *zap.Logger
	active uint32
	known  bool
	bound  map[bindingKey]uint32

	touched []bindingKey
}

// NewTextureBindings creates an empty tracker for dev.
func NewTextureBindings(dev Device, log *zap.Logger) *TextureBindings {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextureBindings{
		dev:   dev,
		log:   log,
		bound: make(map[bindingKey]uint32),
	}
}

// Bind binds tex to target on unit. A nonzero handle the device does not
// recognise is not bound and yields a warning.
func (b *TextureBindings) Bind(unit, target, tex uint32) error {
	if tex != 0 && !b.dev.IsTexture(tex) {
		b.log.Warn("binding invalid texture",
			zap.Uint32("unit", unit),
			zap.Uint32("texture", tex))
		return Warning("bind texture", fmt.Errorf("%w: texture %d on unit %d", ErrInvalidHandle, tex, unit))
	}

	key := bindingKey{unit: unit, target: target}
	b.touch(key)
	if cur, ok := b.bound[key]; ok && cur == tex {
		return nil
	}

	b.activate(unit)
	b.dev.BindTexture(target, tex)
	b.bound[key] = tex
	return nil
}

// Edit binds tex to target on unit 0 so it can be allocated, uploaded or
// read back. Unlike Bind it accepts names that were never bound, which is
// every freshly created texture, and the unit is not recorded as touched.
func (b *TextureBindings) Edit(target, tex uint32) {
	key := bindingKey{unit: 0, target: target}
	b.activate(0)
	if cur, ok := b.bound[key]; ok && cur == tex {
		return
	}
	b.dev.BindTexture(target, tex)
	b.bound[key] = tex
}

// Drop forgets every binding of tex. Deleting a texture unbinds it from all
// units, so owners call this before DeleteTexture.
func (b *TextureBindings) Drop(tex uint32) {
	for k, v := range b.bound {
		if v == tex {
			b.bound[k] = 0
		}
	}
}

// Device returns the device the tracker binds on.
func (b *TextureBindings) Device() Device {
	return b.dev
}

// Unbind binds 0 to target on unit.
func (b *TextureBindings) Unbind(unit, target uint32) {
	key := bindingKey{unit: unit, target: target}
	if cur, ok := b.bound[key]; ok && cur == 0 {
		return
	}
	b.activate(unit)
	b.dev.BindTexture(target, 0)
	b.bound[key] = 0
}

// Bound returns the texture the tracker believes is bound.
func (b *TextureBindings) Bound(unit, target uint32) uint32 {
	return b.bound[bindingKey{unit: unit, target: target}]
}

// UnbindTouched resets every unit bound since the last call and returns how
// many bindings were reset. The active unit is left at 0.
func (b *TextureBindings) UnbindTouched() int {
	n := len(b.touched)
	for _, key := range b.touched {
		b.activate(key.unit)
		b.dev.BindTexture(key.target, 0)
		b.bound[key] = 0
	}
	b.touched = b.touched[:0]
	b.activate(0)
	return n
}

// TouchedUnits returns the units bound since the last UnbindTouched.
func (b *TextureBindings) TouchedUnits() []uint32 {
	units := make([]uint32, 0, len(b.touched))
	for _, key := range b.touched {
		units = append(units, key.unit)
	}
	return units
}

// Forget drops cached state. Call it after code outside the tracker has
// changed texture bindings.
func (b *TextureBindings) Forget() {
	clear(b.bound)
	b.known = false
}

func (b *TextureBindings) touch(key bindingKey) {
	for _, k := range b.touched {
		if k == key {
			return
		}
	}
	b.touched = append(b.touched, key)
}

func (b *TextureBindings) activate(unit uint32) {
	if b.known && b.active == unit {
		return
	}
	b.dev.ActiveTexture(unit)
	b.active = unit
	b.known = true
}
