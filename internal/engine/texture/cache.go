package texture

import (
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
)

// Channel is a material texture slot.
type Channel int

const (
	Albedo Channel = iota
	Normal
	RoughnessMetallic
	AO

	ChannelCount = 4
)

func (c Channel) String() string {
	switch c {
	case Albedo:
		return "albedo"
	case Normal:
		return "normal"
	case RoughnessMetallic:
		return "roughnessMetallic"
	case AO:
		return "ao"
	default:
		return "channel?"
	}
}

// FallbackColor is the flat color used when a material has no texture for c.
func (c Channel) FallbackColor() [3]uint8 {
	switch c {
	case Normal:
		return [3]uint8{128, 128, 255}
	case RoughnessMetallic:
		return [3]uint8{0, 0, 0}
	case AO:
		return [3]uint8{255, 255, 255}
	default:
		return [3]uint8{128, 128, 128}
	}
}

// Fallbacks lazily creates one flat texture per channel.
type Fallbacks struct {
	tb       *gfx.TextureBindings
	textures [ChannelCount]*Texture2D
}

func NewFallbacks(tb *gfx.TextureBindings) *Fallbacks {
	return &Fallbacks{tb: tb}
}

// Get returns the fallback texture name for c, creating it on first use.
func (f *Fallbacks) Get(c Channel) (uint32, error) {
	if t := f.textures[c]; t != nil && t.Valid() {
		return t.ID(), nil
	}
	rgb := c.FallbackColor()
	t, err := NewSolid(f.tb, rgb[0], rgb[1], rgb[2])
	if err != nil {
		return 0, err
	}
	f.textures[c] = t
	return t.ID(), nil
}

// Release deletes every fallback created so far.
func (f *Fallbacks) Release() {
	for i, t := range f.textures {
		if t != nil {
			t.Release()
			f.textures[i] = nil
		}
	}
}

// Cache loads material textures by path and keeps one texture per file.
type Cache struct {
	tb         *gfx.TextureBindings
	anisotropy float32
	log        *zap.Logger
	textures   map[string]*Texture2D
}

// NewCache creates an empty cache. Textures it loads use the given
// anisotropy level.
func NewCache(tb *gfx.TextureBindings, anisotropy float32, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		tb:         tb,
		anisotropy: anisotropy,
		log:        log.Named("texture"),
		textures:   make(map[string]*Texture2D),
	}
}

// Load returns the texture for path, decoding and uploading it on first use.
func (c *Cache) Load(path string) (uint32, error) {
	key := filepath.Clean(path)
	if t, ok := c.textures[key]; ok {
		return t.ID(), nil
	}

	img, err := DecodeImage(key)
	if err != nil {
		return 0, err
	}
	t, err := NewFromImage(c.tb, img, c.anisotropy)
	if err != nil {
		return 0, err
	}
	c.textures[key] = t

	w, h := t.Size()
	c.log.Debug("loaded texture",
		zap.String("path", key),
		zap.Int32("width", w),
		zap.Int32("height", h))
	return t.ID(), nil
}

// LoadData returns the texture cached under key, decoding data on first
// use. It serves images embedded in model files.
func (c *Cache) LoadData(key string, data []byte) (uint32, error) {
	if t, ok := c.textures[key]; ok {
		return t.ID(), nil
	}
	img, err := DecodeImageData(key, data)
	if err != nil {
		return 0, err
	}
	t, err := NewFromImage(c.tb, img, c.anisotropy)
	if err != nil {
		return 0, err
	}
	c.textures[key] = t
	c.log.Debug("loaded embedded texture", zap.String("key", key), zap.Int("bytes", len(data)))
	return t.ID(), nil
}

// LoadAll loads every path. Paths that fail are skipped and their errors
// combined.
func (c *Cache) LoadAll(paths []string) ([]uint32, error) {
	var (
		ids  []uint32
		errs error
	)
	for _, p := range paths {
		id, err := c.Load(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, errs
}

// Len returns the number of cached textures.
func (c *Cache) Len() int { return len(c.textures) }

// Release deletes every cached texture.
func (c *Cache) Release() {
	for k, t := range c.textures {
		t.Release()
		delete(c.textures, k)
	}
}
