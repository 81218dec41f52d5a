package texture

import (
	"image"
	"unsafe"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/pkg/envmap"
	"github.com/Faultbox/midgard-pbr/pkg/lut"
)

// Texture2D is a 2D texture with the same ownership rules as Cube.
type Texture2D struct {
	tb             *gfx.TextureBindings
	id             uint32
	width, height  int32
	internalFormat uint32
	format         uint32
	xtype          uint32
}

type params2D struct {
	wrap      int32
	minFilter int32
	magFilter int32
	mipmaps   bool
}

func newTexture2D(tb *gfx.TextureBindings, op string, w, h int32, internalFormat, format, xtype uint32, pixels unsafe.Pointer, p params2D) (*Texture2D, error) {
	if w <= 0 || h <= 0 {
		return nil, gfx.Fatalf(op, "invalid size %dx%d", w, h)
	}
	dev := tb.Device()
	t := &Texture2D{
		tb:             tb,
		id:             dev.CreateTexture(),
		width:          w,
		height:         h,
		internalFormat: internalFormat,
		format:         format,
		xtype:          xtype,
	}
	tb.Edit(gfx.Texture2D, t.id)
	dev.TexImage2D(gfx.Texture2D, 0, internalFormat, w, h, format, xtype, pixels)
	dev.TexParameteri(gfx.Texture2D, gfx.TextureWrapS, p.wrap)
	dev.TexParameteri(gfx.Texture2D, gfx.TextureWrapT, p.wrap)
	dev.TexParameteri(gfx.Texture2D, gfx.TextureMinFilter, p.minFilter)
	dev.TexParameteri(gfx.Texture2D, gfx.TextureMagFilter, p.magFilter)
	if p.mipmaps {
		dev.GenerateMipmap(gfx.Texture2D)
	}
	if err := gfx.CheckError(dev, op); err != nil {
		t.Release()
		return nil, gfx.Fatal(op, err)
	}
	return t, nil
}

func floatFormat(channels int) (internalFormat, format uint32) {
	if channels == 4 {
		return gfx.RGBA16F, gfx.RGBA
	}
	return gfx.RGB16F, gfx.RGB
}

// NewEquirect uploads a float panorama. Three-channel images are stored as
// RGB16F and four-channel images as RGBA16F.
func NewEquirect(tb *gfx.TextureBindings, img *envmap.Image) (*Texture2D, error) {
	if img == nil || len(img.Pix) == 0 {
		return nil, gfx.Fatal("create equirect texture", gfx.ErrDecode)
	}
	internal, format := floatFormat(img.Channels)
	return newTexture2D(tb, "create equirect texture", int32(img.Width), int32(img.Height),
		internal, format, gfx.Float, unsafe.Pointer(&img.Pix[0]),
		params2D{wrap: gfx.ClampToEdge, minFilter: gfx.Linear, magFilter: gfx.Linear})
}

// NewBRDFLUT allocates empty size×size RG16F storage for the split-sum table.
func NewBRDFLUT(tb *gfx.TextureBindings, size int32) (*Texture2D, error) {
	return newTexture2D(tb, "create brdf lut", size, size, gfx.RG16F, gfx.RG, gfx.Float, nil,
		params2D{wrap: gfx.ClampToEdge, minFilter: gfx.Linear, magFilter: gfx.Linear})
}

// NewSolid creates a 1×1 texture of one color.
func NewSolid(tb *gfx.TextureBindings, r, g, b uint8) (*Texture2D, error) {
	px := [4]uint8{r, g, b, 255}
	return newTexture2D(tb, "create solid texture", 1, 1, gfx.RGBA8, gfx.RGBA, gfx.UnsignedByte, unsafe.Pointer(&px[0]),
		params2D{wrap: gfx.Repeat, minFilter: gfx.Nearest, magFilter: gfx.Nearest})
}

// NewFromImage uploads a material image with a trilinear mip chain.
// Anisotropic filtering is applied when anisotropy > 1, clamped to what the
// device supports.
func NewFromImage(tb *gfx.TextureBindings, img image.Image, anisotropy float32) (*Texture2D, error) {
	rgba := ImageToRGBA(img)
	b := rgba.Bounds()
	if b.Empty() {
		return nil, gfx.Fatal("create image texture", gfx.ErrDecode)
	}
	t, err := newTexture2D(tb, "create image texture", int32(b.Dx()), int32(b.Dy()),
		gfx.RGBA8, gfx.RGBA, gfx.UnsignedByte, unsafe.Pointer(&rgba.Pix[0]),
		params2D{wrap: gfx.Repeat, minFilter: gfx.LinearMipmapLinear, magFilter: gfx.Linear, mipmaps: true})
	if err != nil {
		return nil, err
	}
	if limit := tb.Device().MaxAnisotropy(); anisotropy > 1 && limit > 1 {
		tb.Device().TexParameterf(gfx.Texture2D, gfx.TextureMaxAnisotropy, min(anisotropy, limit))
	}
	return t, nil
}

// NewRenderTarget allocates empty storage for use as a color attachment.
func NewRenderTarget(tb *gfx.TextureBindings, width, height int32, internalFormat uint32) (*Texture2D, error) {
	format, xtype := gfx.RGBA, gfx.UnsignedByte
	switch internalFormat {
	case gfx.RGBA16F, gfx.RGB16F, gfx.RGB32F:
		xtype = gfx.Float
	case gfx.RG16F:
		format, xtype = gfx.RG, gfx.Float
	}
	return newTexture2D(tb, "create render target", width, height, internalFormat, format, xtype, nil,
		params2D{wrap: gfx.ClampToEdge, minFilter: gfx.Linear, magFilter: gfx.Linear})
}

// Resize reallocates level 0 with empty storage of the same format.
func (t *Texture2D) Resize(width, height int32) error {
	if t.id == 0 {
		return gfx.Warning("resize texture", gfx.ErrReleased)
	}
	if width <= 0 || height <= 0 {
		return gfx.Warnf("resize texture", "invalid size %dx%d", width, height)
	}
	t.tb.Edit(gfx.Texture2D, t.id)
	t.tb.Device().TexImage2D(gfx.Texture2D, 0, t.internalFormat, width, height, t.format, t.xtype, nil)
	t.width, t.height = width, height
	return gfx.CheckError(t.tb.Device(), "resize texture")
}

// ID returns the GL name, 0 after Release or Take.
func (t *Texture2D) ID() uint32 { return t.id }

// Valid reports whether the texture still owns a GL name.
func (t *Texture2D) Valid() bool { return t.id != 0 }

// Size returns the level-0 dimensions.
func (t *Texture2D) Size() (width, height int32) { return t.width, t.height }

// InternalFormat returns the storage format.
func (t *Texture2D) InternalFormat() uint32 { return t.internalFormat }

// Bind binds the texture to a unit for sampling.
func (t *Texture2D) Bind(unit uint32) error {
	if t.id == 0 {
		return gfx.Warning("bind texture", gfx.ErrReleased)
	}
	return t.tb.Bind(unit, gfx.Texture2D, t.id)
}

// Upload replaces the contents with a float image, reallocating when the
// size differs.
func (t *Texture2D) Upload(img *envmap.Image) error {
	if t.id == 0 {
		return gfx.Warning("upload texture", gfx.ErrReleased)
	}
	if img == nil || len(img.Pix) == 0 {
		return gfx.Warning("upload texture", gfx.ErrDecode)
	}
	internal, format := floatFormat(img.Channels)
	t.tb.Edit(gfx.Texture2D, t.id)
	t.tb.Device().TexImage2D(gfx.Texture2D, 0, internal, int32(img.Width), int32(img.Height), format, gfx.Float, unsafe.Pointer(&img.Pix[0]))
	t.width, t.height = int32(img.Width), int32(img.Height)
	t.internalFormat, t.format, t.xtype = internal, format, gfx.Float
	return gfx.CheckError(t.tb.Device(), "upload texture")
}

// UploadTable replaces the contents with a BRDF table.
func (t *Texture2D) UploadTable(tbl *lut.Table) error {
	if t.id == 0 {
		return gfx.Warning("upload brdf lut", gfx.ErrReleased)
	}
	if tbl == nil || len(tbl.Data) == 0 {
		return gfx.Warning("upload brdf lut", gfx.ErrDecode)
	}
	t.tb.Edit(gfx.Texture2D, t.id)
	t.tb.Device().TexImage2D(gfx.Texture2D, 0, gfx.RG16F, int32(tbl.Size), int32(tbl.Size), gfx.RG, gfx.Float, unsafe.Pointer(&tbl.Data[0]))
	t.width, t.height = int32(tbl.Size), int32(tbl.Size)
	t.internalFormat, t.format, t.xtype = gfx.RG16F, gfx.RG, gfx.Float
	return gfx.CheckError(t.tb.Device(), "upload brdf lut")
}

// ReadPixels reads level 0 back as floats in the texture's channel layout.
func (t *Texture2D) ReadPixels() ([]float32, error) {
	if t.id == 0 {
		return nil, gfx.Warning("read texture", gfx.ErrReleased)
	}
	channels := 4
	switch t.format {
	case gfx.RG:
		channels = 2
	case gfx.RGB:
		channels = 3
	}
	pix := make([]float32, int(t.width)*int(t.height)*channels)
	t.tb.Edit(gfx.Texture2D, t.id)
	t.tb.Device().GetTexImage(gfx.Texture2D, 0, t.format, gfx.Float, unsafe.Pointer(&pix[0]))
	if err := gfx.CheckError(t.tb.Device(), "read texture"); err != nil {
		return nil, err
	}
	return pix, nil
}

// ReadTable reads an RG texture back as a BRDF table.
func (t *Texture2D) ReadTable() (*lut.Table, error) {
	if t.format != gfx.RG || t.width != t.height {
		return nil, gfx.Warnf("read brdf lut", "texture is not a square RG table")
	}
	pix, err := t.ReadPixels()
	if err != nil {
		return nil, err
	}
	return &lut.Table{Size: int(t.width), Data: pix}, nil
}

// Take moves ownership into a new Texture2D and empties t.
func (t *Texture2D) Take() *Texture2D {
	moved := *t
	*t = Texture2D{}
	return &moved
}

// Release deletes the texture. It is safe to call on an empty Texture2D.
func (t *Texture2D) Release() {
	if t.id == 0 {
		return
	}
	t.tb.Drop(t.id)
	t.tb.Device().DeleteTexture(t.id)
	*t = Texture2D{}
}
