package envmap

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Image is a float image. Row 0 is the bottom row (v = 0), which is the
// order OpenGL expects for texture uploads.
type Image struct {
	Width, Height int
	Channels      int
	Pix           []float32
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// NewConstant returns an RGB image filled with rgb.
func NewConstant(width, height int, rgb [3]float32) *Image {
	img := NewImage(width, height, 3)
	img.Fill(rgb)
	return img
}

// Fill sets every pixel to rgb. Alpha, when present, is set to 1.
func (m *Image) Fill(rgb [3]float32) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Set(x, y, rgb)
		}
	}
}

// At returns the RGB value of pixel (x, y).
func (m *Image) At(x, y int) [3]float32 {
	i := (y*m.Width + x) * m.Channels
	return [3]float32{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
}

// Set stores rgb at pixel (x, y).
func (m *Image) Set(x, y int, rgb [3]float32) {
	i := (y*m.Width + x) * m.Channels
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = rgb[0], rgb[1], rgb[2]
	if m.Channels == 4 {
		m.Pix[i+3] = 1
	}
}

// FlipVertical reverses the row order in place.
func (m *Image) FlipVertical() {
	row := m.Width * m.Channels
	tmp := make([]float32, row)
	for top, bottom := 0, m.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := m.Pix[top*row : (top+1)*row]
		b := m.Pix[bottom*row : (bottom+1)*row]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// SampleBilinear filters the image at (u, v) with edge clamping.
func (m *Image) SampleBilinear(u, v float32) [3]float32 {
	return sampleBilinear(m.Width, m.Height, m.Channels, m.Pix, u, v)
}

func sampleBilinear(w, h, channels int, pix []float32, u, v float32) [3]float32 {
	// -0.5 moves from texel edges to texel centers
	u = u*float32(w) - 0.5
	v = v*float32(h) - 0.5
	u = math32.Max(u, 0)
	v = math32.Max(v, 0)
	ufloor, ufrac := math32.Modf(u)
	vfloor, vfrac := math32.Modf(v)
	x0, y0 := int(ufloor), int(vfloor)
	x1, y1 := x0+1, y0+1

	if x1 >= w {
		x1 = w - 1
	}
	if x0 >= x1 {
		x0, ufrac = x1, 0
	}
	if y1 >= h {
		y1 = h - 1
	}
	if y0 >= y1 {
		y0, vfrac = y1, 0
	}

	var out [3]float32
	for c := 0; c < 3; c++ {
		p00 := pix[(y0*w+x0)*channels+c]
		p10 := pix[(y0*w+x1)*channels+c]
		p01 := pix[(y1*w+x0)*channels+c]
		p11 := pix[(y1*w+x1)*channels+c]
		top := p00*(1-ufrac) + p10*ufrac
		bot := p01*(1-ufrac) + p11*ufrac
		out[c] = top*(1-vfrac) + bot*vfrac
	}
	return out
}

// 1/(2π), 1/π
var invAtan = [2]float32{0.15915494309, 0.31830988618}

// EquirectUV maps a normalized direction to equirectangular coordinates.
// The equirect conversion shader uses the same formula.
func EquirectUV(dir mgl32.Vec3) (u, v float32) {
	u = math32.Atan2(dir[2], dir[0])*invAtan[0] + 0.5
	v = math32.Asin(mgl32.Clamp(dir[1], -1, 1))*invAtan[1] + 0.5
	return u, v
}

// SampleEquirect returns the radiance of img in direction dir.
func SampleEquirect(img *Image, dir mgl32.Vec3) [3]float32 {
	u, v := EquirectUV(dir.Normalize())
	return img.SampleBilinear(u, v)
}
