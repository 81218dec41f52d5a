package envmap

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mrjoshuak/go-openexr/exr"
)

// ErrUnsupportedFormat is returned for panorama files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported panorama format")

// DecodeFile reads a Radiance (.hdr, .pic) or OpenEXR (.exr) panorama. The
// result is flipped so row 0 is the bottom of the image.
func DecodeFile(path string) (*Image, error) {
	var (
		img *Image
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hdr", ".pic", ".rgbe":
		img, err = decodeRadiance(path)
	case ".exr":
		img, err = decodeEXR(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	img.FlipVertical()
	return img, nil
}

func decodeRadiance(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := rgbe.Decode(f)
	if err != nil {
		return nil, err
	}
	hm, ok := m.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("radiance decoder returned %T", m)
	}

	b := hm.Bounds()
	out := NewImage(b.Dx(), b.Dy(), 3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := hm.HDRAt(x, y).HDRRGBA()
			out.Set(x-b.Min.X, y-b.Min.Y, [3]float32{float32(r), float32(g), float32(bl)})
		}
	}
	return out, nil
}

func decodeEXR(path string) (*Image, error) {
	m, err := exr.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	b := m.Bounds()
	out := NewImage(b.Dx(), b.Dy(), 3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := m.RGBA(x, y)
			out.Set(x-b.Min.X, y-b.Min.Y, [3]float32{r, g, bl})
		}
	}
	return out, nil
}

// WriteEXR stores an image as OpenEXR, top row first.
func WriteEXR(path string, img *Image) error {
	out := exr.NewRGBAImage(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, img.Height-1-y)
			out.SetRGBA(x, y, c[0], c[1], c[2], 1)
		}
	}
	return exr.EncodeFile(path, out)
}

// WriteFaceEXR stores one face of c as OpenEXR. Face rows are written in
// memory order, so t = 0 is the top of the file.
func WriteFaceEXR(path string, c *Cube, f Face) error {
	out := exr.NewRGBAImage(image.Rect(0, 0, c.Size, c.Size))
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			v := c.At(f, x, y)
			out.SetRGBA(x, y, v[0], v[1], v[2], 1)
		}
	}
	return exr.EncodeFile(path, out)
}
