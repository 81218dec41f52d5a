package texture

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for material textures.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/pkg/envmap"
)

// DecodeHDRFile decodes a Radiance or OpenEXR panorama. Row 0 of the result
// is the bottom of the image. Failures wrap gfx.ErrDecode and are fatal.
func DecodeHDRFile(path string) (*envmap.Image, error) {
	img, err := envmap.DecodeFile(path)
	if err != nil {
		return nil, gfx.Fatal("decode hdr", fmt.Errorf("%w: %w", gfx.ErrDecode, err))
	}
	return img, nil
}

// DecodeImage decodes an LDR material texture. TGA is handled by DecodeTGA,
// every other format by the registered image decoders.
func DecodeImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gfx.Fatal("decode image", fmt.Errorf("%w: %w", gfx.ErrDecode, err))
	}
	return DecodeImageData(path, data)
}

// DecodeImageData decodes an in-memory material texture. name selects the
// TGA decoder by extension and labels errors.
func DecodeImageData(name string, data []byte) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, gfx.Fatal("decode image", fmt.Errorf("%w: %s: %w", gfx.ErrDecode, name, err))
	}
	return img, nil
}
