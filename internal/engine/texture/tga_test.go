package texture

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func tgaHeader(imageType byte, w, h int, bpp byte, topToBottom bool) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// bottom-up 2x2: bottom row red, blue; top row green, white
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, false)
	data = append(data,
		0, 0, 255, 255, 0, 0,
		0, 255, 0, 255, 255, 255,
	)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 0, 255, 255}},
		{0, 0, color.RGBA{0, 255, 0, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 32, true)
	// run of 2 semi-transparent red pixels, then 1 raw green pixel
	data = append(data, 0x81, 0, 0, 255, 128, 0x00, 0, 255, 0, 255)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.At(1, 0); got != (color.RGBA{255, 0, 0, 128}) {
		t.Errorf("run pixel = %v", got)
	}
	if got := img.At(2, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("raw pixel = %v", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", make([]byte, 10)},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, false); h[1] = 1; return h }()},
		{"grayscale", tgaHeader(3, 1, 1, 8, false)},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, false)},
		{"truncated raw", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, false), 1, 2, 3)},
		{"truncated rle", append(tgaHeader(TGATypeRLE, 4, 1, 24, false), 0x83)},
	}
	for _, tt := range tests {
		if _, err := DecodeTGA(tt.data); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestDecodeImageDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "albedo.TGA")
	data := append(tgaHeader(TGATypeUncompressed, 1, 1, 24, false), 10, 20, 30)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := DecodeImage(path)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if got := img.At(0, 0); got != (color.RGBA{30, 20, 10, 255}) {
		t.Errorf("pixel = %v", got)
	}

	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImage(bad); err == nil {
		t.Error("expected decode error")
	}
}
