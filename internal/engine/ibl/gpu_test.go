//go:build gpu

package ibl

import (
	"runtime"
	"slices"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx/gldevice"
	"github.com/Faultbox/midgard-pbr/internal/engine/primitive"
	"github.com/Faultbox/midgard-pbr/internal/engine/window"
	"github.com/Faultbox/midgard-pbr/pkg/envmap"
)

// gpuPipeline creates a pipeline on a real GL 4.1 context. Run with
// go test -tags gpu on a machine with a display.
func gpuPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	// the context is current on the thread that created it
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)

	w, err := window.New(window.Config{Title: "ibl gpu test", Width: 64, Height: 64}, nil)
	if err != nil {
		t.Skipf("no window: %v", err)
	}
	t.Cleanup(w.Close)

	dev, err := gldevice.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	prims := primitive.New(dev)
	p, err := New(gfx.NewTextureBindings(dev, nil), prims, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		p.Release()
		prims.Release()
	})
	return p
}

func texelNear(pix []float32, size, x, y int, want [3]float32, eps float32) ([3]float32, bool) {
	i := (y*size + x) * 3
	got := [3]float32{pix[i], pix[i+1], pix[i+2]}
	for c := range got {
		if math32.Abs(got[c]-want[c]) > eps {
			return got, false
		}
	}
	return got, true
}

func TestGPUConstantEnvironment(t *testing.T) {
	p := gpuPipeline(t, testConfig())
	if err := p.SetupEnvironmentImage(gray()); err != nil {
		t.Fatal(err)
	}

	want := [3]float32{0.5, 0.5, 0.5}
	tests := []struct {
		name string
		size int
		read func(face int) ([]float32, error)
		eps  float32
	}{
		{"environment", int(p.EnvironmentMap().MipSize(0)), func(f int) ([]float32, error) { return p.EnvironmentMap().ReadFace(f, 0) }, 1e-3},
		{"irradiance", int(p.IrradianceMap().MipSize(0)), func(f int) ([]float32, error) { return p.IrradianceMap().ReadFace(f, 0) }, 0.02},
		{"prefilter mip 0", int(p.PrefilterMap().MipSize(0)), func(f int) ([]float32, error) { return p.PrefilterMap().ReadFace(f, 0) }, 0.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for f := 0; f < envmap.FaceCount; f++ {
				pix, err := tt.read(f)
				if err != nil {
					t.Fatal(err)
				}
				c := tt.size / 2
				if got, ok := texelNear(pix, tt.size, c, c, want, tt.eps); !ok {
					t.Errorf("face %s center = %v, want %v", envmap.Face(f), got, want)
				}
			}
		})
	}
}

// directionPanorama encodes the direction of every pixel as its color.
func directionPanorama(w, h int) *envmap.Image {
	img := envmap.NewImage(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			phi := ((float32(x)+0.5)/float32(w) - 0.5) * 2 * math32.Pi
			theta := ((float32(y)+0.5)/float32(h) - 0.5) * math32.Pi
			dir := mgl32.Vec3{
				math32.Cos(theta) * math32.Cos(phi),
				math32.Sin(theta),
				math32.Cos(theta) * math32.Sin(phi),
			}
			img.Set(x, y, [3]float32{dir[0]*0.5 + 0.5, dir[1]*0.5 + 0.5, dir[2]*0.5 + 0.5})
		}
	}
	return img
}

func TestGPUFaceOrientation(t *testing.T) {
	cfg := testConfig()
	cfg.EnvironmentSize = 16
	p := gpuPipeline(t, cfg)
	img := directionPanorama(256, 128)
	if err := p.LoadEnvironmentImage(img); err != nil {
		t.Fatal(err)
	}
	if err := p.ConvertEquirectangular(); err != nil {
		t.Fatal(err)
	}

	cpu := envmap.FromEquirect(img, 16)
	for _, f := range envmap.Faces {
		pix, err := p.EnvironmentMap().ReadFace(int(f), 0)
		if err != nil {
			t.Fatal(err)
		}
		if got, ok := texelNear(pix, 16, 8, 8, cpu.Center(f), 0.08); !ok {
			t.Errorf("face %s center = %v, cpu %v", f, got, cpu.Center(f))
		}
	}
}

func TestGPUBRDFLUT(t *testing.T) {
	p := gpuPipeline(t, testConfig())
	if err := p.ComputeBRDFLUT(); err != nil {
		t.Fatal(err)
	}
	first, err := p.BRDFLUT().ReadTable()
	if err != nil {
		t.Fatal(err)
	}

	last := first.Size - 1
	for _, c := range [][2]int{{0, 0}, {last, 0}, {0, last}, {last, last}} {
		scale, bias := first.At(c[0], c[1])
		if scale < 0 || scale > 1 || bias < 0 || bias > 1 {
			t.Errorf("corner %v = (%v, %v), want within [0,1]", c, scale, bias)
		}
	}

	if err := p.RecomputeBRDFLUT(); err != nil {
		t.Fatal(err)
	}
	second, err := p.BRDFLUT().ReadTable()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(first.Data, second.Data) {
		t.Error("recomputed table differs")
	}
}
