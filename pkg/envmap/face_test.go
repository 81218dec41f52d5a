package envmap

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestCaptureViewsCenterOnFaceAxis(t *testing.T) {
	views := CaptureViews()
	proj := CaptureProjection(0.1, 10)

	for _, f := range Faces {
		clip := proj.Mul4(views[f]).Mul4x1(f.Axis().Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip[3])
		if math32.Abs(ndc[0]) > 1e-5 || math32.Abs(ndc[1]) > 1e-5 {
			t.Errorf("face %s: axis projects to (%v, %v), want center", f, ndc[0], ndc[1])
		}
		if ndc[2] < -1 || ndc[2] > 1 {
			t.Errorf("face %s: axis depth %v outside clip range", f, ndc[2])
		}
	}
}

// Every framebuffer position of a capture must see the direction that the
// same cube texel is sampled with.
func TestCaptureViewsMatchFaceLayout(t *testing.T) {
	views := CaptureViews()
	coords := []float32{-0.75, -0.25, 0.25, 0.75}

	for _, f := range Faces {
		inv := views[f].Inv()
		for _, x := range coords {
			for _, y := range coords {
				// with a 90° square frustum, NDC (x, y) looks along (x, y, -1)
				got := inv.Mul4x1(mgl32.Vec4{x, y, -1, 0}).Vec3().Normalize()
				want := FaceDirection(f, (x+1)/2, (y+1)/2)
				if !vecNear(got, want, 1e-4) {
					t.Errorf("face %s ndc (%v,%v): view sees %v, texel samples %v", f, x, y, got, want)
				}
			}
		}
	}
}

func TestCaptureUpVectors(t *testing.T) {
	tests := []struct {
		face Face
		up   mgl32.Vec3
	}{
		{PositiveX, mgl32.Vec3{0, -1, 0}},
		{NegativeX, mgl32.Vec3{0, -1, 0}},
		{PositiveY, mgl32.Vec3{0, 0, 1}},
		{NegativeY, mgl32.Vec3{0, 0, -1}},
		{PositiveZ, mgl32.Vec3{0, -1, 0}},
		{NegativeZ, mgl32.Vec3{0, -1, 0}},
	}
	views := CaptureViews()
	for _, tt := range tests {
		// row 1 of a look-at matrix is the camera up axis in world space
		got := mgl32.Vec3{views[tt.face][1], views[tt.face][5], views[tt.face][9]}
		if !vecNear(got, tt.up, 1e-6) {
			t.Errorf("face %s up = %v, want %v", tt.face, got, tt.up)
		}
	}
}

func TestDirectionFaceInvertsFaceDirection(t *testing.T) {
	for _, f := range Faces {
		for _, s := range []float32{0.1, 0.5, 0.9} {
			for _, tc := range []float32{0.2, 0.5, 0.8} {
				gf, gs, gt := DirectionFace(FaceDirection(f, s, tc))
				if gf != f || math32.Abs(gs-s) > 1e-5 || math32.Abs(gt-tc) > 1e-5 {
					t.Errorf("DirectionFace(FaceDirection(%s,%v,%v)) = %s,%v,%v", f, s, tc, gf, gs, gt)
				}
			}
		}
		if got, _, _ := DirectionFace(f.Axis()); got != f {
			t.Errorf("axis of %s maps to %s", f, got)
		}
	}
}

func TestMipSize(t *testing.T) {
	want := []int{128, 64, 32, 16, 8}
	for mip, w := range want {
		if got := MipSize(128, mip); got != w {
			t.Errorf("MipSize(128, %d) = %d, want %d", mip, got, w)
		}
	}
	if got := MipSize(4, 5); got != 1 {
		t.Errorf("MipSize clamps to 1, got %d", got)
	}
	if got := MipLevels(128); got != 8 {
		t.Errorf("MipLevels(128) = %d, want 8", got)
	}
}

func TestRoughnessSchedule(t *testing.T) {
	const levels = 5
	if got := Roughness(0, levels); got != 0 {
		t.Errorf("Roughness(0) = %v, want exactly 0", got)
	}
	if got := Roughness(levels-1, levels); got != 1 {
		t.Errorf("Roughness(last) = %v, want exactly 1", got)
	}
	prev := float32(-1)
	for mip := 0; mip < levels; mip++ {
		r := Roughness(mip, levels)
		if r <= prev {
			t.Errorf("roughness not strictly increasing at mip %d: %v <= %v", mip, r, prev)
		}
		prev = r
	}
	if got := Roughness(0, 1); got != 0 {
		t.Errorf("single level roughness = %v", got)
	}
}
