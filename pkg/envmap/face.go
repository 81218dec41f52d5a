// Package envmap holds the geometry and reference math of environment maps.
//
// The GPU pipeline and the CPU bake share the capture views, face layout and
// roughness schedule defined here. Cube face texels follow the OpenGL memory
// layout: texel (x, y) sits at s = (x+0.5)/size, t = (y+0.5)/size.
package envmap

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Face is a cube map face in OpenGL order.
type Face int

// Cube faces.
const (
	PositiveX Face = iota
	NegativeX
	PositiveY
	NegativeY
	PositiveZ
	NegativeZ
)

// FaceCount is the number of faces of a cube map.
const FaceCount = 6

// CaptureFOV is the vertical field of view of every capture, in degrees.
// Anything but 90 leaves seams between faces.
const CaptureFOV = 90

// String returns the face name, e.g. "+X".
func (f Face) String() string {
	switch f {
	case PositiveX:
		return "+X"
	case NegativeX:
		return "-X"
	case PositiveY:
		return "+Y"
	case NegativeY:
		return "-Y"
	case PositiveZ:
		return "+Z"
	case NegativeZ:
		return "-Z"
	default:
		return fmt.Sprintf("Face(%d)", int(f))
	}
}

// Faces lists all faces in order.
var Faces = [FaceCount]Face{PositiveX, NegativeX, PositiveY, NegativeY, PositiveZ, NegativeZ}

var captureTargets = [FaceCount]struct{ center, up mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// Axis returns the unit direction through the center of face f.
func (f Face) Axis() mgl32.Vec3 {
	return captureTargets[f].center
}

// CaptureViews returns the six look-at matrices used to render cube faces
// from the origin. View i renders face i.
func CaptureViews() [FaceCount]mgl32.Mat4 {
	var views [FaceCount]mgl32.Mat4
	for i, ct := range captureTargets {
		views[i] = mgl32.LookAtV(mgl32.Vec3{}, ct.center, ct.up)
	}
	return views
}

// CaptureProjection returns the square 90° projection shared by all faces.
func CaptureProjection(near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(CaptureFOV), 1, near, far)
}

// FaceDirection returns the normalized direction of face coordinate (s, t),
// both in [0, 1].
func FaceDirection(f Face, s, t float32) mgl32.Vec3 {
	a := 2*s - 1
	b := 2*t - 1
	var d mgl32.Vec3
	switch f {
	case PositiveX:
		d = mgl32.Vec3{1, -b, -a}
	case NegativeX:
		d = mgl32.Vec3{-1, -b, a}
	case PositiveY:
		d = mgl32.Vec3{a, 1, b}
	case NegativeY:
		d = mgl32.Vec3{a, -1, -b}
	case PositiveZ:
		d = mgl32.Vec3{a, -b, 1}
	default:
		d = mgl32.Vec3{-a, -b, -1}
	}
	return d.Normalize()
}

// DirectionFace maps a direction to its face and face coordinates. It is the
// inverse of FaceDirection. dir does not need to be normalized.
func DirectionFace(dir mgl32.Vec3) (f Face, s, t float32) {
	x, y, z := dir[0], dir[1], dir[2]
	ax, ay, az := math32.Abs(x), math32.Abs(y), math32.Abs(z)

	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if x >= 0 {
			f, sc, tc = PositiveX, -z, -y
		} else {
			f, sc, tc = NegativeX, z, -y
		}
	case ay >= az:
		ma = ay
		if y >= 0 {
			f, sc, tc = PositiveY, x, z
		} else {
			f, sc, tc = NegativeY, x, -z
		}
	default:
		ma = az
		if z >= 0 {
			f, sc, tc = PositiveZ, x, -y
		} else {
			f, sc, tc = NegativeZ, -x, -y
		}
	}
	if ma == 0 {
		return PositiveX, 0.5, 0.5
	}
	return f, (sc/ma + 1) / 2, (tc/ma + 1) / 2
}

// MipSize returns the edge length of mip level mip of a base-sized image.
func MipSize(base, mip int) int {
	return max(base>>mip, 1)
}

// MipLevels returns how many levels a full mip chain of base has.
func MipLevels(base int) int {
	n := 1
	for base > 1 {
		base >>= 1
		n++
	}
	return n
}

// Roughness returns the roughness rendered into mip level mip of a
// prefiltered map with levels levels: 0 at the base and 1 at the last level.
func Roughness(mip, levels int) float32 {
	if levels <= 1 {
		return 0
	}
	return float32(mip) / float32(levels-1)
}
