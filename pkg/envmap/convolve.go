package envmap

import (
	"math/bits"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSampleDelta is the angular step of the irradiance integral in radians.
const DefaultSampleDelta = 0.025

// tangentFrame returns a right-handed basis around n.
func tangentFrame(n mgl32.Vec3) (right, up mgl32.Vec3) {
	up = mgl32.Vec3{0, 1, 0}
	if math32.Abs(n[1]) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	right = up.Cross(n).Normalize()
	up = n.Cross(right).Normalize()
	return right, up
}

// IrradianceAt integrates the cosine-weighted radiance of env over the
// hemisphere around n with a uniform (phi, theta) grid of step delta.
func IrradianceAt(env *Cube, n mgl32.Vec3, delta float32) [3]float32 {
	right, up := tangentFrame(n)

	var sum [3]float32
	count := 0
	for phi := float32(0); phi < 2*math32.Pi; phi += delta {
		sinPhi, cosPhi := math32.Sincos(phi)
		for theta := float32(0); theta < 0.5*math32.Pi; theta += delta {
			sinTheta, cosTheta := math32.Sincos(theta)
			dir := right.Mul(sinTheta * cosPhi).
				Add(up.Mul(sinTheta * sinPhi)).
				Add(n.Mul(cosTheta))
			s := env.Sample(dir)
			w := cosTheta * sinTheta
			sum[0] += s[0] * w
			sum[1] += s[1] * w
			sum[2] += s[2] * w
			count++
		}
	}
	scale := math32.Pi / float32(count)
	return [3]float32{sum[0] * scale, sum[1] * scale, sum[2] * scale}
}

// Irradiance convolves env into a diffuse irradiance cube of edge size.
func Irradiance(env *Cube, size int, delta float32) *Cube {
	out := NewCube(size)
	out.fill(func(n mgl32.Vec3) [3]float32 {
		return IrradianceAt(env, n, delta)
	})
	return out
}

// Hammersley returns point i of an n-point Hammersley set.
func Hammersley(i, n uint32) mgl32.Vec2 {
	return mgl32.Vec2{float32(i) / float32(n), float32(bits.Reverse32(i)) * 2.3283064365386963e-10}
}

// ImportanceSampleGGX maps xi to a half vector around n distributed by the
// GGX lobe of roughness.
func ImportanceSampleGGX(xi mgl32.Vec2, n mgl32.Vec3, roughness float32) mgl32.Vec3 {
	a := roughness * roughness

	phi := 2 * math32.Pi * xi[0]
	cosTheta := math32.Sqrt((1 - xi[1]) / (1 + (a*a-1)*xi[1]))
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
	sinPhi, cosPhi := math32.Sincos(phi)

	up := mgl32.Vec3{0, 0, 1}
	if math32.Abs(n[2]) >= 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent := up.Cross(n).Normalize()
	bitangent := n.Cross(tangent)

	return tangent.Mul(cosPhi * sinTheta).
		Add(bitangent.Mul(sinPhi * sinTheta)).
		Add(n.Mul(cosTheta)).
		Normalize()
}

// PrefilterAt returns the specular radiance of env around r for roughness,
// assuming n = v = r.
func PrefilterAt(env *Cube, r mgl32.Vec3, roughness float32, samples int) [3]float32 {
	if roughness == 0 {
		return env.Sample(r)
	}

	var sum [3]float32
	var weight float32
	for i := 0; i < samples; i++ {
		h := ImportanceSampleGGX(Hammersley(uint32(i), uint32(samples)), r, roughness)
		l := h.Mul(2 * r.Dot(h)).Sub(r).Normalize()
		nDotL := r.Dot(l)
		if nDotL <= 0 {
			continue
		}
		s := env.Sample(l)
		sum[0] += s[0] * nDotL
		sum[1] += s[1] * nDotL
		sum[2] += s[2] * nDotL
		weight += nDotL
	}
	if weight == 0 {
		return env.Sample(r)
	}
	return [3]float32{sum[0] / weight, sum[1] / weight, sum[2] / weight}
}

// Prefilter convolves env with the GGX lobe of roughness into a cube of
// edge size.
func Prefilter(env *Cube, size int, roughness float32, samples int) *Cube {
	out := NewCube(size)
	out.fill(func(r mgl32.Vec3) [3]float32 {
		return PrefilterAt(env, r, roughness, samples)
	})
	return out
}
