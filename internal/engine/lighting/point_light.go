// Package lighting provides the animated point lights of the PBR scene.
package lighting

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/internal/engine/shader/shaders"
)

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = shaders.MaxLights

// PointLight is a point light with an unbounded inverse-square falloff.
// Color is radiance and may exceed 1.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// DefaultLights returns the five lights of the demo scene.
func DefaultLights() []PointLight {
	return []PointLight{
		{Position: mgl32.Vec3{0, 0, 10}, Color: mgl32.Vec3{80, 160, 160}},
		{Position: mgl32.Vec3{10, 0, 0}, Color: mgl32.Vec3{120, 100, 170}},
		{Position: mgl32.Vec3{-10, 0, 0}, Color: mgl32.Vec3{200, 140, 100}},
		{Position: mgl32.Vec3{0, 10, 0}, Color: mgl32.Vec3{60, 60, 80}},
		{Position: mgl32.Vec3{0, -10, 0}, Color: mgl32.Vec3{80, 90, 180}},
	}
}

// Uniforms is the part of a shader program the rig writes to.
type Uniforms interface {
	SetVec3(name string, v mgl32.Vec3)
	SetInt(name string, v int32)
}

// Rig animates a fixed set of lights around their base positions.
type Rig struct {
	base    []PointLight
	current []PointLight
	elapsed float32

	// Animate disables movement when false.
	Animate bool
}

// NewRig creates a rig from base lights. Lights beyond MaxPointLights are
// dropped.
func NewRig(lights []PointLight) *Rig {
	if len(lights) > MaxPointLights {
		lights = lights[:MaxPointLights]
	}
	r := &Rig{
		base:    append([]PointLight(nil), lights...),
		current: append([]PointLight(nil), lights...),
		Animate: true,
	}
	return r
}

// Len returns the number of lights.
func (r *Rig) Len() int { return len(r.current) }

// Lights returns the animated lights of the last Update.
func (r *Rig) Lights() []PointLight { return r.current }

// Elapsed returns the accumulated animation time in seconds.
func (r *Rig) Elapsed() float32 { return r.elapsed }

// Update advances the animation by dt seconds. Light i moves on a
// Lissajous path around its base position, with a speed that grows with i.
func (r *Rig) Update(dt float32) {
	if !r.Animate {
		return
	}
	r.elapsed += dt
	for i, l := range r.base {
		r.current[i] = PointLight{
			Position: l.Position.Add(Offset(r.elapsed, i)),
			Color:    l.Color,
		}
	}
}

// Offset returns the displacement of light i after elapsed seconds.
func Offset(elapsed float32, i int) mgl32.Vec3 {
	t := elapsed * (1 + 0.5*float32(i))
	return mgl32.Vec3{
		math32.Sin(t) * 3,
		math32.Sin(t*0.75) * 1.5,
		math32.Sin(t*0.5) * 2,
	}
}

// Apply writes the light arrays and count to u.
func (r *Rig) Apply(u Uniforms) {
	for i, l := range r.current {
		u.SetVec3(fmt.Sprintf("uLightPositions[%d]", i), l.Position)
		u.SetVec3(fmt.Sprintf("uLightColors[%d]", i), l.Color)
	}
	u.SetInt("uLightCount", int32(len(r.current)))
}
