package mesh

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/midgard-pbr/internal/engine/ibl"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
)

func TestUnitLayout(t *testing.T) {
	tests := []struct {
		name     string
		material Material
		samplers []string
		units    []uint32
		base     uint32
	}{
		{
			name: "empty",
			base: 0,
		},
		{
			name:     "one per channel",
			material: Material{Albedo: []uint32{1}, Normal: []uint32{2}, RoughnessMetallic: []uint32{3}, AO: []uint32{4}},
			samplers: []string{"uAlbedoMap", "uNormalMap", "uRoughnessMetallicMap", "uAOMap"},
			units:    []uint32{0, 1, 2, 3},
			base:     4,
		},
		{
			name:     "several albedo layers",
			material: Material{Albedo: []uint32{1, 2, 3}, AO: []uint32{4}},
			samplers: []string{"uAlbedoMap", "uAlbedoMap1", "uAlbedoMap2", "uAOMap"},
			units:    []uint32{0, 1, 2, 3},
			base:     4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, base := UnitLayout(tt.material)
			if base != tt.base {
				t.Errorf("base = %d, want %d", base, tt.base)
			}
			if len(slots) != len(tt.samplers) {
				t.Fatalf("slots = %d, want %d", len(slots), len(tt.samplers))
			}
			for i, s := range slots {
				if s.Sampler != tt.samplers[i] || s.Unit != tt.units[i] {
					t.Errorf("slot %d = %s on %d, want %s on %d", i, s.Sampler, s.Unit, tt.samplers[i], tt.units[i])
				}
			}
		})
	}
}

func TestWithFallbacks(t *testing.T) {
	tb := gfx.NewTextureBindings(gfxtest.New(), nil)
	fb := texture.NewFallbacks(tb)
	defer fb.Release()

	m, err := Material{Albedo: []uint32{42}}.WithFallbacks(fb)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Albedo) != 1 || m.Albedo[0] != 42 {
		t.Errorf("albedo replaced: %v", m.Albedo)
	}
	for c := texture.Normal; c < texture.ChannelCount; c++ {
		want, _ := fb.Get(c)
		if got := m.Channel(c); len(got) != 1 || got[0] != want {
			t.Errorf("%s = %v, want [%d]", c, got, want)
		}
	}
}

func TestComputeTangents(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	vertices := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n, TexCoords: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n, TexCoords: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: n, TexCoords: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: n, TexCoords: mgl32.Vec2{0, 1}},
	}
	ComputeTangents(vertices, []uint32{0, 1, 2, 0, 2, 3})
	for i, v := range vertices {
		if !v.Tangent.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
			t.Errorf("vertex %d tangent = %v", i, v.Tangent)
		}
		if !v.Bitangent.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
			t.Errorf("vertex %d bitangent = %v", i, v.Bitangent)
		}
	}

	// mirrored v keeps a unit tangent and flips the bitangent handedness
	for i := range vertices {
		vertices[i].TexCoords[1] = 1 - vertices[i].TexCoords[1]
	}
	ComputeTangents(vertices, []uint32{0, 1, 2, 0, 2, 3})
	if b := vertices[0].Bitangent; !b.ApproxEqual(mgl32.Vec3{0, -1, 0}) {
		t.Errorf("mirrored bitangent = %v", b)
	}
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	vertices := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{0, 0, 1}, Normal: n},
	}
	ComputeTangents(vertices, []uint32{0, 1, 2, 7, 8, 9})
	for i, v := range vertices {
		if d := v.Tangent.Dot(n); d > 1e-5 || d < -1e-5 {
			t.Errorf("vertex %d tangent %v not perpendicular to normal", i, v.Tangent)
		}
		if l := v.Tangent.Len(); l < 0.999 || l > 1.001 {
			t.Errorf("vertex %d tangent length %v", i, l)
		}
	}
}

type drawFixture struct {
	dev    *gfxtest.Device
	tb     *gfx.TextureBindings
	prog   *shader.Program
	fb     *texture.Fallbacks
	bundle ibl.Bundle
}

func newDrawFixture(t *testing.T) *drawFixture {
	t.Helper()
	dev := gfxtest.New()
	tb := gfx.NewTextureBindings(dev, nil)
	prog, err := shader.Load(dev, shaders.PBR, nil)
	if err != nil {
		t.Fatal(err)
	}
	irr, err := texture.NewCube(tb, 4, texture.CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	pre, err := texture.NewCube(tb, 8, texture.CubeOptions{MinFilter: gfx.LinearMipmapLinear})
	if err != nil {
		t.Fatal(err)
	}
	lut, err := texture.NewBRDFLUT(tb, 4)
	if err != nil {
		t.Fatal(err)
	}
	f := &drawFixture{
		dev:  dev,
		tb:   tb,
		prog: prog,
		fb:   texture.NewFallbacks(tb),
		bundle: ibl.Bundle{
			Irradiance:      irr.ID(),
			Prefilter:       pre.ID(),
			BRDFLUT:         lut.ID(),
			PrefilterLevels: 5,
		},
	}
	t.Cleanup(func() {
		f.fb.Release()
		irr.Release()
		pre.Release()
		lut.Release()
		prog.Release()
	})
	return f
}

func (f *drawFixture) mesh(t *testing.T, m Material, opts ...Option) *Mesh {
	t.Helper()
	vertices := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	opts = append(opts, WithFallbacks(f.fb))
	msh, err := New(f.dev, vertices, []uint32{0, 1, 2}, m, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return msh
}

func TestDrawPBR(t *testing.T) {
	f := newDrawFixture(t)
	m, err := Material{}.WithFallbacks(f.fb)
	if err != nil {
		t.Fatal(err)
	}
	msh := f.mesh(t, m)
	defer msh.Release()

	if err := msh.DrawPBR(f.prog, f.bundle, f.tb); err != nil {
		t.Fatal(err)
	}
	if len(f.dev.Draws) != 1 {
		t.Fatalf("draws = %d", len(f.dev.Draws))
	}
	d := f.dev.Draws[0]
	if !d.Indexed || d.Count != 3 || d.VAO != msh.VAO() {
		t.Errorf("draw = %+v", d)
	}

	wantUnits := map[string]int32{
		"uAlbedoMap": 0, "uNormalMap": 1, "uRoughnessMetallicMap": 2, "uAOMap": 3,
		"uIrradianceMap": 4, "uPrefilterMap": 5, "uBRDFLUT": 6,
	}
	for name, unit := range wantUnits {
		if got := d.Uniforms[name]; got != unit {
			t.Errorf("%s = %v, want %d", name, got, unit)
		}
	}
	if d.Uniforms["uPrefilterLevels"] != float32(5) {
		t.Errorf("uPrefilterLevels = %v", d.Uniforms["uPrefilterLevels"])
	}

	bound := map[gfxtest.UnitTarget]uint32{
		{Unit: 0, Target: gfx.Texture2D}:      m.Albedo[0],
		{Unit: 3, Target: gfx.Texture2D}:      m.AO[0],
		{Unit: 4, Target: gfx.TextureCubeMap}: f.bundle.Irradiance,
		{Unit: 5, Target: gfx.TextureCubeMap}: f.bundle.Prefilter,
		{Unit: 6, Target: gfx.Texture2D}:      f.bundle.BRDFLUT,
	}
	for key, tex := range bound {
		if d.Textures[key] != tex {
			t.Errorf("unit %d during draw = %d, want %d", key.Unit, d.Textures[key], tex)
		}
	}

	for key := range bound {
		if tex := f.dev.Bindings[key]; tex != 0 {
			t.Errorf("unit %d still has %d bound", key.Unit, tex)
		}
	}
}

func TestDrawPBRReplacesInvalidTexture(t *testing.T) {
	f := newDrawFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	m, err := Material{Albedo: []uint32{9999}}.WithFallbacks(f.fb)
	if err != nil {
		t.Fatal(err)
	}
	msh := f.mesh(t, m, WithLogger(zap.New(core)))
	defer msh.Release()

	for i := 0; i < 2; i++ {
		err := msh.DrawPBR(f.prog, f.bundle, f.tb)
		if !gfx.IsWarning(err) || !errors.Is(err, gfx.ErrInvalidHandle) {
			t.Fatalf("draw %d: err = %v, want invalid handle warning", i, err)
		}
	}
	if len(f.dev.Draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(f.dev.Draws))
	}
	albedo, _ := f.fb.Get(texture.Albedo)
	if got := f.dev.Draws[0].Textures[gfxtest.UnitTarget{Unit: 0, Target: gfx.Texture2D}]; got != albedo {
		t.Errorf("unit 0 = %d, want fallback %d", got, albedo)
	}
	if n := logs.FilterMessage("material texture replaced by fallback").Len(); n != 1 {
		t.Errorf("fallback warnings = %d, want 1", n)
	}
}

func TestDrawPBRFallbackKeepsBoundUnits(t *testing.T) {
	f := newDrawFixture(t)
	solid, err := texture.NewSolid(f.tb, 200, 100, 50)
	if err != nil {
		t.Fatal(err)
	}
	defer solid.Release()

	a := solid.ID()
	msh := f.mesh(t, Material{
		Albedo:            []uint32{a},
		Normal:            []uint32{9999},
		RoughnessMetallic: []uint32{a},
		AO:                []uint32{a},
	})
	defer msh.Release()

	err = msh.DrawPBR(f.prog, f.bundle, f.tb)
	if !gfx.IsWarning(err) || !errors.Is(err, gfx.ErrInvalidHandle) {
		t.Fatalf("err = %v, want invalid handle warning", err)
	}
	if len(f.dev.Draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(f.dev.Draws))
	}
	normal, err := f.fb.Get(texture.Normal)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{a, normal, a, a}
	d := f.dev.Draws[0]
	for unit, tex := range want {
		key := gfxtest.UnitTarget{Unit: uint32(unit), Target: gfx.Texture2D}
		if got := d.Textures[key]; got != tex {
			t.Errorf("unit %d during draw = %d, want %d", unit, got, tex)
		}
	}
}

func TestDrawPBRInvalidVertexArray(t *testing.T) {
	f := newDrawFixture(t)
	m, _ := Material{}.WithFallbacks(f.fb)
	msh := f.mesh(t, m)
	msh.Release()
	msh.Release()

	err := msh.DrawPBR(f.prog, f.bundle, f.tb)
	if !gfx.IsWarning(err) || !errors.Is(err, gfx.ErrInvalidHandle) {
		t.Errorf("err = %v, want invalid handle warning", err)
	}
	if len(f.dev.Draws) != 0 {
		t.Error("drew a released mesh")
	}
	if units := f.tb.TouchedUnits(); len(units) != 0 {
		t.Errorf("units left bound: %v", units)
	}
}

func TestNewRejectsEmptyGeometry(t *testing.T) {
	_, err := New(gfxtest.New(), nil, []uint32{0}, Material{})
	if !gfx.IsFatal(err) {
		t.Errorf("err = %v, want fatal", err)
	}
}
