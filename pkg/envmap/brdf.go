package envmap

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/pkg/lut"
)

// DefaultBRDFSamples is the sample count of the BRDF integral.
const DefaultBRDFSamples = 1024

func geometrySchlickGGX(nDotV, roughness float32) float32 {
	k := roughness * roughness / 2
	return nDotV / (nDotV*(1-k) + k)
}

func geometrySmith(nDotV, nDotL, roughness float32) float32 {
	return geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness)
}

// IntegrateBRDF returns the split-sum scale and bias for a view angle and
// roughness.
func IntegrateBRDF(nDotV, roughness float32, samples int) (scale, bias float32) {
	v := mgl32.Vec3{math32.Sqrt(1 - nDotV*nDotV), 0, nDotV}
	n := mgl32.Vec3{0, 0, 1}

	for i := 0; i < samples; i++ {
		h := ImportanceSampleGGX(Hammersley(uint32(i), uint32(samples)), n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := math32.Max(l[2], 0)
		nDotH := math32.Max(h[2], 0)
		vDotH := math32.Max(v.Dot(h), 0)
		if nDotL <= 0 {
			continue
		}

		g := geometrySmith(nDotV, nDotL, roughness)
		gVis := g * vDotH / (nDotH * nDotV)
		fc := math32.Pow(1-vDotH, 5)

		scale += (1 - fc) * gVis
		bias += fc * gVis
	}
	return scale / float32(samples), bias / float32(samples)
}

// IntegrateBRDFTable fills a size×size table. Column x samples
// N·V = (x+0.5)/size and row y samples roughness = (y+0.5)/size, the texel
// centers a full-screen quad covers.
func IntegrateBRDFTable(size, samples int) *lut.Table {
	t := lut.NewTable(size)
	var wg sync.WaitGroup
	for y := 0; y < size; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			roughness := (float32(y) + 0.5) / float32(size)
			for x := 0; x < size; x++ {
				nDotV := (float32(x) + 0.5) / float32(size)
				s, b := IntegrateBRDF(nDotV, roughness, samples)
				t.Set(x, y, s, b)
			}
		}(y)
	}
	wg.Wait()
	return t
}
