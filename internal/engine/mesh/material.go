package mesh

import (
	"strconv"

	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
)

// Material holds the texture lists of the four PBR channels. A list may
// hold several textures; they are bound to consecutive units.
type Material struct {
	Albedo            []uint32
	Normal            []uint32
	RoughnessMetallic []uint32
	AO                []uint32
}

// Channel returns the list of channel c.
func (m *Material) Channel(c texture.Channel) []uint32 {
	switch c {
	case texture.Albedo:
		return m.Albedo
	case texture.Normal:
		return m.Normal
	case texture.RoughnessMetallic:
		return m.RoughnessMetallic
	case texture.AO:
		return m.AO
	}
	return nil
}

func (m *Material) set(c texture.Channel, list []uint32) {
	switch c {
	case texture.Albedo:
		m.Albedo = list
	case texture.Normal:
		m.Normal = list
	case texture.RoughnessMetallic:
		m.RoughnessMetallic = list
	case texture.AO:
		m.AO = list
	}
}

// WithFallbacks returns a copy of m where every empty channel holds the
// channel's flat fallback texture.
func (m Material) WithFallbacks(f *texture.Fallbacks) (Material, error) {
	for c := texture.Channel(0); c < texture.ChannelCount; c++ {
		if len(m.Channel(c)) > 0 {
			continue
		}
		id, err := f.Get(c)
		if err != nil {
			return m, err
		}
		m.set(c, []uint32{id})
	}
	return m, nil
}

// Sampler uniform names of the material channels. The shader declares the
// first texture of each channel; additional textures use the name with the
// list index appended.
var samplerNames = [texture.ChannelCount]string{
	texture.Albedo:            "uAlbedoMap",
	texture.Normal:            "uNormalMap",
	texture.RoughnessMetallic: "uRoughnessMetallicMap",
	texture.AO:                "uAOMap",
}

// SamplerName returns the sampler uniform for texture i of channel c.
func SamplerName(c texture.Channel, i int) string {
	if i == 0 {
		return samplerNames[c]
	}
	return samplerNames[c] + strconv.Itoa(i)
}

// IBL sampler uniforms, bound after the material units in this order.
const (
	IrradianceSampler = "uIrradianceMap"
	PrefilterSampler  = "uPrefilterMap"
	BRDFLUTSampler    = "uBRDFLUT"
	PrefilterLevels   = "uPrefilterLevels"
)

// Slot is one material texture and the unit it is bound to.
type Slot struct {
	Channel texture.Channel
	Index   int
	Unit    uint32
	Sampler string
	Texture uint32
}

// UnitLayout assigns consecutive texture units from 0 to the material
// lists in channel order. It returns the slots and the first unit after
// them, where the three IBL textures go.
func UnitLayout(m Material) (slots []Slot, iblBase uint32) {
	var unit uint32
	for c := texture.Channel(0); c < texture.ChannelCount; c++ {
		for i, tex := range m.Channel(c) {
			slots = append(slots, Slot{
				Channel: c,
				Index:   i,
				Unit:    unit,
				Sampler: SamplerName(c, i),
				Texture: tex,
			})
			unit++
		}
	}
	return slots, unit
}
