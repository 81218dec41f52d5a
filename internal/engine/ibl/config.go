// Package ibl precomputes the image based lighting textures from an
// equirectangular HDR panorama.
//
// A Pipeline runs five stages in order: load the panorama, convert it to
// the environment cube, convolve the irradiance cube, prefilter the
// specular cube per roughness mip, and integrate the BRDF lookup table.
// All stages render through one shared offscreen target and one depth
// renderbuffer. The finished textures are published as a Bundle.
package ibl

import (
	"fmt"

	"github.com/Faultbox/midgard-pbr/pkg/envmap"
)

// Config holds the render target sizes of the pipeline.
type Config struct {
	EnvironmentSize int32 `yaml:"environment_size"`
	IrradianceSize  int32 `yaml:"irradiance_size"`
	PrefilterSize   int32 `yaml:"prefilter_size"`
	PrefilterLevels int32 `yaml:"prefilter_levels"`
	BRDFLUTSize     int32 `yaml:"brdf_lut_size"`

	// SampleDelta is the angular step of the irradiance integral in radians.
	SampleDelta float32 `yaml:"sample_delta"`

	// Near and Far bound the capture projection.
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`

	// KeepSource keeps the panorama texture after conversion so the
	// conversion stage can run again without reloading the file.
	KeepSource bool `yaml:"keep_source"`
}

// DefaultConfig returns the reference sizes: a 512 environment, a 32
// irradiance map, a 128 prefilter map with 5 levels and a 512 BRDF table.
func DefaultConfig() Config {
	return Config{
		EnvironmentSize: 512,
		IrradianceSize:  32,
		PrefilterSize:   128,
		PrefilterLevels: 5,
		BRDFLUTSize:     512,
		SampleDelta:     0.025,
		Near:            0.1,
		Far:             10,
	}
}

// Validate reports a config the pipeline cannot render.
func (c Config) Validate() error {
	for _, s := range []struct {
		name string
		v    int32
	}{
		{"environment_size", c.EnvironmentSize},
		{"irradiance_size", c.IrradianceSize},
		{"prefilter_size", c.PrefilterSize},
		{"brdf_lut_size", c.BRDFLUTSize},
	} {
		if s.v <= 0 {
			return fmt.Errorf("ibl: %s must be positive, got %d", s.name, s.v)
		}
	}
	if c.PrefilterLevels < 1 || int(c.PrefilterLevels) > envmap.MipLevels(int(c.PrefilterSize)) {
		return fmt.Errorf("ibl: prefilter_levels %d out of range for size %d", c.PrefilterLevels, c.PrefilterSize)
	}
	if c.SampleDelta <= 0 {
		return fmt.Errorf("ibl: sample_delta must be positive, got %g", c.SampleDelta)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("ibl: invalid capture range [%g, %g]", c.Near, c.Far)
	}
	return nil
}
