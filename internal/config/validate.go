package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-pbr/internal/engine/lighting"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// Validate reports every setting the viewer cannot run with.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		add("graphics: window size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.Supersample < 1 {
		add("graphics: supersample %d must be at least 1", c.Graphics.Supersample)
	}
	if c.Graphics.Anisotropy < 0 {
		add("graphics: anisotropy %g must not be negative", c.Graphics.Anisotropy)
	}

	env := c.Environment.IBL
	errs = multierr.Append(errs, env.Validate())
	for _, s := range []struct {
		name string
		v    int32
	}{
		{"environment_size", env.EnvironmentSize},
		{"irradiance_size", env.IrradianceSize},
		{"prefilter_size", env.PrefilterSize},
	} {
		if s.v > 0 && s.v&(s.v-1) != 0 {
			add("environment: %s %d is not a power of two", s.name, s.v)
		}
	}

	if n := len(c.Scene.Lights); n > lighting.MaxPointLights {
		add("scene: %d lights, at most %d supported", n, lighting.MaxPointLights)
	}

	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		add("camera: fov %g out of range (0, 180)", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		add("camera: invalid clip range [%g, %g]", c.Camera.Near, c.Camera.Far)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		add("logging: %w", err)
	}
	return errs
}
