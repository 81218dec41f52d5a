// Package config handles viewer configuration loading and management.
package config

import (
	"github.com/Faultbox/midgard-pbr/internal/engine/ibl"
	"github.com/Faultbox/midgard-pbr/internal/engine/lighting"
)

// Config holds all viewer settings.
type Config struct {
	Graphics    GraphicsConfig    `yaml:"graphics"`
	Environment EnvironmentConfig `yaml:"environment"`
	Scene       SceneConfig       `yaml:"scene"`
	Camera      CameraConfig      `yaml:"camera"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	// Supersample is the factor the scene is rendered at before the
	// downscale blit. 1 disables supersampling.
	Supersample   int        `yaml:"supersample"`
	Anisotropy    float32    `yaml:"anisotropy"`
	ClearColor    [3]float32 `yaml:"clear_color"`
	ScreenshotDir string     `yaml:"screenshot_dir"`
}

// EnvironmentConfig holds the panorama and the IBL render target sizes.
type EnvironmentConfig struct {
	HDRPath string `yaml:"hdr_path"`
	// LUTCache is where the BRDF lookup table is persisted between runs.
	// Empty disables the cache.
	LUTCache string     `yaml:"lut_cache"`
	IBL      ibl.Config `yaml:",inline"`
}

// SceneConfig holds the model and its lights.
type SceneConfig struct {
	ModelPath     string        `yaml:"model_path"`
	Position      [3]float32    `yaml:"position"`
	Rotation      [3]float32    `yaml:"rotation"`
	Scale         [3]float32    `yaml:"scale"`
	AnimateLights bool          `yaml:"animate_lights"`
	Lights        []LightConfig `yaml:"lights"`
}

// LightConfig is one point light.
type LightConfig struct {
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
}

// CameraConfig holds the fly camera settings.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	FOV         float32    `yaml:"fov"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	lights := lighting.DefaultLights()
	lc := make([]LightConfig, len(lights))
	for i, l := range lights {
		lc[i] = LightConfig{Position: l.Position, Color: l.Color}
	}

	return &Config{
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			Supersample:   2,
			Anisotropy:    8,
			ClearColor:    [3]float32{0.1, 0.1, 0.1},
			ScreenshotDir: "screenshots",
		},
		Environment: EnvironmentConfig{
			HDRPath: "assets/hdr/environment.hdr",
			IBL:     ibl.DefaultConfig(),
		},
		Scene: SceneConfig{
			ModelPath:     "assets/models/scene.gltf",
			Position:      [3]float32{0, -2.75, 0},
			Scale:         [3]float32{1, 1, 1},
			AnimateLights: true,
			Lights:        lc,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 3},
			FOV:         45,
			Near:        0.1,
			Far:         100,
			Speed:       2.5,
			Sensitivity: 0.1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// PointLights converts the configured lights.
func (c *Config) PointLights() []lighting.PointLight {
	out := make([]lighting.PointLight, len(c.Scene.Lights))
	for i, l := range c.Scene.Lights {
		out[i] = lighting.PointLight{Position: l.Position, Color: l.Color}
	}
	return out
}
