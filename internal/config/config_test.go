package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.Supersample != 2 {
		t.Errorf("expected supersample 2, got %d", cfg.Graphics.Supersample)
	}
	if cfg.Graphics.ClearColor != [3]float32{0.1, 0.1, 0.1} {
		t.Errorf("unexpected clear color %v", cfg.Graphics.ClearColor)
	}

	env := cfg.Environment.IBL
	if env.EnvironmentSize != 512 || env.IrradianceSize != 32 || env.PrefilterSize != 128 || env.BRDFLUTSize != 512 {
		t.Errorf("unexpected IBL sizes %+v", env)
	}
	if env.PrefilterLevels != 5 {
		t.Errorf("expected 5 prefilter levels, got %d", env.PrefilterLevels)
	}

	if cfg.Scene.Position != [3]float32{0, -2.75, 0} {
		t.Errorf("unexpected model position %v", cfg.Scene.Position)
	}
	if len(cfg.Scene.Lights) != 5 || len(cfg.PointLights()) != 5 {
		t.Errorf("expected 5 lights, got %d", len(cfg.Scene.Lights))
	}
	if cfg.Camera.Position != [3]float32{0, 0, 3} {
		t.Errorf("unexpected camera position %v", cfg.Camera.Position)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  supersample: 1

environment:
  hdr_path: "sky/studio.exr"
  lut_cache: "cache/brdf.blut"
  environment_size: 1024
  prefilter_levels: 4

scene:
  model_path: "models/helmet.glb"
  lights:
    - position: [1, 2, 3]
      color: [10, 10, 10]

logging:
  level: "debug"
  log_file: "pbr.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || !cfg.Graphics.Fullscreen || cfg.Graphics.Supersample != 1 {
		t.Errorf("graphics not loaded: %+v", cfg.Graphics)
	}
	// unset keys keep their defaults
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to keep its default")
	}

	env := cfg.Environment
	if env.HDRPath != "sky/studio.exr" || env.LUTCache != "cache/brdf.blut" {
		t.Errorf("environment paths not loaded: %+v", env)
	}
	if env.IBL.EnvironmentSize != 1024 || env.IBL.PrefilterLevels != 4 {
		t.Errorf("inline IBL settings not loaded: %+v", env.IBL)
	}
	if env.IBL.IrradianceSize != 32 {
		t.Errorf("expected irradiance default 32, got %d", env.IBL.IrradianceSize)
	}

	if cfg.Scene.ModelPath != "models/helmet.glb" {
		t.Errorf("expected model path, got %s", cfg.Scene.ModelPath)
	}
	if len(cfg.Scene.Lights) != 1 || cfg.Scene.Lights[0].Color != [3]float32{10, 10, 10} {
		t.Errorf("lights not replaced: %+v", cfg.Scene.Lights)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "pbr.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFromFileStrict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "empty file", content: ""},
		{name: "comment only", content: "# nothing yet\n"},
		{name: "misspelled key", content: "graphics:\n  widht: 800\n", wantErr: "widht"},
		{name: "unknown section", content: "audio:\n  volume: 3\n", wantErr: "audio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := Default()
			err := loadFromFile(cfg, path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg.Graphics != Default().Graphics {
					t.Errorf("defaults changed: %+v", cfg.Graphics)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{
			name:   "supersample below one",
			mutate: func(c *Config) { c.Graphics.Supersample = 0 },
			want:   []string{"supersample 0"},
		},
		{
			name:   "non power of two cube",
			mutate: func(c *Config) { c.Environment.IBL.IrradianceSize = 48 },
			want:   []string{"irradiance_size 48 is not a power of two"},
		},
		{
			name:   "prefilter levels beyond mip chain",
			mutate: func(c *Config) { c.Environment.IBL.PrefilterLevels = 9 },
			want:   []string{"prefilter_levels 9"},
		},
		{
			name: "several problems reported together",
			mutate: func(c *Config) {
				c.Graphics.Width = 0
				c.Camera.FOV = 200
				c.Logging.Level = "verbose"
			},
			want: []string{"window size", "fov 200", `log level "verbose"`},
		},
		{
			name: "too many lights",
			mutate: func(c *Config) {
				c.Scene.Lights = make([]LightConfig, 9)
			},
			want: []string{"9 lights"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if len(tt.want) > 1 && len(multierr.Errors(err)) != len(tt.want) {
				t.Errorf("expected %d errors, got %v", len(tt.want), err)
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "asset flags",
			setup: func() {
				*flagHDR = "sky.hdr"
				*flagModel = "helmet.glb"
				*flagLUTCache = "brdf.blut"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Environment.HDRPath != "sky.hdr" {
					t.Errorf("expected hdr path sky.hdr, got %s", cfg.Environment.HDRPath)
				}
				if cfg.Scene.ModelPath != "helmet.glb" {
					t.Errorf("expected model helmet.glb, got %s", cfg.Scene.ModelPath)
				}
				if cfg.Environment.LUTCache != "brdf.blut" {
					t.Errorf("expected lut cache brdf.blut, got %s", cfg.Environment.LUTCache)
				}
			},
			teardown: func() {
				*flagHDR = ""
				*flagModel = ""
				*flagLUTCache = ""
			},
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "size and supersample flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
				*flagSupersample = 3
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
				if cfg.Graphics.Supersample != 3 {
					t.Errorf("expected supersample 3, got %d", cfg.Graphics.Supersample)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
				*flagSupersample = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  supersample: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid config error")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Environment.HDRPath = "saved.hdr"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatal(err)
	}
	if loaded.Environment.HDRPath != "saved.hdr" || loaded.Environment.IBL != cfg.Environment.IBL {
		t.Errorf("round trip lost settings: %+v", loaded.Environment)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Graphics.Supersample = 0
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config was written: %v", err)
	}
}
