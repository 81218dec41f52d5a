package app

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/config"
	"github.com/Faultbox/midgard-pbr/internal/engine/camera"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/ibl"
	"github.com/Faultbox/midgard-pbr/internal/engine/lighting"
	"github.com/Faultbox/midgard-pbr/internal/engine/model"
	"github.com/Faultbox/midgard-pbr/internal/engine/primitive"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-pbr/internal/engine/supersample"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/pkg/envmap"
)

// blackPanorama replaces an environment that fails to decode.
func blackPanorama() *envmap.Image {
	return envmap.NewConstant(64, 32, [3]float32{})
}

// Scene owns every GPU resource of the viewer and draws one frame. It only
// talks to gfx.Device, so it runs against the recording device in tests.
type Scene struct {
	cfg *config.Config
	log *zap.Logger
	dev gfx.Device
	tb  *gfx.TextureBindings

	prims     *primitive.Renderer
	pipeline  *ibl.Pipeline
	bundle    ibl.Bundle
	pbr       *shader.Program
	textures  *texture.Cache
	fallbacks *texture.Fallbacks
	model     *model.Model
	rig       *lighting.Rig
	camera    *camera.FlyCamera
	ss        *supersample.Renderer

	width, height int
	// requested is the last panorama asked for, envPath the one in use.
	// envPath is empty after the black fallback.
	requested string
	envPath   string
}

// NewScene builds the scene for a width×height drawable. The environment
// is set up before it returns.
func NewScene(tb *gfx.TextureBindings, cfg *config.Config, width, height int, log *zap.Logger) (_ *Scene, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		cfg:    cfg,
		log:    log,
		dev:    tb.Device(),
		tb:     tb,
		width:  width,
		height: height,
	}
	defer func() {
		if err != nil {
			s.Release()
		}
	}()

	s.prims = primitive.New(s.dev)

	var opts []ibl.Option
	opts = append(opts, ibl.WithLogger(log))
	if cfg.Environment.LUTCache != "" {
		opts = append(opts, ibl.WithLUTCache(cfg.Environment.LUTCache))
	}
	if s.pipeline, err = ibl.New(tb, s.prims, cfg.Environment.IBL, opts...); err != nil {
		return nil, fmt.Errorf("creating ibl pipeline: %w", err)
	}

	if s.pbr, err = shader.Load(s.dev, shaders.PBR, log); err != nil {
		return nil, err
	}
	if err = s.pbr.InitUBOs(); err != nil {
		return nil, err
	}
	if err = s.pbr.BindUBOs(); err != nil {
		return nil, err
	}

	s.textures = texture.NewCache(tb, cfg.Graphics.Anisotropy, log)
	s.fallbacks = texture.NewFallbacks(tb)
	if cfg.Scene.ModelPath != "" {
		s.model, err = model.Load(s.dev, cfg.Scene.ModelPath, s.textures, s.fallbacks, model.WithLogger(log.Named("model")))
		if err != nil {
			return nil, err
		}
		s.model.Position = cfg.Scene.Position
		s.model.Rotation = cfg.Scene.Rotation
		s.model.Scale = cfg.Scene.Scale
	} else {
		log.Warn("no model configured, drawing the environment only")
	}

	s.rig = lighting.NewRig(cfg.PointLights())
	s.rig.Animate = cfg.Scene.AnimateLights

	c := camera.NewFlyCamera(cfg.Camera.Position)
	c.Zoom, c.MaxZoom = cfg.Camera.FOV, max(cfg.Camera.FOV, c.MaxZoom)
	c.Near, c.Far = cfg.Camera.Near, cfg.Camera.Far
	c.MovementSpeed, c.MouseSensitivity = cfg.Camera.Speed, cfg.Camera.Sensitivity
	s.camera = c

	if s.ss, err = supersample.New(tb, width, height, cfg.Graphics.Supersample, log.Named("supersample")); err != nil {
		return nil, err
	}

	if err = s.LoadEnvironment(cfg.Environment.HDRPath); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadEnvironment runs the IBL stages for path. A panorama that cannot be
// decoded is replaced by a black one so the viewer keeps running.
func (s *Scene) LoadEnvironment(path string) error {
	s.requested = path
	err := s.pipeline.SetupEnvironment(path)
	if errors.Is(err, gfx.ErrDecode) {
		s.log.Warn("environment unreadable, using black panorama",
			zap.String("path", path), zap.Error(err))
		path = ""
		err = s.pipeline.SetupEnvironmentImage(blackPanorama())
	}
	if err == nil {
		s.bundle, err = s.pipeline.Bundle()
	}
	if err != nil {
		// the stages were invalidated, so the old handles must not be drawn
		s.bundle = ibl.Bundle{}
		s.envPath = ""
		return fmt.Errorf("setting up environment: %w", err)
	}
	s.envPath = path
	s.log.Info("environment ready",
		zap.String("path", path),
		zap.Uint64("generation", s.bundle.Generation))
	return nil
}

// ReloadEnvironment reruns the stages for the last requested panorama. The
// BRDF table is reused.
func (s *Scene) ReloadEnvironment() error {
	return s.LoadEnvironment(s.requested)
}

// EnvironmentPath returns the panorama in use, empty for the black
// fallback.
func (s *Scene) EnvironmentPath() string { return s.envPath }

// Camera returns the viewer camera.
func (s *Scene) Camera() *camera.FlyCamera { return s.camera }

// Bundle returns the lighting textures in use.
func (s *Scene) Bundle() ibl.Bundle { return s.bundle }

// Supersampler returns the scene render target.
func (s *Scene) Supersampler() *supersample.Renderer { return s.ss }

// Model returns the loaded model, nil when none is configured.
func (s *Scene) Model() *model.Model { return s.model }

// OnResize tracks the drawable size for the projection aspect.
func (s *Scene) OnResize(width, height int) {
	s.width, s.height = width, height
}

// Update advances the light animation.
func (s *Scene) Update(dt float32) {
	s.rig.Update(dt)
}

// Render draws one frame into the supersample target and blits it to the
// default framebuffer. Draw warnings are returned combined; the frame is
// still presented.
func (s *Scene) Render() error {
	s.ss.BeginRender()
	defer s.ss.EndRender()

	cc := s.cfg.Graphics.ClearColor
	s.dev.Enable(gfx.DepthTest)
	s.dev.DepthFunc(gfx.Lequal)
	s.ss.Framebuffer().Clear(cc[0], cc[1], cc[2], 1)

	aspect := float32(1)
	if s.height > 0 {
		aspect = float32(s.width) / float32(s.height)
	}
	view := s.camera.ViewMatrix()
	proj := s.camera.ProjectionMatrix(aspect)

	var errs error
	switch {
	case s.model == nil:
	case !s.bundle.Valid():
		errs = gfx.Warnf("render model", "%w: no lighting bundle", gfx.ErrStageOrder)
	default:
		errs = multierr.Append(errs, s.pbr.SetCameraData(shader.CameraData{
			View:       view,
			Projection: proj,
			Position:   s.camera.Position,
		}))
		if err := s.pbr.Use(); err != nil {
			return multierr.Append(errs, err)
		}
		s.rig.Apply(s.pbr)
		errs = multierr.Append(errs, s.model.DrawPBR(s.pbr, s.bundle, s.tb))
	}
	// the background shader drops translation itself
	errs = multierr.Append(errs, s.pipeline.RenderBackground(view, proj))
	return errs
}

// Release frees everything the scene owns.
func (s *Scene) Release() {
	if s == nil {
		return
	}
	if s.ss != nil {
		s.ss.Release()
	}
	if s.model != nil {
		s.model.Release()
	}
	if s.fallbacks != nil {
		s.fallbacks.Release()
	}
	if s.textures != nil {
		s.textures.Release()
	}
	if s.pbr != nil {
		s.pbr.Release()
	}
	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if s.prims != nil {
		s.prims.Release()
	}
}
