package ibl

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/primitive"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/pkg/envmap"
	"github.com/Faultbox/midgard-pbr/pkg/lut"
)

// Pipeline owns the IBL render targets and runs the precompute stages.
//
// Stages must complete in order. Stages 2 to 4 can be re-run to refresh
// from the loaded panorama. The BRDF table does not depend on the
// environment; it is rendered once and reused by later environments.
type Pipeline struct {
	tb    *gfx.TextureBindings
	dev   gfx.Device
	log   *zap.Logger
	prims *primitive.Renderer
	cfg   Config

	lutCache string

	target *framebuffer.Offscreen
	depth  *framebuffer.Renderbuffer

	source     *texture.Texture2D
	env        *texture.Cube
	irradiance *texture.Cube
	prefilter  *texture.Cube
	brdf       *texture.Texture2D

	equirectProg   *shader.Program
	irradianceProg *shader.Program
	prefilterProg  *shader.Program
	brdfProg       *shader.Program
	backgroundProg *shader.Program

	done       [stageCount]bool
	generation uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithLUTCache persists the BRDF table at path. A table of the configured
// size found there is uploaded instead of rendered.
func WithLUTCache(path string) Option {
	return func(p *Pipeline) { p.lutCache = path }
}

// New allocates every render target and builds the five programs. Program
// validation failures are fatal.
func New(tb *gfx.TextureBindings, prims *primitive.Renderer, cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, gfx.Fatal("new ibl pipeline", err)
	}
	p := &Pipeline{
		tb:    tb,
		dev:   tb.Device(),
		log:   zap.NewNop(),
		prims: prims,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("ibl")

	if err := p.allocate(); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.buildPrograms(); err != nil {
		p.Release()
		return nil, err
	}
	p.log.Info("ibl pipeline ready",
		zap.Int32("environment", cfg.EnvironmentSize),
		zap.Int32("irradiance", cfg.IrradianceSize),
		zap.Int32("prefilter", cfg.PrefilterSize),
		zap.Int32("prefilterLevels", cfg.PrefilterLevels),
		zap.Int32("brdfLUT", cfg.BRDFLUTSize))
	return p, nil
}

func (p *Pipeline) allocate() error {
	var err error
	if p.target, err = framebuffer.NewOffscreen(p.dev, p.log); err != nil {
		return err
	}
	if p.depth, err = framebuffer.NewRenderbuffer(p.dev, gfx.DepthComponent24, p.cfg.EnvironmentSize, p.cfg.EnvironmentSize); err != nil {
		return err
	}
	mipmapped := texture.CubeOptions{MinFilter: gfx.LinearMipmapLinear}
	if p.env, err = texture.NewCube(p.tb, p.cfg.EnvironmentSize, mipmapped); err != nil {
		return err
	}
	if p.irradiance, err = texture.NewCube(p.tb, p.cfg.IrradianceSize, texture.CubeOptions{}); err != nil {
		return err
	}
	if p.prefilter, err = texture.NewCube(p.tb, p.cfg.PrefilterSize, mipmapped); err != nil {
		return err
	}
	return nil
}

func (p *Pipeline) buildPrograms() error {
	for _, b := range []struct {
		dst **shader.Program
		src shaders.Source
	}{
		{&p.equirectProg, shaders.Equirect},
		{&p.irradianceProg, shaders.Irradiance},
		{&p.prefilterProg, shaders.Prefilter},
		{&p.brdfProg, shaders.BRDF},
		{&p.backgroundProg, shaders.Background},
	} {
		prog, err := shader.Load(p.dev, b.src, p.log)
		if err != nil {
			return err
		}
		*b.dst = prog
	}
	return nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Completed reports whether stage has completed since its inputs last
// changed.
func (p *Pipeline) Completed(s Stage) bool {
	return s >= 0 && s < stageCount && p.done[s]
}

// Generation returns the counter bumped by every completed stage.
func (p *Pipeline) Generation() uint64 { return p.generation }

func (p *Pipeline) complete(s Stage) {
	p.done[s] = true
	p.generation++
}

// invalidate marks stages as needing to run again.
func (p *Pipeline) invalidate(stages ...Stage) {
	for _, s := range stages {
		p.done[s] = false
	}
}

func (p *Pipeline) require(op string, s Stage) error {
	if !p.done[s] {
		return gfx.Fatalf(op, "%w: %s", gfx.ErrStageOrder, s)
	}
	return nil
}

// LoadEnvironment decodes an HDR or EXR panorama and uploads it (stage 1).
// A decode failure is fatal for the pipeline: later stages refuse to run
// until an environment loads.
func (p *Pipeline) LoadEnvironment(path string) error {
	img, err := texture.DecodeHDRFile(path)
	if err != nil {
		p.invalidate(StageLoad, StageConvert, StageIrradiance, StagePrefilter)
		p.releaseSource()
		p.log.Error("environment decode failed", zap.String("path", path), zap.Error(err))
		return err
	}
	p.log.Info("environment decoded",
		zap.String("path", path),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("channels", img.Channels))
	return p.LoadEnvironmentImage(img)
}

// LoadEnvironmentImage uploads an already decoded panorama (stage 1). Any
// previous panorama texture is released.
func (p *Pipeline) LoadEnvironmentImage(img *envmap.Image) error {
	p.invalidate(StageLoad, StageConvert, StageIrradiance, StagePrefilter)
	p.releaseSource()

	src, err := texture.NewEquirect(p.tb, img)
	if err != nil {
		return gfx.Fatal("load environment", err)
	}
	p.source = src
	p.complete(StageLoad)
	return nil
}

func (p *Pipeline) releaseSource() {
	if p.source != nil {
		p.source.Release()
		p.source = nil
	}
}

// capture binds the shared target with the depth buffer at size and
// returns a func that restores the default framebuffer, the viewport and
// the texture units the pass bound.
func (p *Pipeline) capture(op string, size int32) (func(), error) {
	viewport := p.dev.CurrentViewport()
	restore := func() {
		p.tb.UnbindTouched()
		p.target.Unbind()
		p.dev.Viewport(viewport[0], viewport[1], viewport[2], viewport[3])
	}
	// the previous pass may have left another size or no depth attached
	if err := p.target.AttachRenderbuffer(p.depth, gfx.DepthAttachment); err != nil {
		restore()
		return nil, gfx.Fatal(op, err)
	}
	if err := p.target.ResizeDepth(size, size); err != nil {
		restore()
		return nil, gfx.Fatal(op, err)
	}
	p.dev.Viewport(0, 0, size, size)
	return restore, nil
}

// renderFaces draws the unit cube into level of all six faces of dst. A
// face whose attachment is incomplete is skipped and reported.
func (p *Pipeline) renderFaces(prog *shader.Program, dst *texture.Cube, level int32) error {
	var errs error
	for i, view := range CaptureViews() {
		prog.SetMat4("uView", view)
		if err := p.target.AttachTexture(dst, gfx.ColorAttachment0, gfx.CubeFace(i), level); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("face %s mip %d: %w", envmap.Face(i), level, err))
			continue
		}
		p.dev.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)
		p.prims.DrawCube()
	}
	return errs
}

func (p *Pipeline) useCapture(prog *shader.Program) error {
	if err := prog.Use(); err != nil {
		return err
	}
	prog.SetMat4("uProjection", CaptureProjection(p.cfg.Near, p.cfg.Far))
	return nil
}

// ConvertEquirectangular renders the panorama onto the six faces of the
// environment cube and rebuilds its mip chain (stage 2). It invalidates
// the irradiance and prefilter stages.
func (p *Pipeline) ConvertEquirectangular() error {
	const op = "convert equirectangular"
	if err := p.require(op, StageLoad); err != nil {
		return err
	}
	if p.source == nil || !p.source.Valid() {
		return gfx.Fatalf(op, "%w: panorama released, load the environment again", gfx.ErrStageOrder)
	}
	p.invalidate(StageConvert, StageIrradiance, StagePrefilter)

	restore, err := p.capture(op, p.env.Size())
	if err != nil {
		return err
	}
	err = p.convert()
	restore()
	if err != nil {
		p.log.Error("stage failed", zap.Stringer("stage", StageConvert), zap.Error(err))
		return gfx.Fatal(op, err)
	}
	if err := p.env.GenerateMipmaps(); err != nil {
		return gfx.Fatal(op, err)
	}
	if !p.cfg.KeepSource {
		p.releaseSource()
	}
	p.complete(StageConvert)
	p.log.Debug("stage complete", zap.Stringer("stage", StageConvert), zap.Uint64("generation", p.generation))
	return nil
}

func (p *Pipeline) convert() error {
	if err := p.useCapture(p.equirectProg); err != nil {
		return err
	}
	p.equirectProg.SetInt("uEquirectMap", 0)
	if err := p.source.Bind(0); err != nil {
		return err
	}
	return p.renderFaces(p.equirectProg, p.env, 0)
}

// ComputeIrradiance convolves the environment cube into the irradiance
// cube (stage 3).
func (p *Pipeline) ComputeIrradiance() error {
	const op = "compute irradiance"
	if err := p.require(op, StageConvert); err != nil {
		return err
	}
	p.invalidate(StageIrradiance)

	restore, err := p.capture(op, p.irradiance.Size())
	if err != nil {
		return err
	}
	err = p.convolve()
	restore()
	if err != nil {
		p.log.Error("stage failed", zap.Stringer("stage", StageIrradiance), zap.Error(err))
		return gfx.Fatal(op, err)
	}
	p.complete(StageIrradiance)
	p.log.Debug("stage complete", zap.Stringer("stage", StageIrradiance), zap.Uint64("generation", p.generation))
	return nil
}

func (p *Pipeline) convolve() error {
	if err := p.useCapture(p.irradianceProg); err != nil {
		return err
	}
	p.irradianceProg.SetInt("uEnvironmentMap", 0)
	p.irradianceProg.SetFloat("uSampleDelta", p.cfg.SampleDelta)
	if err := p.env.Bind(0); err != nil {
		return err
	}
	return p.renderFaces(p.irradianceProg, p.irradiance, 0)
}

// ComputePrefilter renders the specular cube one mip level at a time
// (stage 4). Level m is rendered at PrefilterSize>>m with roughness
// m/(levels-1), and the depth buffer is resized to match before each level.
func (p *Pipeline) ComputePrefilter() error {
	const op = "compute prefilter"
	if err := p.require(op, StageConvert); err != nil {
		return err
	}
	p.invalidate(StagePrefilter)

	restore, err := p.capture(op, p.prefilter.Size())
	if err != nil {
		return err
	}
	err = p.prefilterLevels()
	restore()
	if err != nil {
		p.log.Error("stage failed", zap.Stringer("stage", StagePrefilter), zap.Error(err))
		return gfx.Fatal(op, err)
	}
	p.complete(StagePrefilter)
	p.log.Debug("stage complete", zap.Stringer("stage", StagePrefilter), zap.Uint64("generation", p.generation))
	return nil
}

func (p *Pipeline) prefilterLevels() error {
	prog := p.prefilterProg
	if err := p.useCapture(prog); err != nil {
		return err
	}
	prog.SetInt("uEnvironmentMap", 0)
	prog.SetFloat("uResolution", float32(p.env.Size()))
	if err := p.env.Bind(0); err != nil {
		return err
	}

	levels := int(p.cfg.PrefilterLevels)
	var errs error
	for mip := 0; mip < levels; mip++ {
		size := p.prefilter.MipSize(mip)
		if err := p.target.ResizeDepth(size, size); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mip %d: %w", mip, err))
			continue
		}
		p.dev.Viewport(0, 0, size, size)
		prog.SetFloat("uRoughness", envmap.Roughness(mip, levels))
		errs = multierr.Append(errs, p.renderFaces(prog, p.prefilter, int32(mip)))
	}
	return errs
}

// ComputeBRDFLUT integrates the split-sum BRDF table (stage 5). The table
// is independent of the environment, so once it exists later calls return
// immediately. With a LUT cache configured the table is read from disk
// when possible and written after rendering.
func (p *Pipeline) ComputeBRDFLUT() error {
	if p.done[StageBRDFLUT] && p.brdf != nil && p.brdf.Valid() {
		return nil
	}
	if p.lutCache != "" && p.loadCachedLUT() {
		p.complete(StageBRDFLUT)
		return nil
	}
	return p.renderBRDFLUT()
}

// RecomputeBRDFLUT renders the table again, ignoring any cached copy.
func (p *Pipeline) RecomputeBRDFLUT() error {
	p.invalidate(StageBRDFLUT)
	return p.renderBRDFLUT()
}

func (p *Pipeline) ensureLUT() error {
	if p.brdf != nil && p.brdf.Valid() {
		return nil
	}
	t, err := texture.NewBRDFLUT(p.tb, p.cfg.BRDFLUTSize)
	if err != nil {
		return err
	}
	p.brdf = t
	return nil
}

func (p *Pipeline) loadCachedLUT() bool {
	tbl, err := lut.Load(p.lutCache)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.log.Warn("brdf lut cache unreadable", zap.String("path", p.lutCache), zap.Error(err))
		}
		return false
	}
	if tbl.Size != int(p.cfg.BRDFLUTSize) {
		p.log.Info("brdf lut cache size mismatch, rendering",
			zap.String("path", p.lutCache),
			zap.Int("cached", tbl.Size),
			zap.Int32("want", p.cfg.BRDFLUTSize))
		return false
	}
	if err := p.ensureLUT(); err != nil {
		p.log.Warn("brdf lut allocation failed", zap.Error(err))
		return false
	}
	if err := p.brdf.UploadTable(tbl); err != nil {
		p.log.Warn("brdf lut upload failed", zap.Error(err))
		return false
	}
	p.log.Info("brdf lut loaded from cache", zap.String("path", p.lutCache))
	return true
}

func (p *Pipeline) renderBRDFLUT() error {
	const op = "compute brdf lut"
	if err := p.ensureLUT(); err != nil {
		return gfx.Fatal(op, err)
	}
	restore, err := p.capture(op, p.cfg.BRDFLUTSize)
	if err != nil {
		return err
	}
	err = p.integrate()
	p.target.DetachColor()
	restore()
	if err != nil {
		p.log.Error("stage failed", zap.Stringer("stage", StageBRDFLUT), zap.Error(err))
		return gfx.Fatal(op, err)
	}
	p.complete(StageBRDFLUT)
	p.log.Debug("stage complete", zap.Stringer("stage", StageBRDFLUT), zap.Uint64("generation", p.generation))

	if p.lutCache != "" {
		p.saveLUT()
	}
	return nil
}

func (p *Pipeline) integrate() error {
	if err := p.brdfProg.Use(); err != nil {
		return err
	}
	if err := p.target.AttachTexture(p.brdf, gfx.ColorAttachment0, gfx.Texture2D, 0); err != nil {
		return err
	}
	p.dev.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)
	p.prims.DrawQuad()
	return nil
}

func (p *Pipeline) saveLUT() {
	tbl, err := p.brdf.ReadTable()
	if err == nil {
		err = lut.Save(p.lutCache, tbl)
	}
	if err != nil {
		p.log.Warn("brdf lut cache not written", zap.String("path", p.lutCache), zap.Error(err))
		return
	}
	p.log.Info("brdf lut cached", zap.String("path", p.lutCache))
}

// SetupEnvironment runs all five stages for the panorama at path.
func (p *Pipeline) SetupEnvironment(path string) error {
	if err := p.LoadEnvironment(path); err != nil {
		return err
	}
	return p.process()
}

// SetupEnvironmentImage runs all five stages for a decoded panorama.
func (p *Pipeline) SetupEnvironmentImage(img *envmap.Image) error {
	if err := p.LoadEnvironmentImage(img); err != nil {
		return err
	}
	return p.process()
}

func (p *Pipeline) process() error {
	for _, stage := range []func() error{
		p.ConvertEquirectangular,
		p.ComputeIrradiance,
		p.ComputePrefilter,
		p.ComputeBRDFLUT,
	} {
		if err := stage(); err != nil {
			return err
		}
	}
	return nil
}

// Bundle returns the lighting textures. It fails until every stage has
// completed for the current environment.
func (p *Pipeline) Bundle() (Bundle, error) {
	var missing []string
	for s := StageConvert; s < stageCount; s++ {
		if !p.done[s] {
			missing = append(missing, s.String())
		}
	}
	if len(missing) > 0 {
		return Bundle{}, gfx.Warnf("ibl bundle", "%w: %v", gfx.ErrStageOrder, missing)
	}
	return Bundle{
		Irradiance:      p.irradiance.ID(),
		Prefilter:       p.prefilter.ID(),
		BRDFLUT:         p.brdf.ID(),
		PrefilterLevels: p.cfg.PrefilterLevels,
		Generation:      p.generation,
	}, nil
}

// EnvironmentMap returns the environment cube.
func (p *Pipeline) EnvironmentMap() *texture.Cube { return p.env }

// IrradianceMap returns the irradiance cube.
func (p *Pipeline) IrradianceMap() *texture.Cube { return p.irradiance }

// PrefilterMap returns the prefiltered specular cube.
func (p *Pipeline) PrefilterMap() *texture.Cube { return p.prefilter }

// BRDFLUT returns the BRDF table texture, nil before stage 5.
func (p *Pipeline) BRDFLUT() *texture.Texture2D { return p.brdf }

// RenderBackground draws the environment cube behind the scene with the
// camera rotation. The caller's depth function must pass at depth 1.
func (p *Pipeline) RenderBackground(view, projection mgl32.Mat4) error {
	if !p.done[StageConvert] {
		return gfx.Warnf("render background", "%w: %s", gfx.ErrStageOrder, StageConvert)
	}
	prog := p.backgroundProg
	if err := prog.Use(); err != nil {
		return err
	}
	defer p.tb.UnbindTouched()
	prog.SetMat4("uProjection", projection)
	prog.SetMat4("uView", view)
	prog.SetInt("uEnvironmentMap", 0)
	prog.SetFloat("uLod", 0)
	if err := p.env.Bind(0); err != nil {
		return err
	}
	p.prims.DrawCube()
	return nil
}

// Release deletes every target and program the pipeline owns. The
// primitive renderer is shared and left alone.
func (p *Pipeline) Release() {
	if p == nil {
		return
	}
	p.releaseSource()
	for _, c := range []*texture.Cube{p.env, p.irradiance, p.prefilter} {
		if c != nil {
			c.Release()
		}
	}
	if p.brdf != nil {
		p.brdf.Release()
	}
	for _, prog := range []*shader.Program{p.equirectProg, p.irradianceProg, p.prefilterProg, p.brdfProg, p.backgroundProg} {
		prog.Release()
	}
	if p.target != nil {
		p.target.Release()
	}
	if p.depth != nil {
		p.depth.Release()
	}
	p.done = [stageCount]bool{}
}
