// Package app runs the interactive PBR viewer: an SDL window, the IBL
// environment, a glTF model lit by animated point lights, and a fly camera.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/config"
	"github.com/Faultbox/midgard-pbr/internal/engine/debug"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/gfx/gldevice"
	"github.com/Faultbox/midgard-pbr/internal/engine/input"
	"github.com/Faultbox/midgard-pbr/internal/engine/window"
)

// Title is the window title.
const Title = "Midgard PBR"

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool
	window  *window.Window
	input   *input.Input
	scene   *Scene
	shots   *debug.ScreenshotCapture

	// paths picked in the open dialog, drained on the main thread
	picked  chan string
	picking bool
}

// New creates the window, the GL device and the scene.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("supersample", cfg.Graphics.Supersample),
		zap.String("hdr", cfg.Environment.HDRPath),
		zap.String("model", cfg.Scene.ModelPath),
	)

	a := &App{
		cfg:    cfg,
		log:    log,
		input:  input.New(),
		shots:  debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "pbr"),
		picked: make(chan string, 1),
	}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, log.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device must come after the window, GL needs a current context
	dev, err := gldevice.New(log.Named("gl"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	tb := gfx.NewTextureBindings(dev, log.Named("bindings"))

	width, height := a.window.DrawableSize()
	a.scene, err = NewScene(tb, cfg, width, height, log.Named("scene"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	a.window.AddResizeListener(a.scene.Supersampler())
	a.window.AddResizeListener(a.scene)
	a.window.SetRelativeMouse(true)

	log.Info("viewer initialized")
	return a, nil
}

// Run drives the frame loop until the window is closed or Esc is pressed.
func (a *App) Run() error {
	a.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		if _, _, ok := a.input.Resized(); ok {
			a.window.NotifyResize()
		}
		for _, action := range applyControls(a.input, a.scene.Camera(), dt) {
			a.handle(action)
		}
		if !a.running {
			break
		}
		a.drainPicked()

		// 2. Update
		a.scene.Update(dt)

		// 3. Render
		if err := a.scene.Render(); err != nil {
			if gfx.IsFatal(err) {
				return fmt.Errorf("render error: %w", err)
			}
			a.log.Debug("frame rendered with warnings", zap.Error(err))
		}

		// 4. Present
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			a.window.SetTitle(fmt.Sprintf("%s - %d fps", Title, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handle(action Action) {
	switch action {
	case ActionQuit:
		a.running = false
	case ActionScreenshot:
		path, err := a.shots.Capture(a.scene.Supersampler().Framebuffer())
		if err != nil {
			a.log.Warn("screenshot failed", zap.Error(err))
			return
		}
		a.log.Info("screenshot saved", zap.String("path", path))
	case ActionReload:
		start := time.Now()
		if err := a.scene.ReloadEnvironment(); err != nil {
			a.log.Error("environment reload failed", zap.Error(err))
			return
		}
		a.log.Info("environment reloaded", zap.Duration("took", time.Since(start)))
	case ActionOpen:
		a.openEnvironmentDialog()
	}
}

// openEnvironmentDialog shows a native file dialog without blocking the
// loop. GL calls must stay on the main thread, so the chosen path is sent
// back and loaded by drainPicked.
func (a *App) openEnvironmentDialog() {
	if a.picking {
		return
	}
	a.picking = true
	go func() {
		filename, err := dialog.File().
			Filter("HDR Panoramas", "hdr", "pic", "exr").
			Filter("All Files", "*").
			Title("Open Environment").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			filename = ""
		}
		a.picked <- filename
	}()
}

func (a *App) drainPicked() {
	select {
	case path := <-a.picked:
		a.picking = false
		if path == "" {
			return
		}
		if err := a.scene.LoadEnvironment(path); err != nil {
			a.log.Error("environment load failed", zap.String("path", path), zap.Error(err))
		}
	default:
	}
}

// Close releases the scene and the window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.scene != nil {
		a.window.RemoveResizeListener(a.scene)
		a.window.RemoveResizeListener(a.scene.Supersampler())
		a.scene.Release()
	}
	if a.window != nil {
		a.window.Close()
	}
}
