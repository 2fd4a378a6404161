// Package game wires the viewer together and runs the main loop.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/config"
	"github.com/Faultbox/railview/internal/engine/camera"
	"github.com/Faultbox/railview/internal/engine/capture"
	"github.com/Faultbox/railview/internal/engine/input"
	"github.com/Faultbox/railview/internal/engine/renderer"
	"github.com/Faultbox/railview/internal/engine/scene"
	"github.com/Faultbox/railview/internal/engine/texture"
	"github.com/Faultbox/railview/internal/engine/window"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/internal/logger"
)

const title = "railview"

// Game is the viewer instance.
type Game struct {
	config  *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.GL
	input    *input.Input

	textures *texture.Cache
	store    *world.Store
	lists    *scene.Lists
	tracker  *world.Tracker
	scene    *sceneSet
	watcher  *world.Watcher
	pipeline *scene.Pipeline
	camera   *camera.Orbit
	shots    *capture.Screenshots

	// screenshotPending defers the capture until the frame is drawn.
	screenshotPending bool
}

// New creates the window and GL backend and loads the configured scene.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		config: cfg,
		log:    logger.Named("game"),
	}
	g.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("scene", cfg.Data.SceneFile),
	)

	// Create window (this also creates the OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL backend needs a current context.
	width, height := g.window.GetSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:           width,
		Height:          height,
		FieldOfView:     cfg.Render.FieldOfView,
		ViewingDistance: cfg.Render.ViewingDistance,
	}, logger.Named("renderer"))
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.input = input.New()
	g.shots = capture.NewScreenshots(cfg.Graphics.ScreenshotDir, title)

	g.textures = texture.NewCache(g.renderer, searchLoader(cfg.Data.TextureDirs), logger.Named("texture"))
	g.store = world.NewStore()
	g.lists = scene.NewLists(g.store, g.textures, logger.Named("scene"))
	g.tracker = world.NewTracker(g.store, g.lists, cfg.Render.ViewingDistance, logger.Named("world"))
	g.scene = &sceneSet{
		path:     cfg.Data.SceneFile,
		store:    g.store,
		textures: g.textures,
		tracker:  g.tracker,
		log:      logger.Named("world"),
	}
	if err := g.scene.load(); err != nil {
		g.Close()
		return nil, err
	}

	background := world.NoTexture
	if cfg.Data.Background != "" {
		background = g.textures.Register(cfg.Data.Background, nil)
	}

	g.camera = camera.NewOrbit(cfg.Camera.Distance, cfg.Camera.MoveSpeed)
	g.fitCamera()

	g.pipeline = scene.NewPipeline(g.lists, g.renderer, g.textures, g.camera,
		pipelineOptions(cfg, background), logger.Named("scene"))
	g.pipeline.SetChrome(&titleChrome{base: title, setTitle: g.window.SetTitle, pipeline: g.pipeline})

	if cfg.Data.WatchScene {
		g.watcher, err = world.WatchFile(cfg.Data.SceneFile, logger.Named("watch"))
		if err != nil {
			g.log.Warn("scene hot reload disabled", zap.Error(err))
		}
	}

	g.log.Info("viewer initialized")
	return g, nil
}

// Run starts the main loop and returns when the window is closed.
func (g *Game) Run() error {
	g.running = true

	var minFrame time.Duration
	if g.config.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(g.config.Graphics.FPSLimit)
	}

	var changed <-chan struct{}
	if g.watcher != nil {
		changed = g.watcher.Changed()
	}

	lastTime := time.Now()
	g.log.Info("starting main loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Input
		if g.input.Update() {
			break
		}
		g.handleEvents()

		// 2. Scene file changes, before visibility is updated.
		select {
		case <-changed:
			g.reload()
		default:
		}

		// 3. Camera and visibility
		g.updateCamera(dt)
		pos, _, _ := g.camera.Eye()
		g.tracker.Update(pos)

		// 4. Render and present
		g.pipeline.RenderScene(dt)
		if g.screenshotPending {
			g.screenshotPending = false
			g.screenshot()
		}
		g.window.SwapBuffers()

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(event.Width, event.Height)
			g.pipeline.Invalidate()
		case input.EventKeyDown:
			g.handleKey(event.Key)
		}
	}
}

func (g *Game) handleKey(key sdl.Scancode) {
	opts := g.pipeline.Options()
	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.running = false
		return
	case sdl.SCANCODE_T:
		if opts.Transparency == scene.TransparencySharp {
			opts.Transparency = scene.TransparencySmooth
		} else {
			opts.Transparency = scene.TransparencySharp
		}
	case sdl.SCANCODE_B:
		opts.MotionBlur = nextMotionBlur(opts.MotionBlur)
	case sdl.SCANCODE_L:
		opts.Lighting = !opts.Lighting
	case sdl.SCANCODE_C:
		opts.BackfaceCulling = !opts.BackfaceCulling
	case sdl.SCANCODE_F:
		g.fitCamera()
		return
	case sdl.SCANCODE_R:
		g.reload()
		return
	case sdl.SCANCODE_F12:
		g.screenshotPending = true
		return
	default:
		return
	}
	g.pipeline.SetOptions(opts)
	g.log.Info("render options changed",
		zap.Stringer("transparency", opts.Transparency),
		zap.Stringer("motion_blur", opts.MotionBlur),
		zap.Bool("lighting", opts.Lighting),
		zap.Bool("backface_culling", opts.BackfaceCulling),
	)
}

func (g *Game) updateCamera(dt float64) {
	if dx, dy := g.input.Drag(); dx != 0 || dy != 0 {
		g.camera.HandleDrag(dx, dy)
	}
	if w := g.input.Wheel(); w != 0 {
		g.camera.HandleZoom(w)
	}
	g.camera.HandleMovement(
		g.input.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S),
		g.input.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
		g.input.Axis(sdl.SCANCODE_E, sdl.SCANCODE_Q),
		dt,
	)
	g.camera.Update(dt)
}

// reload replaces the scene with the file's current contents.
func (g *Game) reload() {
	if err := g.scene.load(); err != nil {
		g.log.Warn("scene reload failed, keeping current scene", zap.Error(err))
		return
	}
	g.pipeline.Invalidate()
	if g.config.Render.CheckInvariants {
		if err := g.lists.Validate(); err != nil {
			g.log.Error("render lists inconsistent after reload", zap.Error(err))
		}
	}
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.shots.Save(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

func (g *Game) fitCamera() {
	if center, radius := g.scene.bounds(); radius > 0 {
		g.camera.FitToBounds(center, radius)
	}
}

// Close releases the viewer's resources.
func (g *Game) Close() {
	g.log.Info("closing viewer")

	if g.watcher != nil {
		g.watcher.Close()
	}
	if g.scene != nil {
		g.scene.clear()
	}
	if g.textures != nil {
		g.textures.UnloadAll()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
