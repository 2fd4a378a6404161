// Package renderer implements the scene backend on fixed-function OpenGL 2.1.
package renderer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/engine/lighting"
	"github.com/Faultbox/railview/internal/engine/scene"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	// ViewingDistance is the far plane and the background radius.
	ViewingDistance float32
}

// GL drives an OpenGL 2.1 compatibility context. It implements
// scene.Backend and texture.Uploader.
type GL struct {
	config Config
	log    *zap.Logger

	// blurTexture holds the previous frame for motion blur.
	blurTexture uint32
	blurValid   bool
}

var _ scene.Backend = (*GL)(nil)

// New initializes OpenGL. It must be called after the context is current.
func New(cfg Config, log *zap.Logger) (*GL, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.FieldOfView <= 0 {
		cfg.FieldOfView = 45
	}
	if cfg.ViewingDistance <= 0 {
		cfg.ViewingDistance = 600
	}
	r := &GL{config: cfg, log: log}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.ShadeModel(gl.SMOOTH)
	gl.ClearColor(0, 0, 0, 0)
	gl.DepthFunc(gl.LEQUAL)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Hint(gl.PERSPECTIVE_CORRECTION_HINT, gl.NICEST)
	gl.Hint(gl.FOG_HINT, gl.FASTEST)
	gl.Fogi(gl.FOG_MODE, gl.LINEAR)

	// Faces are wound clockwise, so the front faces are culled.
	gl.CullFace(gl.FRONT)
	gl.Enable(gl.LIGHT0)
	gl.Enable(gl.COLOR_MATERIAL)
	gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)
	black := [4]float32{0, 0, 0, 1}
	gl.LightModelfv(gl.LIGHT_MODEL_AMBIENT, &black[0])

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases GL objects owned by the renderer.
func (r *GL) Close() {
	r.log.Info("closing renderer")
	if r.blurTexture != 0 {
		gl.DeleteTextures(1, &r.blurTexture)
		r.blurTexture = 0
	}
}

// Resize updates the viewport.
func (r *GL) Resize(width, height int) {
	if height <= 0 {
		height = 1
	}
	r.config.Width = width
	r.config.Height = height
	r.blurValid = false
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Clear clears depth and, when color is set, the color buffer to c.
func (r *GL) Clear(c world.ColorRGB, color bool) {
	if !color {
		gl.Clear(gl.DEPTH_BUFFER_BIT)
		return
	}
	gl.ClearColor(channel(c.R), channel(c.G), channel(c.B), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// SetCapability enables or disables a capability.
func (r *GL) SetCapability(c scene.Capability, on bool) {
	mode := capability(c)
	if on {
		gl.Enable(mode)
	} else {
		gl.Disable(mode)
	}
}

// SetDepthMask sets depth writes.
func (r *GL) SetDepthMask(on bool) {
	gl.DepthMask(on)
}

// SetBlendFunc sets the blend equation.
func (r *GL) SetBlendFunc(f scene.BlendFunc) {
	if f == scene.BlendAdditive {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		return
	}
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

// SetAlphaFunc sets the alpha test.
func (r *GL) SetAlphaFunc(f scene.AlphaFunc) {
	gl.AlphaFunc(comparison(f.Compare), f.Ref)
}

// BindTexture binds a 2D texture.
func (r *GL) BindTexture(handle uint32) {
	gl.BindTexture(gl.TEXTURE_2D, handle)
}

// SetFog sets the linear fog range and color.
func (r *GL) SetFog(f scene.Fog) {
	gl.Fogf(gl.FOG_START, f.Start)
	gl.Fogf(gl.FOG_END, f.End)
	c := rgba(f.Color, 1)
	gl.Fogfv(gl.FOG_COLOR, &c[0])
}

// SetLight sets the directional light.
func (r *GL) SetLight(sun lighting.Sun) {
	ambient := rgba(sun.Ambient, 1)
	diffuse := rgba(sun.Diffuse, 1)
	pos := [4]float32{sun.Direction.X, sun.Direction.Y, sun.Direction.Z, 0}
	gl.Lightfv(gl.LIGHT0, gl.AMBIENT, &ambient[0])
	gl.Lightfv(gl.LIGHT0, gl.DIFFUSE, &diffuse[0])
	gl.Lightfv(gl.LIGHT0, gl.POSITION, &pos[0])
}

// SetEmission sets or clears the emissive material color.
func (r *GL) SetEmission(c *world.ColorRGB) {
	e := [4]float32{0, 0, 0, 1}
	if c != nil {
		e = rgba(*c, 1)
	}
	gl.Materialfv(gl.FRONT_AND_BACK, gl.EMISSION, &e[0])
}

// BeginScenery loads the world projection with the eye at the origin.
func (r *GL) BeginScenery(dir, up math.Vec3) {
	r.loadProjection(0.5)
	view := math.LookAt(math.Vec3{}, dir, up)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(view.Ptr())
}

// BeginOverlay loads the overlay projection with an identity view.
func (r *GL) BeginOverlay() {
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	r.loadProjection(0.025)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
}

func (r *GL) loadProjection(near float32) {
	aspect := float32(r.config.Width) / float32(r.config.Height)
	proj := math.Perspective(r.config.FieldOfView*math32.Pi/180, aspect, near, r.config.ViewingDistance)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(proj.Ptr())
}

func channel(v uint8) float32 {
	return float32(v) / 255
}

func rgba(c world.ColorRGB, a float32) [4]float32 {
	return [4]float32{channel(c.R), channel(c.G), channel(c.B), a}
}

func capability(c scene.Capability) uint32 {
	switch c {
	case scene.CapTexture2D:
		return gl.TEXTURE_2D
	case scene.CapCullFace:
		return gl.CULL_FACE
	case scene.CapLighting:
		return gl.LIGHTING
	case scene.CapFog:
		return gl.FOG
	case scene.CapBlend:
		return gl.BLEND
	case scene.CapAlphaTest:
		return gl.ALPHA_TEST
	case scene.CapDepthTest:
		return gl.DEPTH_TEST
	}
	panic(fmt.Sprintf("renderer: unknown capability %d", c))
}

func comparison(c scene.Comparison) uint32 {
	switch c {
	case scene.CompareLess:
		return gl.LESS
	case scene.CompareEqual:
		return gl.EQUAL
	}
	return gl.GREATER
}
