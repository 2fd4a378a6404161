package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/engine/lighting"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// Phase is the pipeline's position within a frame.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseBeginFrame
	PhaseDrawOpaque
	PhaseDrawTransparentColor
	PhaseDrawAlpha
	PhasePostEffect
	PhaseDrawOverlay
	PhaseEndFrame
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBeginFrame:
		return "begin-frame"
	case PhaseDrawOpaque:
		return "draw-opaque"
	case PhaseDrawTransparentColor:
		return "draw-transparent-color"
	case PhaseDrawAlpha:
		return "draw-alpha"
	case PhasePostEffect:
		return "post-effect"
	case PhaseDrawOverlay:
		return "draw-overlay"
	case PhaseEndFrame:
		return "end-frame"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// CameraSource supplies the eye once per frame.
type CameraSource interface {
	Eye() (pos, dir, up math.Vec3)
	// Speed is the camera's speed in units per second.
	Speed() float32
}

// TextureResolver turns texture IDs into backend handles. Resolve may decode
// the texture on first use; ready is false while it cannot be drawn.
type TextureResolver interface {
	TransparencySource
	Resolve(id world.TextureID) (handle uint32, ready bool)
}

// uploadCounter is implemented by resolvers whose lazy uploads may bind
// textures on the backend.
type uploadCounter interface {
	Uploads() uint64
}

// Chrome draws UI on top of the finished scene. It may change backend state
// freely; the pipeline forgets its cache afterwards.
type Chrome interface {
	DrawChrome(dt float64)
}

// StatePreserver is implemented by a Chrome that never touches backend
// state. When PreservesState reports true the cache survives the chrome.
type StatePreserver interface {
	PreservesState() bool
}

// Options configure a Pipeline.
type Options struct {
	Transparency    TransparencyMode
	MotionBlur      MotionBlur
	Lighting        bool
	BackfaceCulling bool
	Sun             lighting.Sun
	Fog             Fog
	// Background is the panorama texture, or world.NoTexture.
	Background world.TextureID
	// CheckInvariants validates the render lists after every frame and
	// panics on a violation.
	CheckInvariants bool
}

// DefaultOptions returns sharp transparency with lighting and culling on.
func DefaultOptions() Options {
	return Options{
		Lighting:        true,
		BackfaceCulling: true,
		Sun:             lighting.NewSun(lighting.DefaultAmbient, lighting.DefaultDiffuse, 153.43, 60),
		Background:      world.NoTexture,
	}
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Faces       int
	StateCalls  int
	BlurFactor  float32
	FrameRate   float64
	BucketFaces [bucketCount]int
}

// Pipeline draws the render lists once per frame in a fixed pass order.
type Pipeline struct {
	lists    *Lists
	backend  Backend
	textures TextureResolver
	camera   CameraSource
	log      *zap.Logger

	opts           Options
	lightingAmount float32
	state          *State
	phase          Phase

	// OnPhase, when set, is called on every phase transition.
	OnPhase func(Phase)
	chrome  Chrome

	// lighting is whether faces of the current pass may be lit.
	lighting bool
	poly     Polygon
	faces    int

	// uploads is the resolver's upload count when the binding was last known.
	uploads uint64

	fps        float64
	fpsTime    float64
	fpsFrames  int
	blurFactor float32
	last       FrameStats
}

// NewPipeline creates a pipeline drawing lists through backend.
func NewPipeline(lists *Lists, backend Backend, textures TextureResolver, camera CameraSource, opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		lists:    lists,
		backend:  backend,
		textures: textures,
		camera:   camera,
		log:      log,
		state:    NewState(backend),
		poly:     Polygon{Vertices: make([]PolygonVertex, 0, 16)},
	}
	p.SetOptions(opts)
	return p
}

// SetOptions replaces the options. The state cache is kept.
func (p *Pipeline) SetOptions(opts Options) {
	p.opts = opts
	p.lightingAmount = opts.Sun.Amount()
	p.log.Debug("pipeline options",
		zap.Stringer("transparency", opts.Transparency),
		zap.Stringer("motion_blur", opts.MotionBlur),
		zap.Bool("lighting", opts.Lighting),
		zap.Float32("lighting_amount", p.lightingAmount),
	)
}

// Options returns the current options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// SetChrome installs the UI drawn at the end of every frame.
func (p *Pipeline) SetChrome(c Chrome) {
	p.chrome = c
}

// Phase returns the current phase. It is PhaseIdle between frames.
func (p *Pipeline) Phase() Phase {
	return p.phase
}

// State exposes the state cache.
func (p *Pipeline) State() *State {
	return p.state
}

// LastFrame returns statistics of the most recent frame.
func (p *Pipeline) LastFrame() FrameStats {
	return p.last
}

// Invalidate forgets the cached backend state, e.g. after a context loss.
func (p *Pipeline) Invalidate() {
	p.state.Invalidate()
}

func (p *Pipeline) enter(ph Phase) {
	p.phase = ph
	if p.OnPhase != nil {
		p.OnPhase(ph)
	}
}

// RenderScene draws one frame. dt is the time since the previous frame in
// seconds.
func (p *Pipeline) RenderScene(dt float64) {
	p.updateFrameRate(dt)
	callsBefore := p.state.Calls()
	p.faces = 0
	pos, dir, up := p.camera.Eye()

	p.enter(PhaseBeginFrame)
	p.beginFrame(dir, up)

	p.enter(PhaseDrawOpaque)
	p.drawOpaque(pos)

	p.enter(PhaseDrawTransparentColor)
	p.drawTransparentColor(pos)

	p.enter(PhaseDrawAlpha)
	p.drawAlpha(pos)

	p.blurFactor = 0
	if p.opts.MotionBlur != MotionBlurNone {
		p.enter(PhasePostEffect)
		p.postEffect()
	}

	p.enter(PhaseDrawOverlay)
	p.drawOverlay()

	p.enter(PhaseEndFrame)
	p.endFrame(dt)

	p.last = FrameStats{
		Faces:      p.faces,
		StateCalls: p.state.Calls() - callsBefore,
		BlurFactor: p.blurFactor,
		FrameRate:  p.fps,
	}
	for b := range p.last.BucketFaces {
		p.last.BucketFaces[b] = p.lists.Len(Bucket(b))
	}
	p.enter(PhaseIdle)

	if p.opts.CheckInvariants {
		if err := p.lists.Validate(); err != nil {
			p.log.Error("render list invariant violated", zap.Error(err))
			panic(fmt.Sprintf("scene: render list invariant violated: %v", err))
		}
	}
}

// updateFrameRate averages the frame rate over one-second windows. The
// first frame seeds it from dt.
func (p *Pipeline) updateFrameRate(dt float64) {
	if dt <= 0 {
		return
	}
	if p.fps == 0 {
		p.fps = 1 / dt
	}
	p.fpsTime += dt
	p.fpsFrames++
	if p.fpsTime >= 1 {
		p.fps = float64(p.fpsFrames) / p.fpsTime
		p.fpsTime, p.fpsFrames = 0, 0
	}
}

func (p *Pipeline) beginFrame(dir, up math.Vec3) {
	st := p.state
	p.syncUploads()
	st.Set(CapDepthTest, true)
	st.DepthMask(true)

	clearColor := world.ColorRGB{}
	if p.opts.Fog.Enabled() {
		p.backend.SetFog(p.opts.Fog)
		st.Set(CapFog, true)
		clearColor = p.opts.Fog.Color
	} else {
		st.Set(CapFog, false)
	}

	bg, bgOK := p.resolve(p.opts.Background)
	p.backend.Clear(clearColor, !bgOK)
	p.backend.BeginScenery(dir, up)
	if p.opts.Lighting {
		p.backend.SetLight(p.opts.Sun)
	}

	if bgOK {
		st.Set(CapDepthTest, false)
		st.Set(CapLighting, false)
		st.Set(CapTexture2D, true)
		st.Set(CapBlend, false)
		st.Set(CapAlphaTest, false)
		st.BindTexture(bg)
		p.backend.DrawBackground(bg)
	}
}

func (p *Pipeline) drawOpaque(eye math.Vec3) {
	st := p.state
	p.lighting = p.opts.Lighting
	st.Set(CapLighting, p.lighting)
	st.AlphaFunc(alphaOpaque)
	st.Set(CapBlend, false)
	st.Set(CapDepthTest, true)
	st.DepthMask(true)
	for _, ref := range p.lists.Faces(BucketOpaque) {
		p.drawFace(ref, eye)
	}
}

func (p *Pipeline) drawTransparentColor(eye math.Vec3) {
	st := p.state
	if p.opts.Transparency != TransparencySmooth {
		st.AlphaFunc(alphaColorKey)
		for _, ref := range p.lists.Faces(BucketTransparentColor) {
			p.drawFace(ref, eye)
		}
		return
	}
	p.lists.SortBucket(BucketTransparentColor, eye)
	st.Set(CapBlend, true)
	for _, ref := range p.lists.Faces(BucketTransparentColor) {
		p.drawTwoPass(ref, eye)
	}
}

func (p *Pipeline) drawAlpha(eye math.Vec3) {
	st := p.state
	p.lists.SortBucket(BucketAlpha, eye)
	st.Set(CapBlend, true)
	if p.opts.Transparency != TransparencySmooth {
		st.DepthMask(false)
		st.AlphaFunc(alphaAny)
		for _, ref := range p.lists.Faces(BucketAlpha) {
			p.drawFace(ref, eye)
		}
		return
	}
	for _, ref := range p.lists.Faces(BucketAlpha) {
		if p.isAdditive(ref) {
			st.DepthMask(false)
			st.AlphaFunc(alphaAny)
			p.drawFace(ref, eye)
			continue
		}
		p.drawTwoPass(ref, eye)
	}
}

// drawTwoPass draws a face's translucent texels without depth writes, then
// its solid texels with depth writes.
func (p *Pipeline) drawTwoPass(ref FaceRef, eye math.Vec3) {
	st := p.state
	st.DepthMask(false)
	st.AlphaFunc(alphaTranslucent)
	p.drawFace(ref, eye)
	st.DepthMask(true)
	st.AlphaFunc(alphaSolid)
	p.drawFace(ref, eye)
}

func (p *Pipeline) isAdditive(ref FaceRef) bool {
	mesh, face := p.lists.face(ref)
	if face == nil {
		return false
	}
	return mesh.Material(ref.Face).Blend == world.BlendAdditive
}

func (p *Pipeline) postEffect() {
	st := p.state
	st.Set(CapDepthTest, false)
	st.DepthMask(false)
	st.AlphaFunc(alphaAny)
	st.Set(CapLighting, false)
	st.Set(CapBlend, true)
	st.BlendFunc(BlendAlpha)
	st.Set(CapTexture2D, true)
	p.blurFactor = MotionBlurFactor(p.opts.MotionBlur, p.fps, p.camera.Speed())
	p.backend.Accumulate(p.blurFactor)
	st.forgetTexture()
}

func (p *Pipeline) drawOverlay() {
	st := p.state
	var origin math.Vec3
	p.lighting = false
	st.Set(CapLighting, false)
	st.Set(CapFog, false)
	st.Set(CapDepthTest, false)
	st.Set(CapBlend, true)
	st.DepthMask(false)
	st.AlphaFunc(alphaAny)
	p.backend.BeginOverlay()
	p.lists.SortBucket(BucketOverlay, origin)
	for _, ref := range p.lists.Faces(BucketOverlay) {
		p.drawFace(ref, origin)
	}
}

// syncUploads forgets the cached binding when the resolver uploaded since
// the last check, which covers uploads triggered between frames by
// classification.
func (p *Pipeline) syncUploads() {
	uc, ok := p.textures.(uploadCounter)
	if !ok {
		return
	}
	if n := uc.Uploads(); n != p.uploads {
		p.uploads = n
		p.state.forgetTexture()
	}
}

func (p *Pipeline) endFrame(dt float64) {
	st := p.state
	st.Set(CapLighting, false)
	st.Set(CapFog, false)
	st.Set(CapBlend, false)
	st.Set(CapAlphaTest, false)
	st.AlphaFunc(alphaOpaque)
	st.Set(CapDepthTest, false)
	if p.chrome == nil {
		return
	}
	p.chrome.DrawChrome(dt)
	if sp, ok := p.chrome.(StatePreserver); ok && sp.PreservesState() {
		return
	}
	st.Invalidate()
}
