package scene

import (
	"github.com/Faultbox/railview/internal/engine/lighting"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// Capability is a fixed-function toggle.
type Capability uint8

const (
	CapTexture2D Capability = iota
	CapCullFace
	CapLighting
	CapFog
	CapBlend
	CapAlphaTest
	CapDepthTest

	capabilityCount
)

func (c Capability) String() string {
	switch c {
	case CapTexture2D:
		return "texture2d"
	case CapCullFace:
		return "cull-face"
	case CapLighting:
		return "lighting"
	case CapFog:
		return "fog"
	case CapBlend:
		return "blend"
	case CapAlphaTest:
		return "alpha-test"
	case CapDepthTest:
		return "depth-test"
	}
	return "unknown"
}

// Comparison is the alpha test comparison.
type Comparison uint8

const (
	CompareGreater Comparison = iota
	CompareLess
	CompareEqual
)

// AlphaFunc is an alpha test comparison against a reference value.
type AlphaFunc struct {
	Compare Comparison
	Ref     float32
}

var (
	alphaOpaque      = AlphaFunc{CompareGreater, 0.9}
	alphaColorKey    = AlphaFunc{CompareGreater, 0.5}
	alphaAny         = AlphaFunc{CompareGreater, 0}
	alphaTranslucent = AlphaFunc{CompareLess, 1}
	alphaSolid       = AlphaFunc{CompareEqual, 1}
)

// BlendFunc selects the framebuffer blend equation.
type BlendFunc uint8

const (
	// BlendAlpha is src*a + dst*(1-a).
	BlendAlpha BlendFunc = iota
	// BlendAdditive is src*a + dst.
	BlendAdditive
)

// Fog is linear fog. It is disabled when Start >= End.
type Fog struct {
	Start float32
	End   float32
	Color world.ColorRGB
}

// Enabled reports whether the fog range is usable.
func (f Fog) Enabled() bool {
	return f.Start < f.End
}

// PolygonVertex is one corner of a polygon in draw space.
type PolygonVertex struct {
	Position math.Vec3
	TexCoord math.Vec2
	Normal   math.Vec3
}

// Polygon is a single draw call.
type Polygon struct {
	Type     world.FaceType
	Vertices []PolygonVertex
	// Color is RGBA in [0,1].
	Color [4]float32
	// Textured selects whether TexCoord is emitted.
	Textured bool
	// Normals selects whether Normal is emitted.
	Normals bool
}

// Backend is the fixed-function surface the pipeline drives. Implementations
// must not retain Polygon.Vertices past DrawPolygon.
type Backend interface {
	// Clear clears depth, and color to c when color is set.
	Clear(c world.ColorRGB, color bool)
	SetCapability(c Capability, on bool)
	SetDepthMask(on bool)
	SetBlendFunc(f BlendFunc)
	SetAlphaFunc(f AlphaFunc)
	BindTexture(handle uint32)
	SetFog(f Fog)
	// SetLight positions the directional light. It must be called after
	// BeginScenery so the direction is in world space.
	SetLight(sun lighting.Sun)
	// SetEmission sets the emissive material color; nil clears it.
	SetEmission(c *world.ColorRGB)
	// BeginScenery loads the world projection looking along dir from the
	// origin. Scenery vertices are submitted relative to the eye.
	BeginScenery(dir, up math.Vec3)
	// BeginOverlay loads the overlay projection with an identity view.
	BeginOverlay()
	// DrawBackground draws the background panorama with handle already
	// bound through the pipeline state.
	DrawBackground(handle uint32)
	DrawPolygon(p *Polygon)
	// Accumulate blends the previous frame over the current one with the
	// given opacity and captures the result for the next frame. It binds
	// its own texture.
	Accumulate(factor float32)
}
