package scene

import (
	gomath "math"

	"github.com/Faultbox/railview/internal/engine/lighting"
	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// TransparencyMode selects how translucent buckets are composited.
type TransparencyMode uint8

const (
	// TransparencySharp alpha-tests color-keyed faces unsorted and draws
	// alpha faces in a single blended pass.
	TransparencySharp TransparencyMode = iota
	// TransparencySmooth sorts color-keyed faces and draws translucent faces
	// in two passes: blended edges without depth writes, then solid texels.
	TransparencySmooth
)

func (m TransparencyMode) String() string {
	if m == TransparencySmooth {
		return "smooth"
	}
	return "sharp"
}

// MotionBlur selects the strength of the accumulation post effect.
type MotionBlur uint8

const (
	MotionBlurNone MotionBlur = iota
	MotionBlurLow
	MotionBlurMedium
	MotionBlurHigh
)

func (m MotionBlur) String() string {
	switch m {
	case MotionBlurLow:
		return "low"
	case MotionBlurMedium:
		return "medium"
	case MotionBlurHigh:
		return "high"
	}
	return "none"
}

// Strength returns the blur strength constant.
func (m MotionBlur) Strength() float64 {
	switch m {
	case MotionBlurLow:
		return 0.0025
	case MotionBlurHigh:
		return 0.0064
	case MotionBlurNone:
		return 0
	}
	return 0.0040
}

// MotionBlurFactor returns the opacity of the previous frame for a camera
// moving at speed while rendering fps frames per second.
func MotionBlurFactor(m MotionBlur, fps float64, speed float32) float32 {
	denominator := m.Strength() * fps * gomath.Sqrt(gomath.Abs(float64(speed)))
	if denominator <= 0.001 {
		return 0
	}
	return float32(gomath.Exp(-1 / denominator))
}

// faceShade is the per-face color decision.
type faceShade struct {
	// factor scales the day polygon's RGB.
	factor float32
	// alpha is the day polygon's alpha.
	alpha float32
	// nightAlpha is the night polygon's alpha.
	nightAlpha float32
}

// shadeFace computes factor and alpha for a face. glow is the glow factor,
// 1 when the material has no glow.
func shadeFace(mat *world.Material, hasNight bool, amount float32, glow float32) faceShade {
	blend := lighting.DayNightBlend(mat.DayNightBlend, amount)
	s := faceShade{factor: 1}
	if mat.Blend != world.BlendAdditive && !hasNight {
		s.factor = 1 - 0.8*blend
	}
	a := float32(mat.Color.A) / 255
	s.alpha = a * glow
	s.nightAlpha = a * blend
	if mat.Glow.Enabled() {
		s.nightAlpha *= glow
	}
	return s
}

// glowFactor measures the glow falloff from the face's first corner.
func glowFactor(mesh *world.Mesh, face int, mat *world.Material, eye math.Vec3) float32 {
	if !mat.Glow.Enabled() {
		return 1
	}
	v0, ok := mesh.Corner(face, 0)
	if !ok {
		return 1
	}
	dx, dy, dz := v0.Sub(eye).Float64()
	return float32(mat.Glow.Factor(dx*dx + dy*dy + dz*dz))
}

// color returns the polygon color for a shade.
func (s faceShade) color(c world.ColorRGBA, alpha float32) [4]float32 {
	return [4]float32{
		float32(c.R) / 255 * s.factor,
		float32(c.G) / 255 * s.factor,
		float32(c.B) / 255 * s.factor,
		alpha,
	}
}
