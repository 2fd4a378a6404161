package scene

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

func TestMotionBlurFactor(t *testing.T) {
	tests := []struct {
		name  string
		mode  MotionBlur
		fps   float64
		speed float32
		want  float32
	}{
		{"disabled", MotionBlurNone, 60, 30, 0},
		{"standing still", MotionBlurHigh, 60, 0, 0},
		{"tiny denominator", MotionBlurLow, 1, 0.01, 0},
		{"medium", MotionBlurMedium, 60, 25, float32(gomath.Exp(-1 / (0.0040 * 60 * 5)))},
		{"reverse speed", MotionBlurLow, 100, -16, float32(gomath.Exp(-1 / (0.0025 * 100 * 4)))},
		{"high", MotionBlurHigh, 50, 9, float32(gomath.Exp(-1 / (0.0064 * 50 * 3)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MotionBlurFactor(tt.mode, tt.fps, tt.speed), 1e-6)
		})
	}
}

func TestShadeFaceDayFactor(t *testing.T) {
	mat := opaqueMaterial()

	s := shadeFace(&mat, false, 1, 1)
	assert.InDelta(t, 1, s.factor, 1e-6, "daylight leaves the color alone")

	s = shadeFace(&mat, false, 0, 1)
	assert.InDelta(t, 0.2, s.factor, 1e-6, "darkness dims to 20%")

	s = shadeFace(&mat, true, 0, 1)
	assert.InDelta(t, 1, s.factor, 1e-6, "night textures carry their own brightness")

	add := additiveMaterial()
	s = shadeFace(&add, false, 0, 1)
	assert.InDelta(t, 1, s.factor, 1e-6)
}

func TestShadeFaceNightAlpha(t *testing.T) {
	mat := translucentMaterial(51)
	mat.DayNightBlend = 128
	s := shadeFace(&mat, true, 1, 1)
	assert.InDelta(t, 0.2, s.alpha, 1e-6)
	assert.InDelta(t, 0.2*128.0/255, s.nightAlpha, 1e-6)

	mat.Glow = world.NewGlowAttenuation(world.GlowExponent2, 10)
	s = shadeFace(&mat, true, 1, 0.5)
	assert.InDelta(t, 0.1, s.alpha, 1e-6)
	assert.InDelta(t, 0.2*128.0/255*0.5, s.nightAlpha, 1e-6)
}

func TestGlowFactorCurves(t *testing.T) {
	mesh := buildMesh(nil, tri{z: -10})
	// First corner sits at (-1,-1,-10); put the eye 10 units in front of it.
	eye := math.Vec3{X: -1, Y: -1}

	mat := world.DefaultMaterial()
	assert.Equal(t, float32(1), glowFactor(&mesh, 0, &mat, eye))

	mat.Glow = world.NewGlowAttenuation(world.GlowExponent2, 10)
	assert.InDelta(t, 0.5, glowFactor(&mesh, 0, &mat, eye), 1e-6)

	mat.Glow = world.NewGlowAttenuation(world.GlowExponent4, 20)
	assert.InDelta(t, 1.0/17, glowFactor(&mesh, 0, &mat, eye), 1e-6)
}
