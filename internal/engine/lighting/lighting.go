// Package lighting computes the fixed-function light parameters of a scene:
// the directional sun and the resulting lighting amount that drives the
// day/night texture blend.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/railview/internal/engine/world"
	"github.com/Faultbox/railview/pkg/math"
)

// DefaultAmbient and DefaultDiffuse are the light colors of an unconfigured scene.
var (
	DefaultAmbient = world.ColorRGB{R: 160, G: 160, B: 160}
	DefaultDiffuse = world.ColorRGB{R: 160, G: 160, B: 160}
)

// fullLightSum is the channel sum at which a light counts as full daylight.
const fullLightSum = 480

// Sun is the single directional light of the scene.
type Sun struct {
	Ambient   world.ColorRGB
	Diffuse   world.ColorRGB
	Direction math.Vec3
}

// NewSun builds a sun from colors and longitude/latitude angles in degrees.
func NewSun(ambient, diffuse world.ColorRGB, longitude, latitude float32) Sun {
	return Sun{
		Ambient:   ambient,
		Diffuse:   diffuse,
		Direction: SunDirection(longitude, latitude),
	}
}

// Amount returns ResultingAmount for the sun's colors.
func (s Sun) Amount() float32 {
	return ResultingAmount(s.Ambient, s.Diffuse)
}

// SunDirection converts longitude/latitude angles to a unit vector pointing
// towards the sun. Longitude rotates around Y, latitude is the elevation
// above the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := longitude * math32.Pi / 180
	lat := latitude * math32.Pi / 180
	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// ResultingAmount is the brighter of the ambient and diffuse channel sums
// scaled so that 480 maps to 1, capped at 1.
func ResultingAmount(ambient, diffuse world.ColorRGB) float32 {
	x := float32(ambient.R) + float32(ambient.G) + float32(ambient.B)
	y := float32(diffuse.R) + float32(diffuse.G) + float32(diffuse.B)
	if x < y {
		x = y
	}
	return math32.Min(x/fullLightSum, 1)
}

// DayNightBlend returns how far a material leans towards its night look:
// the material's own blend value plus the missing daylight, capped at 1.
func DayNightBlend(materialBlend uint8, amount float32) float32 {
	return math32.Min(float32(materialBlend)/255+1-amount, 1)
}
