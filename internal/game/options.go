package game

import (
	"github.com/Faultbox/railview/internal/config"
	"github.com/Faultbox/railview/internal/engine/lighting"
	"github.com/Faultbox/railview/internal/engine/scene"
	"github.com/Faultbox/railview/internal/engine/world"
)

// pipelineOptions maps the render, fog and data sections onto pipeline options.
func pipelineOptions(cfg *config.Config, background world.TextureID) scene.Options {
	r := cfg.Render
	return scene.Options{
		Transparency:    transparencyMode(r.TransparencyMode),
		MotionBlur:      motionBlur(r.MotionBlur),
		Lighting:        r.Lighting,
		BackfaceCulling: r.BackfaceCulling,
		Sun:             lighting.NewSun(rgb(r.AmbientColor), rgb(r.DiffuseColor), r.LightLongitude, r.LightLatitude),
		Fog: scene.Fog{
			Start: cfg.Fog.Start,
			End:   cfg.Fog.End,
			Color: rgb(cfg.Fog.Color),
		},
		Background:      background,
		CheckInvariants: r.CheckInvariants,
	}
}

func transparencyMode(s string) scene.TransparencyMode {
	if s == config.TransparencySmooth {
		return scene.TransparencySmooth
	}
	return scene.TransparencySharp
}

func motionBlur(s string) scene.MotionBlur {
	switch s {
	case config.MotionBlurLow:
		return scene.MotionBlurLow
	case config.MotionBlurMedium:
		return scene.MotionBlurMedium
	case config.MotionBlurHigh:
		return scene.MotionBlurHigh
	}
	return scene.MotionBlurNone
}

// nextMotionBlur cycles none, low, medium, high.
func nextMotionBlur(m scene.MotionBlur) scene.MotionBlur {
	switch m {
	case scene.MotionBlurNone:
		return scene.MotionBlurLow
	case scene.MotionBlurLow:
		return scene.MotionBlurMedium
	case scene.MotionBlurMedium:
		return scene.MotionBlurHigh
	}
	return scene.MotionBlurNone
}

func rgb(c config.Color) world.ColorRGB {
	return world.ColorRGB{R: c[0], G: c[1], B: c[2]}
}
