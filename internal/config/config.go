// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"slices"
)

// Transparency modes.
const (
	TransparencySharp  = "sharp"
	TransparencySmooth = "smooth"
)

// Motion blur levels.
const (
	MotionBlurNone   = "none"
	MotionBlurLow    = "low"
	MotionBlurMedium = "medium"
	MotionBlurHigh   = "high"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Fog      FogConfig      `yaml:"fog"`
	Camera   CameraConfig   `yaml:"camera"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// Color is an RGB triple written as [r, g, b].
type Color [3]uint8

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	// ScreenshotDir receives PNG snapshots taken with F12.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// RenderConfig holds pipeline settings.
type RenderConfig struct {
	TransparencyMode string  `yaml:"transparency_mode"`
	MotionBlur       string  `yaml:"motion_blur"`
	Lighting         bool    `yaml:"lighting"`
	BackfaceCulling  bool    `yaml:"backface_culling"`
	AmbientColor     Color   `yaml:"ambient_color"`
	DiffuseColor     Color   `yaml:"diffuse_color"`
	LightLongitude   float32 `yaml:"light_longitude"` // degrees
	LightLatitude    float32 `yaml:"light_latitude"`  // degrees
	ViewingDistance  float32 `yaml:"viewing_distance"`
	FieldOfView      float32 `yaml:"field_of_view"` // degrees
	CheckInvariants  bool    `yaml:"check_invariants"`
}

// FogConfig holds linear fog settings. Fog is off when start >= end.
type FogConfig struct {
	Start float32 `yaml:"start"`
	End   float32 `yaml:"end"`
	Color Color   `yaml:"color"`
}

// CameraConfig holds viewer camera settings.
type CameraConfig struct {
	Distance  float32 `yaml:"distance"`
	MoveSpeed float32 `yaml:"move_speed"` // units per second at distance 100
}

// DataConfig holds scene file paths.
type DataConfig struct {
	SceneFile   string   `yaml:"scene_file"`
	TextureDirs []string `yaml:"texture_dirs"` // searched for relative texture paths
	Background  string   `yaml:"background"`
	WatchScene  bool     `yaml:"watch_scene"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,

			ScreenshotDir: "screenshots",
		},
		Render: RenderConfig{
			TransparencyMode: TransparencySharp,
			MotionBlur:       MotionBlurNone,
			Lighting:         true,
			BackfaceCulling:  true,
			AmbientColor:     Color{160, 160, 160},
			DiffuseColor:     Color{160, 160, 160},
			LightLongitude:   153.43,
			LightLatitude:    60,
			ViewingDistance:  600,
			FieldOfView:      45,
		},
		Fog: FogConfig{
			Start: 0,
			End:   0,
			Color: Color{128, 128, 128},
		},
		Camera: CameraConfig{
			Distance:  40,
			MoveSpeed: 50,
		},
		Data: DataConfig{
			SceneFile:  "scene.yaml",
			WatchScene: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if !slices.Contains([]string{TransparencySharp, TransparencySmooth}, c.Render.TransparencyMode) {
		errs = append(errs, fmt.Errorf("render: unknown transparency_mode %q", c.Render.TransparencyMode))
	}
	if !slices.Contains([]string{MotionBlurNone, MotionBlurLow, MotionBlurMedium, MotionBlurHigh}, c.Render.MotionBlur) {
		errs = append(errs, fmt.Errorf("render: unknown motion_blur %q", c.Render.MotionBlur))
	}
	if c.Render.ViewingDistance <= 0 {
		errs = append(errs, fmt.Errorf("render: viewing_distance must be positive, got %v", c.Render.ViewingDistance))
	}
	if c.Render.FieldOfView <= 0 || c.Render.FieldOfView >= 180 {
		errs = append(errs, fmt.Errorf("render: field_of_view must be in (0, 180), got %v", c.Render.FieldOfView))
	}
	if c.Fog.Start < 0 || c.Fog.End < 0 {
		errs = append(errs, errors.New("fog: start and end must not be negative"))
	}
	if c.Camera.Distance <= 0 {
		errs = append(errs, fmt.Errorf("camera: distance must be positive, got %v", c.Camera.Distance))
	}
	if c.Data.SceneFile == "" {
		errs = append(errs, errors.New("data: scene_file is required"))
	}
	return errors.Join(errs...)
}
