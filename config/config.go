// Package config loads the settings of a portal3d program from TOML.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/solarlune/portal3d/colors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Settings struct {
	Window  WindowSettings  `toml:"window"`
	Camera  CameraSettings  `toml:"camera"`
	Render  RenderSettings  `toml:"render"`
	Logging LoggingSettings `toml:"logging"`
	Scene   SceneSettings   `toml:"scene"`
}

type WindowSettings struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	Fullscreen bool   `toml:"fullscreen"`
}

type CameraSettings struct {
	FieldOfView      float32 `toml:"fov"` // vertical, degrees
	Near             float32 `toml:"near"`
	Far              float32 `toml:"far"`
	OrbitRadius      float32 `toml:"orbit_radius"`
	ThirdPersonPitch float32 `toml:"third_person_pitch"` // degrees
	MouseSensitivity float32 `toml:"mouse_sensitivity"`  // radians per pixel
	MoveSpeed        float32 `toml:"move_speed"`         // units per second
	StartThirdPerson bool    `toml:"start_third_person"`
}

type RenderSettings struct {
	Debug          bool      `toml:"debug"`
	RotationPeriod float32   `toml:"rotation_period"` // seconds per turn of rotating entities
	ClearColor     []float32 `toml:"clear_color"`     // RGBA, for scenes that don't set their own
	WireframeColor string    `toml:"wireframe_color"` // a name from the colors package
	DebugColor     string    `toml:"debug_color"`     // portal outlines
}

type LoggingSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type SceneSettings struct {
	Path string `toml:"path"` // relative to the settings file
}

// Load reads the settings file at path over the defaults. A missing file is reported as an error wrapping
// os.ErrNotExist so callers can fall back to Default.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	settings := Default()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return settings, nil
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	return &Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "portal3d",
		},
		Camera: CameraSettings{
			FieldOfView:      75,
			Near:             0.05,
			Far:              200,
			OrbitRadius:      4,
			ThirdPersonPitch: -20,
			MouseSensitivity: 0.003,
			MoveSpeed:        4,
		},
		Render: RenderSettings{
			RotationPeriod: 6,
			ClearColor:     []float32{0.05, 0.05, 0.08, 1},
			WireframeColor: "white",
			DebugColor:     "yellow",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
		Scene: SceneSettings{
			Path: "gates.yaml",
		},
	}
}

// Validate reports settings that can't be used.
func (settings *Settings) Validate() error {
	if settings.Window.Width <= 0 || settings.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", settings.Window.Width, settings.Window.Height)
	}
	if settings.Camera.Near <= 0 || settings.Camera.Far <= settings.Camera.Near {
		return fmt.Errorf("camera clip range %g..%g is invalid", settings.Camera.Near, settings.Camera.Far)
	}
	if settings.Camera.FieldOfView <= 0 || settings.Camera.FieldOfView >= 180 {
		return fmt.Errorf("camera fov %g must be between 0 and 180", settings.Camera.FieldOfView)
	}
	if n := len(settings.Render.ClearColor); n != 0 && n != 3 && n != 4 {
		return fmt.Errorf("render clear_color needs 3 or 4 values, got %d", n)
	}
	for key, name := range map[string]string{"wireframe_color": settings.Render.WireframeColor, "debug_color": settings.Render.DebugColor} {
		if _, ok := colors.ByName(name); name != "" && !ok {
			return fmt.Errorf("render %s %q is not a known color", key, name)
		}
	}
	return nil
}

// NewLogger builds a zap logger from the logging settings: JSON production output, or a colored console for
// development. An unknown level falls back to info.
func NewLogger(settings LoggingSettings) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(settings.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if settings.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
