package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeSettings(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {

	path := writeSettings(t, `
[window]
width = 640
title = "gates"

[camera]
fov = 90
start_third_person = true

[render]
debug = true
clear_color = [1.0, 0.0, 0.0]
wireframe_color = "sky_blue"

[logging]
level = "debug"
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 640, settings.Window.Width)
	assert.Equal(t, 720, settings.Window.Height, "unset values keep their defaults")
	assert.Equal(t, "gates", settings.Window.Title)
	assert.Equal(t, float32(90), settings.Camera.FieldOfView)
	assert.True(t, settings.Camera.StartThirdPerson)
	assert.Equal(t, float32(0.05), settings.Camera.Near)
	assert.True(t, settings.Render.Debug)
	assert.Equal(t, []float32{1, 0, 0}, settings.Render.ClearColor)
	assert.Equal(t, "sky_blue", settings.Render.WireframeColor)
	assert.Equal(t, "yellow", settings.Render.DebugColor)
	assert.Equal(t, "debug", settings.Logging.Level)
	assert.Equal(t, "console", settings.Logging.Format)
	assert.Equal(t, "gates.yaml", settings.Scene.Path)

}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadRejectsInvalid(t *testing.T) {

	cases := map[string]string{
		"syntax":      "[window\nwidth = 1",
		"size":        "[window]\nwidth = 0",
		"clip":        "[camera]\nnear = 10.0\nfar = 1.0",
		"fov":         "[camera]\nfov = 180.0",
		"clear color": "[render]\nclear_color = [1.0, 2.0]",
		"debug color": "[render]\ndebug_color = \"chartreuse\"",
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeSettings(t, contents))
			assert.Error(t, err)
		})
	}

}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestNewLogger(t *testing.T) {

	logger, err := NewLogger(LoggingSettings{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(LoggingSettings{Level: "bogus"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

}
