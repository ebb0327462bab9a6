// Package colors holds the named palette used for scene clear colors, wireframes and the debug overlay, and looks
// colors up by the names settings files use.
package colors

import (
	"strings"

	"github.com/solarlune/portal3d"
)

// Transparent is fully transparent black.
// Transparent doubles as "no color" wherever a base color is optional.
func Transparent() portal3d.Color {
	return portal3d.NewColor(0, 0, 0, 0)
}

// White is the default tint; multiplying by it leaves a color unchanged.
func White() portal3d.Color {
	return portal3d.NewColor(1, 1, 1, 1)
}

// Black is opaque black.
func Black() portal3d.Color {
	return portal3d.NewColor(0, 0, 0, 1)
}

// Gray is 50% gray.
func Gray() portal3d.Color {
	return portal3d.NewColor(0.5, 0.5, 0.5, 1)
}

// DarkestGray is the near-black used behind the gate hub.
func DarkestGray() portal3d.Color {
	return portal3d.NewColor(0.08, 0.09, 0.1, 1)
}

// Red is pure red.
func Red() portal3d.Color {
	return portal3d.NewColor(1, 0, 0, 1)
}

// Orange is full red with half green.
func Orange() portal3d.Color {
	return portal3d.NewColor(1, 0.5, 0, 1)
}

// Yellow is full red and green; the debug overlay draws in it by default.
func Yellow() portal3d.Color {
	return portal3d.NewColor(1, 1, 0, 1)
}

// Green is pure green.
func Green() portal3d.Color {
	return portal3d.NewColor(0, 1, 0, 1)
}

// SkyBlue is full blue with half green.
func SkyBlue() portal3d.Color {
	return portal3d.NewColor(0, 0.5, 1, 1)
}

// Blue is pure blue.
func Blue() portal3d.Color {
	return portal3d.NewColor(0, 0, 1, 1)
}

// Purple is full blue with half red.
func Purple() portal3d.Color {
	return portal3d.NewColor(0.5, 0, 1, 1)
}

var byName = map[string]func() portal3d.Color{
	"transparent":  Transparent,
	"white":        White,
	"black":        Black,
	"gray":         Gray,
	"darkest_gray": DarkestGray,
	"red":          Red,
	"orange":       Orange,
	"yellow":       Yellow,
	"green":        Green,
	"sky_blue":     SkyBlue,
	"blue":         Blue,
	"purple":       Purple,
}

// ByName returns the named color ("sky_blue", "DarkestGray" and "darkest-gray" all work). The boolean is false
// for unknown names, in which case Transparent is returned.
func ByName(name string) (portal3d.Color, bool) {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "_")
	if fn, ok := byName[name]; ok {
		return fn(), true
	}
	// CamelCase names collapse to the snake_case keys.
	for key, fn := range byName {
		if strings.ReplaceAll(key, "_", "") == name {
			return fn(), true
		}
	}
	return Transparent(), false
}
