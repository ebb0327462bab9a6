package ebitendevice

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// DrawDebugText draws text with a one-pixel black outline at the given position, one line per 16 pixels.
func DrawDebugText(screen *ebiten.Image, lines []string, x, y int, clr color.Color) {

	face := basicfont.Face7x13

	for i, line := range lines {

		lineY := y + 13 + i*16

		for oy := -1; oy < 2; oy++ {
			for ox := -1; ox < 2; ox++ {
				if ox != 0 || oy != 0 {
					text.Draw(screen, line, face, x+ox, lineY+oy, color.Black)
				}
			}
		}

		text.Draw(screen, line, face, x, lineY, clr)

	}

}
