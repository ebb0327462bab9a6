package ebitendevice

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/portal3d"
)

var _ portal3d.Input = (*Input)(nil)

// Input implements portal3d.Input over ebiten's keyboard and mouse. Call Update once per tick before the game polls it.
type Input struct {
	Bindings map[portal3d.Action][]ebiten.Key

	cursorX, cursorY int
	dx, dy           float32
	tracking         bool
}

// NewInput returns an Input with the default bindings: WASD to move, Space and Shift to rise and sink, Tab to switch
// camera mode, F1 for the debug overlay and Escape to quit.
func NewInput() *Input {
	return &Input{
		Bindings: map[portal3d.Action][]ebiten.Key{
			portal3d.ActionForward:      {ebiten.KeyW, ebiten.KeyUp},
			portal3d.ActionBackward:     {ebiten.KeyS, ebiten.KeyDown},
			portal3d.ActionLeft:         {ebiten.KeyA, ebiten.KeyLeft},
			portal3d.ActionRight:        {ebiten.KeyD, ebiten.KeyRight},
			portal3d.ActionUp:           {ebiten.KeySpace},
			portal3d.ActionDown:         {ebiten.KeyShiftLeft},
			portal3d.ActionToggleCamera: {ebiten.KeyTab},
			portal3d.ActionToggleDebug:  {ebiten.KeyF1},
			portal3d.ActionExit:         {ebiten.KeyEscape},
		},
	}
}

// Update samples the cursor movement for this tick.
func (input *Input) Update() {
	x, y := ebiten.CursorPosition()
	if input.tracking {
		input.dx = float32(x - input.cursorX)
		input.dy = float32(y - input.cursorY)
	}
	input.cursorX, input.cursorY = x, y
	input.tracking = true
}

func (input *Input) IsActive(action portal3d.Action) bool {
	for _, key := range input.Bindings[action] {
		if ebiten.IsKeyPressed(key) {
			return true
		}
	}
	return false
}

func (input *Input) HotPress(action portal3d.Action) bool {
	for _, key := range input.Bindings[action] {
		if inpututil.IsKeyJustPressed(key) {
			return true
		}
	}
	return false
}

func (input *Input) MouseDelta() (dx, dy float32) {
	return input.dx, input.dy
}
