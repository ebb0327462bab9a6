package portal3d

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrExit is returned by Game.Update when the exit action is pressed.
var ErrExit = errors.New("exit requested")

// Action is an input binding the Game reacts to.
type Action uint8

const (
	ActionForward Action = iota
	ActionBackward
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionToggleCamera
	ActionToggleDebug
	ActionExit
	actionCount
)

var actionNames = [actionCount]string{"forward", "backward", "left", "right", "up", "down", "toggle camera", "toggle debug", "exit"}

func (action Action) String() string {
	if action < actionCount {
		return actionNames[action]
	}
	return "unknown"
}

// Input is polled once per frame by the Game.
type Input interface {
	IsActive(action Action) bool  // Held this frame
	HotPress(action Action) bool  // Pressed this frame and not the previous one
	MouseDelta() (dx, dy float32) // Cursor movement since the previous frame, in pixels
}

// Controls tunes how input maps to movement and looking.
type Controls struct {
	MoveSpeed        float32 // Units per second
	MouseSensitivity float32 // Radians per pixel
}

// DefaultControls returns sensible defaults.
func DefaultControls() Controls {
	return Controls{
		MoveSpeed:        4,
		MouseSensitivity: 0.003,
	}
}

// Game ties a World, its Renderer and an Input together into a frame loop.
type Game struct {
	World    *World
	Renderer *Renderer
	Input    Input
	Controls Controls
	log      *zap.Logger
}

// NewGame returns a Game. A nil logger discards output.
func NewGame(world *World, renderer *Renderer, input Input, controls Controls, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{
		World:    world,
		Renderer: renderer,
		Input:    input,
		Controls: controls,
		log:      log,
	}
}

// Update advances the Game by dt seconds: input is applied to the camera and the player, and the camera is moved to
// follow the player. It returns ErrExit when the exit action is pressed.
func (game *Game) Update(dt float32) error {

	input := game.Input
	world := game.World
	camera := world.Camera

	if input.HotPress(ActionExit) {
		return ErrExit
	}

	if input.HotPress(ActionToggleCamera) {
		camera.ToggleMode(&world.Player)
	}

	if input.HotPress(ActionToggleDebug) {
		game.Renderer.Debug = !game.Renderer.Debug
		game.log.Debug("debug overlay toggled", zap.Bool("on", game.Renderer.Debug))
	}

	dx, dy := input.MouseDelta()
	if dx != 0 || dy != 0 {
		camera.Rotate(-dy*game.Controls.MouseSensitivity, dx*game.Controls.MouseSensitivity)
	}

	move := mgl32.Vec3{}
	forward := camera.HorizontalForward()
	right := camera.Right

	if input.IsActive(ActionForward) {
		move = move.Add(forward)
	}
	if input.IsActive(ActionBackward) {
		move = move.Sub(forward)
	}
	if input.IsActive(ActionRight) {
		move = move.Add(right)
	}
	if input.IsActive(ActionLeft) {
		move = move.Sub(right)
	}
	if input.IsActive(ActionUp) {
		move = move.Add(WorldUp)
	}
	if input.IsActive(ActionDown) {
		move = move.Sub(WorldUp)
	}

	if move.Len() > 0 {
		move = move.Normalize().Mul(game.Controls.MoveSpeed * dt)
		world.Player.Move(game.collide(move))
	}

	camera.Update(&world.Player, dt)
	game.Renderer.Advance(dt)
	world.Timer.Advance(dt)

	return nil

}

// Draw renders the current frame.
func (game *Game) Draw(aspect float32) FrameStats {
	return game.Renderer.DrawFrame(game.World, aspect)
}

// collide resolves the player's movement against the current scene. There is no collision; the movement is returned
// unchanged.
func (game *Game) collide(delta mgl32.Vec3) mgl32.Vec3 {
	return delta
}
