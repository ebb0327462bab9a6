package portal3d

import "github.com/go-gl/mathgl/mgl32"

// eyeFactor places the viewing position inside the player's box: centered on X, at the top on Y and at the far
// side on Z.
var eyeFactor = mgl32.Vec3{0.5, 1, 1}

// Player is the viewer's body. It has no position of its own; everything derives from its bounding box.
type Player struct {
	Bounds BoundingBox
}

// NewPlayer returns a Player whose box has the given size and is centered horizontally on feet, resting on it.
func NewPlayer(feet, size mgl32.Vec3) Player {
	return Player{
		Bounds: BoundingBox{
			Min:      feet.Sub(mgl32.Vec3{size[0] / 2, 0, size[2] / 2}),
			Diagonal: size,
		},
	}
}

// ViewPosition returns the eye position: min + diagonal * {0.5, 1, 1}.
func (player *Player) ViewPosition() mgl32.Vec3 {
	return player.Bounds.Min.Add(mulComp(player.Bounds.Diagonal, eyeFactor))
}

// Center returns the center of the player's box, the third-person orbit focus.
func (player *Player) Center() mgl32.Vec3 {
	return player.Bounds.Center()
}

// Move translates the player's box.
func (player *Player) Move(delta mgl32.Vec3) {
	player.Bounds.Min = player.Bounds.Min.Add(delta)
}
