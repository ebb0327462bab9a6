package portal3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FacingThreshold is the minimum dot product between the portal normal and the normalized direction from the portal
// center to the eye for the portal to count as facing the viewer. Zero means "anywhere in front of the plane".
const FacingThreshold float32 = 0

// BackingBoxDepth is how far the backing box extends behind a portal's plane.
const BackingBoxDepth float32 = 1

// FocusState is the per-frame state of a Portal relative to the viewer.
type FocusState uint8

const (
	Unfocused     FocusState = iota // Not drawn this frame
	Focused                         // Viewer is in front of the portal and within its rectangle; the quad is drawn
	JustTraversed                   // Viewer crossed the plane since last frame; the backing box is drawn
)

func (state FocusState) String() string {
	switch state {
	case Focused:
		return "focused"
	case JustTraversed:
		return "just traversed"
	}
	return "unfocused"
}

// Portal is a one-way window from its home Scene into a destination Scene. A two-way link is two Portals.
type Portal struct {
	Home        SceneID
	Destination SceneID
	Position    mgl32.Vec3 // Center of the portal rectangle
	Normal      mgl32.Vec3 // Unit normal pointing out of the portal's front face
	Dimensions  mgl32.Vec2 // Width and height
	Mask        StencilMask

	// Precomputed once when the Portal is added; portals don't move.
	QuadMatrix    mgl32.Mat4
	BackingMatrix mgl32.Mat4
	Right, Up     mgl32.Vec3 // In-plane axes of the portal rectangle (width along Right, height along Up)

	// InFocus is true while the viewer is in front of the portal and inside its rectangle. It carries over between
	// frames to detect traversal.
	InFocus bool
}

// PortalDesc describes a Portal to add to a Scene.
type PortalDesc struct {
	Destination SceneID
	Position    mgl32.Vec3
	Normal      mgl32.Vec3
	Dimensions  mgl32.Vec2
	Mask        StencilMask
}

// FocusResult is the outcome of tracking a Portal for one frame.
type FocusResult struct {
	State    FocusState
	Facing   bool
	InBounds bool
}

// Entered returns if the viewer crossed through the portal this frame.
func (result FocusResult) Entered() bool {
	return result.State == JustTraversed
}

// Track updates the Portal's focus for the viewer's eye position and returns this frame's state.
//
// The portal is facing the viewer when the eye lies in front of its plane (within FacingThreshold), and in bounds when
// the eye, projected onto the plane, falls inside the rectangle. InFocus requires both. A portal that was in focus last
// frame and no longer faces the viewer was crossed: the result is JustTraversed, and InFocus is false afterwards.
func (portal *Portal) Track(eye mgl32.Vec3) FocusResult {

	toEye := eye.Sub(portal.Position)

	result := FocusResult{}

	distance := toEye.Len()
	if distance > 0 {
		result.Facing = toEye.Mul(1/distance).Dot(portal.Normal) > FacingThreshold
	}

	inPlane := toEye.Sub(portal.Normal.Mul(toEye.Dot(portal.Normal)))
	result.InBounds = math32.Abs(inPlane.Dot(portal.Right)) <= portal.Dimensions[0]/2 &&
		math32.Abs(inPlane.Dot(portal.Up)) <= portal.Dimensions[1]/2

	wasInFocus := portal.InFocus
	portal.InFocus = result.Facing && result.InBounds

	switch {
	case wasInFocus && !result.Facing:
		result.State = JustTraversed
	case portal.InFocus:
		result.State = Focused
	default:
		result.State = Unfocused
	}

	return result

}
