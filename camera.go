package portal3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// CameraMode selects how the Camera follows the player.
type CameraMode uint8

const (
	FirstPerson CameraMode = iota // The camera sits at the player's eye
	ThirdPerson                   // The camera orbits the player's center
)

func (mode CameraMode) String() string {
	if mode == ThirdPerson {
		return "third person"
	}
	return "first person"
}

// MaxPitch is the largest pitch magnitude the Camera allows, in radians (85°).
var MaxPitch = ToRadians(85)

// lookAtDegenerateCos is the cosine of 5°; a look-at direction closer than that to straight up or down has no usable
// right vector.
var lookAtDegenerateCos = math32.Cos(ToRadians(5))

// zoomDuration is how long (in seconds) the third-person orbit radius takes to ease out after switching modes.
const zoomDuration float32 = 0.35

// Camera represents where the scene is viewed from. Forward, Up and Right form a right-handed orthonormal basis that
// is always re-derived from Pitch and Yaw; it is never integrated directly.
type Camera struct {
	Origin  mgl32.Vec3
	Forward mgl32.Vec3
	Up      mgl32.Vec3
	Right   mgl32.Vec3

	Pitch float32 // Radians, clamped to ±MaxPitch
	Yaw   float32 // Radians, wrapped to [0, 2π)

	Mode             CameraMode
	OrbitRadius      float32 // Third-person distance from the orbit focus
	ThirdPersonPitch float32 // Pitch applied when switching into third person

	FieldOfView float32 // Vertical field of view in degrees
	Near, Far   float32

	zoom       *gween.Tween
	zoomRadius float32
	log        *zap.Logger
}

// NewCamera creates a first-person Camera at the origin looking down -Z.
func NewCamera(log *zap.Logger) *Camera {

	if log == nil {
		log = zap.NewNop()
	}

	camera := &Camera{
		Yaw:              3 * math32.Pi / 2,
		OrbitRadius:      4,
		ThirdPersonPitch: ToRadians(-20),
		FieldOfView:      75,
		Near:             0.05,
		Far:              200,
		log:              log,
	}

	camera.updateBasis()

	return camera

}

// LookAt places the Camera at origin facing focus. If the direction to focus is within 5° of straight up or down
// the basis would collapse, so a warning is logged, the Camera faces backward (+Z) instead, and LookAt returns false.
func (camera *Camera) LookAt(origin, focus mgl32.Vec3) bool {

	camera.Origin = origin

	forward := focus.Sub(origin)
	ok := forward.Len() > 1e-6

	if ok {
		forward = forward.Normalize()
		ok = math32.Abs(forward.Dot(WorldUp)) < lookAtDegenerateCos
	}

	if !ok {
		camera.log.Warn("camera look-at direction is parallel to world up, facing backward instead",
			zap.Float32s("origin", origin[:]),
			zap.Float32s("focus", focus[:]),
		)
		forward = WorldBackward
	}

	camera.Pitch = clamp(math32.Asin(clamp(forward[1], -1, 1)), -MaxPitch, MaxPitch)
	camera.Yaw = WrapAngle(math32.Atan2(forward[2], forward[0]))
	camera.updateBasis()

	return ok

}

// Rotate turns the Camera by the given pitch and yaw offsets in radians. Pitch is clamped to ±85° and yaw wraps at 2π.
func (camera *Camera) Rotate(pitchOffset, yawOffset float32) {
	camera.Pitch = clamp(camera.Pitch+pitchOffset, -MaxPitch, MaxPitch)
	camera.Yaw = WrapAngle(camera.Yaw + yawOffset)
	camera.updateBasis()
}

// updateBasis derives forward from the spherical angles, then right and up by cross products. Right is computed
// against world up first so the camera can't roll.
func (camera *Camera) updateBasis() {

	cp, sp := math32.Cos(camera.Pitch), math32.Sin(camera.Pitch)
	cy, sy := math32.Cos(camera.Yaw), math32.Sin(camera.Yaw)

	camera.Forward = mgl32.Vec3{cp * cy, sp, cp * sy}.Normalize()
	camera.Right = camera.Forward.Cross(WorldUp).Normalize()
	camera.Up = camera.Right.Cross(camera.Forward).Normalize()

}

// HorizontalForward returns the forward direction flattened onto the ground plane.
func (camera *Camera) HorizontalForward() mgl32.Vec3 {
	return mgl32.Vec3{math32.Cos(camera.Yaw), 0, math32.Sin(camera.Yaw)}
}

// ViewMatrix returns the Camera's view matrix: the basis transposed into rows (right, up, -forward) times a translation
// by the negative origin. In view space the Camera looks down -Z.
func (camera *Camera) ViewMatrix() mgl32.Mat4 {

	rotation := mgl32.Mat4FromRows(
		camera.Right.Vec4(0),
		camera.Up.Vec4(0),
		camera.Forward.Mul(-1).Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)

	return rotation.Mul4(mgl32.Translate3D(-camera.Origin[0], -camera.Origin[1], -camera.Origin[2]))

}

// Projection returns the Camera's perspective projection for the given aspect ratio (width / height).
func (camera *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(camera.FieldOfView), aspect, camera.Near, camera.Far)
}

// UpdateFirstPerson moves the Camera to the eye position.
func (camera *Camera) UpdateFirstPerson(eye mgl32.Vec3) {
	camera.updateBasis()
	camera.Origin = eye
}

// UpdateThirdPerson places the Camera on its orbit around focus, behind it along the current forward direction.
// dt advances the zoom-out that follows a mode switch.
func (camera *Camera) UpdateThirdPerson(focus mgl32.Vec3, dt float32) {

	camera.updateBasis()

	radius := camera.OrbitRadius
	if camera.zoom != nil {
		var finished bool
		radius, finished = camera.zoom.Update(dt)
		if finished {
			camera.zoom = nil
		}
	}
	camera.zoomRadius = radius

	camera.Origin = focus.Sub(camera.Forward.Mul(radius))

}

// CurrentOrbitRadius returns the orbit radius used by the last third-person update.
func (camera *Camera) CurrentOrbitRadius() float32 {
	return camera.zoomRadius
}

// ToggleMode switches between first and third person. The horizontal facing is kept so the view doesn't snap: first
// person looks level along it from the player's eye, third person frames the player's center from behind and eases
// the orbit radius out from zero.
func (camera *Camera) ToggleMode(player *Player) {

	if camera.Mode == FirstPerson {
		camera.Mode = ThirdPerson
		camera.Pitch = clamp(camera.ThirdPersonPitch, -MaxPitch, MaxPitch)
		camera.zoom = gween.New(0, camera.OrbitRadius, zoomDuration, ease.OutCubic)
		camera.UpdateThirdPerson(player.Center(), 0)
	} else {
		camera.Mode = FirstPerson
		camera.Pitch = 0
		camera.zoom = nil
		camera.UpdateFirstPerson(player.ViewPosition())
	}

	camera.log.Debug("camera mode switched", zap.Stringer("mode", camera.Mode))

}

// Update follows the player according to the current mode.
func (camera *Camera) Update(player *Player, dt float32) {
	if camera.Mode == ThirdPerson {
		camera.UpdateThirdPerson(player.Center(), dt)
	} else {
		camera.UpdateFirstPerson(player.ViewPosition())
	}
}
