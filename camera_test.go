package portal3d

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func assertOrthonormal(t *testing.T, camera *Camera) {
	t.Helper()
	assert.InDelta(t, 1, camera.Forward.Len(), 1e-5)
	assert.InDelta(t, 1, camera.Right.Len(), 1e-5)
	assert.InDelta(t, 1, camera.Up.Len(), 1e-5)
	assert.InDelta(t, 0, camera.Forward.Dot(camera.Right), 1e-5)
	assert.InDelta(t, 0, camera.Forward.Dot(camera.Up), 1e-5)
	assert.InDelta(t, 0, camera.Right.Dot(camera.Up), 1e-5)
	// Right-handed: right x up = -forward.
	assertVecInDelta(t, camera.Forward.Mul(-1), camera.Right.Cross(camera.Up), 1e-5)
}

func TestCameraDefaultsLookDownNegativeZ(t *testing.T) {

	camera := NewCamera(nil)

	assertVecInDelta(t, mgl32.Vec3{0, 0, -1}, camera.Forward, 1e-6)
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, camera.Right, 1e-6)
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, camera.Up, 1e-6)
	assert.Equal(t, FirstPerson, camera.Mode)

}

func TestCameraRotateKeepsBasisOrthonormal(t *testing.T) {

	camera := NewCamera(nil)
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		camera.Rotate(r.Float32()-0.5, r.Float32()*2-1)
		assertOrthonormal(t, camera)
		assert.LessOrEqual(t, math32.Abs(camera.Pitch), MaxPitch)
		assert.GreaterOrEqual(t, camera.Yaw, float32(0))
		assert.Less(t, camera.Yaw, 2*math32.Pi)
	}

}

func TestCameraPitchClamp(t *testing.T) {

	camera := NewCamera(nil)

	camera.Rotate(10, 0)
	assert.Equal(t, MaxPitch, camera.Pitch)
	assertOrthonormal(t, camera)

	camera.Rotate(-20, 0)
	assert.Equal(t, -MaxPitch, camera.Pitch)
	assertOrthonormal(t, camera)

}

func TestCameraYawWraps(t *testing.T) {

	camera := NewCamera(nil)
	camera.Yaw = 0

	camera.Rotate(0, -math32.Pi/2)
	assert.InDelta(t, 3*math32.Pi/2, camera.Yaw, 1e-5)

	camera.Rotate(0, math32.Pi)
	assert.InDelta(t, math32.Pi/2, camera.Yaw, 1e-5)

}

func TestCameraLookAt(t *testing.T) {

	camera := NewCamera(nil)

	assert.True(t, camera.LookAt(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 2, 3}))
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, camera.Forward, 1e-5)
	assertVecInDelta(t, mgl32.Vec3{1, 2, 3}, camera.Origin, 0)
	assertOrthonormal(t, camera)

}

func TestCameraLookAtStraightUp(t *testing.T) {

	core, logs := observer.New(zapcore.WarnLevel)
	camera := NewCamera(zap.New(core))

	assert.False(t, camera.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 10, 0}))
	assertVecInDelta(t, mgl32.Vec3{0, 0, 1}, camera.Forward, 1e-5)
	assertOrthonormal(t, camera)
	assert.Equal(t, 1, logs.Len())

	// 4° off vertical is still too close.
	assert.False(t, camera.LookAt(mgl32.Vec3{}, mgl32.Vec3{math32.Sin(ToRadians(4)), -math32.Cos(ToRadians(4)), 0}))
	assert.Equal(t, 2, logs.Len())

	// Looking at itself.
	assert.False(t, camera.LookAt(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}))
	assert.Equal(t, 3, logs.Len())

}

func TestCameraViewMatrix(t *testing.T) {

	camera := NewCamera(nil)
	origin := mgl32.Vec3{1, 2, 3}
	camera.LookAt(origin, origin.Add(mgl32.Vec3{1, 0, -1}))

	view := camera.ViewMatrix()

	assertVecInDelta(t, mgl32.Vec3{}, mgl32.TransformCoordinate(origin, view), 1e-5)
	assertVecInDelta(t, mgl32.Vec3{0, 0, -1}, mgl32.TransformCoordinate(origin.Add(camera.Forward), view), 1e-5)
	assertVecInDelta(t, mgl32.Vec3{1, 0, 0}, mgl32.TransformCoordinate(origin.Add(camera.Right), view), 1e-5)
	assertVecInDelta(t, mgl32.Vec3{0, 1, 0}, mgl32.TransformCoordinate(origin.Add(camera.Up), view), 1e-5)

}

func TestCameraHorizontalForwardIgnoresPitch(t *testing.T) {

	camera := NewCamera(nil)
	camera.Rotate(ToRadians(60), 0)

	forward := camera.HorizontalForward()
	assert.Equal(t, float32(0), forward[1])
	assert.InDelta(t, 1, forward.Len(), 1e-6)
	assertVecInDelta(t, mgl32.Vec3{0, 0, -1}, forward, 1e-5)

}

func TestCameraThirdPersonZoom(t *testing.T) {

	camera := NewCamera(nil)
	player := NewPlayer(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 1.7, 0.5})

	camera.ToggleMode(&player)
	assert.Equal(t, ThirdPerson, camera.Mode)
	assert.Equal(t, camera.ThirdPersonPitch, camera.Pitch)
	assert.InDelta(t, 0, camera.CurrentOrbitRadius(), 1e-6)

	camera.Update(&player, zoomDuration/2)
	halfway := camera.CurrentOrbitRadius()
	assert.Greater(t, halfway, float32(0))
	assert.Less(t, halfway, camera.OrbitRadius)

	camera.Update(&player, zoomDuration)
	assert.InDelta(t, camera.OrbitRadius, camera.CurrentOrbitRadius(), 1e-5)
	assert.InDelta(t, camera.OrbitRadius, camera.Origin.Sub(player.Center()).Len(), 1e-4)

	// The camera sits behind the player along its forward direction.
	assert.Greater(t, camera.Origin[2], player.Center()[2])

	camera.ToggleMode(&player)
	assert.Equal(t, FirstPerson, camera.Mode)
	assert.Equal(t, float32(0), camera.Pitch)
	assertVecInDelta(t, player.ViewPosition(), camera.Origin, 0)

}

func TestCameraProjection(t *testing.T) {

	camera := NewCamera(nil)
	projection := camera.Projection(16.0 / 9.0)

	// A point on the near plane straight ahead maps to the center of the near clip plane.
	clip := projection.Mul4x1(mgl32.Vec4{0, 0, -camera.Near, 1})
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-5)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-5)
	assert.InDelta(t, -1, clip[2]/clip[3], 1e-4)

}

func TestPlayerViewPosition(t *testing.T) {

	player := NewPlayer(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 1.7, 0.5})

	assertVecInDelta(t, mgl32.Vec3{0, 1.7, 0.25}, player.ViewPosition(), 1e-6)
	assertVecInDelta(t, mgl32.Vec3{0, 0.85, 0}, player.Center(), 1e-6)

	player.Move(mgl32.Vec3{1, 0, -2})
	assertVecInDelta(t, mgl32.Vec3{1, 1.7, -1.75}, player.ViewPosition(), 1e-6)

}
