package portal3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the global up direction (+Y) on portal3d's right-handed coordinate system.
var WorldUp = mgl32.Vec3{0, 1, 0}

// WorldRight is the global right direction (+X).
var WorldRight = mgl32.Vec3{1, 0, 0}

// WorldBackward is the global backward direction (+Z, towards the viewer); cameras look down -Z.
var WorldBackward = mgl32.Vec3{0, 0, 1}

// ToRadians is a helper function to easily convert degrees to radians (which is what the rotation-oriented functions in portal3d use).
func ToRadians(degrees float32) float32 {
	return math32.Pi * degrees / 180
}

// ToDegrees is a helper function to easily convert radians to degrees for human readability.
func ToDegrees(radians float32) float32 {
	return radians / math32.Pi * 180
}

// WrapAngle wraps the provided angle in radians to the range [0, 2π).
func WrapAngle(angle float32) float32 {
	angle = math32.Mod(angle, 2*math32.Pi)
	if angle < 0 {
		angle += 2 * math32.Pi
	}
	// Mod of a value just under a multiple of 2π can round up to exactly 2π.
	if angle >= 2*math32.Pi {
		angle = 0
	}
	return angle
}

func clamp[V float32 | int](value, min, max V) V {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}

// mulComp multiplies two vectors component-wise.
func mulComp(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// anyOrthogonal returns a unit vector orthogonal to the given (unit) vector.
func anyOrthogonal(vec mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(vec[0]) > math32.Abs(vec[2]) {
		return mgl32.Vec3{-vec[1], vec[0], 0}.Normalize()
	}
	return mgl32.Vec3{0, -vec[2], vec[1]}.Normalize()
}
