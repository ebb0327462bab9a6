package portal3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// PortalQuadNormal is the normal of the canonical portal quad and backing box before alignment. The quad spans
// X (width) and Y (height) and faces +Z.
var PortalQuadNormal = WorldBackward

// alignEpsilon is the squared cross-product magnitude below which two unit vectors are treated as (anti-)parallel.
const alignEpsilon = 1e-10

// AlignRotation returns a rotation that maps the reference direction onto the target direction. Both vectors are
// normalized first. The rotation axis is the cross product of the two and the angle the arccosine of their dot product.
//
// When the vectors are parallel the identity rotation is returned. When they are anti-parallel the cross product
// vanishes, so a half-turn around an arbitrary axis orthogonal to the reference is returned instead, and ok is false
// to flag the degenerate input.
func AlignRotation(reference, target mgl32.Vec3) (rotation mgl32.Quat, ok bool) {

	reference = reference.Normalize()
	target = target.Normalize()

	dot := clamp(reference.Dot(target), -1, 1)
	axis := reference.Cross(target)

	if axis.Dot(axis) < alignEpsilon {
		if dot > 0 {
			return mgl32.QuatIdent(), true
		}
		return mgl32.QuatRotate(math32.Pi, anyOrthogonal(reference)), false
	}

	return mgl32.QuatRotate(math32.Acos(dot), axis.Normalize()), true

}

// Aligner computes alignment rotations and reports degenerate inputs through its logger.
type Aligner struct {
	log *zap.Logger
}

// NewAligner returns an Aligner logging to the provided logger; a nil logger discards output.
func NewAligner(log *zap.Logger) Aligner {
	if log == nil {
		log = zap.NewNop()
	}
	return Aligner{log: log}
}

// Align is AlignRotation, logging a warning when the vectors are anti-parallel.
func (aligner Aligner) Align(reference, target mgl32.Vec3) mgl32.Quat {
	rotation, ok := AlignRotation(reference, target)
	if !ok {
		aligner.log.Warn("alignment between anti-parallel vectors, using a half-turn about an orthogonal axis",
			zap.Float32s("reference", reference[:]),
			zap.Float32s("target", target[:]),
		)
	}
	return rotation
}

// PortalQuadMatrix returns the model matrix of a portal quad centered on center, facing normal, with the given
// width and height.
func (aligner Aligner) PortalQuadMatrix(center, normal mgl32.Vec3, dimensions mgl32.Vec2) mgl32.Mat4 {
	rotation := aligner.Align(PortalQuadNormal, normal).Mat4()
	return mgl32.Translate3D(center[0], center[1], center[2]).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(dimensions[0], dimensions[1], 1))
}

// BackingBoxMatrix returns the model matrix of a unit cube stretched over the portal's rectangle and extruded depth
// units behind the portal plane (along -normal).
func (aligner Aligner) BackingBoxMatrix(center, normal mgl32.Vec3, dimensions mgl32.Vec2, depth float32) mgl32.Mat4 {
	rotation := aligner.Align(PortalQuadNormal, normal).Mat4()
	return mgl32.Translate3D(center[0], center[1], center[2]).
		Mul4(rotation).
		Mul4(mgl32.Translate3D(0, 0, -depth/2)).
		Mul4(mgl32.Scale3D(dimensions[0], dimensions[1], depth))
}
