package portal3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshData holds the CPU-side vertex data of a mesh, as handed to Resources.NewGeometry. Vertices are indexed;
// every three Indices form a triangle.
type MeshData struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // Optional; same length as Positions when present
	UVs       []mgl32.Vec2 // Optional; same length as Positions when present
	Indices   []uint32
	// CubeFace is the cube-map face (0-5, in +X, -X, +Y, -Y, +Z, -Z order) this mesh samples when drawn as part of a
	// skybox; -1 for ordinary meshes.
	CubeFace int
}

// NewMeshData returns an empty MeshData with the given name.
func NewMeshData(name string) *MeshData {
	return &MeshData{Name: name, CubeFace: -1}
}

// Bounds returns the bounding box of the mesh's positions.
func (mesh *MeshData) Bounds() BoundingBox {
	return NewBoundingBoxFromPoints(mesh.Positions...)
}

// TriangleCount returns the number of triangles in the mesh.
func (mesh *MeshData) TriangleCount() int {
	return len(mesh.Indices) / 3
}

// Validate checks that the indices reference existing vertices and that optional attributes line up with positions.
func (mesh *MeshData) Validate() error {
	if len(mesh.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", mesh.Name, len(mesh.Indices))
	}
	for _, i := range mesh.Indices {
		if int(i) >= len(mesh.Positions) {
			return fmt.Errorf("mesh %q: index %d out of range (%d vertices)", mesh.Name, i, len(mesh.Positions))
		}
	}
	if len(mesh.Normals) > 0 && len(mesh.Normals) != len(mesh.Positions) {
		return fmt.Errorf("mesh %q: %d normals for %d positions", mesh.Name, len(mesh.Normals), len(mesh.Positions))
	}
	if len(mesh.UVs) > 0 && len(mesh.UVs) != len(mesh.Positions) {
		return fmt.Errorf("mesh %q: %d uvs for %d positions", mesh.Name, len(mesh.UVs), len(mesh.Positions))
	}
	return nil
}

// addQuad appends a quad from four corners (counter-clockwise when viewed from the front) with a shared normal.
func (mesh *MeshData) addQuad(normal mgl32.Vec3, corners ...mgl32.Vec3) {
	start := uint32(len(mesh.Positions))
	uvs := []mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for i, c := range corners {
		mesh.Positions = append(mesh.Positions, c)
		mesh.Normals = append(mesh.Normals, normal)
		mesh.UVs = append(mesh.UVs, uvs[i])
	}
	mesh.Indices = append(mesh.Indices, start, start+1, start+2, start, start+2, start+3)
}

// cubeFaces lists the corners of each face of a unit cube centered on the origin, in cube-map face order.
var cubeFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
}

// NewCubeMeshData returns a unit cube (1x1x1) centered on the origin. The portal backing box is this cube.
func NewCubeMeshData() *MeshData {
	mesh := NewMeshData("cube")
	for _, face := range cubeFaces {
		mesh.addQuad(face.normal, face.corners[:]...)
	}
	return mesh
}

// NewQuadMeshData returns a unit quad (1x1) centered on the origin facing +Z, the canonical portal quad.
func NewQuadMeshData() *MeshData {
	mesh := NewMeshData("quad")
	mesh.addQuad(PortalQuadNormal,
		mgl32.Vec3{-0.5, -0.5, 0},
		mgl32.Vec3{0.5, -0.5, 0},
		mgl32.Vec3{0.5, 0.5, 0},
		mgl32.Vec3{-0.5, 0.5, 0},
	)
	return mesh
}

// NewPlaneMeshData returns a unit plane (1x1) centered on the origin facing +Y, for floors.
func NewPlaneMeshData() *MeshData {
	mesh := NewMeshData("plane")
	mesh.addQuad(WorldUp,
		mgl32.Vec3{-0.5, 0, 0.5},
		mgl32.Vec3{0.5, 0, 0.5},
		mgl32.Vec3{0.5, 0, -0.5},
		mgl32.Vec3{-0.5, 0, -0.5},
	)
	return mesh
}

// NewSkyboxMeshData returns the six inward-facing faces of a unit cube as separate meshes, one per cube-map face.
func NewSkyboxMeshData() [6]*MeshData {
	var faces [6]*MeshData
	for i, face := range cubeFaces {
		mesh := NewMeshData(fmt.Sprintf("skybox_%d", i))
		mesh.CubeFace = i
		// Reversed winding and normal so the faces are seen from inside.
		c := face.corners
		mesh.addQuad(face.normal.Mul(-1), c[3], c[2], c[1], c[0])
		faces[i] = mesh
	}
	return faces
}
