package portal3d

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedRejectsPastCapacity(t *testing.T) {

	b := NewBounded[int]("thing", 3)

	for i := 0; i < 3; i++ {
		index, err := b.Push(i * 10)
		require.NoError(t, err)
		assert.Equal(t, i, index)
	}

	index, err := b.Push(30)
	assert.Equal(t, -1, index)
	assert.ErrorIs(t, err, ErrCapacity)

	var capacityErr *CapacityError
	require.True(t, errors.As(err, &capacityErr))
	assert.Equal(t, "thing", capacityErr.Kind)
	assert.Equal(t, 3, capacityErr.Capacity)

	// Nothing was dropped or overwritten.
	assert.Equal(t, []int{0, 10, 20}, b.Slice())
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 3, b.Cap())

}

func TestBoundedAt(t *testing.T) {

	b := NewBounded[string]("name", 2)
	b.Push("a")

	require.NotNil(t, b.At(0))
	assert.Equal(t, "a", *b.At(0))
	assert.Nil(t, b.At(1))
	assert.Nil(t, b.At(-1))

	*b.At(0) = "b"
	assert.Equal(t, []string{"b"}, b.Slice())

}

func TestBoundingBox(t *testing.T) {

	box := NewBoundingBoxFromPoints(mgl32.Vec3{1, -1, 0}, mgl32.Vec3{-1, 2, 4}, mgl32.Vec3{0, 0, 1})
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, box.Diagonal)
	assert.Equal(t, mgl32.Vec3{1, 2, 4}, box.Max())
	assert.Equal(t, mgl32.Vec3{0, 0.5, 2}, box.Center())

	assert.True(t, box.Contains(mgl32.Vec3{0, 0, 0}))
	assert.True(t, box.Contains(box.Max()))
	assert.False(t, box.Contains(mgl32.Vec3{0, 0, 5}))

	moved := box.Transformed(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{2, 1, 1})
	assert.Equal(t, mgl32.Vec3{8, -1, 0}, moved.Min)
	assert.Equal(t, mgl32.Vec3{4, 3, 4}, moved.Diagonal)

	union := box.Union(moved)
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, union.Min)
	assert.Equal(t, mgl32.Vec3{12, 2, 4}, union.Max())

	assert.Equal(t, BoundingBox{}, NewBoundingBoxFromPoints())

}

func TestMeshShapes(t *testing.T) {

	cube := NewCubeMeshData()
	require.NoError(t, cube.Validate())
	assert.Equal(t, 12, cube.TriangleCount())
	assert.Equal(t, -1, cube.CubeFace)

	quad := NewQuadMeshData()
	require.NoError(t, quad.Validate())
	assert.Equal(t, 2, quad.TriangleCount())
	for _, n := range quad.Normals {
		assert.Equal(t, PortalQuadNormal, n)
	}
	assert.Equal(t, float32(0), quad.Bounds().Diagonal[2])

	for i, face := range NewSkyboxMeshData() {
		require.NoError(t, face.Validate())
		assert.Equal(t, i, face.CubeFace)
		// Faces point inward.
		assert.Less(t, face.Normals[0].Dot(face.Positions[0]), float32(0))
	}

}

func TestMeshValidate(t *testing.T) {

	mesh := NewMeshData("broken")
	mesh.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	mesh.Indices = []uint32{0, 1, 3}
	assert.Error(t, mesh.Validate())

	mesh.Indices = []uint32{0, 1}
	assert.Error(t, mesh.Validate())

	mesh.Indices = []uint32{0, 1, 2}
	mesh.Normals = []mgl32.Vec3{{0, 0, 1}}
	assert.Error(t, mesh.Validate())

	mesh.Normals = nil
	assert.NoError(t, mesh.Validate())

}
