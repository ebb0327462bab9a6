package portal3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BoundingBox is an axis-aligned box stored as its minimum corner and its diagonal (max - min).
type BoundingBox struct {
	Min      mgl32.Vec3
	Diagonal mgl32.Vec3
}

// NewBoundingBoxFromPoints returns the smallest BoundingBox containing every point given. With no points, the zero box
// is returned.
func NewBoundingBoxFromPoints(points ...mgl32.Vec3) BoundingBox {

	if len(points) == 0 {
		return BoundingBox{}
	}

	min := mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	max := mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}

	for _, p := range points {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
	}

	return BoundingBox{Min: min, Diagonal: max.Sub(min)}

}

// Max returns the box's maximum corner.
func (box BoundingBox) Max() mgl32.Vec3 {
	return box.Min.Add(box.Diagonal)
}

// Center returns the center point inbetween the two corners of the box.
func (box BoundingBox) Center() mgl32.Vec3 {
	return box.Min.Add(box.Diagonal.Mul(0.5))
}

// Union returns a box containing both boxes.
func (box BoundingBox) Union(other BoundingBox) BoundingBox {
	return NewBoundingBoxFromPoints(box.Min, box.Max(), other.Min, other.Max())
}

// Transformed returns the box scaled component-wise by scale and then moved by offset: min*scale + offset, diagonal*scale.
func (box BoundingBox) Transformed(offset, scale mgl32.Vec3) BoundingBox {
	return BoundingBox{
		Min:      mulComp(box.Min, scale).Add(offset),
		Diagonal: mulComp(box.Diagonal, scale),
	}
}

// Contains returns if the point lies inside the box (inclusive).
func (box BoundingBox) Contains(point mgl32.Vec3) bool {
	max := box.Max()
	for axis := 0; axis < 3; axis++ {
		if point[axis] < box.Min[axis] || point[axis] > max[axis] {
			return false
		}
	}
	return true
}
