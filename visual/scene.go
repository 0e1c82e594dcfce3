package visual

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GroupScale is the uniform scale applied to the mesh.
const GroupScale = 2.23

// VertexStride is the number of floats per vertex in PlaneGeometry: position (3),
// uv (2), normal (3).
const VertexStride = 8

// PlaneGeometry builds a width x height plane in the XY plane facing +Z, split into
// segX x segY quads, as interleaved triangles.
func PlaneGeometry(width, height float32, segX, segY int) []float32 {
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}
	vertex := func(ix, iy int) [VertexStride]float32 {
		u := float32(ix) / float32(segX)
		v := float32(iy) / float32(segY)
		return [VertexStride]float32{
			(u - 0.5) * width, (v - 0.5) * height, 0,
			u, v,
			0, 0, 1,
		}
	}

	out := make([]float32, 0, segX*segY*6*VertexStride)
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := vertex(ix, iy)
			b := vertex(ix+1, iy)
			c := vertex(ix+1, iy+1)
			d := vertex(ix, iy+1)
			for _, p := range [][VertexStride]float32{a, b, c, a, c, d} {
				out = append(out, p[:]...)
			}
		}
	}
	return out
}

// Camera is a perspective camera looking at the origin.
type Camera struct {
	FovY      float32 // degrees
	Near, Far float32
	Eye       mgl32.Vec3
}

// DefaultCamera frames the scaled plane.
func DefaultCamera() Camera {
	return Camera{FovY: 45, Near: 0.1, Far: 100, Eye: mgl32.Vec3{0, 0, 6}}
}

// Projection for the given aspect ratio.
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// View looks from Eye to the origin with +Y up.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

// ModelMatrix scales the mesh by GroupScale and tilts it toward the pointer.
func ModelMatrix(pointer mgl32.Vec2) mgl32.Mat4 {
	const tilt = 0.3
	return mgl32.HomogRotate3DX(-pointer.Y() * tilt).
		Mul4(mgl32.HomogRotate3DY(pointer.X() * tilt)).
		Mul4(mgl32.Scale3D(GroupScale, GroupScale, GroupScale))
}
