package visual

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NormalizePointer maps a cursor position in window coordinates, origin top left, to
// [-1, 1] on both axes with y pointing up. Positions outside the window are clamped.
func NormalizePointer(x, y float64, width, height int) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{}
	}
	nx := float32(x)/float32(width)*2 - 1
	ny := 1 - float32(y)/float32(height)*2
	return mgl32.Vec2{clamp1(nx), clamp1(ny)}
}

func clamp1(v float32) float32 {
	return math32.Max(-1, math32.Min(1, v))
}
