package colortable

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Keypoint anchors a color at a position in [0, 1].
type Keypoint struct {
	Col colorful.Color
	Pos float64
}

// ColorMap is a sorted list of keypoints blended in HCL space.
type ColorMap []Keypoint

// At returns the HCL blend of the two keypoints around t.
func (g ColorMap) At(t float64) colorful.Color {
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			t := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, t).Clamped()
		}
	}
	if t < g[0].Pos {
		return g[0].Col
	}
	return g[len(g)-1].Col
}

// Table samples the map at size evenly spaced positions.
func (g ColorMap) Table(size int) Table {
	t := make(Table, size)
	for i := range t {
		var pos float64
		if size > 1 {
			pos = float64(i) / float64(size-1)
		}
		t[i] = g.At(pos)
	}
	return t
}

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("MustParseHex: " + err.Error())
	}
	return c
}

// Spectral is a diverging red to violet map.
func Spectral() ColorMap {
	return ColorMap{
		{mustParseHex("#9e0142"), 0.0},
		{mustParseHex("#d53e4f"), 0.1},
		{mustParseHex("#f46d43"), 0.2},
		{mustParseHex("#fdae61"), 0.3},
		{mustParseHex("#fee090"), 0.4},
		{mustParseHex("#ffffbf"), 0.5},
		{mustParseHex("#e6f598"), 0.6},
		{mustParseHex("#abdda4"), 0.7},
		{mustParseHex("#66c2a5"), 0.8},
		{mustParseHex("#3288bd"), 0.9},
		{mustParseHex("#5e4fa2"), 1.0},
	}
}

// Gradient synthesizes a table of any size from the spectral map, for bin counts the asset
// does not cover.
func Gradient(size int) Table {
	return Spectral().Table(size)
}

// Resolve returns the asset table for size, or a synthesized gradient when fallback is set
// and the asset has none.
func (a *Asset) Resolve(size int, fallback bool) (Table, error) {
	t, err := a.Table(size)
	if err != nil && fallback {
		return Gradient(size), nil
	}
	return t, err
}
