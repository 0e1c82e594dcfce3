package visual

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/spectromesh/visual/colortable"
)

func TestImagePassScrolls(t *testing.T) {
	p := NewPacker(4, FormatRed)
	h := NewHistory(&ImagePass{}, image.Pt(4, 3))

	for _, v := range []uint8{10, 20, 30} {
		tex, err := p.Pack(constFrame(4, v))
		require.NoError(t, err)
		_, err = h.Advance(Scene{Spectrum: tex})
		require.NoError(t, err)
	}

	img := h.Front().(*ImageTarget)
	for x := 0; x < 4; x++ {
		assert.Equal(t, color.RGBA{R: 30, A: 0xff}, img.RGBAAt(x, 0))
		assert.Equal(t, color.RGBA{R: 20, A: 0xff}, img.RGBAAt(x, 1))
		assert.Equal(t, color.RGBA{R: 10, A: 0xff}, img.RGBAAt(x, 2))
	}

	// a frame without audio inserts a black row and keeps scrolling
	_, err := h.Advance(Scene{})
	require.NoError(t, err)
	img = h.Front().(*ImageTarget)
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 30, A: 0xff}, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{R: 20, A: 0xff}, img.RGBAAt(0, 2))
}

func TestImagePassResamplesAndColors(t *testing.T) {
	tbl, err := colortable.Default().Table(4)
	require.NoError(t, err)

	p := NewPacker(4, FormatRed)
	tex, err := p.Pack([]uint8{0, 64, 128, 255})
	require.NoError(t, err)

	h := NewHistory(&ImagePass{}, image.Pt(8, 2))
	tgt, err := h.Advance(Scene{Spectrum: tex, Colors: tbl})
	require.NoError(t, err)
	img := tgt.(*ImageTarget)

	for x := 0; x < 8; x++ {
		r, g, b := tbl[x/2].RGB255()
		assert.Equal(t, color.RGBA{R: r, G: g, B: b, A: 0xff}, img.RGBAAt(x, 0), "x=%d", x)
	}

	var buf bytes.Buffer
	require.NoError(t, img.WritePNG(&buf))
	dec, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 2), dec.Bounds().Size())
}
