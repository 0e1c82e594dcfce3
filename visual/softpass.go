package visual

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// ImageTarget is a CPU history target.
type ImageTarget struct {
	*image.RGBA
}

// Size is the image size.
func (t *ImageTarget) Size() image.Point { return t.Rect.Size() }

// ImagePass renders the spectrogram on the CPU. Row 0 holds the newest spectrum and every
// older row moves down by one per frame.
type ImagePass struct {
	// MaxSize bounds allocations in each dimension. Zero means unbounded.
	MaxSize int
}

// Allocate returns a black image.
func (p *ImagePass) Allocate(size image.Point) (Target, error) {
	if p.MaxSize > 0 && (size.X > p.MaxSize || size.Y > p.MaxSize) {
		return nil, fmt.Errorf("size %v exceeds limit %d", size, p.MaxSize)
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &ImageTarget{img}, nil
}

// Release is a no-op; images are garbage collected.
func (p *ImagePass) Release(Target) {}

// Render writes the scrolled previous frame and the new row into dst.
func (p *ImagePass) Render(dst, prev Target, scene Scene) error {
	d, ok := dst.(*ImageTarget)
	if !ok {
		return fmt.Errorf("unexpected target %T", dst)
	}
	s, ok := prev.(*ImageTarget)
	if !ok {
		return fmt.Errorf("unexpected target %T", prev)
	}
	if d.Size() != s.Size() {
		return fmt.Errorf("target sizes differ: %v != %v", d.Size(), s.Size())
	}

	w, h := d.Size().X, d.Size().Y
	stride := d.Stride
	copy(d.Pix[stride:h*stride], s.Pix[:(h-1)*stride])

	for x := 0; x < w; x++ {
		d.SetRGBA(x, 0, rowColor(scene, x, w))
	}
	return nil
}

// rowColor matches the fragment shader: the table color for the quantized magnitude when
// a table is set, otherwise the magnitude in the red channel.
func rowColor(scene Scene, x, w int) color.RGBA {
	if scene.Spectrum == nil {
		return color.RGBA{A: 0xff}
	}
	pix := scene.Spectrum.Pix()
	m := pix[x*len(pix)/w]
	if len(scene.Colors) > 0 {
		c := scene.Colors[scene.Colors.Quantize(m)]
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return color.RGBA{R: m, A: 0xff}
}

// WritePNG encodes the target as a PNG.
func (t *ImageTarget) WritePNG(w io.Writer) error {
	return png.Encode(w, t.RGBA)
}
