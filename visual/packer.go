// Package visual moves analyzed audio into shader inputs: the per-frame spectrum texture,
// the scrolling spectrogram history, and the uniform set read by the draw call.
package visual

import (
	"errors"
	"fmt"
	"image"

	"github.com/peragwin/spectromesh/audio/analyzer"
)

// ErrSizeMismatch is returned when a frame does not have the configured number of bins.
var ErrSizeMismatch = errors.New("frame size mismatch")

// Format is the single-channel pixel format used for spectrum textures.
type Format int

const (
	// FormatRed stores one byte per texel in the red channel.
	FormatRed Format = iota
	// FormatLuminance is the fallback for contexts without single-channel red textures.
	FormatLuminance
)

func (f Format) String() string {
	switch f {
	case FormatRed:
		return "red"
	case FormatLuminance:
		return "luminance"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Capabilities describes the rendering backend, as reported once at startup.
type Capabilities struct {
	Major, Minor int
	// ES is set for OpenGL ES / WebGL style contexts.
	ES bool
}

// NegotiateFormat picks the spectrum texture format for a backend.
func NegotiateFormat(c Capabilities) Format {
	if c.Major >= 3 {
		return FormatRed
	}
	return FormatLuminance
}

// SpectrumTexture is a 1xN single-channel image of one frequency frame. A texture is never
// modified after Pack returns it.
type SpectrumTexture struct {
	Image      *image.Gray
	Format     Format
	Generation uint64
}

// Width is the number of bins.
func (t *SpectrumTexture) Width() int { return t.Image.Rect.Dx() }

// Height is always 1.
func (t *SpectrumTexture) Height() int { return t.Image.Rect.Dy() }

// Pix returns the magnitude bytes, one per bin.
func (t *SpectrumTexture) Pix() []uint8 { return t.Image.Pix }

// Packer converts frames into spectrum textures.
type Packer struct {
	bins       int
	format     Format
	generation uint64
	last       *SpectrumTexture
}

// NewPacker creates a packer for frames of the given number of bins.
func NewPacker(bins int, format Format) *Packer {
	return &Packer{bins: bins, format: format}
}

// Bins is the expected frame length.
func (p *Packer) Bins() int { return p.bins }

// Format is the negotiated texture format.
func (p *Packer) Format() Format { return p.format }

// Last is the most recently packed texture, or nil.
func (p *Packer) Last() *SpectrumTexture { return p.last }

// Pack copies the frame into a new texture. On error the last texture is unchanged.
func (p *Packer) Pack(f analyzer.Frame) (*SpectrumTexture, error) {
	if len(f) != p.bins {
		return nil, fmt.Errorf("%w: got %d bins, want %d", ErrSizeMismatch, len(f), p.bins)
	}
	img := image.NewGray(image.Rect(0, 0, p.bins, 1))
	copy(img.Pix, f)

	p.generation++
	p.last = &SpectrumTexture{
		Image:      img,
		Format:     p.format,
		Generation: p.generation,
	}
	return p.last, nil
}
