package fft

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Processor computes normalized magnitude spectra over a fixed size window.
type Processor struct {
	Size int

	window []float64
	buf    []float64
}

// NewProcessor creates a processor using a periodic Blackman window of the given size.
func NewProcessor(size int) *Processor {
	return &Processor{
		Size:   size,
		window: periodicBlackman(size),
		buf:    make([]float64, size),
	}
}

// Window returns the analysis window coefficients.
func (p *Processor) Window() []float64 { return p.window }

// Magnitudes windows x and returns |X[k]|/Size for the Size/2 bins below Nyquist.
// x must have length Size. The result is written into dst when it has room.
func (p *Processor) Magnitudes(x, dst []float64) []float64 {
	if len(x) != p.Size {
		panic("fft: input length does not match processor size")
	}
	floats.MulTo(p.buf, x, p.window)

	X := fft.FFTReal(p.buf)

	half := p.Size / 2
	if cap(dst) < half {
		dst = make([]float64, half)
	}
	dst = dst[:half]
	for k := range dst {
		dst[k] = cmplx.Abs(X[k])
	}
	floats.Scale(1/float64(p.Size), dst)
	return dst
}

// BinFrequency is the center frequency of bin k for the given sample rate.
func (p *Processor) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(p.Size)
}

// periodicBlackman divides by size rather than size-1. The symmetric form is all zeros
// at size 2.
func periodicBlackman(size int) []float64 {
	return window.Blackman(size + 1)[:size]
}
