package visual

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"

	"github.com/peragwin/spectromesh/visual/colortable"
)

// ErrAllocation is returned when the history targets cannot be allocated.
var ErrAllocation = errors.New("spectrogram allocation failed")

// Target is an off-screen image that can be rendered into and sampled.
type Target interface {
	Size() image.Point
}

// Scene is the per-frame state rendered into the history.
type Scene struct {
	// Spectrum is nil when no audio is available this frame.
	Spectrum *SpectrumTexture
	Pointer  mgl32.Vec2
	Colors   colortable.Table
}

// Pass allocates and renders history targets for a backend.
type Pass interface {
	// Allocate returns a cleared target of the given size.
	Allocate(size image.Point) (Target, error)
	Release(t Target)
	// Render draws the scene into dst, reading the previous frame from prev. dst and prev
	// are always distinct.
	Render(dst, prev Target, scene Scene) error
}

// Viewport is the drawable area in CSS-style pixels plus the device pixel ratio.
type Viewport struct {
	Width, Height int
	PixelRatio    float64
}

// Size is the viewport in device pixels.
func (v Viewport) Size() image.Point {
	r := v.PixelRatio
	if r <= 0 {
		r = 1
	}
	return image.Pt(
		int(math.Round(float64(v.Width)*r)),
		int(math.Round(float64(v.Height)*r)),
	)
}

// History is a double-buffered spectrogram. Each Advance renders into the back target,
// reading the front, then swaps them.
type History struct {
	pass  Pass
	fixed image.Point
	size  image.Point

	front, back Target
	frames      uint64
}

// NewHistory creates a history rendered by pass. A non-zero fixed size pins the target
// dimensions; otherwise they follow Resize.
func NewHistory(pass Pass, fixed image.Point) *History {
	return &History{pass: pass, fixed: fixed, size: fixed}
}

// Size is the current target size.
func (h *History) Size() image.Point { return h.size }

// Front is the most recently completed target, or nil.
func (h *History) Front() Target { return h.front }

// Frames counts successful advances since the last allocation.
func (h *History) Frames() uint64 { return h.frames }

// Resize follows a viewport change. It reports whether the targets will be reallocated,
// which discards the accumulated history.
func (h *History) Resize(vp Viewport) bool {
	if h.fixed != (image.Point{}) {
		return false
	}
	size := vp.Size()
	if size == h.size {
		return false
	}
	glog.V(1).Infof("visual: spectrogram resized %v -> %v", h.size, size)
	h.release()
	h.size = size
	return true
}

// Advance renders one frame of history and returns the target to sample.
func (h *History) Advance(scene Scene) (Target, error) {
	if h.front == nil || h.back == nil {
		if err := h.allocate(); err != nil {
			return nil, err
		}
	}
	if err := h.pass.Render(h.back, h.front, scene); err != nil {
		return nil, fmt.Errorf("spectrogram render: %w", err)
	}
	h.front, h.back = h.back, h.front
	h.frames++
	return h.front, nil
}

// Close releases the targets.
func (h *History) Close() { h.release() }

func (h *History) allocate() error {
	h.release()
	if h.size.X <= 0 || h.size.Y <= 0 {
		return fmt.Errorf("%w: invalid size %v", ErrAllocation, h.size)
	}
	front, err := h.pass.Allocate(h.size)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	back, err := h.pass.Allocate(h.size)
	if err != nil {
		h.pass.Release(front)
		return fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	h.front, h.back = front, back
	h.frames = 0
	return nil
}

func (h *History) release() {
	if h.front != nil {
		h.pass.Release(h.front)
	}
	if h.back != nil {
		h.pass.Release(h.back)
	}
	h.front, h.back = nil, nil
}
