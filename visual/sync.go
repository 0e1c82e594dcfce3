package visual

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"

	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/visual/colortable"
)

// FrameSource produces frequency frames. *analyzer.Analyzer implements it.
type FrameSource interface {
	Bins() int
	SampleRate() float64
	FrequencyFrameInto(dst analyzer.Frame) error
}

// Publisher receives every analyzed frame. Publish must not block.
type Publisher interface {
	Publish(f analyzer.Frame)
}

// SyncConfig wires a Synchronizer.
type SyncConfig struct {
	Source   FrameSource
	Packer   *Packer
	History  *History
	Uniforms *UniformSet
	// Colors is optional; without it the shader runs in plain mode.
	Colors    colortable.Table
	Publisher Publisher
}

// Input is the per-frame state supplied by the render loop.
type Input struct {
	// Pointer is in normalized frame coordinates, [-1, 1] on both axes.
	Pointer mgl32.Vec2
}

// Stats are counters for the control API.
type Stats struct {
	Ticks          uint64  `json:"ticks"`
	AudioFrames    uint64  `json:"audioFrames"`
	DegradedFrames uint64  `json:"degradedFrames"`
	Errors         uint64  `json:"errors"`
	Ready          bool    `json:"ready"`
	Average        float64 `json:"average"`
	Generation     uint64  `json:"generation"`
}

// Synchronizer runs the per-frame pipeline: read the analyzer, pack the spectrum, advance
// the history and write the uniforms.
type Synchronizer struct {
	src       FrameSource
	packer    *Packer
	history   *History
	uniforms  *UniformSet
	publisher Publisher

	frame analyzer.Frame

	mu          sync.Mutex
	colors      colortable.Table
	colorsDirty bool
	stats       Stats
}

// NewSynchronizer checks that the components agree on the number of bins.
func NewSynchronizer(cfg SyncConfig) (*Synchronizer, error) {
	if cfg.Source == nil || cfg.Packer == nil || cfg.History == nil || cfg.Uniforms == nil {
		return nil, errors.New("synchronizer: source, packer, history and uniforms are required")
	}
	bins := cfg.Source.Bins()
	if cfg.Packer.Bins() != bins {
		return nil, fmt.Errorf("%w: packer has %d bins, analyzer %d",
			ErrSizeMismatch, cfg.Packer.Bins(), bins)
	}
	if cfg.Colors != nil && len(cfg.Colors) != bins {
		return nil, fmt.Errorf("%w: color table has %d entries, analyzer %d bins",
			ErrSizeMismatch, len(cfg.Colors), bins)
	}
	return &Synchronizer{
		src:         cfg.Source,
		packer:      cfg.Packer,
		history:     cfg.History,
		uniforms:    cfg.Uniforms,
		publisher:   cfg.Publisher,
		frame:       make(analyzer.Frame, bins),
		colors:      cfg.Colors,
		colorsDirty: cfg.Colors != nil,
	}, nil
}

// SetColors replaces the color table; it is uploaded on the next tick.
func (s *Synchronizer) SetColors(t colortable.Table) error {
	if t != nil && len(t) != s.packer.Bins() {
		return fmt.Errorf("%w: color table has %d entries, want %d",
			ErrSizeMismatch, len(t), s.packer.Bins())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors = t
	s.colorsDirty = true
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Synchronizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Tick runs one frame. When the analyzer is not ready the audio uniforms keep their
// previous values and the history still advances; that is not an error. Size mismatches
// and allocation failures are returned and nothing is written for the frame.
func (s *Synchronizer) Tick(in Input) error {
	s.mu.Lock()
	colors, colorsDirty := s.colors, s.colorsDirty
	wasReady := s.stats.Ready
	s.stats.Ticks++
	s.mu.Unlock()

	pointer := in.Pointer

	var tex *SpectrumTexture
	err := s.src.FrequencyFrameInto(s.frame)
	ready := err == nil
	switch {
	case ready:
	case errors.Is(err, analyzer.ErrNotReady):
		if wasReady {
			glog.Warning("visual: audio source not ready, skipping audio uniforms")
		}
	default:
		return s.fail(fmt.Errorf("frequency frame: %w", err))
	}

	if ready {
		if tex, err = s.packer.Pack(s.frame); err != nil {
			return s.fail(err)
		}
	}

	target, err := s.history.Advance(Scene{Spectrum: tex, Pointer: pointer, Colors: colors})
	if err != nil {
		return s.fail(err)
	}

	s.uniforms.Set(UniformMouse, pointer)
	var avg float64
	if ready {
		avg = s.frame.Average()
		s.uniforms.Set(UniformAudioData, tex)
		s.uniforms.Set(UniformSampleRate, float32(s.src.SampleRate()))
		s.uniforms.Set(UniformAverageMagnitude, float32(avg))
	}
	s.uniforms.Set(UniformSpectrogram, target)
	// program uniforms persist, so the table is only rewritten when it changes
	if colorsDirty {
		s.uniforms.Set(UniformColorLookupTable, colors)
	}

	if ready && s.publisher != nil {
		f := make(analyzer.Frame, len(s.frame))
		copy(f, s.frame)
		s.publisher.Publish(f)
	}

	s.mu.Lock()
	if colorsDirty && sameTable(s.colors, colors) {
		s.colorsDirty = false
	}
	s.stats.Ready = ready
	if ready {
		s.stats.AudioFrames++
		s.stats.Average = avg
		s.stats.Generation = tex.Generation
	} else {
		s.stats.DegradedFrames++
	}
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) fail(err error) error {
	s.mu.Lock()
	s.stats.Errors++
	s.mu.Unlock()
	return err
}

func sameTable(a, b colortable.Table) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
