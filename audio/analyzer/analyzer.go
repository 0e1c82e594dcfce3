// Package analyzer turns a live audio stream into byte-scaled frequency frames, once per
// rendered frame.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"

	"github.com/peragwin/spectromesh/audio"
	"github.com/peragwin/spectromesh/audio/fft"
	"github.com/peragwin/spectromesh/audio/util"
)

const (
	MinWindow = 2
	MaxWindow = 2048

	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100
	DefaultMaxDecibels = -30
)

// ErrNotReady is returned while no audio source is attached.
var ErrNotReady = errors.New("analyzer: no audio source attached")

// Frame holds one byte-scaled magnitude per frequency bin, lowest frequency first.
type Frame []uint8

// Average is the mean magnitude of the frame.
func (f Frame) Average() float64 {
	if len(f) == 0 {
		return 0
	}
	var s int
	for _, v := range f {
		s += int(v)
	}
	return float64(s) / float64(len(f))
}

// Parameters are the tunable parts of the analysis.
type Parameters struct {
	Smoothing   float64 `json:"smoothing"`
	MinDecibels float64 `json:"minDecibels"`
	MaxDecibels float64 `json:"maxDecibels"`
}

// Validate checks that the parameters describe a usable mapping.
func (p Parameters) Validate() error {
	if p.Smoothing < 0 || p.Smoothing >= 1 {
		return fmt.Errorf("smoothing %v must be in [0, 1)", p.Smoothing)
	}
	if p.MinDecibels >= p.MaxDecibels {
		return fmt.Errorf("min decibels %v must be below max decibels %v",
			p.MinDecibels, p.MaxDecibels)
	}
	return nil
}

// DefaultParameters match a browser AnalyserNode.
func DefaultParameters() Parameters {
	return Parameters{
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
	}
}

// Config configures a new Analyzer.
type Config struct {
	// Window is the transform size; a power of two in [MinWindow, MaxWindow].
	Window int
	// SampleRate is used until a stream reports its own.
	SampleRate float64
	Parameters
}

// Analyzer computes frequency frames from the most recent Window samples of an attached
// source.
type Analyzer struct {
	window int
	ring   *util.RingBuffer
	proc   *fft.Processor

	mu         sync.Mutex
	params     Parameters
	sampleRate float64
	attached   bool
	cancel     context.CancelFunc
	generation int
	samples    []float64
	mags       []float64
	smoothed   []float64
}

// New creates an Analyzer. It starts NotReady.
func New(cfg Config) (*Analyzer, error) {
	if !util.IsPowerOfTwo(cfg.Window) || cfg.Window < MinWindow || cfg.Window > MaxWindow {
		return nil, fmt.Errorf("transform window %d must be a power of two in [%d, %d]",
			cfg.Window, MinWindow, MaxWindow)
	}
	params := cfg.Parameters
	if params == (Parameters{}) {
		params = DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		window:     cfg.Window,
		ring:       util.NewRingBuffer(cfg.Window),
		proc:       fft.NewProcessor(cfg.Window),
		params:     params,
		sampleRate: cfg.SampleRate,
		samples:    make([]float64, cfg.Window),
		mags:       make([]float64, cfg.Window/2),
		smoothed:   make([]float64, cfg.Window/2),
	}, nil
}

// Window is the transform size.
func (a *Analyzer) Window() int { return a.window }

// Bins is the number of frequency bins per frame.
func (a *Analyzer) Bins() int { return a.window / 2 }

// SampleRate of the attached source, or the configured rate.
func (a *Analyzer) SampleRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sampleRate
}

// BinFrequency is the frequency in Hz represented by bin i.
func (a *Analyzer) BinFrequency(i int) float64 {
	return a.proc.BinFrequency(i, a.SampleRate())
}

// Parameters returns the current analysis parameters.
func (a *Analyzer) Parameters() Parameters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params
}

// SetParameters replaces the analysis parameters.
func (a *Analyzer) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.params = p
	a.mu.Unlock()
	return nil
}

// Ready reports whether a source is attached.
func (a *Analyzer) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attached
}

// Attach connects a stream. Samples are ingested on a separate goroutine until the stream
// ends, fails, ctx is cancelled or Detach is called; the analyzer is NotReady afterwards.
// Attaching replaces any previous source.
func (a *Analyzer) Attach(ctx context.Context, s *audio.Stream) {
	ctx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	a.cancel = cancel
	a.attached = true
	if s.SampleRate > 0 {
		a.sampleRate = s.SampleRate
	}
	a.resetLocked()
	a.mu.Unlock()

	go func() {
		err := audio.Buffer(ctx, s, a.ring)
		switch {
		case err == nil:
			glog.Warning("analyzer: audio source ended")
		case errors.Is(err, context.Canceled):
		default:
			glog.Errorf("analyzer: audio source failed: %v", err)
		}
		a.detach(gen)
	}()
}

// Detach disconnects the current source.
func (a *Analyzer) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.attached = false
}

func (a *Analyzer) detach(gen int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.attached = false
}

// Write feeds mono samples directly and marks the analyzer ready.
func (a *Analyzer) Write(samples []float64) {
	a.mu.Lock()
	a.attached = true
	a.mu.Unlock()
	a.ring.Push(samples)
}

func (a *Analyzer) resetLocked() {
	a.ring.Reset()
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// FrequencyFrame analyzes the most recent Window samples. It never blocks on the source.
func (a *Analyzer) FrequencyFrame() (Frame, error) {
	out := make(Frame, a.Bins())
	if err := a.FrequencyFrameInto(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FrequencyFrameInto is FrequencyFrame writing into dst, which must have length Bins.
func (a *Analyzer) FrequencyFrameInto(dst Frame) error {
	if len(dst) != a.Bins() {
		return fmt.Errorf("frame length %d, want %d", len(dst), a.Bins())
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.attached {
		return ErrNotReady
	}

	a.ring.GetInto(a.samples, 0)
	a.proc.Magnitudes(a.samples, a.mags)

	tau := a.params.Smoothing
	floats.Scale(tau, a.smoothed)
	floats.AddScaled(a.smoothed, 1-tau, a.mags)

	scale := 255 / (a.params.MaxDecibels - a.params.MinDecibels)
	for i, v := range a.smoothed {
		db := 20 * math.Log10(v)
		b := math.Floor((db - a.params.MinDecibels) * scale)
		switch {
		case math.IsNaN(b) || b < 0:
			b = 0
		case b > 255:
			b = 255
		}
		dst[i] = uint8(b)
	}
	if glog.V(3) {
		glog.Infof("analyzer: frame average %.1f over %d buffered samples",
			dst.Average(), a.ring.Filled())
	}
	return nil
}

// AverageMagnitude is the mean of a freshly analyzed frame.
func (a *Analyzer) AverageMagnitude() (float64, error) {
	f, err := a.FrequencyFrame()
	if err != nil {
		return 0, err
	}
	return f.Average(), nil
}
