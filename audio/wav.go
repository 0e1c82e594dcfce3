package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/golang/glog"
)

// ErrInvalidWAV is returned when a file is not a readable PCM WAV.
var ErrInvalidWAV = errors.New("not a valid wav file")

// WAVOptions controls how a WAV file is replayed as a Stream.
type WAVOptions struct {
	// BlockSize is the number of frames per emitted block.
	BlockSize int
	// Realtime paces blocks at the file's sample rate instead of as fast as possible.
	Realtime bool
	// Loop restarts from the beginning at end of file.
	Loop bool
}

// Clip is a decoded, interleaved clip normalized to [-1, 1].
type Clip struct {
	Samples    []float32
	Channels   int
	SampleRate float64
}

// Frames is the number of sample frames in the clip.
func (c *Clip) Frames() int { return len(c.Samples) / c.Channels }

// DecodeWAV reads a whole PCM WAV file into memory.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("error seeking to pcm data: %w", err)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("error decoding pcm data: %w", err)
	}
	if d.NumChans == 0 || d.BitDepth == 0 {
		return nil, ErrInvalidWAV
	}

	max := float32(goaudio.IntMaxSignedValue(int(d.BitDepth)))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / max
	}
	return &Clip{
		Samples:    samples,
		Channels:   int(d.NumChans),
		SampleRate: float64(d.SampleRate),
	}, nil
}

// LoadWAV decodes the WAV file at path.
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// OpenWAV decodes the WAV file at path and replays it as a Stream.
func OpenWAV(ctx context.Context, path string, opts WAVOptions) (*Stream, error) {
	c, err := LoadWAV(path)
	if err != nil {
		return nil, err
	}
	glog.Infof("audio: replaying %s (%d ch, %.0f Hz, %d frames)",
		path, c.Channels, c.SampleRate, c.Frames())
	return c.Stream(ctx, opts), nil
}

// Stream replays the clip block by block until it ends or ctx is cancelled.
func (c *Clip) Stream(ctx context.Context, opts WAVOptions) *Stream {
	out := make(chan []float32, 4)
	errc := make(chan error, 1)
	done := ctx.Done()

	block := opts.BlockSize
	if block <= 0 {
		block = 512
	}

	go func() {
		defer close(out)

		var tick <-chan time.Time
		if opts.Realtime && c.SampleRate > 0 {
			period := time.Duration(float64(block) / c.SampleRate * float64(time.Second))
			t := time.NewTicker(period)
			defer t.Stop()
			tick = t.C
		}

		step := block * c.Channels
		for {
			for i := 0; i+c.Channels <= len(c.Samples); i += step {
				if tick != nil {
					select {
					case <-done:
						return
					case <-tick:
					}
				}
				en := i + step
				if en > len(c.Samples) {
					en = len(c.Samples)
				}
				frame := make([]float32, en-i)
				copy(frame, c.Samples[i:en])
				select {
				case out <- frame:
				case <-done:
					return
				}
			}
			if !opts.Loop || len(c.Samples) == 0 {
				return
			}
			glog.V(1).Info("audio: looping clip")
		}
	}()

	return &Stream{
		Frames:     out,
		Errors:     errc,
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
	}
}
