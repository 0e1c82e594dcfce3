package audio

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"
)

// Config represents a config that is used to open a new Stream.
type Config struct {
	// BlockSize refers to the buffer size for each block, in frames.
	BlockSize int
	// Channels is the number of input channels.
	Channels int
	// SampleRate is the sample rate (Fs).
	SampleRate float64
}

// Stream is a handle to a running audio source. Frames carries interleaved blocks of
// BlockSize*Channels samples and is closed when the source stops. At most one error is
// delivered on Errors before Frames closes.
type Stream struct {
	Frames     <-chan []float32
	Errors     <-chan error
	SampleRate float64
	Channels   int
}

// NewSource initializes a new streaming source with portaudio reading from the default
// input device.
func NewSource(ctx context.Context, cfg *Config) *Stream {
	out := make(chan []float32, 4)
	errc := make(chan error, 1)
	done := ctx.Done()

	go func() {
		defer close(out)

		if err := portaudio.Initialize(); err != nil {
			errc <- fmt.Errorf("error initializing portaudio: %w", err)
			return
		}
		defer portaudio.Terminate()

		in := make([]float32, cfg.BlockSize*cfg.Channels)

		stream, err := portaudio.OpenDefaultStream(
			cfg.Channels, 0, cfg.SampleRate, cfg.BlockSize, in)
		if err != nil {
			errc <- fmt.Errorf("error opening stream: %w", err)
			return
		}
		defer stream.Close()
		if err := stream.Start(); err != nil {
			errc <- fmt.Errorf("error starting stream: %w", err)
			return
		}
		defer stream.Stop()
		glog.Infof("audio: capturing %d channel(s) at %.0f Hz", cfg.Channels, cfg.SampleRate)

		for {
			select {
			case <-done:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				if err == portaudio.InputOverflowed {
					glog.Warning("audio: input overflowed")
					continue
				}
				errc <- fmt.Errorf("error reading from stream: %w", err)
				return
			}

			frame := make([]float32, len(in))
			copy(frame, in)
			select {
			case out <- frame:
			case <-done:
				return
			}
		}
	}()

	return &Stream{
		Frames:     out,
		Errors:     errc,
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	}
}
