package audio

import (
	"context"

	"github.com/peragwin/spectromesh/audio/util"
)

// Mono downmixes an interleaved block to mono float64 samples, averaging the channels.
// The result is written into y when it has room.
func Mono(x []float32, channels int, y []float64) []float64 {
	if channels < 1 {
		channels = 1
	}
	n := len(x) / channels
	if cap(y) < n {
		y = make([]float64, n)
	}
	y = y[:n]
	scale := 1 / float64(channels)
	for i := range y {
		var s float64
		for c := 0; c < channels; c++ {
			s += float64(x[i*channels+c])
		}
		y[i] = s * scale
	}
	return y
}

// Buffer pushes every frame from the stream into the ring buffer, downmixed to mono. It
// blocks until the stream ends, the stream reports an error, or ctx is cancelled, and
// returns the error that stopped it (nil on a clean end of stream).
func Buffer(ctx context.Context, s *Stream, rb *util.RingBuffer) error {
	var y []float64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.Errors:
			if err != nil {
				return err
			}
		case x, ok := <-s.Frames:
			if !ok {
				select {
				case err := <-s.Errors:
					return err
				default:
					return nil
				}
			}
			y = Mono(x, s.Channels, y)
			rb.Push(y)
		}
	}
}
