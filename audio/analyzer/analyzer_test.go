package analyzer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/spectromesh/audio"
)

func sine(n int, cycles, amp float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*cycles*float64(i)/float64(n))
	}
	return x
}

func TestNewValidatesWindow(t *testing.T) {
	for _, w := range []int{0, 1, 3, 100, 4096} {
		_, err := New(Config{Window: w, SampleRate: 44100})
		assert.Error(t, err, "window %d", w)
	}
	for w := MinWindow; w <= MaxWindow; w *= 2 {
		a, err := New(Config{Window: w, SampleRate: 44100})
		require.NoError(t, err)
		assert.Equal(t, w/2, a.Bins())
	}
}

func TestNewValidatesParameters(t *testing.T) {
	_, err := New(Config{Window: 64, Parameters: Parameters{Smoothing: 1, MinDecibels: -100, MaxDecibels: -30}})
	assert.Error(t, err)
	_, err = New(Config{Window: 64, Parameters: Parameters{Smoothing: 0.5, MinDecibels: -30, MaxDecibels: -30}})
	assert.Error(t, err)

	a, err := New(Config{Window: 64})
	require.NoError(t, err)
	assert.Equal(t, DefaultParameters(), a.Parameters())
}

func TestNotReadyWithoutSource(t *testing.T) {
	a, err := New(Config{Window: 512, SampleRate: 44100})
	require.NoError(t, err)

	assert.False(t, a.Ready())
	_, err = a.FrequencyFrame()
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = a.AverageMagnitude()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestFrameLengthForAllWindows(t *testing.T) {
	for w := MinWindow; w <= MaxWindow; w *= 2 {
		a, err := New(Config{Window: w, SampleRate: 44100})
		require.NoError(t, err)
		a.Write(sine(w, float64(w)/8, 0.5))

		f, err := a.FrequencyFrame()
		require.NoError(t, err)
		assert.Len(t, f, w/2, "window %d", w)
	}
}

func TestSmallestWindowDetectsSignal(t *testing.T) {
	a, err := New(Config{Window: MinWindow, SampleRate: 44100})
	require.NoError(t, err)
	a.Write([]float64{1, -0.5})

	f, err := a.FrequencyFrame()
	require.NoError(t, err)
	require.Len(t, f, 1)
	assert.NotZero(t, f[0])
}

func TestFramePeaksAtToneBin(t *testing.T) {
	a, err := New(Config{Window: 512, SampleRate: 44100, Parameters: Parameters{
		Smoothing: 0, MinDecibels: -100, MaxDecibels: 0,
	}})
	require.NoError(t, err)
	a.Write(sine(512, 40, 0.5))

	f, err := a.FrequencyFrame()
	require.NoError(t, err)

	peak := 0
	for i := range f {
		if f[i] > f[peak] {
			peak = i
		}
	}
	assert.Equal(t, 40, peak)
	// 0.5 amplitude under a Blackman window is about -19.6 dB
	assert.InDelta(t, 205, int(f[peak]), 2)
	assert.Less(t, f[200], f[peak])
	assert.InDelta(t, 3445.3, a.BinFrequency(40), 0.1)
}

func TestSilenceIsZero(t *testing.T) {
	a, err := New(Config{Window: 256, SampleRate: 44100})
	require.NoError(t, err)
	a.Write(make([]float64, 256))

	f, err := a.FrequencyFrame()
	require.NoError(t, err)
	for i, v := range f {
		require.Zero(t, v, "bin %d", i)
	}
	avg, err := a.AverageMagnitude()
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestSmoothingDecays(t *testing.T) {
	a, err := New(Config{Window: 256, SampleRate: 44100})
	require.NoError(t, err)
	a.Write(sine(256, 16, 0.5))
	first, err := a.FrequencyFrame()
	require.NoError(t, err)
	second, err := a.FrequencyFrame()
	require.NoError(t, err)

	// smoothing starts from zero so repeated reads of the same input grow toward steady state
	assert.GreaterOrEqual(t, second[16], first[16])

	a.Write(make([]float64, 256))
	decayed, err := a.FrequencyFrame()
	require.NoError(t, err)
	assert.Less(t, decayed[16], second[16])
	assert.NotZero(t, decayed[16])
}

func TestAttachUntilStreamEnds(t *testing.T) {
	a, err := New(Config{Window: 256, SampleRate: 8000})
	require.NoError(t, err)

	clip := &audio.Clip{Samples: make([]float32, 4096), Channels: 1, SampleRate: 22050}
	for i := range clip.Samples {
		clip.Samples[i] = float32(0.5 * math.Sin(float64(i)/4))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.Attach(ctx, clip.Stream(ctx, audio.WAVOptions{BlockSize: 128, Realtime: true}))
	assert.Equal(t, 22050.0, a.SampleRate())

	require.Eventually(t, func() bool {
		f, err := a.FrequencyFrame()
		return err == nil && f.Average() > 0
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool { return !a.Ready() }, 2*time.Second, 10*time.Millisecond)
	_, err = a.FrequencyFrame()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestDetach(t *testing.T) {
	a, err := New(Config{Window: 64, SampleRate: 8000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clip := &audio.Clip{Samples: make([]float32, 64), Channels: 1, SampleRate: 8000}
	a.Attach(ctx, clip.Stream(ctx, audio.WAVOptions{BlockSize: 16, Loop: true, Realtime: true}))
	assert.True(t, a.Ready())

	a.Detach()
	assert.False(t, a.Ready())
	_, err = a.FrequencyFrame()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestFrameAverage(t *testing.T) {
	assert.Equal(t, 0.0, Frame{}.Average())
	assert.Equal(t, 2.0, Frame{1, 2, 3}.Average())
}
