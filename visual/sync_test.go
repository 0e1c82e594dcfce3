package visual

import (
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/visual/colortable"
)

type fakeSource struct {
	bins  int
	value uint8
	err   error
}

func (f *fakeSource) Bins() int           { return f.bins }
func (f *fakeSource) SampleRate() float64 { return 48000 }
func (f *fakeSource) FrequencyFrameInto(dst analyzer.Frame) error {
	if f.err != nil {
		return f.err
	}
	for i := range dst {
		dst[i] = f.value
	}
	return nil
}

type recorder struct{ frames []analyzer.Frame }

func (r *recorder) Publish(f analyzer.Frame) { r.frames = append(r.frames, f) }

func newTestSync(t *testing.T, src FrameSource, colors colortable.Table) (*Synchronizer, *UniformSet, *History) {
	t.Helper()
	u := NewUniformSet()
	h := NewHistory(&ImagePass{}, image.Pt(src.Bins(), 8))
	s, err := NewSynchronizer(SyncConfig{
		Source:   src,
		Packer:   NewPacker(src.Bins(), FormatRed),
		History:  h,
		Uniforms: u,
		Colors:   colors,
	})
	require.NoError(t, err)
	return s, u, h
}

func TestSyncWritesUniforms(t *testing.T) {
	tbl, err := colortable.Default().Table(4)
	require.NoError(t, err)
	src := &fakeSource{bins: 4, value: 100}
	s, u, h := newTestSync(t, src, tbl)
	rec := &recorder{}
	s.publisher = rec

	require.NoError(t, s.Tick(Input{Pointer: mgl32.Vec2{0.5, -0.5}}))

	assert.Equal(t, []string{
		UniformAverageMagnitude, UniformColorLookupTable, UniformMouse,
		UniformSampleRate, UniformAudioData, UniformSpectrogram,
	}, u.DirtyNames())

	m, _ := u.Get(UniformMouse)
	assert.Equal(t, mgl32.Vec2{0.5, -0.5}, m.Value)
	sr, _ := u.Get(UniformSampleRate)
	assert.Equal(t, float32(48000), sr.Value)
	avg, _ := u.Get(UniformAverageMagnitude)
	assert.Equal(t, float32(100), avg.Value)
	tex, _ := u.Get(UniformAudioData)
	assert.Equal(t, uint8(100), tex.Value.(*SpectrumTexture).Pix()[3])
	sg, _ := u.Get(UniformSpectrogram)
	assert.Same(t, h.Front(), sg.Value)
	require.Len(t, rec.frames, 1)
	assert.Equal(t, analyzer.Frame{100, 100, 100, 100}, rec.frames[0])

	require.NoError(t, u.Flush(func(string, Uniform) error { return nil }))

	// the color table is only written again after SetColors
	require.NoError(t, s.Tick(Input{}))
	assert.NotContains(t, u.DirtyNames(), UniformColorLookupTable)

	require.NoError(t, s.SetColors(colortable.Gradient(4)))
	require.NoError(t, s.Tick(Input{}))
	assert.Contains(t, u.DirtyNames(), UniformColorLookupTable)
	assert.ErrorIs(t, s.SetColors(colortable.Gradient(8)), ErrSizeMismatch)

	st := s.Stats()
	assert.Equal(t, uint64(3), st.Ticks)
	assert.Equal(t, uint64(3), st.AudioFrames)
	assert.True(t, st.Ready)
	assert.Equal(t, 100.0, st.Average)
}

func TestSyncDegradesWhenNotReady(t *testing.T) {
	src := &fakeSource{bins: 4, value: 50}
	s, u, h := newTestSync(t, src, nil)

	require.NoError(t, s.Tick(Input{}))
	require.NoError(t, u.Flush(func(string, Uniform) error { return nil }))
	before, _ := u.Get(UniformAudioData)
	beforeRate, _ := u.Get(UniformSampleRate)

	src.err = analyzer.ErrNotReady
	require.NoError(t, s.Tick(Input{Pointer: mgl32.Vec2{1, 1}}))

	after, _ := u.Get(UniformAudioData)
	assert.Equal(t, before, after)
	afterRate, _ := u.Get(UniformSampleRate)
	assert.Equal(t, beforeRate, afterRate)
	assert.Equal(t, []string{UniformMouse, UniformSpectrogram}, u.DirtyNames())
	assert.Equal(t, uint64(2), h.Frames())

	st := s.Stats()
	assert.False(t, st.Ready)
	assert.Equal(t, uint64(1), st.DegradedFrames)
	assert.Zero(t, st.Errors)
}

func TestSyncWithUnattachedAnalyzer(t *testing.T) {
	a, err := analyzer.New(analyzer.Config{Window: 512, SampleRate: 44100})
	require.NoError(t, err)
	s, u, _ := newTestSync(t, a, nil)

	require.NoError(t, s.Tick(Input{}))
	_, ok := u.Get(UniformAudioData)
	assert.False(t, ok)
	_, ok = u.Get(UniformSpectrogram)
	assert.True(t, ok)

	a.Write(make([]float64, 512))
	require.NoError(t, s.Tick(Input{}))
	_, ok = u.Get(UniformAudioData)
	assert.True(t, ok)
}

func TestSyncSurfacesErrors(t *testing.T) {
	src := &fakeSource{bins: 4, err: errors.New("device gone")}
	s, u, _ := newTestSync(t, src, nil)
	assert.Error(t, s.Tick(Input{}))
	assert.Empty(t, u.Names())
	assert.Equal(t, uint64(1), s.Stats().Errors)

	h := NewHistory(&ImagePass{MaxSize: 2}, image.Pt(4, 4))
	s, err := NewSynchronizer(SyncConfig{
		Source: &fakeSource{bins: 4}, Packer: NewPacker(4, FormatRed), History: h, Uniforms: u,
	})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Tick(Input{}), ErrAllocation)
	assert.Empty(t, u.Names())
}

func TestNewSynchronizerMismatch(t *testing.T) {
	src := &fakeSource{bins: 128}
	_, err := NewSynchronizer(SyncConfig{
		Source: src, Packer: NewPacker(100, FormatRed),
		History: NewHistory(&ImagePass{}, image.Pt(8, 8)), Uniforms: NewUniformSet(),
	})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = NewSynchronizer(SyncConfig{
		Source: src, Packer: NewPacker(128, FormatRed),
		History: NewHistory(&ImagePass{}, image.Pt(8, 8)), Uniforms: NewUniformSet(),
		Colors: colortable.Gradient(64),
	})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = NewSynchronizer(SyncConfig{Source: src})
	assert.Error(t, err)
}
