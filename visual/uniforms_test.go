package visual

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSetDirty(t *testing.T) {
	s := NewUniformSet()
	_, ok := s.Get(UniformMouse)
	assert.False(t, ok)

	s.Set(UniformMouse, 1)
	s.Set(UniformSampleRate, float32(44100))
	s.Set(UniformMouse, 2)

	u, ok := s.Get(UniformMouse)
	require.True(t, ok)
	assert.Equal(t, 2, u.Value)
	assert.True(t, u.Dirty)
	assert.Equal(t, uint64(2), u.Version)
	assert.Equal(t, []string{UniformMouse, UniformSampleRate}, s.DirtyNames())

	var uploaded []string
	require.NoError(t, s.Flush(func(name string, u Uniform) error {
		uploaded = append(uploaded, name)
		return nil
	}))
	assert.Equal(t, []string{UniformMouse, UniformSampleRate}, uploaded)
	assert.Empty(t, s.DirtyNames())

	u, _ = s.Get(UniformMouse)
	assert.False(t, u.Dirty)
	assert.Equal(t, 2, u.Value)
}

func TestUniformSetFlushError(t *testing.T) {
	s := NewUniformSet()
	s.Set("a", 1)
	s.Set("b", 2)

	boom := errors.New("boom")
	err := s.Flush(func(name string, u Uniform) error {
		if name == "a" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, s.DirtyNames())

	s.MarkAllDirty()
	assert.Equal(t, []string{"a", "b"}, s.DirtyNames())
	assert.Equal(t, []string{"a", "b"}, s.Names())
}
