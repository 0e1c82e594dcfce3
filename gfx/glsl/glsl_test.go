package glsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"4.1 Metal - 83.1", Version{Major: 4, Minor: 1}},
		{"4.6.0 NVIDIA 535.104.05", Version{Major: 4, Minor: 6}},
		{"2.1 Mesa 20.0.8", Version{Major: 2, Minor: 1}},
		{"OpenGL ES 3.2 NVIDIA 535", Version{Major: 3, Minor: 2, ES: true}},
		{"OpenGL ES-CM 1.1", Version{Major: 1, Minor: 1, ES: true}},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseVersion("garbage")
	assert.Error(t, err)
	_, err = ParseVersion("x.1")
	assert.Error(t, err)
}

func TestInjectDefines(t *testing.T) {
	src := "#version 410 core\nvoid main() {}\n"
	got := InjectDefines(src, map[string]string{"HALF_FFT_SIZE": "256", "A": "1"})
	assert.Equal(t, "#version 410 core\n#define A 1\n#define HALF_FFT_SIZE 256\nvoid main() {}\n", got)

	assert.Equal(t, "#define X 2\nvoid main() {}", InjectDefines("void main() {}", map[string]string{"X": "2"}))
	assert.Equal(t, src, InjectDefines(src, nil))
}
