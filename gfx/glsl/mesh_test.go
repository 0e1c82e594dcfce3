package glsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeshSources(t *testing.T) {
	s := Mesh(256)
	assert.True(t, strings.HasPrefix(s.Fragment, "#version 410 core\n#define HALF_FFT_SIZE 256\n"))
	assert.Contains(t, s.Fragment, "colorLookupTable[HALF_FFT_SIZE]")
	assert.Contains(t, s.Vertex, "projection * view * model")
	assert.NotContains(t, s.Vertex, "#define")

	for _, u := range MeshUniforms {
		assert.Contains(t, s.Vertex+s.Fragment, u, u)
	}
}

func TestScrollSources(t *testing.T) {
	s := Scroll(4)
	assert.Contains(t, s.Fragment, "#define HALF_FFT_SIZE 4\n")
	for _, u := range ScrollUniforms {
		assert.Contains(t, s.Fragment, u, u)
	}
	// the define comes before any use of it
	assert.Less(t, strings.Index(s.Fragment, "#define"), strings.Index(s.Fragment, "colorLookupTable"))
}
