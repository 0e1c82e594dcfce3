package gfx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ErrShaderCompile is returned when a shader fails to compile or a program fails to link.
var ErrShaderCompile = errors.New("shader compile failed")

// Shader represents a compiled shader stage.
type Shader struct {
	ShaderID         uint32
	Typ              ShaderType
	UniformLocations map[string]int32
}

// ShaderConfig is used to create new shaders
type ShaderConfig struct {
	Source       string
	Typ          ShaderType
	UniformNames []string
}

// ShaderType tells NewShader what type of shader it's creating.
type ShaderType int

// Types of shaders
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vertex shader"
	case FragmentShaderType:
		return "fragment shader"
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

// NewShader loads and compiles a new shader, but does not attach it to a program.
func NewShader(cfg *ShaderConfig) (*Shader, error) {
	id, err := compileShader(cfg.Source, cfg.Typ)
	if err != nil {
		return nil, err
	}
	uloc := make(map[string]int32)
	for _, un := range cfg.UniformNames {
		uloc[un] = -1
	}
	return &Shader{ShaderID: id, Typ: cfg.Typ, UniformLocations: uloc}, nil
}

func compileShader(src string, typ ShaderType) (uint32, error) {
	var glShaderType uint32
	switch typ {
	case VertexShaderType:
		glShaderType = gl.VERTEX_SHADER
	case FragmentShaderType:
		glShaderType = gl.FRAGMENT_SHADER
	default:
		return 0, fmt.Errorf("%w: unknown %v", ErrShaderCompile, typ)
	}

	shaderID := gl.CreateShader(glShaderType)

	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shaderID, 1, csources, nil)
	free()
	gl.CompileShader(shaderID)

	var status int32
	gl.GetShaderiv(shaderID, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shaderID, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shaderID, logLength, nil, gl.Str(log))
		gl.DeleteShader(shaderID)

		return 0, fmt.Errorf("%w: %v: %v", ErrShaderCompile, typ, strings.TrimRight(log, "\x00\n"))
	}

	return shaderID, nil
}
