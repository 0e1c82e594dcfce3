package gfx

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/golang/glog"
)

// Program represents an OpenGL program.
type Program struct {
	ProgramID uint32
	Shaders   []*Shader

	uniforms map[string]int32
}

// NewProgram creates a new Program
func NewProgram() (*Program, error) {
	prog := gl.CreateProgram()
	if prog == 0 {
		return nil, fmt.Errorf("no programs available")
	}
	return &Program{
		ProgramID: prog,
		Shaders:   []*Shader{},
		uniforms:  make(map[string]int32),
	}, nil
}

// AttachShader compiles and attaches a shader, deferring linking so that calls can be
// chained together and finished with a call to Link()
func (p *Program) AttachShader(cfg *ShaderConfig) error {
	shader, err := NewShader(cfg)
	if err != nil {
		return err
	}
	p.Shaders = append(p.Shaders, shader)
	gl.AttachShader(p.ProgramID, shader.ShaderID)

	return nil
}

// Link links the program and retrieves all uniform locations. Uniforms the driver
// optimized away get location -1, which GL ignores on upload.
func (p *Program) Link() error {
	gl.LinkProgram(p.ProgramID)

	var status int32
	gl.GetProgramiv(p.ProgramID, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.ProgramID, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p.ProgramID, logLength, nil, gl.Str(log))
		return fmt.Errorf("%w: link: %v", ErrShaderCompile, strings.TrimRight(log, "\x00\n"))
	}

	for _, sh := range p.Shaders {
		for uname := range sh.UniformLocations {
			uloc := gl.GetUniformLocation(p.ProgramID, gl.Str(uname+"\x00"))
			if uloc == -1 {
				glog.V(1).Infof("gfx: uniform %q is not active in the program", uname)
			}
			sh.UniformLocations[uname] = uloc
			p.uniforms[uname] = uloc
		}
		// shaders are no longer needed once linked
		gl.DetachShader(p.ProgramID, sh.ShaderID)
		gl.DeleteShader(sh.ShaderID)
	}

	return nil
}

// UniformLocation returns the location of a uniform declared in a ShaderConfig.
func (p *Program) UniformLocation(name string) int32 {
	uloc, ok := p.uniforms[name]
	if !ok {
		panic("unknown uniform name: " + name)
	}
	return uloc
}

// AttributeLocation looks up a vertex attribute, returning -1 if it is not active.
func (p *Program) AttributeLocation(name string) int32 {
	return gl.GetAttribLocation(p.ProgramID, gl.Str(name+"\x00"))
}

// Use makes the program current.
func (p *Program) Use() { gl.UseProgram(p.ProgramID) }

// Delete frees the program.
func (p *Program) Delete() { gl.DeleteProgram(p.ProgramID) }
