package gfx

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/golang/glog"
)

// Attribute is one interleaved vertex attribute.
type Attribute struct {
	Name string
	Size int32
}

// VertexArrayObject points to a vertex buffer that has already been
// loaded into graphics memory.
type VertexArrayObject struct {
	vaoID      uint32
	vboID      uint32
	length     int32
	glDrawType uint32
	onDraw     func(ctx *Context) bool
}

// VAOConfig represents a configuration for creating a new VAO. Vertices are interleaved
// in Attributes order. OnDraw is a function that returns true if the VAO should be drawn,
// but can also be used to set uniforms.
type VAOConfig struct {
	Vertices   []float32
	Attributes []Attribute
	GLDrawType uint32
	OnDraw     func(ctx *Context) bool
}

// NewVertexArrayObject creates a VertexArrayObject bound to the program's attributes.
func NewVertexArrayObject(p *Program, cfg *VAOConfig) (*VertexArrayObject, error) {
	var stride int32
	for _, a := range cfg.Attributes {
		stride += a.Size
	}
	if stride == 0 || len(cfg.Vertices)%int(stride) != 0 {
		return nil, errors.New("invalid length for vertices must be multiple of stride")
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(cfg.Vertices), gl.Ptr(cfg.Vertices), gl.STATIC_DRAW)

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var offset int32
	for _, a := range cfg.Attributes {
		loc := p.AttributeLocation(a.Name)
		if loc < 0 {
			glog.Warningf("gfx: attribute %q is not active in the program", a.Name)
		} else {
			gl.EnableVertexAttribArray(uint32(loc))
			gl.VertexAttribPointer(uint32(loc), a.Size, gl.FLOAT, false,
				4*stride, gl.PtrOffset(int(4*offset)))
		}
		offset += a.Size
	}

	gl.BindVertexArray(0)

	return &VertexArrayObject{
		vaoID:      vao,
		vboID:      vbo,
		length:     int32(len(cfg.Vertices)) / stride,
		glDrawType: cfg.GLDrawType,
		onDraw:     cfg.OnDraw,
	}, nil
}

// Draw draws a VertexArrayObject to the current frame buffer
func (v *VertexArrayObject) Draw(ctx *Context) {
	gl.BindVertexArray(v.vaoID)
	if v.onDraw != nil {
		if !v.onDraw(ctx) {
			return
		}
	}
	gl.DrawArrays(v.glDrawType, 0, v.length)
}

// Delete frees the buffers.
func (v *VertexArrayObject) Delete() {
	gl.DeleteVertexArrays(1, &v.vaoID)
	gl.DeleteBuffers(1, &v.vboID)
}
