package gfx

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is a framebuffer object with a single RGBA color texture.
type RenderTarget struct {
	fbo     uint32
	texture *Texture
}

// NewRenderTarget allocates a cleared render target. It fails if the driver cannot
// allocate the texture or reports the framebuffer incomplete.
func NewRenderTarget(size image.Point) (*RenderTarget, error) {
	var maxSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)
	if size.X > int(maxSize) || size.Y > int(maxSize) {
		return nil, fmt.Errorf("render target %v exceeds GL_MAX_TEXTURE_SIZE %d", size, maxSize)
	}

	tex, err := NewTexture(TextureConfig{
		Width: size.X, Height: size.Y,
		InternalFormat: gl.RGBA8,
		Format:         gl.RGBA,
		Type:           gl.UNSIGNED_BYTE,
	})
	if err != nil {
		return nil, err
	}

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex.ID(), 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fbo)
		tex.Delete()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.Viewport(0, 0, int32(size.X), int32(size.Y))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return &RenderTarget{fbo: fbo, texture: tex}, nil
}

// Size of the color attachment.
func (r *RenderTarget) Size() image.Point { return r.texture.Size() }

// Texture is the color attachment.
func (r *RenderTarget) Texture() *Texture { return r.texture }

// Bind directs drawing into the target and sets the viewport to its size.
func (r *RenderTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	s := r.Size()
	gl.Viewport(0, 0, int32(s.X), int32(s.Y))
}

// Unbind restores the default framebuffer.
func (r *RenderTarget) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Delete frees the framebuffer and its texture.
func (r *RenderTarget) Delete() {
	gl.DeleteFramebuffers(1, &r.fbo)
	r.texture.Delete()
}
