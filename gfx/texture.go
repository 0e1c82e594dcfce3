package gfx

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Luminance is the legacy single-channel format, absent from core profile headers.
const Luminance = 0x1909

// TextureConfig is a configuration for creating a new Texture
type TextureConfig struct {
	Width, Height  int
	InternalFormat int32
	Format         uint32
	Type           uint32
	Filter         int32
	// Pix initializes the texture; nil leaves it zeroed by the driver.
	Pix []uint8
}

// Texture is a 2D texture object.
type Texture struct {
	texID uint32
	cfg   TextureConfig
}

// NewTexture allocates a texture and uploads cfg.Pix.
func NewTexture(cfg TextureConfig) (*Texture, error) {
	if cfg.Filter == 0 {
		cfg.Filter = gl.LINEAR
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, cfg.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, cfg.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	// single channel rows are not 4 byte aligned
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	var ptr = gl.Ptr(nil)
	if len(cfg.Pix) > 0 {
		ptr = gl.Ptr(cfg.Pix)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, cfg.InternalFormat,
		int32(cfg.Width), int32(cfg.Height),
		0, cfg.Format, cfg.Type, ptr)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &texID)
		return nil, fmt.Errorf("allocating %dx%d texture: gl error 0x%x", cfg.Width, cfg.Height, e)
	}

	cfg.Pix = nil
	return &Texture{texID: texID, cfg: cfg}, nil
}

// ID is the GL name of the texture.
func (t *Texture) ID() uint32 { return t.texID }

// Size of the texture.
func (t *Texture) Size() image.Point { return image.Pt(t.cfg.Width, t.cfg.Height) }

// Update writes pix over the whole texture.
func (t *Texture) Update(pix []uint8) {
	gl.BindTexture(gl.TEXTURE_2D, t.texID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0,
		int32(t.cfg.Width), int32(t.cfg.Height),
		t.cfg.Format, t.cfg.Type, gl.Ptr(pix))
}

// Bind binds the texture to a texture unit, 0 based.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.texID)
}

// Delete frees the texture.
func (t *Texture) Delete() {
	gl.DeleteTextures(1, &t.texID)
}

// SingleChannel returns a config for a one byte per texel texture, using RED when red is
// set and LUMINANCE otherwise.
func SingleChannel(width, height int, red bool) TextureConfig {
	cfg := TextureConfig{
		Width: width, Height: height,
		InternalFormat: gl.R8,
		Format:         gl.RED,
		Type:           gl.UNSIGNED_BYTE,
	}
	if !red {
		cfg.InternalFormat = Luminance
		cfg.Format = Luminance
	}
	return cfg
}

// TextureRing cycles through a fixed set of same-sized textures so that an upload never
// writes to the texture sampled by the previous draw.
type TextureRing struct {
	textures []*Texture
	next     int
	current  *Texture
}

// NewTextureRing allocates n textures from cfg.
func NewTextureRing(n int, cfg TextureConfig) (*TextureRing, error) {
	r := &TextureRing{}
	for i := 0; i < n; i++ {
		t, err := NewTexture(cfg)
		if err != nil {
			r.Delete()
			return nil, err
		}
		r.textures = append(r.textures, t)
	}
	return r, nil
}

// Upload writes pix into the next texture and makes it current.
func (r *TextureRing) Upload(pix []uint8) *Texture {
	t := r.textures[r.next]
	r.next = (r.next + 1) % len(r.textures)
	t.Update(pix)
	r.current = t
	return t
}

// Current is the most recently uploaded texture, or nil.
func (r *TextureRing) Current() *Texture { return r.current }

// Delete frees every texture in the ring.
func (r *TextureRing) Delete() {
	for _, t := range r.textures {
		t.Delete()
	}
	r.textures = nil
	r.current = nil
}
