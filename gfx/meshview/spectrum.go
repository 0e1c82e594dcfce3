package meshview

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/peragwin/spectromesh/gfx"
	"github.com/peragwin/spectromesh/gfx/glsl"
	"github.com/peragwin/spectromesh/visual"
	"github.com/peragwin/spectromesh/visual/colortable"
)

// Texture units.
const (
	unitAudio       = 0
	unitSpectrogram = 1
	unitPrev        = 1
)

// spectrumUploader keeps the GPU copy of the packed spectrum. Each generation is uploaded
// once into the next texture of a two texture ring.
type spectrumUploader struct {
	ring       *gfx.TextureRing
	size       image.Point
	format     visual.Format
	generation uint64
}

func (u *spectrumUploader) Upload(t *visual.SpectrumTexture) (*gfx.Texture, error) {
	size := image.Pt(t.Width(), t.Height())
	if u.ring != nil && size == u.size && t.Format == u.format {
		if cur := u.ring.Current(); cur != nil && t.Generation == u.generation {
			return cur, nil
		}
	} else {
		u.Delete()
		ring, err := gfx.NewTextureRing(2,
			gfx.SingleChannel(size.X, size.Y, t.Format == visual.FormatRed))
		if err != nil {
			return nil, err
		}
		u.ring, u.size, u.format = ring, size, t.Format
	}
	tex := u.ring.Upload(t.Pix())
	u.generation = t.Generation
	return tex, nil
}

func (u *spectrumUploader) Current() *gfx.Texture {
	if u.ring == nil {
		return nil
	}
	return u.ring.Current()
}

func (u *spectrumUploader) Delete() {
	if u.ring != nil {
		u.ring.Delete()
		u.ring = nil
	}
}

// uploadColors writes the lookup table and selects the color mode. An empty table
// selects plain mode.
func uploadColors(p *gfx.Program, t colortable.Table) {
	mode := p.UniformLocation("colorMode")
	if len(t) == 0 {
		gl.Uniform1i(mode, glsl.ColorModePlain)
		return
	}
	f := t.Floats()
	gl.Uniform3fv(p.UniformLocation("colorLookupTable"), int32(len(t)), &f[0])
	gl.Uniform1i(mode, glsl.ColorModeLookup)
}

func newProgram(src glsl.Sources, uniforms []string) (*gfx.Program, error) {
	p, err := gfx.NewProgram()
	if err != nil {
		return nil, err
	}
	if err := p.AttachShader(&gfx.ShaderConfig{
		Source: src.Vertex, Typ: gfx.VertexShaderType,
	}); err != nil {
		p.Delete()
		return nil, err
	}
	if err := p.AttachShader(&gfx.ShaderConfig{
		Source: src.Fragment, Typ: gfx.FragmentShaderType, UniformNames: uniforms,
	}); err != nil {
		p.Delete()
		return nil, err
	}
	if err := p.Link(); err != nil {
		p.Delete()
		return nil, err
	}
	return p, nil
}
