package meshview

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/peragwin/spectromesh/gfx"
	"github.com/peragwin/spectromesh/gfx/glsl"
	"github.com/peragwin/spectromesh/visual"
	"github.com/peragwin/spectromesh/visual/colortable"
)

var fullscreenQuad = []float32{
	-1, -1, 1, -1, 1, 1,
	-1, -1, 1, 1, -1, 1,
}

// HistoryPass renders the spectrogram history into framebuffer objects. It implements
// visual.Pass.
type HistoryPass struct {
	program  *gfx.Program
	quad     *gfx.VertexArrayObject
	spectrum *spectrumUploader

	colors colortable.Table
	tinted bool
}

func newHistoryPass(bins int, spectrum *spectrumUploader) (*HistoryPass, error) {
	p, err := newProgram(glsl.Scroll(bins), glsl.ScrollUniforms)
	if err != nil {
		return nil, fmt.Errorf("history program: %w", err)
	}
	quad, err := gfx.NewVertexArrayObject(p, &gfx.VAOConfig{
		Vertices:   fullscreenQuad,
		Attributes: []gfx.Attribute{{Name: "position", Size: 2}},
		GLDrawType: gl.TRIANGLES,
	})
	if err != nil {
		p.Delete()
		return nil, err
	}
	return &HistoryPass{program: p, quad: quad, spectrum: spectrum}, nil
}

// Allocate creates a cleared render target.
func (p *HistoryPass) Allocate(size image.Point) (visual.Target, error) {
	return gfx.NewRenderTarget(size)
}

// Release frees a target created by Allocate.
func (p *HistoryPass) Release(t visual.Target) {
	if rt, ok := t.(*gfx.RenderTarget); ok {
		rt.Delete()
	}
}

// Render scrolls prev into dst by one row and draws the newest spectrum in row 0.
func (p *HistoryPass) Render(dst, prev visual.Target, scene visual.Scene) error {
	d, ok := dst.(*gfx.RenderTarget)
	if !ok {
		return fmt.Errorf("unexpected target %T", dst)
	}
	s, ok := prev.(*gfx.RenderTarget)
	if !ok {
		return fmt.Errorf("unexpected target %T", prev)
	}

	d.Bind()
	defer d.Unbind()
	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	p.program.Use()
	s.Texture().Bind(unitPrev)
	gl.Uniform1i(p.program.UniformLocation("tPrev"), unitPrev)

	var hasAudio int32
	if scene.Spectrum != nil {
		tex, err := p.spectrum.Upload(scene.Spectrum)
		if err != nil {
			return err
		}
		tex.Bind(unitAudio)
		gl.Uniform1i(p.program.UniformLocation("tAudioData"), unitAudio)
		hasAudio = 1
	}
	gl.Uniform1i(p.program.UniformLocation("hasAudio"), hasAudio)

	if !p.tinted || !sameColors(p.colors, scene.Colors) {
		uploadColors(p.program, scene.Colors)
		p.colors, p.tinted = scene.Colors, true
	}

	p.quad.Draw(nil)

	if e := gl.GetError(); e == gl.OUT_OF_MEMORY {
		return fmt.Errorf("%w: out of memory", visual.ErrAllocation)
	}
	return nil
}

// Delete frees the program and quad.
func (p *HistoryPass) Delete() {
	p.quad.Delete()
	p.program.Delete()
}

func sameColors(a, b colortable.Table) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
