// Package meshview draws the audio-reactive mesh with OpenGL. It owns the window, the
// mesh program and the framebuffer pass that keeps the spectrogram history.
package meshview

import (
	"context"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"

	"github.com/peragwin/spectromesh/gfx"
	"github.com/peragwin/spectromesh/gfx/glsl"
	"github.com/peragwin/spectromesh/visual"
	"github.com/peragwin/spectromesh/visual/colortable"
)

// Config configures a Renderer.
type Config struct {
	Window gfx.WindowConfig
	// Bins sizes the color lookup table array in the shaders.
	Bins   int
	Camera visual.Camera
}

// Frame is the window state handed to the per-frame callback.
type Frame struct {
	Viewport visual.Viewport
	Resized  bool
	Pointer  mgl32.Vec2
}

// Renderer draws the mesh, reading its inputs from a UniformSet.
type Renderer struct {
	ctx      *gfx.Context
	uniforms *visual.UniformSet
	camera   visual.Camera

	spectrum    *spectrumUploader
	history     *HistoryPass
	spectrogram *gfx.RenderTarget
	pointer     mgl32.Vec2
}

// New opens the window and compiles both programs. It must be called on the main
// goroutine with the OS thread locked.
func New(ctx context.Context, cfg Config, uniforms *visual.UniformSet) (*Renderer, error) {
	if cfg.Bins <= 0 {
		return nil, fmt.Errorf("meshview: invalid bins %d", cfg.Bins)
	}
	if cfg.Camera == (visual.Camera{}) {
		cfg.Camera = visual.DefaultCamera()
	}

	src := glsl.Mesh(cfg.Bins)
	c, err := gfx.NewContext(ctx, &cfg.Window, []*gfx.ShaderConfig{
		{Source: src.Vertex, Typ: gfx.VertexShaderType},
		{Source: src.Fragment, Typ: gfx.FragmentShaderType, UniformNames: glsl.MeshUniforms},
	})
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		ctx:      c,
		uniforms: uniforms,
		camera:   cfg.Camera,
		spectrum: &spectrumUploader{},
	}
	if r.history, err = newHistoryPass(cfg.Bins, r.spectrum); err != nil {
		c.Terminate()
		return nil, err
	}

	if _, err := c.AddVertexArrayObject(&gfx.VAOConfig{
		Vertices: visual.PlaneGeometry(2, 2, 1, 1),
		Attributes: []gfx.Attribute{
			{Name: "position", Size: 3},
			{Name: "uv", Size: 2},
			{Name: "normal", Size: 3},
		},
		GLDrawType: gl.TRIANGLES,
		OnDraw:     r.onDraw,
	}); err != nil {
		r.Close()
		return nil, err
	}

	c.Program.Use()
	gl.Uniform1i(c.Program.UniformLocation("colorMode"), glsl.ColorModePlain)
	// values flushed before this program was linked must reach it too
	uniforms.MarkAllDirty()
	return r, nil
}

// Capabilities reports the GL version of the context.
func (r *Renderer) Capabilities() visual.Capabilities {
	v := r.ctx.Version
	return visual.Capabilities{Major: v.Major, Minor: v.Minor, ES: v.ES}
}

// HistoryPass renders the spectrogram for a visual.History.
func (r *Renderer) HistoryPass() *HistoryPass { return r.history }

// Run calls frame once per display refresh until the window closes or the context is
// done. An error from frame skips drawing that frame.
func (r *Renderer) Run(frame func(Frame) error) {
	r.ctx.EventLoop(func(c *gfx.Context) error {
		win := c.Window
		w, h := win.Size()
		x, y := win.CursorPos()
		return frame(Frame{
			Viewport: visual.Viewport{Width: w, Height: h, PixelRatio: win.PixelRatio()},
			Resized:  win.TakeResize(),
			Pointer:  visual.NormalizePointer(x, y, w, h),
		})
	})
}

// Close frees GL resources and closes the window.
func (r *Renderer) Close() {
	r.history.Delete()
	r.spectrum.Delete()
	r.ctx.Terminate()
}

func (r *Renderer) onDraw(c *gfx.Context) bool {
	if err := r.uniforms.Flush(r.upload); err != nil {
		glog.Errorf("meshview: %v", err)
	}

	if tex := r.spectrum.Current(); tex != nil {
		tex.Bind(unitAudio)
	}
	if r.spectrogram != nil {
		r.spectrogram.Texture().Bind(unitSpectrogram)
	}

	p := c.Program
	w, h := c.Window.GlfwWindow.GetFramebufferSize()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	projection := r.camera.Projection(aspect)
	view := r.camera.View()
	model := visual.ModelMatrix(r.pointer)
	gl.UniformMatrix4fv(p.UniformLocation("projection"), 1, false, &projection[0])
	gl.UniformMatrix4fv(p.UniformLocation("view"), 1, false, &view[0])
	gl.UniformMatrix4fv(p.UniformLocation("model"), 1, false, &model[0])
	return true
}

func (r *Renderer) upload(name string, u visual.Uniform) error {
	p := r.ctx.Program
	loc := p.UniformLocation(name)
	switch v := u.Value.(type) {
	case mgl32.Vec2:
		r.pointer = v
		gl.Uniform2f(loc, v[0], v[1])
	case float32:
		gl.Uniform1f(loc, v)
	case *visual.SpectrumTexture:
		if _, err := r.spectrum.Upload(v); err != nil {
			return fmt.Errorf("uniform %s: %w", name, err)
		}
		gl.Uniform1i(loc, unitAudio)
	case *gfx.RenderTarget:
		r.spectrogram = v
		gl.Uniform1i(loc, unitSpectrogram)
	case colortable.Table:
		uploadColors(p, v)
	default:
		return fmt.Errorf("uniform %s: unsupported value %T", name, u.Value)
	}
	return nil
}
