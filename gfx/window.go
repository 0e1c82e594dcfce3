package gfx

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	openglVersionMajor = 4
	openglVersionMinor = 1
)

// Window represents a wrapped glfw window object.
type Window struct {
	Config     *WindowConfig
	GlfwWindow *glfw.Window

	resized bool
}

// WindowConfig contains a new window configuration
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// NewWindow initializes a new window object with glfw.
func NewWindow(cfg *WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, openglVersionMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, openglVersionMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	w := &Window{Config: cfg, GlfwWindow: window, resized: true}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized = true
	})
	window.SetKeyCallback(func(gw *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.SetShouldClose(true)
		}
	})
	return w, nil
}

// Size is the window size in screen coordinates.
func (w *Window) Size() (width, height int) {
	return w.GlfwWindow.GetSize()
}

// PixelRatio is framebuffer pixels per screen coordinate.
func (w *Window) PixelRatio() float64 {
	ww, _ := w.GlfwWindow.GetSize()
	fw, _ := w.GlfwWindow.GetFramebufferSize()
	if ww == 0 {
		return 1
	}
	return float64(fw) / float64(ww)
}

// TakeResize reports whether the framebuffer changed size since the last call.
func (w *Window) TakeResize() bool {
	r := w.resized
	w.resized = false
	return r
}

// CursorPos is the cursor position in screen coordinates from the top left.
func (w *Window) CursorPos() (x, y float64) {
	return w.GlfwWindow.GetCursorPos()
}
