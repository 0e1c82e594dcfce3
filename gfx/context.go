// Package gfx wraps the OpenGL and glfw calls used by the renderer.
package gfx

import (
	"context"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/peragwin/spectromesh/gfx/glsl"
)

// Context is a context for doing opengl graphics
type Context struct {
	Window  *Window
	Program *Program
	Version glsl.Version

	vaos []*VertexArrayObject
	ctx  context.Context
}

// NewContext opens a window, loads GL and links a program from shaderConfigs. It must be
// called from the main goroutine with the OS thread locked.
func NewContext(ctx context.Context,
	windowConfig *WindowConfig, shaderConfigs []*ShaderConfig) (*Context, error) {
	window, err := NewWindow(windowConfig)
	if err != nil {
		return nil, err
	}

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, err
	}
	vs := gl.GoStr(gl.GetString(gl.VERSION))
	glog.Infof("gfx: OpenGL version %s", vs)
	version, err := glsl.ParseVersion(vs)
	if err != nil {
		glog.Warningf("gfx: %v, assuming %d.%d", err, openglVersionMajor, openglVersionMinor)
		version = glsl.Version{Major: openglVersionMajor, Minor: openglVersionMinor}
	}

	program, err := NewProgram()
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	for _, cfg := range shaderConfigs {
		if err := program.AttachShader(cfg); err != nil {
			glfw.Terminate()
			return nil, err
		}
	}
	if err := program.Link(); err != nil {
		glfw.Terminate()
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)

	return &Context{
		Window:  window,
		Program: program,
		Version: version,
		ctx:     ctx,
	}, nil
}

// EventLoop clears the default framebuffer and executes render then Draw in a loop until
// the window closes or ctx is done. A render error skips drawing that frame.
func (c *Context) EventLoop(render func(*Context) error) {

	// OpenGL requires that rendering functions be called from the main thread
	runtime.LockOSThread()

	for !c.Window.GlfwWindow.ShouldClose() {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		if err := render(c); err != nil {
			glog.Errorf("gfx: frame skipped: %v", err)
		} else {
			c.BindDefaultFramebuffer()
			gl.ClearColor(0, 0, 0, 1)
			gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
			c.Program.Use()
			c.Draw()
		}

		glfw.PollEvents()
		c.Window.GlfwWindow.SwapBuffers()
	}
}

// BindDefaultFramebuffer targets the window and resets the viewport to it.
func (c *Context) BindDefaultFramebuffer() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	w, h := c.Window.GlfwWindow.GetFramebufferSize()
	gl.Viewport(0, 0, int32(w), int32(h))
}

// Draw draws every VAO that's attached to the context.
func (c *Context) Draw() {
	for _, v := range c.vaos {
		v.Draw(c)
	}
}

// Terminate frees GL objects and ends the glfw session
func (c *Context) Terminate() {
	for _, v := range c.vaos {
		v.Delete()
	}
	c.Program.Delete()
	glfw.Terminate()
}

// AddVertexArrayObject creates a VAO and draws it every frame.
func (c *Context) AddVertexArrayObject(cfg *VAOConfig) (*VertexArrayObject, error) {
	vao, err := NewVertexArrayObject(c.Program, cfg)
	if err != nil {
		return nil, err
	}
	c.vaos = append(c.vaos, vao)
	return vao, nil
}
