package ui

import (
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/jyane/jvb/vb"
)

// The VIP draws a frame every 20ms.
const (
	framePeriod = 20 * time.Millisecond
	frameCycles = vb.CPUFrequency / 50
)

func mainLoop(window *glfw.Window, console *vb.VirtualBoy, screen *screen, audio vb.AudioSink) error {
	for range time.Tick(framePeriod) {
		if _, _, err := console.StepCycles(frameCycles, screen, audio); err != nil {
			return err
		}
		// Here will be executed (almost) 50 times per second.
		if screen.ready {
			screen.draw()
			window.SwapBuffers()
		}
		glfw.PollEvents()
		console.GamePad().Set(getKeys(window))
		if window.ShouldClose() {
			return nil
		}
	}
	return nil
}

// Start is the main entrypoint, it returns once the window is closed.
func Start(console *vb.VirtualBoy, width int, height int, format vb.PixelFormat, gamma bool, audio vb.AudioSink) {
	err := glfw.Init()
	if err != nil {
		glog.Fatalln(err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, "JVB", nil, nil)
	if err != nil {
		glog.Fatalln(err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glog.Fatalln(err)
	}
	screen, err := newScreen(format, gamma)
	if err != nil {
		glog.Fatalln(err)
	}
	defer screen.delete()
	if err := mainLoop(window, console, screen, audio); err != nil {
		glog.Errorf("Emulation stopped: %v", err)
	}
}
