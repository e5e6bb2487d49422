package ui

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/jyane/jvb/vb"
)

// Keyboard layout, WASD for the left D-pad, IJKL for the right one.
var keyMap = map[glfw.Key]vb.Button{
	glfw.KeyW: vb.ButtonLeftDPadUp,
	glfw.KeyA: vb.ButtonLeftDPadLeft,
	glfw.KeyS: vb.ButtonLeftDPadDown,
	glfw.KeyD: vb.ButtonLeftDPadRight,
	glfw.KeyI: vb.ButtonRightDPadUp,
	glfw.KeyJ: vb.ButtonRightDPadLeft,
	glfw.KeyK: vb.ButtonRightDPadDown,
	glfw.KeyL: vb.ButtonRightDPadRight,
	glfw.KeyQ: vb.ButtonLeftTrigger,
	glfw.KeyO: vb.ButtonRightTrigger,
	glfw.KeyN: vb.ButtonA,
	glfw.KeyB: vb.ButtonB,
	glfw.KeyG: vb.ButtonStart,
	glfw.KeyF: vb.ButtonSelect,
}

// getKeys gets the state of keyboard.
func getKeys(window *glfw.Window) map[vb.Button]bool {
	keys := make(map[vb.Button]bool, len(keyMap))
	for key, button := range keyMap {
		keys[button] = window.GetKey(key) == glfw.Press
	}
	return keys
}
