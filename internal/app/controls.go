package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-pbr/internal/engine/camera"
)

// Action is a one-shot command triggered by a key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionScreenshot
	ActionReload
	ActionOpen
)

// Keys is the part of input.Input the controls read.
type Keys interface {
	IsKeyPressed(sdl.Scancode) bool
	IsKeyHeld(sdl.Scancode) bool
	MouseDelta() (dx, dy float32)
	Scroll() float32
}

var movementKeys = []struct {
	key sdl.Scancode
	dir camera.Movement
}{
	{sdl.SCANCODE_W, camera.Forward},
	{sdl.SCANCODE_S, camera.Backward},
	{sdl.SCANCODE_A, camera.Left},
	{sdl.SCANCODE_D, camera.Right},
	{sdl.SCANCODE_SPACE, camera.Up},
	{sdl.SCANCODE_LCTRL, camera.Down},
}

var actionKeys = []struct {
	key    sdl.Scancode
	action Action
}{
	{sdl.SCANCODE_ESCAPE, ActionQuit},
	{sdl.SCANCODE_F12, ActionScreenshot},
	{sdl.SCANCODE_R, ActionReload},
	{sdl.SCANCODE_O, ActionOpen},
}

// applyControls moves cam from held keys, mouse motion and the wheel, and
// returns the actions pressed this frame in binding order.
func applyControls(keys Keys, cam *camera.FlyCamera, dt float32) []Action {
	for _, m := range movementKeys {
		if keys.IsKeyHeld(m.key) {
			cam.ProcessKeyboard(m.dir, dt)
		}
	}
	if dx, dy := keys.MouseDelta(); dx != 0 || dy != 0 {
		cam.ProcessMouse(dx, dy)
	}
	if s := keys.Scroll(); s != 0 {
		cam.ProcessScroll(s)
	}

	var actions []Action
	for _, a := range actionKeys {
		if keys.IsKeyPressed(a.key) {
			actions = append(actions, a.action)
		}
	}
	return actions
}
