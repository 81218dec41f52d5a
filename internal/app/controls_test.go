package app

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-pbr/internal/engine/camera"
	"github.com/Faultbox/midgard-pbr/internal/engine/input"
)

func press(code sdl.Scancode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: code}}
}

func TestApplyControlsMovement(t *testing.T) {
	tests := []struct {
		name string
		keys []sdl.Scancode
		want mgl32.Vec3
	}{
		{"forward", []sdl.Scancode{sdl.SCANCODE_W}, mgl32.Vec3{0, 0, 2}},
		{"strafe", []sdl.Scancode{sdl.SCANCODE_D}, mgl32.Vec3{1, 0, 3}},
		{"up", []sdl.Scancode{sdl.SCANCODE_SPACE}, mgl32.Vec3{0, 1, 3}},
		{"opposite keys cancel", []sdl.Scancode{sdl.SCANCODE_A, sdl.SCANCODE_D}, mgl32.Vec3{0, 0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input.New()
			for _, k := range tt.keys {
				in.Push(press(k))
			}
			cam := camera.NewFlyCamera(mgl32.Vec3{0, 0, 3})
			cam.MovementSpeed = 1
			if actions := applyControls(in, cam, 1); len(actions) != 0 {
				t.Errorf("actions = %v", actions)
			}
			if !cam.Position.ApproxEqualThreshold(tt.want, 1e-5) {
				t.Errorf("position = %v, want %v", cam.Position, tt.want)
			}
		})
	}
}

func TestApplyControlsLookAndZoom(t *testing.T) {
	in := input.New()
	in.Push(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 100, YRel: -50})
	in.Push(&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 5})

	cam := camera.NewFlyCamera(mgl32.Vec3{})
	applyControls(in, cam, 0)
	if cam.Yaw != -80 || cam.Pitch != 5 {
		t.Errorf("yaw/pitch = %v/%v, want -80/5", cam.Yaw, cam.Pitch)
	}
	if cam.Zoom != 40 {
		t.Errorf("zoom = %v, want 40", cam.Zoom)
	}
}

func TestApplyControlsActions(t *testing.T) {
	in := input.New()
	in.Push(press(sdl.SCANCODE_R))
	in.Push(press(sdl.SCANCODE_F12))
	in.Push(press(sdl.SCANCODE_ESCAPE))

	got := applyControls(in, camera.NewFlyCamera(mgl32.Vec3{}), 0)
	want := []Action{ActionQuit, ActionScreenshot, ActionReload}
	if !slices.Equal(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
}
