package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func key(t uint32, code sdl.Scancode, repeat uint8) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: t, Repeat: repeat, Keysym: sdl.Keysym{Scancode: code}}
}

func TestKeyState(t *testing.T) {
	in := New()
	in.Push(key(sdl.KEYDOWN, sdl.SCANCODE_W, 0))
	in.Push(key(sdl.KEYDOWN, sdl.SCANCODE_W, 1))
	in.Push(key(sdl.KEYDOWN, sdl.SCANCODE_R, 1))

	if !in.IsKeyPressed(sdl.SCANCODE_W) {
		t.Error("W should be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_R) {
		t.Error("repeat counted as press")
	}
	if !in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Error("W should be held")
	}

	in.Push(key(sdl.KEYUP, sdl.SCANCODE_W, 0))
	if in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Error("W still held after release")
	}
}

func TestMouseAndWheel(t *testing.T) {
	in := New()
	in.Push(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 10, XRel: 3, YRel: -2})
	in.Push(&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 13, Y: 8, XRel: 1, YRel: 4})
	in.Push(&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2})
	in.Push(&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1, Direction: sdl.MOUSEWHEEL_FLIPPED})

	if dx, dy := in.MouseDelta(); dx != 4 || dy != 2 {
		t.Errorf("delta = %v,%v, want 4,2", dx, dy)
	}
	if s := in.Scroll(); s != 1 {
		t.Errorf("scroll = %v, want 1", s)
	}
}

func TestResizeAndQuit(t *testing.T) {
	in := New()
	if _, _, ok := in.Resized(); ok {
		t.Error("resize without events")
	}
	in.Push(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 480})
	in.Push(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600})
	in.Push(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED})
	if w, h, ok := in.Resized(); !ok || w != 800 || h != 600 {
		t.Errorf("resized = %d,%d,%v", w, h, ok)
	}
	if len(in.Events()) != 2 {
		t.Errorf("events = %d, want 2", len(in.Events()))
	}
	if !in.Push(&sdl.QuitEvent{Type: sdl.QUIT}) {
		t.Error("quit not reported")
	}
}
