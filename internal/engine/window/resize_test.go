package window

import "testing"

type sizeRecorder struct {
	calls [][2]int
}

func (r *sizeRecorder) OnResize(w, h int) { r.calls = append(r.calls, [2]int{w, h}) }

func TestListeners(t *testing.T) {
	var ls Listeners
	a, b := &sizeRecorder{}, &sizeRecorder{}
	var order []string

	ls.Add(a)
	ls.Add(a)
	ls.Add(b)
	ls.Add(nil)
	ls.Add(ResizeFunc(func(w, h int) { order = append(order, "func") }))
	if ls.Len() != 3 {
		t.Fatalf("len = %d, want 3", ls.Len())
	}

	ls.Notify(800, 600)
	if len(a.calls) != 1 || a.calls[0] != [2]int{800, 600} {
		t.Errorf("a calls = %v", a.calls)
	}
	if len(order) != 1 {
		t.Errorf("func listener calls = %d", len(order))
	}

	ls.Remove(a)
	ls.Remove(a)
	ls.Notify(1024, 768)
	if len(a.calls) != 1 {
		t.Error("removed listener was notified")
	}
	if len(b.calls) != 2 || b.calls[1] != [2]int{1024, 768} {
		t.Errorf("b calls = %v", b.calls)
	}
}
