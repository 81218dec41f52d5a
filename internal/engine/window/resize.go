package window

import "slices"

// ResizeListener is notified when the drawable size changes.
type ResizeListener interface {
	OnResize(width, height int)
}

// ResizeFunc adapts a function to ResizeListener.
type ResizeFunc func(width, height int)

func (f ResizeFunc) OnResize(width, height int) { f(width, height) }

// Listeners is an ordered set of resize listeners.
type Listeners struct {
	list []ResizeListener
}

// Add registers l. Adding the same listener twice has no effect.
func (ls *Listeners) Add(l ResizeListener) {
	if l == nil || slices.Contains(ls.list, l) {
		return
	}
	ls.list = append(ls.list, l)
}

// Remove unregisters l.
func (ls *Listeners) Remove(l ResizeListener) {
	if i := slices.Index(ls.list, l); i >= 0 {
		ls.list = slices.Delete(ls.list, i, i+1)
	}
}

// Notify calls every listener in registration order.
func (ls *Listeners) Notify(width, height int) {
	for _, l := range ls.list {
		l.OnResize(width, height)
	}
}

// Len returns the number of registered listeners.
func (ls *Listeners) Len() int { return len(ls.list) }
