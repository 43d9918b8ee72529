// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"

	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/event"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
	"github.com/owsgo/ows/render"
)

// Window is a top-level window of a Display.
type Window struct {
	d        *Display
	w        wm.Window
	title    string
	closed   bool
	handlers Builder
}

// SetTitle sets the window title. It may be called before Show.
func (w *Window) SetTitle(title string) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.w.SetTitle(title); err != nil {
		return err
	}
	w.title = title
	return nil
}

// Title returns the last title set.
func (w *Window) Title() string {
	return w.title
}

// Show applies st, creating the native window the first time. Showing
// the current mode again does nothing. A window cannot be created
// minimized.
func (w *Window) Show(st system.State) error {
	if w.closed {
		return ErrClosed
	}
	if !w.w.Shown() && st.Mode == system.ModeMinimized {
		panic("app: a window cannot be created minimized")
	}
	return w.w.Show(st)
}

// Close destroys the window. Pending events are discarded.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.d.forget(w)
	w.w.Shared().Drain()
	return w.w.Close()
}

// Closed reports whether Close was called.
func (w *Window) Closed() bool {
	return w.closed
}

// Token identifies the window to the render thread. It panics if the
// window was never shown.
func (w *Window) Token() system.Token {
	w.mustBeShown("Token")
	return w.w.Token()
}

// Size returns the last known client size.
func (w *Window) Size() geom.ISize {
	return w.w.Shared().Size
}

// State returns the last known window state.
func (w *Window) State() system.State {
	return w.w.Shared().State
}

// CreateSurface creates a GPU surface for the window from the Display
// instance. The result is meant for render.WindowOpen, which takes
// ownership of the surface. It panics if the window was never shown.
func (w *Window) CreateSurface() (render.WindowInfo, error) {
	w.mustBeShown("CreateSurface")
	size := w.Size()
	s, err := w.d.inst.CreateSurface(w.w.Native(), size)
	if err != nil {
		return render.WindowInfo{}, fmt.Errorf("app: create surface: %w", err)
	}
	return render.WindowInfo{Token: w.w.Token(), Size: size, Surface: s}, nil
}

// RetrieveEvents returns and clears the queued events.
func (w *Window) RetrieveEvents() []event.Event {
	return w.w.Shared().Drain()
}

// Dispatch retrieves the queued events and calls the handlers the
// window was built with. A CloseEvent closes the window unless
// OnClose returns false; events after the close are dropped.
func (w *Window) Dispatch() {
	h := &w.handlers
	for _, e := range w.RetrieveEvents() {
		if w.closed {
			return
		}
		switch e := e.(type) {
		case system.CloseEvent:
			if h.OnClose == nil || h.OnClose(w) {
				w.Close()
			}
		case system.ResizeEvent:
			if h.OnResize != nil {
				h.OnResize(w, e.Size)
			}
		case system.StateEvent:
			if h.OnState != nil {
				h.OnState(w, e.State)
			}
		case key.DownEvent:
			if h.OnKeyDown != nil {
				h.OnKeyDown(w, e)
			}
		case key.UpEvent:
			if h.OnKeyUp != nil {
				h.OnKeyUp(w, e)
			}
		case pointer.EnterEvent, pointer.LeaveEvent, pointer.MoveEvent, pointer.DownEvent, pointer.UpEvent:
			if h.OnMouse != nil {
				h.OnMouse(w, e)
			}
		}
	}
}

func (w *Window) mustBeShown(op string) {
	if !w.w.Shown() {
		panic(fmt.Sprintf("app: %s called before Show", op))
	}
}
