// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/event"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/system"
)

// Builder describes a window and the handlers Window.Dispatch calls.
// Nil handlers ignore their events.
type Builder struct {
	Title string
	// State is the initial state. The zero State is Normal with a
	// platform chosen size.
	State system.State

	// OnClose is called for a close request. Returning false keeps
	// the window open. A nil OnClose closes the window.
	OnClose   func(w *Window) bool
	OnResize  func(w *Window, size geom.ISize)
	OnState   func(w *Window, st system.State)
	OnKeyDown func(w *Window, e key.DownEvent)
	OnKeyUp   func(w *Window, e key.UpEvent)
	// OnMouse receives the pointer package events.
	OnMouse func(w *Window, e event.Event)
}

// Open creates and shows the window on d.
func (b Builder) Open(d *Display) (*Window, error) {
	w, err := d.CreateWindow()
	if err != nil {
		return nil, err
	}
	w.handlers = b
	if b.Title != "" {
		if err := w.SetTitle(b.Title); err != nil {
			w.Close()
			return nil, err
		}
	}
	if err := w.Show(b.State); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}
