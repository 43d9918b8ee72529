// SPDX-License-Identifier: Unlicense OR MIT

package main

// hello opens a window, clears it in a color that follows the
// pointer and exits when the window is closed or Escape is pressed.

import (
	"log"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/owsgo/ows/app"
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/event"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
	"github.com/owsgo/ows/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	d, err := app.Open()
	if err != nil {
		return err
	}
	defer d.Close()

	color := gputypes.Color{R: 0.5, G: 0, B: 0, A: 1}
	dirty := true
	quit := false
	var th *render.Thread
	w, err := app.Builder{
		Title: "Hello, ows",
		State: system.NormalSize(800, 600),
		// The surface must be released before the native window goes.
		OnClose: func(w *app.Window) bool {
			quit = true
			return false
		},
		OnResize: func(w *app.Window, size geom.ISize) {
			if th != nil {
				th.Send(render.WindowResize{Token: w.Token(), Size: size})
			}
			dirty = true
		},
		OnKeyDown: func(w *app.Window, e key.DownEvent) {
			switch e.Sym {
			case key.SymEscape:
				quit = true
			case key.SymF(11):
				toggleFullscreen(w)
			}
		},
		OnMouse: func(w *app.Window, e event.Event) {
			size := w.Size()
			if e, ok := e.(pointer.MoveEvent); ok && !size.Empty() {
				color.G = float64(e.Pos.X) / float64(size.W)
				color.B = float64(e.Pos.Y) / float64(size.H)
				dirty = true
			}
		},
	}.Open(d)
	if err != nil {
		return err
	}
	info, err := w.CreateSurface()
	if err != nil {
		return err
	}
	tok := w.Token()
	th = render.Start(d.Instance(), []render.WindowInfo{info})

	for !quit {
		if err := d.CollectEvents(); err != nil {
			return err
		}
		w.Dispatch()
		if dirty {
			c := color
			th.Send(render.FrameMsg{Frame: render.Frame{
				Window:     tok,
				Viewport:   geom.RectFromSize(w.Size()),
				ClearColor: &c,
			}})
			dirty = false
		}
		time.Sleep(10 * time.Millisecond)
	}
	done := make(chan struct{})
	th.Send(render.WindowClose{Token: tok, Done: done})
	<-done
	w.Close()
	th.Send(render.Exit{})
	return th.Join()
}

func toggleFullscreen(w *app.Window) {
	st := system.Fullscreen()
	if w.State().Mode == system.ModeFullscreen {
		st = system.Normal()
	}
	if err := w.Show(st); err != nil {
		log.Printf("hello: %v", err)
	}
}
