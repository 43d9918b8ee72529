// SPDX-License-Identifier: Unlicense OR MIT

// Package xcb implements the X11 driver on top of the pure Go XGB
// protocol bindings.
package xcb

import (
	"errors"
	"fmt"
	"log"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/owsgo/ows/app/internal/keymap"
	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
)

// EWMH state atoms.
const (
	netMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	netMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	netFullscreen = "_NET_WM_STATE_FULLSCREEN"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
)

// server is the subset of the X server used by the driver.
type server interface {
	// Screen returns the root window size.
	Screen() geom.ISize
	Atom(name string) (xproto.Atom, error)
	// CreateWindow creates an unmapped top level window selecting the
	// driver's events and participating in WM_DELETE_WINDOW.
	CreateWindow(r geom.IRect) (xproto.Window, error)
	DestroyWindow(w xproto.Window) error
	MapWindow(w xproto.Window) error
	ResizeWindow(w xproto.Window, size geom.ISize) error
	SetTitle(w xproto.Window, title string) error
	// SetInitialState sets _NET_WM_STATE on an unmapped window.
	SetInitialState(w xproto.Window, atoms []string) error
	// ChangeState asks the window manager to add or remove states.
	ChangeState(w xproto.Window, add bool, atoms ...string) error
	Iconify(w xproto.Window) error
	// State reads the window state back from WM_STATE and
	// _NET_WM_STATE.
	State(w xproto.Window) (system.Mode, error)
	Keysym(code xproto.Keycode, column byte) xproto.Keysym
	// Poll returns the next queued event, or nil.
	Poll() (xgb.Event, error)
	Close()
}

type Display struct {
	srv     server
	windows map[xproto.Window]*window
	pointed wm.Focus[xproto.Window]

	wmProtocols    xproto.Atom
	wmDeleteWindow xproto.Atom
	wmState        xproto.Atom
	netWMState     xproto.Atom
}

type window struct {
	d       *Display
	id      xproto.Window
	created bool
	closed  bool
	title   string
	shared  wm.Shared
}

// Open connects to the X server named by $DISPLAY.
func Open() (*Display, error) {
	srv, err := dial()
	if err != nil {
		return nil, err
	}
	d, err := newDisplay(srv)
	if err != nil {
		srv.Close()
		return nil, err
	}
	return d, nil
}

func newDisplay(srv server) (*Display, error) {
	d := &Display{
		srv:     srv,
		windows: make(map[xproto.Window]*window),
	}
	atoms := []struct {
		name string
		atom *xproto.Atom
	}{
		{"WM_PROTOCOLS", &d.wmProtocols},
		{"WM_DELETE_WINDOW", &d.wmDeleteWindow},
		{"WM_STATE", &d.wmState},
		{"_NET_WM_STATE", &d.netWMState},
	}
	for _, a := range atoms {
		v, err := srv.Atom(a.name)
		if err != nil {
			return nil, fmt.Errorf("xcb: intern %s: %w", a.name, err)
		}
		*a.atom = v
	}
	return d, nil
}

func (d *Display) Name() string { return "x11" }

func (d *Display) NewWindow() (wm.Window, error) {
	return &window{d: d}, nil
}

func (d *Display) CollectEvents() error {
	for {
		ev, err := d.srv.Poll()
		if err != nil {
			// Errors of unchecked requests arrive on the event queue.
			log.Printf("xcb: %v", err)
			continue
		}
		if ev == nil {
			return nil
		}
		d.handle(ev)
	}
}

func (d *Display) Close() error {
	for _, w := range d.windows {
		w.Close()
	}
	d.srv.Close()
	return nil
}

func (d *Display) handle(ev xgb.Event) {
	switch ev := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if w := d.windows[ev.Window]; w != nil {
			w.shared.Rect = geom.IRect{X: int32(ev.X), Y: int32(ev.Y), W: int32(ev.Width), H: int32(ev.Height)}
			w.shared.Resize(geom.ISize{W: int32(ev.Width), H: int32(ev.Height)})
		}
	case xproto.ClientMessageEvent:
		w := d.windows[ev.Window]
		if w == nil || ev.Type != d.wmProtocols || ev.Format != 32 {
			return
		}
		if xproto.Atom(ev.Data.Data32[0]) == d.wmDeleteWindow {
			w.shared.Close()
		}
	case xproto.PropertyNotifyEvent:
		w := d.windows[ev.Window]
		if w == nil || (ev.Atom != d.wmState && ev.Atom != d.netWMState) {
			return
		}
		mode, err := d.srv.State(ev.Window)
		if err != nil {
			return
		}
		st := system.State{Mode: mode}
		if mode == system.ModeNormal {
			st.Size = w.shared.State.Size
		}
		w.shared.SetState(st)
	case xproto.EnterNotifyEvent:
		w := d.windows[ev.Event]
		if w == nil {
			return
		}
		if prev, ok := d.pointed.Enter(ev.Event); ok {
			if pw := d.windows[prev]; pw != nil {
				pw.shared.Leave(pw.shared.Pos)
			}
		}
		w.shared.Mods = keymap.Reconcile(w.shared.Mods, uint32(ev.State))
		w.shared.Enter(geom.Pt(float32(ev.EventX), float32(ev.EventY)))
	case xproto.LeaveNotifyEvent:
		w := d.windows[ev.Event]
		if w == nil || !d.pointed.Leave(ev.Event) {
			return
		}
		w.shared.Leave(geom.Pt(float32(ev.EventX), float32(ev.EventY)))
	case xproto.MotionNotifyEvent:
		if cur, ok := d.pointed.Get(); !ok || cur != ev.Event {
			return
		}
		w := d.windows[ev.Event]
		w.shared.Mods = keymap.Reconcile(w.shared.Mods, uint32(ev.State))
		w.shared.Move(geom.Pt(float32(ev.EventX), float32(ev.EventY)))
	case xproto.ButtonPressEvent:
		d.button(xproto.ButtonPressEvent(ev), true)
	case xproto.ButtonReleaseEvent:
		d.button(xproto.ButtonPressEvent(ev), false)
	case xproto.KeyPressEvent:
		d.key(ev, true)
	case xproto.KeyReleaseEvent:
		d.key(xproto.KeyPressEvent(ev), false)
	case xproto.DestroyNotifyEvent:
		delete(d.windows, ev.Window)
		d.pointed.Leave(ev.Window)
	}
}

func (d *Display) button(ev xproto.ButtonPressEvent, press bool) {
	w := d.windows[ev.Event]
	if w == nil {
		return
	}
	var btn pointer.Button
	switch ev.Detail {
	case xproto.ButtonIndex1:
		btn = pointer.ButtonLeft
	case xproto.ButtonIndex2:
		btn = pointer.ButtonMiddle
	case xproto.ButtonIndex3:
		btn = pointer.ButtonRight
	case xproto.ButtonIndex4, xproto.ButtonIndex5, 6, 7:
		// Scroll wheel.
		return
	default:
		log.Printf("xcb: unknown mouse button %d", ev.Detail)
		return
	}
	w.shared.Mods = keymap.Reconcile(w.shared.Mods, uint32(ev.State))
	w.shared.Pos = geom.Pt(float32(ev.EventX), float32(ev.EventY))
	if press {
		w.shared.ButtonDown(btn)
	} else {
		w.shared.ButtonUp(btn)
	}
}

func (d *Display) key(ev xproto.KeyPressEvent, press bool) {
	w := d.windows[ev.Event]
	if w == nil {
		return
	}
	code := keymap.Evdev(uint32(ev.Detail) - 8)
	if code == key.CodeUnknown {
		log.Printf("xcb: unknown keycode %d", ev.Detail)
	}
	w.shared.Mods = keymap.Reconcile(w.shared.Mods, uint32(ev.State))
	var col byte
	if ev.State&xproto.ModMaskShift != 0 {
		col = 1
	}
	ks := d.srv.Keysym(ev.Detail, col)
	if ks == 0 && col == 1 {
		ks = d.srv.Keysym(ev.Detail, 0)
	}
	mods := w.shared.Mods | key.ModFor(code)
	sym, text := convertKeysym(ks, mods)
	if sym == key.SymUnknown {
		sym, _ = keymap.US(code, mods)
	}
	if press {
		w.shared.KeyDown(sym, code, text)
	} else {
		w.shared.KeyUp(sym, code)
	}
}

func (w *window) SetTitle(title string) error {
	if w.closed {
		return errors.New("xcb: window closed")
	}
	w.title = title
	if !w.created {
		return nil
	}
	return w.d.srv.SetTitle(w.id, title)
}

func (w *window) Show(st system.State) error {
	if w.closed {
		return errors.New("xcb: window closed")
	}
	if !w.created {
		return w.create(st)
	}
	cur := w.shared.State
	if st == cur {
		return nil
	}
	if cur.SameMode(st) && (st.Mode != system.ModeNormal || st.Size.Empty() || st.Size == w.shared.Size) {
		return nil
	}
	srv := w.d.srv
	var err error
	switch cur.Mode {
	case system.ModeMaximized:
		err = srv.ChangeState(w.id, false, netMaxHorz, netMaxVert)
	case system.ModeFullscreen:
		err = srv.ChangeState(w.id, false, netFullscreen)
	case system.ModeMinimized:
		err = srv.MapWindow(w.id)
	}
	if err != nil {
		return fmt.Errorf("xcb: leave %v: %w", cur.Mode, err)
	}
	switch st.Mode {
	case system.ModeNormal:
		if !st.Size.Empty() {
			err = srv.ResizeWindow(w.id, st.Size)
		}
	case system.ModeMaximized:
		err = srv.ChangeState(w.id, true, netMaxHorz, netMaxVert)
	case system.ModeFullscreen:
		err = srv.ChangeState(w.id, true, netFullscreen)
	case system.ModeMinimized:
		err = srv.Iconify(w.id)
	}
	if err != nil {
		return fmt.Errorf("xcb: enter %v: %w", st.Mode, err)
	}
	w.shared.State = st
	return nil
}

func (w *window) create(st system.State) error {
	srv := w.d.srv
	size := geom.ISize{W: defaultWidth, H: defaultHeight}
	if st.Mode == system.ModeNormal && !st.Size.Empty() {
		size = st.Size
	}
	scr := srv.Screen()
	r := geom.IRect{
		X: max(0, (scr.W-size.W)/2),
		Y: max(0, (scr.H-size.H)/2),
		W: size.W,
		H: size.H,
	}
	id, err := srv.CreateWindow(r)
	if err != nil {
		return fmt.Errorf("xcb: create window: %w", err)
	}
	w.id = id
	w.d.windows[id] = w
	if w.title != "" {
		if err := srv.SetTitle(id, w.title); err != nil {
			return err
		}
	}
	var atoms []string
	switch st.Mode {
	case system.ModeMaximized:
		atoms = []string{netMaxHorz, netMaxVert}
	case system.ModeFullscreen:
		atoms = []string{netFullscreen}
	}
	if len(atoms) > 0 {
		if err := srv.SetInitialState(id, atoms); err != nil {
			return fmt.Errorf("xcb: initial state: %w", err)
		}
	}
	if err := srv.MapWindow(id); err != nil {
		return fmt.Errorf("xcb: map window: %w", err)
	}
	w.created = true
	w.shared.State = st
	w.shared.Rect = r
	w.shared.Size = size
	return nil
}

func (w *window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if !w.created {
		return nil
	}
	delete(w.d.windows, w.id)
	w.d.pointed.Leave(w.id)
	return w.d.srv.DestroyWindow(w.id)
}

func (w *window) Shown() bool { return w.created }

func (w *window) Token() system.Token { return system.Token(w.id) }

func (w *window) Native() gpu.NativeWindow {
	return gpu.NativeWindow{Platform: gpu.PlatformXCB, Window: uintptr(w.id)}
}

func (w *window) Shared() *wm.Shared { return &w.shared }
