// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

// Package wayland implements the Wayland driver as a client of the
// core and xdg-shell protocols.
package wayland

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	xdg "github.com/rajveermalviya/go-wayland/wayland/stable/xdg-shell"
	"golang.org/x/sys/unix"

	"github.com/owsgo/ows/app/internal/keymap"
	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
)

type Display struct {
	display  *client.Display
	ctx      *client.Context
	registry *client.Registry

	compositor *client.Compositor
	wmBase     *xdg.WmBase

	seat        *client.Seat
	seatName    uint32
	seatVersion uint32
	pointer     *client.Pointer
	keyboard    *client.Keyboard

	// windows maps wl_surface ids to their window.
	windows map[uint32]*window
	pointed wm.Focus[uint32]
	focused wm.Focus[uint32]

	// err is the first connection or protocol error. It sticks.
	err error
}

type window struct {
	d        *Display
	id       uint32
	surface  *client.Surface
	xdgSurf  *xdg.Surface
	toplevel *xdg.Toplevel
	closed   bool
	title    string
	shared   wm.Shared
	// requested is the size used when the compositor lets the client
	// choose.
	requested geom.ISize
	pending   toplevelConfig
}

// toplevelConfig is the toplevel state of a configure sequence, applied
// by the xdg_surface configure that ends it.
type toplevelConfig struct {
	size   geom.ISize
	states []uint32
}

func newDisplay(display *client.Display) (*Display, error) {
	d := &Display{
		display: display,
		ctx:     display.Context(),
		windows: make(map[uint32]*window),
	}
	display.SetErrorHandler(d.onError)
	reg, err := display.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("wayland: get registry: %w", err)
	}
	d.registry = reg
	reg.SetGlobalHandler(d.onGlobal)
	reg.SetGlobalRemoveHandler(d.onGlobalRemove)
	// Wait for the globals, then for the seat capabilities of the
	// bound seat.
	if err := d.roundtrip(); err != nil {
		return nil, err
	}
	switch {
	case d.compositor == nil:
		return nil, errors.New("wayland: no wl_compositor available")
	case d.wmBase == nil:
		return nil, errors.New("wayland: no xdg_wm_base available")
	}
	if err := d.roundtrip(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Display) Name() string { return "wayland" }

func (d *Display) NewWindow() (wm.Window, error) {
	return &window{d: d}, nil
}

// CollectEvents handles every event the compositor sent before a
// wl_display.sync issued now.
func (d *Display) CollectEvents() error {
	return d.roundtrip()
}

func (d *Display) Close() error {
	for _, w := range d.windows {
		w.Close()
	}
	d.releasePointer()
	d.releaseKeyboard()
	if d.seat != nil && d.seatVersion >= 5 {
		d.seat.Release()
	}
	if d.wmBase != nil {
		d.wmBase.Destroy()
	}
	return d.ctx.Close()
}

func (d *Display) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// check records the failure of a request.
func (d *Display) check(err error) error {
	if err != nil {
		d.fail(fmt.Errorf("wayland: %w", err))
	}
	return err
}

// roundtrip dispatches events until the compositor answers a sync.
func (d *Display) roundtrip() error {
	if d.err != nil {
		return d.err
	}
	cb, err := d.display.Sync()
	if d.check(err) != nil {
		return d.err
	}
	defer cb.Destroy()
	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	for !done && d.err == nil {
		if err := d.dispatch(); err != nil {
			d.fail(fmt.Errorf("wayland: %w", err))
		}
	}
	return d.err
}

// dispatch reads and handles one event. Events for objects destroyed
// on this side are dropped.
func (d *Display) dispatch() (err error) {
	defer func() {
		if r := recover(); r != nil {
			// A stale object argument fails its type assertion.
			if _, ok := r.(*runtime.TypeAssertionError); !ok {
				panic(r)
			}
			err = nil
		}
	}()
	err = d.ctx.Dispatch()
	if err != nil && errors.Unwrap(err) == nil {
		// Unknown sender. Read failures wrap their cause.
		return nil
	}
	return err
}

func (d *Display) onError(e client.DisplayErrorEvent) {
	var obj uint32
	if e.ObjectId != nil {
		obj = e.ObjectId.ID()
	}
	d.fail(fmt.Errorf("wayland: protocol error %d on object %d: %s", e.Code, obj, e.Message))
}

func (d *Display) bind(e client.RegistryGlobalEvent, version uint32, p client.Proxy) {
	d.check(d.registry.Bind(e.Name, e.Interface, version, p))
}

func (d *Display) onGlobal(e client.RegistryGlobalEvent) {
	switch e.Interface {
	case "wl_compositor":
		if d.compositor == nil {
			d.compositor = client.NewCompositor(d.ctx)
			d.bind(e, min(e.Version, 4), d.compositor)
		}
	case "xdg_wm_base":
		if d.wmBase == nil {
			d.wmBase = xdg.NewWmBase(d.ctx)
			d.wmBase.SetPingHandler(d.onPing)
			d.bind(e, 1, d.wmBase)
		}
	case "wl_seat":
		if d.seat == nil {
			d.seat = client.NewSeat(d.ctx)
			d.seatName = e.Name
			d.seatVersion = min(e.Version, 5)
			d.seat.SetCapabilitiesHandler(d.onCapabilities)
			d.bind(e, d.seatVersion, d.seat)
		}
	}
}

func (d *Display) onGlobalRemove(e client.RegistryGlobalRemoveEvent) {
	if d.seat == nil || e.Name != d.seatName {
		return
	}
	d.releasePointer()
	d.releaseKeyboard()
	d.seat.SetCapabilitiesHandler(nil)
	if d.seatVersion >= 5 {
		d.seat.Release()
	}
	d.seat = nil
}

func (d *Display) onPing(e xdg.WmBasePingEvent) {
	d.check(d.wmBase.Pong(e.Serial))
}

func (d *Display) onCapabilities(e client.SeatCapabilitiesEvent) {
	caps := e.Capabilities
	switch {
	case d.pointer == nil && caps&capPointer != 0:
		p, err := d.seat.GetPointer()
		if d.check(err) != nil {
			return
		}
		p.SetEnterHandler(d.onPointerEnter)
		p.SetLeaveHandler(d.onPointerLeave)
		p.SetMotionHandler(d.onPointerMotion)
		p.SetButtonHandler(d.onPointerButton)
		d.pointer = p
	case d.pointer != nil && caps&capPointer == 0:
		d.releasePointer()
	}
	switch {
	case d.keyboard == nil && caps&capKeyboard != 0:
		k, err := d.seat.GetKeyboard()
		if d.check(err) != nil {
			return
		}
		k.SetKeymapHandler(onKeymap)
		k.SetEnterHandler(d.onKeyboardEnter)
		k.SetLeaveHandler(d.onKeyboardLeave)
		k.SetKeyHandler(d.onKey)
		k.SetModifiersHandler(d.onModifiers)
		d.keyboard = k
	case d.keyboard != nil && caps&capKeyboard == 0:
		d.releaseKeyboard()
	}
}

func (d *Display) releasePointer() {
	p := d.pointer
	if p == nil {
		return
	}
	d.pointer = nil
	if d.seatVersion >= 3 {
		d.check(p.Release())
	} else {
		p.SetEnterHandler(nil)
		p.SetLeaveHandler(nil)
		p.SetMotionHandler(nil)
		p.SetButtonHandler(nil)
	}
	if cur, ok := d.pointed.Get(); ok {
		d.pointed.Leave(cur)
		if w := d.windows[cur]; w != nil {
			w.shared.Leave(w.shared.Pos)
		}
	}
}

func (d *Display) releaseKeyboard() {
	k := d.keyboard
	if k == nil {
		return
	}
	d.keyboard = nil
	if d.seatVersion >= 3 {
		d.check(k.Release())
	} else {
		// Without handlers the keymap fds are closed for us.
		k.SetKeymapHandler(nil)
		k.SetEnterHandler(nil)
		k.SetLeaveHandler(nil)
		k.SetKeyHandler(nil)
		k.SetModifiersHandler(nil)
	}
	if cur, ok := d.focused.Get(); ok {
		d.focused.Leave(cur)
		if w := d.windows[cur]; w != nil {
			w.shared.Mods = 0
		}
	}
}

// surfaceID returns the id of s, or 0 for a null surface.
func surfaceID(s *client.Surface) uint32 {
	if s == nil {
		return 0
	}
	return s.ID()
}

// pointedWindow returns the window holding the pointer, if any.
func (d *Display) pointedWindow() *window {
	if cur, ok := d.pointed.Get(); ok {
		return d.windows[cur]
	}
	return nil
}

func (d *Display) focusedWindow() *window {
	if cur, ok := d.focused.Get(); ok {
		return d.windows[cur]
	}
	return nil
}

func (d *Display) onPointerEnter(e client.PointerEnterEvent) {
	id := surfaceID(e.Surface)
	w := d.windows[id]
	if w == nil {
		return
	}
	if prev, ok := d.pointed.Enter(id); ok {
		if pw := d.windows[prev]; pw != nil {
			pw.shared.Leave(pw.shared.Pos)
		}
	}
	w.shared.Enter(geom.Pt(float32(e.SurfaceX), float32(e.SurfaceY)))
}

func (d *Display) onPointerLeave(e client.PointerLeaveEvent) {
	id := surfaceID(e.Surface)
	if w := d.windows[id]; w != nil && d.pointed.Leave(id) {
		w.shared.Leave(w.shared.Pos)
	}
}

func (d *Display) onPointerMotion(e client.PointerMotionEvent) {
	if w := d.pointedWindow(); w != nil {
		w.shared.Move(geom.Pt(float32(e.SurfaceX), float32(e.SurfaceY)))
	}
}

func (d *Display) onPointerButton(e client.PointerButtonEvent) {
	w := d.pointedWindow()
	if w == nil {
		return
	}
	var btn pointer.Button
	switch e.Button {
	case btnLeft:
		btn = pointer.ButtonLeft
	case btnRight:
		btn = pointer.ButtonRight
	case btnMiddle:
		btn = pointer.ButtonMiddle
	default:
		return
	}
	if e.State == buttonStatePressed {
		w.shared.ButtonDown(btn)
	} else {
		w.shared.ButtonUp(btn)
	}
}

// onKeymap closes the keymap. Keys are mapped with the US layout.
func onKeymap(e client.KeyboardKeymapEvent) {
	if e.Fd >= 0 {
		unix.Close(e.Fd)
	}
}

func (d *Display) onKeyboardEnter(e client.KeyboardEnterEvent) {
	if id := surfaceID(e.Surface); d.windows[id] != nil {
		d.focused.Enter(id)
	}
}

func (d *Display) onKeyboardLeave(e client.KeyboardLeaveEvent) {
	id := surfaceID(e.Surface)
	if d.focused.Leave(id) {
		if w := d.windows[id]; w != nil {
			w.shared.Mods = 0
		}
	}
}

func (d *Display) onKey(e client.KeyboardKeyEvent) {
	w := d.focusedWindow()
	if w == nil {
		return
	}
	code := keymap.Evdev(e.Key)
	if e.State != keyStatePressed {
		sym, _ := keymap.US(code, w.shared.Mods)
		w.shared.KeyUp(sym, code)
		return
	}
	sym, text := keymap.US(code, w.shared.Mods|key.ModFor(code))
	w.shared.KeyDown(sym, code, text)
}

func (d *Display) onModifiers(e client.KeyboardModifiersEvent) {
	if w := d.focusedWindow(); w != nil {
		w.shared.Mods = keymap.Reconcile(w.shared.Mods, e.ModsDepressed)
	}
}

func (w *window) SetTitle(title string) error {
	if w.closed {
		return errors.New("wayland: window closed")
	}
	w.title = title
	if w.toplevel == nil {
		return nil
	}
	return w.d.check(w.toplevel.SetTitle(title))
}

func (w *window) Show(st system.State) error {
	if w.closed {
		return errors.New("wayland: window closed")
	}
	if w.surface == nil {
		return w.create(st)
	}
	cur := w.shared.State
	if st == cur {
		return nil
	}
	if cur.SameMode(st) && (st.Mode != system.ModeNormal || st.Size.Empty() || st.Size == w.shared.Size) {
		return nil
	}
	tl := w.toplevel
	var err error
	switch {
	case cur.Mode == system.ModeMaximized && st.Mode != system.ModeMaximized:
		err = tl.UnsetMaximized()
	case cur.Mode == system.ModeFullscreen && st.Mode != system.ModeFullscreen:
		err = tl.UnsetFullscreen()
	}
	if err != nil {
		return w.d.check(err)
	}
	switch st.Mode {
	case system.ModeNormal:
		if !st.Size.Empty() {
			w.requested = st.Size
			// A floating surface has the size its client picks.
			if cur.Mode == system.ModeNormal {
				w.shared.Resize(st.Size)
			}
		}
	case system.ModeMaximized:
		err = tl.SetMaximized()
	case system.ModeFullscreen:
		err = tl.SetFullscreen(nil)
	case system.ModeMinimized:
		err = tl.SetMinimized()
	}
	if err != nil {
		return w.d.check(err)
	}
	w.shared.State = st
	return nil
}

func (w *window) create(st system.State) error {
	if st.Mode == system.ModeMinimized {
		return errors.New("wayland: a window cannot be created minimized")
	}
	d := w.d
	w.requested = geom.ISize{W: defaultWidth, H: defaultHeight}
	if st.Mode == system.ModeNormal && !st.Size.Empty() {
		w.requested = st.Size
	}
	surf, err := d.compositor.CreateSurface()
	if err != nil {
		return d.check(err)
	}
	xs, err := d.wmBase.GetXdgSurface(surf)
	if err != nil {
		surf.Destroy()
		return d.check(err)
	}
	tl, err := xs.GetToplevel()
	if err != nil {
		xs.Destroy()
		surf.Destroy()
		return d.check(err)
	}
	w.id, w.surface, w.xdgSurf, w.toplevel = surf.ID(), surf, xs, tl
	xs.SetConfigureHandler(w.onConfigure)
	tl.SetConfigureHandler(w.onToplevelConfigure)
	tl.SetCloseHandler(w.onClose)
	d.windows[w.id] = w
	w.shared.State = st
	w.shared.Size = w.requested
	if w.title != "" {
		err = tl.SetTitle(w.title)
	}
	if err == nil {
		switch st.Mode {
		case system.ModeMaximized:
			err = tl.SetMaximized()
		case system.ModeFullscreen:
			err = tl.SetFullscreen(nil)
		}
	}
	if err == nil {
		// The initial commit asks the compositor for a configure.
		err = surf.Commit()
	}
	return d.check(err)
}

func (w *window) onToplevelConfigure(e xdg.ToplevelConfigureEvent) {
	w.pending = toplevelConfig{
		size:   geom.ISize{W: e.Width, H: e.Height},
		states: states(e.States),
	}
}

func (w *window) onClose(xdg.ToplevelCloseEvent) {
	w.shared.Close()
}

func (w *window) onConfigure(e xdg.SurfaceConfigureEvent) {
	p := w.pending
	mode, activated := system.ModeNormal, false
	for _, s := range p.states {
		switch s {
		case stateMaximized:
			if mode != system.ModeFullscreen {
				mode = system.ModeMaximized
			}
		case stateFullscreen:
			mode = system.ModeFullscreen
		case stateActivated:
			activated = true
		}
	}
	cur := w.shared.State
	// xdg-shell does not report minimization. A minimized window
	// stays so until it is activated again.
	if cur.Mode != system.ModeMinimized || activated {
		st := system.State{Mode: mode}
		if mode == system.ModeNormal && cur.Mode == system.ModeNormal {
			st.Size = cur.Size
		}
		w.shared.SetState(st)
	}
	size := p.size
	if size.Empty() {
		size = w.requested
	}
	w.shared.Resize(size)
	// The next commit, issued when a frame is presented, applies the
	// acknowledged state.
	w.d.check(w.xdgSurf.AckConfigure(e.Serial))
}

func (w *window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.surface == nil {
		return nil
	}
	d := w.d
	delete(d.windows, w.id)
	d.pointed.Leave(w.id)
	d.focused.Leave(w.id)
	err := w.toplevel.Destroy()
	if e := w.xdgSurf.Destroy(); err == nil {
		err = e
	}
	if e := w.surface.Destroy(); err == nil {
		err = e
	}
	return d.check(err)
}

func (w *window) Shown() bool { return w.surface != nil }

func (w *window) Token() system.Token { return system.Token(w.id) }

func (w *window) Native() gpu.NativeWindow {
	return gpu.NativeWindow{Platform: gpu.PlatformWayland, Window: uintptr(w.id)}
}

func (w *window) Shared() *wm.Shared { return &w.shared }
