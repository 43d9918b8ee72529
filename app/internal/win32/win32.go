// SPDX-License-Identifier: Unlicense OR MIT

// Package win32 implements the Windows driver. Message translation is
// platform independent; the user32 calls live behind the native
// interface.
package win32

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/owsgo/ows/app/internal/keymap"
	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
)

const (
	_CW_USEDEFAULT = -2147483648

	_SIZE_RESTORED  = 0
	_SIZE_MINIMIZED = 1
	_SIZE_MAXIMIZED = 2

	_SW_SHOWNORMAL    = 1
	_SW_SHOWMAXIMIZED = 3
	_SW_MAXIMIZE      = 3
	_SW_MINIMIZE      = 6
	_SW_RESTORE       = 9

	_SWP_NOZORDER     = 0x0004
	_SWP_NOACTIVATE   = 0x0010
	_SWP_FRAMECHANGED = 0x0020

	_WM_DESTROY     = 0x0002
	_WM_SIZE        = 0x0005
	_WM_KILLFOCUS   = 0x0008
	_WM_CLOSE       = 0x0010
	_WM_KEYDOWN     = 0x0100
	_WM_KEYUP       = 0x0101
	_WM_CHAR        = 0x0102
	_WM_SYSKEYDOWN  = 0x0104
	_WM_SYSKEYUP    = 0x0105
	_WM_MOUSEMOVE   = 0x0200
	_WM_LBUTTONDOWN = 0x0201
	_WM_LBUTTONUP   = 0x0202
	_WM_RBUTTONDOWN = 0x0204
	_WM_RBUTTONUP   = 0x0205
	_WM_MBUTTONDOWN = 0x0207
	_WM_MBUTTONUP   = 0x0208
	_WM_MOUSELEAVE  = 0x02A3

	_WS_CAPTION          = 0x00C00000
	_WS_MAXIMIZE         = 0x01000000
	_WS_MAXIMIZEBOX      = 0x00010000
	_WS_MINIMIZEBOX      = 0x00020000
	_WS_OVERLAPPED       = 0x00000000
	_WS_SYSMENU          = 0x00080000
	_WS_THICKFRAME       = 0x00040000
	_WS_OVERLAPPEDWINDOW = _WS_OVERLAPPED | _WS_CAPTION | _WS_SYSMENU | _WS_THICKFRAME |
		_WS_MINIMIZEBOX | _WS_MAXIMIZEBOX

	_WS_EX_APPWINDOW     = 0x00040000
	_WS_EX_CLIENTEDGE    = 0x00000200
	_WS_EX_DLGMODALFRAME = 0x00000001
	_WS_EX_STATICEDGE    = 0x00020000
	_WS_EX_WINDOWEDGE    = 0x00000100
)

// native is the user32 surface used by the driver. Handles are HWNDs.
type native interface {
	// CreateWindow creates a window of the driver's class. Messages
	// sent during creation reach the window procedure before it
	// returns.
	CreateWindow(title string, style, exStyle uint32, r geom.IRect) (uintptr, error)
	DestroyWindow(h uintptr)
	ShowWindow(h uintptr, cmd int32)
	SetWindowText(h uintptr, title string) error
	SetWindowPos(h uintptr, r geom.IRect, flags uint32)
	Style(h uintptr) (style, exStyle uint32)
	SetStyle(h uintptr, style, exStyle uint32)
	WindowRect(h uintptr) geom.IRect
	// MonitorRect returns the bounds of the monitor nearest to h.
	MonitorRect(h uintptr) geom.IRect
	// OuterSize returns the window size needed for a client area.
	OuterSize(client geom.ISize, style, exStyle uint32) geom.ISize
	TrackMouseLeave(h uintptr)
	SetCapture(h uintptr)
	ReleaseCapture()
	// PeekChar removes the next WM_CHAR queued for h.
	PeekChar(h uintptr) (uint16, bool)
	// Pump dispatches the queued messages without waiting.
	Pump()
	DefWindowProc(h uintptr, msg uint32, wParam, lParam uintptr) uintptr
	// Instance is the module handle owning the window class.
	Instance() uintptr
	Close()
}

type Display struct {
	nat     native
	windows map[uintptr]*window
	// pending receives the messages sent while CreateWindow runs.
	pending *window
	pointed wm.Focus[uintptr]
}

type window struct {
	d      *Display
	hwnd   uintptr
	closed bool
	title  string
	shared wm.Shared
	// applying is set while Show issues native calls; the WM_SIZE
	// they trigger then only update the size.
	applying bool
	saved    placement
}

// placement is the decoration and geometry replaced by fullscreen.
type placement struct {
	style, exStyle uint32
	rect           geom.IRect
}

func newDisplay(nat native) *Display {
	return &Display{
		nat:     nat,
		windows: make(map[uintptr]*window),
	}
}

func (d *Display) Name() string { return "win32" }

func (d *Display) NewWindow() (wm.Window, error) {
	return &window{d: d}, nil
}

func (d *Display) CollectEvents() error {
	d.nat.Pump()
	return nil
}

func (d *Display) Close() error {
	for _, w := range d.windows {
		w.Close()
	}
	d.nat.Close()
	return nil
}

// wndProc is the window procedure of every driver window.
func (d *Display) wndProc(h uintptr, msg uint32, wParam, lParam uintptr) uintptr {
	w := d.windows[h]
	if w == nil && d.pending != nil {
		w = d.pending
		w.hwnd = h
		d.windows[h] = w
		d.pending = nil
	}
	if w == nil || !d.handle(w, msg, wParam, lParam) {
		return d.nat.DefWindowProc(h, msg, wParam, lParam)
	}
	return 0
}

// handle reports whether msg was consumed.
func (d *Display) handle(w *window, msg uint32, wParam, lParam uintptr) bool {
	h := w.hwnd
	switch msg {
	case _WM_CLOSE:
		w.shared.Close()
	case _WM_SIZE:
		d.size(w, wParam, lParam)
	case _WM_MOUSEMOVE:
		pos := lParamPos(lParam)
		if cur, ok := d.pointed.Get(); ok && cur == h {
			w.shared.Move(pos)
			return true
		}
		if prev, ok := d.pointed.Enter(h); ok {
			if pw := d.windows[prev]; pw != nil {
				pw.shared.Leave(pw.shared.Pos)
			}
		}
		d.nat.TrackMouseLeave(h)
		w.shared.Enter(pos)
	case _WM_MOUSELEAVE:
		if d.pointed.Leave(h) {
			w.shared.Leave(w.shared.Pos)
		}
	case _WM_LBUTTONDOWN:
		d.button(w, pointer.ButtonLeft, lParam, true)
	case _WM_LBUTTONUP:
		d.button(w, pointer.ButtonLeft, lParam, false)
	case _WM_RBUTTONDOWN:
		d.button(w, pointer.ButtonRight, lParam, true)
	case _WM_RBUTTONUP:
		d.button(w, pointer.ButtonRight, lParam, false)
	case _WM_MBUTTONDOWN:
		d.button(w, pointer.ButtonMiddle, lParam, true)
	case _WM_MBUTTONUP:
		d.button(w, pointer.ButtonMiddle, lParam, false)
	case _WM_KEYDOWN:
		d.key(w, wParam, lParam, true)
	case _WM_KEYUP:
		d.key(w, wParam, lParam, false)
	case _WM_SYSKEYDOWN:
		d.key(w, wParam, lParam, true)
		// Let the system handle Alt-F4 and the menu keys.
		return false
	case _WM_SYSKEYUP:
		d.key(w, wParam, lParam, false)
		return false
	case _WM_CHAR:
		// Characters are consumed with their WM_KEYDOWN.
	case _WM_KILLFOCUS:
		w.shared.Mods = 0
		return false
	case _WM_DESTROY:
		delete(d.windows, h)
		d.pointed.Leave(h)
	default:
		return false
	}
	return true
}

func (d *Display) size(w *window, wParam, lParam uintptr) {
	size := geom.ISize{W: int32(lParam & 0xffff), H: int32(lParam >> 16 & 0xffff)}
	w.shared.Rect = d.nat.WindowRect(w.hwnd)
	cur := w.shared.State
	switch wParam {
	case _SIZE_MINIMIZED:
		if !w.applying {
			w.shared.SetState(system.Minimized())
		}
		return
	case _SIZE_MAXIMIZED:
		if !w.applying {
			w.shared.SetState(system.Maximized())
		}
	case _SIZE_RESTORED:
		if !w.applying && cur.Mode != system.ModeFullscreen {
			st := system.Normal()
			if cur.Mode == system.ModeNormal {
				st.Size = cur.Size
			}
			w.shared.SetState(st)
		}
	}
	w.shared.Resize(size)
}

func (d *Display) button(w *window, btn pointer.Button, lParam uintptr, press bool) {
	w.shared.Pos = lParamPos(lParam)
	if press {
		if w.shared.Buttons == 0 {
			d.nat.SetCapture(w.hwnd)
		}
		w.shared.ButtonDown(btn)
		return
	}
	w.shared.ButtonUp(btn)
	if w.shared.Buttons == 0 {
		d.nat.ReleaseCapture()
	}
}

func (d *Display) key(w *window, wParam, lParam uintptr, press bool) {
	scan := uint32(lParam>>16) & 0xff
	code := keymap.Set1(scan, lParam&(1<<24) != 0)
	mods := w.shared.Mods
	if press {
		mods |= key.ModFor(code)
	}
	sym, _ := keymap.US(code, mods)
	if s, ok := vkSyms[uint32(wParam)]; ok {
		sym = s
	}
	if !press {
		w.shared.KeyUp(sym, code)
		return
	}
	text := d.drainChars(w.hwnd, int(lParam&0xffff))
	if text != "" && !sym.IsControl() && !sym.IsKeypad() && !sym.IsMod() {
		// Follow the active layout rather than the US one.
		r, _ := utf8.DecodeRuneInString(text)
		sym = key.SymRune(r)
	}
	w.shared.KeyDown(sym, code, text)
}

// drainChars removes the characters translated from a key press
// repeated n times. Control characters are dropped.
func (d *Display) drainChars(h uintptr, n int) string {
	var units []uint16
	for count := 0; count < max(n, 1); {
		c, ok := d.nat.PeekChar(h)
		if !ok {
			break
		}
		units = append(units, c)
		// A high surrogate is completed by the next unit.
		if c < 0xd800 || c > 0xdbff {
			count++
		}
	}
	var text []rune
	for _, r := range utf16.Decode(units) {
		if !unicode.IsControl(r) {
			text = append(text, r)
		}
	}
	return string(text)
}

func lParamPos(lParam uintptr) geom.FPoint {
	x := int16(lParam & 0xffff)
	y := int16(lParam >> 16 & 0xffff)
	return geom.Pt(float32(x), float32(y))
}

func (w *window) SetTitle(title string) error {
	if w.closed {
		return errors.New("win32: window closed")
	}
	w.title = title
	if w.hwnd == 0 {
		return nil
	}
	return w.d.nat.SetWindowText(w.hwnd, title)
}

func (w *window) Show(st system.State) error {
	if w.closed {
		return errors.New("win32: window closed")
	}
	if w.hwnd == 0 {
		return w.create(st)
	}
	cur := w.shared.State
	if st == cur {
		return nil
	}
	if cur.SameMode(st) && (st.Mode != system.ModeNormal || st.Size.Empty() || st.Size == w.shared.Size) {
		return nil
	}
	nat := w.d.nat
	w.applying = true
	defer func() { w.applying = false }()
	switch cur.Mode {
	case system.ModeFullscreen:
		w.leaveFullscreen()
	case system.ModeMaximized, system.ModeMinimized:
		if st.Mode != system.ModeMaximized && st.Mode != system.ModeMinimized {
			nat.ShowWindow(w.hwnd, _SW_RESTORE)
		}
	}
	switch st.Mode {
	case system.ModeNormal:
		if !st.Size.Empty() {
			style, ex := nat.Style(w.hwnd)
			outer := nat.OuterSize(st.Size, style, ex)
			r := nat.WindowRect(w.hwnd)
			nat.SetWindowPos(w.hwnd, geom.IRect{X: r.X, Y: r.Y, W: outer.W, H: outer.H}, _SWP_NOZORDER|_SWP_NOACTIVATE)
		}
	case system.ModeMaximized:
		nat.ShowWindow(w.hwnd, _SW_MAXIMIZE)
	case system.ModeMinimized:
		nat.ShowWindow(w.hwnd, _SW_MINIMIZE)
	case system.ModeFullscreen:
		w.enterFullscreen()
	}
	w.shared.State = st
	return nil
}

func (w *window) create(st system.State) error {
	if st.Mode == system.ModeMinimized {
		return errors.New("win32: a window cannot be created minimized")
	}
	nat := w.d.nat
	style := uint32(_WS_OVERLAPPEDWINDOW)
	ex := uint32(_WS_EX_APPWINDOW | _WS_EX_WINDOWEDGE)
	if st.Mode == system.ModeMaximized {
		style |= _WS_MAXIMIZE
	}
	r := geom.IRect{X: _CW_USEDEFAULT, Y: _CW_USEDEFAULT, W: _CW_USEDEFAULT, H: _CW_USEDEFAULT}
	if st.Mode == system.ModeNormal && !st.Size.Empty() {
		outer := nat.OuterSize(st.Size, style, ex)
		r.W, r.H = outer.W, outer.H
	}
	w.applying = true
	defer func() { w.applying = false }()
	w.d.pending = w
	h, err := nat.CreateWindow(w.title, style, ex, r)
	w.d.pending = nil
	if err != nil {
		delete(w.d.windows, w.hwnd)
		w.hwnd = 0
		return fmt.Errorf("win32: create window: %w", err)
	}
	w.hwnd = h
	w.d.windows[h] = w
	cmd := int32(_SW_SHOWNORMAL)
	initial := st
	switch st.Mode {
	case system.ModeMaximized:
		cmd = _SW_SHOWMAXIMIZED
	case system.ModeFullscreen:
		// Fullscreen is entered from a shown normal window.
		initial = system.Normal()
	}
	nat.ShowWindow(h, cmd)
	w.shared.State = initial
	w.shared.Rect = nat.WindowRect(h)
	if st.Mode == system.ModeFullscreen {
		w.enterFullscreen()
		w.shared.State = st
	}
	return nil
}

func (w *window) enterFullscreen() {
	nat := w.d.nat
	style, ex := nat.Style(w.hwnd)
	w.saved = placement{style: style, exStyle: ex, rect: nat.WindowRect(w.hwnd)}
	nat.SetStyle(w.hwnd,
		style&^(_WS_CAPTION|_WS_THICKFRAME),
		ex&^(_WS_EX_DLGMODALFRAME|_WS_EX_WINDOWEDGE|_WS_EX_CLIENTEDGE|_WS_EX_STATICEDGE))
	nat.SetWindowPos(w.hwnd, nat.MonitorRect(w.hwnd), _SWP_NOZORDER|_SWP_NOACTIVATE|_SWP_FRAMECHANGED)
}

func (w *window) leaveFullscreen() {
	nat := w.d.nat
	nat.SetStyle(w.hwnd, w.saved.style, w.saved.exStyle)
	nat.SetWindowPos(w.hwnd, w.saved.rect, _SWP_NOZORDER|_SWP_NOACTIVATE|_SWP_FRAMECHANGED)
}

func (w *window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.hwnd == 0 {
		return nil
	}
	w.d.nat.DestroyWindow(w.hwnd)
	delete(w.d.windows, w.hwnd)
	w.d.pointed.Leave(w.hwnd)
	return nil
}

func (w *window) Shown() bool { return w.hwnd != 0 }

func (w *window) Token() system.Token { return system.Token(w.hwnd) }

func (w *window) Native() gpu.NativeWindow {
	return gpu.NativeWindow{Platform: gpu.PlatformWin32, Connection: w.d.nat.Instance(), Window: w.hwnd}
}

func (w *window) Shared() *wm.Shared { return &w.shared }
