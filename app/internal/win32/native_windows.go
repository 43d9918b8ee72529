// SPDX-License-Identifier: Unlicense OR MIT

package win32

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	syscall "golang.org/x/sys/windows"

	"github.com/owsgo/ows/app/internal/windows"
	"github.com/owsgo/ows/geom"
)

var classSeq atomic.Uint32

type user32 struct {
	inst  syscall.Handle
	class uint16
}

// Open registers a window class whose procedure feeds the returned
// display. The display must be used from the goroutine that opened it.
func Open() (*Display, error) {
	inst, err := windows.GetModuleHandle()
	if err != nil {
		return nil, err
	}
	curs, err := windows.LoadCursor(windows.IDC_ARROW)
	if err != nil {
		return nil, err
	}
	nat := &user32{inst: inst}
	d := newDisplay(nat)
	name, err := syscall.UTF16PtrFromString(fmt.Sprintf("OwsWindow%d", classSeq.Add(1)))
	if err != nil {
		return nil, err
	}
	proc := func(hwnd syscall.Handle, msg uint32, wParam, lParam uintptr) uintptr {
		return d.wndProc(uintptr(hwnd), msg, wParam, lParam)
	}
	wcls := windows.WndClassEx{
		CbSize:        uint32(unsafe.Sizeof(windows.WndClassEx{})),
		Style:         windows.CS_HREDRAW | windows.CS_VREDRAW | windows.CS_OWNDC,
		LpfnWndProc:   syscall.NewCallback(proc),
		HInstance:     inst,
		HCursor:       curs,
		LpszClassName: name,
	}
	cls, err := windows.RegisterClassEx(&wcls)
	if err != nil {
		return nil, err
	}
	nat.class = cls
	return d, nil
}

func (u *user32) CreateWindow(title string, style, exStyle uint32, r geom.IRect) (uintptr, error) {
	h, err := windows.CreateWindowEx(exStyle, u.class, title, style, r.X, r.Y, r.W, r.H, 0, 0, u.inst, 0)
	return uintptr(h), err
}

func (u *user32) DestroyWindow(h uintptr) { windows.DestroyWindow(syscall.Handle(h)) }

func (u *user32) ShowWindow(h uintptr, cmd int32) { windows.ShowWindow(syscall.Handle(h), cmd) }

func (u *user32) SetWindowText(h uintptr, title string) error {
	return windows.SetWindowText(syscall.Handle(h), title)
}

func (u *user32) SetWindowPos(h uintptr, r geom.IRect, flags uint32) {
	windows.SetWindowPos(syscall.Handle(h), 0, r.X, r.Y, r.W, r.H, flags)
}

func (u *user32) Style(h uintptr) (uint32, uint32) {
	return uint32(windows.GetWindowLong(syscall.Handle(h), windows.GWL_STYLE)),
		uint32(windows.GetWindowLong(syscall.Handle(h), windows.GWL_EXSTYLE))
}

func (u *user32) SetStyle(h uintptr, style, exStyle uint32) {
	windows.SetWindowLong(syscall.Handle(h), windows.GWL_STYLE, uintptr(style))
	windows.SetWindowLong(syscall.Handle(h), windows.GWL_EXSTYLE, uintptr(exStyle))
}

func (u *user32) WindowRect(h uintptr) geom.IRect {
	return fromRect(windows.GetWindowRect(syscall.Handle(h)))
}

func (u *user32) MonitorRect(h uintptr) geom.IRect {
	return fromRect(windows.GetMonitorInfo(syscall.Handle(h)).Monitor)
}

func (u *user32) OuterSize(client geom.ISize, style, exStyle uint32) geom.ISize {
	r := windows.Rect{Right: client.W, Bottom: client.H}
	windows.AdjustWindowRectEx(&r, style, 0, exStyle)
	return geom.ISize{W: r.Right - r.Left, H: r.Bottom - r.Top}
}

func (u *user32) TrackMouseLeave(h uintptr) { windows.TrackMouseLeave(syscall.Handle(h)) }

func (u *user32) SetCapture(h uintptr) { windows.SetCapture(syscall.Handle(h)) }

func (u *user32) ReleaseCapture() { windows.ReleaseCapture() }

func (u *user32) PeekChar(h uintptr) (uint16, bool) {
	var m windows.Msg
	if !windows.PeekMessage(&m, syscall.Handle(h), _WM_CHAR, _WM_CHAR, windows.PM_REMOVE) {
		return 0, false
	}
	return uint16(m.WParam), true
}

func (u *user32) Pump() {
	var m windows.Msg
	for windows.PeekMessage(&m, 0, 0, 0, windows.PM_REMOVE) {
		windows.TranslateMessage(&m)
		windows.DispatchMessage(&m)
	}
}

func (u *user32) DefWindowProc(h uintptr, msg uint32, wParam, lParam uintptr) uintptr {
	return windows.DefWindowProc(syscall.Handle(h), msg, wParam, lParam)
}

func (u *user32) Instance() uintptr { return uintptr(u.inst) }

func (u *user32) Close() {
	windows.UnregisterClass(u.class, u.inst)
}

func fromRect(r windows.Rect) geom.IRect {
	return geom.IRect{X: r.Left, Y: r.Top, W: r.Right - r.Left, H: r.Bottom - r.Top}
}
