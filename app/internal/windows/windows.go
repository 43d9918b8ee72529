// SPDX-License-Identifier: Unlicense OR MIT

//go:build windows
// +build windows

// Package windows binds the user32 and kernel32 functions used by the
// Win32 driver.
package windows

import (
	"fmt"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

type Rect struct {
	Left, Top, Right, Bottom int32
}

type WndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CnClsExtra    int32
	CbWndExtra    int32
	HInstance     syscall.Handle
	HIcon         syscall.Handle
	HCursor       syscall.Handle
	HbrBackground syscall.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       syscall.Handle
}

type Msg struct {
	Hwnd     syscall.Handle
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       Point
	LPrivate uint32
}

type Point struct {
	X, Y int32
}

type MonitorInfo struct {
	CbSize   uint32
	Monitor  Rect
	WorkArea Rect
	Flags    uint32
}

type TrackMouseEventInfo struct {
	CbSize      uint32
	DwFlags     uint32
	HwndTrack   syscall.Handle
	DwHoverTime uint32
}

const (
	CS_HREDRAW = 0x0002
	CS_VREDRAW = 0x0001
	CS_OWNDC   = 0x0020

	IDC_ARROW = 32512

	GWL_STYLE   = -16
	GWL_EXSTYLE = -20

	MONITOR_DEFAULTTONEAREST = 0x00000002

	PM_REMOVE = 0x0001

	TME_LEAVE = 0x00000002
)

var (
	kernel32            = syscall.NewLazySystemDLL("kernel32.dll")
	_GetModuleHandleW   = kernel32.NewProc("GetModuleHandleW")
	_OutputDebugStringW = kernel32.NewProc("OutputDebugStringW")

	user32              = syscall.NewLazySystemDLL("user32.dll")
	_AdjustWindowRectEx = user32.NewProc("AdjustWindowRectEx")
	_CreateWindowEx     = user32.NewProc("CreateWindowExW")
	_DefWindowProc      = user32.NewProc("DefWindowProcW")
	_DestroyWindow      = user32.NewProc("DestroyWindow")
	_DispatchMessage    = user32.NewProc("DispatchMessageW")
	_GetMonitorInfo     = user32.NewProc("GetMonitorInfoW")
	_GetWindowLong      = user32.NewProc("GetWindowLongPtrW")
	_GetWindowRect      = user32.NewProc("GetWindowRect")
	_IsZoomed           = user32.NewProc("IsZoomed")
	_LoadCursor         = user32.NewProc("LoadCursorW")
	_MonitorFromWindow  = user32.NewProc("MonitorFromWindow")
	_PeekMessage        = user32.NewProc("PeekMessageW")
	_RegisterClassExW   = user32.NewProc("RegisterClassExW")
	_ReleaseCapture     = user32.NewProc("ReleaseCapture")
	_SetCapture         = user32.NewProc("SetCapture")
	_SetWindowLong      = user32.NewProc("SetWindowLongPtrW")
	_SetWindowPos       = user32.NewProc("SetWindowPos")
	_SetWindowText      = user32.NewProc("SetWindowTextW")
	_ShowWindow         = user32.NewProc("ShowWindow")
	_TrackMouseEvent    = user32.NewProc("TrackMouseEvent")
	_TranslateMessage   = user32.NewProc("TranslateMessage")
	_UnregisterClass    = user32.NewProc("UnregisterClassW")
)

func GetModuleHandle() (syscall.Handle, error) {
	h, _, err := _GetModuleHandleW.Call(uintptr(0))
	if h == 0 {
		return 0, fmt.Errorf("GetModuleHandleW failed: %v", err)
	}
	return syscall.Handle(h), nil
}

func OutputDebugString(msg string) error {
	p, err := syscall.UTF16PtrFromString(msg)
	if err != nil {
		return err
	}
	_OutputDebugStringW.Call(uintptr(unsafe.Pointer(p)))
	return nil
}

func AdjustWindowRectEx(r *Rect, dwStyle uint32, bMenu int, dwExStyle uint32) {
	_AdjustWindowRectEx.Call(uintptr(unsafe.Pointer(r)), uintptr(dwStyle), uintptr(bMenu), uintptr(dwExStyle))
}

func CreateWindowEx(dwExStyle uint32, lpClassName uint16, lpWindowName string, dwStyle uint32, x, y, w, h int32, hWndParent, hMenu, hInstance syscall.Handle, lpParam uintptr) (syscall.Handle, error) {
	wname, err := syscall.UTF16PtrFromString(lpWindowName)
	if err != nil {
		return 0, err
	}
	hwnd, _, err := _CreateWindowEx.Call(
		uintptr(dwExStyle),
		uintptr(lpClassName),
		uintptr(unsafe.Pointer(wname)),
		uintptr(dwStyle),
		uintptr(x), uintptr(y),
		uintptr(w), uintptr(h),
		uintptr(hWndParent),
		uintptr(hMenu),
		uintptr(hInstance),
		uintptr(lpParam))
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowEx failed: %v", err)
	}
	return syscall.Handle(hwnd), nil
}

func DefWindowProc(hwnd syscall.Handle, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := _DefWindowProc.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}

func DestroyWindow(hwnd syscall.Handle) {
	_DestroyWindow.Call(uintptr(hwnd))
}

func DispatchMessage(m *Msg) {
	_DispatchMessage.Call(uintptr(unsafe.Pointer(m)))
}

func GetMonitorInfo(hwnd syscall.Handle) MonitorInfo {
	var mi MonitorInfo
	mi.CbSize = uint32(unsafe.Sizeof(mi))
	mon, _, _ := _MonitorFromWindow.Call(uintptr(hwnd), MONITOR_DEFAULTTONEAREST)
	_GetMonitorInfo.Call(mon, uintptr(unsafe.Pointer(&mi)))
	return mi
}

func GetWindowLong(hwnd syscall.Handle, index int32) uintptr {
	r, _, _ := _GetWindowLong.Call(uintptr(hwnd), uintptr(index))
	return r
}

func SetWindowLong(hwnd syscall.Handle, index int32, value uintptr) {
	_SetWindowLong.Call(uintptr(hwnd), uintptr(index), value)
}

func GetWindowRect(hwnd syscall.Handle) Rect {
	var r Rect
	_GetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	return r
}

func IsZoomed(hwnd syscall.Handle) bool {
	r, _, _ := _IsZoomed.Call(uintptr(hwnd))
	return r != 0
}

func LoadCursor(curID uint16) (syscall.Handle, error) {
	h, _, err := _LoadCursor.Call(0, uintptr(curID))
	if h == 0 {
		return 0, fmt.Errorf("LoadCursorW failed: %v", err)
	}
	return syscall.Handle(h), nil
}

func PeekMessage(m *Msg, hwnd syscall.Handle, wMsgFilterMin, wMsgFilterMax, wRemoveMsg uint32) bool {
	r, _, _ := _PeekMessage.Call(uintptr(unsafe.Pointer(m)), uintptr(hwnd), uintptr(wMsgFilterMin), uintptr(wMsgFilterMax), uintptr(wRemoveMsg))
	return r != 0
}

func RegisterClassEx(cls *WndClassEx) (uint16, error) {
	a, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(cls)))
	if a == 0 {
		return 0, fmt.Errorf("RegisterClassExW failed: %v", err)
	}
	return uint16(a), nil
}

func ReleaseCapture() bool {
	r, _, _ := _ReleaseCapture.Call()
	return r != 0
}

func SetCapture(hwnd syscall.Handle) syscall.Handle {
	r, _, _ := _SetCapture.Call(uintptr(hwnd))
	return syscall.Handle(r)
}

func SetWindowPos(hwnd syscall.Handle, hwndInsertAfter uint32, x, y, dx, dy int32, style uint32) {
	_SetWindowPos.Call(uintptr(hwnd), uintptr(hwndInsertAfter),
		uintptr(x), uintptr(y),
		uintptr(dx), uintptr(dy),
		uintptr(style),
	)
}

func SetWindowText(hwnd syscall.Handle, title string) error {
	wname, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	_SetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(wname)))
	return nil
}

func ShowWindow(hwnd syscall.Handle, nCmdShow int32) {
	_ShowWindow.Call(uintptr(hwnd), uintptr(nCmdShow))
}

func TrackMouseLeave(hwnd syscall.Handle) {
	tme := TrackMouseEventInfo{DwFlags: TME_LEAVE, HwndTrack: hwnd}
	tme.CbSize = uint32(unsafe.Sizeof(tme))
	_TrackMouseEvent.Call(uintptr(unsafe.Pointer(&tme)))
}

func TranslateMessage(m *Msg) {
	_TranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func UnregisterClass(cls uint16, hInst syscall.Handle) {
	_UnregisterClass.Call(uintptr(cls), uintptr(hInst))
}
