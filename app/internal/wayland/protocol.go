// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package wayland

import "encoding/binary"

// xdg_toplevel states.
const (
	stateMaximized  = 1
	stateFullscreen = 2
	stateActivated  = 4
)

// wl_seat capabilities.
const (
	capPointer  = 1
	capKeyboard = 2
)

// From linux-event-codes.h.
const (
	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

const (
	keyStatePressed    = 1
	buttonStatePressed = 1
)

// states decodes the wl_array of an xdg_toplevel configure.
func states(b []byte) []uint32 {
	v := make([]uint32, len(b)/4)
	for i := range v {
		v[i] = binary.NativeEndian.Uint32(b[i*4:])
	}
	return v
}
