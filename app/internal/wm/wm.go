// SPDX-License-Identifier: Unlicense OR MIT

// Package wm contains the contract between the app package and the
// platform drivers, and the per-window event queue they share.
package wm

import (
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/io/system"
)

// Driver is a connection to a windowing system. All methods must be
// called from the goroutine that opened it.
type Driver interface {
	// Name identifies the driver, for example "x11".
	Name() string
	// NewWindow allocates a window. The native window is created by
	// the first Show.
	NewWindow() (Window, error)
	// CollectEvents dispatches every queued native event to the
	// windows' queues without blocking.
	CollectEvents() error
	Close() error
}

// Window is a driver window.
type Window interface {
	SetTitle(title string) error
	// Show applies the state, creating the native window on the
	// first call. Showing the current mode again does nothing.
	Show(st system.State) error
	// Close destroys the native window. It is safe to call more than
	// once.
	Close() error
	// Shown reports whether the native window exists.
	Shown() bool
	// Token is only valid once Shown.
	Token() system.Token
	// Native returns the handles for surface creation. Only valid
	// once Shown.
	Native() gpu.NativeWindow
	Shared() *Shared
}
