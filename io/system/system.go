// SPDX-License-Identifier: Unlicense OR MIT

// Package system contains window level events and the window
// state vocabulary.
package system

import (
	"fmt"

	"github.com/owsgo/ows/geom"
)

// Token identifies a live window. It is derived from the native
// handle and is only ever compared, never dereferenced.
type Token uintptr

// Mode is the presentation mode of a window.
type Mode uint8

const (
	// ModeNormal is a regular decorated window.
	ModeNormal Mode = iota
	// ModeMaximized fills the work area.
	ModeMaximized
	// ModeMinimized is iconified.
	ModeMinimized
	// ModeFullscreen covers the monitor without decorations.
	ModeFullscreen
)

// State is the state of a window. For ModeNormal, a non-empty Size
// requests that client size; the zero Size leaves the choice to the
// platform.
type State struct {
	Mode Mode
	Size geom.ISize
}

// ResizeEvent is generated when the client area size changes.
type ResizeEvent struct {
	Size geom.ISize
}

// CloseEvent is generated when the user or the window manager asks
// for the window to close. The window is not destroyed until the
// program calls Close.
type CloseEvent struct{}

// StateEvent is generated when the window mode changes.
type StateEvent struct {
	State State
}

// Normal returns the Normal state without a size request.
func Normal() State { return State{Mode: ModeNormal} }

// NormalSize returns the Normal state with a w×h client area.
func NormalSize(w, h int32) State {
	return State{Mode: ModeNormal, Size: geom.ISize{W: w, H: h}}
}

// Maximized returns the Maximized state.
func Maximized() State { return State{Mode: ModeMaximized} }

// Minimized returns the Minimized state.
func Minimized() State { return State{Mode: ModeMinimized} }

// Fullscreen returns the Fullscreen state.
func Fullscreen() State { return State{Mode: ModeFullscreen} }

// SameMode reports whether s and s2 have the same Mode.
func (s State) SameMode(s2 State) bool {
	return s.Mode == s2.Mode
}

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeMaximized:
		return "Maximized"
	case ModeMinimized:
		return "Minimized"
	case ModeFullscreen:
		return "Fullscreen"
	default:
		panic("invalid Mode")
	}
}

func (s State) String() string {
	if s.Mode == ModeNormal && !s.Size.Empty() {
		return fmt.Sprintf("Normal(%dx%d)", s.Size.W, s.Size.H)
	}
	return s.Mode.String()
}

func (ResizeEvent) ImplementsEvent() {}
func (CloseEvent) ImplementsEvent()  {}
func (StateEvent) ImplementsEvent()  {}
