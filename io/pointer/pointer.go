// SPDX-License-Identifier: Unlicense OR MIT

// Package pointer implements mouse events.
//
// Positions are in window client coordinates, with the origin at the
// top left corner.
package pointer

import (
	"strings"

	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/key"
)

// Button is a single mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Buttons is a set of mouse buttons.
type Buttons uint8

const (
	ButtonsLeft Buttons = 1 << iota
	ButtonsMiddle
	ButtonsRight
)

// EnterEvent is generated when the pointer enters the window.
type EnterEvent struct {
	Pos     geom.FPoint
	Buttons Buttons
	Mods    key.Mods
}

// LeaveEvent is generated when the pointer leaves the window.
type LeaveEvent struct {
	Pos     geom.FPoint
	Buttons Buttons
	Mods    key.Mods
}

// MoveEvent is generated when the pointer moves inside the window.
// Consecutive moves are merged until the queue is drained.
type MoveEvent struct {
	Pos     geom.FPoint
	Buttons Buttons
	Mods    key.Mods
}

// DownEvent is generated when a button is pressed. Buttons includes
// Button.
type DownEvent struct {
	Pos     geom.FPoint
	Button  Button
	Buttons Buttons
	Mods    key.Mods
}

// UpEvent is generated when a button is released. Buttons no longer
// includes Button.
type UpEvent struct {
	Pos     geom.FPoint
	Button  Button
	Buttons Buttons
	Mods    key.Mods
}

// Mask returns the set holding only b.
func (b Button) Mask() Buttons {
	return 1 << b
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonMiddle:
		return "Middle"
	case ButtonRight:
		return "Right"
	default:
		panic("invalid Button")
	}
}

// Contain reports whether the set b contains
// all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

func (b Buttons) String() string {
	var strs []string
	if b.Contain(ButtonsLeft) {
		strs = append(strs, "Left")
	}
	if b.Contain(ButtonsMiddle) {
		strs = append(strs, "Middle")
	}
	if b.Contain(ButtonsRight) {
		strs = append(strs, "Right")
	}
	return strings.Join(strs, "|")
}

func (EnterEvent) ImplementsEvent() {}
func (LeaveEvent) ImplementsEvent() {}
func (MoveEvent) ImplementsEvent()  {}
func (DownEvent) ImplementsEvent()  {}
func (UpEvent) ImplementsEvent()    {}
