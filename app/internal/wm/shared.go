// SPDX-License-Identifier: Unlicense OR MIT

package wm

import (
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/event"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
)

// comp is the set of compressible event kinds pending in a queue.
type comp uint8

const (
	compResize comp = 1 << iota
	compMove
)

// Shared is the state of a window shared between the window and the
// native callbacks of its display. It is owned by the UI goroutine.
//
// Resize and MoveEvent are compressed: while one is pending, newer
// ones overwrite it in place.
type Shared struct {
	events    []event.Event
	comp      comp
	resizeIdx int
	moveIdx   int

	// Size is the last reported client size.
	Size geom.ISize
	// Rect is the outer window rectangle, including decorations.
	Rect    geom.IRect
	State   system.State
	Mods    key.Mods
	Buttons pointer.Buttons
	Pos     geom.FPoint
	Inside  bool
}

// Resize records a new client size and queues a ResizeEvent. Empty and
// unchanged sizes are ignored.
func (s *Shared) Resize(size geom.ISize) bool {
	if size.Empty() || size == s.Size {
		return false
	}
	s.Size = size
	e := system.ResizeEvent{Size: size}
	if s.comp&compResize != 0 {
		s.events[s.resizeIdx] = e
		return true
	}
	s.comp |= compResize
	s.resizeIdx = len(s.events)
	s.events = append(s.events, e)
	return true
}

// SetState records st and queues a StateEvent if its mode differs
// from the recorded one.
func (s *Shared) SetState(st system.State) bool {
	if s.State.SameMode(st) {
		s.State = st
		return false
	}
	s.State = st
	s.events = append(s.events, system.StateEvent{State: st})
	return true
}

// Close queues a CloseEvent.
func (s *Shared) Close() {
	s.events = append(s.events, system.CloseEvent{})
}

func (s *Shared) Enter(pos geom.FPoint) {
	s.Inside = true
	s.Pos = pos
	s.events = append(s.events, pointer.EnterEvent{Pos: pos, Buttons: s.Buttons, Mods: s.Mods})
}

func (s *Shared) Leave(pos geom.FPoint) {
	s.Inside = false
	s.Pos = pos
	s.events = append(s.events, pointer.LeaveEvent{Pos: pos, Buttons: s.Buttons, Mods: s.Mods})
}

// Move records the pointer position and queues a compressed
// MoveEvent.
func (s *Shared) Move(pos geom.FPoint) {
	s.Pos = pos
	e := pointer.MoveEvent{Pos: pos, Buttons: s.Buttons, Mods: s.Mods}
	if s.comp&compMove != 0 {
		s.events[s.moveIdx] = e
		return
	}
	s.comp |= compMove
	s.moveIdx = len(s.events)
	s.events = append(s.events, e)
}

func (s *Shared) ButtonDown(b pointer.Button) {
	s.Buttons |= b.Mask()
	s.events = append(s.events, pointer.DownEvent{Pos: s.Pos, Button: b, Buttons: s.Buttons, Mods: s.Mods})
}

func (s *Shared) ButtonUp(b pointer.Button) {
	s.Buttons &^= b.Mask()
	s.events = append(s.events, pointer.UpEvent{Pos: s.Pos, Button: b, Buttons: s.Buttons, Mods: s.Mods})
}

// KeyDown queues a key press. Pressing a modifier key adds it to Mods
// before the event is queued.
func (s *Shared) KeyDown(sym key.Sym, code key.Code, text string) {
	s.Mods |= key.ModFor(code)
	s.events = append(s.events, key.DownEvent{Sym: sym, Code: code, Mods: s.Mods, Text: text})
}

// KeyUp queues a key release. Releasing a modifier key removes it from
// Mods before the event is queued.
func (s *Shared) KeyUp(sym key.Sym, code key.Code) {
	s.Mods &^= key.ModFor(code)
	s.events = append(s.events, key.UpEvent{Sym: sym, Code: code, Mods: s.Mods})
}

// Pending returns the number of queued events.
func (s *Shared) Pending() int {
	return len(s.events)
}

// Drain returns the queued events and empties the queue.
func (s *Shared) Drain() []event.Event {
	evs := s.events
	s.events = nil
	s.comp = 0
	return evs
}
