// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains the marker type shared by every window
// event.
package event

// Event is the marker interface for events.
type Event interface {
	ImplementsEvent()
}
