// SPDX-License-Identifier: Unlicense OR MIT

package wm

// Focus tracks the single window of a connection holding the pointer
// or the keyboard.
type Focus[K comparable] struct {
	cur K
	set bool
}

// Enter makes k the focused window. It returns the previously
// focused window, if any and different from k.
func (f *Focus[K]) Enter(k K) (prev K, ok bool) {
	prev, ok = f.cur, f.set && f.cur != k
	f.cur, f.set = k, true
	return prev, ok
}

// Leave clears the focus if k holds it.
func (f *Focus[K]) Leave(k K) bool {
	if !f.set || f.cur != k {
		return false
	}
	var zero K
	f.cur, f.set = zero, false
	return true
}

// Get returns the focused window.
func (f *Focus[K]) Get() (K, bool) {
	return f.cur, f.set
}
