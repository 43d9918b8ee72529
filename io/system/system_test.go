// SPDX-License-Identifier: Unlicense OR MIT

package system

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Normal(), "Normal"},
		{NormalSize(640, 480), "Normal(640x480)"},
		{NormalSize(0, 480), "Normal"},
		{Maximized(), "Maximized"},
		{Minimized(), "Minimized"},
		{Fullscreen(), "Fullscreen"},
	}
	for _, test := range tests {
		if got := test.s.String(); got != test.want {
			t.Errorf("got %q, expected %q", got, test.want)
		}
	}
}

func TestSameModeIgnoresSize(t *testing.T) {
	if !NormalSize(100, 100).SameMode(Normal()) {
		t.Error("Normal states with different sizes should share a mode")
	}
	if Maximized().SameMode(Fullscreen()) {
		t.Error("Maximized and Fullscreen should differ")
	}
}
