// SPDX-License-Identifier: Unlicense OR MIT

package keymap

import (
	"testing"

	"github.com/owsgo/ows/io/key"
)

func TestEvdev(t *testing.T) {
	tests := []struct {
		code uint32
		want key.Code
	}{
		{1, key.CodeEscape},
		{30, key.CodeA},
		{57, key.CodeSpace},
		{103, key.CodeUp},
		{125, key.CodeLeftSuper},
		{84, key.CodeUnknown},
		{5000, key.CodeUnknown},
	}
	for _, test := range tests {
		if got := Evdev(test.code); got != test.want {
			t.Errorf("Evdev(%d) = %v, want %v", test.code, got, test.want)
		}
	}
}

func TestSet1(t *testing.T) {
	tests := []struct {
		code uint32
		ext  bool
		want key.Code
	}{
		{0x1e, false, key.CodeA},
		{0x1c, false, key.CodeEnter},
		{0x1c, true, key.CodeKPEnter},
		{0x1d, true, key.CodeRightCtrl},
		{0x48, false, key.CodeKP8},
		{0x48, true, key.CodeUp},
		{0x45, false, key.CodeNumLock},
		{0x70, false, key.CodeUnknown},
	}
	for _, test := range tests {
		if got := Set1(test.code, test.ext); got != test.want {
			t.Errorf("Set1(%#x, %v) = %v, want %v", test.code, test.ext, got, test.want)
		}
	}
}

func TestUS(t *testing.T) {
	tests := []struct {
		code key.Code
		mods key.Mods
		sym  key.Sym
		text string
	}{
		{key.CodeA, 0, key.SymRune('a'), "a"},
		{key.CodeA, key.ModLeftShift, key.SymRune('A'), "A"},
		{key.CodeA, key.ModLeftCtrl, key.SymRune('a'), ""},
		{key.Code1, key.ModRightShift, key.SymRune('!'), "!"},
		{key.Code0, 0, key.SymRune('0'), "0"},
		{key.CodeSlash, key.ModLeftShift, key.SymRune('?'), "?"},
		{key.CodeEnter, 0, key.SymReturn, ""},
		{key.CodeF5, 0, key.SymF(5), ""},
		{key.CodeKP3, 0, key.SymKP(key.SymRune('3')), "3"},
		{key.CodeLeftShift, key.ModLeftShift, key.SymLeftShift, ""},
		{key.CodeUnknown, 0, key.SymUnknown, ""},
	}
	for _, test := range tests {
		sym, txt := US(test.code, test.mods)
		if sym != test.sym || txt != test.text {
			t.Errorf("US(%v, %v) = (%v, %q), want (%v, %q)", test.code, test.mods, sym, txt, test.sym, test.text)
		}
	}
}

func TestReconcile(t *testing.T) {
	m := Reconcile(key.ModRightShift|key.ModLeftCtrl, MaskShift)
	if m != key.ModRightShift {
		t.Errorf("got %v, expected the stale ctrl to be dropped", m)
	}
	if m := Reconcile(0, MaskAlt); m != key.ModLeftAlt {
		t.Errorf("got %v, expected alt to be picked up", m)
	}
	if m := Reconcile(key.ModSuper, 0); m != 0 {
		t.Errorf("got %v, expected super to be released", m)
	}
}
