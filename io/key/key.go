// SPDX-License-Identifier: Unlicense OR MIT

// Package key implements keyboard events and the key vocabulary.
//
// A Code identifies a physical key by its USB HID usage and does not
// depend on the keyboard layout. A Sym identifies the symbol the key
// produces under the active layout.
package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Mods is the set of held modifier keys. Left and right keys are
// tracked separately.
type Mods uint32

const (
	ModLeftCtrl Mods = 1 << iota
	ModRightCtrl
	ModLeftShift
	ModRightShift
	ModLeftAlt
	ModRightAlt
	ModSuper

	ModCtrl  = ModLeftCtrl | ModRightCtrl
	ModShift = ModLeftShift | ModRightShift
	ModAlt   = ModLeftAlt | ModRightAlt
)

// DownEvent is generated when a key is pressed or auto-repeats.
type DownEvent struct {
	Sym  Sym
	Code Code
	Mods Mods
	// Text is the text produced by the key press, if any. On Win32 it
	// holds one copy per repeat.
	Text string
}

// UpEvent is generated when a key is released.
type UpEvent struct {
	Sym  Sym
	Code Code
	Mods Mods
}

// Contain reports whether m holds any of the modifiers in m2.
func (m Mods) Contain(m2 Mods) bool {
	return m&m2 != 0
}

func (m Mods) String() string {
	var strs []string
	if m.Contain(ModCtrl) {
		strs = append(strs, "Ctrl")
	}
	if m.Contain(ModShift) {
		strs = append(strs, "Shift")
	}
	if m.Contain(ModAlt) {
		strs = append(strs, "Alt")
	}
	if m.Contain(ModSuper) {
		strs = append(strs, "Super")
	}
	return strings.Join(strs, "-")
}

// ModFor returns the modifier bit held by the key c, or zero.
func ModFor(c Code) Mods {
	switch c {
	case CodeLeftCtrl:
		return ModLeftCtrl
	case CodeRightCtrl:
		return ModRightCtrl
	case CodeLeftShift:
		return ModLeftShift
	case CodeRightShift:
		return ModRightShift
	case CodeLeftAlt:
		return ModLeftAlt
	case CodeRightAlt:
		return ModRightAlt
	case CodeLeftSuper, CodeRightSuper:
		return ModSuper
	}
	return 0
}

// Code is a physical key, numbered after the USB HID keyboard page.
type Code uint8

const (
	CodeA Code = 4 + iota
	CodeB
	CodeC
	CodeD
	CodeE
	CodeF
	CodeG
	CodeH
	CodeI
	CodeJ
	CodeK
	CodeL
	CodeM
	CodeN
	CodeO
	CodeP
	CodeQ
	CodeR
	CodeS
	CodeT
	CodeU
	CodeV
	CodeW
	CodeX
	CodeY
	CodeZ
	Code1
	Code2
	Code3
	Code4
	Code5
	Code6
	Code7
	Code8
	Code9
	Code0
	CodeEnter
	CodeEscape
	CodeBackspace
	CodeTab
	CodeSpace
	CodeMinus
	CodeEqual
	CodeLeftBracket
	CodeRightBracket
	CodeBackslash
	codeNonUSHash
	CodeSemicolon
	CodeApostrophe
	CodeGrave
	CodeComma
	CodePeriod
	CodeSlash
	CodeCapsLock
	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12
	CodePrintScreen
	CodeScrollLock
	CodePause
	CodeInsert
	CodeHome
	CodePageUp
	CodeDelete
	CodeEnd
	CodePageDown
	CodeRight
	CodeLeft
	CodeDown
	CodeUp
	CodeNumLock
	CodeKPDivide
	CodeKPMultiply
	CodeKPMinus
	CodeKPPlus
	CodeKPEnter
	CodeKP1
	CodeKP2
	CodeKP3
	CodeKP4
	CodeKP5
	CodeKP6
	CodeKP7
	CodeKP8
	CodeKP9
	CodeKP0
	CodeKPPeriod
	codeNonUSBackslash
	CodeMenu
)

const (
	CodeLeftCtrl Code = 224 + iota
	CodeLeftShift
	CodeLeftAlt
	CodeLeftSuper
	CodeRightCtrl
	CodeRightShift
	CodeRightAlt
	CodeRightSuper

	CodeUnknown Code = 255
)

var codeNames = map[Code]string{
	CodeEnter: "Enter", CodeEscape: "Escape", CodeBackspace: "Backspace",
	CodeTab: "Tab", CodeSpace: "Space", CodeMinus: "Minus", CodeEqual: "Equal",
	CodeLeftBracket: "LeftBracket", CodeRightBracket: "RightBracket",
	CodeBackslash: "Backslash", CodeSemicolon: "Semicolon",
	CodeApostrophe: "Apostrophe", CodeGrave: "Grave", CodeComma: "Comma",
	CodePeriod: "Period", CodeSlash: "Slash", CodeCapsLock: "CapsLock",
	CodePrintScreen: "PrintScreen", CodeScrollLock: "ScrollLock",
	CodePause: "Pause", CodeInsert: "Insert", CodeHome: "Home",
	CodePageUp: "PageUp", CodeDelete: "Delete", CodeEnd: "End",
	CodePageDown: "PageDown", CodeRight: "Right", CodeLeft: "Left",
	CodeDown: "Down", CodeUp: "Up", CodeNumLock: "NumLock",
	CodeKPDivide: "KPDivide", CodeKPMultiply: "KPMultiply",
	CodeKPMinus: "KPMinus", CodeKPPlus: "KPPlus", CodeKPEnter: "KPEnter",
	CodeKPPeriod: "KPPeriod", CodeMenu: "Menu",
	CodeLeftCtrl: "LeftCtrl", CodeLeftShift: "LeftShift",
	CodeLeftAlt: "LeftAlt", CodeLeftSuper: "LeftSuper",
	CodeRightCtrl: "RightCtrl", CodeRightShift: "RightShift",
	CodeRightAlt: "RightAlt", CodeRightSuper: "RightSuper",
	CodeUnknown: "Unknown",
}

func (c Code) String() string {
	switch {
	case c >= CodeA && c <= CodeZ:
		return string(rune('A' + c - CodeA))
	case c >= Code1 && c <= Code9:
		return string(rune('1' + c - Code1))
	case c == Code0:
		return "0"
	case c >= CodeF1 && c <= CodeF12:
		return fmt.Sprintf("F%d", c-CodeF1+1)
	case c >= CodeKP1 && c <= CodeKP9:
		return fmt.Sprintf("KP%d", c-CodeKP1+1)
	case c == CodeKP0:
		return "KP0"
	}
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// Sym is the symbol produced by a key. Printable symbols are the
// upper case form of their rune. Other symbols carry one of the
// Control or Mod flags.
type Sym uint32

const (
	// SymControl flags non-printing keys.
	SymControl Sym = 0x80000000
	// SymKeypad flags keys on the numeric keypad.
	SymKeypad Sym = 0x40000000
	// SymMod flags modifier keys; the side and modifier bits below
	// tell which one.
	SymMod Sym = 0x00800000

	symCtrl  Sym = 0x10000
	symShift Sym = 0x20000
	symMeta  Sym = 0x40000
	symAlt   Sym = 0x80000
	symSuper Sym = 0x100000
	symLeft  Sym = 0x200000
	symRight Sym = 0x400000
)

const (
	SymEscape Sym = SymControl | (iota + 1)
	SymTab
	SymLeftTab
	SymBackspace
	SymReturn
	SymDelete
	SymSysRq
	SymPause
	SymClear
	SymCapsLock
	SymNumLock
	SymScrollLock
	SymLeft
	SymUp
	SymRight
	SymDown
	SymPageUp
	SymPageDown
	SymHome
	SymEnd
	SymPrint
	SymInsert
	SymMenu
	SymHelp
	SymBreak
)

// SymF1 to SymF24 are consecutive.
const (
	SymF1  Sym = SymControl | 0x100 | (iota + 1)
	SymF24 Sym = SymF1 + 23
)

const (
	SymLeftCtrl   = SymMod | symCtrl | symLeft
	SymRightCtrl  = SymMod | symCtrl | symRight
	SymLeftShift  = SymMod | symShift | symLeft
	SymRightShift = SymMod | symShift | symRight
	SymLeftAlt    = SymMod | symAlt | symLeft
	SymRightAlt   = SymMod | symAlt | symRight
	SymLeftMeta   = SymMod | symMeta | symLeft
	SymRightMeta  = SymMod | symMeta | symRight
	SymLeftSuper  = SymMod | symSuper | symLeft
	SymRightSuper = SymMod | symSuper | symRight

	SymKPEnter = SymKeypad | SymReturn

	SymUnknown Sym = 0xffdf
)

// SymRune returns the printable symbol for r.
func SymRune(r rune) Sym {
	return Sym(unicode.ToUpper(r))
}

// SymF returns the symbol of function key n, counting from 1.
func SymF(n int) Sym {
	if n < 1 || n > 24 {
		return SymUnknown
	}
	return SymF1 + Sym(n-1)
}

// SymKP returns the keypad variant of s.
func SymKP(s Sym) Sym {
	return SymKeypad | s
}

// IsControl reports whether s is a non-printing key.
func (s Sym) IsControl() bool { return s&SymControl != 0 }

// IsKeypad reports whether s is on the numeric keypad.
func (s Sym) IsKeypad() bool { return s&SymKeypad != 0 }

// IsMod reports whether s is a modifier key.
func (s Sym) IsMod() bool { return s&(SymControl|SymMod) == SymMod }

// Rune returns the printable rune of s, ignoring the keypad flag.
func (s Sym) Rune() (rune, bool) {
	if s == SymUnknown || s&(SymControl|SymMod) != 0 {
		return 0, false
	}
	r := rune(s &^ SymKeypad)
	return r, unicode.IsPrint(r)
}

var symNames = map[Sym]string{
	SymEscape: "Escape", SymTab: "Tab", SymLeftTab: "LeftTab",
	SymBackspace: "Backspace", SymReturn: "Return", SymDelete: "Delete",
	SymSysRq: "SysRq", SymPause: "Pause", SymClear: "Clear",
	SymCapsLock: "CapsLock", SymNumLock: "NumLock",
	SymScrollLock: "ScrollLock", SymLeft: "Left", SymUp: "Up",
	SymRight: "Right", SymDown: "Down", SymPageUp: "PageUp",
	SymPageDown: "PageDown", SymHome: "Home", SymEnd: "End",
	SymPrint: "Print", SymInsert: "Insert", SymMenu: "Menu",
	SymHelp: "Help", SymBreak: "Break",
	SymLeftCtrl: "LeftCtrl", SymRightCtrl: "RightCtrl",
	SymLeftShift: "LeftShift", SymRightShift: "RightShift",
	SymLeftAlt: "LeftAlt", SymRightAlt: "RightAlt",
	SymLeftMeta: "LeftMeta", SymRightMeta: "RightMeta",
	SymLeftSuper: "LeftSuper", SymRightSuper: "RightSuper",
	SymUnknown: "Unknown",
}

func (s Sym) String() string {
	if n, ok := symNames[s]; ok {
		return n
	}
	if s >= SymF1 && s <= SymF24 {
		return fmt.Sprintf("F%d", s-SymF1+1)
	}
	if s.IsKeypad() {
		return "KP" + (s &^ SymKeypad).String()
	}
	if r, ok := s.Rune(); ok {
		if r == ' ' {
			return "Space"
		}
		return string(r)
	}
	return fmt.Sprintf("Sym(%#x)", uint32(s))
}

func (DownEvent) ImplementsEvent() {}
func (UpEvent) ImplementsEvent()   {}
