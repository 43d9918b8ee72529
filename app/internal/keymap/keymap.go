// SPDX-License-Identifier: Unlicense OR MIT

// Package keymap translates hardware scan codes into key codes and
// implements the fallback US layout used when a platform reports no
// symbol of its own.
package keymap

import (
	"github.com/owsgo/ows/io/key"
)

// evdev is indexed by Linux input event codes. Set-1 scan codes
// coincide with them below 0x59.
var evdev = [...]key.Code{
	1: key.CodeEscape,
	2: key.Code1, 3: key.Code2, 4: key.Code3, 5: key.Code4, 6: key.Code5,
	7: key.Code6, 8: key.Code7, 9: key.Code8, 10: key.Code9, 11: key.Code0,
	12: key.CodeMinus, 13: key.CodeEqual, 14: key.CodeBackspace, 15: key.CodeTab,
	16: key.CodeQ, 17: key.CodeW, 18: key.CodeE, 19: key.CodeR, 20: key.CodeT,
	21: key.CodeY, 22: key.CodeU, 23: key.CodeI, 24: key.CodeO, 25: key.CodeP,
	26: key.CodeLeftBracket, 27: key.CodeRightBracket, 28: key.CodeEnter,
	29: key.CodeLeftCtrl,
	30: key.CodeA, 31: key.CodeS, 32: key.CodeD, 33: key.CodeF, 34: key.CodeG,
	35: key.CodeH, 36: key.CodeJ, 37: key.CodeK, 38: key.CodeL,
	39: key.CodeSemicolon, 40: key.CodeApostrophe, 41: key.CodeGrave,
	42: key.CodeLeftShift, 43: key.CodeBackslash,
	44: key.CodeZ, 45: key.CodeX, 46: key.CodeC, 47: key.CodeV, 48: key.CodeB,
	49: key.CodeN, 50: key.CodeM,
	51: key.CodeComma, 52: key.CodePeriod, 53: key.CodeSlash,
	54: key.CodeRightShift, 55: key.CodeKPMultiply, 56: key.CodeLeftAlt,
	57: key.CodeSpace, 58: key.CodeCapsLock,
	59: key.CodeF1, 60: key.CodeF2, 61: key.CodeF3, 62: key.CodeF4, 63: key.CodeF5,
	64: key.CodeF6, 65: key.CodeF7, 66: key.CodeF8, 67: key.CodeF9, 68: key.CodeF10,
	69: key.CodeNumLock, 70: key.CodeScrollLock,
	71: key.CodeKP7, 72: key.CodeKP8, 73: key.CodeKP9, 74: key.CodeKPMinus,
	75: key.CodeKP4, 76: key.CodeKP5, 77: key.CodeKP6, 78: key.CodeKPPlus,
	79: key.CodeKP1, 80: key.CodeKP2, 81: key.CodeKP3, 82: key.CodeKP0,
	83: key.CodeKPPeriod,
	87: key.CodeF11, 88: key.CodeF12,
	96: key.CodeKPEnter, 97: key.CodeRightCtrl, 98: key.CodeKPDivide,
	99: key.CodePrintScreen, 100: key.CodeRightAlt,
	102: key.CodeHome, 103: key.CodeUp, 104: key.CodePageUp, 105: key.CodeLeft,
	106: key.CodeRight, 107: key.CodeEnd, 108: key.CodeDown, 109: key.CodePageDown,
	110: key.CodeInsert, 111: key.CodeDelete, 119: key.CodePause,
	125: key.CodeLeftSuper, 126: key.CodeRightSuper, 127: key.CodeMenu,
}

// set1Ext holds the set-1 codes sent with the 0xe0 prefix.
var set1Ext = map[uint32]key.Code{
	0x1c: key.CodeKPEnter,
	0x1d: key.CodeRightCtrl,
	0x35: key.CodeKPDivide,
	0x37: key.CodePrintScreen,
	0x38: key.CodeRightAlt,
	0x47: key.CodeHome,
	0x48: key.CodeUp,
	0x49: key.CodePageUp,
	0x4b: key.CodeLeft,
	0x4d: key.CodeRight,
	0x4f: key.CodeEnd,
	0x50: key.CodeDown,
	0x51: key.CodePageDown,
	0x52: key.CodeInsert,
	0x53: key.CodeDelete,
	0x5b: key.CodeLeftSuper,
	0x5c: key.CodeRightSuper,
	0x5d: key.CodeMenu,
}

// Evdev returns the key code of a Linux input event code, as
// reported by Wayland and, offset by 8, by X11.
func Evdev(code uint32) key.Code {
	if code >= uint32(len(evdev)) || evdev[code] == 0 {
		return key.CodeUnknown
	}
	return evdev[code]
}

// Set1 returns the key code of a PC set-1 scan code.
func Set1(code uint32, extended bool) key.Code {
	if extended {
		if c, ok := set1Ext[code]; ok {
			return c
		}
		return key.CodeUnknown
	}
	if code == 0x45 {
		return key.CodeNumLock
	}
	if code >= 0x59 {
		return key.CodeUnknown
	}
	return Evdev(code)
}

var (
	usDigits        = "1234567890"
	usShiftedDigits = "!@#$%^&*()"
)

var usPunct = map[key.Code][2]rune{
	key.CodeMinus:        {'-', '_'},
	key.CodeEqual:        {'=', '+'},
	key.CodeLeftBracket:  {'[', '{'},
	key.CodeRightBracket: {']', '}'},
	key.CodeBackslash:    {'\\', '|'},
	key.CodeSemicolon:    {';', ':'},
	key.CodeApostrophe:   {'\'', '"'},
	key.CodeGrave:        {'`', '~'},
	key.CodeComma:        {',', '<'},
	key.CodePeriod:       {'.', '>'},
	key.CodeSlash:        {'/', '?'},
	key.CodeSpace:        {' ', ' '},
}

var controlSyms = map[key.Code]key.Sym{
	key.CodeEnter:       key.SymReturn,
	key.CodeEscape:      key.SymEscape,
	key.CodeBackspace:   key.SymBackspace,
	key.CodeTab:         key.SymTab,
	key.CodeCapsLock:    key.SymCapsLock,
	key.CodePrintScreen: key.SymPrint,
	key.CodeScrollLock:  key.SymScrollLock,
	key.CodePause:       key.SymPause,
	key.CodeInsert:      key.SymInsert,
	key.CodeHome:        key.SymHome,
	key.CodePageUp:      key.SymPageUp,
	key.CodeDelete:      key.SymDelete,
	key.CodeEnd:         key.SymEnd,
	key.CodePageDown:    key.SymPageDown,
	key.CodeRight:       key.SymRight,
	key.CodeLeft:        key.SymLeft,
	key.CodeDown:        key.SymDown,
	key.CodeUp:          key.SymUp,
	key.CodeNumLock:     key.SymNumLock,
	key.CodeKPEnter:     key.SymKPEnter,
	key.CodeMenu:        key.SymMenu,
	key.CodeLeftCtrl:    key.SymLeftCtrl,
	key.CodeRightCtrl:   key.SymRightCtrl,
	key.CodeLeftShift:   key.SymLeftShift,
	key.CodeRightShift:  key.SymRightShift,
	key.CodeLeftAlt:     key.SymLeftAlt,
	key.CodeRightAlt:    key.SymRightAlt,
	key.CodeLeftSuper:   key.SymLeftSuper,
	key.CodeRightSuper:  key.SymRightSuper,
}

var kpRunes = map[key.Code]rune{
	key.CodeKPDivide: '/', key.CodeKPMultiply: '*', key.CodeKPMinus: '-',
	key.CodeKPPlus: '+', key.CodeKPPeriod: '.', key.CodeKP0: '0',
}

// US returns the symbol and text of c under the US layout. Text is
// empty for keys that produce none.
func US(c key.Code, mods key.Mods) (key.Sym, string) {
	shift := mods.Contain(key.ModShift)
	switch {
	case c >= key.CodeA && c <= key.CodeZ:
		r := rune('a' + c - key.CodeA)
		if shift {
			r += 'A' - 'a'
		}
		return key.SymRune(r), text(r, mods)
	case c >= key.Code1 && c <= key.Code0:
		i := c - key.Code1
		r := rune(usDigits[i])
		if shift {
			r = rune(usShiftedDigits[i])
		}
		return key.SymRune(r), text(r, mods)
	case c >= key.CodeF1 && c <= key.CodeF12:
		return key.SymF(int(c-key.CodeF1) + 1), ""
	case c >= key.CodeKP1 && c <= key.CodeKP9:
		r := rune('1' + c - key.CodeKP1)
		return key.SymKP(key.SymRune(r)), text(r, mods)
	}
	if p, ok := usPunct[c]; ok {
		r := p[0]
		if shift {
			r = p[1]
		}
		return key.SymRune(r), text(r, mods)
	}
	if r, ok := kpRunes[c]; ok {
		return key.SymKP(key.SymRune(r)), text(r, mods)
	}
	if s, ok := controlSyms[c]; ok {
		return s, ""
	}
	return key.SymUnknown, ""
}

// text returns r as a string unless a shortcut modifier is held.
func text(r rune, mods key.Mods) string {
	if mods.Contain(key.ModCtrl | key.ModSuper) {
		return ""
	}
	return string(r)
}

// Core modifier masks of X11 and the default xkb keymap.
const (
	MaskShift   = 1 << 0
	MaskControl = 1 << 2
	MaskAlt     = 1 << 3
	MaskSuper   = 1 << 6
)

// Reconcile brings the tracked modifiers in line with a core modifier
// mask reported by the server. Keys released while another window had
// the focus are dropped that way.
func Reconcile(m key.Mods, state uint32) key.Mods {
	check := func(mask uint32, both, left key.Mods) {
		switch {
		case state&mask == 0:
			m &^= both
		case !m.Contain(both):
			m |= left
		}
	}
	check(MaskShift, key.ModShift, key.ModLeftShift)
	check(MaskControl, key.ModCtrl, key.ModLeftCtrl)
	check(MaskAlt, key.ModAlt, key.ModLeftAlt)
	check(MaskSuper, key.ModSuper, key.ModSuper)
	return m
}
