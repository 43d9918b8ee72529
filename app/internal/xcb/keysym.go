// SPDX-License-Identifier: Unlicense OR MIT

package xcb

import (
	"unicode"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/owsgo/ows/io/key"
)

var keysyms = map[xproto.Keysym]key.Sym{
	0xff08: key.SymBackspace,
	0xff09: key.SymTab,
	0xfe20: key.SymLeftTab,
	0xff0b: key.SymClear,
	0xff0d: key.SymReturn,
	0xff13: key.SymPause,
	0xff14: key.SymScrollLock,
	0xff15: key.SymSysRq,
	0xff1b: key.SymEscape,
	0xffff: key.SymDelete,
	0xff50: key.SymHome,
	0xff51: key.SymLeft,
	0xff52: key.SymUp,
	0xff53: key.SymRight,
	0xff54: key.SymDown,
	0xff55: key.SymPageUp,
	0xff56: key.SymPageDown,
	0xff57: key.SymEnd,
	0xff61: key.SymPrint,
	0xff63: key.SymInsert,
	0xff67: key.SymMenu,
	0xff6a: key.SymHelp,
	0xff6b: key.SymBreak,
	0xff7f: key.SymNumLock,
	0xff8d: key.SymKPEnter,
	0xffe1: key.SymLeftShift,
	0xffe2: key.SymRightShift,
	0xffe3: key.SymLeftCtrl,
	0xffe4: key.SymRightCtrl,
	0xffe5: key.SymCapsLock,
	0xffe7: key.SymLeftMeta,
	0xffe8: key.SymRightMeta,
	0xffe9: key.SymLeftAlt,
	0xffea: key.SymRightAlt,
	0xffeb: key.SymLeftSuper,
	0xffec: key.SymRightSuper,
}

var kpKeysyms = map[xproto.Keysym]rune{
	0xffaa: '*', 0xffab: '+', 0xffac: ',', 0xffad: '-', 0xffae: '.', 0xffaf: '/',
}

// keysymRune returns the character of a printable keysym.
func keysymRune(ks xproto.Keysym) (rune, bool) {
	switch {
	case ks >= 0x20 && ks <= 0x7e, ks >= 0xa0 && ks <= 0xff:
		return rune(ks), true
	case ks&0xff000000 == 0x01000000:
		r := rune(ks & 0x00ffffff)
		return r, unicode.IsPrint(r)
	case ks >= 0xffb0 && ks <= 0xffb9:
		return rune('0' + ks - 0xffb0), true
	}
	r, ok := kpKeysyms[ks]
	return r, ok
}

// convertKeysym returns the symbol and the text of ks.
func convertKeysym(ks xproto.Keysym, mods key.Mods) (key.Sym, string) {
	if s, ok := keysyms[ks]; ok {
		return s, ""
	}
	if ks >= 0xffbe && ks <= 0xffd5 {
		return key.SymF(int(ks-0xffbe) + 1), ""
	}
	r, ok := keysymRune(ks)
	if !ok {
		return key.SymUnknown, ""
	}
	sym := key.SymRune(r)
	if ks >= 0xffaa && ks <= 0xffb9 {
		sym = key.SymKP(sym)
	}
	if mods.Contain(key.ModCtrl | key.ModSuper) {
		return sym, ""
	}
	return sym, string(r)
}
