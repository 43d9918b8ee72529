// SPDX-License-Identifier: Unlicense OR MIT

package win32

import "github.com/owsgo/ows/io/key"

// vkSyms maps virtual keys whose meaning does not depend on the
// layout. Return is left out so that the keypad Enter keeps its
// physical symbol; modifiers come from the scan code for the same
// reason.
var vkSyms = map[uint32]key.Sym{
	0x08: key.SymBackspace,
	0x09: key.SymTab,
	0x0c: key.SymClear,
	0x13: key.SymPause,
	0x14: key.SymCapsLock,
	0x1b: key.SymEscape,
	0x21: key.SymPageUp,
	0x22: key.SymPageDown,
	0x23: key.SymEnd,
	0x24: key.SymHome,
	0x25: key.SymLeft,
	0x26: key.SymUp,
	0x27: key.SymRight,
	0x28: key.SymDown,
	0x2c: key.SymPrint,
	0x2d: key.SymInsert,
	0x2e: key.SymDelete,
	0x2f: key.SymHelp,
	0x5d: key.SymMenu,
	0x6a: key.SymKP(key.SymRune('*')),
	0x6b: key.SymKP(key.SymRune('+')),
	0x6c: key.SymKP(key.SymRune(',')),
	0x6d: key.SymKP(key.SymRune('-')),
	0x6e: key.SymKP(key.SymRune('.')),
	0x6f: key.SymKP(key.SymRune('/')),
	0x90: key.SymNumLock,
	0x91: key.SymScrollLock,
}

func init() {
	for i := uint32(0); i < 10; i++ {
		vkSyms[0x60+i] = key.SymKP(key.SymRune('0' + rune(i)))
	}
	for i := uint32(0); i < 24; i++ {
		vkSyms[0x70+i] = key.SymF(int(i) + 1)
	}
}
