// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"runtime"

	"github.com/owsgo/ows/app/internal/win32"
	"github.com/owsgo/ows/app/internal/wm"
)

func init() {
	win32Driver = func() (wm.Driver, error) {
		// Windows and their messages belong to the creating thread.
		runtime.LockOSThread()
		d, err := win32.Open()
		if err != nil {
			runtime.UnlockOSThread()
			return nil, err
		}
		return d, nil
	}
}
