// SPDX-License-Identifier: Unlicense OR MIT

//go:build ((linux && !android) || freebsd || openbsd || netbsd || dragonfly) && !nox11

package app

import (
	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/app/internal/xcb"
)

func init() {
	x11Driver = func() (wm.Driver, error) {
		d, err := xcb.Open()
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
