// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux && !android && !nowayland

package app

import (
	"github.com/owsgo/ows/app/internal/wayland"
	"github.com/owsgo/ows/app/internal/wm"
)

func init() {
	wlDriver = func() (wm.Driver, error) {
		d, err := wayland.Open()
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
