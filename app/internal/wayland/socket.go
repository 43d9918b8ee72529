// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package wayland

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// Open connects to the compositor named by $WAYLAND_DISPLAY and binds
// its globals.
func Open() (*Display, error) {
	path, err := socketPath()
	if err != nil {
		return nil, err
	}
	return open(path)
}

func open(path string) (*Display, error) {
	display, err := client.Connect(path)
	if err != nil {
		return nil, fmt.Errorf("wayland: connect: %w", err)
	}
	d, err := newDisplay(display)
	if err != nil {
		display.Context().Close()
		return nil, err
	}
	return d, nil
}

// socketPath resolves $WAYLAND_DISPLAY against $XDG_RUNTIME_DIR unless
// it is absolute.
func socketPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", errors.New("wayland: XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(dir, name), nil
}
