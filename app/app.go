// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/gpu/headless"
)

// ErrClosed is returned by operations on a closed Window or Display.
var ErrClosed = errors.New("app: closed")

var errNoBackend = errors.New("no backend available")

// OpenError is returned by Open when no windowing system could be
// reached.
type OpenError struct {
	// Backend is the name of the backend that failed, or empty if
	// none was available.
	Backend string
	Err     error
}

// Option configures Open.
type Option func(cfg *config)

type config struct {
	backend string
	inst    gpu.Instance
}

type driverFunc func() (wm.Driver, error)

// Each platform file sets the drivers it supports.
var wlDriver, x11Driver, win32Driver driverFunc

// Display is a connection to a windowing system.
type Display struct {
	drv     wm.Driver
	inst    gpu.Instance
	ownInst bool
	windows []*Window
	closed  bool
}

// Backend forces the windowing system: "wayland", "x11" or "win32".
// The empty name restores automatic selection.
func Backend(name string) Option {
	return func(cfg *config) {
		cfg.backend = name
	}
}

// GPU sets the instance returned by Display.Instance and used by
// Window.CreateSurface. The default is a headless instance owned by
// the Display.
func GPU(inst gpu.Instance) Option {
	return func(cfg *config) {
		cfg.inst = inst
	}
}

// Open connects to the windowing system.
func Open(opts ...Option) (*Display, error) {
	cfg := config{backend: os.Getenv("OWS_BACKEND")}
	for _, o := range opts {
		o(&cfg)
	}
	drv, err := openDriver(cfg.backend)
	if err != nil {
		return nil, err
	}
	d := &Display{drv: drv, inst: cfg.inst}
	if d.inst == nil {
		d.inst = headless.New()
		d.ownInst = true
	}
	return d, nil
}

func drivers() []struct {
	name string
	open driverFunc
} {
	return []struct {
		name string
		open driverFunc
	}{
		{"wayland", wlDriver},
		{"x11", x11Driver},
		{"win32", win32Driver},
	}
}

func openDriver(name string) (wm.Driver, error) {
	var errFirst *OpenError
	for _, d := range drivers() {
		if d.open == nil || name != "" && d.name != name {
			continue
		}
		drv, err := d.open()
		if err == nil {
			return drv, nil
		}
		if name == "" {
			log.Printf("app: %s unavailable: %v", d.name, err)
		}
		if errFirst == nil {
			errFirst = &OpenError{Backend: d.name, Err: err}
		}
	}
	if errFirst != nil {
		return nil, errFirst
	}
	return nil, &OpenError{Backend: name, Err: errNoBackend}
}

// Backend returns the name of the windowing system.
func (d *Display) Backend() string {
	return d.drv.Name()
}

// Instance returns the GPU instance the Display was opened with.
func (d *Display) Instance() gpu.Instance {
	return d.inst
}

// CreateWindow allocates a window. The native window is created by
// its first Show.
func (d *Display) CreateWindow() (*Window, error) {
	if d.closed {
		return nil, ErrClosed
	}
	w, err := d.drv.NewWindow()
	if err != nil {
		return nil, err
	}
	win := &Window{d: d, w: w}
	d.windows = append(d.windows, win)
	return win, nil
}

// CollectEvents moves every pending native event into the queues of
// the windows. It does not block.
func (d *Display) CollectEvents() error {
	if d.closed {
		return ErrClosed
	}
	return d.drv.CollectEvents()
}

// Close closes every window and then the connection.
func (d *Display) Close() error {
	if d.closed {
		return nil
	}
	var errFirst error
	for len(d.windows) > 0 {
		if err := d.windows[0].Close(); err != nil && errFirst == nil {
			errFirst = err
		}
	}
	d.closed = true
	if err := d.drv.Close(); err != nil && errFirst == nil {
		errFirst = err
	}
	if d.ownInst {
		d.inst.Destroy()
	}
	return errFirst
}

func (d *Display) forget(w *Window) {
	for i, w2 := range d.windows {
		if w2 == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			return
		}
	}
}

func (e *OpenError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("app: open: %v", e.Err)
	}
	return fmt.Sprintf("app: open %s: %v", e.Backend, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
