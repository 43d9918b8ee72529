// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package wayland

import (
	"fmt"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/sys/unix"
)

// Opcodes used by the fake compositor.
const (
	displayID = 1

	displaySync        = 0
	displayGetRegistry = 1
	displayError       = 0
	displayDeleteID    = 1

	registryBind   = 0
	registryGlobal = 0

	callbackDone = 0

	compositorCreateSurface = 0

	seatCapabilities = 0

	pointerEnter  = 0
	pointerLeave  = 1
	pointerMotion = 2
	pointerButton = 3

	keyboardKeymap    = 0
	keyboardEnter     = 1
	keyboardLeave     = 2
	keyboardKey       = 3
	keyboardModifiers = 4

	wmBasePing = 0

	xdgSurfaceConfigure = 0

	toplevelConfigure = 0
	toplevelClose     = 1
)

type global struct {
	iface   string
	version uint32
}

// requestNames lists the recorded requests by interface and opcode.
var requestNames = map[string][]string{
	"wl_surface":   {"destroy", "attach", "damage", "frame", "set_opaque_region", "set_input_region", "commit"},
	"wl_pointer":   {"set_cursor", "release"},
	"wl_keyboard":  {"release"},
	"wl_seat":      {"get_pointer", "get_keyboard", "get_touch", "release"},
	"xdg_wm_base":  {"destroy", "create_positioner", "get_xdg_surface", "pong"},
	"xdg_surface":  {"destroy", "get_toplevel", "get_popup", "set_window_geometry", "ack_configure"},
	"xdg_toplevel": {"destroy", "set_parent", "set_title", "set_app_id", "show_window_menu", "move", "resize", "set_max_size", "set_min_size", "set_maximized", "unset_maximized", "set_fullscreen", "unset_fullscreen", "set_minimized"},
}

// fakeCompositor serves one client on a unix socket, answering like a
// compositor with a fixed set of globals. Requests are recorded by
// name.
type fakeCompositor struct {
	t       *testing.T
	globals []global
	caps    uint32

	mu       sync.Mutex
	conn     *net.UnixConn
	ifaces   map[uint32]string
	created  []uint32
	requests []string
}

func newFakeCompositor(t *testing.T) *fakeCompositor {
	return &fakeCompositor{
		t: t,
		globals: []global{
			{"wl_compositor", 5},
			{"wl_output", 3},
			{"xdg_wm_base", 2},
			{"wl_seat", 7},
		},
		caps:   capPointer | capKeyboard,
		ifaces: map[uint32]string{displayID: "wl_display"},
	}
}

// listen starts serving and returns the socket path.
func (f *fakeCompositor) listen() string {
	path := filepath.Join(f.t.TempDir(), "wayland-0")
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		f.t.Fatal(err)
	}
	f.t.Cleanup(func() {
		ln.Close()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.conn != nil {
			f.conn.Close()
		}
	})
	go f.serve(ln)
	return path
}

func (f *fakeCompositor) serve(ln *net.UnixListener) {
	conn, err := ln.AcceptUnix()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	hdr := make([]byte, headerSize)
	for {
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		obj, op, size, _ := header(hdr)
		if size < headerSize {
			return
		}
		body := make([]byte, size-headerSize)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		f.mu.Lock()
		f.request(f.ifaces[obj], op, &decoder{b: body})
		f.mu.Unlock()
	}
}

// send writes one event. The caller holds mu.
func (f *fakeCompositor) send(obj uint32, op uint16, args ...any) error {
	var e encoder
	e.message(obj, op, args...)
	var oob []byte
	if len(e.fds) > 0 {
		oob = unix.UnixRights(e.fds...)
	}
	_, _, err := f.conn.WriteMsgUnix(e.buf, oob, nil)
	return err
}

// event sends an event to the client.
func (f *fakeCompositor) event(obj uint32, op uint16, args ...any) {
	f.t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.send(obj, op, args...); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fakeCompositor) create(id uint32, iface string) {
	f.ifaces[id] = iface
	f.created = append(f.created, id)
}

// objects returns the ids of iface in creation order.
func (f *fakeCompositor) objects(iface string) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint32
	for _, id := range f.created {
		if f.ifaces[id] == iface {
			ids = append(ids, id)
		}
	}
	return ids
}

// takeRequests returns and clears the recorded requests.
func (f *fakeCompositor) takeRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests
	f.requests = nil
	return reqs
}

func (f *fakeCompositor) request(iface string, op uint16, d *decoder) {
	switch {
	case iface == "wl_display" && op == displaySync:
		id := d.uint()
		f.send(id, callbackDone, uint32(0))
		f.send(displayID, displayDeleteID, id)
	case iface == "wl_display" && op == displayGetRegistry:
		id := d.uint()
		f.create(id, "wl_registry")
		for i, g := range f.globals {
			f.send(id, registryGlobal, uint32(i+1), g.iface, g.version)
		}
	case iface == "wl_registry" && op == registryBind:
		d.uint()
		name, version, id := d.string(), d.uint(), d.uint()
		f.create(id, name)
		f.requests = append(f.requests, fmt.Sprintf("bind %s %d", name, version))
		if name == "wl_seat" {
			f.send(id, seatCapabilities, f.caps)
		}
	case iface == "wl_compositor" && op == compositorCreateSurface:
		f.create(d.uint(), "wl_surface")
		f.requests = append(f.requests, "wl_compositor.create_surface")
	default:
		name := fmt.Sprintf("%s.%d", iface, op)
		if names := requestNames[iface]; int(op) < len(names) {
			name = iface + "." + names[op]
		}
		switch name {
		case "xdg_wm_base.get_xdg_surface":
			f.create(d.uint(), "xdg_surface")
		case "xdg_surface.get_toplevel":
			f.create(d.uint(), "xdg_toplevel")
		case "wl_seat.get_pointer":
			f.create(d.uint(), "wl_pointer")
		case "wl_seat.get_keyboard":
			f.create(d.uint(), "wl_keyboard")
		case "xdg_toplevel.set_title":
			name += " " + d.string()
		case "xdg_wm_base.pong", "xdg_surface.ack_configure":
			name += fmt.Sprintf(" %d", d.uint())
		}
		f.requests = append(f.requests, name)
	}
}
