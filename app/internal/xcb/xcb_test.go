// SPDX-License-Identifier: Unlicense OR MIT

package xcb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/event"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
)

// fakeServer records requests and replays queued events.
type fakeServer struct {
	nextID  xproto.Window
	atoms   map[string]xproto.Atom
	queue   []xgb.Event
	calls   []string
	rects   map[xproto.Window]geom.IRect
	state   system.Mode
	keysyms map[xproto.Keycode][2]xproto.Keysym
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		nextID: 0x400001,
		atoms:  make(map[string]xproto.Atom),
		rects:  make(map[xproto.Window]geom.IRect),
		keysyms: map[xproto.Keycode][2]xproto.Keysym{
			38:  {'a', 'A'},
			10:  {'1', '!'},
			50:  {0xffe1, 0xffe1},
			36:  {0xff0d, 0xff0d},
			133: {0xffeb, 0xffeb},
		},
	}
}

func (s *fakeServer) record(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *fakeServer) Screen() geom.ISize { return geom.ISize{W: 1920, H: 1080} }

func (s *fakeServer) Atom(name string) (xproto.Atom, error) {
	a, ok := s.atoms[name]
	if !ok {
		a = xproto.Atom(len(s.atoms) + 300)
		s.atoms[name] = a
	}
	return a, nil
}

func (s *fakeServer) CreateWindow(r geom.IRect) (xproto.Window, error) {
	id := s.nextID
	s.nextID++
	s.rects[id] = r
	s.record("create %d,%d %dx%d", r.X, r.Y, r.W, r.H)
	return id, nil
}

func (s *fakeServer) DestroyWindow(w xproto.Window) error {
	s.record("destroy")
	return nil
}

func (s *fakeServer) MapWindow(w xproto.Window) error {
	s.record("map")
	return nil
}

func (s *fakeServer) ResizeWindow(w xproto.Window, size geom.ISize) error {
	s.record("resize %dx%d", size.W, size.H)
	return nil
}

func (s *fakeServer) SetTitle(w xproto.Window, title string) error {
	s.record("title %s", title)
	return nil
}

func (s *fakeServer) SetInitialState(w xproto.Window, atoms []string) error {
	s.record("initial %s", strings.Join(atoms, " "))
	return nil
}

func (s *fakeServer) ChangeState(w xproto.Window, add bool, atoms ...string) error {
	op := "remove"
	if add {
		op = "add"
	}
	s.record("%s %s", op, strings.Join(atoms, " "))
	return nil
}

func (s *fakeServer) Iconify(w xproto.Window) error {
	s.record("iconify")
	return nil
}

func (s *fakeServer) State(w xproto.Window) (system.Mode, error) {
	return s.state, nil
}

func (s *fakeServer) Keysym(code xproto.Keycode, column byte) xproto.Keysym {
	return s.keysyms[code][column]
}

func (s *fakeServer) Poll() (xgb.Event, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, nil
}

func (s *fakeServer) Close() {}

func newTestDisplay(t *testing.T) (*Display, *fakeServer) {
	t.Helper()
	srv := newFakeServer()
	d, err := newDisplay(srv)
	if err != nil {
		t.Fatal(err)
	}
	return d, srv
}

func newShownWindow(t *testing.T, d *Display, st system.State) *window {
	t.Helper()
	ww, err := d.NewWindow()
	if err != nil {
		t.Fatal(err)
	}
	w := ww.(*window)
	if err := w.Show(st); err != nil {
		t.Fatal(err)
	}
	return w
}

func collect(t *testing.T, d *Display, srv *fakeServer, evs ...xgb.Event) {
	t.Helper()
	srv.queue = append(srv.queue, evs...)
	if err := d.CollectEvents(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateCentered(t *testing.T) {
	d, srv := newTestDisplay(t)
	w, _ := d.NewWindow()
	w.SetTitle("hello")
	if w.Shown() {
		t.Fatal("window shown before Show")
	}
	if err := w.Show(system.Normal()); err != nil {
		t.Fatal(err)
	}
	want := []string{"create 640,300 640x480", "title hello", "map"}
	if got := srv.calls; strings.Join(got, ";") != strings.Join(want, ";") {
		t.Errorf("got calls %q, expected %q", got, want)
	}
}

func TestCreateWithState(t *testing.T) {
	d, srv := newTestDisplay(t)
	newShownWindow(t, d, system.Fullscreen())
	if got := srv.calls[1]; got != "initial "+netFullscreen {
		t.Errorf("got %q, expected the fullscreen state set before map", got)
	}
	if got := srv.calls[2]; got != "map" {
		t.Errorf("got %q, expected map", got)
	}
	srv.calls = nil
	newShownWindow(t, d, system.NormalSize(100, 50))
	if got := srv.calls[0]; got != "create 910,515 100x50" {
		t.Errorf("got %q for a sized window", got)
	}
}

func TestShowIdempotent(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Maximized())
	srv.calls = nil
	for i := 0; i < 3; i++ {
		if err := w.Show(system.Maximized()); err != nil {
			t.Fatal(err)
		}
	}
	if len(srv.calls) != 0 {
		t.Errorf("repeated Show issued %q", srv.calls)
	}
	if n := w.shared.Pending(); n != 0 {
		t.Errorf("repeated Show queued %d events", n)
	}

	// A sized Normal state stays idempotent once the window manager
	// has picked another size.
	w = newShownWindow(t, d, system.NormalSize(800, 600))
	collect(t, d, srv, xproto.ConfigureNotifyEvent{Window: w.id, Width: 1024, Height: 700})
	w.shared.Drain()
	srv.calls = nil
	for i := 0; i < 3; i++ {
		if err := w.Show(system.NormalSize(800, 600)); err != nil {
			t.Fatal(err)
		}
	}
	if len(srv.calls) != 0 {
		t.Errorf("repeated sized Show issued %q", srv.calls)
	}
	if got := w.shared.Size; got != geom.Sz[int32](1024, 700) {
		t.Errorf("got size %v, expected the configured 1024x700", got)
	}
}

func TestCreateRecordsSize(t *testing.T) {
	d, _ := newTestDisplay(t)
	w := newShownWindow(t, d, system.NormalSize(800, 600))
	if got := w.shared.Size; got != geom.Sz[int32](800, 600) {
		t.Errorf("got size %v, expected 800x600", got)
	}
	w = newShownWindow(t, d, system.Maximized())
	if got := w.shared.Size; got != geom.Sz[int32](defaultWidth, defaultHeight) {
		t.Errorf("got size %v, expected the default size", got)
	}
	if n := w.shared.Pending(); n != 0 {
		t.Errorf("creation queued %d events", n)
	}
}

func TestTokenStable(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := newShownWindow(t, d, system.Normal())
	b := newShownWindow(t, d, system.Normal())
	if a.Token() != a.Token() || b.Token() != b.Token() {
		t.Error("Token changed between calls")
	}
	if a.Token() == b.Token() {
		t.Errorf("two windows share the token %v", a.Token())
	}
	if got := a.Native().Window; got != uintptr(a.Token()) {
		t.Errorf("got native window %#x, expected the token %#x", got, a.Token())
	}
}

func TestStateTransitions(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	steps := []struct {
		st   system.State
		want []string
	}{
		{system.Maximized(), []string{"add " + netMaxHorz + " " + netMaxVert}},
		{system.Fullscreen(), []string{"remove " + netMaxHorz + " " + netMaxVert, "add " + netFullscreen}},
		{system.Minimized(), []string{"remove " + netFullscreen, "iconify"}},
		{system.NormalSize(300, 200), []string{"map", "resize 300x200"}},
	}
	for _, step := range steps {
		srv.calls = nil
		if err := w.Show(step.st); err != nil {
			t.Fatal(err)
		}
		if got := strings.Join(srv.calls, ";"); got != strings.Join(step.want, ";") {
			t.Errorf("%v: got calls %q, expected %q", step.st, srv.calls, step.want)
		}
	}
}

func TestConfigureNotify(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	collect(t, d, srv,
		xproto.ConfigureNotifyEvent{Window: w.id, Width: 640, Height: 480},
		xproto.ConfigureNotifyEvent{Window: w.id, Width: 0, Height: 480},
		xproto.ConfigureNotifyEvent{Window: w.id, X: 5, Width: 640, Height: 480},
		xproto.ConfigureNotifyEvent{Window: w.id, Width: 800, Height: 600},
	)
	evs := w.shared.Drain()
	if len(evs) != 1 || evs[0] != event.Event(system.ResizeEvent{Size: geom.Sz[int32](800, 600)}) {
		t.Errorf("got %v, expected a single compressed resize", evs)
	}
}

func TestDeleteWindow(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	msg := func(atom xproto.Atom) xproto.ClientMessageEvent {
		return xproto.ClientMessageEvent{
			Format: 32,
			Window: w.id,
			Type:   d.wmProtocols,
			Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(atom), 0, 0, 0, 0}),
		}
	}
	collect(t, d, srv, msg(d.wmState), msg(d.wmDeleteWindow))
	evs := w.shared.Drain()
	if len(evs) != 1 || evs[0] != event.Event(system.CloseEvent{}) {
		t.Errorf("got %v, expected one close event", evs)
	}
	if len(d.windows) != 1 {
		t.Error("close request destroyed the window")
	}
}

func TestPropertyState(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	srv.state = system.ModeMaximized
	collect(t, d, srv, xproto.PropertyNotifyEvent{Window: w.id, Atom: d.netWMState})
	srv.state = system.ModeMinimized
	collect(t, d, srv, xproto.PropertyNotifyEvent{Window: w.id, Atom: d.wmState})
	collect(t, d, srv, xproto.PropertyNotifyEvent{Window: w.id, Atom: d.wmState})
	evs := w.shared.Drain()
	want := []event.Event{
		system.StateEvent{State: system.Maximized()},
		system.StateEvent{State: system.Minimized()},
	}
	if len(evs) != len(want) {
		t.Fatalf("got %v, expected %v", evs, want)
	}
	for i := range want {
		if evs[i] != want[i] {
			t.Errorf("event %d: got %v, expected %v", i, evs[i], want[i])
		}
	}
}

func TestSinglePointedWindow(t *testing.T) {
	d, srv := newTestDisplay(t)
	a := newShownWindow(t, d, system.Normal())
	b := newShownWindow(t, d, system.Normal())
	collect(t, d, srv,
		xproto.EnterNotifyEvent{Event: a.id, EventX: 1, EventY: 1},
		xproto.MotionNotifyEvent{Event: b.id, EventX: 3, EventY: 3},
		xproto.EnterNotifyEvent{Event: b.id, EventX: 2, EventY: 2},
		xproto.LeaveNotifyEvent{Event: a.id},
		xproto.MotionNotifyEvent{Event: b.id, EventX: 4, EventY: 4},
	)
	aev := a.shared.Drain()
	if len(aev) != 2 {
		t.Fatalf("window a: got %v, expected enter and leave", aev)
	}
	if _, ok := aev[1].(pointer.LeaveEvent); !ok {
		t.Errorf("window a: got %T, expected a leave when b was entered", aev[1])
	}
	bev := b.shared.Drain()
	if len(bev) != 2 {
		t.Fatalf("window b: got %v, expected enter and move", bev)
	}
	if mv, ok := bev[1].(pointer.MoveEvent); !ok || mv.Pos != geom.Pt[float32](4, 4) {
		t.Errorf("window b: got %v, expected a move to (4,4)", bev[1])
	}
}

func TestButtons(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	collect(t, d, srv,
		xproto.ButtonPressEvent{Event: w.id, Detail: 1, EventX: 10, EventY: 20},
		xproto.ButtonPressEvent{Event: w.id, Detail: 4},
		xproto.ButtonPressEvent{Event: w.id, Detail: 9},
		xproto.ButtonReleaseEvent{Event: w.id, Detail: 1, EventX: 10, EventY: 20, State: xproto.KeyButMaskButton1},
	)
	evs := w.shared.Drain()
	if len(evs) != 2 {
		t.Fatalf("got %v, expected press and release", evs)
	}
	down := evs[0].(pointer.DownEvent)
	if down.Button != pointer.ButtonLeft || down.Pos != geom.Pt[float32](10, 20) || down.Buttons != pointer.ButtonsLeft {
		t.Errorf("got %+v", down)
	}
	if up := evs[1].(pointer.UpEvent); up.Buttons != 0 {
		t.Errorf("got buttons %v after release, expected none", up.Buttons)
	}
}

func TestKeys(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	collect(t, d, srv,
		xproto.KeyPressEvent{Event: w.id, Detail: 38},
		xproto.KeyPressEvent{Event: w.id, Detail: 50},
		xproto.KeyPressEvent{Event: w.id, Detail: 10, State: xproto.ModMaskShift},
		xproto.KeyReleaseEvent{Event: w.id, Detail: 50, State: xproto.ModMaskShift},
		xproto.KeyPressEvent{Event: w.id, Detail: 36},
	)
	evs := w.shared.Drain()
	want := []event.Event{
		key.DownEvent{Sym: key.SymRune('a'), Code: key.CodeA, Text: "a"},
		key.DownEvent{Sym: key.SymLeftShift, Code: key.CodeLeftShift, Mods: key.ModLeftShift},
		key.DownEvent{Sym: key.SymRune('!'), Code: key.Code1, Mods: key.ModLeftShift, Text: "!"},
		key.UpEvent{Sym: key.SymLeftShift, Code: key.CodeLeftShift},
		key.DownEvent{Sym: key.SymReturn, Code: key.CodeEnter},
	}
	if len(evs) != len(want) {
		t.Fatalf("got %v, expected %v", evs, want)
	}
	for i := range want {
		if evs[i] != want[i] {
			t.Errorf("event %d: got %+v, expected %+v", i, evs[i], want[i])
		}
	}
}

func TestCloseForgetsWindow(t *testing.T) {
	d, srv := newTestDisplay(t)
	w := newShownWindow(t, d, system.Normal())
	id := w.id
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	collect(t, d, srv, xproto.ConfigureNotifyEvent{Window: id, Width: 10, Height: 10})
	if n := w.shared.Pending(); n != 0 {
		t.Errorf("closed window received %d events", n)
	}
	if err := w.Show(system.Maximized()); err == nil {
		t.Error("Show after Close should fail")
	}
	if got := srv.calls[len(srv.calls)-1]; got != "destroy" {
		t.Errorf("got last call %q, expected destroy", got)
	}
}

func TestConvertKeysym(t *testing.T) {
	tests := []struct {
		ks   xproto.Keysym
		mods key.Mods
		sym  key.Sym
		text string
	}{
		{'q', 0, key.SymRune('q'), "q"},
		{'q', key.ModLeftCtrl, key.SymRune('q'), ""},
		{0xe9, 0, key.SymRune('é'), "é"},
		{0x010020ac, 0, key.SymRune('€'), "€"},
		{0xffbe, 0, key.SymF(1), ""},
		{0xffb5, 0, key.SymKP(key.SymRune('5')), "5"},
		{0xffab, 0, key.SymKP(key.SymRune('+')), "+"},
		{0xffeb, 0, key.SymLeftSuper, ""},
		{0xfe03, 0, key.SymUnknown, ""},
	}
	for _, test := range tests {
		sym, text := convertKeysym(test.ks, test.mods)
		if sym != test.sym || text != test.text {
			t.Errorf("convertKeysym(%#x) = (%v, %q), want (%v, %q)", test.ks, sym, text, test.sym, test.text)
		}
	}
}
