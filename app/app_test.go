// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"testing"

	"github.com/owsgo/ows/app/internal/wm"
	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/gpu/headless"
	"github.com/owsgo/ows/io/event"
	"github.com/owsgo/ows/io/key"
	"github.com/owsgo/ows/io/pointer"
	"github.com/owsgo/ows/io/system"
)

type fakeDriver struct {
	name    string
	next    uintptr
	windows []*fakeWindow
	// events run on the next CollectEvents.
	events []func()
	closed bool
}

type fakeWindow struct {
	d      *fakeDriver
	id     uintptr
	title  string
	shown  bool
	closed bool
	shows  int
	shared wm.Shared
}

func (d *fakeDriver) Name() string { return d.name }

func (d *fakeDriver) NewWindow() (wm.Window, error) {
	d.next++
	w := &fakeWindow{d: d, id: 0x100 + d.next}
	d.windows = append(d.windows, w)
	return w, nil
}

func (d *fakeDriver) CollectEvents() error {
	evs := d.events
	d.events = nil
	for _, f := range evs {
		f()
	}
	return nil
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

func (w *fakeWindow) SetTitle(title string) error {
	w.title = title
	return nil
}

func (w *fakeWindow) Show(st system.State) error {
	if w.closed {
		return errors.New("fake: closed")
	}
	w.shows++
	if !w.shown {
		w.shown = true
		size := st.Size
		if size.Empty() {
			size = geom.Sz[int32](640, 480)
		}
		w.shared.Resize(size)
	}
	w.shared.State = st
	return nil
}

func (w *fakeWindow) Close() error {
	w.closed = true
	w.shown = false
	return nil
}

func (w *fakeWindow) Shown() bool         { return w.shown }
func (w *fakeWindow) Token() system.Token { return system.Token(w.id) }
func (w *fakeWindow) Shared() *wm.Shared  { return &w.shared }
func (w *fakeWindow) Native() gpu.NativeWindow {
	return gpu.NativeWindow{Platform: gpu.PlatformXCB, Window: w.id}
}

// useDrivers replaces the platform drivers for the duration of the
// test. A nil entry is unavailable.
func useDrivers(t *testing.T, wl, x11, win driverFunc) {
	t.Helper()
	t.Setenv("OWS_BACKEND", "")
	oldWl, oldX11, oldWin := wlDriver, x11Driver, win32Driver
	wlDriver, x11Driver, win32Driver = wl, x11, win
	t.Cleanup(func() {
		wlDriver, x11Driver, win32Driver = oldWl, oldX11, oldWin
	})
}

func fakeOpener(d *fakeDriver) driverFunc {
	return func() (wm.Driver, error) { return d, nil }
}

func failOpener(err error) driverFunc {
	return func() (wm.Driver, error) { return nil, err }
}

func openFake(t *testing.T) (*Display, *fakeDriver) {
	t.Helper()
	drv := &fakeDriver{name: "x11"}
	useDrivers(t, nil, fakeOpener(drv), nil)
	d, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	return d, drv
}

func TestOpenFallback(t *testing.T) {
	cause := errors.New("no socket")
	drv := &fakeDriver{name: "x11"}
	useDrivers(t, failOpener(cause), fakeOpener(drv), nil)
	d, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if got := d.Backend(); got != "x11" {
		t.Errorf("got backend %q, expected x11", got)
	}
	if _, ok := d.Instance().(*headless.Instance); !ok {
		t.Errorf("got instance %T, expected the headless default", d.Instance())
	}
}

func TestOpenForced(t *testing.T) {
	wl := &fakeDriver{name: "wayland"}
	x11 := &fakeDriver{name: "x11"}
	useDrivers(t, fakeOpener(wl), fakeOpener(x11), nil)
	d, err := Open(Backend("x11"))
	if err != nil {
		t.Fatal(err)
	}
	if d.Backend() != "x11" {
		t.Errorf("got backend %q, expected x11", d.Backend())
	}
	t.Setenv("OWS_BACKEND", "x11")
	d, err = Open()
	if err != nil {
		t.Fatal(err)
	}
	if d.Backend() != "x11" {
		t.Errorf("got backend %q with OWS_BACKEND=x11", d.Backend())
	}
	d, err = Open(Backend(""))
	if err != nil {
		t.Fatal(err)
	}
	if d.Backend() != "wayland" {
		t.Errorf("got backend %q, expected the option to override the environment", d.Backend())
	}
}

func TestOpenError(t *testing.T) {
	cause := errors.New("connection refused")
	useDrivers(t, failOpener(cause), failOpener(errors.New("no display")), nil)
	_, err := Open()
	var oerr *OpenError
	if !errors.As(err, &oerr) {
		t.Fatalf("got %v, expected an *OpenError", err)
	}
	if oerr.Backend != "wayland" || !errors.Is(err, cause) {
		t.Errorf("got %v, expected the first failure", err)
	}

	_, err = Open(Backend("win32"))
	if !errors.As(err, &oerr) || oerr.Backend != "win32" || !errors.Is(err, errNoBackend) {
		t.Errorf("got %v for a missing backend", err)
	}
}

func TestGPUOption(t *testing.T) {
	drv := &fakeDriver{name: "x11"}
	useDrivers(t, nil, fakeOpener(drv), nil)
	inst := headless.New()
	d, err := Open(GPU(inst))
	if err != nil {
		t.Fatal(err)
	}
	if d.Instance() != gpu.Instance(inst) {
		t.Error("Instance did not return the GPU option")
	}
}

func TestUnshownPanics(t *testing.T) {
	d, _ := openFake(t)
	w, err := d.CreateWindow()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		f    func()
	}{
		{"Token", func() { w.Token() }},
		{"CreateSurface", func() { w.CreateSurface() }},
		{"Show(Minimized)", func() { w.Show(system.Minimized()) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", test.name)
				}
			}()
			test.f()
		})
	}
}

func TestMinimizeAfterShow(t *testing.T) {
	d, _ := openFake(t)
	w, _ := d.CreateWindow()
	if err := w.Show(system.Normal()); err != nil {
		t.Fatal(err)
	}
	if err := w.Show(system.Minimized()); err != nil {
		t.Fatal(err)
	}
	if got := w.State(); got != system.Minimized() {
		t.Errorf("got state %v, expected Minimized", got)
	}
}

func TestClosedWindow(t *testing.T) {
	d, drv := openFake(t)
	w, _ := d.CreateWindow()
	if err := w.SetTitle("t"); err != nil {
		t.Fatal(err)
	}
	w.Show(system.Normal())
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Show(system.Normal()); !errors.Is(err, ErrClosed) {
		t.Errorf("Show after Close: got %v, expected ErrClosed", err)
	}
	if err := w.SetTitle("u"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetTitle after Close: got %v, expected ErrClosed", err)
	}
	if w.Title() != "t" {
		t.Errorf("got title %q, expected t", w.Title())
	}
	if fw := drv.windows[0]; !fw.closed || fw.shows != 1 {
		t.Errorf("got %+v, expected one show and a close", fw)
	}
}

func TestCreateSurface(t *testing.T) {
	d, _ := openFake(t)
	w, _ := d.CreateWindow()
	w.Show(system.NormalSize(320, 200))
	info, err := w.CreateSurface()
	if err != nil {
		t.Fatal(err)
	}
	if info.Token != w.Token() || info.Size != geom.Sz[int32](320, 200) {
		t.Errorf("got %+v", info)
	}
	inst := d.Instance().(*headless.Instance)
	if s := inst.Surface(uintptr(w.Token())); s == nil || gpu.Surface(s) != info.Surface {
		t.Error("surface not created for the native window")
	}
}

func TestTokenStable(t *testing.T) {
	d, _ := openFake(t)
	a, _ := d.CreateWindow()
	b, _ := d.CreateWindow()
	a.Show(system.Normal())
	b.Show(system.Normal())
	if a.Token() != a.Token() || b.Token() != b.Token() {
		t.Error("Token changed between calls")
	}
	if a.Token() == b.Token() {
		t.Errorf("two windows share the token %v", a.Token())
	}
	want := a.Token()
	a.Show(system.Maximized())
	a.SetTitle("renamed")
	d.CollectEvents()
	a.Dispatch()
	if got := a.Token(); got != want {
		t.Errorf("got token %v after state changes, expected %v", got, want)
	}
}

func TestDisplayClose(t *testing.T) {
	d, drv := openFake(t)
	w1, _ := d.CreateWindow()
	w2, _ := d.CreateWindow()
	w1.Show(system.Normal())
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if !w1.Closed() || !w2.Closed() || !drv.closed {
		t.Error("Close did not close the windows and the driver")
	}
	if err := d.CollectEvents(); !errors.Is(err, ErrClosed) {
		t.Errorf("CollectEvents after Close: got %v", err)
	}
	if _, err := d.CreateWindow(); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateWindow after Close: got %v", err)
	}
}

func TestRetrieveEvents(t *testing.T) {
	d, drv := openFake(t)
	w, _ := d.CreateWindow()
	w.Show(system.Normal())
	fw := drv.windows[0]
	drv.events = append(drv.events, func() {
		fw.shared.Resize(geom.Sz[int32](700, 500))
		fw.shared.Resize(geom.Sz[int32](800, 600))
		fw.shared.Close()
	})
	if err := d.CollectEvents(); err != nil {
		t.Fatal(err)
	}
	evs := w.RetrieveEvents()
	want := []event.Event{
		system.ResizeEvent{Size: geom.Sz[int32](800, 600)},
		system.CloseEvent{},
	}
	if len(evs) != len(want) {
		t.Fatalf("got %v, expected %v", evs, want)
	}
	for i := range want {
		if evs[i] != want[i] {
			t.Errorf("event %d: got %v, expected %v", i, evs[i], want[i])
		}
	}
	if w.Closed() {
		t.Error("a close request must not close the window")
	}
	if evs := w.RetrieveEvents(); len(evs) != 0 {
		t.Errorf("got %v after retrieval", evs)
	}
}

func TestBuilderDispatch(t *testing.T) {
	d, drv := openFake(t)
	var (
		sizes  []geom.ISize
		states []system.State
		keys   []string
		mouse  []event.Event
		vetoes int
	)
	w, err := Builder{
		Title: "hello",
		State: system.NormalSize(800, 600),
		OnClose: func(w *Window) bool {
			vetoes++
			return vetoes > 1
		},
		OnResize:  func(w *Window, size geom.ISize) { sizes = append(sizes, size) },
		OnState:   func(w *Window, st system.State) { states = append(states, st) },
		OnKeyDown: func(w *Window, e key.DownEvent) { keys = append(keys, "down "+e.Text) },
		OnKeyUp:   func(w *Window, e key.UpEvent) { keys = append(keys, "up "+e.Code.String()) },
		OnMouse:   func(w *Window, e event.Event) { mouse = append(mouse, e) },
	}.Open(d)
	if err != nil {
		t.Fatal(err)
	}
	fw := drv.windows[0]
	if fw.title != "hello" || w.Title() != "hello" {
		t.Errorf("got title %q", fw.title)
	}
	w.Dispatch()
	if len(sizes) != 1 || sizes[0] != geom.Sz[int32](800, 600) {
		t.Errorf("got sizes %v, expected the initial 800x600", sizes)
	}

	fw.shared.SetState(system.Maximized())
	fw.shared.KeyDown(key.SymRune('a'), key.CodeA, "a")
	fw.shared.KeyUp(key.SymRune('a'), key.CodeA)
	fw.shared.Enter(geom.Pt[float32](1, 2))
	fw.shared.ButtonDown(pointer.ButtonLeft)
	fw.shared.Close()
	w.Dispatch()
	if len(states) != 1 || states[0] != system.Maximized() {
		t.Errorf("got states %v", states)
	}
	if len(keys) != 2 || keys[0] != "down a" || keys[1] != "up A" {
		t.Errorf("got keys %v", keys)
	}
	if len(mouse) != 2 {
		t.Errorf("got mouse events %v", mouse)
	}
	if w.Closed() {
		t.Fatal("OnClose returning false closed the window")
	}

	fw.shared.Close()
	fw.shared.Resize(geom.Sz[int32](10, 10))
	w.Dispatch()
	if !w.Closed() || !fw.closed {
		t.Error("OnClose returning true did not close the window")
	}
	if len(sizes) != 1 {
		t.Errorf("got sizes %v, expected events after the close to be dropped", sizes)
	}
}

func TestDefaultCloseHandler(t *testing.T) {
	d, drv := openFake(t)
	w, err := Builder{}.Open(d)
	if err != nil {
		t.Fatal(err)
	}
	if w.State() != system.Normal() {
		t.Errorf("got state %v, expected Normal", w.State())
	}
	drv.windows[0].shared.Close()
	w.Dispatch()
	if !w.Closed() {
		t.Error("the default close handler did not close the window")
	}
}
