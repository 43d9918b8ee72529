// SPDX-License-Identifier: Unlicense OR MIT

package xcb

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/io/system"
)

const eventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskFocusChange

// ewmh state request actions.
const (
	stateRemove = 0
	stateAdd    = 1
)

type xgbServer struct {
	xu *xgbutil.XUtil
}

func dial() (server, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("xcb: %w", err)
	}
	keybind.Initialize(xu)
	return &xgbServer{xu: xu}, nil
}

func (s *xgbServer) Screen() geom.ISize {
	scr := s.xu.Screen()
	return geom.ISize{W: int32(scr.WidthInPixels), H: int32(scr.HeightInPixels)}
}

func (s *xgbServer) Atom(name string) (xproto.Atom, error) {
	return xprop.Atm(s.xu, name)
}

func (s *xgbServer) CreateWindow(r geom.IRect) (xproto.Window, error) {
	conn := s.xu.Conn()
	scr := s.xu.Screen()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	// Values follow the bit order of the mask.
	err = xproto.CreateWindowChecked(
		conn,
		scr.RootDepth,
		wid,
		s.xu.RootWin(),
		int16(r.X), int16(r.Y),
		uint16(r.W), uint16(r.H),
		0,
		xproto.WindowClassInputOutput,
		scr.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{scr.BlackPixel, eventMask},
	).Check()
	if err != nil {
		return 0, err
	}
	if err := icccm.WmProtocolsSet(s.xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, err
	}
	return wid, nil
}

func (s *xgbServer) DestroyWindow(w xproto.Window) error {
	return xproto.DestroyWindowChecked(s.xu.Conn(), w).Check()
}

func (s *xgbServer) MapWindow(w xproto.Window) error {
	return xproto.MapWindowChecked(s.xu.Conn(), w).Check()
}

func (s *xgbServer) ResizeWindow(w xproto.Window, size geom.ISize) error {
	return xproto.ConfigureWindowChecked(
		s.xu.Conn(),
		w,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(size.W), uint32(size.H)},
	).Check()
}

func (s *xgbServer) SetTitle(w xproto.Window, title string) error {
	if err := icccm.WmNameSet(s.xu, w, title); err != nil {
		return err
	}
	return ewmh.WmNameSet(s.xu, w, title)
}

func (s *xgbServer) SetInitialState(w xproto.Window, atoms []string) error {
	return ewmh.WmStateSet(s.xu, w, atoms)
}

func (s *xgbServer) ChangeState(w xproto.Window, add bool, atoms ...string) error {
	action := stateRemove
	if add {
		action = stateAdd
	}
	for _, a := range atoms {
		if err := ewmh.WmStateReq(s.xu, w, action, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *xgbServer) Iconify(w xproto.Window) error {
	typ, err := xprop.Atm(s.xu, "WM_CHANGE_STATE")
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{icccm.StateIconic, 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		s.xu.Conn(),
		false,
		s.xu.RootWin(),
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

func (s *xgbServer) State(w xproto.Window) (system.Mode, error) {
	if st, err := icccm.WmStateGet(s.xu, w); err == nil && st.State == icccm.StateIconic {
		return system.ModeMinimized, nil
	}
	states, err := ewmh.WmStateGet(s.xu, w)
	if err != nil {
		return system.ModeNormal, nil
	}
	var horz, vert bool
	for _, st := range states {
		switch st {
		case netFullscreen:
			return system.ModeFullscreen, nil
		case netMaxHorz:
			horz = true
		case netMaxVert:
			vert = true
		}
	}
	if horz && vert {
		return system.ModeMaximized, nil
	}
	return system.ModeNormal, nil
}

func (s *xgbServer) Keysym(code xproto.Keycode, column byte) xproto.Keysym {
	return keybind.KeysymGet(s.xu, code, column)
}

func (s *xgbServer) Poll() (xgb.Event, error) {
	ev, xerr := s.xu.Conn().PollForEvent()
	if xerr != nil {
		return nil, xerr
	}
	return ev, nil
}

func (s *xgbServer) Close() {
	s.xu.Conn().Close()
}
