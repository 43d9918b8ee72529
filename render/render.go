// SPDX-License-Identifier: Unlicense OR MIT

/*
Package render runs a render thread that owns the GPU device and
the swapchain of every window.

The UI goroutine talks to the thread through a channel of
capacity one: Send blocks while the thread is busy with the previous
message, which bounds the number of frames in flight.

	th := render.Start(inst, []render.WindowInfo{info})
	th.Send(render.FrameMsg{Frame: render.Frame{Window: tok, Viewport: vp, ClearColor: &c}})
	...
	th.Send(render.Exit{})
	err := th.Join()
*/
package render

import (
	"runtime"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/sync/errgroup"

	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/io/system"
)

// Msg is a message to the render thread.
type Msg interface {
	isMsg()
}

// WindowInfo describes a window handed over to the render thread.
// The thread takes ownership of Surface.
type WindowInfo struct {
	Token   system.Token
	Size    geom.ISize
	Surface gpu.Surface
}

// Frame is a request to draw a window.
type Frame struct {
	Window   system.Token
	Viewport geom.IRect
	// ClearColor, if non-nil, fills Viewport.
	ClearColor *gputypes.Color
}

// WindowOpen hands a new window to the render thread.
type WindowOpen struct {
	Info WindowInfo
}

// WindowClose releases the GPU resources of a window once its frames
// are finished. Done, if non-nil, is closed afterwards; the native
// window must not be destroyed before that.
type WindowClose struct {
	Token system.Token
	Done  chan<- struct{}
}

// WindowResize tells the render thread about a new client size. The
// swapchain is rebuilt before the next frame.
type WindowResize struct {
	Token system.Token
	Size  geom.ISize
}

// FrameMsg draws a single frame.
type FrameMsg struct {
	Frame Frame
}

// FramesMsg draws one frame per entry, in order.
type FramesMsg struct {
	Frames []Frame
}

// Exit releases every resource and stops the thread.
type Exit struct{}

func (WindowOpen) isMsg()   {}
func (WindowClose) isMsg()  {}
func (WindowResize) isMsg() {}
func (FrameMsg) isMsg()     {}
func (FramesMsg) isMsg()    {}
func (Exit) isMsg()         {}

type config struct {
	acquireTimeout time.Duration
	presentMode    gpu.PresentMode
}

// Option configures a render thread.
type Option func(*config)

// AcquireTimeout sets how long a frame waits for a swapchain image
// before it is dropped.
func AcquireTimeout(d time.Duration) Option {
	return func(c *config) {
		c.acquireTimeout = d
	}
}

// PresentMode requests a present mode. Unsupported modes fall back to
// FIFO.
func PresentMode(m gpu.PresentMode) Option {
	return func(c *config) {
		c.presentMode = m
	}
}

// Thread is a running render thread.
type Thread struct {
	msgs chan Msg
	done chan struct{}
	g    errgroup.Group
}

// Start starts a render thread for the windows. It panics on the
// thread if no adapter can render to every window surface.
func Start(inst gpu.Instance, windows []WindowInfo, opts ...Option) *Thread {
	cfg := config{
		acquireTimeout: time.Second,
		presentMode:    gpu.PresentFifo,
	}
	for _, o := range opts {
		o(&cfg)
	}
	t := &Thread{
		msgs: make(chan Msg, 1),
		done: make(chan struct{}),
	}
	t.g.Go(func() error {
		defer t.drain()
		defer close(t.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		r := newRenderer(inst, windows, cfg)
		return r.run(t.msgs)
	})
	return t
}

// Send delivers m to the thread, blocking while the previous message
// is still queued. Messages sent after the thread stopped are
// dropped; the Done channel of a dropped WindowClose is closed since
// the thread has released everything.
func (t *Thread) Send(m Msg) {
	select {
	case <-t.done:
		drop(m)
		return
	default:
	}
	select {
	case t.msgs <- m:
		// The thread may have stopped after its last receive and
		// before m was queued.
		select {
		case <-t.done:
			t.drain()
		default:
		}
	case <-t.done:
		drop(m)
	}
}

// drain drops the messages left in the queue of a stopped thread.
func (t *Thread) drain() {
	for {
		select {
		case m := <-t.msgs:
			drop(m)
		default:
			return
		}
	}
}

func drop(m Msg) {
	if wc, ok := m.(WindowClose); ok && wc.Done != nil {
		close(wc.Done)
	}
}

// Join waits for the thread to stop and returns the error that
// stopped it, if any.
func (t *Thread) Join() error {
	return t.g.Wait()
}
