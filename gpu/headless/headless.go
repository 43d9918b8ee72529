// SPDX-License-Identifier: Unlicense OR MIT

// Package headless implements a software GPU. Images live in memory,
// clears are applied at submit time and fences complete when they are
// waited for.
//
// The implementation checks the synchronization protocol and records
// misuse as violations instead of failing, so tests can verify that
// callers wait, reset and release objects in the right order.
package headless

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
)

// Instance is a headless gpu.Instance. Its methods are safe for
// concurrent use so tests can inspect it while a render thread runs.
type Instance struct {
	mu         sync.Mutex
	cfg        config
	adapters   []gpu.Adapter
	surfaces   []*Surface
	violations []string
	live       int
}

type config struct {
	graphics bool
	formats  []gputypes.TextureFormat
	hold     <-chan struct{}
}

// Option configures an Instance.
type Option func(*config)

// NoGraphics makes the adapter expose only a transfer queue family.
func NoGraphics() Option {
	return func(c *config) {
		c.graphics = false
	}
}

// Formats sets the formats reported by every surface.
func Formats(formats ...gputypes.TextureFormat) Option {
	return func(c *config) {
		c.formats = formats
	}
}

// Hold blocks adapter enumeration until ch is closed.
func Hold(ch <-chan struct{}) Option {
	return func(c *config) {
		c.hold = ch
	}
}

func New(opts ...Option) *Instance {
	in := &Instance{
		cfg: config{
			graphics: true,
			formats:  []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm},
		},
	}
	for _, o := range opts {
		o(&in.cfg)
	}
	in.adapters = []gpu.Adapter{&Adapter{in: in}}
	return in
}

func (in *Instance) CreateSurface(w gpu.NativeWindow, size geom.ISize) (gpu.Surface, error) {
	if w.Window == 0 {
		return nil, errors.New("headless: nil window handle")
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	s := &Surface{in: in, native: w, size: size}
	in.surfaces = append(in.surfaces, s)
	in.live++
	return s, nil
}

func (in *Instance) Adapters() []gpu.Adapter {
	if in.cfg.hold != nil {
		<-in.cfg.hold
	}
	return in.adapters
}

func (in *Instance) Destroy() {}

// Surface returns the most recent surface created for the native
// window handle, or nil.
func (in *Instance) Surface(window uintptr) *Surface {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := len(in.surfaces) - 1; i >= 0; i-- {
		if s := in.surfaces[i]; s.native.Window == window {
			return s
		}
	}
	return nil
}

// Violations returns the protocol violations recorded so far.
func (in *Instance) Violations() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]string(nil), in.violations...)
}

// Live returns the number of created objects not yet destroyed.
func (in *Instance) Live() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.live
}

func (in *Instance) violate(format string, args ...any) {
	in.violations = append(in.violations, fmt.Sprintf(format, args...))
}

type Adapter struct {
	in *Instance
}

func (a *Adapter) Name() string { return "headless" }

func (a *Adapter) QueueFamilies() []gpu.QueueFamily {
	return []gpu.QueueFamily{{Index: 0, Count: 1, Graphics: a.in.cfg.graphics, Transfer: true}}
}

func (a *Adapter) Open(family int) (gpu.Device, gpu.Queue, error) {
	if family != 0 {
		return nil, nil, fmt.Errorf("headless: no queue family %d", family)
	}
	a.in.mu.Lock()
	a.in.live++
	a.in.mu.Unlock()
	d := &Device{in: a.in}
	return d, &Queue{dev: d}, nil
}

// Surface is a headless gpu.Surface.
type Surface struct {
	in        *Instance
	native    gpu.NativeWindow
	size      geom.ISize
	destroyed bool
	failNext  error
	presented *image.RGBA
	presents  int
}

// SetSize simulates a window resize. Swapchains of another extent go
// out of date.
func (s *Surface) SetSize(size geom.ISize) {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	s.size = size
}

// FailNextAcquire makes the next Acquire on the surface return err.
func (s *Surface) FailNextAcquire(err error) {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	s.failNext = err
}

// Presented returns a copy of the last presented image, or nil.
func (s *Surface) Presented() *image.RGBA {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	if s.presented == nil {
		return nil
	}
	img := image.NewRGBA(s.presented.Rect)
	copy(img.Pix, s.presented.Pix)
	return img
}

// Presents returns the number of successful presents.
func (s *Surface) Presents() int {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	return s.presents
}

// Destroyed reports whether Destroy was called.
func (s *Surface) Destroyed() bool {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	return s.destroyed
}

func (s *Surface) Supports(a gpu.Adapter, family int) bool {
	return !s.Destroyed() && family == 0
}

func (s *Surface) Capabilities(a gpu.Adapter) (gpu.SurfaceCapabilities, error) {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	if s.destroyed {
		return gpu.SurfaceCapabilities{}, gpu.ErrSurfaceLost
	}
	return gpu.SurfaceCapabilities{
		MinImages:      2,
		MaxImages:      3,
		CurrentExtent:  s.size,
		Formats:        append([]gputypes.TextureFormat(nil), s.in.cfg.formats...),
		PresentModes:   []gpu.PresentMode{gpu.PresentFifo, gpu.PresentMailbox},
		CompositeAlpha: []gpu.CompositeAlpha{gpu.AlphaOpaque, gpu.AlphaPreMultiplied},
		Usage:          gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
	}, nil
}

func (s *Surface) Destroy() {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	if s.destroyed {
		s.in.violate("surface destroyed twice")
		return
	}
	s.destroyed = true
	s.in.live--
}

type Device struct {
	in     *Instance
	fences []*Fence
}

func (d *Device) CreateSwapchain(s gpu.Surface, cfg gpu.SwapchainConfig, old gpu.Swapchain) (gpu.Swapchain, error) {
	surf := s.(*Surface)
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	if surf.destroyed {
		return nil, gpu.ErrSurfaceLost
	}
	if cfg.Extent.Width == 0 || cfg.Extent.Height == 0 {
		return nil, errors.New("headless: empty swapchain extent")
	}
	if cfg.ImageCount < 1 {
		return nil, errors.New("headless: no swapchain images")
	}
	if old != nil {
		o := old.(*Swapchain)
		if o.surf != surf {
			d.in.violate("old swapchain belongs to another surface")
		}
		o.retired = true
	}
	size := geom.ISize{W: int32(cfg.Extent.Width), H: int32(cfg.Extent.Height)}
	sc := &Swapchain{dev: d, surf: surf, cfg: cfg}
	for i := 0; i < cfg.ImageCount; i++ {
		sc.images = append(sc.images, &Image{
			format: cfg.Format,
			rgba:   image.NewRGBA(image.Rect(0, 0, int(size.W), int(size.H))),
		})
	}
	d.in.live++
	return sc, nil
}

func (d *Device) CreateCommandPool(family int) (gpu.CommandPool, error) {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	d.in.live++
	return &CommandPool{dev: d}, nil
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	f := &Fence{dev: d, signaled: signaled}
	d.fences = append(d.fences, f)
	d.in.live++
	return f, nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	d.in.live++
	return &Semaphore{dev: d}, nil
}

func (d *Device) WaitFences(fences []gpu.Fence, timeout time.Duration) error {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	for _, f := range fences {
		f := f.(*Fence)
		if !f.pending && !f.signaled {
			// Never submitted and never signaled: it would wait forever.
			return gpu.ErrTimeout
		}
		f.complete()
	}
	return nil
}

func (d *Device) ResetFences(fences []gpu.Fence) error {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	for _, f := range fences {
		f := f.(*Fence)
		if f.pending {
			d.in.violate("reset of a fence still in flight")
		}
		f.signaled = false
	}
	return nil
}

func (d *Device) WaitIdle() error {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	for _, f := range d.fences {
		if f.pending {
			f.complete()
		}
	}
	return nil
}

func (d *Device) Destroy() {
	d.in.mu.Lock()
	defer d.in.mu.Unlock()
	d.in.live--
}

type Queue struct {
	dev *Device
}

func (q *Queue) Submit(cmd gpu.CommandBuffer, wait, signal gpu.Semaphore, fence gpu.Fence) error {
	in := q.dev.in
	in.mu.Lock()
	defer in.mu.Unlock()
	c := cmd.(*CommandBuffer)
	if c.recording {
		in.violate("submit of a command buffer still recording")
	}
	if wait != nil {
		w := wait.(*Semaphore)
		if !w.signaled {
			in.violate("submit waits on an unsignaled semaphore")
		}
		w.signaled = false
	}
	var f *Fence
	if fence != nil {
		f = fence.(*Fence)
		if f.signaled || f.pending {
			in.violate("submit with a fence that was not reset")
		}
	}
	var touched []*Image
	for _, op := range c.ops {
		op.apply()
		touched = append(touched, op.img)
	}
	if signal != nil {
		signal.(*Semaphore).signaled = true
	}
	if f != nil {
		f.pending = true
		f.images = touched
	}
	return nil
}

func (q *Queue) Present(s gpu.Swapchain, idx int, wait gpu.Semaphore) error {
	in := q.dev.in
	in.mu.Lock()
	defer in.mu.Unlock()
	sc := s.(*Swapchain)
	if idx < 0 || idx >= len(sc.images) {
		return fmt.Errorf("headless: image index %d out of range", idx)
	}
	img := sc.images[idx]
	if !img.acquired {
		in.violate("present of an image that was not acquired")
	}
	img.acquired = false
	if wait == nil || !wait.(*Semaphore).signaled {
		in.violate("present without a signaled render semaphore")
	} else {
		wait.(*Semaphore).signaled = false
	}
	if sc.surf.destroyed {
		return gpu.ErrSurfaceLost
	}
	if sc.outOfDate() {
		return gpu.ErrOutOfDate
	}
	sc.surf.presented = img.rgba
	sc.surf.presents++
	return nil
}

type Swapchain struct {
	dev       *Device
	surf      *Surface
	cfg       gpu.SwapchainConfig
	images    []*Image
	next      int
	retired   bool
	destroyed bool
}

func (sc *Swapchain) Config() gpu.SwapchainConfig { return sc.cfg }

func (sc *Swapchain) Images() []gpu.Image {
	imgs := make([]gpu.Image, len(sc.images))
	for i, img := range sc.images {
		imgs[i] = img
	}
	return imgs
}

func (sc *Swapchain) outOfDate() bool {
	sz := sc.surf.size
	return uint32(sz.W) != sc.cfg.Extent.Width || uint32(sz.H) != sc.cfg.Extent.Height
}

func (sc *Swapchain) Acquire(timeout time.Duration, signal gpu.Semaphore) (int, error) {
	in := sc.dev.in
	in.mu.Lock()
	defer in.mu.Unlock()
	if sc.retired || sc.destroyed {
		in.violate("acquire from a retired swapchain")
		return 0, gpu.ErrOutOfDate
	}
	if err := sc.surf.failNext; err != nil {
		sc.surf.failNext = nil
		return 0, err
	}
	if sc.surf.destroyed {
		return 0, gpu.ErrSurfaceLost
	}
	if sc.outOfDate() {
		return 0, gpu.ErrOutOfDate
	}
	for n := 0; n < len(sc.images); n++ {
		i := (sc.next + n) % len(sc.images)
		if img := sc.images[i]; !img.acquired {
			img.acquired = true
			sc.next = i + 1
			if signal != nil {
				s := signal.(*Semaphore)
				if s.signaled {
					in.violate("acquire signals a semaphore already signaled")
				}
				s.signaled = true
			}
			return i, nil
		}
	}
	return 0, gpu.ErrTimeout
}

func (sc *Swapchain) Destroy() {
	in := sc.dev.in
	in.mu.Lock()
	defer in.mu.Unlock()
	if sc.destroyed {
		in.violate("swapchain destroyed twice")
		return
	}
	for _, f := range sc.dev.fences {
		if !f.pending {
			continue
		}
		for _, img := range f.images {
			for _, own := range sc.images {
				if img == own {
					in.violate("swapchain destroyed while its images are in flight")
				}
			}
		}
	}
	sc.destroyed = true
	in.live--
}

// Image is a swapchain image backed by an *image.RGBA.
type Image struct {
	format   gputypes.TextureFormat
	rgba     *image.RGBA
	acquired bool
}

func (img *Image) Format() gputypes.TextureFormat { return img.format }

func (img *Image) Size() geom.ISize {
	sz := img.rgba.Rect.Size()
	return geom.ISize{W: int32(sz.X), H: int32(sz.Y)}
}

type CommandPool struct {
	dev       *Device
	allocated int
}

func (p *CommandPool) Allocate() (gpu.CommandBuffer, error) {
	p.dev.in.mu.Lock()
	defer p.dev.in.mu.Unlock()
	p.allocated++
	return &CommandBuffer{pool: p}, nil
}

func (p *CommandPool) Destroy() {
	in := p.dev.in
	in.mu.Lock()
	defer in.mu.Unlock()
	if p.allocated != 0 {
		in.violate("command pool destroyed with %d buffers allocated", p.allocated)
	}
	in.live--
}

type clearOp struct {
	img   *Image
	rect  image.Rectangle
	color color.NRGBA
}

func (op clearOp) apply() {
	draw.Draw(op.img.rgba, op.rect, &image.Uniform{C: op.color}, image.Point{}, draw.Src)
}

type CommandBuffer struct {
	pool      *CommandPool
	recording bool
	ops       []clearOp
}

func (c *CommandBuffer) Begin() error {
	if c.recording {
		return errors.New("headless: command buffer already recording")
	}
	c.recording = true
	c.ops = c.ops[:0]
	return nil
}

func (c *CommandBuffer) ClearImage(img gpu.Image, rect geom.IRect, col [4]float32) {
	im := img.(*Image)
	r := image.Rect(int(rect.X), int(rect.Y), int(rect.X+rect.W), int(rect.Y+rect.H))
	c.ops = append(c.ops, clearOp{
		img:  im,
		rect: r.Intersect(im.rgba.Rect),
		color: color.NRGBA{
			R: unorm8(col[0]),
			G: unorm8(col[1]),
			B: unorm8(col[2]),
			A: unorm8(col[3]),
		},
	})
}

func (c *CommandBuffer) End() error {
	if !c.recording {
		return errors.New("headless: command buffer not recording")
	}
	c.recording = false
	return nil
}

func (c *CommandBuffer) Free() {
	c.pool.dev.in.mu.Lock()
	defer c.pool.dev.in.mu.Unlock()
	c.pool.allocated--
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + .5)
}

type Fence struct {
	dev       *Device
	signaled  bool
	pending   bool
	destroyed bool
	images    []*Image
}

func (f *Fence) complete() {
	f.pending = false
	f.signaled = true
	f.images = nil
}

func (f *Fence) Destroy() {
	in := f.dev.in
	in.mu.Lock()
	defer in.mu.Unlock()
	if f.pending {
		in.violate("fence destroyed while in flight")
	}
	f.destroyed = true
	fences := f.dev.fences[:0]
	for _, f2 := range f.dev.fences {
		if f2 != f {
			fences = append(fences, f2)
		}
	}
	f.dev.fences = fences
	in.live--
}

type Semaphore struct {
	dev      *Device
	signaled bool
}

func (s *Semaphore) Destroy() {
	s.dev.in.mu.Lock()
	defer s.dev.in.mu.Unlock()
	s.dev.in.live--
}
