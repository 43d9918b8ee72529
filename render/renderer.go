// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/owsgo/ows/geom"
	"github.com/owsgo/ows/gpu"
	"github.com/owsgo/ows/io/system"
)

type renderer struct {
	cfg     config
	adapter gpu.Adapter
	family  int
	dev     gpu.Device
	queue   gpu.Queue
	pool    gpu.CommandPool
	windows map[system.Token]*window
}

type window struct {
	token       system.Token
	size        geom.ISize
	surf        gpu.Surface
	swapchain   gpu.Swapchain
	imageAvail  gpu.Semaphore
	renderDone  gpu.Semaphore
	images      []frameImage
	mustRebuild bool
}

type frameImage struct {
	img   gpu.Image
	cmd   gpu.CommandBuffer
	fence gpu.Fence
}

func newRenderer(inst gpu.Instance, windows []WindowInfo, cfg config) *renderer {
	adapter, family, ok := selectAdapter(inst.Adapters(), windows)
	if !ok {
		panic("render: could not open a graphics adapter")
	}
	dev, queue, err := adapter.Open(family)
	if err != nil {
		panic(fmt.Errorf("render: could not open a graphics adapter: %w", err))
	}
	pool, err := dev.CreateCommandPool(family)
	if err != nil {
		panic(fmt.Errorf("render: %w", err))
	}
	r := &renderer{
		cfg:     cfg,
		adapter: adapter,
		family:  family,
		dev:     dev,
		queue:   queue,
		pool:    pool,
		windows: make(map[system.Token]*window),
	}
	for _, info := range windows {
		if err := r.open(info); err != nil {
			panic(err)
		}
	}
	return r
}

// selectAdapter returns the first adapter with a queue family that
// supports graphics and transfer, and presentation to every window.
func selectAdapter(adapters []gpu.Adapter, windows []WindowInfo) (gpu.Adapter, int, bool) {
	for _, a := range adapters {
		for _, f := range a.QueueFamilies() {
			if !f.Graphics || !f.Transfer || f.Count < 1 {
				continue
			}
			supported := true
			for _, w := range windows {
				if !w.Surface.Supports(a, f.Index) {
					supported = false
					break
				}
			}
			if supported {
				return a, f.Index, true
			}
		}
	}
	return nil, 0, false
}

func (r *renderer) run(msgs <-chan Msg) error {
	for m := range msgs {
		var err error
		switch m := m.(type) {
		case WindowOpen:
			if err := r.open(m.Info); err != nil {
				log.Printf("render: window %#x: %v", m.Info.Token, err)
				m.Info.Surface.Destroy()
			}
		case WindowClose:
			err = r.close(m.Token)
			if m.Done != nil {
				close(m.Done)
			}
		case WindowResize:
			if w, ok := r.windows[m.Token]; ok && m.Size != w.size {
				w.size = m.Size
				w.mustRebuild = true
			}
		case FrameMsg:
			err = r.frame(m.Frame)
		case FramesMsg:
			for _, f := range m.Frames {
				if err = r.frame(f); err != nil {
					break
				}
			}
		case Exit:
			return r.destroy()
		}
		if err != nil {
			r.destroy()
			return err
		}
	}
	return r.destroy()
}

func (r *renderer) open(info WindowInfo) error {
	if _, exists := r.windows[info.Token]; exists {
		return fmt.Errorf("render: window %#x already open", info.Token)
	}
	if !info.Surface.Supports(r.adapter, r.family) {
		return errors.New("render: surface not supported by the adapter")
	}
	w := &window{token: info.Token, size: info.Size, surf: info.Surface}
	var err error
	if w.imageAvail, err = r.dev.CreateSemaphore(); err != nil {
		return err
	}
	if w.renderDone, err = r.dev.CreateSemaphore(); err != nil {
		w.imageAvail.Destroy()
		return err
	}
	if err := r.build(w); err != nil {
		w.imageAvail.Destroy()
		w.renderDone.Destroy()
		return err
	}
	r.windows[info.Token] = w
	return nil
}

// build creates the swapchain of w, retiring the current one. A
// window without an extent keeps mustRebuild set and gets no
// swapchain until it has one.
func (r *renderer) build(w *window) error {
	caps, err := w.surf.Capabilities(r.adapter)
	if err != nil {
		return fmt.Errorf("render: surface capabilities: %w", err)
	}
	cfg := swapchainConfig(caps, w.size, r.cfg.presentMode)
	if cfg.Extent.Width == 0 || cfg.Extent.Height == 0 {
		w.mustRebuild = true
		return nil
	}
	sc, err := r.dev.CreateSwapchain(w.surf, cfg, w.swapchain)
	if err != nil {
		return fmt.Errorf("render: create swapchain: %w", err)
	}
	if w.swapchain != nil {
		w.swapchain.Destroy()
	}
	w.swapchain = sc
	w.size = geom.ISize{W: int32(cfg.Extent.Width), H: int32(cfg.Extent.Height)}
	for _, img := range sc.Images() {
		cmd, err := r.pool.Allocate()
		if err != nil {
			return err
		}
		// Signaled so the first wait on each image returns at once.
		fence, err := r.dev.CreateFence(true)
		if err != nil {
			cmd.Free()
			return err
		}
		w.images = append(w.images, frameImage{img: img, cmd: cmd, fence: fence})
	}
	w.mustRebuild = false
	return nil
}

// rebuild waits for the in-flight frames of w, releases the per-image
// resources and recreates the swapchain from the current surface
// extent.
func (r *renderer) rebuild(w *window) error {
	if err := r.waitImages(w); err != nil {
		return err
	}
	r.releaseImages(w)
	if err := r.build(w); err != nil {
		return err
	}
	if w.mustRebuild {
		return nil
	}
	log.Printf("render: window %#x: swapchain rebuilt at %dx%d", w.token, w.size.W, w.size.H)
	return nil
}

func (r *renderer) waitImages(w *window) error {
	if len(w.images) == 0 {
		return nil
	}
	fences := make([]gpu.Fence, len(w.images))
	for i, img := range w.images {
		fences[i] = img.fence
	}
	if err := r.dev.WaitFences(fences, math.MaxInt64); err != nil {
		return fmt.Errorf("render: wait for window %#x: %w", w.token, err)
	}
	return nil
}

func (r *renderer) releaseImages(w *window) {
	for _, img := range w.images {
		img.cmd.Free()
		img.fence.Destroy()
	}
	w.images = nil
}

func (r *renderer) close(tok system.Token) error {
	w, ok := r.windows[tok]
	if !ok {
		log.Printf("render: close of unknown window %#x", tok)
		return nil
	}
	delete(r.windows, tok)
	err := r.waitImages(w)
	r.releaseImages(w)
	if w.swapchain != nil {
		w.swapchain.Destroy()
	}
	w.imageAvail.Destroy()
	w.renderDone.Destroy()
	w.surf.Destroy()
	return err
}

func (r *renderer) frame(f Frame) error {
	w, ok := r.windows[f.Window]
	if !ok {
		log.Printf("render: frame for unknown window %#x dropped", f.Window)
		return nil
	}
	if w.mustRebuild {
		if err := r.rebuild(w); err != nil {
			if errors.Is(err, gpu.ErrSurfaceLost) {
				log.Printf("render: window %#x: %v", w.token, err)
				return nil
			}
			return err
		}
		if w.mustRebuild {
			// Zero extent, nothing to draw on.
			return nil
		}
	}
	idx, err := w.swapchain.Acquire(r.cfg.acquireTimeout, w.imageAvail)
	switch {
	case errors.Is(err, gpu.ErrOutOfDate):
		w.mustRebuild = true
		return nil
	case errors.Is(err, gpu.ErrTimeout):
		log.Printf("render: window %#x: frame dropped: %v", w.token, err)
		return nil
	case errors.Is(err, gpu.ErrSurfaceLost):
		log.Printf("render: window %#x: %v", w.token, err)
		return nil
	case err != nil:
		return fmt.Errorf("render: acquire: %w", err)
	}
	img := w.images[idx]
	fences := []gpu.Fence{img.fence}
	if err := r.dev.WaitFences(fences, math.MaxInt64); err != nil {
		return fmt.Errorf("render: wait frame fence: %w", err)
	}
	if err := r.dev.ResetFences(fences); err != nil {
		return fmt.Errorf("render: reset frame fence: %w", err)
	}
	if err := img.cmd.Begin(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if c := f.ClearColor; c != nil {
		img.cmd.ClearImage(img.img, f.Viewport, [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
	}
	if err := img.cmd.End(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := r.queue.Submit(img.cmd, w.imageAvail, w.renderDone, img.fence); err != nil {
		return fmt.Errorf("render: submit: %w", err)
	}
	if err := r.queue.Present(w.swapchain, idx, w.renderDone); err != nil {
		if errors.Is(err, gpu.ErrOutOfDate) || errors.Is(err, gpu.ErrSurfaceLost) {
			w.mustRebuild = true
			return nil
		}
		return fmt.Errorf("render: present: %w", err)
	}
	return nil
}

// destroy waits for the device and releases everything, windows in
// token order.
func (r *renderer) destroy() error {
	err := r.dev.WaitIdle()
	toks := maps.Keys(r.windows)
	slices.Sort(toks)
	for _, tok := range toks {
		if cerr := r.close(tok); err == nil {
			err = cerr
		}
	}
	r.pool.Destroy()
	r.dev.Destroy()
	return err
}

var unormFormats = []gputypes.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatR8Unorm,
}

var alphaPreference = []gpu.CompositeAlpha{
	gpu.AlphaPreMultiplied,
	gpu.AlphaPostMultiplied,
	gpu.AlphaInherit,
	gpu.AlphaOpaque,
}

// swapchainConfig picks at least two images, an RGBA8 unorm format
// if available, otherwise any unorm format, otherwise the first, and
// the most capable composite alpha mode.
func swapchainConfig(caps gpu.SurfaceCapabilities, size geom.ISize, mode gpu.PresentMode) gpu.SwapchainConfig {
	n := max(2, caps.MinImages)
	if caps.MaxImages > 0 {
		n = min(n, caps.MaxImages)
	}
	extent := size
	if !caps.CurrentExtent.Empty() {
		extent = caps.CurrentExtent
	}
	cfg := gpu.SwapchainConfig{
		Format:      gputypes.TextureFormatUndefined,
		Extent:      gputypes.Extent3D{Width: uint32(extent.W), Height: uint32(extent.H), DepthOrArrayLayers: 1},
		ImageCount:  n,
		Usage:       gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst,
		PresentMode: gpu.PresentFifo,
	}
	switch {
	case slices.Contains(caps.Formats, gputypes.TextureFormatRGBA8Unorm):
		cfg.Format = gputypes.TextureFormatRGBA8Unorm
	default:
		for _, f := range caps.Formats {
			if slices.Contains(unormFormats, f) {
				cfg.Format = f
				break
			}
		}
		if cfg.Format == gputypes.TextureFormatUndefined && len(caps.Formats) > 0 {
			cfg.Format = caps.Formats[0]
		}
	}
	if slices.Contains(caps.PresentModes, mode) {
		cfg.PresentMode = mode
	}
	cfg.CompositeAlpha = gpu.AlphaOpaque
	for _, a := range alphaPreference {
		if slices.Contains(caps.CompositeAlpha, a) {
			cfg.CompositeAlpha = a
			break
		}
	}
	return cfg
}
