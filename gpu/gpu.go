// SPDX-License-Identifier: Unlicense OR MIT

// Package gpu describes the rendering backend consumed by the render
// thread. Implementations wrap a real graphics API; package headless
// is a software implementation.
//
// Objects created from a Device must be used from one goroutine.
package gpu

import (
	"errors"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/owsgo/ows/geom"
)

var (
	// ErrOutOfDate is returned by Acquire and Present when the
	// swapchain no longer matches its surface and must be rebuilt.
	ErrOutOfDate = errors.New("gpu: swapchain out of date")
	// ErrTimeout is returned when a wait or acquire timed out.
	ErrTimeout = errors.New("gpu: timeout")
	// ErrSurfaceLost is returned when the native window is gone.
	ErrSurfaceLost = errors.New("gpu: surface lost")
	// ErrDeviceLost is returned when the device must be recreated.
	ErrDeviceLost = errors.New("gpu: device lost")
)

// Platform identifies the windowing system of a NativeWindow.
type Platform uint8

const (
	PlatformNone Platform = iota
	PlatformXCB
	PlatformWayland
	PlatformWin32
)

// NativeWindow holds the handles a graphics API needs to create a
// surface. Window is the XCB window id, the wl_surface object id or
// the HWND. Connection is the HINSTANCE on Win32 and 0 for the X11 and
// Wayland drivers, which speak the wire protocols without a client
// library.
type NativeWindow struct {
	Platform   Platform
	Connection uintptr
	Window     uintptr
}

type PresentMode uint8

const (
	PresentFifo PresentMode = iota
	PresentMailbox
	PresentImmediate
	PresentRelaxed
)

type CompositeAlpha uint8

const (
	AlphaOpaque CompositeAlpha = iota
	AlphaPreMultiplied
	AlphaPostMultiplied
	AlphaInherit
)

type Instance interface {
	// CreateSurface wraps a native window. size is the window client
	// size at the time of the call.
	CreateSurface(w NativeWindow, size geom.ISize) (Surface, error)
	Adapters() []Adapter
	Destroy()
}

type QueueFamily struct {
	Index    int
	Count    int
	Graphics bool
	Transfer bool
}

type Adapter interface {
	Name() string
	QueueFamilies() []QueueFamily
	// Open creates a device with one queue from the family.
	Open(family int) (Device, Queue, error)
}

type SurfaceCapabilities struct {
	MinImages int
	// MaxImages is zero when there is no limit.
	MaxImages int
	// CurrentExtent is the surface size, or the zero size if the
	// swapchain decides.
	CurrentExtent  geom.ISize
	Formats        []gputypes.TextureFormat
	PresentModes   []PresentMode
	CompositeAlpha []CompositeAlpha
	Usage          gputypes.TextureUsage
}

type Surface interface {
	Supports(a Adapter, family int) bool
	Capabilities(a Adapter) (SurfaceCapabilities, error)
	Destroy()
}

type SwapchainConfig struct {
	Format         gputypes.TextureFormat
	Extent         gputypes.Extent3D
	ImageCount     int
	Usage          gputypes.TextureUsage
	PresentMode    PresentMode
	CompositeAlpha CompositeAlpha
}

type Swapchain interface {
	Config() SwapchainConfig
	Images() []Image
	// Acquire returns the index of the next image. signal is signaled
	// when the image is ready to be written.
	Acquire(timeout time.Duration, signal Semaphore) (int, error)
	Destroy()
}

type Image interface {
	Format() gputypes.TextureFormat
	Size() geom.ISize
}

type Device interface {
	// CreateSwapchain creates a swapchain for s. old, if non-nil, is
	// retired by the call and must be destroyed by the caller.
	CreateSwapchain(s Surface, cfg SwapchainConfig, old Swapchain) (Swapchain, error)
	CreateCommandPool(family int) (CommandPool, error)
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	WaitFences(fences []Fence, timeout time.Duration) error
	ResetFences(fences []Fence) error
	WaitIdle() error
	Destroy()
}

type Queue interface {
	// Submit runs cmd after wait is signaled, then signals signal and
	// fence.
	Submit(cmd CommandBuffer, wait, signal Semaphore, fence Fence) error
	Present(sc Swapchain, image int, wait Semaphore) error
}

type CommandPool interface {
	Allocate() (CommandBuffer, error)
	Destroy()
}

type CommandBuffer interface {
	Begin() error
	// ClearImage fills rect of img with the RGBA color.
	ClearImage(img Image, rect geom.IRect, color [4]float32)
	End() error
	Free()
}

type Fence interface {
	Destroy()
}

type Semaphore interface {
	Destroy()
}

func (p Platform) String() string {
	switch p {
	case PlatformNone:
		return "none"
	case PlatformXCB:
		return "xcb"
	case PlatformWayland:
		return "wayland"
	case PlatformWin32:
		return "win32"
	default:
		panic("invalid Platform")
	}
}
