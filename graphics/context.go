package graphics

import "time"

// FrameHandle identifies a pending frame callback. Zero means none.
type FrameHandle uint64

// FrameFunc runs right before the next repaint. now is the host clock reading.
type FrameFunc func(now time.Duration)

// Host is the environment a renderer is mounted into: it owns the drawing
// surface, delivers pointer and resize events and paces frames.
type Host interface {
	// ViewportSize returns the logical size of the drawing area.
	ViewportSize() (width, height float64)
	DevicePixelRatio() float64
	// SetBackingSize resizes the pixel buffer the renderer draws into.
	SetBackingSize(width, height int) error

	// OnPointerMove registers fn for pointer movement in logical viewport
	// coordinates. The returned function removes the listener.
	OnPointerMove(fn func(clientX, clientY float64)) (remove func())
	OnResize(fn func()) (remove func())

	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
	Now() time.Duration
}

// Surface is an offscreen backing store that can be resized, drawn into,
// shown on screen and read back.
type Surface interface {
	Resize(width, height int) error
	Size() (int, int)
	// Bind makes the surface the current draw target.
	Bind()
	// Present copies the surface to the default framebuffer of the given size.
	Present(fbWidth, fbHeight int)
	// ReadPixels copies RGBA8 rows, bottom row first, into dst.
	ReadPixels(dst []byte) error
	Destroy()
}
