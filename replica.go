package morph

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Replica is an immutable snapshot of an element, decoupled from the
// element it was taken from. The node that displays a replica owns it and
// disposes it exactly once at cleanup.
//
// Pixels are kept on the CPU until first drawn; the GPU image is created
// lazily so replicas can be produced and inspected without a running game.
type Replica struct {
	src   image.Image
	image *ebiten.Image
	size  Size // logical size of the source element
	name  string

	disposed bool
}

// NewReplica wraps src, a snapshot of an element of the given logical size.
// src may be nil for a replica that draws nothing.
func NewReplica(name string, src image.Image, size Size) *Replica {
	return &Replica{src: src, size: size, name: name}
}

// Name returns the name of the element the replica was taken from.
func (r *Replica) Name() string { return r.name }

// Source returns the CPU pixels, or nil.
func (r *Replica) Source() image.Image {
	if r.disposed {
		return nil
	}
	return r.src
}

// Image returns the GPU image, creating it on first use. Returns nil once
// disposed or when the replica has no pixels.
func (r *Replica) Image() *ebiten.Image {
	if r.disposed || r.src == nil {
		return nil
	}
	if r.image == nil {
		r.image = ebiten.NewImageFromImage(r.src)
	}
	return r.image
}

// Size returns the logical size of the source element.
func (r *Replica) Size() Size { return r.size }

// AspectRatio is the source element's width divided by its height.
func (r *Replica) AspectRatio() float64 {
	return Rect{Width: r.size.Width, Height: r.size.Height}.AspectRatio()
}

// PixelSize returns the width and height of the pixel data, or zeros.
func (r *Replica) PixelSize() (int, int) {
	if r.src == nil {
		return 0, 0
	}
	b := r.src.Bounds()
	return b.Dx(), b.Dy()
}

// Dispose releases the pixel data. Safe to call more than once.
func (r *Replica) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	if r.image != nil {
		r.image.Deallocate()
		r.image = nil
	}
	r.src = nil
}

// IsDisposed reports whether Dispose has been called.
func (r *Replica) IsDisposed() bool { return r.disposed }

// fitMinorAxis sizes content of the given aspect ratio to fill container
// along the content's minor axis, keeping it centered. Along its major axis
// the content may overflow the container.
func fitMinorAxis(container Rect, aspect float64) Rect {
	if aspect <= 0 {
		return container
	}
	var w, h float64
	if aspect >= 1 {
		// wider than tall: the minor axis is vertical
		h = container.Height
		w = h * aspect
	} else {
		w = container.Width
		h = w / aspect
	}
	return Rect{Width: w, Height: h}.WithCenter(container.Center())
}
