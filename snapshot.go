package morph

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Snapshotter produces replicas of live elements.
type Snapshotter interface {
	// Replicate captures a single element and its subtree, for leaf nodes.
	Replicate(e *Element) (*Replica, error)
	// Render captures a whole scene root, for base nodes. The root's own
	// opacity is ignored so a faded-out scene can still be captured.
	Render(root *Element) (*Replica, error)
}

// ImageSnapshotter rasterizes element trees on the CPU with imaging. Fill
// colors, Source images and replicas are composited in paint order; hidden
// elements and their subtrees are skipped and clipping elements crop their
// descendants.
type ImageSnapshotter struct {
	// Scale is the number of pixels per layout unit. Zero means 1.
	Scale float64
	// Filter resamples Source images to their destination size. The zero
	// value is imaging.NearestNeighbor.
	Filter imaging.ResampleFilter
}

// NewImageSnapshotter returns a snapshotter with linear resampling.
func NewImageSnapshotter(scale float64) *ImageSnapshotter {
	return &ImageSnapshotter{Scale: scale, Filter: imaging.Linear}
}

// Replicate implements Snapshotter.
func (s *ImageSnapshotter) Replicate(e *Element) (*Replica, error) {
	img, err := s.rasterize(e, e.Alpha)
	if err != nil {
		return nil, err
	}
	return NewReplica(e.Name, img, Size{e.Width, e.Height}), nil
}

// Render implements Snapshotter.
func (s *ImageSnapshotter) Render(root *Element) (*Replica, error) {
	img, err := s.rasterize(root, 1)
	if err != nil {
		return nil, err
	}
	return NewReplica(root.Name, img, Size{root.Width, root.Height}), nil
}

func (s *ImageSnapshotter) scale() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

// rasterize paints e's bounds and subtree into a new image. e's own frame
// origin and group transform are ignored.
func (s *ImageSnapshotter) rasterize(e *Element, alpha float64) (*image.NRGBA, error) {
	if e == nil {
		return nil, fmt.Errorf("nil element: %w", ErrSnapshot)
	}
	sc := s.scale()
	w := int(math.Ceil(e.Width * sc))
	h := int(math.Ceil(e.Height * sc))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%q has empty bounds %gx%g: %w", e.Name, e.Width, e.Height, ErrSnapshot)
	}
	canvas := imaging.New(w, h, color.NRGBA{})
	m := [6]float64{sc, 0, 0, sc, 0, 0}
	canvas = s.paintContent(canvas, e, m, alpha)
	for _, c := range e.children {
		canvas = s.paint(canvas, c, m, alpha)
	}
	return canvas, nil
}

// paint composites e and its subtree onto dst. parent maps e's parent's
// local coordinates to dst pixels.
func (s *ImageSnapshotter) paint(dst *image.NRGBA, e *Element, parent [6]float64, alpha float64) *image.NRGBA {
	if e.Hidden || e.Kind == ElementEffect || e.Kind == ElementShadow {
		return dst
	}
	m := multiplyAffine(parent, computeLocalTransform(e))
	a := alpha * e.Alpha
	if a <= 0 {
		return dst
	}
	dst = s.paintContent(dst, e, m, a)
	if len(e.children) == 0 {
		return dst
	}
	if !e.Clip {
		for _, c := range e.children {
			dst = s.paint(dst, c, m, a)
		}
		return dst
	}
	r := transformRect(m, e.Bounds())
	pt, w, h := pixelRect(r)
	if w <= 0 || h <= 0 {
		return dst
	}
	layer := imaging.New(w, h, color.NRGBA{})
	local := multiplyAffine([6]float64{1, 0, 0, 1, -float64(pt.X), -float64(pt.Y)}, m)
	for _, c := range e.children {
		layer = s.paint(layer, c, local, 1)
	}
	return imaging.Overlay(dst, layer, pt, a)
}

// paintContent draws e's own fill and image.
func (s *ImageSnapshotter) paintContent(dst *image.NRGBA, e *Element, m [6]float64, a float64) *image.NRGBA {
	bounds := transformRect(m, e.Bounds())
	if e.Fill.A > 0 {
		pt, w, h := pixelRect(bounds)
		if w > 0 && h > 0 {
			dst = imaging.Overlay(dst, imaging.New(w, h, e.Fill.nrgba()), pt, a)
		}
	}
	src := e.Source
	dest := bounds
	if e.replica != nil && e.replica.Source() != nil {
		src = e.replica.Source()
		dest = fitMinorAxis(bounds, e.replica.AspectRatio())
	}
	if src == nil {
		return dst
	}
	pt, w, h := pixelRect(dest)
	if w <= 0 || h <= 0 {
		return dst
	}
	return imaging.Overlay(dst, imaging.Resize(src, w, h, s.Filter), pt, a)
}

// pixelRect rounds r to whole pixels.
func pixelRect(r Rect) (image.Point, int, int) {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	return image.Pt(x0, y0), x1 - x0, y1 - y0
}

// nrgba converts c to a non-premultiplied 8-bit color.
func (c Color) nrgba() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}
