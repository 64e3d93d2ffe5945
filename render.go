package morph

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// compositor draws an element tree with ebiten. It keeps its offscreen
// images and draw options between frames so steady-state drawing does not
// allocate.
//
// Elements are drawn in child order. Clipping elements render their
// subtree into an offscreen layer that is masked by their (rounded) frame
// and composited once with the element's alpha. Effect elements blur what
// has already been drawn to the current target; shadow elements draw a
// blurred copy of their frame underneath their fill.
type compositor struct {
	pool renderTexturePool
	blur blurFilter
	op   ebiten.DrawImageOptions
	path vector.Path
}

// draw renders root and its subtree into target. view maps root's parent
// space to target pixels.
func (c *compositor) draw(target *ebiten.Image, root *Element, view [6]float64) {
	c.drawElement(target, root, view, 1)
}

func (c *compositor) drawElement(target *ebiten.Image, e *Element, parent [6]float64, alpha float64) {
	if e.Hidden {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(e))
	a := alpha * e.Alpha
	if a <= 0 {
		return
	}

	switch e.Kind {
	case ElementEffect:
		c.blurBelow(target, effectiveBlurRadius(e), a)
	case ElementShadow:
		c.drawShadow(target, e, m, a)
	}
	c.drawContent(target, e, m, a)

	if len(e.children) == 0 {
		return
	}
	if !e.Clip {
		for _, child := range e.children {
			c.drawElement(target, child, m, a)
		}
		return
	}
	c.drawClipped(target, e, m, a)
}

// drawContent draws e's fill and image.
func (c *compositor) drawContent(target *ebiten.Image, e *Element, m [6]float64, a float64) {
	if e.Fill.A > 0 {
		c.fillRect(target, transformRect(m, e.Bounds()), e.CornerRadius*m[0], e.Fill, a, ebiten.BlendSourceOver)
	}
	img := e.image()
	if img == nil {
		return
	}
	ib := img.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}
	dest := e.Bounds()
	if e.replica != nil {
		dest = fitMinorAxis(dest, e.replica.AspectRatio())
	}
	op := &c.op
	op.GeoM.Reset()
	op.GeoM.Scale(dest.Width/float64(ib.Dx()), dest.Height/float64(ib.Dy()))
	op.GeoM.Translate(dest.X, dest.Y)
	op.GeoM.Concat(geoM(m))
	tint := e.Tint
	if tint == (Color{}) {
		tint = ColorWhite
	}
	op.ColorScale = colorScale(tint, a)
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear
	target.DrawImage(img, op)
}

// drawClipped renders e's children into a layer masked by e's frame.
func (c *compositor) drawClipped(target *ebiten.Image, e *Element, m [6]float64, a float64) {
	tb := target.Bounds()
	w, h := tb.Dx(), tb.Dy()
	layer := c.pool.acquire(w, h)
	defer c.pool.release(layer)
	for _, child := range e.children {
		c.drawElement(layer, child, m, 1)
	}

	mask := c.pool.acquire(w, h)
	defer c.pool.release(mask)
	c.fillRect(mask, transformRect(m, e.Bounds()), e.CornerRadius*m[0], ColorWhite, 1, ebiten.BlendSourceOver)

	op := &c.op
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendDestinationIn
	op.Filter = ebiten.FilterNearest
	layer.DrawImage(mask, op)

	op.ColorScale.ScaleAlpha(float32(a))
	op.Blend = ebiten.BlendSourceOver
	target.DrawImage(layer, op)
}

// blurBelow replaces target's content with a blurred copy, mixed in at
// alpha a.
func (c *compositor) blurBelow(target *ebiten.Image, radius int, a float64) {
	if radius <= 0 {
		return
	}
	tb := target.Bounds()
	w, h := tb.Dx(), tb.Dy()
	src := c.pool.acquire(w, h)
	defer c.pool.release(src)
	dst := c.pool.acquire(w, h)
	defer c.pool.release(dst)

	op := &c.op
	op.GeoM.Reset()
	op.GeoM.Translate(-float64(tb.Min.X), -float64(tb.Min.Y))
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	op.Filter = ebiten.FilterNearest
	src.DrawImage(target, op)

	c.blur.radius = radius
	c.blur.apply(src, dst)

	op.GeoM.Reset()
	op.GeoM.Translate(float64(tb.Min.X), float64(tb.Min.Y))
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(a))
	op.Blend = ebiten.BlendSourceOver
	target.DrawImage(dst.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image), op)
}

// drawShadow draws e's shadow style: its frame filled with the shadow color,
// offset and blurred by the style radius.
func (c *compositor) drawShadow(target *ebiten.Image, e *Element, m [6]float64, a float64) {
	style := e.Shadow
	if style == nil || style.Opacity <= 0 {
		return
	}
	r := transformRect(m, e.Bounds())
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	pad := int(math.Ceil(style.Radius * m[0]))
	w := int(math.Ceil(r.Width)) + 2*pad
	h := int(math.Ceil(r.Height)) + 2*pad

	layer := c.pool.acquire(w, h)
	defer c.pool.release(layer)
	blurred := c.pool.acquire(w, h)
	defer c.pool.release(blurred)

	local := Rect{X: float64(pad), Y: float64(pad), Width: r.Width, Height: r.Height}
	c.fillRect(layer, local, e.CornerRadius*m[0], style.Color, 1, ebiten.BlendSourceOver)
	c.blur.radius = pad
	c.blur.apply(layer, blurred)

	op := &c.op
	op.GeoM.Reset()
	op.GeoM.Translate(r.X-float64(pad)+style.Offset.DX*m[0], r.Y-float64(pad)+style.Offset.DY*m[3])
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(style.Opacity * a))
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear
	target.DrawImage(blurred, op)
}

// fillRect fills r (target pixels) with col, rounding its corners by radius.
func (c *compositor) fillRect(target *ebiten.Image, r Rect, radius float64, col Color, a float64, blend ebiten.Blend) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	radius = min(radius, r.Width/2, r.Height/2)
	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := float32(r.X+r.Width), float32(r.Y+r.Height)
	rad := float32(max(radius, 0))

	c.path.Reset()
	if rad == 0 {
		c.path.MoveTo(x0, y0)
		c.path.LineTo(x1, y0)
		c.path.LineTo(x1, y1)
		c.path.LineTo(x0, y1)
	} else {
		c.path.MoveTo(x0+rad, y0)
		c.path.LineTo(x1-rad, y0)
		c.path.ArcTo(x1, y0, x1, y0+rad, rad)
		c.path.LineTo(x1, y1-rad)
		c.path.ArcTo(x1, y1, x1-rad, y1, rad)
		c.path.LineTo(x0+rad, y1)
		c.path.ArcTo(x0, y1, x0, y1-rad, rad)
		c.path.LineTo(x0, y0+rad)
		c.path.ArcTo(x0, y0, x0+rad, y0, rad)
	}
	c.path.Close()

	opts := &vector.DrawPathOptions{AntiAlias: true, Blend: blend}
	opts.ColorScale = colorScale(col, a)
	vector.FillPath(target, &c.path, nil, opts)
}

// dispose releases every offscreen image.
func (c *compositor) dispose() {
	c.pool.dispose()
	c.blur.dispose()
}

// geoM converts an affine matrix to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// colorScale premultiplies col by a for use as a DrawImage color scale.
func colorScale(col Color, a float64) ebiten.ColorScale {
	var cs ebiten.ColorScale
	alpha := float32(col.A * a)
	cs.Scale(float32(col.R)*alpha, float32(col.G)*alpha, float32(col.B)*alpha, alpha)
	return cs
}
