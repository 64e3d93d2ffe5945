package morph

import (
	"fmt"
	"math"
)

// Vec2 is a 2D point used for positions, centers and focus points.
type Vec2 struct {
	X, Y float64
}

// Add returns p moved by v.
func (p Vec2) Add(v Vector) Vec2 {
	return Vec2{p.X + v.DX, p.Y + v.DY}
}

// Sub returns the vector from q to p.
func (p Vec2) Sub(q Vec2) Vector {
	return Vector{p.X - q.X, p.Y - q.Y}
}

// Translate moves p by v, or by -v when reverse is true.
func (p Vec2) Translate(v Vector, reverse bool) Vec2 {
	if reverse {
		return Vec2{p.X - v.DX, p.Y - v.DY}
	}
	return Vec2{p.X + v.DX, p.Y + v.DY}
}

// Vector is a displacement in stage space.
type Vector struct {
	DX, DY float64
}

// Scale returns v with both components multiplied by m.
func (v Vector) Scale(m float64) Vector {
	return Vector{v.DX * m, v.DY * m}
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	return Vector{-v.DX, -v.DY}
}

// IsZero reports whether both components are exactly zero.
func (v Vector) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}

// Size is a width/height pair. Negative values are treated as zero by
// Placement.
type Size struct {
	Width, Height float64
}

// Axis identifies a rectangle axis.
type Axis uint8

const (
	AxisHorizontal Axis = iota // width
	AxisVertical               // height
)

// PrimaryAxis is the axis along which portal growth is measured.
const PrimaryAxis = AxisVertical

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// NullRect is the identity for Union. It is distinct from the zero Rect,
// which is a valid empty rectangle at the origin.
var NullRect = Rect{X: math.Inf(1), Y: math.Inf(1)}

// IsNull reports whether r is NullRect.
func (r Rect) IsNull() bool {
	return math.IsInf(r.X, 1) || math.IsInf(r.Y, 1)
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width*0.5, r.Y + r.Height*0.5}
}

// WithCenter returns r moved so that its midpoint is c.
func (r Rect) WithCenter(c Vec2) Rect {
	r.X = c.X - r.Width*0.5
	r.Y = c.Y - r.Height*0.5
	return r
}

// Offset returns r moved by v.
func (r Rect) Offset(v Vector) Rect {
	r.X += v.DX
	r.Y += v.DY
	return r
}

// Size returns the width and height of r.
func (r Rect) Size() Size {
	return Size{r.Width, r.Height}
}

// Union returns the smallest rectangle containing both r and other. A
// NullRect operand is ignored.
func (r Rect) Union(other Rect) Rect {
	if r.IsNull() {
		return other
	}
	if other.IsNull() {
		return r
	}
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.X+r.Width, other.X+other.Width)
	y1 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// MajorAxis is vertical when r is taller than wide, horizontal otherwise.
func (r Rect) MajorAxis() Axis {
	if r.Height > r.Width {
		return AxisVertical
	}
	return AxisHorizontal
}

// MinorAxis is the axis that is not the major axis.
func (r Rect) MinorAxis() Axis {
	if r.MajorAxis() == AxisHorizontal {
		return AxisVertical
	}
	return AxisHorizontal
}

// AxisSize returns the extent of r along a.
func (r Rect) AxisSize(a Axis) float64 {
	if a == AxisVertical {
		return r.Height
	}
	return r.Width
}

// AspectRatio is width divided by height. Zero-height rectangles report 0.
func (r Rect) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return r.Width / r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.X, r.Y, r.Width, r.Height)
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is used for portal shadows.
var ColorBlack = Color{0, 0, 0, 1}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
