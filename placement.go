package morph

import "fmt"

// Placement positions a node in stage space by its center point and size.
//
// A center-based placement lets a single interpolation vary position and size
// independently: moving X/Y never changes the size and resizing never moves
// the center.
type Placement struct {
	X, Y          float64 // center
	Width, Height float64
}

// NewPlacement returns a placement centered at c with size s. Negative sizes
// are clamped to zero.
func NewPlacement(c Vec2, s Size) Placement {
	return Placement{X: c.X, Y: c.Y, Width: max(s.Width, 0), Height: max(s.Height, 0)}
}

// PlacementOf returns the placement covering r.
func PlacementOf(r Rect) Placement {
	return NewPlacement(r.Center(), r.Size())
}

// Center returns the center point.
func (p Placement) Center() Vec2 {
	return Vec2{p.X, p.Y}
}

// Size returns the width and height.
func (p Placement) Size() Size {
	return Size{p.Width, p.Height}
}

// Rect returns the origin-based rectangle for p.
func (p Placement) Rect() Rect {
	return Rect{p.X - p.Width*0.5, p.Y - p.Height*0.5, p.Width, p.Height}
}

// Lerp interpolates every scalar of p towards q by t.
func (p Placement) Lerp(q Placement, t float64) Placement {
	return Placement{
		X:      lerp(p.X, q.X, t),
		Y:      lerp(p.Y, q.Y, t),
		Width:  lerp(p.Width, q.Width, t),
		Height: lerp(p.Height, q.Height, t),
	}
}

// String prints the origin form (x, y, width, height).
func (p Placement) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", p.X-p.Width/2, p.Y-p.Height/2, p.Width, p.Height)
}

// ConstraintHandle binds a node's placement to the stage coordinate space.
// Handles are created inactive; an inactive handle is ignored by layout.
type ConstraintHandle interface {
	Placement() Placement
	SetPlacement(Placement)
	Activate()
	Deactivate()
	IsActive() bool
}

// pinConstraint pins an element at a placement relative to the stage's
// top-left corner.
type pinConstraint struct {
	x, y, width, height float64
	active              bool
}

// Pin returns an inactive handle holding p.
func Pin(p Placement) ConstraintHandle {
	return &pinConstraint{x: p.X, y: p.Y, width: p.Width, height: p.Height}
}

func (c *pinConstraint) Placement() Placement {
	return Placement{X: c.x, Y: c.y, Width: c.width, Height: c.height}
}

func (c *pinConstraint) SetPlacement(p Placement) {
	c.x = p.X
	c.y = p.Y
	c.width = max(p.Width, 0)
	c.height = max(p.Height, 0)
}

func (c *pinConstraint) Activate()      { c.active = true }
func (c *pinConstraint) Deactivate()    { c.active = false }
func (c *pinConstraint) IsActive() bool { return c.active }

// matchConstraint mirrors another handle. Writes are ignored; the element
// always follows its target.
type matchConstraint struct {
	target ConstraintHandle
	active bool
}

// Match returns an inactive handle that follows target.
func Match(target ConstraintHandle) ConstraintHandle {
	return &matchConstraint{target: target}
}

func (c *matchConstraint) Placement() Placement   { return c.target.Placement() }
func (c *matchConstraint) SetPlacement(Placement) {}
func (c *matchConstraint) Activate()              { c.active = true }
func (c *matchConstraint) Deactivate()            { c.active = false }
func (c *matchConstraint) IsActive() bool         { return c.active }
