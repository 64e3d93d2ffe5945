package morph

// GroupTransform translates then uniformly scales a subtree about its
// element's anchor: a point p (relative to the anchor) maps to
// (p + Translation) * Scale.
type GroupTransform struct {
	Translation Vector
	Scale       float64
}

// IdentityGroup leaves points unchanged.
var IdentityGroup = GroupTransform{Scale: 1}

// IsIdentity reports whether g leaves points unchanged.
func (g GroupTransform) IsIdentity() bool {
	return g.Translation.IsZero() && g.Scale == 1
}

// Lerp interpolates translation and scale of g towards h by t.
func (g GroupTransform) Lerp(h GroupTransform, t float64) GroupTransform {
	return GroupTransform{
		Translation: Vector{lerp(g.Translation.DX, h.Translation.DX, t), lerp(g.Translation.DY, h.Translation.DY, t)},
		Scale:       lerp(g.Scale, h.Scale, t),
	}
}

// Apply maps p, given relative to the anchor, through g.
func (g GroupTransform) Apply(p Vec2) Vec2 {
	return Vec2{(p.X + g.Translation.DX) * g.Scale, (p.Y + g.Translation.DY) * g.Scale}
}

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the affine matrix mapping e's local
// coordinates into its parent's. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-anchor) -> Translate(group) -> Scale(group) -> Translate(anchor) -> Translate(X, Y)
func computeLocalTransform(e *Element) [6]float64 {
	s := e.Group.Scale
	an := e.Anchor()
	tx := (e.Group.Translation.DX-an.X)*s + an.X + e.X
	ty := (e.Group.Translation.DY-an.Y)*s + an.Y + e.Y
	return [6]float64{s, 0, 0, s, tx, ty}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounding box of r mapped through m.
func transformRect(m [6]float64, r Rect) Rect {
	out := NullRect
	for _, c := range [4][2]float64{
		{r.X, r.Y}, {r.X + r.Width, r.Y}, {r.X, r.Y + r.Height}, {r.X + r.Width, r.Y + r.Height},
	} {
		x, y := transformPoint(m, c[0], c[1])
		out = out.Union(Rect{x, y, 0, 0})
	}
	return out
}

// transformTo returns the matrix mapping e's local coordinates into
// ancestor's. Fails with ErrDetached when ancestor is not e or one of its
// ancestors.
func (e *Element) transformTo(ancestor *Element) ([6]float64, error) {
	m := identityTransform
	for p := e; p != ancestor; p = p.Parent {
		if p == nil {
			return m, &GeometryError{Element: e.Name, Err: ErrDetached}
		}
		m = multiplyAffine(computeLocalTransform(p), m)
	}
	return m, nil
}

// parentTransformTo is transformTo for e's parent; e must have one unless it
// is ancestor itself.
func (e *Element) parentTransformTo(ancestor *Element) ([6]float64, error) {
	if e == ancestor {
		return identityTransform, nil
	}
	if e.Parent == nil {
		return identityTransform, &GeometryError{Element: e.Name, Err: ErrDetached}
	}
	m, err := e.Parent.transformTo(ancestor)
	if err != nil {
		return m, &GeometryError{Element: e.Name, Err: ErrDetached}
	}
	return m, nil
}

// --- Coordinate conversion ---

// ConvertPoint converts p from e's local coordinate space into ancestor's.
func (e *Element) ConvertPoint(p Vec2, ancestor *Element) (Vec2, error) {
	m, err := e.transformTo(ancestor)
	if err != nil {
		return Vec2{}, err
	}
	x, y := transformPoint(m, p.X, p.Y)
	return Vec2{x, y}, nil
}

// CenterIn returns the center of e's frame converted from its parent's
// coordinate space into ancestor's. e's own group transform does not move
// its center.
func (e *Element) CenterIn(ancestor *Element) (Vec2, error) {
	m, err := e.parentTransformTo(ancestor)
	if err != nil {
		return Vec2{}, err
	}
	if e == ancestor {
		return e.Bounds().Center(), nil
	}
	c := e.Frame().Center()
	x, y := transformPoint(m, c.X, c.Y)
	return Vec2{x, y}, nil
}

// FrameIn returns the bounding box of e's frame converted from its parent's
// coordinate space into ancestor's.
func (e *Element) FrameIn(ancestor *Element) (Rect, error) {
	m, err := e.parentTransformTo(ancestor)
	if err != nil {
		return Rect{}, err
	}
	if e == ancestor {
		return e.Bounds(), nil
	}
	return transformRect(m, e.Frame()), nil
}

// PlacementIn returns e's center in ancestor's space together with its own
// unscaled size.
func (e *Element) PlacementIn(ancestor *Element) (Placement, error) {
	c, err := e.CenterIn(ancestor)
	if err != nil {
		return Placement{}, err
	}
	return NewPlacement(c, Size{e.Width, e.Height}), nil
}

// ToLocal converts a point in ancestor's coordinate space into e's.
func (e *Element) ToLocal(p Vec2, ancestor *Element) (Vec2, error) {
	m, err := e.transformTo(ancestor)
	if err != nil {
		return Vec2{}, err
	}
	x, y := transformPoint(invertAffine(m), p.X, p.Y)
	return Vec2{x, y}, nil
}

// layoutOrigin is the sum of frame origins from e up to (excluding)
// ancestor, ignoring group transforms.
func (e *Element) layoutOrigin(ancestor *Element) (Vec2, bool) {
	var o Vec2
	for p := e; p != ancestor; p = p.Parent {
		if p == nil {
			return Vec2{}, false
		}
		o.X += p.X
		o.Y += p.Y
	}
	return o, true
}

// worldAlpha multiplies e's alpha by every ancestor's.
func (e *Element) worldAlpha() float64 {
	a := 1.0
	for p := e; p != nil; p = p.Parent {
		a *= p.Alpha
	}
	return a
}
