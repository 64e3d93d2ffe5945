package morph

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertRect(t *testing.T, name string, got, want Rect) {
	t.Helper()
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon ||
		math.Abs(got.Width-want.Width) > epsilon || math.Abs(got.Height-want.Height) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertPlacement(t *testing.T, name string, got, want Placement) {
	t.Helper()
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon ||
		math.Abs(got.Width-want.Width) > epsilon || math.Abs(got.Height-want.Height) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- Vec2 / Vector ---

func TestVec2Translate(t *testing.T) {
	p := Vec2{10, 20}
	v := Vector{3, -4}
	assertVec(t, "forward", p.Translate(v, false), Vec2{13, 16})
	assertVec(t, "reverse", p.Translate(v, true), Vec2{7, 24})
	assertVec(t, "add", p.Add(v), Vec2{13, 16})
}

func TestVec2Sub(t *testing.T) {
	got := Vec2{5, 5}.Sub(Vec2{2, 8})
	if got != (Vector{3, -3}) {
		t.Errorf("Sub = %v, want {3 -3}", got)
	}
}

func TestVectorScaleNeg(t *testing.T) {
	v := Vector{2, -6}
	if got := v.Scale(0.5); got != (Vector{1, -3}) {
		t.Errorf("Scale = %v", got)
	}
	if got := v.Neg(); got != (Vector{-2, 6}) {
		t.Errorf("Neg = %v", got)
	}
	if v.IsZero() || !(Vector{}).IsZero() {
		t.Error("IsZero mismatch")
	}
}

// --- Rect ---

func TestRectCenterAndWithCenter(t *testing.T) {
	r := Rect{10, 20, 100, 40}
	assertVec(t, "center", r.Center(), Vec2{60, 40})
	assertRect(t, "withCenter", r.WithCenter(Vec2{0, 0}), Rect{-50, -20, 100, 40})
}

func TestRectUnionNull(t *testing.T) {
	r := Rect{1, 2, 3, 4}
	if got := NullRect.Union(r); got != r {
		t.Errorf("Null ∪ r = %v, want %v", got, r)
	}
	if got := r.Union(NullRect); got != r {
		t.Errorf("r ∪ Null = %v, want %v", got, r)
	}
	if !NullRect.Union(NullRect).IsNull() {
		t.Error("Null ∪ Null should be null")
	}
}

func TestRectUnion(t *testing.T) {
	got := Rect{0, 0, 10, 10}.Union(Rect{20, -5, 5, 5})
	assertRect(t, "union", got, Rect{0, -5, 25, 15})
}

func TestRectZeroIsNotNull(t *testing.T) {
	if (Rect{}).IsNull() {
		t.Error("zero Rect should not be null")
	}
}

func TestRectAxes(t *testing.T) {
	tall := Rect{0, 0, 10, 30}
	if tall.MajorAxis() != AxisVertical || tall.MinorAxis() != AxisHorizontal {
		t.Error("tall rect axes")
	}
	wide := Rect{0, 0, 30, 10}
	if wide.MajorAxis() != AxisHorizontal || wide.MinorAxis() != AxisVertical {
		t.Error("wide rect axes")
	}
	assertNear(t, "AxisSize(vertical)", tall.AxisSize(AxisVertical), 30)
	assertNear(t, "AxisSize(horizontal)", tall.AxisSize(AxisHorizontal), 10)
}

func TestRectAspectRatio(t *testing.T) {
	assertNear(t, "aspect", Rect{0, 0, 200, 100}.AspectRatio(), 2)
	assertNear(t, "zero height", Rect{0, 0, 200, 0}.AspectRatio(), 0)
}

func TestRectContains(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	if !r.Contains(10, 10) {
		t.Error("edge should be inside")
	}
	if r.Contains(10.1, 5) {
		t.Error("point outside reported inside")
	}
}

// --- Placement ---

func TestPlacementClampsNegativeSize(t *testing.T) {
	p := NewPlacement(Vec2{5, 5}, Size{-3, 4})
	if p.Width != 0 || p.Height != 4 {
		t.Errorf("size = %v, want (0, 4)", p.Size())
	}
}

func TestPlacementRectRoundTrip(t *testing.T) {
	r := Rect{10, 20, 30, 40}
	p := PlacementOf(r)
	assertVec(t, "center", p.Center(), Vec2{25, 40})
	assertRect(t, "rect", p.Rect(), r)
}

func TestPlacementLerp(t *testing.T) {
	a := Placement{0, 0, 10, 10}
	b := Placement{100, 50, 30, 20}
	assertPlacement(t, "t=0", a.Lerp(b, 0), a)
	assertPlacement(t, "t=1", a.Lerp(b, 1), b)
	assertPlacement(t, "t=0.5", a.Lerp(b, 0.5), Placement{50, 25, 20, 15})
}

func TestPlacementStringIsOriginForm(t *testing.T) {
	p := Placement{X: 50, Y: 50, Width: 20, Height: 10}
	if got, want := p.String(), "(40, 45, 20, 10)"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestPinConstraint(t *testing.T) {
	h := Pin(Placement{1, 2, 3, 4})
	if h.IsActive() {
		t.Fatal("Pin should start inactive")
	}
	h.Activate()
	if !h.IsActive() {
		t.Fatal("Activate had no effect")
	}
	h.SetPlacement(Placement{5, 6, -1, 8})
	assertPlacement(t, "placement", h.Placement(), Placement{5, 6, 0, 8})
	h.Deactivate()
	if h.IsActive() {
		t.Error("Deactivate had no effect")
	}
}

func TestMatchConstraintFollowsTarget(t *testing.T) {
	target := Pin(Placement{1, 1, 2, 2})
	m := Match(target)
	m.SetPlacement(Placement{99, 99, 99, 99})
	assertPlacement(t, "ignores writes", m.Placement(), Placement{1, 1, 2, 2})
	target.SetPlacement(Placement{7, 8, 9, 10})
	assertPlacement(t, "follows", m.Placement(), Placement{7, 8, 9, 10})
	if m.IsActive() {
		t.Error("Match should start inactive")
	}
}

// --- Pair / Transform ---

func TestPairAtAndEach(t *testing.T) {
	p := NewPair("a", "b")
	if p.At(SideFrom) != "a" || p.At(SideTo) != "b" {
		t.Errorf("At = %q, %q", p.At(SideFrom), p.At(SideTo))
	}
	var order []Side
	p.Each(func(s Side, _ string) { order = append(order, s) })
	if len(order) != 2 || order[0] != SideFrom || order[1] != SideTo {
		t.Errorf("Each order = %v", order)
	}
}

func TestTransformAt(t *testing.T) {
	tr := NewTransform(1.0, 2.0)
	if tr.At(PositionStart) != 1 || tr.At(PositionEnd) != 2 || tr.At(PositionCurrent) != 2 {
		t.Error("Transform.At mismatch")
	}
}

func TestGroupTransform(t *testing.T) {
	g := GroupTransform{Translation: Vector{10, 0}, Scale: 2}
	assertVec(t, "apply", g.Apply(Vec2{5, 5}), Vec2{30, 10})
	if !IdentityGroup.IsIdentity() || g.IsIdentity() {
		t.Error("IsIdentity mismatch")
	}
	mid := IdentityGroup.Lerp(g, 0.5)
	assertNear(t, "mid.scale", mid.Scale, 1.5)
	assertNear(t, "mid.dx", mid.Translation.DX, 5)
}
