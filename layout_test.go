package morph

import "testing"

func TestLayoutResolveInactiveIgnored(t *testing.T) {
	stage := NewContainer("stage", Rect{0, 0, 200, 200})
	e := NewContainer("e", Rect{1, 1, 1, 1})
	stage.AddChild(e)

	l := NewLayout()
	l.Bind(e, Pin(Placement{50, 50, 20, 20}))
	if n := l.Resolve(stage); n != 0 {
		t.Errorf("Resolve wrote %d frames, want 0", n)
	}
	if e.Frame() != (Rect{1, 1, 1, 1}) {
		t.Errorf("frame changed to %v", e.Frame())
	}
}

func TestLayoutResolveNested(t *testing.T) {
	stage := NewContainer("stage", Rect{0, 0, 200, 200})
	parent := NewContainer("parent", Rect{})
	child := NewContainer("child", Rect{})
	stage.AddChild(parent)
	parent.AddChild(child)

	ph := Pin(Placement{100, 100, 100, 50})
	ch := Pin(Placement{100, 100, 10, 10})
	l := NewLayout()
	l.Bind(parent, ph)
	l.Bind(child, ch)
	ph.Activate()
	ch.Activate()

	if n := l.Resolve(stage); n != 2 {
		t.Fatalf("Resolve wrote %d frames, want 2", n)
	}
	assertRect(t, "parent", parent.Frame(), Rect{50, 75, 100, 50})
	// child placement is in stage space; its frame is relative to parent
	assertRect(t, "child", child.Frame(), Rect{45, 20, 10, 10})

	p, err := child.PlacementIn(stage)
	if err != nil {
		t.Fatal(err)
	}
	assertPlacement(t, "round trip", p, ch.Placement())
}

func TestLayoutMatchFollowsTarget(t *testing.T) {
	stage := NewContainer("stage", Rect{0, 0, 200, 200})
	a := NewContainer("a", Rect{})
	b := NewContainer("b", Rect{})
	stage.AddChild(a)
	stage.AddChild(b)

	pin := Pin(Placement{20, 20, 10, 10})
	match := Match(pin)
	l := NewLayout()
	l.Bind(a, pin)
	l.Bind(b, match)
	pin.Activate()
	match.Activate()

	pin.SetPlacement(Placement{60, 40, 20, 20})
	l.Resolve(stage)
	if a.Frame() != b.Frame() {
		t.Errorf("match frame %v != target frame %v", b.Frame(), a.Frame())
	}
}

func TestLayoutUnbindAndOutsideStage(t *testing.T) {
	stage := NewContainer("stage", Rect{0, 0, 100, 100})
	outside := NewContainer("outside", Rect{})
	h := Pin(Placement{10, 10, 10, 10})
	h.Activate()

	l := NewLayout()
	l.Bind(outside, h)
	if l.Handle(outside) != h || l.Len() != 1 {
		t.Fatal("binding missing")
	}
	if n := l.Resolve(stage); n != 0 {
		t.Errorf("outside element resolved: %d", n)
	}
	l.Unbind(outside)
	if l.Len() != 0 || l.Handle(outside) != nil {
		t.Error("Unbind left binding")
	}
}

func TestLayoutBindNilPanics(t *testing.T) {
	expectPanic(t, "nil", func() { NewLayout().Bind(nil, Pin(Placement{})) })
}
