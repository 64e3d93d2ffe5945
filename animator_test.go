package morph

import (
	"context"
	"errors"
	"testing"
	"time"
)

func childNames(e *Element) []string {
	names := make([]string, 0, e.NumChildren())
	for _, c := range e.Children() {
		names = append(names, c.Name)
	}
	return names
}

func assertNames(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
}

// runToEnd advances a in 100ms steps until it has cleaned up.
func runToEnd(t *testing.T, a *Animator) {
	t.Helper()
	for i := 0; i < 100 && !a.Done(); i++ {
		a.Update(0.1)
	}
	if !a.Done() {
		t.Fatalf("animator still %s after 10s", a.State())
	}
}

func TestPrepareSiblingOrderStatic(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(
		map[string]*Element{"k": addBox(f.from, "a", Rect{0, 0, 10, 10})},
		map[string]*Element{"k": addBox(f.to, "b", Rect{0, 0, 10, 10})},
	))
	if err := a.Prepare(); err != nil {
		t.Fatal(err)
	}
	assertNames(t, "stage", childNames(f.stage), []string{"from", "to", "base.from", "portal", "acetate.exiting"})
	assertNames(t, "portal", childNames(a.Portal().Content()), []string{"base.to", "acetate.entering", "k"})
}

func TestPrepareSiblingOrderExpanding(t *testing.T) {
	f := newFixture()
	req := f.request(nil, nil)
	req.Sources.From = StaticSource{Portal: addBox(f.from, "cell", Rect{0, 0, 50, 50})}
	a, _ := newTestAnimator(t, req)
	if err := a.Prepare(); err != nil {
		t.Fatal(err)
	}
	assertNames(t, "stage", childNames(f.stage),
		[]string{"from", "to", "base.from", "blur", "shadow", "portal", "acetate.exiting"})
	assertNames(t, "portal", childNames(a.Portal().Content()), []string{"base.to", "acetate.entering"})
	if a.Effect().Content().BlurAmount != 0 {
		t.Error("blur should start inactive")
	}
}

func TestPrepareSiblingOrderContractingReverse(t *testing.T) {
	f := newFixture()
	req := f.request(nil, nil)
	req.Sources.To = StaticSource{Portal: addBox(f.to, "card", Rect{0, 0, 50, 50})}
	req.Direction = Reverse
	a, _ := newTestAnimator(t, req)
	if err := a.Prepare(); err != nil {
		t.Fatal(err)
	}
	assertNames(t, "stage", childNames(f.stage),
		[]string{"from", "to", "base.to", "blur", "shadow", "portal", "acetate.entering"})
	assertNames(t, "portal", childNames(a.Portal().Content()), []string{"base.from", "acetate.exiting"})
	if a.Effect().Content().BlurAmount != 1 {
		t.Error("blur should start active")
	}
}

func TestPrepareHidesBasesAndAppliesStart(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(nil, nil))
	if err := a.Prepare(); err != nil {
		t.Fatal(err)
	}
	if !f.from.Hidden || !f.to.Hidden {
		t.Error("real bases should be hidden")
	}
	if a.Base(SideTo).Content().Alpha != 0 || a.Base(SideFrom).Content().Alpha != 1 {
		t.Error("base start opacity")
	}
	for _, n := range a.Nodes() {
		if !n.Constraint().IsActive() {
			t.Errorf("%v: constraint inactive after prepare", n)
		}
	}
	assertRect(t, "portal frame", a.Portal().Content().Frame(), Rect{0, 0, 400, 800})
	if err := a.Prepare(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Prepare err = %v", err)
	}
}

func TestScheduleMasterSelection(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(nil, nil))
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if a.Master() != a.Base(SideTo).Timeline() {
		t.Errorf("static master = %q, want base.to", a.Master().Name)
	}
	tls := a.Timelines()
	if tls[len(tls)-1] != a.Master() {
		t.Error("master should be last")
	}
	a.Cleanup()

	g := newFixture()
	req := g.request(nil, nil)
	req.Sources.From = StaticSource{Portal: addBox(g.from, "cell", Rect{0, 0, 50, 50})}
	b, _ := newTestAnimator(t, req)
	if err := b.Run(); err != nil {
		t.Fatal(err)
	}
	if b.Master() != b.Portal().Timeline() {
		t.Errorf("expanding master = %q, want portal", b.Master().Name)
	}
	b.Cleanup()
}

func TestRunTwice(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(nil, nil))
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if err := a.Run(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Run err = %v, want ErrInvalidState", err)
	}
}

func TestRunToCompletion(t *testing.T) {
	f := newFixture()
	req := f.request(
		map[string]*Element{"k": addBox(f.from, "a", Rect{10, 10, 50, 50})},
		map[string]*Element{"k": addBox(f.to, "b", Rect{100, 100, 50, 50})},
	)
	req.Sources.From = StaticSource{
		Views:  map[string]*Element{"k": f.from.Find("a")},
		Portal: addBox(f.from, "cell", Rect{0, 0, 50, 50}),
	}
	a, snap := newTestAnimator(t, req)

	var order []int
	var positions []Position
	a.OnCompletion(func(p Position) { order = append(order, 1); positions = append(positions, p) })
	a.OnCompletion(func(p Position) { order = append(order, 2); positions = append(positions, p) })

	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if a.State() != StateRunning {
		t.Fatalf("state = %v", a.State())
	}
	runToEnd(t, a)

	assertNames(t, "stage", childNames(f.stage), []string{"from", "to"})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("callback order = %v", order)
	}
	for _, p := range positions {
		if p != PositionEnd {
			t.Errorf("position = %v, want end", p)
		}
	}
	for _, r := range snap.made {
		if !r.IsDisposed() {
			t.Errorf("replica %q not disposed", r.Name())
		}
	}
	if f.to.Hidden || f.to.Alpha != 1 {
		t.Error("incoming scene not restored")
	}
	if !f.from.Hidden {
		t.Error("outgoing scene should stay hidden")
	}
	for _, tl := range a.Timelines() {
		if tl.State() != TimelineFinished {
			t.Errorf("timeline %q = %v", tl.Name, tl.State())
		}
	}

	// Late registration fires immediately with the final position.
	var late Position = PositionStart
	a.OnCompletion(func(p Position) { late = p })
	if late != PositionEnd {
		t.Errorf("late callback position = %v", late)
	}
	a.Cleanup()
	if len(order) != 2 {
		t.Error("callbacks fired again")
	}
}

func TestEndPlacementsMatchRealGeometry(t *testing.T) {
	f := newFixture()
	b := addBox(f.to, "b", Rect{100, 100, 50, 50})
	fresh := addBox(f.to, "fresh", Rect{300, 20, 20, 20})
	a, _ := newTestAnimator(t, f.request(
		map[string]*Element{"k": addBox(f.from, "a", Rect{10, 10, 50, 50})},
		map[string]*Element{"k": b, "fresh": fresh},
	))
	if err := a.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := a.Schedule(); err != nil {
		t.Fatal(err)
	}
	for _, tl := range a.Timelines() {
		tl.Start()
		tl.Finish()
	}
	a.Layout().Resolve(f.stage)

	for _, tc := range []struct {
		node *Node
		real *Element
	}{
		{a.NodesOf(NodeMorphing)[0], b},
		{a.NodesOf(NodeEntering)[0], fresh},
		{a.Base(SideTo), f.to},
	} {
		got, err := tc.node.Content().PlacementIn(f.stage)
		if err != nil {
			t.Fatal(err)
		}
		want, err := tc.real.PlacementIn(f.stage)
		if err != nil {
			t.Fatal(err)
		}
		assertPlacement(t, tc.node.Name, got, want)
	}
	faces := a.NodesOf(NodeMorphing)[0].Faces()
	if faces.From.Alpha != 0 || faces.To.Alpha != 1 {
		t.Errorf("face alphas = %v, %v", faces.From.Alpha, faces.To.Alpha)
	}
	a.Cleanup()
}

func TestInterruptStopsAtCurrent(t *testing.T) {
	f := newFixture()
	req := f.request(nil, nil)
	req.Sources.From = StaticSource{Portal: addBox(f.from, "cell", Rect{0, 0, 50, 50})}
	a, _ := newTestAnimator(t, req)

	var positions []Position
	a.OnCompletion(func(p Position) { positions = append(positions, p) })
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	a.Update(0.1)
	progress := a.Master().Progress()
	a.Interrupt()

	if a.State() != StateCleanedUp {
		t.Fatalf("state = %v", a.State())
	}
	if len(positions) != 1 || positions[0] != PositionCurrent {
		t.Errorf("positions = %v", positions)
	}
	for _, tl := range a.Timelines() {
		if tl.State() != TimelineStopped {
			t.Errorf("timeline %q = %v, want stopped", tl.Name, tl.State())
		}
	}
	if a.Master().Progress() != progress {
		t.Error("master moved after interrupt")
	}
	a.Update(0.1)
	a.Interrupt()
	if len(positions) != 1 {
		t.Error("callbacks fired twice")
	}
}

func TestCleanupBeforeRun(t *testing.T) {
	f := newFixture()
	a, snap := newTestAnimator(t, f.request(nil, nil))
	calls := 0
	a.OnCompletion(func(p Position) {
		calls++
		if p != PositionStart {
			t.Errorf("position = %v, want start", p)
		}
	})
	a.Cleanup()
	a.Cleanup()

	if calls != 1 {
		t.Errorf("callbacks = %d, want 1", calls)
	}
	for _, r := range snap.made {
		if !r.IsDisposed() {
			t.Errorf("replica %q not disposed", r.Name())
		}
	}
	if err := a.Run(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Run after cleanup err = %v", err)
	}
}

func TestCleanupAfterPrepareRestoresBoth(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(nil, nil))
	if err := a.Prepare(); err != nil {
		t.Fatal(err)
	}
	a.Cleanup()
	if f.from.Hidden || f.to.Hidden {
		t.Error("bases should be visible after an unrun transition")
	}
	assertNames(t, "stage", childNames(f.stage), []string{"from", "to"})
	if a.Layout().Len() != 0 {
		t.Errorf("layout still holds %d bindings", a.Layout().Len())
	}
}

func TestAnimatorDuration(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(nil, nil))
	if a.Duration() != DefaultConfig().Duration {
		t.Errorf("Duration = %v", a.Duration())
	}

	req := f.request(nil, nil)
	req.Duration = 2 * time.Second
	req.Guidance = []TransitionGuidance{TimingGuidance{Multiplier: 0.5}}
	b, _ := newTestAnimator(t, req)
	if b.Duration() != time.Second {
		t.Errorf("Duration = %v, want 1s", b.Duration())
	}
}

func TestPlayCompletes(t *testing.T) {
	f := newFixture()
	cfg := DefaultConfig()
	cfg.Duration = 30 * time.Millisecond
	opts := quietOptions(&stubSnapshotter{})
	opts.Config = &cfg
	a, err := NewAnimator(buildScene(t, f.request(nil, nil)), opts)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Play(ctx, 200); err != nil {
		t.Fatal(err)
	}
	if !a.Done() {
		t.Errorf("state = %v", a.State())
	}
}

func TestPlayCancelled(t *testing.T) {
	f := newFixture()
	a, _ := newTestAnimator(t, f.request(nil, nil))
	var pos []Position
	a.OnCompletion(func(p Position) { pos = append(pos, p) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Play(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(pos) != 1 || pos[0] != PositionCurrent {
		t.Errorf("positions = %v", pos)
	}
}

func TestAnimatorStateString(t *testing.T) {
	if StateCleanedUp.String() != "cleaned up" || AnimatorState(99).String() != "AnimatorState(99)" {
		t.Error("AnimatorState.String")
	}
}

func TestHiddenIncomingBaseShownAfterRun(t *testing.T) {
	f := newFixture()
	f.to.Hidden = true
	req := f.request(nil, nil)
	req.Sources.From = StaticSource{Portal: addBox(f.from, "cell", Rect{175, 375, 50, 50})}
	a, _ := newTestAnimator(t, req)

	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	runToEnd(t, a)
	if f.to.Hidden {
		t.Error("incoming scene still hidden after completion")
	}
	if !f.from.Hidden {
		t.Error("outgoing scene should stay hidden")
	}
}

func TestHiddenIncomingBaseShownAfterInterrupt(t *testing.T) {
	f := newFixture()
	f.to.Hidden = true
	a, _ := newTestAnimator(t, f.request(nil, nil))

	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	a.Update(0.1)
	a.Interrupt()
	if f.to.Hidden || f.to.Alpha != 1 {
		t.Error("incoming scene not shown after interrupt")
	}
}

func TestOpenThenCloseLeavesOneSceneVisible(t *testing.T) {
	f := newFixture()
	f.to.Hidden = true
	cell := addBox(f.from, "cell", Rect{175, 375, 50, 50})

	open := f.request(nil, nil)
	open.Sources.From = StaticSource{Portal: cell}
	a, _ := newTestAnimator(t, open)
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	runToEnd(t, a)

	back := SceneRequest{
		Sources:   NewPair[ViewSource](NoViews{}, StaticSource{Portal: cell}),
		Bases:     NewPair(f.to, f.from),
		Stage:     f.stage,
		Direction: Reverse,
	}
	b, _ := newTestAnimator(t, back)
	if err := b.Run(); err != nil {
		t.Fatal(err)
	}
	runToEnd(t, b)
	if f.from.Hidden {
		t.Error("grid scene hidden after closing")
	}
	if !f.to.Hidden {
		t.Error("detail scene visible after closing")
	}
}
