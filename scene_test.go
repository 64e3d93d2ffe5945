package morph

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"
)

// fixture is a 400x800 stage holding two full-size scene roots.
type fixture struct {
	stage, from, to *Element
}

func newFixture() *fixture {
	f := &fixture{
		stage: NewContainer("stage", Rect{0, 0, 400, 800}),
		from:  NewContainer("from", Rect{0, 0, 400, 800}),
		to:    NewContainer("to", Rect{0, 0, 400, 800}),
	}
	f.from.Fill = Color{0.2, 0.2, 0.2, 1}
	f.to.Fill = Color{0.9, 0.9, 0.9, 1}
	f.stage.AddChild(f.from)
	f.stage.AddChild(f.to)
	return f
}

func addBox(parent *Element, name string, r Rect) *Element {
	e := NewContainer(name, r)
	e.Fill = Color{1, 0, 0, 1}
	parent.AddChild(e)
	return e
}

func (f *fixture) request(from, to map[string]*Element) SceneRequest {
	return SceneRequest{
		Sources: NewPair[ViewSource](StaticSource{Views: from}, StaticSource{Views: to}),
		Bases:   NewPair(f.from, f.to),
		Stage:   f.stage,
	}
}

type recordingSource struct {
	StaticSource
	key     TransitionKey
	transit Transit
}

func (r *recordingSource) ViewsOfInterest(k TransitionKey, tr Transit) map[string]*Element {
	r.key, r.transit = k, tr
	return r.Views
}

func TestBuildSceneMorphingPair(t *testing.T) {
	f := newFixture()
	a := addBox(f.from, "a", Rect{10, 10, 50, 50})
	b := addBox(f.to, "b", Rect{100, 100, 50, 50})

	s, err := BuildScene(f.request(map[string]*Element{"square": a}, map[string]*Element{"square": b}))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Morphing) != 1 || len(s.Exiting) != 0 || len(s.Entering) != 0 {
		t.Fatalf("classified %d/%d/%d, want 1/0/0", len(s.Morphing), len(s.Exiting), len(s.Entering))
	}
	m := s.Morphing[0]
	if m.Key != "square" || m.From != a || m.To != b {
		t.Errorf("pair = %q %q→%q", m.Key, m.From.Name, m.To.Name)
	}
}

func TestBuildSceneExitingSingleton(t *testing.T) {
	f := newFixture()
	x := addBox(f.from, "x", Rect{0, 0, 10, 10})
	y := addBox(f.from, "y", Rect{20, 0, 10, 10})
	x2 := addBox(f.to, "x2", Rect{0, 100, 10, 10})

	s, err := BuildScene(f.request(map[string]*Element{"x": x, "y": y}, map[string]*Element{"x": x2}))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Morphing) != 1 || s.Morphing[0].Key != "x" {
		t.Errorf("morphing = %v", s.Morphing)
	}
	if len(s.Exiting) != 1 || s.Exiting[0].Key != "y" || s.Exiting[0].Element != y {
		t.Errorf("exiting = %v", s.Exiting)
	}
	if len(s.Entering) != 0 {
		t.Errorf("entering = %v", s.Entering)
	}
}

func TestBuildSceneEnteringAndSorted(t *testing.T) {
	f := newFixture()
	to := map[string]*Element{
		"c": addBox(f.to, "c", Rect{0, 0, 1, 1}),
		"a": addBox(f.to, "a", Rect{0, 0, 1, 1}),
		"b": addBox(f.to, "b", Rect{0, 0, 1, 1}),
	}
	s, err := BuildScene(f.request(nil, to))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Entering) != 3 {
		t.Fatalf("entering = %d, want 3", len(s.Entering))
	}
	for i, want := range []string{"a", "b", "c"} {
		if s.Entering[i].Key != want {
			t.Errorf("Entering[%d] = %q, want %q", i, s.Entering[i].Key, want)
		}
	}
}

func TestBuildSceneEmpty(t *testing.T) {
	f := newFixture()
	s, err := BuildScene(f.request(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsEmpty() {
		t.Error("scene should be empty")
	}
	if s.Portals.From != f.from || s.Portals.To != f.to {
		t.Error("portals should default to the bases")
	}
	if len(s.AnimatedElements()) != 0 {
		t.Error("no element should be animated")
	}
}

func TestBuildSceneNilSources(t *testing.T) {
	f := newFixture()
	s, err := BuildScene(SceneRequest{Bases: NewPair(f.from, f.to), Stage: f.stage})
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsEmpty() {
		t.Error("nil sources should nominate nothing")
	}
}

func TestBuildSceneExplicitPortals(t *testing.T) {
	f := newFixture()
	cell := addBox(f.from, "cell", Rect{10, 10, 50, 50})
	card := addBox(f.to, "card", Rect{20, 20, 300, 300})
	req := f.request(nil, nil)
	req.Sources = NewPair[ViewSource](StaticSource{Portal: cell}, StaticSource{Portal: card})

	s, err := BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if s.Portals.From != cell || s.Portals.To != card {
		t.Errorf("portals = %q, %q", s.Portals.From.Name, s.Portals.To.Name)
	}
}

func TestBuildSceneForwardsKeyAndTransit(t *testing.T) {
	f := newFixture()
	from := &recordingSource{}
	to := &recordingSource{}
	req := f.request(nil, nil)
	req.Sources = NewPair[ViewSource](from, to)

	s, err := BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if s.Key != AllTransitions || from.key != AllTransitions {
		t.Errorf("key = %q, want %q", from.key, AllTransitions)
	}
	if from.transit != TransitExiting || to.transit != TransitEntering {
		t.Errorf("transits = %v, %v", from.transit, to.transit)
	}

	req.Key = "detail"
	if _, err := BuildScene(req); err != nil {
		t.Fatal(err)
	}
	if to.key != "detail" {
		t.Errorf("key = %q, want detail", to.key)
	}
}

func TestBuildSceneHiddenElements(t *testing.T) {
	f := newFixture()
	a := addBox(f.from, "a", Rect{0, 0, 10, 10})
	b := addBox(f.to, "b", Rect{0, 0, 10, 10})
	a.Hidden = true
	b.Hidden = true

	_, err := BuildScene(f.request(map[string]*Element{"a": a}, map[string]*Element{"b": b}))
	if !errors.Is(err, ErrHiddenElement) {
		t.Fatalf("err = %v, want ErrHiddenElement", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("combined %d errors, want 2", n)
	}
	var be *SceneBuildError
	if !errors.As(err, &be) || be.Key != "a" || be.Side != SideFrom {
		t.Errorf("first error = %+v", be)
	}
}

func TestBuildSceneUnresolvedKey(t *testing.T) {
	f := newFixture()
	_, err := BuildScene(f.request(map[string]*Element{"ghost": nil}, nil))
	if !errors.Is(err, ErrUnresolvedKey) {
		t.Fatalf("err = %v, want ErrUnresolvedKey", err)
	}
}

func TestBuildSceneMissingBase(t *testing.T) {
	f := newFixture()
	req := f.request(nil, nil)
	req.Bases.To = nil
	if _, err := BuildScene(req); !errors.Is(err, ErrMissingBase) {
		t.Errorf("missing base: err = %v", err)
	}
	req = f.request(nil, nil)
	req.Stage = nil
	if _, err := BuildScene(req); !errors.Is(err, ErrMissingBase) {
		t.Errorf("missing stage: err = %v", err)
	}
}

// --- Guidance ---

func TestKeyRemapGuidance(t *testing.T) {
	f := newFixture()
	thumb := addBox(f.from, "thumb", Rect{0, 0, 10, 10})
	alt := addBox(f.from, "alt", Rect{0, 0, 10, 10})
	hero := addBox(f.to, "hero", Rect{0, 0, 100, 100})
	req := f.request(
		map[string]*Element{"thumb": thumb, "alt": alt},
		map[string]*Element{"photo": hero},
	)
	req.Guidance = []TransitionGuidance{KeyRemapGuidance{
		Remap: []KeyRemap{{From: []string{"thumb", "alt"}, To: "photo", Side: FromSideOnly}},
	}}

	s, err := BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Morphing) != 1 || s.Morphing[0].Key != "photo" {
		t.Fatalf("morphing = %v", s.Morphing)
	}
	if s.Morphing[0].From != thumb {
		t.Errorf("kept %q, want thumb (first in From order)", s.Morphing[0].From.Name)
	}
	if len(s.Exiting) != 0 {
		t.Errorf("dropped remap source still exiting: %v", s.Exiting)
	}
}

func TestKeyRemovalGuidance(t *testing.T) {
	f := newFixture()
	a := addBox(f.from, "a", Rect{0, 0, 10, 10})
	b := addBox(f.to, "b", Rect{0, 0, 10, 10})
	req := f.request(map[string]*Element{"k": a}, map[string]*Element{"k": b})
	req.Guidance = []TransitionGuidance{&KeyRemapGuidance{
		Remove: []KeyRemoval{{Key: "k", Side: ToSideOnly}},
	}}

	s, err := BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Morphing) != 0 || len(s.Exiting) != 1 {
		t.Errorf("classified morphing=%d exiting=%d, want 0/1", len(s.Morphing), len(s.Exiting))
	}
}

func TestTimingGuidanceRange(t *testing.T) {
	f := newFixture()
	for _, m := range []float64{0.49, 1.51, 0} {
		req := f.request(nil, nil)
		req.Guidance = []TransitionGuidance{TimingGuidance{Multiplier: m}}
		if _, err := BuildScene(req); !errors.Is(err, ErrGuidanceRange) {
			t.Errorf("multiplier %v: err = %v, want ErrGuidanceRange", m, err)
		}
	}
}

func TestTimingGuidanceScalesDuration(t *testing.T) {
	f := newFixture()
	req := f.request(nil, nil)
	req.Duration = time.Second
	req.Guidance = []TransitionGuidance{&TimingGuidance{Multiplier: 1.5}}
	s, err := BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", s.Duration)
	}

	req.Duration = 0
	s, err = BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.durationOr(650 * time.Millisecond); got != 975*time.Millisecond {
		t.Errorf("durationOr = %v, want 975ms", got)
	}
}

func TestPortalGuidanceLastWins(t *testing.T) {
	f := newFixture()
	req := f.request(nil, nil)
	req.Guidance = []TransitionGuidance{
		PortalGuidance{CornerRadius: 4},
		&PortalGuidance{CornerRadius: 12, DisableShadow: true},
	}
	s, err := BuildScene(req)
	if err != nil {
		t.Fatal(err)
	}
	if s.PortalGuidance == nil || s.PortalGuidance.CornerRadius != 12 || !s.PortalGuidance.DisableShadow {
		t.Errorf("PortalGuidance = %+v", s.PortalGuidance)
	}
}
