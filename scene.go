package morph

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// MorphPair is an element present under the same key in both scenes.
type MorphPair struct {
	Key string
	Pair[*Element]
}

// NamedElement is an element present in one scene only.
type NamedElement struct {
	Key     string
	Element *Element
}

// SceneRequest is everything BuildScene needs to classify a transition.
type SceneRequest struct {
	Sources   Pair[ViewSource] // nil sources nominate nothing
	Bases     Pair[*Element]   // root elements of the two scenes
	Stage     *Element         // common ancestor the transition plays out in
	Direction Direction
	Duration  time.Duration // zero uses the animator's configured duration
	Key       TransitionKey // empty means AllTransitions
	Guidance  []TransitionGuidance
}

// Scene is the immutable classification of a transition's elements.
type Scene struct {
	Bases     Pair[*Element]
	Morphing  []MorphPair    // sorted by key
	Exiting   []NamedElement // from-only, sorted by key
	Entering  []NamedElement // to-only, sorted by key
	Portals   Pair[*Element]
	Stage     *Element
	Direction Direction
	Duration  time.Duration
	Key       TransitionKey

	// PortalGuidance is the portal override from the request's guidance,
	// or nil.
	PortalGuidance *PortalGuidance

	timing float64 // duration multiplier from TimingGuidance
}

// BuildScene queries both view sources and classifies their elements into
// morphing, exiting and entering sets. It fails with a *SceneBuildError when
// a nominated element is nil or hidden; several such failures are combined.
func BuildScene(req SceneRequest) (*Scene, error) {
	if req.Bases.From == nil {
		return nil, &SceneBuildError{Side: SideFrom, Err: ErrMissingBase}
	}
	if req.Bases.To == nil {
		return nil, &SceneBuildError{Side: SideTo, Err: ErrMissingBase}
	}
	if req.Stage == nil {
		return nil, &SceneBuildError{Err: fmt.Errorf("stage: %w", ErrMissingBase)}
	}
	gs, err := mergeGuidance(req.Guidance)
	if err != nil {
		return nil, &SceneBuildError{Err: err}
	}

	key := req.Key
	if key == "" {
		key = AllTransitions
	}
	from := gs.views(viewsOf(req.Sources.From, key, TransitExiting), SideFrom)
	to := gs.views(viewsOf(req.Sources.To, key, TransitEntering), SideTo)

	var errs error
	for _, side := range []Side{SideFrom, SideTo} {
		views := from
		if side == SideTo {
			views = to
		}
		for _, k := range sortedKeys(views) {
			if views[k] == nil {
				errs = multierr.Append(errs, &SceneBuildError{Side: side, Key: k, Err: ErrUnresolvedKey})
			}
		}
	}
	if errs != nil {
		return nil, errs
	}

	s := &Scene{
		Bases:          req.Bases,
		Stage:          req.Stage,
		Direction:      req.Direction,
		Duration:       time.Duration(float64(req.Duration) * gs.multiplier),
		Key:            key,
		PortalGuidance: gs.portal,
		timing:         gs.multiplier,
	}
	for _, k := range sortedKeys(from) {
		if el, ok := to[k]; ok {
			s.Morphing = append(s.Morphing, MorphPair{Key: k, Pair: NewPair(from[k], el)})
		} else {
			s.Exiting = append(s.Exiting, NamedElement{Key: k, Element: from[k]})
		}
	}
	for _, k := range sortedKeys(to) {
		if _, ok := from[k]; !ok {
			s.Entering = append(s.Entering, NamedElement{Key: k, Element: to[k]})
		}
	}

	s.Portals = NewPair(req.Bases.From, req.Bases.To)
	if req.Sources.From != nil {
		if p := req.Sources.From.PortalView(); p != nil {
			s.Portals.From = p
		}
	}
	if req.Sources.To != nil {
		if p := req.Sources.To.PortalView(); p != nil {
			s.Portals.To = p
		}
	}

	s.eachAnimated(func(side Side, k string, el *Element) {
		if el.Hidden {
			errs = multierr.Append(errs, &SceneBuildError{Side: side, Key: k, Err: ErrHiddenElement})
		}
	})
	if errs != nil {
		return nil, errs
	}
	return s, nil
}

func viewsOf(src ViewSource, key TransitionKey, transit Transit) map[string]*Element {
	if src == nil {
		return nil
	}
	return src.ViewsOfInterest(key, transit)
}

// eachAnimated calls fn for every element animated as its own node, in a
// stable order: morphing pairs (from then to), exiting, entering.
func (s *Scene) eachAnimated(fn func(side Side, key string, el *Element)) {
	for _, m := range s.Morphing {
		fn(SideFrom, m.Key, m.From)
		fn(SideTo, m.Key, m.To)
	}
	for _, e := range s.Exiting {
		fn(SideFrom, e.Key, e.Element)
	}
	for _, e := range s.Entering {
		fn(SideTo, e.Key, e.Element)
	}
}

// AnimatedElements returns every element animated as its own node.
func (s *Scene) AnimatedElements() []*Element {
	var out []*Element
	s.eachAnimated(func(_ Side, _ string, el *Element) {
		out = append(out, el)
	})
	return out
}

// IsEmpty reports whether no element is animated individually; such a
// transition is a pure cross-fade of the bases.
func (s *Scene) IsEmpty() bool {
	return len(s.Morphing) == 0 && len(s.Exiting) == 0 && len(s.Entering) == 0
}

// durationOr returns the scene duration, or fallback scaled by the timing
// guidance when the request left the duration unset.
func (s *Scene) durationOr(fallback time.Duration) time.Duration {
	if s.Duration > 0 {
		return s.Duration
	}
	m := s.timing
	if m == 0 {
		m = 1
	}
	return time.Duration(float64(fallback) * m)
}
