package morph

import "fmt"

// Flow is the aggregate motion of a transition. Elements without a
// counterpart in the other scene move along it so they travel in step with
// the dominant motion.
type Flow struct {
	Translation Vector
	Scale       float64
}

// ZeroFlow moves nothing.
var ZeroFlow = Flow{Scale: 1}

// IsZero reports whether the flow has no translation.
func (f Flow) IsZero() bool {
	return f.Translation.IsZero()
}

func (f Flow) String() string {
	return fmt.Sprintf("flow(%g, %g ×%g)", f.Translation.DX, f.Translation.DY, f.Scale)
}

// ComputeFlow derives the flow of scene s together with the portal's growth.
//
// A portal that grows or shrinks dominates: the flow is the damped delta
// between its start and end centers. Otherwise the flow is the damped delta
// between the union of the morphing elements' start frames and the union of
// their end frames. Without morphing elements and with a static portal the
// flow has no translation. Scale is always cfg.EntryScaling.
func ComputeFlow(s *Scene, cfg FlowConfig) (Flow, Growth, error) {
	portal, err := portalPlacements(s)
	if err != nil {
		return Flow{}, GrowthStatic, err
	}
	growth := growthOf(portal.Start, portal.End)
	f := Flow{Scale: cfg.EntryScaling}
	if growth != GrowthStatic {
		f.Translation = portal.Start.Center().Sub(portal.End.Center()).Scale(cfg.Multiplier)
		return f, growth, nil
	}
	delta, err := morphingDelta(s)
	if err != nil {
		return Flow{}, growth, err
	}
	f.Translation = delta.Scale(cfg.Multiplier)
	return f, growth, nil
}

// portalPlacements returns the portal's start and end placement in stage
// space.
func portalPlacements(s *Scene) (Transform[Placement], error) {
	start, err := s.Portals.From.PlacementIn(s.Stage)
	if err != nil {
		return Transform[Placement]{}, err
	}
	end, err := s.Portals.To.PlacementIn(s.Stage)
	if err != nil {
		return Transform[Placement]{}, err
	}
	return NewTransform(start, end), nil
}

// morphingDelta is the undamped vector from the center of the morphing
// elements' end union to the center of their start union. Zero when there
// are no morphing elements.
func morphingDelta(s *Scene) (Vector, error) {
	if len(s.Morphing) == 0 {
		return Vector{}, nil
	}
	start, end := NullRect, NullRect
	for _, m := range s.Morphing {
		r, err := m.From.FrameIn(s.Stage)
		if err != nil {
			return Vector{}, err
		}
		start = start.Union(r)
		r, err = m.To.FrameIn(s.Stage)
		if err != nil {
			return Vector{}, err
		}
		end = end.Union(r)
	}
	return start.Center().Sub(end.Center()), nil
}
