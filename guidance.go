package morph

import (
	"fmt"
	"slices"
)

// TransitionGuidance adjusts how a transition treats the elements its view
// sources nominate. Implemented by KeyRemapGuidance, TimingGuidance and
// PortalGuidance.
type TransitionGuidance interface {
	isGuidance()
}

// SideSelector restricts a guidance rule to one side of the transition.
type SideSelector uint8

const (
	BothSides SideSelector = iota
	FromSideOnly
	ToSideOnly
)

func (sel SideSelector) includes(s Side) bool {
	switch sel {
	case FromSideOnly:
		return s == SideFrom
	case ToSideOnly:
		return s == SideTo
	default:
		return true
	}
}

// KeyRemoval drops Key from the nominated elements, as though the view
// source never named it.
type KeyRemoval struct {
	Key  string
	Side SideSelector
}

// KeyRemap renames elements nominated under any of From to To. When more
// than one of From is present, the first in From order is kept and the
// others are dropped.
type KeyRemap struct {
	From []string
	To   string
	Side SideSelector
}

// KeyRemapGuidance removes and renames element keys before they are matched.
// Removals are applied before remaps.
type KeyRemapGuidance struct {
	Remove []KeyRemoval
	Remap  []KeyRemap
}

func (KeyRemapGuidance) isGuidance() {}

// apply returns a copy of views with the rules for side applied.
func (g KeyRemapGuidance) apply(views map[string]*Element, side Side) map[string]*Element {
	out := make(map[string]*Element, len(views))
	for k, v := range views {
		out[k] = v
	}
	for _, r := range g.Remove {
		if r.Side.includes(side) {
			delete(out, r.Key)
		}
	}
	for _, r := range g.Remap {
		if !r.Side.includes(side) {
			continue
		}
		var kept *Element
		found := false
		for _, k := range r.From {
			el, ok := out[k]
			if !ok {
				continue
			}
			delete(out, k)
			if !found {
				kept, found = el, true
			}
		}
		if found {
			out[r.To] = kept
		}
	}
	return out
}

// Timing multiplier limits.
const (
	MinTimingMultiplier = 0.5
	MaxTimingMultiplier = 1.5
)

// TimingGuidance scales the transition's duration by Multiplier, which must
// lie in [MinTimingMultiplier, MaxTimingMultiplier].
type TimingGuidance struct {
	Multiplier float64
}

func (TimingGuidance) isGuidance() {}

func (g TimingGuidance) validate() error {
	if g.Multiplier < MinTimingMultiplier || g.Multiplier > MaxTimingMultiplier {
		return fmt.Errorf("timing multiplier %g not in [%g, %g]: %w",
			g.Multiplier, MinTimingMultiplier, MaxTimingMultiplier, ErrGuidanceRange)
	}
	return nil
}

// PortalGuidance overrides the portal's corner radius and can suppress its
// shadow.
type PortalGuidance struct {
	CornerRadius  float64
	DisableShadow bool
}

func (PortalGuidance) isGuidance() {}

// guidanceSet is the merged view of a guidance list. Remaps accumulate;
// for timing and portal guidance the last one wins.
type guidanceSet struct {
	remaps     []KeyRemapGuidance
	multiplier float64
	portal     *PortalGuidance
}

func mergeGuidance(list []TransitionGuidance) (guidanceSet, error) {
	gs := guidanceSet{multiplier: 1}
	for _, g := range list {
		switch g := g.(type) {
		case KeyRemapGuidance:
			gs.remaps = append(gs.remaps, g)
		case *KeyRemapGuidance:
			gs.remaps = append(gs.remaps, *g)
		case TimingGuidance:
			if err := g.validate(); err != nil {
				return gs, err
			}
			gs.multiplier = g.Multiplier
		case *TimingGuidance:
			if err := g.validate(); err != nil {
				return gs, err
			}
			gs.multiplier = g.Multiplier
		case PortalGuidance:
			gs.portal = &g
		case *PortalGuidance:
			p := *g
			gs.portal = &p
		}
	}
	return gs, nil
}

// views applies every remap rule to one side's nominations.
func (gs guidanceSet) views(views map[string]*Element, side Side) map[string]*Element {
	for _, r := range gs.remaps {
		views = r.apply(views, side)
	}
	return views
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]*Element) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
