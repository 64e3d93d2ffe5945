package morph

// TransitionKey identifies a particular transition, letting a view source
// nominate different elements for different transitions.
type TransitionKey = string

// AllTransitions requests the elements of interest for every transition.
const AllTransitions TransitionKey = "_allTransitions"

// Transit tells a view source whether its scene is leaving or arriving.
type Transit uint8

const (
	TransitExiting  Transit = iota // the scene is being left
	TransitEntering                // the scene is being shown
)

func (t Transit) String() string {
	if t == TransitEntering {
		return "entering"
	}
	return "exiting"
}

// Direction of a transition. Forward is analogous to push, Reverse to pop.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// ViewSource nominates the elements of one scene that take part in a
// transition.
//
// Elements named identically on both sides morph into each other. Elements
// named on one side only exit or enter along the transition's flow. Every
// other element is carried by the base snapshot and cross-faded.
type ViewSource interface {
	// ViewsOfInterest returns the named elements for the given transition
	// and transit. A nil map means none.
	ViewsOfInterest(key TransitionKey, transit Transit) map[string]*Element
	// PortalView returns the element the transition enters or exits
	// through, or nil to use the whole scene.
	PortalView() *Element
}

// NoViews is a ViewSource that nominates nothing. Embed it to implement only
// one of the two methods.
type NoViews struct{}

func (NoViews) ViewsOfInterest(TransitionKey, Transit) map[string]*Element { return nil }
func (NoViews) PortalView() *Element                                        { return nil }

// StaticSource is a ViewSource backed by fixed values, used by tools and
// tests that describe scenes declaratively.
type StaticSource struct {
	Views  map[string]*Element
	Portal *Element
}

func (s StaticSource) ViewsOfInterest(TransitionKey, Transit) map[string]*Element { return s.Views }
func (s StaticSource) PortalView() *Element                                        { return s.Portal }
