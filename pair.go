package morph

// Side selects one half of a transition.
type Side uint8

const (
	SideFrom Side = iota // the outgoing scene
	SideTo               // the incoming scene
)

func (s Side) String() string {
	if s == SideTo {
		return "to"
	}
	return "from"
}

// Pair holds the two sides of a transition: the outgoing (From) and the
// incoming (To) value.
type Pair[T any] struct {
	From T
	To   T
}

// NewPair returns a Pair of from and to.
func NewPair[T any](from, to T) Pair[T] {
	return Pair[T]{From: from, To: to}
}

// At returns the value for side s.
func (p Pair[T]) At(s Side) T {
	if s == SideTo {
		return p.To
	}
	return p.From
}

// Each calls fn for From then To.
func (p Pair[T]) Each(fn func(Side, T)) {
	fn(SideFrom, p.From)
	fn(SideTo, p.To)
}

// Position selects the start or end value of a Transform.
type Position uint8

const (
	PositionStart   Position = iota // value before the transition
	PositionEnd                     // value after the transition
	PositionCurrent                 // wherever an interrupted timeline stopped
)

func (p Position) String() string {
	switch p {
	case PositionStart:
		return "start"
	case PositionEnd:
		return "end"
	default:
		return "current"
	}
}

// Transform is a start and end value of some geometric property: points,
// placements, group transforms or opacity.
type Transform[T any] struct {
	Start T
	End   T
}

// NewTransform returns a Transform from start to end.
func NewTransform[T any](start, end T) Transform[T] {
	return Transform[T]{Start: start, End: end}
}

// At returns Start for PositionStart and End otherwise.
func (t Transform[T]) At(p Position) T {
	if p == PositionStart {
		return t.Start
	}
	return t.End
}
