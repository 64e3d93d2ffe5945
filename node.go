package morph

import "fmt"

// NodeKind identifies the role of a transient node.
type NodeKind uint8

const (
	NodeBase     NodeKind = iota // whole-scene snapshot
	NodePortal                   // clipping boundary content passes through
	NodeShadow                   // shadow following the portal
	NodeEffect                   // blur over the outgoing content
	NodeAcetate                  // group carrying exiting or entering leaves
	NodeMorphing                 // element present in both scenes
	NodeExiting                  // element present in the outgoing scene only
	NodeEntering                 // element present in the incoming scene only
)

func (k NodeKind) String() string {
	switch k {
	case NodeBase:
		return "base"
	case NodePortal:
		return "portal"
	case NodeShadow:
		return "shadow"
	case NodeEffect:
		return "effect"
	case NodeAcetate:
		return "acetate"
	case NodeMorphing:
		return "morphing"
	case NodeExiting:
		return "exiting"
	case NodeEntering:
		return "entering"
	default:
		return fmt.Sprintf("NodeKind(%d)", k)
	}
}

// Growth describes how the portal's primary-axis extent changes.
type Growth uint8

const (
	GrowthStatic Growth = iota
	GrowthExpanding
	GrowthContracting
)

func (g Growth) String() string {
	switch g {
	case GrowthExpanding:
		return "expanding"
	case GrowthContracting:
		return "contracting"
	default:
		return "static"
	}
}

// growthOf compares the primary-axis extents of start and end.
func growthOf(start, end Placement) Growth {
	s := start.Rect().AxisSize(PrimaryAxis)
	e := end.Rect().AxisSize(PrimaryAxis)
	switch {
	case e > s:
		return GrowthExpanding
	case e < s:
		return GrowthContracting
	default:
		return GrowthStatic
	}
}

// NodeID addresses a node within its animator's graph.
type NodeID int

// NoNode is the NodeID of an absent node.
const NoNode NodeID = -1

// Node is one element of the transient graph an Animator composes over the
// stage. A single flat struct serves every kind; fields that do not apply
// to a kind are left zero.
type Node struct {
	ID   NodeID
	Kind NodeKind
	Name string
	Side Side // base, acetate and leaf nodes

	content    *Element
	constraint ConstraintHandle
	start      Placement
	end        *Placement
	timeline   *Timeline

	// Opacity start and end of content.
	Opacity Transform[float64]

	// Acetate: group transform start and end, scaled about Focus (stage
	// coordinates).
	Group Transform[GroupTransform]
	Focus Vec2

	// Effect: whether the blur is applied at start and end.
	Active Transform[bool]

	// Portal: how the boundary changes size.
	Growth Growth

	// Morphing: the outgoing and incoming replica elements inside content.
	faces Pair[*Element]
}

// Content returns the element the node draws with.
func (n *Node) Content() *Element { return n.content }

// Constraint returns the handle binding the node's placement to the stage.
func (n *Node) Constraint() ConstraintHandle { return n.constraint }

// Timeline returns the node's timeline, or nil if the node does not animate
// or has not been scheduled.
func (n *Node) Timeline() *Timeline { return n.timeline }

// StartPlacement returns the placement the node begins at.
func (n *Node) StartPlacement() Placement { return n.start }

// EndPlacement returns the placement the node moves to, if it moves.
func (n *Node) EndPlacement() (Placement, bool) {
	if n.end == nil {
		return Placement{}, false
	}
	return *n.end, true
}

// CurrentPlacement returns the placement currently held by the constraint.
func (n *Node) CurrentPlacement() Placement {
	return n.constraint.Placement()
}

// Faces returns the outgoing and incoming replica elements of a morphing
// node.
func (n *Node) Faces() Pair[*Element] { return n.faces }

// placementAt interpolates between start and end placement.
func (n *Node) placementAt(p float64) Placement {
	if n.end == nil {
		return n.start
	}
	return n.start.Lerp(*n.end, p)
}

// applyStart puts the node's content into its start state.
func (n *Node) applyStart() {
	n.content.Alpha = n.Opacity.Start
	switch n.Kind {
	case NodeAcetate:
		n.content.Group = n.Group.Start
	case NodeEffect:
		n.content.BlurAmount = boolAmount(n.Active.Start)
	case NodeMorphing:
		n.faces.From.Alpha = 1
		n.faces.To.Alpha = 0
	}
	n.constraint.SetPlacement(n.start)
}

func (n *Node) String() string {
	end := "-"
	if n.end != nil {
		end = n.end.String()
	}
	return fmt.Sprintf("%s %q start=%s end=%s", n.Kind, n.Name, n.start, end)
}

func boolAmount(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
