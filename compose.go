package morph

import (
	"errors"
	"fmt"
)

// graph is the transient node graph of one transition. Nodes are addressed
// by NodeID, their index in nodes.
type graph struct {
	nodes  []*Node
	flow   Flow
	growth Growth

	bases    Pair[NodeID]
	portal   NodeID
	shadow   NodeID
	effect   NodeID
	acetates Pair[NodeID] // From groups the exiting leaves, To the entering
	morphing []NodeID
	exiting  []NodeID
	entering []NodeID
}

func (g *graph) add(n *Node) NodeID {
	n.ID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n.ID
}

// node returns the node for id, or nil for NoNode.
func (g *graph) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// leafGeometry is a leaf's start and end placement in stage space.
type leafGeometry struct {
	key   string
	start Placement
	end   Placement
}

// compose builds the whole graph for s without touching the stage. Geometry
// for every node is computed before any snapshot is taken, so an element
// that cannot be located aborts composition with nothing to undo. If a
// snapshot fails, every replica taken so far is disposed.
func compose(s *Scene, cfg Config, snap Snapshotter, layout *Layout) (*graph, error) {
	g := &graph{portal: NoNode, shadow: NoNode, effect: NoNode}

	portal, err := portalPlacements(s)
	if err != nil {
		return nil, err
	}
	g.flow, g.growth, err = ComputeFlow(s, cfg.Flow)
	if err != nil {
		return nil, err
	}
	leafFlow := ZeroFlow
	if cfg.Flow.ApplyToLeaves {
		leafFlow = g.flow
	}

	baseFrom, err := s.Bases.From.PlacementIn(s.Stage)
	if err != nil {
		return nil, err
	}
	baseTo, err := s.Bases.To.PlacementIn(s.Stage)
	if err != nil {
		return nil, err
	}
	delta, err := morphingDelta(s)
	if err != nil {
		return nil, err
	}

	morphing := make([]leafGeometry, 0, len(s.Morphing))
	for _, m := range s.Morphing {
		start, err := m.From.PlacementIn(s.Stage)
		if err != nil {
			return nil, err
		}
		end, err := m.To.PlacementIn(s.Stage)
		if err != nil {
			return nil, err
		}
		morphing = append(morphing, leafGeometry{m.Key, start, end})
	}
	exiting, err := singletonGeometry(s.Exiting, s.Stage, leafFlow, SideFrom)
	if err != nil {
		return nil, err
	}
	entering, err := singletonGeometry(s.Entering, s.Stage, leafFlow, SideTo)
	if err != nil {
		return nil, err
	}

	// Snapshots.
	var replicas []*Replica
	fail := func(node string, err error) (*graph, error) {
		for _, r := range replicas {
			r.Dispose()
		}
		if !errors.Is(err, ErrSnapshot) {
			err = fmt.Errorf("%w: %w", ErrSnapshot, err)
		}
		return nil, &CompositionError{Node: node, Err: err}
	}
	take := func(node string, capture func() (*Replica, error)) (*Replica, error) {
		r, err := capture()
		if err == nil && r == nil {
			err = fmt.Errorf("no replica for %s", node)
		}
		if err != nil {
			return nil, err
		}
		replicas = append(replicas, r)
		return r, nil
	}

	bases, err := renderBases(s, snap)
	if bases.From != nil {
		replicas = append(replicas, bases.From)
	}
	if bases.To != nil {
		replicas = append(replicas, bases.To)
	}
	if err != nil {
		return fail("base", err)
	}

	morphFaces := make([]Pair[*Replica], len(s.Morphing))
	for i, m := range s.Morphing {
		from, err := take(m.Key, func() (*Replica, error) { return snap.Replicate(m.From) })
		if err != nil {
			return fail(m.Key, err)
		}
		to, err := take(m.Key, func() (*Replica, error) { return snap.Replicate(m.To) })
		if err != nil {
			return fail(m.Key, err)
		}
		morphFaces[i] = NewPair(from, to)
	}
	exitFaces := make([]*Replica, len(s.Exiting))
	for i, e := range s.Exiting {
		r, err := take(e.Key, func() (*Replica, error) { return snap.Replicate(e.Element) })
		if err != nil {
			return fail(e.Key, err)
		}
		exitFaces[i] = r
	}
	enterFaces := make([]*Replica, len(s.Entering))
	for i, e := range s.Entering {
		r, err := take(e.Key, func() (*Replica, error) { return snap.Replicate(e.Element) })
		if err != nil {
			return fail(e.Key, err)
		}
		enterFaces[i] = r
	}

	// Nodes. Every constraint starts inactive.
	stage := PlacementOf(s.Stage.Bounds())
	bind := func(n *Node) NodeID {
		layout.Bind(n.content, n.constraint)
		return g.add(n)
	}

	fromFade := 1.0
	if s.Direction == Reverse {
		fromFade = 0
	}
	g.bases.From = bind(&Node{
		Kind:       NodeBase,
		Name:       "base.from",
		Side:       SideFrom,
		content:    newReplicaElement("base.from", bases.From),
		constraint: Pin(baseFrom),
		start:      baseFrom,
		Opacity:    NewTransform(1.0, fromFade),
	})
	toStart := NewPlacement(baseTo.Center().Translate(delta, false), baseTo.Size())
	g.bases.To = bind(&Node{
		Kind:       NodeBase,
		Name:       "base.to",
		Side:       SideTo,
		content:    newReplicaElement("base.to", bases.To),
		constraint: Pin(toStart),
		start:      toStart,
		end:        &baseTo,
		Opacity:    NewTransform(0.0, 1.0),
	})

	pc := NewContainer("portal", Rect{})
	pc.Clip = true
	pc.CornerRadius = s.Portals.From.CornerRadius
	if s.Direction == Reverse {
		pc.CornerRadius = s.Portals.To.CornerRadius
	}
	if s.PortalGuidance != nil {
		pc.CornerRadius = s.PortalGuidance.CornerRadius
	}
	portalEnd := portal.End
	portalNode := &Node{
		Kind:       NodePortal,
		Name:       "portal",
		content:    pc,
		constraint: Pin(portal.Start),
		start:      portal.Start,
		end:        &portalEnd,
		Opacity:    NewTransform(1.0, 1.0),
		Growth:     g.growth,
	}
	g.portal = bind(portalNode)

	if g.growth != GrowthStatic {
		contracting := g.growth == GrowthContracting
		g.effect = bind(&Node{
			Kind:       NodeEffect,
			Name:       "blur",
			content:    newEffectElement("blur", cfg.BlurRadius),
			constraint: Pin(stage),
			start:      stage,
			Opacity:    NewTransform(1.0, 1.0),
			Active:     NewTransform(contracting, !contracting),
		})
		if s.PortalGuidance == nil || !s.PortalGuidance.DisableShadow {
			sc := newShadowElement("shadow", ShadowStyle{
				Color:   cfg.Shadow.Color,
				Opacity: cfg.Shadow.Opacity,
				Offset:  Vector{cfg.Shadow.OffsetX, cfg.Shadow.OffsetY},
				Radius:  cfg.Shadow.Radius,
			})
			sc.Fill = ColorWhite
			sc.CornerRadius = pc.CornerRadius
			g.shadow = bind(&Node{
				Kind:       NodeShadow,
				Name:       "shadow",
				content:    sc,
				constraint: Match(portalNode.constraint),
				start:      portal.Start,
				Opacity:    NewTransform(0.0, 0.0),
			})
		}
	}

	focus := s.Stage.Bounds().Center()
	g.acetates.From = bind(&Node{
		Kind:       NodeAcetate,
		Name:       "acetate.exiting",
		Side:       SideFrom,
		content:    NewContainer("acetate.exiting", Rect{}),
		constraint: Pin(stage),
		start:      stage,
		Opacity:    NewTransform(1.0, 1.0),
		Group:      NewTransform(IdentityGroup, GroupTransform{Translation: g.flow.Translation.Neg(), Scale: g.flow.Scale}),
		Focus:      focus,
	})
	g.acetates.To = bind(&Node{
		Kind:       NodeAcetate,
		Name:       "acetate.entering",
		Side:       SideTo,
		content:    NewContainer("acetate.entering", Rect{}),
		constraint: Pin(stage),
		start:      stage,
		Opacity:    NewTransform(1.0, 1.0),
		Group:      NewTransform(GroupTransform{Translation: g.flow.Translation, Scale: g.flow.Scale}, IdentityGroup),
		Focus:      focus,
	})

	for i, geo := range morphing {
		c := NewContainer(geo.key, Rect{})
		n := &Node{
			Kind:       NodeMorphing,
			Name:       geo.key,
			content:    c,
			constraint: Pin(geo.start),
			start:      geo.start,
			end:        &morphing[i].end,
			Opacity:    NewTransform(1.0, 1.0),
			faces: NewPair(
				newReplicaElement(geo.key+".from", morphFaces[i].From),
				newReplicaElement(geo.key+".to", morphFaces[i].To),
			),
		}
		n.faces.Each(func(_ Side, face *Element) {
			c.AddChild(face)
			layout.Bind(face, Match(n.constraint))
		})
		g.morphing = append(g.morphing, bind(n))
	}
	for i, geo := range exiting {
		g.exiting = append(g.exiting, bind(&Node{
			Kind:       NodeExiting,
			Name:       geo.key,
			Side:       SideFrom,
			content:    newReplicaElement(geo.key, exitFaces[i]),
			constraint: Pin(geo.start),
			start:      geo.start,
			end:        &exiting[i].end,
			Opacity:    NewTransform(1.0, 0.0),
		}))
	}
	for i, geo := range entering {
		g.entering = append(g.entering, bind(&Node{
			Kind:       NodeEntering,
			Name:       geo.key,
			Side:       SideTo,
			content:    newReplicaElement(geo.key, enterFaces[i]),
			constraint: Pin(geo.start),
			start:      geo.start,
			end:        &entering[i].end,
			Opacity:    NewTransform(0.0, 1.0),
		}))
	}
	return g, nil
}

// singletonGeometry positions exiting (SideFrom) or entering (SideTo)
// elements. Exiting elements start where they are and move along f;
// entering elements end where they are and arrive along f.
func singletonGeometry(els []NamedElement, stage *Element, f Flow, side Side) ([]leafGeometry, error) {
	out := make([]leafGeometry, 0, len(els))
	for _, e := range els {
		p, err := e.Element.PlacementIn(stage)
		if err != nil {
			return nil, err
		}
		geo := leafGeometry{key: e.Key, start: p, end: p}
		if side == SideFrom {
			geo.end = NewPlacement(p.Center().Translate(f.Translation, false), p.Size())
		} else {
			geo.start = NewPlacement(p.Center().Translate(f.Translation, true), p.Size())
		}
		out = append(out, geo)
	}
	return out, nil
}

// renderBases snapshots both scene roots with every animated element hidden,
// restoring their visibility afterwards.
func renderBases(s *Scene, snap Snapshotter) (Pair[*Replica], error) {
	animated := s.AnimatedElements()
	hidden := make([]bool, len(animated))
	for i, el := range animated {
		hidden[i] = el.Hidden
		el.Hidden = true
	}
	defer func() {
		for i, el := range animated {
			el.Hidden = hidden[i]
		}
	}()

	var out Pair[*Replica]
	var err error
	out.From, err = snap.Render(s.Bases.From)
	if err == nil && out.From == nil {
		err = errors.New("no replica for base.from")
	}
	if err != nil {
		return out, err
	}
	out.To, err = snap.Render(s.Bases.To)
	if err == nil && out.To == nil {
		err = errors.New("no replica for base.to")
	}
	return out, err
}
