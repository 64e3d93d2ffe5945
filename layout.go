package morph

// Layout is a minimal constraint resolver. Each bound element is pinned by a
// ConstraintHandle to a placement in stage space; Resolve writes those
// placements into the elements' frames.
//
// Frames are resolved against the frames of the ancestors only. Group
// transforms are a rendering concern and do not move constrained children.
type Layout struct {
	bindings map[*Element]ConstraintHandle
}

// NewLayout returns an empty Layout.
func NewLayout() *Layout {
	return &Layout{bindings: make(map[*Element]ConstraintHandle)}
}

// Bind constrains e with h, replacing any previous binding.
func (l *Layout) Bind(e *Element, h ConstraintHandle) {
	if e == nil || h == nil {
		panic("morph: cannot bind nil element or constraint")
	}
	l.bindings[e] = h
}

// Unbind removes e's constraint, if any.
func (l *Layout) Unbind(e *Element) {
	delete(l.bindings, e)
}

// Handle returns the constraint bound to e, or nil.
func (l *Layout) Handle(e *Element) ConstraintHandle {
	return l.bindings[e]
}

// Len returns the number of bound elements.
func (l *Layout) Len() int {
	return len(l.bindings)
}

// Resolve lays out every element under stage that has an active constraint,
// parents before children. It returns the number of frames written. Bound
// elements outside the stage are ignored.
func (l *Layout) Resolve(stage *Element) int {
	if stage == nil || len(l.bindings) == 0 {
		return 0
	}
	n := 0
	stage.Walk(func(e *Element) bool {
		if e == stage {
			return true
		}
		h, ok := l.bindings[e]
		if !ok || !h.IsActive() {
			return true
		}
		origin, ok := e.Parent.layoutOrigin(stage)
		if !ok {
			return false
		}
		r := h.Placement().Rect()
		e.SetFrame(Rect{r.X - origin.X, r.Y - origin.Y, r.Width, r.Height})
		n++
		return true
	})
	return n
}
