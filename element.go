package morph

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ElementKind distinguishes rendering behavior for an Element.
type ElementKind uint8

const (
	ElementContainer ElementKind = iota // group element; draws Fill when opaque
	ElementImage                        // draws its replica or Source image
	ElementEffect                       // blurs everything painted below it
	ElementShadow                       // draws a soft shadow of its own frame
)

func (k ElementKind) String() string {
	switch k {
	case ElementImage:
		return "image"
	case ElementEffect:
		return "effect"
	case ElementShadow:
		return "shadow"
	default:
		return "container"
	}
}

// ShadowStyle describes the drop shadow drawn by an ElementShadow.
type ShadowStyle struct {
	Color   Color
	Opacity float64
	Offset  Vector
	Radius  float64
}

// elementIDCounter is a plain counter (no atomic, the element tree is
// single-threaded).
var elementIDCounter uint32

func nextElementID() uint32 {
	elementIDCounter++
	return elementIDCounter
}

// Element is a visual element of a host scene and of the transient graph the
// engine composes on top of it. A single flat struct is used for all element
// kinds to avoid interface dispatch during traversal.
type Element struct {
	// Identity
	ID   uint32
	Name string
	Kind ElementKind

	// Hierarchy
	Parent   *Element
	children []*Element

	// Frame in the parent's coordinate space (origin top-left).
	X, Y          float64
	Width, Height float64

	// Group transform applied about Anchor (local coordinates). The layout
	// pass ignores it; rendering and point conversion honour it.
	Group     GroupTransform
	anchor    Vec2
	anchorSet bool

	// Visibility
	Alpha  float64
	Hidden bool

	// Clip restricts descendants to this element's frame.
	Clip         bool
	CornerRadius float64

	// Content
	Fill   Color
	Source image.Image
	Tint   Color

	replica *Replica

	// GPU copy of Source, rebuilt when Source changes.
	sourceImage *ebiten.Image
	sourceRef   image.Image

	// Effect fields (ElementEffect). BlurAmount is in [0, 1].
	BlurAmount float64
	BlurRadius int

	// Shadow fields (ElementShadow)
	Shadow *ShadowStyle

	// Metadata
	UserData any

	disposed bool
}

// elementDefaults sets the common default field values shared by all
// constructors.
func elementDefaults(e *Element) {
	e.ID = nextElementID()
	e.Alpha = 1
	e.Tint = ColorWhite
	e.Group = IdentityGroup
}

// NewContainer creates a container element with the given frame.
func NewContainer(name string, frame Rect) *Element {
	e := &Element{Name: name, Kind: ElementContainer}
	elementDefaults(e)
	e.SetFrame(frame)
	return e
}

// NewImage creates an element that displays src stretched to frame.
func NewImage(name string, src image.Image, frame Rect) *Element {
	e := &Element{Name: name, Kind: ElementImage, Source: src}
	elementDefaults(e)
	e.SetFrame(frame)
	return e
}

// newReplicaElement creates an image element that owns r.
func newReplicaElement(name string, r *Replica) *Element {
	e := &Element{Name: name, Kind: ElementImage, replica: r}
	elementDefaults(e)
	return e
}

// newEffectElement creates a blur element of the given pixel radius.
func newEffectElement(name string, radius int) *Element {
	e := &Element{Name: name, Kind: ElementEffect, BlurRadius: radius}
	elementDefaults(e)
	return e
}

// newShadowElement creates an element that draws style around its frame.
func newShadowElement(name string, style ShadowStyle) *Element {
	e := &Element{Name: name, Kind: ElementShadow, Shadow: &style}
	elementDefaults(e)
	return e
}

// Frame returns the element's frame in its parent's coordinate space.
func (e *Element) Frame() Rect {
	return Rect{e.X, e.Y, e.Width, e.Height}
}

// SetFrame sets the frame in the parent's coordinate space.
func (e *Element) SetFrame(r Rect) {
	e.X, e.Y = r.X, r.Y
	e.Width, e.Height = max(r.Width, 0), max(r.Height, 0)
}

// Bounds returns the element's own coordinate space: origin zero, frame size.
func (e *Element) Bounds() Rect {
	return Rect{0, 0, e.Width, e.Height}
}

// Anchor returns the point, in local coordinates, that the group transform
// scales about. Defaults to the center of the bounds.
func (e *Element) Anchor() Vec2 {
	if e.anchorSet {
		return e.anchor
	}
	return e.Bounds().Center()
}

// SetAnchor fixes the group transform anchor at p (local coordinates).
func (e *Element) SetAnchor(p Vec2) {
	e.anchor = p
	e.anchorSet = true
}

// Replica returns the engine-owned snapshot displayed by this element, or nil.
func (e *Element) Replica() *Replica {
	return e.replica
}

// image returns the ebiten image to draw for this element, or nil.
func (e *Element) image() *ebiten.Image {
	if e.replica != nil {
		return e.replica.Image()
	}
	if e.Source == nil {
		return nil
	}
	if eimg, ok := e.Source.(*ebiten.Image); ok {
		return eimg
	}
	if e.sourceImage == nil || e.sourceRef != e.Source {
		if e.sourceImage != nil {
			e.sourceImage.Deallocate()
		}
		e.sourceImage = ebiten.NewImageFromImage(e.Source)
		e.sourceRef = e.Source
	}
	return e.sourceImage
}

// --- Tree manipulation ---

// AddChild appends child to this element's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this element (cycle).
func (e *Element) AddChild(child *Element) {
	if child == nil {
		panic("morph: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(e, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, e) {
		panic("morph: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = e
	e.children = append(e.children, child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(e)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (e *Element) AddChildAt(child *Element, index int) {
	if child == nil {
		panic("morph: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(e, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, e) {
		panic("morph: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(e.children) {
		panic("morph: child index out of range")
	}
	child.Parent = e
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(e)
	}
}

// RemoveChild detaches child from this element.
// Panics if child.Parent != e.
func (e *Element) RemoveChild(child *Element) {
	if child.Parent != e {
		panic("morph: child's parent is not this element")
	}
	e.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this element from its parent.
// No-op if this element has no parent.
func (e *Element) RemoveFromParent() {
	if e.Parent == nil {
		return
	}
	e.Parent.RemoveChild(e)
}

// Children returns the child list in paint order (first is painted first).
// The returned slice MUST NOT be mutated by the caller.
func (e *Element) Children() []*Element {
	return e.children
}

// NumChildren returns the number of children.
func (e *Element) NumChildren() int {
	return len(e.children)
}

// ChildAt returns the child at the given index.
func (e *Element) ChildAt(index int) *Element {
	return e.children[index]
}

// IndexOf returns the position of child among e's children, or -1.
func (e *Element) IndexOf(child *Element) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Find returns the first descendant (depth-first, including e) named name.
func (e *Element) Find(name string) *Element {
	if e.Name == name {
		return e
	}
	for _, c := range e.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for e and every descendant in paint order. Returning false
// from fn skips that element's subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// IsDescendantOf reports whether ancestor is e or one of e's ancestors.
func (e *Element) IsDescendantOf(ancestor *Element) bool {
	return isAncestor(ancestor, e)
}

// --- Disposal ---

// Dispose removes this element from its parent, marks it as disposed,
// releases its replica and recursively disposes all descendants.
func (e *Element) Dispose() {
	if e.disposed {
		return
	}
	e.RemoveFromParent()
	e.dispose()
}

func (e *Element) dispose() {
	e.disposed = true
	e.ID = 0
	for _, child := range e.children {
		child.Parent = nil
		child.dispose()
	}
	e.children = nil
	e.Parent = nil
	if e.sourceImage != nil {
		e.sourceImage.Deallocate()
		e.sourceImage, e.sourceRef = nil, nil
	}
	if e.replica != nil {
		e.replica.Dispose()
		e.replica = nil
	}
	e.Source = nil
	e.Shadow = nil
	e.UserData = nil
}

// IsDisposed returns true if this element has been disposed.
func (e *Element) IsDisposed() bool {
	return e.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of (or equal to) el.
func isAncestor(candidate, el *Element) bool {
	for p := el; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from e.children without clearing
// child.Parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (e *Element) removeChildByPtr(child *Element) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}
