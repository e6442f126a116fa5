package scene

import (
	"errors"
	"slices"

	"github.com/inamate/canvasedit/internal/geom"
)

var (
	ErrEmptyGroup    = errors.New("group needs at least one element")
	ErrMixedParents  = errors.New("elements do not share a parent")
	ErrNotGroup      = errors.New("element is not a group")
	ErrForeignMember = errors.New("element is not in this composition")
)

// Store is an in-memory composition: an ordered list of top-level elements
// on a fixed-size canvas. It owns element lifetime and group extents.
type Store struct {
	canvas   geom.Vec2
	items    []*Element // bottom to top
	deferred map[*Element]int
	onChange func(*Element)
}

// NewStore creates an empty composition with the given canvas size.
func NewStore(width, height float64) *Store {
	return &Store{
		canvas:   geom.V(width, height),
		deferred: make(map[*Element]int),
	}
}

// Canvas returns the canvas size in canvas units.
func (s *Store) Canvas() geom.Vec2 { return s.canvas }

// Items returns the top-level elements bottom to top. Callers must not
// modify the returned slice.
func (s *Store) Items() []*Element { return s.items }

// OnChange registers fn to be called after any element field changes.
func (s *Store) OnChange(fn func(*Element)) {
	s.onChange = fn
}

// Add appends e (and its children) on top of the top-level list.
func (s *Store) Add(e *Element) {
	s.attach(e)
	s.items = append(s.items, e)
}

// AddToGroup appends e on top of g's children.
func (s *Store) AddToGroup(g, e *Element) {
	if !g.group {
		return
	}
	s.attach(e)
	e.parent = g
	g.children = append(g.children, e)
	s.updateGroupExtent(g)
}

// attach adopts e's subtree and fits every group in it to its children,
// innermost first.
func (s *Store) attach(e *Element) {
	var groups []*Element
	stack := []*Element{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.store = s
		cur.removed = false
		if cur.group {
			groups = append(groups, cur)
		}
		stack = append(stack, cur.children...)
	}
	for i := len(groups) - 1; i >= 0; i-- {
		s.updateGroupExtent(groups[i])
	}
}

// Remove detaches e from the composition. e and its descendants are marked
// removed so that in-flight gestures holding them abort.
func (s *Store) Remove(e *Element) {
	if p := e.parent; p != nil {
		p.children = without(p.children, e)
		e.parent = nil
		s.updateGroupExtent(p)
	} else {
		s.items = without(s.items, e)
	}

	stack := []*Element{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.removed = true
		cur.selected = false
		stack = append(stack, cur.children...)
	}
}

// siblings returns the list p's children live in, or the top-level list.
func (s *Store) siblings(p *Element) []*Element {
	if p == nil {
		return s.items
	}
	return p.children
}

func (s *Store) setSiblings(p *Element, list []*Element) {
	if p == nil {
		s.items = list
	} else {
		p.children = list
	}
}

// Group wraps members in a new group placed where the topmost member was.
// Members must share a parent. No member moves on the canvas.
func (s *Store) Group(members ...*Element) (*Element, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}
	parent := members[0].parent
	in := make(map[*Element]bool, len(members))
	for _, m := range members {
		if m.store != s || m.removed {
			return nil, ErrForeignMember
		}
		if m.parent != parent {
			return nil, ErrMixedParents
		}
		in[m] = true
	}

	list := s.siblings(parent)
	top := -1
	var ordered []*Element
	for i, e := range list {
		if in[e] {
			ordered = append(ordered, e)
			top = i
		}
	}
	if len(ordered) != len(in) {
		return nil, ErrForeignMember
	}

	g := NewGroup(Props{Alignment: AlignTopLeft}, ordered...)
	g.store = s
	g.parent = parent

	out := make([]*Element, 0, len(list)-len(ordered)+1)
	for i, e := range list {
		if i == top {
			out = append(out, g)
		}
		if !in[e] {
			out = append(out, e)
		}
	}
	s.setSiblings(parent, out)
	s.updateGroupExtent(g)
	g.changed()
	return g, nil
}

// Ungroup dissolves g, moving its children into g's parent at g's place in
// the stacking order. Children keep their place on the canvas exactly when
// g's scale is uniform and positive.
func (s *Store) Ungroup(g *Element) ([]*Element, error) {
	if !g.group {
		return nil, ErrNotGroup
	}
	if g.store != s || g.removed {
		return nil, ErrForeignMember
	}

	m := g.DrawTransform()
	children := slices.Clone(g.children)
	for _, c := range children {
		c.position = m.TransformPoint(c.position)
		c.rotation += g.rotation
		c.scale = c.scale.Mul(g.scale)
		if c.boundsType != BoundsNone {
			c.boundsSize = c.boundsSize.Mul(g.scale.Abs())
		}
		c.parent = g.parent
	}

	list := s.siblings(g.parent)
	out := make([]*Element, 0, len(list)+len(children)-1)
	for _, e := range list {
		if e == g {
			out = append(out, children...)
			continue
		}
		out = append(out, e)
	}
	s.setSiblings(g.parent, out)

	g.children = nil
	g.removed = true
	g.selected = false
	for _, c := range children {
		c.changed()
	}
	return children, nil
}

func without(list []*Element, e *Element) []*Element {
	out := list[:0:0]
	for _, x := range list {
		if x != e {
			out = append(out, x)
		}
	}
	return out
}

// Find returns the element with the given id anywhere in the tree.
func (s *Store) Find(id string) *Element {
	stack := append([]*Element(nil), s.items...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.id == id {
			return cur
		}
		stack = append(stack, cur.children...)
	}
	return nil
}

// DeferGroupResizeBegin suspends extent recomputation for g until the
// matching DeferGroupResizeEnd. Calls nest.
func (s *Store) DeferGroupResizeBegin(g *Element) {
	if g == nil || !g.group {
		return
	}
	s.deferred[g]++
}

// DeferGroupResizeEnd closes a deferral opened by DeferGroupResizeBegin. The
// outermost call recomputes g's extent and then that of its ancestors.
func (s *Store) DeferGroupResizeEnd(g *Element) {
	if g == nil || s.deferred[g] == 0 {
		return
	}
	s.deferred[g]--
	if s.deferred[g] > 0 {
		return
	}
	delete(s.deferred, g)
	for cur := g; cur != nil; cur = cur.parent {
		if s.deferred[cur] > 0 {
			break
		}
		s.updateGroupExtent(cur)
	}
}

// updateGroupExtent re-bases g's children so that the local origin is the
// top-left of their extent, and moves g so that no child moves on screen.
func (s *Store) updateGroupExtent(g *Element) {
	if g.removed {
		return
	}
	g.fitChildren()
}

func (g *Element) fitChildren() {
	if g.boundsType != BoundsNone || len(g.children) == 0 {
		return
	}
	ext := childExtent(g)
	if ext.Width <= 0 || ext.Height <= 0 {
		return
	}

	origin := ext.Min()
	size := geom.V(ext.Width, ext.Height)
	if nearlyEqual(origin, geom.Vec2{}) && nearlyEqual(size, g.sourceSize) {
		return
	}

	tl := g.DrawTransform().TransformPoint(origin)
	for _, c := range g.children {
		c.position = c.position.Sub(origin)
		c.changed()
	}
	g.sourceSize = size
	g.crop = Crop{}
	g.SetTopLeft(tl)

	Logger().Debug("group extent updated", "group", g.id, "width", size.X, "height", size.Y)
}
