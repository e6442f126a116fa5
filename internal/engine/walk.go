package engine

import (
	"iter"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// Composition is the element store the engine edits. *scene.Store
// implements it.
type Composition interface {
	// Items returns the top-level elements bottom to top.
	Items() []*scene.Element
	// Canvas returns the canvas size in canvas units.
	Canvas() geom.Vec2
	DeferGroupResizeBegin(g *scene.Element)
	DeferGroupResizeEnd(g *scene.Element)
}

// Visit is one element reached by Walk, with the transform from its
// parent's local space to the canvas.
type Visit struct {
	Element *scene.Element
	Parent  geom.Matrix2D
	Depth   int
}

// BoxTransform maps the unit square to the element's quad on the canvas.
func (v Visit) BoxTransform() geom.Matrix2D {
	return v.Parent.Multiply(v.Element.BoxTransform())
}

// DrawTransform maps the element's source (or group-local) space to the
// canvas.
func (v Visit) DrawTransform() geom.Matrix2D {
	return v.Parent.Multiply(v.Element.DrawTransform())
}

// Walk yields items front to back (topmost first). When descend reports
// true for a group, the group's children are yielded right after it, also
// front to back, before the next element below the group. A nil descend
// visits top-level elements only.
//
// Traversal uses an explicit stack, so nesting depth does not grow the
// call stack. Breaking out of the range loop stops the walk.
func Walk(items []*scene.Element, descend func(*scene.Element) bool) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		stack := make([]Visit, 0, len(items))
		for _, e := range items {
			stack = append(stack, Visit{Element: e, Parent: geom.Identity()})
		}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(v) {
				return
			}
			e := v.Element
			if !e.IsGroup() || descend == nil || !descend(e) {
				continue
			}
			local := v.DrawTransform()
			for _, c := range e.Children() {
				stack = append(stack, Visit{Element: c, Parent: local, Depth: v.Depth + 1})
			}
		}
	}
}

// descendAll walks into every group.
func descendAll(*scene.Element) bool { return true }

// descendUnselected walks into groups that are neither selected nor
// locked; a selected group acts as one unit.
func descendUnselected(g *scene.Element) bool {
	return !g.Selected() && !g.Locked()
}

// ParentTransform folds the draw transforms of e's ancestors, outermost
// first, into the map from e's parent space to the canvas.
func ParentTransform(e *scene.Element) geom.Matrix2D {
	var chain []*scene.Element
	for p := e.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	m := geom.Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Multiply(chain[i].DrawTransform())
	}
	return m
}

// ComposedTransform maps e's own draw space to the canvas. For a group this
// is the space its children are laid out in.
func ComposedTransform(e *scene.Element) geom.Matrix2D {
	return ParentTransform(e).Multiply(e.DrawTransform())
}

// ScreenBoxTransform maps the unit square to e's quad on the canvas.
func ScreenBoxTransform(e *scene.Element) geom.Matrix2D {
	return ParentTransform(e).Multiply(e.BoxTransform())
}

// TopLevel returns the outermost ancestor of e, or e itself.
func TopLevel(e *scene.Element) *scene.Element {
	for e.Parent() != nil {
		e = e.Parent()
	}
	return e
}

// ancestorGroups lists the distinct parent groups of els, nearest first.
func ancestorGroups(els []*scene.Element) []*scene.Element {
	var out []*scene.Element
	seen := make(map[*scene.Element]bool)
	for _, e := range els {
		for p := e.Parent(); p != nil; p = p.Parent() {
			if seen[p] {
				break
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// totalRotation sums the rotation of e and its ancestors in degrees.
func totalRotation(e *scene.Element) float64 {
	r := 0.0
	for cur := e; cur != nil; cur = cur.Parent() {
		r += cur.Rotation()
	}
	return r
}
