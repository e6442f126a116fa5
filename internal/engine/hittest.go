package engine

import (
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// interactive reports whether e can be hit, dragged or snapped to.
func interactive(e *scene.Element) bool {
	return !e.Locked() && e.Visible() && e.HasVideo() && !e.Removed()
}

// ItemAtPoint returns the topmost interactive top-level element whose quad
// contains p (canvas units), or nil.
//
// With selectBelow, a selected match does not end the scan: the next
// unselected match below it wins, and the selected one is returned only if
// there is none. Repeated clicks thereby cycle through stacked elements.
func ItemAtPoint(comp Composition, p geom.Vec2, selectBelow bool) *scene.Element {
	var fallback *scene.Element
	for v := range Walk(comp.Items(), nil) {
		e := v.Element
		if !interactive(e) || !geom.TransformedContains(v.BoxTransform(), p) {
			continue
		}
		if selectBelow && e.Selected() {
			if fallback == nil {
				fallback = e
			}
			continue
		}
		return e
	}
	return fallback
}

// SelectedAtPoint reports whether p lies on any selected element, looking
// into unselected groups for selected children.
func SelectedAtPoint(comp Composition, p geom.Vec2) bool {
	for v := range Walk(comp.Items(), descendUnselected) {
		e := v.Element
		if !e.Selected() || !interactive(e) {
			continue
		}
		if geom.TransformedContains(v.BoxTransform(), p) {
			return true
		}
	}
	return false
}

// ItemsInBox returns the top-level elements touched by the rectangle
// spanned by a and b, front to back.
//
// Groups are tested through their children, each against the same canvas
// rectangle with its composed transform; touching any descendant selects
// the whole group. An empty group is tested by its own quad. Locked,
// hidden, non-video and degenerate elements are skipped, and so are the
// children of locked or hidden groups.
func ItemsInBox(comp Composition, a, b geom.Vec2) []*scene.Element {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minY, maxY := min(a.Y, b.Y), max(a.Y, b.Y)

	descend := func(g *scene.Element) bool {
		return interactive(g) && len(g.Children()) > 0
	}

	var out []*scene.Element
	seen := make(map[*scene.Element]bool)
	for v := range Walk(comp.Items(), descend) {
		e := v.Element
		if !interactive(e) || (e.IsGroup() && len(e.Children()) > 0) {
			continue
		}
		root := TopLevel(e)
		if seen[root] {
			continue
		}
		box := v.BoxTransform()
		if geom.Degenerate(box) {
			continue
		}
		if geom.BoxIntersectsQuad(box, minX, maxX, minY, maxY) {
			seen[root] = true
			out = append(out, root)
		}
	}
	return out
}
