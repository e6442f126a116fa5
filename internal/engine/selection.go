package engine

import (
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// SelectOne deselects every element, nested ones included, and selects
// target. A nil target clears the selection.
func SelectOne(comp Composition, target *scene.Element) {
	for v := range Walk(comp.Items(), descendAll) {
		v.Element.SetSelected(v.Element == target)
	}
}

// ToggleSelect flips the selection state of target only.
func ToggleSelect(target *scene.Element) {
	if target == nil || target.Removed() {
		return
	}
	target.SetSelected(!target.Selected())
}

// SelectedItems returns every selected element, front to back.
func SelectedItems(comp Composition) []*scene.Element {
	var out []*scene.Element
	for v := range Walk(comp.Items(), descendAll) {
		if v.Element.Selected() {
			out = append(out, v.Element)
		}
	}
	return out
}

// SelectionSnapshot records the current selection so that a modifier drag
// can add to it rather than replace it.
func SelectionSnapshot(comp Composition) []*scene.Element {
	return SelectedItems(comp)
}

// SelectedIDs returns the ids of SelectedItems.
func SelectedIDs(comp Composition) []string {
	items := SelectedItems(comp)
	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID())
	}
	return ids
}

// SelectedBounds is the canvas-space bounding box of the elements a move
// would drag: selected, interactive elements, found through unselected
// groups. ok is false when there are none.
func SelectedBounds(comp Composition) (r geom.Rect, ok bool) {
	var pts []geom.Vec2
	for v := range Walk(comp.Items(), descendUnselected) {
		e := v.Element
		if !e.Selected() || !interactive(e) {
			continue
		}
		q := geom.Quad(v.BoxTransform())
		pts = append(pts, q[:]...)
	}
	if len(pts) == 0 {
		return geom.Rect{}, false
	}
	return geom.BoundsOf(pts...), true
}
