package engine

import (
	"math"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// MoveSelected adds offset (canvas units) to the position of every selected
// element. Unselected groups pass the offset on to their children after
// mapping it into the group's local space, so a child moves by offset on
// screen whatever the group's rotation or scale. Locked and non-video
// elements stay put. A zero offset changes nothing.
func MoveSelected(comp Composition, offset geom.Vec2) {
	if offset.IsZero() {
		return
	}

	type frame struct {
		items  []*scene.Element
		offset geom.Vec2
	}
	stack := []frame{{items: comp.Items(), offset: offset}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range f.items {
			if e.Locked() || e.Removed() || !e.HasVideo() {
				continue
			}
			if e.Selected() {
				e.SetPosition(e.Position().Add(f.offset))
				continue
			}
			if e.IsGroup() {
				local := e.DrawTransform().Linear().Invert().TransformVector(f.offset)
				stack = append(stack, frame{items: e.Children(), offset: local})
			}
		}
	}
}

// Nudge moves the selection by delta canvas units without snapping, with
// group extents recomputed once afterwards.
func Nudge(comp Composition, delta geom.Vec2) {
	groups := ancestorGroups(SelectedItems(comp))
	for _, g := range groups {
		comp.DeferGroupResizeBegin(g)
	}
	MoveSelected(comp, delta)
	for _, g := range groups {
		comp.DeferGroupResizeEnd(g)
	}
}

// CalculateStretchPos returns the point of the item-space box tl..br that
// the alignment anchors, per axis the tl edge, the br edge or the middle.
func CalculateStretchPos(align scene.Alignment, tl, br geom.Vec2) geom.Vec2 {
	var p geom.Vec2
	switch {
	case align&scene.AlignLeft != 0:
		p.X = tl.X
	case align&scene.AlignRight != 0:
		p.X = br.X
	default:
		p.X = (br.X-tl.X)*0.5 + tl.X
	}
	switch {
	case align&scene.AlignTop != 0:
		p.Y = tl.Y
	case align&scene.AlignBottom != 0:
		p.Y = br.Y
	default:
		p.Y = (br.Y-tl.Y)*0.5 + tl.Y
	}
	return p
}

// ClampAspect adjusts the box tl..br dragged by handle so that its aspect
// ratio matches base. Corner handles keep whichever axis grew more and move
// only the dragged corner. Side handles derive the other axis from the
// dragged one and resize it about its middle. The sign of each axis is kept
// so flipped boxes stay flipped.
func ClampAspect(tl, br geom.Vec2, handle Handle, base geom.Vec2) (geom.Vec2, geom.Vec2) {
	if base.X == 0 || base.Y == 0 {
		return tl, br
	}
	baseAspect := base.X / base.Y
	size := br.Sub(tl)
	sameSign := (size.X >= 0 && size.Y >= 0) || (size.X <= 0 && size.Y <= 0)

	fromY := func() {
		size.X = size.Y * baseAspect
		if !sameSign {
			size.X = -size.X
		}
	}
	fromX := func() {
		size.Y = size.X / baseAspect
		if !sameSign {
			size.Y = -size.Y
		}
	}

	horizontal := handle&(HandleLeft|HandleRight) != 0
	vertical := handle&(HandleTop|HandleBottom) != 0
	switch {
	case horizontal && vertical:
		if size.X/size.Y < baseAspect {
			fromY()
		} else {
			fromX()
		}
	case vertical:
		fromY()
	case horizontal:
		fromX()
	}

	size.X = math.Round(size.X)
	size.Y = math.Round(size.Y)

	switch {
	case handle&HandleLeft != 0:
		tl.X = br.X - size.X
	case handle&HandleRight != 0:
		br.X = tl.X + size.X
	default:
		mid := (tl.X + br.X) / 2
		tl.X, br.X = mid-size.X/2, mid+size.X/2
	}
	switch {
	case handle&HandleTop != 0:
		tl.Y = br.Y - size.Y
	case handle&HandleBottom != 0:
		br.Y = tl.Y + size.Y
	default:
		mid := (tl.Y + br.Y) / 2
		tl.Y, br.Y = mid-size.Y/2, mid+size.Y/2
	}
	return tl, br
}

const rotationSnapBand = 5.0

// SnapRotation applies the rotation snapping policy to a raw angle in
// degrees. Shift snaps to 15 degree steps and Ctrl disables snapping.
// Otherwise the angle sticks to start, then to the nearest multiple of 45,
// when within 5 degrees.
func SnapRotation(angle, start float64, mods Modifiers) float64 {
	switch {
	case mods.Has(ModShift):
		return math.Round(angle/15) * 15
	case mods.Has(ModCtrl):
		return angle
	}
	if math.Abs(angleDiff(angle, start)) < rotationSnapBand {
		return start
	}
	for c := -90.0; c <= 315; c += 45 {
		if math.Abs(angleDiff(angle, c)) < rotationSnapBand {
			return c
		}
	}
	return angle
}

// angleDiff returns a-b wrapped into [-180, 180].
func angleDiff(a, b float64) float64 {
	return math.Remainder(a-b, 360)
}

// HandleDrag is a resize, crop or rotate gesture on one element. Item space
// is fixed when the drag begins: its origin is the box's top-left corner and
// its axes follow the element's rotation, so the box spans (0,0) to the
// starting item size.
type HandleDrag struct {
	Element *scene.Element
	Handle  Handle

	parentToCanvas geom.Matrix2D
	canvasToParent geom.Matrix2D
	itemToParent   geom.Matrix2D
	parentToItem   geom.Matrix2D

	size      geom.Vec2
	startCrop scene.Crop
	startRot  float64

	rotatePoint geom.Vec2 // box centre, parent space
	offsetPoint geom.Vec2 // position relative to rotatePoint, unrotated
}

// BeginHandleDrag captures the state a handle gesture works from. parent
// maps the element's parent space to the canvas.
func BeginHandleDrag(e *scene.Element, handle Handle, parent geom.Matrix2D) *HandleDrag {
	itemToParent := geom.TranslateV(e.TopLeft()).Multiply(geom.RotateDegrees(e.Rotation()))
	center := e.BoxTransform().TransformPoint(geom.V(0.5, 0.5))
	return &HandleDrag{
		Element:        e,
		Handle:         handle,
		parentToCanvas: parent,
		canvasToParent: parent.Invert(),
		itemToParent:   itemToParent,
		parentToItem:   itemToParent.Invert(),
		size:           e.ItemSize(),
		startCrop:      e.Crop(),
		startRot:       e.Rotation(),
		rotatePoint:    center,
		offsetPoint:    geom.Rotate2D(e.Position().Sub(center), -geom.Radians(e.Rotation())),
	}
}

// Valid reports whether the target may still be edited.
func (d *HandleDrag) Valid() bool {
	return !d.Element.Removed() && !d.Element.Locked()
}

func (d *HandleDrag) toItem(p geom.Vec2) geom.Vec2 {
	return d.parentToItem.TransformPoint(d.canvasToParent.TransformPoint(p))
}

// Stretch resizes the element so the dragged edges follow p (canvas units).
// Without Ctrl the dragged corner snaps; Shift locks the aspect ratio of the
// cropped source. With a bounds type the bounds size changes, otherwise the
// scale. It returns false when the target has gone stale.
func (d *HandleDrag) Stretch(p geom.Vec2, mods Modifiers, snap *Snapper) bool {
	if !d.Valid() {
		return false
	}
	e := d.Element

	tl, br := geom.Vec2{}, d.size
	pos := d.toItem(p)
	if d.Handle&HandleLeft != 0 {
		tl.X = pos.X
	} else if d.Handle&HandleRight != 0 {
		br.X = pos.X
	}
	if d.Handle&HandleTop != 0 {
		tl.Y = pos.Y
	} else if d.Handle&HandleBottom != 0 {
		br.Y = pos.Y
	}

	if !mods.Has(ModCtrl) {
		tl, br = d.snapStretch(tl, br, snap)
	}

	base := e.CroppedSize()
	if base.X <= 0 || base.Y <= 0 {
		// Nothing to scale against; leave the transform alone.
		return true
	}
	if mods.Has(ModShift) {
		tl, br = ClampAspect(tl, br, d.Handle, base)
	}

	if e.BoundsType() != scene.BoundsNone {
		if tl.X > br.X {
			tl.X, br.X = br.X, tl.X
		}
		if tl.Y > br.Y {
			tl.Y, br.Y = br.Y, tl.Y
		}
		e.SetBoundsSize(br.Sub(tl))
	} else {
		e.SetScale(br.Sub(tl).Div(base))
	}

	e.SetPosition(d.itemToParent.TransformPoint(CalculateStretchPos(e.Alignment(), tl, br)))
	return true
}

// snapStretch shifts the dragged edges of tl..br by the snap correction of
// the dragged corner, or of the dragged edge for a side handle.
func (d *HandleDrag) snapStretch(tl, br geom.Vec2, snap *Snapper) (geom.Vec2, geom.Vec2) {
	if snap == nil {
		return tl, br
	}

	xs := []float64{tl.X, br.X}
	switch {
	case d.Handle&HandleLeft != 0:
		xs = xs[:1]
	case d.Handle&HandleRight != 0:
		xs = xs[1:]
	}
	ys := []float64{tl.Y, br.Y}
	switch {
	case d.Handle&HandleTop != 0:
		ys = ys[:1]
	case d.Handle&HandleBottom != 0:
		ys = ys[1:]
	}

	toCanvas := d.parentToCanvas.Multiply(d.itemToParent)
	var pts []geom.Vec2
	for _, x := range xs {
		for _, y := range ys {
			pts = append(pts, toCanvas.TransformPoint(geom.V(x, y)))
		}
	}
	b := geom.BoundsOf(pts...)
	off := snap.Offset(b.Min(), b.Max())
	if off.IsZero() {
		return tl, br
	}
	off = toCanvas.Invert().TransformVector(off)

	if d.Handle&HandleLeft != 0 {
		tl.X += off.X
	} else if d.Handle&HandleRight != 0 {
		br.X += off.X
	}
	if d.Handle&HandleTop != 0 {
		tl.Y += off.Y
	} else if d.Handle&HandleBottom != 0 {
		br.Y += off.Y
	}
	return tl, br
}

// Crop moves the dragged edges to p by changing crop insets instead of
// scale, so the content stays where it is on screen. The cursor is kept
// between the fully uncropped edges and MinVisibleSpan source pixels from
// the opposite edge. It does nothing for elements with a bounds type, and
// returns false when the target has gone stale.
func (d *HandleDrag) Crop(p geom.Vec2) bool {
	if !d.Valid() {
		return false
	}
	e := d.Element
	scale := e.Scale()
	if e.BoundsType() != scene.BoundsNone || scale.X == 0 || scale.Y == 0 {
		return true
	}

	c := d.startCrop
	size := d.size
	maxTL := geom.V(-float64(c.Left)*scale.X, -float64(c.Top)*scale.Y)
	maxBR := geom.V(size.X+float64(c.Right)*scale.X, size.Y+float64(c.Bottom)*scale.Y)

	pos := d.toItem(p)
	pos.X = clampSpan(pos.X, maxTL.X, maxBR.X)
	pos.Y = clampSpan(pos.Y, maxTL.Y, maxBR.Y)

	span := float64(scene.MinVisibleSpan)
	tl, br := geom.Vec2{}, size
	if d.Handle&HandleLeft != 0 {
		tl.X = towards(pos.X, size.X-span*scale.X, scale.X)
		c.Left += int(math.Round(tl.X / scale.X))
	} else if d.Handle&HandleRight != 0 {
		br.X = awayFrom(pos.X, span*scale.X, scale.X)
		c.Right += int(math.Round((size.X - br.X) / scale.X))
	}
	if d.Handle&HandleTop != 0 {
		tl.Y = towards(pos.Y, size.Y-span*scale.Y, scale.Y)
		c.Top += int(math.Round(tl.Y / scale.Y))
	} else if d.Handle&HandleBottom != 0 {
		br.Y = awayFrom(pos.Y, span*scale.Y, scale.Y)
		c.Bottom += int(math.Round((size.Y - br.Y) / scale.Y))
	}

	e.SetCrop(c)

	// Rebuild the box from the stored, whole-pixel crop.
	got := e.Crop()
	s := d.startCrop
	tl = geom.V(float64(got.Left-s.Left)*scale.X, float64(got.Top-s.Top)*scale.Y)
	br = geom.V(size.X-float64(got.Right-s.Right)*scale.X, size.Y-float64(got.Bottom-s.Bottom)*scale.Y)
	e.SetPosition(d.itemToParent.TransformPoint(CalculateStretchPos(e.Alignment(), tl, br)))
	return true
}

// clampSpan limits v to the interval between a and b in either order.
func clampSpan(v, a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	return min(max(v, a), b)
}

// towards keeps v from passing limit in the direction of the item's
// positive axis, which a negative scale reverses.
func towards(v, limit, scale float64) float64 {
	if scale < 0 {
		return max(v, limit)
	}
	return min(v, limit)
}

// awayFrom keeps v from falling below limit along the item's axis.
func awayFrom(v, limit, scale float64) float64 {
	if scale < 0 {
		return min(v, limit)
	}
	return max(v, limit)
}

// Rotate turns the element about its box centre so that the rotation grip
// points at p (canvas units), with SnapRotation applied. It returns false
// when the target has gone stale.
func (d *HandleDrag) Rotate(p geom.Vec2, mods Modifiers) bool {
	if !d.Valid() {
		return false
	}
	local := d.canvasToParent.TransformPoint(p)
	angle := geom.Degrees(math.Atan2(local.Y-d.rotatePoint.Y, local.X-d.rotatePoint.X)) + 90
	angle = SnapRotation(angle, d.startRot, mods)

	e := d.Element
	e.SetRotation(angle)
	e.SetPosition(d.rotatePoint.Add(geom.Rotate2D(d.offsetPoint, geom.Radians(angle))))
	return true
}
