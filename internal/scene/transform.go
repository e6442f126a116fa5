package scene

import (
	"math"

	"github.com/inamate/canvasedit/internal/geom"
)

// CroppedSize is the source size minus the crop insets, never negative.
func (e *Element) CroppedSize() geom.Vec2 {
	return geom.Vec2{
		X: max(e.sourceSize.X-float64(e.crop.Left+e.crop.Right), 0),
		Y: max(e.sourceSize.Y-float64(e.crop.Top+e.crop.Bottom), 0),
	}
}

// ItemSize is the size of the element's box in its parent's space: the
// bounds size when a bounds type is set, otherwise the cropped source size
// times scale. A negative component means the element is flipped.
func (e *Element) ItemSize() geom.Vec2 {
	if e.boundsType != BoundsNone {
		return e.boundsSize
	}
	return e.CroppedSize().Mul(e.scale)
}

// alignOrigin is the anchor point inside a box of the given size.
func alignOrigin(a Alignment, size geom.Vec2) geom.Vec2 {
	fx, fy := a.Factor()
	return geom.Vec2{X: size.X * fx, Y: size.Y * fy}
}

// placement maps a box-local point (0..size) to parent space.
func (e *Element) placement(size geom.Vec2) geom.Matrix2D {
	origin := alignOrigin(e.alignment, size)
	return geom.TranslateV(e.position).
		Multiply(geom.RotateDegrees(e.rotation)).
		Multiply(geom.Translate(-origin.X, -origin.Y))
}

// BoxTransform maps the unit square onto the element's quad in its parent's
// space (the canvas for top-level elements).
func (e *Element) BoxTransform() geom.Matrix2D {
	size := e.ItemSize()
	return e.placement(size).Multiply(geom.Scale(size.X, size.Y))
}

// contentScale is the factor applied to cropped source pixels when drawing.
func (e *Element) contentScale() geom.Vec2 {
	if e.boundsType == BoundsNone {
		return e.scale
	}

	cs := e.CroppedSize()
	if cs.X <= 0 || cs.Y <= 0 {
		return geom.Vec2{}
	}
	sx := e.boundsSize.X / cs.X
	sy := e.boundsSize.Y / cs.Y

	var s geom.Vec2
	switch e.boundsType {
	case BoundsStretch:
		s = geom.V(sx, sy)
	case BoundsScaleInner:
		m := min(sx, sy)
		s = geom.V(m, m)
	case BoundsScaleOuter:
		m := max(sx, sy)
		s = geom.V(m, m)
	case BoundsScaleToWidth:
		s = geom.V(sx, sx)
	case BoundsScaleToHeight:
		s = geom.V(sy, sy)
	case BoundsMaxOnly:
		if cs.X > e.boundsSize.X || cs.Y > e.boundsSize.Y {
			m := min(sx, sy)
			s = geom.V(m, m)
		} else {
			s = geom.V(1, 1)
		}
	default:
		s = geom.V(sx, sy)
	}

	// Negative scale still flips content inside its bounds.
	if e.scale.X < 0 {
		s.X = -s.X
	}
	if e.scale.Y < 0 {
		s.Y = -s.Y
	}
	return s
}

// DrawTransform maps source pixel coordinates (before crop) to the parent's
// space. Cropped-away pixels land outside the box; for groups it maps the
// group's local space, in which its children are laid out.
func (e *Element) DrawTransform() geom.Matrix2D {
	size := e.ItemSize()
	m := e.placement(size)
	s := e.contentScale()

	if e.boundsType != BoundsNone {
		// Align the fitted content inside the bounds box.
		content := e.CroppedSize().Mul(s.Abs())
		fx, fy := e.alignment.Factor()
		inner := geom.Vec2{
			X: (size.X - content.X) * fx,
			Y: (size.Y - content.Y) * fy,
		}
		if s.X < 0 {
			inner.X += content.X
		}
		if s.Y < 0 {
			inner.Y += content.Y
		}
		m = m.Multiply(geom.TranslateV(inner))
	}

	return m.Multiply(geom.Scale(s.X, s.Y)).
		Multiply(geom.Translate(-float64(e.crop.Left), -float64(e.crop.Top)))
}

// TopLeft returns where the box's (0,0) corner sits in the parent's space.
func (e *Element) TopLeft() geom.Vec2 {
	return e.BoxTransform().TransformPoint(geom.Vec2{})
}

// SetTopLeft moves the element so that its box's (0,0) corner lands on tl
// in the parent's space, honouring the current alignment and rotation.
func (e *Element) SetTopLeft(tl geom.Vec2) {
	origin := alignOrigin(e.alignment, e.ItemSize())
	e.SetPosition(tl.Add(geom.Rotate2D(origin, geom.Radians(e.rotation))))
}

// childExtent is the bounding box of a group's children in local space.
func childExtent(g *Element) geom.Rect {
	var pts []geom.Vec2
	for _, c := range g.children {
		q := geom.Quad(c.BoxTransform())
		pts = append(pts, q[:]...)
	}
	return geom.BoundsOf(pts...)
}

// nearlyEqual compares two vectors with a tolerance suited to canvas units.
func nearlyEqual(a, b geom.Vec2) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}
