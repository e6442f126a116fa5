package geom

import "math"

// closeEpsilon is the tolerance for the inverse round-trip check in canvas units.
const closeEpsilon = 1e-3

// UnitCorners are the corners of the unit square in tl, tr, br, bl order.
var UnitCorners = [4]Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// unitEpsilon absorbs rounding when a corner is pulled back into the unit
// square.
const unitEpsilon = 1e-9

func closeTo(a, b Vec2) bool {
	return math.Abs(a.X-b.X) <= closeEpsilon && math.Abs(a.Y-b.Y) <= closeEpsilon
}

// TransformedContains reports whether p lies inside the quad that box maps
// the unit square onto. The point is pulled back through the inverse and
// pushed forward again; a mismatch means the transform is degenerate and
// nothing is contained.
func TransformedContains(box Matrix2D, p Vec2) bool {
	if !box.Invertible() {
		return false
	}
	local := box.Invert().TransformPoint(p)
	if local.X < -unitEpsilon || local.X > 1+unitEpsilon ||
		local.Y < -unitEpsilon || local.Y > 1+unitEpsilon {
		return false
	}
	return closeTo(box.TransformPoint(local), p)
}

// Degenerate reports whether any unit corner fails to survive a round trip
// through box and its inverse.
func Degenerate(box Matrix2D) bool {
	if !box.Invertible() {
		return true
	}
	inv := box.Invert()
	for _, c := range UnitCorners {
		if !closeTo(inv.TransformPoint(box.TransformPoint(c)), c) {
			return true
		}
	}
	return false
}

// Quad returns the four screen corners of box in tl, tr, br, bl order.
func Quad(box Matrix2D) [4]Vec2 {
	var q [4]Vec2
	for i, c := range UnitCorners {
		q[i] = box.TransformPoint(c)
	}
	return q
}

func orientation(a, b, c Vec2) int {
	v := (b.Y-a.Y)*(c.X-b.X) - (b.X-a.X)*(c.Y-b.Y)
	switch {
	case math.Abs(v) < 1e-12:
		return 0
	case v > 0:
		return 1
	default:
		return 2
	}
}

func onSegment(a, b, p Vec2) bool {
	return p.X <= max(a.X, b.X) && p.X >= min(a.X, b.X) &&
		p.Y <= max(a.Y, b.Y) && p.Y >= min(a.Y, b.Y)
}

// SegmentsIntersect reports whether segment p1-p2 touches segment p3-p4.
func SegmentsIntersect(p1, p2, p3, p4 Vec2) bool {
	o1 := orientation(p1, p2, p3)
	o2 := orientation(p1, p2, p4)
	o3 := orientation(p3, p4, p1)
	o4 := orientation(p3, p4, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear cases
	if o1 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if o2 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	if o3 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if o4 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	return false
}

// BoxIntersectsQuad reports whether the axis-aligned rectangle touches the
// quad of box: any corner, the center or an edge midpoint of the quad inside
// the rectangle, any quad edge crossing a rectangle edge, or the rectangle
// lying entirely inside the quad.
func BoxIntersectsQuad(box Matrix2D, minX, maxX, minY, maxY float64) bool {
	inside := func(p Vec2) bool {
		return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
	}

	probes := [...]Vec2{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
		{0.5, 0.5},
		{0.5, 0}, {1, 0.5}, {0.5, 1}, {0, 0.5},
	}
	for _, p := range probes {
		if inside(box.TransformPoint(p)) {
			return true
		}
	}

	quad := Quad(box)
	rect := [4]Vec2{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
	for i := range 4 {
		q1, q2 := quad[i], quad[(i+1)%4]
		for j := range 4 {
			if SegmentsIntersect(q1, q2, rect[j], rect[(j+1)%4]) {
				return true
			}
		}
	}

	return TransformedContains(box, rect[0])
}
