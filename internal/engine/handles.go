package engine

import (
	"fmt"
	"strings"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// Handle identifies a grip on an element's box. Box handles combine edge
// bits: HandleTopLeft is HandleTop|HandleLeft, HandleLeft alone is the
// middle of the left edge.
type Handle uint32

const (
	HandleLeft Handle = 1 << iota
	HandleRight
	HandleTop
	HandleBottom
	HandleRotate

	HandleNone        Handle = 0
	HandleTopLeft            = HandleTop | HandleLeft
	HandleTopRight           = HandleTop | HandleRight
	HandleBottomLeft         = HandleBottom | HandleLeft
	HandleBottomRight        = HandleBottom | HandleRight
)

// BoxHandles are the eight resize grips.
var BoxHandles = [...]Handle{
	HandleTopLeft, HandleTop, HandleTopRight,
	HandleLeft, HandleRight,
	HandleBottomLeft, HandleBottom, HandleBottomRight,
}

func (h Handle) String() string {
	switch h {
	case HandleNone:
		return "none"
	case HandleRotate:
		return "rotate"
	}
	var parts []string
	if h&HandleTop != 0 {
		parts = append(parts, "top")
	}
	if h&HandleBottom != 0 {
		parts = append(parts, "bottom")
	}
	if h&HandleLeft != 0 {
		parts = append(parts, "left")
	}
	if h&HandleRight != 0 {
		parts = append(parts, "right")
	}
	return strings.Join(parts, "-")
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Handle) UnmarshalText(text []byte) error {
	s := string(text)
	switch s {
	case "", "none":
		*h = HandleNone
		return nil
	case "rotate":
		*h = HandleRotate
		return nil
	}
	var out Handle
	for _, part := range strings.Split(s, "-") {
		switch part {
		case "top":
			out |= HandleTop
		case "bottom":
			out |= HandleBottom
		case "left":
			out |= HandleLeft
		case "right":
			out |= HandleRight
		default:
			return fmt.Errorf("unknown handle %q", s)
		}
	}
	*h = out
	return nil
}

// Unit returns where a box handle sits on the unit square.
func (h Handle) Unit() geom.Vec2 {
	u := geom.V(0.5, 0.5)
	switch {
	case h&HandleLeft != 0:
		u.X = 0
	case h&HandleRight != 0:
		u.X = 1
	}
	switch {
	case h&HandleTop != 0:
		u.Y = 0
	case h&HandleBottom != 0:
		u.Y = 1
	}
	return u
}

// RotateHandlePosition places the rotation grip at distance d outside the
// middle of the box's top edge, perpendicular to it.
func RotateHandlePosition(box geom.Matrix2D, d float64) (geom.Vec2, bool) {
	axis := box.YAxis()
	l := axis.Len()
	if l == 0 {
		return geom.Vec2{}, false
	}
	top := box.TransformPoint(geom.V(0.5, 0))
	return top.Sub(axis.Scale(d / l)), true
}

// HandleHit is the grip found under the pointer.
type HandleHit struct {
	Element  *scene.Element
	Handle   Handle
	Parent   geom.Matrix2D // parent space to canvas
	Distance float64
}

// FindHandle returns the grip closest to p within radius. Only selected,
// interactive elements have grips; unselected groups are searched for
// selected children with the composed parent transform. All lengths are
// in canvas units.
func FindHandle(comp Composition, p geom.Vec2, radius, rotateOffset float64) (HandleHit, bool) {
	best := HandleHit{Distance: radius}
	found := false

	test := func(v Visit, h Handle, pos geom.Vec2) {
		if d := pos.Dist(p); d < best.Distance {
			best = HandleHit{Element: v.Element, Handle: h, Parent: v.Parent, Distance: d}
			found = true
		}
	}

	for v := range Walk(comp.Items(), descendUnselected) {
		e := v.Element
		if !e.Selected() || !interactive(e) {
			continue
		}
		box := v.BoxTransform()
		if geom.Degenerate(box) {
			continue
		}
		for _, h := range BoxHandles {
			test(v, h, box.TransformPoint(h.Unit()))
		}
		if pos, ok := RotateHandlePosition(box, rotateOffset); ok {
			test(v, HandleRotate, pos)
		}
	}
	return best, found
}
