package engine

import (
	"math"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// Overlay is what the renderer needs to draw interaction feedback for one
// frame. All positions are canvas units. A published Overlay is never
// modified.
type Overlay struct {
	Mode   Mode      `json:"mode"`
	Canvas geom.Vec2 `json:"canvas"`
	// PixelSize is one logical widget pixel in canvas units.
	PixelSize    float64 `json:"pixelSize"`
	HandleRadius float64 `json:"handleRadius"`

	Selected      []ElementOverlay `json:"selected"`
	Hovered       []ElementOverlay `json:"hovered,omitempty"`
	BoxCandidates []ElementOverlay `json:"boxCandidates,omitempty"`
	DragRect      *geom.Rect       `json:"dragRect,omitempty"`
	Guides        []SpacingGuide   `json:"guides,omitempty"`
}

// ElementOverlay describes one outlined element.
type ElementOverlay struct {
	ID      string        `json:"id"`
	Quad    [4]geom.Vec2  `json:"quad"` // tl, tr, br, bl of the unit square
	Locked  bool          `json:"locked,omitempty"`
	Handles []HandlePoint `json:"handles,omitempty"`
	Rotate  *HandlePoint  `json:"rotate,omitempty"`
	Crop    CropSides     `json:"crop"`
}

type HandlePoint struct {
	Handle Handle    `json:"handle"`
	Pos    geom.Vec2 `json:"pos"`
}

// CropSides marks which sides of the unit square are cropped, so the
// renderer can stripe them.
type CropSides struct {
	Left   bool `json:"left,omitempty"`
	Top    bool `json:"top,omitempty"`
	Right  bool `json:"right,omitempty"`
	Bottom bool `json:"bottom,omitempty"`
}

// Side names a visual side of the canvas.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// SpacingGuide is a distance line from an element edge to the canvas edge.
type SpacingGuide struct {
	Side   Side      `json:"side"`
	From   geom.Vec2 `json:"from"`
	To     geom.Vec2 `json:"to"`
	Length float64   `json:"length"`
}

// BuildOverlay collects the selection outlines, handles, crop marks and,
// for a single selected element, spacing guides. A selected group is one
// unit: selected children inside it get no outline of their own, the same
// elements FindHandle searches.
func BuildOverlay(comp Composition, vp Viewport, settings Settings) *Overlay {
	o := &Overlay{
		Canvas:       comp.Canvas(),
		PixelSize:    vp.CanvasUnits(1),
		HandleRadius: vp.CanvasUnits(settings.HandleRadius),
	}
	rotateOffset := vp.CanvasUnits(settings.RotateHandleOffset)

	var single *scene.Element
	var singleBox geom.Matrix2D
	count := 0
	for v := range Walk(comp.Items(), descendUnselected) {
		e := v.Element
		if !e.Selected() || !e.Visible() || !e.HasVideo() {
			continue
		}
		box := v.BoxTransform()
		eo := elementOverlay(e, box, !e.Locked())
		if !e.Locked() {
			if pos, ok := RotateHandlePosition(box, rotateOffset); ok {
				eo.Rotate = &HandlePoint{Handle: HandleRotate, Pos: pos}
			}
		}
		o.Selected = append(o.Selected, eo)
		single, singleBox = e, box
		count++
	}

	if count == 1 && !geom.Degenerate(singleBox) {
		size := single.ItemSize()
		o.Guides = SpacingGuides(singleBox, totalRotation(single), size.X < 0, size.Y < 0, o.Canvas)
	}
	return o
}

func elementOverlay(e *scene.Element, box geom.Matrix2D, handles bool) ElementOverlay {
	c := e.Crop()
	eo := ElementOverlay{
		ID:     e.ID(),
		Quad:   geom.Quad(box),
		Locked: e.Locked(),
		Crop: CropSides{
			Left:   c.Left > 0,
			Top:    c.Top > 0,
			Right:  c.Right > 0,
			Bottom: c.Bottom > 0,
		},
	}
	if handles {
		eo.Handles = make([]HandlePoint, 0, len(BoxHandles))
		for _, h := range BoxHandles {
			eo.Handles = append(eo.Handles, HandlePoint{Handle: h, Pos: box.TransformPoint(h.Unit())})
		}
	}
	return eo
}

// SpacingGuides returns guides from the midpoints of the box's visual left,
// right, top and bottom edges to the matching canvas edges. Which box edge
// counts as which visual side changes by one quarter turn at 45, 135, 225
// and 315 degrees of rotation, and flips with a negative size on an axis.
// Guides of edges outside the canvas are omitted.
func SpacingGuides(box geom.Matrix2D, rotation float64, flipX, flipY bool, canvas geom.Vec2) []SpacingGuide {
	l := box.TransformPoint(geom.V(0, 0.5))
	r := box.TransformPoint(geom.V(1, 0.5))
	t := box.TransformPoint(geom.V(0.5, 0))
	b := box.TransformPoint(geom.V(0.5, 1))
	if flipX {
		l, r = r, l
	}
	if flipY {
		t, b = b, t
	}

	rot := math.Mod(rotation, 360)
	if rot < 0 {
		rot += 360
	}
	for i := 45.0; i <= 360; i += 90 {
		if rot >= i {
			l, b, r, t = b, r, t, l
		}
	}

	guides := []SpacingGuide{
		{Side: SideLeft, From: l, To: geom.V(0, l.Y), Length: l.X},
		{Side: SideRight, From: r, To: geom.V(canvas.X, r.Y), Length: canvas.X - r.X},
		{Side: SideTop, From: t, To: geom.V(t.X, 0), Length: t.Y},
		{Side: SideBottom, From: b, To: geom.V(b.X, canvas.Y), Length: canvas.Y - b.Y},
	}
	out := guides[:0]
	for _, g := range guides {
		if g.Length > 0 {
			out = append(out, g)
		}
	}
	return out
}
