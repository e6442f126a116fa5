package scene

import (
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/typeid"
)

// Props are the initial field values of a new element. Zero values mean a
// visible, video-bearing element with unit scale.
type Props struct {
	ID         string
	Name       string
	Position   geom.Vec2
	Scale      geom.Vec2
	Rotation   float64
	Crop       Crop
	BoundsType BoundsType
	BoundsSize geom.Vec2
	Alignment  Alignment
	SourceSize geom.Vec2
	Locked     bool
	Hidden     bool
	NoVideo    bool
	Selected   bool
	Collapsed  bool
}

// Element is a rectangular visual item on the canvas. Groups are elements
// that own children laid out in the group's local space.
//
// Elements are created and destroyed by the Store; the editor only mutates
// the transform fields and the selection flag through the setters below.
type Element struct {
	id   string
	name string

	position   geom.Vec2
	scale      geom.Vec2
	rotation   float64
	crop       Crop
	boundsType BoundsType
	boundsSize geom.Vec2
	alignment  Alignment
	sourceSize geom.Vec2

	locked    bool
	visible   bool
	hasVideo  bool
	selected  bool
	collapsed bool

	group    bool
	parent   *Element
	children []*Element

	removed bool
	store   *Store
}

// NewElement creates a detached element.
func NewElement(p Props) *Element {
	if p.ID == "" {
		p.ID = typeid.NewElementID()
	}
	if p.Scale.IsZero() {
		p.Scale = geom.V(1, 1)
	}
	return &Element{
		id:         p.ID,
		name:       p.Name,
		position:   p.Position,
		scale:      p.Scale,
		rotation:   p.Rotation,
		crop:       p.Crop,
		boundsType: p.BoundsType,
		boundsSize: p.BoundsSize,
		alignment:  p.Alignment,
		sourceSize: p.SourceSize,
		locked:     p.Locked,
		visible:    !p.Hidden,
		hasVideo:   !p.NoVideo,
		selected:   p.Selected,
		collapsed:  p.Collapsed,
	}
}

// NewGroup creates a detached group owning children, bottom to top. The
// children are laid out in the group's local space as given, with p's
// position placing that space. The group is then re-based so its source
// size is the extent of its children and the local origin is the extent's
// top-left; no child moves on the canvas.
func NewGroup(p Props, children ...*Element) *Element {
	if p.ID == "" {
		p.ID = typeid.NewGroupID()
	}
	g := NewElement(p)
	g.group = true
	for _, c := range children {
		c.parent = g
	}
	g.children = append(g.children, children...)
	if g.sourceSize.IsZero() {
		g.sourceSize = childExtent(g).Max().Max(geom.Vec2{})
	}
	g.fitChildren()
	return g
}

func (e *Element) ID() string   { return e.id }
func (e *Element) Name() string { return e.name }

func (e *Element) Position() geom.Vec2    { return e.position }
func (e *Element) Scale() geom.Vec2       { return e.scale }
func (e *Element) Rotation() float64      { return e.rotation }
func (e *Element) Crop() Crop             { return e.crop }
func (e *Element) BoundsType() BoundsType { return e.boundsType }
func (e *Element) BoundsSize() geom.Vec2  { return e.boundsSize }
func (e *Element) Alignment() Alignment   { return e.alignment }
func (e *Element) SourceSize() geom.Vec2  { return e.sourceSize }

func (e *Element) Locked() bool    { return e.locked }
func (e *Element) Visible() bool   { return e.visible }
func (e *Element) HasVideo() bool  { return e.hasVideo }
func (e *Element) Selected() bool  { return e.selected }
func (e *Element) Collapsed() bool { return e.collapsed }
func (e *Element) IsGroup() bool   { return e.group }

// Parent returns the group the element belongs to, or nil at top level.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the group's children bottom to top. Callers must not
// modify the returned slice.
func (e *Element) Children() []*Element { return e.children }

// Removed reports whether the store has dropped the element. Holders of a
// stale pointer must stop mutating it.
func (e *Element) Removed() bool { return e.removed }

func (e *Element) SetPosition(v geom.Vec2) {
	e.position = v
	e.changed()
}

func (e *Element) SetScale(v geom.Vec2) {
	e.scale = v
	e.changed()
}

func (e *Element) SetRotation(deg float64) {
	e.rotation = deg
	e.changed()
}

// SetCrop stores c clamped to non-negative insets that leave at least
// MinVisibleSpan source pixels on each axis. Excess is taken from the
// inset that changed.
func (e *Element) SetCrop(c Crop) {
	e.crop = ClampCropFrom(e.crop, c, e.sourceSize)
	e.changed()
}

func (e *Element) SetBoundsSize(v geom.Vec2) {
	e.boundsSize = v.Abs()
	e.changed()
}

func (e *Element) SetSelected(selected bool) {
	if e.selected == selected {
		return
	}
	e.selected = selected
	e.changed()
}

func (e *Element) SetLocked(locked bool) {
	e.locked = locked
	e.changed()
}

func (e *Element) SetVisible(visible bool) {
	e.visible = visible
	e.changed()
}

func (e *Element) changed() {
	if e.store != nil && e.store.onChange != nil {
		e.store.onChange(e)
	}
}

// MinVisibleSpan is the smallest number of source pixels cropping may leave.
const MinVisibleSpan = 2

// ClampCrop makes every inset non-negative and keeps the visible span of
// source at or above MinVisibleSpan. Excess is taken from the far side first.
func ClampCrop(c Crop, source geom.Vec2) Crop {
	return ClampCropFrom(Crop{}, c, source)
}

// ClampCropFrom clamps c like ClampCrop, treating prev as the crop before
// the edit. On an axis where only the left or top inset changed, the
// excess comes off that inset and the untouched far side is kept.
func ClampCropFrom(prev, c Crop, source geom.Vec2) Crop {
	c.Left = max(c.Left, 0)
	c.Top = max(c.Top, 0)
	c.Right = max(c.Right, 0)
	c.Bottom = max(c.Bottom, 0)

	if source.X <= 0 && source.Y <= 0 {
		return c
	}

	maxX := max(int(source.X)-MinVisibleSpan, 0)
	nearOnly := c.Left != prev.Left && c.Right == prev.Right
	c.Left, c.Right = clampInsets(c.Left, c.Right, maxX, nearOnly)
	maxY := max(int(source.Y)-MinVisibleSpan, 0)
	nearOnly = c.Top != prev.Top && c.Bottom == prev.Bottom
	c.Top, c.Bottom = clampInsets(c.Top, c.Bottom, maxY, nearOnly)
	return c
}

// clampInsets cuts near+far down to limit, starting with far unless
// nearFirst is set.
func clampInsets(near, far, limit int, nearFirst bool) (int, int) {
	over := near + far - limit
	if over <= 0 {
		return near, far
	}
	if nearFirst {
		cut := min(over, near)
		return near - cut, far - (over - cut)
	}
	cut := min(over, far)
	return near - (over - cut), far - cut
}
