package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// Mode is the state of the pointer gesture.
type Mode int

const (
	Idle Mode = iota
	MouseDown
	Moving
	BoxSelecting
	Stretching
	Rotating
	Cropping
)

var modeNames = [...]string{
	Idle:         "idle",
	MouseDown:    "mouse_down",
	Moving:       "moving",
	BoxSelecting: "box_selecting",
	Stretching:   "stretching",
	Rotating:     "rotating",
	Cropping:     "cropping",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*m = Idle
		return nil
	}
	for i, name := range modeNames {
		if name == s {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", s)
}

// Modifiers is the set of keyboard modifiers held during a pointer event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in f is held.
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

// Any reports whether any modifier is held.
func (m Modifiers) Any() bool { return m != 0 }

// Interaction turns pointer events into selection changes and transforms.
//
// The On* methods must be called from a single goroutine, the input loop.
// Hovered, BoxCandidates and Overlay may be called from any goroutine,
// typically a render loop.
type Interaction struct {
	comp     Composition
	settings Settings
	viewport Viewport

	mode      Mode
	downAt    geom.Vec2 // widget pixels
	start     geom.Vec2 // canvas units
	current   geom.Vec2
	downMods  Modifiers
	moved     bool
	overItems bool // pointer went down on a selected element
	snapCfg   SnapConfig
	snapshot  []*scene.Element

	handle      HandleHit
	foundHandle bool
	cropping    bool
	drag        *HandleDrag

	snapper        *Snapper
	lastMoveOffset geom.Vec2
	deferred       []*scene.Element

	selectMu      sync.RWMutex
	hovered       []*scene.Element
	boxCandidates []*scene.Element

	overlay atomic.Pointer[Overlay]
}

// NewInteraction creates an idle state machine over comp.
func NewInteraction(comp Composition, settings Settings) *Interaction {
	ia := &Interaction{
		comp:     comp,
		settings: settings,
		viewport: DefaultViewport(),
	}
	ia.publish()
	return ia
}

// SetViewport updates the canvas placement used to map pointer positions.
func (ia *Interaction) SetViewport(v Viewport) {
	ia.viewport = v
	ia.publish()
}

func (ia *Interaction) Viewport() Viewport { return ia.viewport }

// SetSettings replaces the settings. A gesture in progress keeps the snap
// configuration it started with.
func (ia *Interaction) SetSettings(s Settings) {
	ia.settings = s
}

func (ia *Interaction) Settings() Settings { return ia.settings }

// Mode returns the current gesture state.
func (ia *Interaction) Mode() Mode { return ia.mode }

// Hovered returns the elements under the pointer while idle.
func (ia *Interaction) Hovered() []*scene.Element {
	ia.selectMu.RLock()
	defer ia.selectMu.RUnlock()
	return append([]*scene.Element(nil), ia.hovered...)
}

// BoxCandidates returns the elements the current box selection touches.
func (ia *Interaction) BoxCandidates() []*scene.Element {
	ia.selectMu.RLock()
	defer ia.selectMu.RUnlock()
	return append([]*scene.Element(nil), ia.boxCandidates...)
}

// Overlay returns the latest published overlay snapshot. The snapshot is
// immutable.
func (ia *Interaction) Overlay() *Overlay {
	return ia.overlay.Load()
}

// Refresh republishes the overlay after the composition changed outside of
// a pointer event.
func (ia *Interaction) Refresh() {
	ia.publish()
}

// --- Pointer events (widget pixels) ---

// OnPointerDown starts a gesture at p.
func (ia *Interaction) OnPointerDown(p geom.Vec2, mods Modifiers) bool {
	if ia.mode != Idle {
		ia.finish()
	}

	c := ia.viewport.ToCanvas(p)
	ia.mode = MouseDown
	ia.downAt = p
	ia.start = c
	ia.current = c
	ia.downMods = mods
	ia.moved = false
	ia.lastMoveOffset = geom.Vec2{}
	ia.snapCfg = ia.settings.Snap

	ia.snapshot = nil
	if mods.Any() {
		ia.snapshot = SelectionSnapshot(ia.comp)
	}

	radius := ia.viewport.CanvasUnits(ia.settings.HandleRadius)
	offset := ia.viewport.CanvasUnits(ia.settings.RotateHandleOffset)
	ia.handle, ia.foundHandle = FindHandle(ia.comp, c, radius, offset)
	ia.cropping = ia.foundHandle && mods.Has(ModAlt) &&
		ia.handle.Handle != HandleRotate &&
		ia.handle.Element.BoundsType() == scene.BoundsNone

	ia.overItems = SelectedAtPoint(ia.comp, c)

	Logger().Debug("pointer down",
		"x", c.X, "y", c.Y,
		"handle", ia.handle.Handle,
		"over_selection", ia.overItems,
	)
	ia.publish()
	return true
}

// OnPointerMove hovers while idle and drives the gesture otherwise. It
// reports whether a gesture consumed the event.
func (ia *Interaction) OnPointerMove(p geom.Vec2, mods Modifiers) bool {
	c := ia.viewport.ToCanvas(p)

	switch ia.mode {
	case Idle:
		ia.updateHover(c)
		ia.publish()
		return false
	case MouseDown:
		if p.Dist(ia.downAt) < ia.settings.DragThreshold {
			return true
		}
		ia.beginDrag()
	}

	ia.current = c
	switch ia.mode {
	case Moving:
		ia.moveTo(c, mods)
	case BoxSelecting:
		ia.setBoxCandidates(ItemsInBox(ia.comp, ia.start, c))
	case Stretching:
		if !ia.drag.Stretch(c, mods, ia.snapper) {
			ia.abort()
		}
	case Cropping:
		if !ia.drag.Crop(c) {
			ia.abort()
		}
	case Rotating:
		if !ia.drag.Rotate(c, mods) {
			ia.abort()
		}
	}

	ia.publish()
	return true
}

// OnPointerUp ends the gesture. A press that never moved past the drag
// threshold is a click at the press position; a box selection is merged
// into the selection according to mods.
func (ia *Interaction) OnPointerUp(p geom.Vec2, mods Modifiers) bool {
	if ia.mode == Idle {
		return false
	}
	c := ia.viewport.ToCanvas(p)

	if !ia.moved {
		ia.processClick(ia.start, mods)
	}
	if ia.mode == BoxSelecting {
		ia.commitBox(c, mods)
	}

	Logger().Debug("pointer up", "mode", ia.mode, "moved", ia.moved)
	ia.finish()
	ia.updateHover(c)
	ia.publish()
	return true
}

// OnPointerLeave ends any gesture without committing a box selection.
// Transforms already applied stay applied.
func (ia *Interaction) OnPointerLeave() bool {
	active := ia.mode != Idle
	if active {
		Logger().Debug("pointer left during gesture", "mode", ia.mode)
	}
	ia.finish()

	ia.selectMu.Lock()
	ia.hovered = nil
	ia.selectMu.Unlock()

	ia.publish()
	return active
}

// Nudge moves the selection by delta canvas units. It is ignored during a
// gesture.
func (ia *Interaction) Nudge(delta geom.Vec2) bool {
	if ia.mode != Idle || delta.IsZero() {
		return false
	}
	Nudge(ia.comp, delta)
	ia.publish()
	return true
}

// --- Gesture internals ---

// beginDrag picks the drag mode once the pointer passes the threshold.
func (ia *Interaction) beginDrag() {
	ia.moved = true

	if ia.foundHandle {
		h := ia.handle
		ia.drag = BeginHandleDrag(h.Element, h.Handle, h.Parent)
		switch {
		case h.Handle == HandleRotate:
			ia.mode = Rotating
		case ia.cropping:
			ia.mode = Cropping
		default:
			ia.mode = Stretching
		}
		ia.deferGroups([]*scene.Element{h.Element})
		ia.snapper = NewSnapper(ia.comp, ia.snapCfg, ia.viewport.Scale)
		Logger().Debug("handle drag", "mode", ia.mode, "handle", h.Handle, "element", h.Element.ID())
		return
	}

	if !ia.overItems {
		ia.processClick(ia.start, ia.downMods)
		ia.overItems = SelectedAtPoint(ia.comp, ia.start)
	}

	if ia.overItems {
		ia.mode = Moving
		ia.deferGroups(SelectedItems(ia.comp))
		ia.snapper = NewSnapper(ia.comp, ia.snapCfg, ia.viewport.Scale)
	} else {
		ia.mode = BoxSelecting
		SelectOne(ia.comp, nil)
	}
	Logger().Debug("drag", "mode", ia.mode)
}

func (ia *Interaction) moveTo(c geom.Vec2, mods Modifiers) {
	bounds, ok := SelectedBounds(ia.comp)
	if !ok {
		ia.abort()
		return
	}

	off := c.Sub(ia.start).Sub(ia.lastMoveOffset)
	if !mods.Has(ModCtrl) {
		off = off.Add(ia.snapper.Offset(bounds.Min().Add(off), bounds.Max().Add(off)))
	}
	ia.lastMoveOffset = ia.lastMoveOffset.Add(off)
	MoveSelected(ia.comp, off)
}

// processClick selects what lies under p. Ctrl toggles the topmost element,
// otherwise the click selects exactly one element, cycling below an
// already selected one.
func (ia *Interaction) processClick(p geom.Vec2, mods Modifiers) {
	if mods.Has(ModCtrl) {
		ToggleSelect(ItemAtPoint(ia.comp, p, false))
		return
	}
	SelectOne(ia.comp, ItemAtPoint(ia.comp, p, true))
}

func (ia *Interaction) commitBox(c geom.Vec2, mods Modifiers) {
	candidates := ItemsInBox(ia.comp, ia.start, c)

	if mods.Any() {
		for _, e := range ia.snapshot {
			if !e.Removed() {
				e.SetSelected(true)
			}
		}
	}
	for _, e := range candidates {
		switch {
		case mods.Has(ModAlt):
			e.SetSelected(false)
		case mods.Has(ModCtrl):
			e.SetSelected(!e.Selected())
		default:
			e.SetSelected(true)
		}
	}
}

func (ia *Interaction) deferGroups(els []*scene.Element) {
	for _, g := range ancestorGroups(els) {
		ia.comp.DeferGroupResizeBegin(g)
		ia.deferred = append(ia.deferred, g)
	}
}

// abort drops a gesture whose target went away.
func (ia *Interaction) abort() {
	Logger().Debug("gesture aborted: stale target", "mode", ia.mode)
	ia.finish()
}

// finish returns to Idle, closing any group-resize deferral.
func (ia *Interaction) finish() {
	for _, g := range ia.deferred {
		ia.comp.DeferGroupResizeEnd(g)
	}
	ia.deferred = nil

	ia.mode = Idle
	ia.moved = false
	ia.overItems = false
	ia.drag = nil
	ia.snapper = nil
	ia.snapshot = nil
	ia.foundHandle = false
	ia.handle = HandleHit{}
	ia.cropping = false
	ia.setBoxCandidates(nil)
}

func (ia *Interaction) updateHover(c geom.Vec2) {
	var hovered []*scene.Element
	if e := ItemAtPoint(ia.comp, c, false); e != nil {
		hovered = []*scene.Element{e}
	}
	ia.selectMu.Lock()
	ia.hovered = hovered
	ia.selectMu.Unlock()
}

func (ia *Interaction) setBoxCandidates(els []*scene.Element) {
	ia.selectMu.Lock()
	ia.boxCandidates = els
	ia.selectMu.Unlock()
}

func (ia *Interaction) publish() {
	o := BuildOverlay(ia.comp, ia.viewport, ia.settings)
	o.Mode = ia.mode
	for _, e := range ia.Hovered() {
		if !e.Removed() && !e.Selected() {
			o.Hovered = append(o.Hovered, elementOverlay(e, ScreenBoxTransform(e), false))
		}
	}
	if ia.mode == BoxSelecting {
		for _, e := range ia.BoxCandidates() {
			o.BoxCandidates = append(o.BoxCandidates, elementOverlay(e, ScreenBoxTransform(e), false))
		}
		r := geom.RectFromPoints(ia.start, ia.current)
		o.DragRect = &r
	}
	ia.overlay.Store(o)
}
