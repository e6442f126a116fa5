package engine

import (
	"encoding/json"
	"errors"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// ErrBusy is returned by editing commands issued while a pointer gesture is
// in progress.
var ErrBusy = errors.New("gesture in progress")

// Editor owns a composition and the interaction over it, and answers
// queries with JSON. It is the surface the browser bridge and the session
// rooms drive. An Editor is not safe for concurrent use except for
// Overlay, which the render side may read at any time.
type Editor struct {
	store    *scene.Store
	ia       *Interaction
	settings Settings
	viewport Viewport

	// Elements changed since the last TakeChanged, in change order.
	changed   []*scene.Element
	changedAt map[*scene.Element]bool
}

// NewEditor creates an editor over an empty 1920x1080 composition.
func NewEditor(settings Settings) *Editor {
	e := &Editor{
		settings: settings,
		viewport: DefaultViewport(),
	}
	e.load(scene.NewStore(1920, 1080))
	return e
}

// --- Commands (input → engine) ---

// LoadDocument replaces the composition with one decoded from JSON.
func (e *Editor) LoadDocument(jsonData string) error {
	s, err := scene.Decode([]byte(jsonData))
	if err != nil {
		return err
	}
	e.load(s)
	return nil
}

// LoadSampleDocument replaces the composition with the built-in sample.
func (e *Editor) LoadSampleDocument() {
	e.load(scene.NewSampleStore())
}

// LoadStore replaces the composition with s.
func (e *Editor) LoadStore(s *scene.Store) {
	e.load(s)
}

func (e *Editor) load(s *scene.Store) {
	if e.ia != nil {
		e.ia.OnPointerLeave()
	}
	e.store = s
	e.changed = nil
	e.changedAt = make(map[*scene.Element]bool)
	s.OnChange(e.markChanged)

	e.ia = NewInteraction(s, e.settings)
	e.ia.SetViewport(e.viewport)
}

func (e *Editor) markChanged(el *scene.Element) {
	if e.changedAt[el] {
		return
	}
	e.changedAt[el] = true
	e.changed = append(e.changed, el)
}

// SetViewport sets how the canvas is placed in the widget.
func (e *Editor) SetViewport(v Viewport) {
	e.viewport = v
	e.ia.SetViewport(v)
}

// FitToWidget centres the canvas in a widget of the given logical size.
func (e *Editor) FitToWidget(width, height, pixelRatio float64) {
	e.SetViewport(FitViewport(e.store.Canvas(), geom.V(width, height), pixelRatio))
}

func (e *Editor) PointerDown(x, y float64, mods Modifiers) bool {
	return e.ia.OnPointerDown(geom.V(x, y), mods)
}

func (e *Editor) PointerMove(x, y float64, mods Modifiers) bool {
	return e.ia.OnPointerMove(geom.V(x, y), mods)
}

func (e *Editor) PointerUp(x, y float64, mods Modifiers) bool {
	return e.ia.OnPointerUp(geom.V(x, y), mods)
}

func (e *Editor) PointerLeave() bool {
	return e.ia.OnPointerLeave()
}

// Nudge moves the selection by (dx, dy) canvas units.
func (e *Editor) Nudge(dx, dy float64) bool {
	return e.ia.Nudge(geom.V(dx, dy))
}

// SetSelection selects exactly the elements with the given ids.
func (e *Editor) SetSelection(ids []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for v := range Walk(e.store.Items(), descendAll) {
		v.Element.SetSelected(want[v.Element.ID()])
	}
	e.ia.Refresh()
}

// GroupSelection wraps the selected elements in a new group, which becomes
// the selection. It does nothing during a gesture.
func (e *Editor) GroupSelection() (*scene.Element, error) {
	if e.ia.Mode() != Idle {
		return nil, ErrBusy
	}
	g, err := e.store.Group(SelectedItems(e.store)...)
	if err != nil {
		return nil, err
	}
	SelectOne(e.store, g)
	e.ia.Refresh()
	return g, nil
}

// UngroupSelection dissolves every selected group; its children become the
// selection.
func (e *Editor) UngroupSelection() error {
	if e.ia.Mode() != Idle {
		return ErrBusy
	}
	var freed []*scene.Element
	for _, el := range SelectedItems(e.store) {
		if !el.IsGroup() || el.Removed() {
			continue
		}
		kids, err := e.store.Ungroup(el)
		if err != nil {
			return err
		}
		freed = append(freed, kids...)
	}
	for _, el := range freed {
		el.SetSelected(true)
	}
	e.ia.Refresh()
	return nil
}

// --- Queries (engine → renderer) ---

func (e *Editor) Store() *scene.Store                { return e.store }
func (e *Editor) Interaction() *Interaction          { return e.ia }
func (e *Editor) Overlay() *Overlay                  { return e.ia.Overlay() }
func (e *Editor) Viewport() Viewport                 { return e.viewport }
func (e *Editor) Mode() Mode                         { return e.ia.Mode() }
func (e *Editor) SelectedElements() []*scene.Element { return SelectedItems(e.store) }

// TakeChanged returns the state of every element changed since the last
// call, and resets the change set.
func (e *Editor) TakeChanged() []scene.ElementNode {
	out := make([]scene.ElementNode, 0, len(e.changed))
	for _, el := range e.changed {
		if !el.Removed() {
			out = append(out, el.State())
		}
	}
	e.changed = nil
	clear(e.changedAt)
	return out
}

// Render returns the overlay draw commands as JSON.
func (e *Editor) Render() string {
	result, _ := DrawCommandsToJSON(CompileOverlayCommands(e.ia.Overlay()))
	return result
}

// GetOverlay returns the overlay snapshot as JSON.
func (e *Editor) GetOverlay() string {
	data, err := json.Marshal(e.ia.Overlay())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetSelection returns the selected element ids as JSON.
func (e *Editor) GetSelection() string {
	data, _ := json.Marshal(SelectedIDs(e.store))
	return string(data)
}

// GetDocument returns the whole composition as JSON.
func (e *Editor) GetDocument() string {
	data, err := json.Marshal(e.store.Document())
	if err != nil {
		return "{}"
	}
	return string(data)
}
