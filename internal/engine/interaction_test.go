package engine

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

func noSnap() Settings {
	s := DefaultSettings()
	s.Snap.Enabled = false
	return s
}

// twoRects lays out a at (100,100)-(300,300) and b at (350,150)-(450,250).
func twoRects() (*scene.Store, *scene.Element, *scene.Element) {
	a := rect("a", 100, 100, 200, 200)
	b := rect("b", 350, 150, 100, 100)
	return storeOf(a, b), a, b
}

func click(ia *Interaction, x, y float64, mods Modifiers) {
	ia.OnPointerDown(geom.V(x, y), mods)
	ia.OnPointerUp(geom.V(x, y), mods)
}

type countingComp struct {
	*scene.Store
	begins, ends int
}

func (c *countingComp) DeferGroupResizeBegin(g *scene.Element) {
	c.begins++
	c.Store.DeferGroupResizeBegin(g)
}

func (c *countingComp) DeferGroupResizeEnd(g *scene.Element) {
	c.ends++
	c.Store.DeferGroupResizeEnd(g)
}

func TestClickSelection(t *testing.T) {
	s, a, b := twoRects()
	ia := NewInteraction(s, noSnap())

	click(ia, 150, 150, 0)
	if got := selectedIDs(t, s); len(got) != 1 || !got["a"] {
		t.Fatalf("after click selected = %v, want a", got)
	}
	if ia.Mode() != Idle {
		t.Errorf("mode = %v, want idle", ia.Mode())
	}

	click(ia, 400, 200, ModCtrl)
	if !a.Selected() || !b.Selected() {
		t.Errorf("ctrl click should add b, selected = %v", selectedIDs(t, s))
	}
	click(ia, 400, 200, ModCtrl)
	if !a.Selected() || b.Selected() {
		t.Errorf("second ctrl click should remove b, selected = %v", selectedIDs(t, s))
	}

	click(ia, 1000, 1000, 0)
	if got := selectedIDs(t, s); len(got) != 0 {
		t.Errorf("click on empty canvas left %v selected", got)
	}
}

func TestClickCyclesStackedElements(t *testing.T) {
	bottom := rect("bottom", 0, 0, 200, 200)
	top := rect("top", 100, 100, 200, 200)
	s := storeOf(bottom, top)
	ia := NewInteraction(s, noSnap())

	want := []*scene.Element{top, bottom, top}
	for i, w := range want {
		click(ia, 150, 150, 0)
		if !w.Selected() || len(SelectedItems(s)) != 1 {
			t.Fatalf("click %d selected %v, want %s", i, selectedIDs(t, s), w.ID())
		}
	}
}

func TestDragThreshold(t *testing.T) {
	s, a, _ := twoRects()
	ia := NewInteraction(s, noSnap())

	ia.OnPointerDown(geom.V(150, 150), 0)
	if !ia.OnPointerMove(geom.V(151, 150), 0) {
		t.Error("move during press not consumed")
	}
	if ia.Mode() != MouseDown {
		t.Errorf("mode = %v, want mouse_down below threshold", ia.Mode())
	}
	ia.OnPointerUp(geom.V(151, 150), 0)
	if !a.Selected() || a.Position() != geom.V(100, 100) {
		t.Errorf("sub-threshold press should click: selected=%v pos=%v", a.Selected(), a.Position())
	}
}

func TestDragMovesElement(t *testing.T) {
	s, a, b := twoRects()
	ia := NewInteraction(s, noSnap())

	ia.OnPointerDown(geom.V(150, 150), 0)
	ia.OnPointerMove(geom.V(160, 150), 0)
	if ia.Mode() != Moving {
		t.Fatalf("mode = %v, want moving", ia.Mode())
	}
	if !a.Selected() {
		t.Error("drag on unselected element should select it first")
	}
	ia.OnPointerMove(geom.V(200, 170), 0)
	ia.OnPointerUp(geom.V(200, 170), 0)

	if got := a.Position(); !near(got, geom.V(150, 120)) {
		t.Errorf("a moved to %v, want {150 120}", got)
	}
	if got := b.Position(); got != geom.V(350, 150) {
		t.Errorf("b moved to %v", got)
	}
	if ia.Mode() != Idle {
		t.Errorf("mode = %v, want idle", ia.Mode())
	}
}

func TestDragSnapsToCanvasEdge(t *testing.T) {
	s, a, _ := twoRects()
	ia := NewInteraction(s, DefaultSettings())

	ia.OnPointerDown(geom.V(150, 150), 0)
	ia.OnPointerMove(geom.V(53, 150), 0)
	if got := a.Position(); !near(got, geom.V(0, 100)) {
		t.Fatalf("a at %v, want snapped to {0 100}", got)
	}

	ia.OnPointerMove(geom.V(55, 150), 0)
	if got := a.Position(); !near(got, geom.V(0, 100)) {
		t.Errorf("a at %v, want to stay snapped", got)
	}

	ia.OnPointerMove(geom.V(60, 150), ModCtrl)
	if got := a.Position(); !near(got, geom.V(10, 100)) {
		t.Errorf("a at %v, want unsnapped {10 100} with ctrl", got)
	}
	ia.OnPointerUp(geom.V(60, 150), ModCtrl)
}

func TestBoxSelect(t *testing.T) {
	tests := []struct {
		name    string
		before  []string
		to      geom.Vec2
		mods    Modifiers
		want    []string
		wantOff []string
	}{
		{"replace", []string{"b"}, geom.V(320, 320), 0, []string{"a"}, []string{"b"}},
		{"add both", nil, geom.V(450, 350), 0, []string{"a", "b"}, nil},
		{"shift adds", []string{"b"}, geom.V(320, 320), ModShift, []string{"a", "b"}, nil},
		{"alt subtracts", []string{"a", "b"}, geom.V(320, 320), ModAlt, []string{"b"}, []string{"a"}},
		{"ctrl toggles", []string{"a"}, geom.V(450, 350), ModCtrl, []string{"b"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := twoRects()
			for _, id := range tt.before {
				s.Find(id).SetSelected(true)
			}
			ia := NewInteraction(s, noSnap())

			ia.OnPointerDown(geom.V(50, 50), tt.mods)
			ia.OnPointerMove(tt.to, tt.mods)
			if ia.Mode() != BoxSelecting {
				t.Fatalf("mode = %v, want box_selecting", ia.Mode())
			}
			if o := ia.Overlay(); o.DragRect == nil {
				t.Error("overlay has no drag rectangle")
			}
			ia.OnPointerUp(tt.to, tt.mods)

			got := selectedIDs(t, s)
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("%s not selected, got %v", id, got)
				}
			}
			for _, id := range tt.wantOff {
				if got[id] {
					t.Errorf("%s selected, got %v", id, got)
				}
			}
		})
	}
}

func TestBoxSelectCandidatesAndLeave(t *testing.T) {
	s, _, _ := twoRects()
	ia := NewInteraction(s, noSnap())

	ia.OnPointerDown(geom.V(50, 50), 0)
	ia.OnPointerMove(geom.V(450, 350), 0)
	if got := ids(ia.BoxCandidates()); len(got) != 2 || !got["a"] || !got["b"] {
		t.Errorf("candidates = %v, want a and b", got)
	}
	if o := ia.Overlay(); len(o.BoxCandidates) != 2 {
		t.Errorf("overlay candidates = %d, want 2", len(o.BoxCandidates))
	}

	if !ia.OnPointerLeave() {
		t.Error("leave during gesture not reported")
	}
	if ia.Mode() != Idle {
		t.Errorf("mode = %v, want idle", ia.Mode())
	}
	if len(ia.BoxCandidates()) != 0 {
		t.Error("candidates kept after leave")
	}
	if got := selectedIDs(t, s); len(got) != 0 {
		t.Errorf("leave committed box selection: %v", got)
	}
}

func TestHandleGestures(t *testing.T) {
	t.Run("stretch", func(t *testing.T) {
		s, a, _ := twoRects()
		a.SetSelected(true)
		ia := NewInteraction(s, noSnap())

		ia.OnPointerDown(geom.V(300, 300), 0)
		ia.OnPointerMove(geom.V(400, 400), 0)
		if ia.Mode() != Stretching {
			t.Fatalf("mode = %v, want stretching", ia.Mode())
		}
		ia.OnPointerUp(geom.V(400, 400), 0)
		if !near(a.Scale(), geom.V(1.5, 1.5)) {
			t.Errorf("scale = %v, want {1.5 1.5}", a.Scale())
		}
		if !near(a.Position(), geom.V(100, 100)) {
			t.Errorf("position = %v, want {100 100}", a.Position())
		}
	})

	t.Run("crop", func(t *testing.T) {
		s, a, _ := twoRects()
		a.SetSelected(true)
		ia := NewInteraction(s, noSnap())

		ia.OnPointerDown(geom.V(300, 200), ModAlt)
		ia.OnPointerMove(geom.V(250, 200), ModAlt)
		if ia.Mode() != Cropping {
			t.Fatalf("mode = %v, want cropping", ia.Mode())
		}
		ia.OnPointerUp(geom.V(250, 200), ModAlt)
		if got := a.Crop(); got != (scene.Crop{Right: 50}) {
			t.Errorf("crop = %+v, want right 50", got)
		}
		if a.Scale() != geom.V(1, 1) {
			t.Errorf("crop changed scale to %v", a.Scale())
		}
		if !a.Selected() {
			t.Error("crop lost the selection")
		}
	})

	t.Run("rotate", func(t *testing.T) {
		s, a, _ := twoRects()
		a.SetSelected(true)
		ia := NewInteraction(s, noSnap())

		ia.OnPointerDown(geom.V(200, 70), 0)
		ia.OnPointerMove(geom.V(400, 200), 0)
		if ia.Mode() != Rotating {
			t.Fatalf("mode = %v, want rotating", ia.Mode())
		}
		ia.OnPointerUp(geom.V(400, 200), 0)
		if math.Abs(a.Rotation()-90) > 1e-9 {
			t.Errorf("rotation = %v, want 90", a.Rotation())
		}
	})
}

func TestGestureAbortsOnStaleTarget(t *testing.T) {
	t.Run("removed during stretch", func(t *testing.T) {
		s, a, _ := twoRects()
		a.SetSelected(true)
		ia := NewInteraction(s, noSnap())

		ia.OnPointerDown(geom.V(300, 300), 0)
		ia.OnPointerMove(geom.V(350, 350), 0)
		s.Remove(a)
		ia.OnPointerMove(geom.V(400, 400), 0)
		if ia.Mode() != Idle {
			t.Errorf("mode = %v, want idle", ia.Mode())
		}
	})

	t.Run("locked during move", func(t *testing.T) {
		s, a, _ := twoRects()
		a.SetSelected(true)
		ia := NewInteraction(s, noSnap())

		ia.OnPointerDown(geom.V(150, 150), 0)
		ia.OnPointerMove(geom.V(160, 150), 0)
		a.SetLocked(true)
		ia.OnPointerMove(geom.V(200, 150), 0)
		if ia.Mode() != Idle {
			t.Errorf("mode = %v, want idle", ia.Mode())
		}
		if !near(a.Position(), geom.V(110, 100)) {
			t.Errorf("locked element moved to %v", a.Position())
		}
	})
}

func TestMoveDefersGroupResize(t *testing.T) {
	c1 := rect("c1", 0, 0, 100, 100)
	c2 := rect("c2", 200, 0, 100, 100)
	g := group("g", 500, 500, 0, c1, c2)
	comp := &countingComp{Store: storeOf(g)}
	c1.SetSelected(true)
	ia := NewInteraction(comp, noSnap())

	ia.OnPointerDown(geom.V(550, 550), 0)
	ia.OnPointerMove(geom.V(540, 550), 0)
	ia.OnPointerMove(geom.V(530, 550), 0)
	if comp.begins != 1 || comp.ends != 0 {
		t.Errorf("during drag begins=%d ends=%d, want 1 and 0", comp.begins, comp.ends)
	}
	ia.OnPointerUp(geom.V(530, 550), 0)
	if comp.ends != 1 {
		t.Errorf("after drag ends=%d, want 1", comp.ends)
	}

	if got := ScreenBoxTransform(c1).TransformPoint(geom.V(0, 0)); !near(got, geom.V(480, 500)) {
		t.Errorf("c1 on canvas at %v, want {480 500}", got)
	}
	if got := ScreenBoxTransform(c2).TransformPoint(geom.V(0, 0)); !near(got, geom.V(700, 500)) {
		t.Errorf("c2 on canvas at %v, want {700 500}", got)
	}
}

func TestHover(t *testing.T) {
	s, a, _ := twoRects()
	ia := NewInteraction(s, noSnap())

	if ia.OnPointerMove(geom.V(150, 150), 0) {
		t.Error("idle move reported as consumed")
	}
	if got := ia.Hovered(); len(got) != 1 || got[0] != a {
		t.Errorf("hovered = %v, want a", ids(got))
	}
	if o := ia.Overlay(); len(o.Hovered) != 1 || o.Hovered[0].ID != "a" {
		t.Errorf("overlay hovered = %+v", o.Hovered)
	}

	a.SetSelected(true)
	ia.Refresh()
	if o := ia.Overlay(); len(o.Hovered) != 0 {
		t.Error("selected element drawn as hovered")
	}

	ia.OnPointerMove(geom.V(1000, 1000), 0)
	if len(ia.Hovered()) != 0 {
		t.Error("hover kept over empty canvas")
	}
}

func TestNudgeIgnoredDuringGesture(t *testing.T) {
	s, a, _ := twoRects()
	a.SetSelected(true)
	ia := NewInteraction(s, noSnap())

	if !ia.Nudge(geom.V(1, 0)) || a.Position() != geom.V(101, 100) {
		t.Fatalf("nudge: position = %v, want {101 100}", a.Position())
	}

	ia.OnPointerDown(geom.V(150, 150), 0)
	if ia.Nudge(geom.V(1, 0)) {
		t.Error("nudge accepted during gesture")
	}
	ia.OnPointerUp(geom.V(150, 150), 0)
}

func TestViewportMapsPointer(t *testing.T) {
	s, a, _ := twoRects()
	ia := NewInteraction(s, noSnap())
	ia.SetViewport(Viewport{Scale: 0.5, PixelRatio: 2, Offset: geom.V(100, 0)})

	// Widget (150,100) -> device (300,200) -> canvas (400,400).
	if got := ia.Viewport().ToCanvas(geom.V(150, 100)); !near(got, geom.V(400, 400)) {
		t.Fatalf("ToCanvas = %v, want {400 400}", got)
	}
	// Widget (100,60) lands on a at canvas (200,240).
	click(ia, 100, 60, 0)
	if !a.Selected() {
		t.Error("click through viewport missed a")
	}
}

// Run with -race: render-side readers poll while the input goroutine
// drives a box selection.
func TestOverlayReadersDuringBoxSelect(t *testing.T) {
	var items []*scene.Element
	for i := range 20 {
		items = append(items, rect(fmt.Sprintf("r%d", i), float64(i%5)*100, float64(i/5)*100, 80, 80))
	}
	s := storeOf(items...)
	ia := NewInteraction(s, noSnap())

	done := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				o := ia.Overlay()
				if o == nil {
					t.Error("nil overlay")
					return
				}
				if o.Mode == BoxSelecting && o.DragRect == nil {
					t.Error("box select overlay without drag rectangle")
				}
				for _, eo := range o.BoxCandidates {
					_ = eo.ID
				}
				for _, e := range ia.BoxCandidates() {
					_ = e.ID()
				}
				for _, e := range ia.Hovered() {
					_ = e.ID()
				}
			}
		}()
	}

	ia.OnPointerMove(geom.V(40, 40), 0)
	ia.OnPointerDown(geom.V(-10, -10), 0)
	for i := range 200 {
		d := float64(i) * 2.5
		ia.OnPointerMove(geom.V(d, d), 0)
	}
	if ia.Mode() != BoxSelecting {
		t.Errorf("mode = %v, want box_selecting", ia.Mode())
	}
	ia.OnPointerUp(geom.V(497.5, 497.5), 0)
	close(done)
	wg.Wait()

	if got := len(SelectedItems(s)); got != 20 {
		t.Errorf("selected %d elements, want 20", got)
	}
}
