package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

func TestSpacingGuides(t *testing.T) {
	canvas := geom.V(1920, 1080)
	tests := []struct {
		name         string
		box          geom.Matrix2D
		rotation     float64
		flipX, flipY bool
		want         map[Side]SpacingGuide
	}{
		{
			name: "axis aligned",
			box:  geom.Translate(100, 100).Multiply(geom.Scale(200, 200)),
			want: map[Side]SpacingGuide{
				SideLeft:   {From: geom.V(100, 200), Length: 100},
				SideRight:  {From: geom.V(300, 200), Length: 1620},
				SideTop:    {From: geom.V(200, 100), Length: 100},
				SideBottom: {From: geom.V(200, 300), Length: 780},
			},
		},
		{
			name:     "quarter turn",
			box:      geom.Translate(500, 500).Multiply(geom.RotateDegrees(90)).Multiply(geom.Scale(200, 100)),
			rotation: 90,
			want: map[Side]SpacingGuide{
				SideLeft:   {From: geom.V(400, 600), Length: 400},
				SideRight:  {From: geom.V(500, 600), Length: 1420},
				SideTop:    {From: geom.V(450, 500), Length: 500},
				SideBottom: {From: geom.V(450, 700), Length: 380},
			},
		},
		{
			name:  "flipped",
			box:   geom.Translate(300, 100).Multiply(geom.Scale(-200, 100)),
			flipX: true,
			want: map[Side]SpacingGuide{
				SideLeft:   {From: geom.V(100, 150), Length: 100},
				SideRight:  {From: geom.V(300, 150), Length: 1620},
				SideTop:    {From: geom.V(200, 100), Length: 100},
				SideBottom: {From: geom.V(200, 200), Length: 880},
			},
		},
		{
			name: "left edge off canvas",
			box:  geom.Translate(-300, 100).Multiply(geom.Scale(200, 100)),
			want: map[Side]SpacingGuide{
				SideRight:  {From: geom.V(-100, 150), Length: 2020},
				SideTop:    {From: geom.V(-200, 100), Length: 100},
				SideBottom: {From: geom.V(-200, 200), Length: 880},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpacingGuides(tt.box, tt.rotation, tt.flipX, tt.flipY, canvas)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d guides, want %d: %+v", len(got), len(tt.want), got)
			}
			for _, g := range got {
				w, ok := tt.want[g.Side]
				if !ok {
					t.Errorf("unexpected %s guide", g.Side)
					continue
				}
				if !near(g.From, w.From) || math.Abs(g.Length-w.Length) > eps {
					t.Errorf("%s guide from %v length %v, want from %v length %v",
						g.Side, g.From, g.Length, w.From, w.Length)
				}
			}
		})
	}
}

func TestBuildOverlay(t *testing.T) {
	a := rect("a", 100, 100, 200, 200)
	b := rect("b", 400, 100, 100, 100)
	s := storeOf(a, b)
	vp := DefaultViewport()

	a.SetSelected(true)
	o := BuildOverlay(s, vp, DefaultSettings())
	if len(o.Selected) != 1 {
		t.Fatalf("selected outlines = %d, want 1", len(o.Selected))
	}
	eo := o.Selected[0]
	if len(eo.Handles) != len(BoxHandles) {
		t.Errorf("handles = %d, want %d", len(eo.Handles), len(BoxHandles))
	}
	if eo.Rotate == nil || !near(eo.Rotate.Pos, geom.V(200, 70)) {
		t.Errorf("rotate grip = %+v, want at {200 70}", eo.Rotate)
	}
	if len(o.Guides) != 4 {
		t.Errorf("guides = %d, want 4 for a single selection", len(o.Guides))
	}

	b.SetSelected(true)
	b.SetLocked(true)
	o = BuildOverlay(s, vp, DefaultSettings())
	if len(o.Selected) != 2 {
		t.Fatalf("selected outlines = %d, want 2", len(o.Selected))
	}
	if len(o.Guides) != 0 {
		t.Errorf("guides drawn for a multi selection")
	}
	for _, eo := range o.Selected {
		if eo.ID == "b" && (!eo.Locked || eo.Handles != nil || eo.Rotate != nil) {
			t.Errorf("locked outline = %+v, want no grips", eo)
		}
	}
}

func TestBuildOverlayScalesGrips(t *testing.T) {
	s := storeOf(rect("a", 0, 0, 10, 10))
	o := BuildOverlay(s, Viewport{Scale: 0.5, PixelRatio: 1}, DefaultSettings())
	if o.PixelSize != 2 || o.HandleRadius != 12 {
		t.Errorf("pixel=%v radius=%v, want 2 and 12", o.PixelSize, o.HandleRadius)
	}
}

func TestCompileOverlayCommands(t *testing.T) {
	a := rect("a", 100, 100, 200, 200)
	s := storeOf(a)
	a.SetSelected(true)
	a.SetCrop(scene.Crop{Left: 10})

	cmds := CompileOverlayCommands(BuildOverlay(s, DefaultViewport(), DefaultSettings()))

	counts := map[string]int{}
	var crop, label *DrawCommand
	for i, c := range cmds {
		counts[c.Op]++
		if c.Op == "line" && c.Stroke == colorCrop && crop == nil {
			crop = &cmds[i]
		}
		if c.Op == "label" && label == nil {
			label = &cmds[i]
		}
	}
	if counts["quad"] != 1 {
		t.Errorf("quads = %d, want 1", counts["quad"])
	}
	if counts["handle"] != 9 {
		t.Errorf("handles = %d, want 9", counts["handle"])
	}
	if counts["label"] != 4 {
		t.Errorf("labels = %d, want 4", counts["label"])
	}
	if crop == nil || !crop.Dashed || crop.StrokeWidth != 3 {
		t.Errorf("crop mark = %+v, want dashed width 3", crop)
	}
	if label == nil || label.Text != "100px" {
		t.Errorf("first label = %+v, want 100px", label)
	}
	if cmds[0].Op != "quad" || cmds[len(cmds)-1].Op != "label" {
		t.Errorf("commands out of painter's order: first %s last %s", cmds[0].Op, cmds[len(cmds)-1].Op)
	}
}

func TestDrawCommandsToJSON(t *testing.T) {
	got, err := DrawCommandsToJSON(nil)
	if err != nil || got != "[]" {
		t.Errorf("DrawCommandsToJSON(nil) = %q, %v", got, err)
	}

	got, err = DrawCommandsToJSON([]DrawCommand{{Op: "handle", Points: []geom.Vec2{{X: 1, Y: 2}}, Radius: 6}})
	if err != nil {
		t.Fatal(err)
	}
	var back []map[string]any
	if err := json.Unmarshal([]byte(got), &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0]["op"] != "handle" || back[0]["radius"] != 6.0 {
		t.Errorf("decoded %v", back)
	}
}

func TestOverlayJSONRoundTrip(t *testing.T) {
	s, a, _ := twoRects()
	a.SetSelected(true)
	a.SetCrop(scene.Crop{Top: 5})
	ia := NewInteraction(s, noSnap())

	// The top crop leaves the bottom-right grip at (300,295).
	ia.OnPointerDown(geom.V(300, 295), 0)
	ia.OnPointerMove(geom.V(350, 345), 0)
	if ia.Mode() != Stretching {
		t.Fatalf("mode = %v, want stretching", ia.Mode())
	}

	want := ia.Overlay()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	var got Overlay
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if got.Mode != Stretching {
		t.Errorf("mode = %v, want stretching", got.Mode)
	}
	if len(got.Selected) != 1 {
		t.Fatalf("selected outlines = %d, want 1", len(got.Selected))
	}
	eo, weo := got.Selected[0], want.Selected[0]
	if len(eo.Handles) != len(weo.Handles) {
		t.Fatalf("handles = %d, want %d", len(eo.Handles), len(weo.Handles))
	}
	for i, h := range eo.Handles {
		if h.Handle != weo.Handles[i].Handle || !near(h.Pos, weo.Handles[i].Pos) {
			t.Errorf("handle %d = %+v, want %+v", i, h, weo.Handles[i])
		}
	}
	if eo.Rotate == nil || eo.Rotate.Handle != HandleRotate {
		t.Errorf("rotate grip = %+v", eo.Rotate)
	}
	if !eo.Crop.Top || eo.Crop.Left {
		t.Errorf("crop sides = %+v, want top only", eo.Crop)
	}
	ia.OnPointerUp(geom.V(350, 345), 0)
}

func TestHandleText(t *testing.T) {
	for _, h := range append(BoxHandles[:], HandleNone, HandleRotate) {
		text, err := h.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Handle
		if err := back.UnmarshalText(text); err != nil {
			t.Errorf("UnmarshalText(%q): %v", text, err)
			continue
		}
		if back != h {
			t.Errorf("%q decoded to %v, want %v", text, back, h)
		}
	}

	for _, bad := range []string{"middle", "top-middle", "-"} {
		var h Handle
		if err := h.UnmarshalText([]byte(bad)); err == nil {
			t.Errorf("UnmarshalText(%q) = %v, want error", bad, h)
		}
	}
}

func TestModeText(t *testing.T) {
	for m := Idle; m <= Cropping; m++ {
		text, _ := m.MarshalText()
		var back Mode
		if err := back.UnmarshalText(text); err != nil || back != m {
			t.Errorf("%q decoded to %v, %v; want %v", text, back, err, m)
		}
	}
	var m Mode
	if err := m.UnmarshalText([]byte("dragging")); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestBuildOverlaySelectedGroupIsOneUnit(t *testing.T) {
	c1 := rect("c1", 0, 0, 100, 100)
	c2 := rect("c2", 200, 0, 100, 100)
	g := group("g", 500, 500, 0, c1, c2)
	s := storeOf(g)
	g.SetSelected(true)
	c1.SetSelected(true)

	o := BuildOverlay(s, DefaultViewport(), DefaultSettings())
	if len(o.Selected) != 1 || o.Selected[0].ID != "g" {
		var got []string
		for _, eo := range o.Selected {
			got = append(got, eo.ID)
		}
		t.Fatalf("outlined %v, want only g", got)
	}

	p := o.Selected[0].Handles[0].Pos
	hit, ok := FindHandle(s, p, 1, 0)
	if !ok || hit.Element != g {
		t.Errorf("grip at %v found %+v, want a grip of g", p, hit)
	}
}
