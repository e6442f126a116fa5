package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

func testStore() *scene.Store {
	s := scene.NewStore(400, 300)
	s.Add(scene.NewElement(scene.Props{
		ID:         "a",
		Position:   geom.V(100, 100),
		SourceSize: geom.V(100, 100),
		Alignment:  scene.AlignTopLeft,
	}))
	s.Add(scene.NewElement(scene.Props{
		ID:         "hidden",
		Position:   geom.V(250, 100),
		SourceSize: geom.V(50, 50),
		Alignment:  scene.AlignTopLeft,
		Hidden:     true,
	}))
	return s
}

func pixel(r *Renderer, x, y int) color.RGBA {
	return color.RGBAModel.Convert(r.Image().At(x, y)).(color.RGBA)
}

func TestRenderComposition(t *testing.T) {
	r := NewRenderer(400, 300, engine.DefaultViewport())
	r.Render(testStore())

	if got := pixel(r, 150, 150); got != elementColors[0] {
		t.Errorf("inside element = %v, want %v", got, elementColors[0])
	}
	if got := pixel(r, 275, 125); got != canvasColor {
		t.Errorf("hidden element painted: %v", got)
	}
}

func TestRenderViewportOffset(t *testing.T) {
	vp := engine.Viewport{Scale: 0.5, PixelRatio: 1, Offset: geom.V(100, 0)}
	r := NewRenderer(400, 300, vp)
	r.Render(testStore())

	// Canvas (100,100)-(200,200) lands at (150,50)-(200,100).
	if got := pixel(r, 175, 75); got != elementColors[0] {
		t.Errorf("scaled element = %v, want %v", got, elementColors[0])
	}
	// Left of the canvas is background.
	if got := pixel(r, 50, 50); got != backgroundColor {
		t.Errorf("outside canvas = %v, want %v", got, backgroundColor)
	}
}

func TestDrawCommands(t *testing.T) {
	r := NewRenderer(400, 300, engine.DefaultViewport())
	r.Render(testStore())
	err := r.Draw([]engine.DrawCommand{
		{Op: "handle", Points: []geom.Vec2{geom.V(50, 50)}, Radius: 5, Fill: "#ff0000"},
		{Op: "rect", Points: []geom.Vec2{geom.V(300, 200), geom.V(350, 250)}, Fill: "#0f0"},
		{Op: "label", Points: []geom.Vec2{geom.V(20, 280)}, Text: "12px", Fill: "#ffffff"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := pixel(r, 50, 50); got != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("handle centre = %v", got)
	}
	if got := pixel(r, 325, 225); got != (color.RGBA{0, 0xff, 0, 0xff}) {
		t.Errorf("rect fill = %v", got)
	}
}

func TestDrawRejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  engine.DrawCommand
	}{
		{"unknown op", engine.DrawCommand{Op: "spline"}},
		{"short quad", engine.DrawCommand{Op: "quad", Points: []geom.Vec2{{}, {}}, Stroke: "#fff"}},
		{"bad colour", engine.DrawCommand{Op: "handle", Points: []geom.Vec2{{}}, Fill: "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(10, 10, engine.DefaultViewport())
			if err := r.Draw([]engine.DrawCommand{tt.cmd}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderOverlay(t *testing.T) {
	s := testStore()
	s.Find("a").SetSelected(true)
	overlay := engine.BuildOverlay(s, engine.DefaultViewport(), engine.DefaultSettings())

	r := NewRenderer(400, 300, engine.DefaultViewport())
	r.Render(s)
	if err := r.Draw(engine.CompileOverlayCommands(overlay)); err != nil {
		t.Fatal(err)
	}
	// Top-left resize handle.
	if got := pixel(r, 100, 100); got != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("corner handle = %v", got)
	}
}

func TestEncodePNG(t *testing.T) {
	r := NewRenderer(40, 30, engine.DefaultViewport())
	r.Render(scene.NewStore(40, 30))

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("bounds = %v", b)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff8000", color.NRGBA{0xff, 0x80, 0x00, 0xff}},
		{"#0f0", color.NRGBA{0, 0xff, 0, 0xff}},
		{"rgba(255,255,255,0.15)", color.NRGBA{0xff, 0xff, 0xff, 38}},
		{"rgba(10, 20, 30, 2)", color.NRGBA{10, 20, 30, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if c != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, c, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "red", "#12", "#gggggg", "rgba(1,2)"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}
