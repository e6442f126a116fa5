package engine

import (
	"testing"

	"github.com/inamate/canvasedit/internal/geom"
)

func TestFitViewport(t *testing.T) {
	tests := []struct {
		name       string
		widget     geom.Vec2
		ratio      float64
		wantScale  float64
		wantOffset geom.Vec2
	}{
		{"tall widget", geom.V(960, 1080), 1, 0.5, geom.V(0, 270)},
		{"wide widget", geom.V(1920, 540), 1, 0.5, geom.V(480, 0)},
		{"hidpi", geom.V(960, 540), 2, 1, geom.V(0, 0)},
		{"empty widget", geom.V(0, 0), 1, 1, geom.V(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FitViewport(geom.V(1920, 1080), tt.widget, tt.ratio)
			if v.Scale != tt.wantScale || !near(v.Offset, tt.wantOffset) {
				t.Errorf("FitViewport = %+v, want scale %v offset %v", v, tt.wantScale, tt.wantOffset)
			}
		})
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Scale: 0.75, PixelRatio: 1.5, Offset: geom.V(40, -12)}
	for _, p := range []geom.Vec2{{X: 0, Y: 0}, {X: 123.5, Y: 77}, {X: -20, Y: 640}} {
		if got := v.ToWidget(v.ToCanvas(p)); !near(got, p) {
			t.Errorf("round trip of %v = %v", p, got)
		}
	}
}

func TestCanvasUnits(t *testing.T) {
	v := FitViewport(geom.V(1920, 1080), geom.V(960, 1080), 1)
	if got := v.CanvasUnits(6); got != 12 {
		t.Errorf("CanvasUnits(6) = %v, want 12", got)
	}

	var zero Viewport
	if got := zero.CanvasUnits(6); got != 6 {
		t.Errorf("zero viewport CanvasUnits(6) = %v, want 6", got)
	}
	if got := zero.ToCanvas(geom.V(5, 7)); got != geom.V(5, 7) {
		t.Errorf("zero viewport ToCanvas = %v", got)
	}
}
