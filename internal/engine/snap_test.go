package engine

import (
	"testing"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

func TestComputeSnapOffset(t *testing.T) {
	canvas := geom.V(1920, 1080)
	all := DefaultSnapConfig()
	noScreen := all
	noScreen.Screen = false

	tests := []struct {
		name     string
		tl, br   geom.Vec2
		siblings []geom.Rect
		cfg      SnapConfig
		want     geom.Vec2
	}{
		{
			name:     "sibling edge",
			tl:       geom.V(897, 100),
			br:       geom.V(997, 200),
			siblings: []geom.Rect{{X: 1000, Y: 100, Width: 100, Height: 100}},
			cfg:      all,
			want:     geom.V(3, 0),
		},
		{
			name:     "sibling out of range",
			tl:       geom.V(894, 100),
			br:       geom.V(994, 200),
			siblings: []geom.Rect{{X: 1000, Y: 100, Width: 100, Height: 100}},
			cfg:      all,
			want:     geom.V(0, 0),
		},
		{
			name: "left canvas edge",
			tl:   geom.V(3, 300),
			br:   geom.V(103, 400),
			cfg:  all,
			want: geom.V(-3, 0),
		},
		{
			name: "right canvas edge",
			tl:   geom.V(1815, 300),
			br:   geom.V(1917, 400),
			cfg:  all,
			want: geom.V(3, 0),
		},
		{
			name: "canvas centre",
			tl:   geom.V(858, 300),
			br:   geom.V(1058, 400),
			cfg:  all,
			want: geom.V(2, 0),
		},
		{
			name:     "canvas edge beats sibling",
			tl:       geom.V(2, 300),
			br:       geom.V(102, 400),
			siblings: []geom.Rect{{X: 104, Y: 300, Width: 100, Height: 100}},
			cfg:      all,
			want:     geom.V(-2, 0),
		},
		{
			name:     "sibling with screen snapping off",
			tl:       geom.V(3, 300),
			br:       geom.V(103, 400),
			siblings: []geom.Rect{{X: 5, Y: 300, Width: 100, Height: 100}},
			cfg:      noScreen,
			want:     geom.V(2, 0),
		},
		{
			name:     "sibling without overlap",
			tl:       geom.V(3, 300),
			br:       geom.V(103, 400),
			siblings: []geom.Rect{{X: 5, Y: 500, Width: 100, Height: 100}},
			cfg:      noScreen,
			want:     geom.V(0, 0),
		},
		{
			name: "disabled",
			tl:   geom.V(3, 3),
			br:   geom.V(103, 103),
			cfg:  SnapConfig{Screen: true, Center: true, Sources: true, Distance: 10},
			want: geom.V(0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSnapOffset(tt.tl, tt.br, tt.siblings, canvas, 5, tt.cfg)
			if !near(got, tt.want) {
				t.Errorf("ComputeSnapOffset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapperThresholdFollowsZoom(t *testing.T) {
	s := storeOf()
	if got := NewSnapper(s, DefaultSnapConfig(), 2).Threshold(); got != 5 {
		t.Errorf("threshold at 2x = %v, want 5", got)
	}
	if got := NewSnapper(s, DefaultSnapConfig(), 0).Threshold(); got != 10 {
		t.Errorf("threshold at invalid zoom = %v, want 10", got)
	}

	var nilSnapper *Snapper
	if got := nilSnapper.Offset(geom.V(1, 1), geom.V(2, 2)); !got.IsZero() {
		t.Errorf("nil snapper offset = %v", got)
	}
}

func TestSnapTargets(t *testing.T) {
	moving := rect("moving", 0, 0, 100, 100)
	pinned := rect("pinned", 200, 0, 100, 100)
	hidden := scene.NewElement(scene.Props{SourceSize: geom.V(100, 100), Hidden: true})
	audio := scene.NewElement(scene.Props{NoVideo: true})
	child := rect("child", 0, 0, 50, 50)
	g := group("g", 400, 400, 0, child)
	still := rect("still", 800, 0, 100, 50)
	s := storeOf(moving, pinned, hidden, audio, g, still)

	moving.SetSelected(true)
	pinned.SetSelected(true)
	pinned.SetLocked(true)
	child.SetSelected(true)

	got := SnapTargets(s)
	want := []geom.Rect{
		{X: 200, Y: 0, Width: 100, Height: 100},
		{X: 800, Y: 0, Width: 100, Height: 50},
	}
	if len(got) != len(want) {
		t.Fatalf("SnapTargets = %v, want %v", got, want)
	}
	for i := range want {
		if !near(got[i].Min(), want[i].Min()) || !near(got[i].Max(), want[i].Max()) {
			t.Errorf("target %d = %v, want %v", i, got[i], want[i])
		}
	}
}
