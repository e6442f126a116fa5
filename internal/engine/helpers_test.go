package engine

import (
	"math"
	"testing"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

const eps = 1e-6

func near(a, b geom.Vec2) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// rect creates a top-left anchored element with unit scale.
func rect(id string, x, y, w, h float64) *scene.Element {
	return scene.NewElement(scene.Props{
		ID:         id,
		SourceSize: geom.V(w, h),
		Position:   geom.V(x, y),
		Alignment:  scene.AlignTopLeft,
	})
}

func group(id string, x, y, rot float64, children ...*scene.Element) *scene.Element {
	return scene.NewGroup(scene.Props{
		ID:        id,
		Position:  geom.V(x, y),
		Rotation:  rot,
		Alignment: scene.AlignTopLeft,
	}, children...)
}

func storeOf(items ...*scene.Element) *scene.Store {
	s := scene.NewStore(1920, 1080)
	for _, e := range items {
		s.Add(e)
	}
	return s
}

func ids(els []*scene.Element) map[string]bool {
	out := make(map[string]bool, len(els))
	for _, e := range els {
		out[e.ID()] = true
	}
	return out
}

func selectedIDs(t *testing.T, comp Composition) map[string]bool {
	t.Helper()
	return ids(SelectedItems(comp))
}
