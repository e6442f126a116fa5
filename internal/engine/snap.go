package engine

import (
	"math"

	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

// ComputeSnapOffset returns the correction that aligns the moving box
// (tl, br in canvas units) with the canvas or a sibling. Each axis is
// resolved independently and the first match wins, in this order: the
// left/top canvas edge, the right/bottom canvas edge, the canvas centre,
// then the nearest edge of a sibling whose span overlaps the box on the
// other axis. Only distances below threshold count.
func ComputeSnapOffset(tl, br geom.Vec2, siblings []geom.Rect, canvas geom.Vec2, threshold float64, cfg SnapConfig) geom.Vec2 {
	if !cfg.Enabled || threshold <= 0 {
		return geom.Vec2{}
	}

	var off geom.Vec2
	var okX, okY bool
	off.X, okX = snapToCanvas(tl.X, br.X, canvas.X, threshold, cfg)
	off.Y, okY = snapToCanvas(tl.Y, br.Y, canvas.Y, threshold, cfg)
	if !cfg.Sources || (okX && okY) {
		return off
	}

	bestX, bestY := threshold, threshold
	for _, s := range siblings {
		smin, smax := s.Min(), s.Max()
		if !okX && tl.Y < smax.Y && br.Y > smin.Y {
			if d, ok := nearestEdge(tl.X, br.X, smin.X, smax.X, bestX); ok {
				off.X, bestX = d, math.Abs(d)
			}
		}
		if !okY && tl.X < smax.X && br.X > smin.X {
			if d, ok := nearestEdge(tl.Y, br.Y, smin.Y, smax.Y, bestY); ok {
				off.Y, bestY = d, math.Abs(d)
			}
		}
	}
	return off
}

// snapToCanvas resolves one axis against the canvas edges and centre.
func snapToCanvas(lo, hi, canvas, t float64, cfg SnapConfig) (float64, bool) {
	if cfg.Screen {
		if math.Abs(lo) < t {
			return -lo, true
		}
		if math.Abs(canvas-hi) < t {
			return canvas - hi, true
		}
	}
	if cfg.Center {
		c := (lo + hi) / 2
		if math.Abs(canvas-(hi-lo)) > t && math.Abs(canvas/2-c) < t {
			return canvas/2 - c, true
		}
	}
	return 0, false
}

// nearestEdge returns the smallest shift, shorter than limit, that puts an
// edge of [lo,hi] on an edge of [slo,shi].
func nearestEdge(lo, hi, slo, shi, limit float64) (float64, bool) {
	best, found := 0.0, false
	for _, edge := range [2]float64{lo, hi} {
		for _, target := range [2]float64{slo, shi} {
			d := target - edge
			if math.Abs(d) < limit {
				best, limit, found = d, math.Abs(d), true
			}
		}
	}
	return best, found
}

// Snapper holds what a gesture snaps against. It is built once per gesture
// so the per-move path does not re-read settings or re-scan the scene.
type Snapper struct {
	cfg       SnapConfig
	canvas    geom.Vec2
	threshold float64
	targets   []geom.Rect
}

// NewSnapper captures cfg, the threshold for the current zoom and, when
// source snapping is on, the bounds of every element not being dragged.
func NewSnapper(comp Composition, cfg SnapConfig, viewportScale float64) *Snapper {
	if viewportScale <= 0 {
		viewportScale = 1
	}
	s := &Snapper{
		cfg:       cfg,
		canvas:    comp.Canvas(),
		threshold: cfg.Distance / viewportScale,
	}
	if cfg.Enabled && cfg.Sources {
		s.targets = SnapTargets(comp)
	}
	return s
}

// Threshold returns the snap distance in canvas units.
func (s *Snapper) Threshold() float64 { return s.threshold }

// Offset returns the snap correction for a moving box.
func (s *Snapper) Offset(tl, br geom.Vec2) geom.Vec2 {
	if s == nil {
		return geom.Vec2{}
	}
	return ComputeSnapOffset(tl, br, s.targets, s.canvas, s.threshold, s.cfg)
}

// SnapTargets returns the canvas bounds of the top-level elements a drag can
// snap to: visible, video-bearing, non-degenerate elements that will not
// move with the selection. Locked elements never move, so they stay
// targets even when selected.
func SnapTargets(comp Composition) []geom.Rect {
	var out []geom.Rect
	for _, e := range comp.Items() {
		if !e.Visible() || !e.HasVideo() || e.Removed() {
			continue
		}
		if movesWithSelection(e) {
			continue
		}
		box := e.BoxTransform()
		if geom.Degenerate(box) {
			continue
		}
		q := geom.Quad(box)
		out = append(out, geom.BoundsOf(q[:]...))
	}
	return out
}

// movesWithSelection reports whether dragging the selection moves e or
// anything inside it.
func movesWithSelection(e *scene.Element) bool {
	for v := range Walk([]*scene.Element{e}, descendUnselected) {
		if v.Element.Selected() && !v.Element.Locked() {
			return true
		}
	}
	return false
}
