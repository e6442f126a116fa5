package engine

import "github.com/inamate/canvasedit/internal/geom"

// Viewport describes how the canvas is shown in the editor widget.
//
// Pointer positions arrive in logical widget pixels. They are multiplied by
// PixelRatio to get device pixels, then Offset (device pixels, where the
// canvas origin sits) and Scale (device pixels per canvas unit) map them
// into canvas space.
type Viewport struct {
	Scale      float64   `json:"scale"`
	PixelRatio float64   `json:"pixelRatio"`
	Offset     geom.Vec2 `json:"offset"`
}

// DefaultViewport shows the canvas 1:1 at the widget origin.
func DefaultViewport() Viewport {
	return Viewport{Scale: 1, PixelRatio: 1}
}

// FitViewport scales a canvas to fit a widget of the given logical size,
// centred, keeping aspect ratio.
func FitViewport(canvas, widget geom.Vec2, pixelRatio float64) Viewport {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	if canvas.X <= 0 || canvas.Y <= 0 || widget.X <= 0 || widget.Y <= 0 {
		return Viewport{Scale: 1, PixelRatio: pixelRatio}
	}
	device := widget.Scale(pixelRatio)
	scale := min(device.X/canvas.X, device.Y/canvas.Y)
	shown := canvas.Scale(scale)
	return Viewport{
		Scale:      scale,
		PixelRatio: pixelRatio,
		Offset:     device.Sub(shown).Scale(0.5),
	}
}

func (v Viewport) normalized() Viewport {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	if v.PixelRatio <= 0 {
		v.PixelRatio = 1
	}
	return v
}

// ToCanvas converts a widget position to canvas units.
func (v Viewport) ToCanvas(p geom.Vec2) geom.Vec2 {
	v = v.normalized()
	return p.Scale(v.PixelRatio).Sub(v.Offset).Scale(1 / v.Scale)
}

// ToWidget converts a canvas position to logical widget pixels.
func (v Viewport) ToWidget(p geom.Vec2) geom.Vec2 {
	v = v.normalized()
	return p.Scale(v.Scale).Add(v.Offset).Scale(1 / v.PixelRatio)
}

// CanvasUnits converts a length in logical widget pixels to canvas units,
// so that handles and thresholds keep their on-screen size under zoom.
func (v Viewport) CanvasUnits(px float64) float64 {
	v = v.normalized()
	return px * v.PixelRatio / v.Scale
}
