// Package raster paints a composition and its editing overlay into an
// image, for previews and offline rendering of replayed gestures.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/geom"
	"github.com/inamate/canvasedit/internal/scene"
)

var (
	backgroundColor = color.RGBA{0x20, 0x20, 0x24, 0xff}
	canvasColor     = color.RGBA{0x00, 0x00, 0x00, 0xff}
	groupColor      = color.RGBA{0x60, 0x60, 0x68, 0xff}
)

// elementColors cycles by paint order so neighbouring elements differ.
var elementColors = []color.RGBA{
	{0x3a, 0x6e, 0xa5, 0xff},
	{0xc0, 0x6c, 0x2f, 0xff},
	{0x4f, 0x9a, 0x4a, 0xff},
	{0x8e, 0x4f, 0xa0, 0xff},
}

// Renderer draws into a fixed-size image. Canvas units are mapped to
// pixels through the viewport.
type Renderer struct {
	context  *gg.Context
	viewport engine.Viewport
}

// NewRenderer creates a renderer with an image of width by height pixels.
func NewRenderer(width, height int, vp engine.Viewport) *Renderer {
	return &Renderer{context: gg.NewContext(width, height), viewport: vp}
}

// Image returns the rendered image.
func (r *Renderer) Image() image.Image { return r.context.Image() }

// Render clears the image and paints the composition bottom to top.
// Hidden elements and their children are skipped.
func (r *Renderer) Render(comp engine.Composition) {
	r.context.SetColor(backgroundColor)
	r.context.Clear()

	canvas := comp.Canvas()
	r.context.SetColor(canvasColor)
	r.fillPolygon(geom.Quad(geom.Scale(canvas.X, canvas.Y)))

	var visits []engine.Visit
	for v := range engine.Walk(comp.Items(), func(g *scene.Element) bool { return g.Visible() }) {
		if v.Element.Visible() {
			visits = append(visits, v)
		}
	}
	// Walk yields topmost first.
	slices.Reverse(visits)

	for i, v := range visits {
		quad := geom.Quad(v.BoxTransform())
		if v.Element.IsGroup() {
			r.context.SetColor(groupColor)
			r.context.SetLineWidth(1)
			r.context.SetDash(4, 4)
			r.strokePolygon(quad)
			r.context.SetDash()
			continue
		}
		r.context.SetColor(elementColors[i%len(elementColors)])
		r.fillPolygon(quad)
	}
}

// Draw executes overlay draw commands on top of what is already painted.
func (r *Renderer) Draw(commands []engine.DrawCommand) error {
	r.context.SetFontFace(basicfont.Face7x13)
	for _, cmd := range commands {
		if err := r.draw(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) draw(cmd engine.DrawCommand) error {
	width := r.pixels(cmd.StrokeWidth)
	switch cmd.Op {
	case "quad":
		if len(cmd.Points) != 4 {
			return fmt.Errorf("quad needs 4 points, got %d", len(cmd.Points))
		}
		if err := r.setColor(cmd.Stroke); err != nil {
			return err
		}
		r.context.SetLineWidth(width)
		r.strokePolygon([4]geom.Vec2(cmd.Points))

	case "line":
		if len(cmd.Points) != 2 {
			return fmt.Errorf("line needs 2 points, got %d", len(cmd.Points))
		}
		if err := r.setColor(cmd.Stroke); err != nil {
			return err
		}
		a, b := r.toPixel(cmd.Points[0]), r.toPixel(cmd.Points[1])
		r.context.SetLineWidth(width)
		if cmd.Dashed {
			r.context.SetDash(6, 4)
		}
		r.context.DrawLine(a.X, a.Y, b.X, b.Y)
		r.context.Stroke()
		r.context.SetDash()

	case "rect":
		if len(cmd.Points) != 2 {
			return fmt.Errorf("rect needs 2 points, got %d", len(cmd.Points))
		}
		a, b := r.toPixel(cmd.Points[0]), r.toPixel(cmd.Points[1])
		rect := geom.RectFromPoints(a, b)
		if cmd.Fill != "" {
			if err := r.setColor(cmd.Fill); err != nil {
				return err
			}
			r.context.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
			r.context.Fill()
		}
		if cmd.Stroke != "" {
			if err := r.setColor(cmd.Stroke); err != nil {
				return err
			}
			r.context.SetLineWidth(width)
			r.context.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
			r.context.Stroke()
		}

	case "handle":
		if len(cmd.Points) != 1 {
			return fmt.Errorf("handle needs 1 point, got %d", len(cmd.Points))
		}
		if err := r.setColor(cmd.Fill); err != nil {
			return err
		}
		p := r.toPixel(cmd.Points[0])
		r.context.DrawCircle(p.X, p.Y, max(r.pixels(cmd.Radius), 1))
		r.context.Fill()

	case "label":
		if len(cmd.Points) != 1 {
			return fmt.Errorf("label needs 1 point, got %d", len(cmd.Points))
		}
		if err := r.setColor(cmd.Fill); err != nil {
			return err
		}
		p := r.toPixel(cmd.Points[0])
		r.context.DrawStringAnchored(cmd.Text, p.X, p.Y, 0.5, 0.5)

	default:
		return fmt.Errorf("unknown draw op %q", cmd.Op)
	}
	return nil
}

// EncodePNG writes the rendered image as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}

// SavePNG writes the rendered image to a PNG file.
func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

func (r *Renderer) toPixel(p geom.Vec2) geom.Vec2 {
	return r.viewport.ToWidget(p).Scale(r.pixelRatio())
}

func (r *Renderer) pixelRatio() float64 {
	if r.viewport.PixelRatio <= 0 {
		return 1
	}
	return r.viewport.PixelRatio
}

// pixels converts a canvas-unit length to device pixels.
func (r *Renderer) pixels(units float64) float64 {
	if r.viewport.Scale <= 0 {
		return units
	}
	return units * r.viewport.Scale
}

func (r *Renderer) tracePolygon(quad [4]geom.Vec2) {
	r.context.NewSubPath()
	for i, p := range quad {
		p = r.toPixel(p)
		if i == 0 {
			r.context.MoveTo(p.X, p.Y)
		} else {
			r.context.LineTo(p.X, p.Y)
		}
	}
	r.context.ClosePath()
}

func (r *Renderer) fillPolygon(quad [4]geom.Vec2) {
	r.tracePolygon(quad)
	r.context.Fill()
}

func (r *Renderer) strokePolygon(quad [4]geom.Vec2) {
	r.tracePolygon(quad)
	r.context.Stroke()
}

func (r *Renderer) setColor(s string) error {
	c, err := ParseColor(s)
	if err != nil {
		return err
	}
	r.context.SetColor(c)
	return nil
}

// ParseColor accepts the colour forms draw commands use: "#rrggbb",
// "#rgb" and "rgba(r,g,b,a)" with alpha in 0..1.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return nil, fmt.Errorf("parse colour %q: bad length", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("parse colour %q: %w", s, err)
		}
		return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil

	case strings.HasPrefix(s, "rgba("):
		var r, g, b uint8
		var a float64
		body := strings.ReplaceAll(s, " ", "")
		if _, err := fmt.Sscanf(body, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return nil, fmt.Errorf("parse colour %q: %w", s, err)
		}
		a = min(max(a, 0), 1)
		return color.NRGBA{r, g, b, uint8(a*255 + 0.5)}, nil
	}
	return nil, fmt.Errorf("parse colour %q: unsupported form", s)
}
