package engine

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/canvasedit/internal/geom"
)

// DrawCommand is one abstract drawing request. Coordinates are canvas
// units; the renderer applies the viewport.
type DrawCommand struct {
	Op          string      `json:"op"`                  // "quad", "line", "handle", "rect", "label"
	ElementID   string      `json:"elementId,omitempty"` // For hit correlation
	Points      []geom.Vec2 `json:"points,omitempty"`    // quad: 4 corners, line/rect: 2 points, handle/label: 1
	Radius      float64     `json:"radius,omitempty"`
	Text        string      `json:"text,omitempty"`
	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Dashed      bool        `json:"dashed,omitempty"`
}

const (
	colorSelected  = "#ff0000"
	colorLocked    = "#8080ff"
	colorHovered   = "#4c9aff"
	colorCandidate = "#4c9aff"
	colorDragRect  = "#ffffff"
	colorDragFill  = "rgba(255,255,255,0.15)"
	colorHandle    = "#ff0000"
	colorCrop      = "#00ff00"
	colorGuide     = "#ff0000"
	colorLabel     = "#ffffff"
)

// CompileOverlayCommands turns an overlay into draw commands in painter's
// order: hover and box candidates first, then the drag rectangle, selection
// outlines with crop marks and handles, and spacing guides on top.
func CompileOverlayCommands(o *Overlay) []DrawCommand {
	if o == nil {
		return nil
	}
	px := o.PixelSize
	if px <= 0 {
		px = 1
	}

	var commands []DrawCommand
	for _, eo := range o.Hovered {
		commands = append(commands, quadCommand(eo, colorHovered, px))
	}
	for _, eo := range o.BoxCandidates {
		commands = append(commands, quadCommand(eo, colorCandidate, px))
	}
	if r := o.DragRect; r != nil {
		commands = append(commands, DrawCommand{
			Op:          "rect",
			Points:      []geom.Vec2{r.Min(), r.Max()},
			Fill:        colorDragFill,
			Stroke:      colorDragRect,
			StrokeWidth: px,
		})
	}

	for _, eo := range o.Selected {
		color := colorSelected
		if eo.Locked {
			color = colorLocked
		}
		commands = append(commands, quadCommand(eo, color, px))
		commands = append(commands, cropCommands(eo, px)...)

		for _, h := range eo.Handles {
			commands = append(commands, DrawCommand{
				Op:        "handle",
				ElementID: eo.ID,
				Points:    []geom.Vec2{h.Pos},
				Radius:    o.HandleRadius,
				Fill:      colorHandle,
			})
		}
		if eo.Rotate != nil {
			top := eo.Quad[0].Add(eo.Quad[1]).Scale(0.5)
			commands = append(commands,
				DrawCommand{
					Op:          "line",
					ElementID:   eo.ID,
					Points:      []geom.Vec2{top, eo.Rotate.Pos},
					Stroke:      colorHandle,
					StrokeWidth: px,
				},
				DrawCommand{
					Op:        "handle",
					ElementID: eo.ID,
					Points:    []geom.Vec2{eo.Rotate.Pos},
					Radius:    o.HandleRadius,
					Fill:      colorHandle,
				},
			)
		}
	}

	for _, g := range o.Guides {
		commands = append(commands,
			DrawCommand{
				Op:          "line",
				Points:      []geom.Vec2{g.From, g.To},
				Stroke:      colorGuide,
				StrokeWidth: px,
				Dashed:      true,
			},
			DrawCommand{
				Op:     "label",
				Points: []geom.Vec2{g.From.Add(g.To).Scale(0.5)},
				Text:   fmt.Sprintf("%.0fpx", g.Length),
				Fill:   colorLabel,
			},
		)
	}
	return commands
}

func quadCommand(eo ElementOverlay, color string, px float64) DrawCommand {
	return DrawCommand{
		Op:          "quad",
		ElementID:   eo.ID,
		Points:      eo.Quad[:],
		Stroke:      color,
		StrokeWidth: px,
	}
}

// cropCommands marks each cropped side with a thick dashed line along that
// edge of the quad.
func cropCommands(eo ElementOverlay, px float64) []DrawCommand {
	q := eo.Quad
	sides := []struct {
		on   bool
		a, b geom.Vec2
	}{
		{eo.Crop.Left, q[0], q[3]},
		{eo.Crop.Top, q[0], q[1]},
		{eo.Crop.Right, q[1], q[2]},
		{eo.Crop.Bottom, q[3], q[2]},
	}
	var out []DrawCommand
	for _, s := range sides {
		if !s.on {
			continue
		}
		out = append(out, DrawCommand{
			Op:          "line",
			ElementID:   eo.ID,
			Points:      []geom.Vec2{s.a, s.b},
			Stroke:      colorCrop,
			StrokeWidth: 3 * px,
			Dashed:      true,
		})
	}
	return out
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
