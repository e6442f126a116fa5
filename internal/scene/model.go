package scene

import (
	"fmt"
	"strings"
)

// BoundsType controls whether an element's size comes from its scale or
// from an explicit bounding box.
type BoundsType int

const (
	BoundsNone BoundsType = iota
	BoundsStretch
	BoundsScaleInner
	BoundsScaleOuter
	BoundsScaleToWidth
	BoundsScaleToHeight
	BoundsMaxOnly
)

var boundsTypeNames = [...]string{
	BoundsNone:          "none",
	BoundsStretch:       "stretch",
	BoundsScaleInner:    "scale_inner",
	BoundsScaleOuter:    "scale_outer",
	BoundsScaleToWidth:  "scale_to_width",
	BoundsScaleToHeight: "scale_to_height",
	BoundsMaxOnly:       "max_only",
}

func (b BoundsType) String() string {
	if b < 0 || int(b) >= len(boundsTypeNames) {
		return fmt.Sprintf("BoundsType(%d)", int(b))
	}
	return boundsTypeNames[b]
}

func (b BoundsType) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(boundsTypeNames) {
		return nil, fmt.Errorf("unknown bounds type %d", int(b))
	}
	return []byte(boundsTypeNames[b]), nil
}

func (b *BoundsType) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*b = BoundsNone
		return nil
	}
	for i, name := range boundsTypeNames {
		if name == s {
			*b = BoundsType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown bounds type %q", s)
}

// Alignment is the anchor an element's position refers to. The zero value
// anchors at the center on both axes.
type Alignment uint32

const (
	AlignLeft Alignment = 1 << iota
	AlignRight
	AlignTop
	AlignBottom

	AlignCenter      Alignment = 0
	AlignTopLeft               = AlignTop | AlignLeft
	AlignTopRight              = AlignTop | AlignRight
	AlignBottomLeft            = AlignBottom | AlignLeft
	AlignBottomRight           = AlignBottom | AlignRight
)

var alignmentNames = []struct {
	bit  Alignment
	name string
}{
	{AlignLeft, "left"},
	{AlignRight, "right"},
	{AlignTop, "top"},
	{AlignBottom, "bottom"},
}

func (a Alignment) String() string {
	if a == AlignCenter {
		return "center"
	}
	var parts []string
	for _, n := range alignmentNames {
		if a&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Alignment) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "center" {
		*a = AlignCenter
		return nil
	}
	var out Alignment
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, n := range alignmentNames {
			if n.name == part {
				out |= n.bit
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown alignment %q", part)
		}
	}
	*a = out
	return nil
}

// Factor returns the fraction (0, 0.5 or 1) of a box's width and height at
// which the anchor lies.
func (a Alignment) Factor() (fx, fy float64) {
	switch {
	case a&AlignLeft != 0:
		fx = 0
	case a&AlignRight != 0:
		fx = 1
	default:
		fx = 0.5
	}
	switch {
	case a&AlignTop != 0:
		fy = 0
	case a&AlignBottom != 0:
		fy = 1
	default:
		fy = 0.5
	}
	return fx, fy
}

// Crop holds per-side insets in source pixels.
type Crop struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// IsZero reports whether no side is cropped.
func (c Crop) IsZero() bool {
	return c == Crop{}
}
