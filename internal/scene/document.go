package scene

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/canvasedit/internal/geom"
)

var ErrInvalidDocument = errors.New("invalid composition document")

// Document is the JSON form used to seed a Store.
type Document struct {
	Canvas   Canvas        `json:"canvas"`
	Elements []ElementNode `json:"elements"` // bottom to top
}

type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ElementType string

const (
	ElementTypeItem  ElementType = "item"
	ElementTypeGroup ElementType = "group"
)

// ElementNode is the serialised state of one element.
type ElementNode struct {
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name,omitempty"`
	Type       ElementType   `json:"type"`
	Position   geom.Vec2     `json:"position"`
	Scale      *geom.Vec2    `json:"scale,omitempty"`
	Rotation   float64       `json:"rotation"`
	Crop       Crop          `json:"crop"`
	BoundsType BoundsType    `json:"boundsType"`
	BoundsSize geom.Vec2     `json:"boundsSize"`
	Alignment  Alignment     `json:"alignment"`
	SourceSize geom.Vec2     `json:"sourceSize"`
	Locked     bool          `json:"locked,omitempty"`
	Visible    *bool         `json:"visible,omitempty"`
	HasVideo   *bool         `json:"hasVideo,omitempty"`
	Selected   bool          `json:"selected,omitempty"`
	Collapsed  bool          `json:"collapsed,omitempty"`
	Children   []ElementNode `json:"children,omitempty"`
}

// Decode parses a composition document and builds a Store from it.
func Decode(data []byte) (*Store, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc.Build()
}

// Build validates the document and creates a Store holding its elements.
func (d *Document) Build() (*Store, error) {
	if d.Canvas.Width <= 0 || d.Canvas.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas size %gx%g", ErrInvalidDocument, d.Canvas.Width, d.Canvas.Height)
	}

	s := NewStore(d.Canvas.Width, d.Canvas.Height)
	for i := range d.Elements {
		e, err := buildElement(&d.Elements[i])
		if err != nil {
			return nil, err
		}
		s.Add(e)
	}
	return s, nil
}

func buildElement(n *ElementNode) (*Element, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}

	p := Props{
		ID:         n.ID,
		Name:       n.Name,
		Position:   n.Position,
		Rotation:   n.Rotation,
		Crop:       n.Crop,
		BoundsType: n.BoundsType,
		BoundsSize: n.BoundsSize.Abs(),
		Alignment:  n.Alignment,
		SourceSize: n.SourceSize,
		Locked:     n.Locked,
		Selected:   n.Selected,
		Collapsed:  n.Collapsed,
	}
	if n.Scale != nil {
		p.Scale = *n.Scale
	}
	if n.Visible != nil {
		p.Hidden = !*n.Visible
	}
	if n.HasVideo != nil {
		p.NoVideo = !*n.HasVideo
	}

	switch n.Type {
	case ElementTypeGroup:
		children := make([]*Element, 0, len(n.Children))
		for i := range n.Children {
			c, err := buildElement(&n.Children[i])
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return NewGroup(p, children...), nil
	case ElementTypeItem, "":
		return NewElement(p), nil
	default:
		return nil, fmt.Errorf("%w: element %q has unknown type %q", ErrInvalidDocument, n.ID, n.Type)
	}
}

func (n *ElementNode) validate() error {
	c := n.Crop
	if c.Left < 0 || c.Top < 0 || c.Right < 0 || c.Bottom < 0 {
		return fmt.Errorf("%w: element %q has negative crop", ErrInvalidDocument, n.ID)
	}
	if n.Type != ElementTypeGroup {
		if float64(c.Left+c.Right) >= n.SourceSize.X && c.Left+c.Right > 0 {
			return fmt.Errorf("%w: element %q crops its full width", ErrInvalidDocument, n.ID)
		}
		if float64(c.Top+c.Bottom) >= n.SourceSize.Y && c.Top+c.Bottom > 0 {
			return fmt.Errorf("%w: element %q crops its full height", ErrInvalidDocument, n.ID)
		}
	}
	if n.Type != ElementTypeGroup && len(n.Children) > 0 {
		return fmt.Errorf("%w: element %q is not a group but has children", ErrInvalidDocument, n.ID)
	}
	return nil
}

// Node returns the serialised state of e, including its subtree.
func (e *Element) Node() ElementNode {
	n := e.State()
	for _, c := range e.children {
		n.Children = append(n.Children, c.Node())
	}
	return n
}

// State returns the serialised state of e without its children.
func (e *Element) State() ElementNode {
	scale := e.scale
	visible := e.visible
	hasVideo := e.hasVideo
	n := ElementNode{
		ID:         e.id,
		Name:       e.name,
		Type:       ElementTypeItem,
		Position:   e.position,
		Scale:      &scale,
		Rotation:   e.rotation,
		Crop:       e.crop,
		BoundsType: e.boundsType,
		BoundsSize: e.boundsSize,
		Alignment:  e.alignment,
		SourceSize: e.sourceSize,
		Locked:     e.locked,
		Visible:    &visible,
		HasVideo:   &hasVideo,
		Selected:   e.selected,
		Collapsed:  e.collapsed,
	}
	if e.group {
		n.Type = ElementTypeGroup
	}
	return n
}

// Document returns the serialised form of the whole store.
func (s *Store) Document() *Document {
	doc := &Document{
		Canvas:   Canvas{Width: s.canvas.X, Height: s.canvas.Y},
		Elements: make([]ElementNode, 0, len(s.items)),
	}
	for _, e := range s.items {
		doc.Elements = append(doc.Elements, e.Node())
	}
	return doc
}
