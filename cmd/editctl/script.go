package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inamate/canvasedit/internal/engine"
)

// Script is a recorded gesture: a viewport and the input events received
// under it, in order.
type Script struct {
	Viewport *engine.Viewport `json:"viewport,omitempty"`
	Events   []Event          `json:"events"`
}

// Event is one recorded input. Pointer events carry widget pixels.
type Event struct {
	Type  string   `json:"type"` // "down", "move", "up", "leave", "nudge", "select", "group", "ungroup"
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	DX    float64  `json:"dx,omitempty"`
	DY    float64  `json:"dy,omitempty"`
	IDs   []string `json:"ids,omitempty"`
	Shift bool     `json:"shift,omitempty"`
	Ctrl  bool     `json:"ctrl,omitempty"`
	Alt   bool     `json:"alt,omitempty"`
}

func (ev Event) modifiers() engine.Modifiers {
	var m engine.Modifiers
	if ev.Shift {
		m |= engine.ModShift
	}
	if ev.Ctrl {
		m |= engine.ModCtrl
	}
	if ev.Alt {
		m |= engine.ModAlt
	}
	return m
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse gesture %s: %w", path, err)
	}
	return &s, nil
}

// Replay feeds the script's events to the editor.
func (s *Script) Replay(ed *engine.Editor) error {
	if s.Viewport != nil {
		ed.SetViewport(*s.Viewport)
	}
	for i, ev := range s.Events {
		switch ev.Type {
		case "down":
			ed.PointerDown(ev.X, ev.Y, ev.modifiers())
		case "move":
			ed.PointerMove(ev.X, ev.Y, ev.modifiers())
		case "up":
			ed.PointerUp(ev.X, ev.Y, ev.modifiers())
		case "leave":
			ed.PointerLeave()
		case "nudge":
			ed.Nudge(ev.DX, ev.DY)
		case "select":
			ed.SetSelection(ev.IDs)
		case "group":
			if _, err := ed.GroupSelection(); err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
		case "ungroup":
			if err := ed.UngroupSelection(); err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
		default:
			return fmt.Errorf("event %d: unknown type %q", i, ev.Type)
		}
	}
	return nil
}

func loadEditor(compositionPath string) (*engine.Editor, error) {
	data, err := os.ReadFile(compositionPath)
	if err != nil {
		return nil, err
	}
	ed := engine.NewEditor(engine.DefaultSettings())
	if err := ed.LoadDocument(string(data)); err != nil {
		return nil, fmt.Errorf("load %s: %w", compositionPath, err)
	}
	return ed, nil
}
