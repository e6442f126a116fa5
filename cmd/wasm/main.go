//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/geom"
)

var editor *engine.Editor

func main() {
	editor = engine.NewEditor(engine.DefaultSettings())

	// Create the editor API object
	canvasEditor := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	canvasEditor.Set("loadComposition", js.FuncOf(loadDocument))
	canvasEditor.Set("loadSample", js.FuncOf(loadSampleDocument))
	canvasEditor.Set("setViewport", js.FuncOf(setViewport))
	canvasEditor.Set("fitToWidget", js.FuncOf(fitToWidget))
	canvasEditor.Set("onPointerDown", js.FuncOf(pointerDown))
	canvasEditor.Set("onPointerMove", js.FuncOf(pointerMove))
	canvasEditor.Set("onPointerUp", js.FuncOf(pointerUp))
	canvasEditor.Set("onPointerLeave", js.FuncOf(pointerLeave))
	canvasEditor.Set("nudge", js.FuncOf(nudge))
	canvasEditor.Set("setSelection", js.FuncOf(setSelection))
	canvasEditor.Set("groupSelection", js.FuncOf(groupSelection))
	canvasEditor.Set("ungroupSelection", js.FuncOf(ungroupSelection))

	// --- Queries (frontend ← engine) ---
	canvasEditor.Set("render", js.FuncOf(render))
	canvasEditor.Set("overlay", js.FuncOf(getOverlay))
	canvasEditor.Set("getSelection", js.FuncOf(getSelection))
	canvasEditor.Set("getElements", js.FuncOf(getChangedElements))
	canvasEditor.Set("getDocument", js.FuncOf(getDocument))
	canvasEditor.Set("getMode", js.FuncOf(getMode))

	// Register on global scope
	js.Global().Set("canvasEditor", canvasEditor)

	// Signal that WASM is ready
	js.Global().Set("canvasEditorReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}
	if err := editor.LoadDocument(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	editor.LoadSampleDocument()
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// setViewport(scale, pixelRatio, offsetX, offsetY)
func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	editor.SetViewport(engine.Viewport{
		Scale:      args[0].Float(),
		PixelRatio: args[1].Float(),
		Offset:     geom.V(args[2].Float(), args[3].Float()),
	})
	return nil
}

// fitToWidget(width, height, pixelRatio)
func fitToWidget(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	editor.FitToWidget(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

// Pointer handlers take (x, y, modifiers) in widget pixels, where
// modifiers is a bit set: 1 shift, 2 ctrl, 4 alt. They return whether
// the overlay needs a redraw.

func pointerDown(this js.Value, args []js.Value) interface{} {
	x, y, mods, ok := pointerArgs(args)
	if !ok {
		return js.ValueOf(false)
	}
	return js.ValueOf(editor.PointerDown(x, y, mods))
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	x, y, mods, ok := pointerArgs(args)
	if !ok {
		return js.ValueOf(false)
	}
	return js.ValueOf(editor.PointerMove(x, y, mods))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	x, y, mods, ok := pointerArgs(args)
	if !ok {
		return js.ValueOf(false)
	}
	return js.ValueOf(editor.PointerUp(x, y, mods))
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(editor.PointerLeave())
}

func pointerArgs(args []js.Value) (x, y float64, mods engine.Modifiers, ok bool) {
	if len(args) < 2 {
		return 0, 0, 0, false
	}
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		mods = engine.Modifiers(args[2].Int())
	}
	return args[0].Float(), args[1].Float(), mods, true
}

func nudge(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(editor.Nudge(args[0].Float(), args[1].Float()))
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		editor.SetSelection(nil)
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	editor.SetSelection(ids)
	return nil
}

func groupSelection(this js.Value, args []js.Value) interface{} {
	g, err := editor.GroupSelection()
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": g.ID()})
}

func ungroupSelection(this js.Value, args []js.Value) interface{} {
	if err := editor.UngroupSelection(); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(editor.Render())
}

func getOverlay(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(editor.GetOverlay())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(editor.GetSelection())
}

func getChangedElements(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(editor.TakeChanged())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(editor.GetDocument())
}

func getMode(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(editor.Mode().String())
}
