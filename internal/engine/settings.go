package engine

// SnapConfig selects which snapping categories apply to a gesture. It is
// captured once when the pointer goes down.
type SnapConfig struct {
	Enabled bool `json:"enabled"`
	Screen  bool `json:"screen"`  // canvas edges
	Center  bool `json:"center"`  // canvas centre lines
	Sources bool `json:"sources"` // edges of other elements
	// Distance is the snap threshold in device pixels.
	Distance float64 `json:"distance"`
}

func DefaultSnapConfig() SnapConfig {
	return SnapConfig{
		Enabled:  true,
		Screen:   true,
		Center:   true,
		Sources:  true,
		Distance: 10,
	}
}

// Settings tune the interaction. Lengths are in logical widget pixels.
type Settings struct {
	Snap               SnapConfig `json:"snap"`
	HandleRadius       float64    `json:"handleRadius"`
	RotateHandleOffset float64    `json:"rotateHandleOffset"`
	DragThreshold      float64    `json:"dragThreshold"`
}

func DefaultSettings() Settings {
	return Settings{
		Snap:               DefaultSnapConfig(),
		HandleRadius:       6,
		RotateHandleOffset: 30,
		DragThreshold:      2,
	}
}
