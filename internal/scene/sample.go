package scene

import "github.com/inamate/canvasedit/internal/geom"

// NewSampleStore builds a 1920x1080 composition with a background, two
// overlapping sources, a rotated logo, a locked watermark and a group
// holding a camera with a cropped overlay.
func NewSampleStore() *Store {
	s := NewStore(1920, 1080)

	s.Add(NewElement(Props{
		Name:       "Background",
		SourceSize: geom.V(1920, 1080),
		Alignment:  AlignTopLeft,
	}))
	s.Add(NewElement(Props{
		Name:       "Gameplay",
		SourceSize: geom.V(2560, 1440),
		Scale:      geom.V(0.5, 0.5),
		Position:   geom.V(120, 120),
		Alignment:  AlignTopLeft,
	}))
	s.Add(NewElement(Props{
		Name:       "Browser",
		SourceSize: geom.V(800, 600),
		Position:   geom.V(1500, 500),
		BoundsType: BoundsScaleInner,
		BoundsSize: geom.V(400, 400),
		Alignment:  AlignCenter,
	}))
	s.Add(NewElement(Props{
		Name:       "Logo",
		SourceSize: geom.V(256, 256),
		Position:   geom.V(1700, 150),
		Rotation:   15,
		Alignment:  AlignCenter,
	}))
	s.Add(NewElement(Props{
		Name:       "Watermark",
		SourceSize: geom.V(300, 80),
		Position:   geom.V(1900, 1060),
		Alignment:  AlignBottomRight,
		Locked:     true,
	}))
	s.Add(NewElement(Props{
		Name:       "Audio",
		NoVideo:    true,
		SourceSize: geom.V(0, 0),
	}))

	camera := NewElement(Props{
		Name:       "Camera",
		SourceSize: geom.V(1280, 720),
		Scale:      geom.V(0.25, 0.25),
		Crop:       Crop{Left: 160, Right: 160},
		Alignment:  AlignTopLeft,
	})
	frame := NewElement(Props{
		Name:       "Camera Frame",
		SourceSize: geom.V(260, 200),
		Position:   geom.V(-10, -10),
		Alignment:  AlignTopLeft,
	})
	s.Add(NewGroup(Props{
		Name:      "Facecam",
		Position:  geom.V(1560, 820),
		Alignment: AlignTopLeft,
	}, frame, camera))

	return s
}
