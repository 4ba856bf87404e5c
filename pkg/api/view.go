package api

import (
	"github.com/chatpaint/paintd/pkg/paint"
)

// PaintView is the JSON rendering of a paint.
type PaintView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        paint.Kind       `json:"kind"`
	Color       string           `json:"color,omitempty"`
	Angle       *float64         `json:"angle,omitempty"`
	Repeat      bool             `json:"repeat"`
	Stops       []StopView       `json:"stops"`
	DropShadows []DropShadowView `json:"drop_shadows"`
	ImageURL    string           `json:"image_url,omitempty"`
}

// StopView is one gradient stop.
type StopView struct {
	At    float64 `json:"at"`
	Color string  `json:"color"`
}

// DropShadowView is one drop shadow.
type DropShadowView struct {
	OffsetX float64 `json:"x_offset"`
	OffsetY float64 `json:"y_offset"`
	Radius  float64 `json:"radius"`
	Color   string  `json:"color"`
}

// NewPaintView renders p. Colors are #RRGGBBAA.
func NewPaintView(p paint.Paint) PaintView {
	v := PaintView{
		ID:          p.PaintID(),
		Name:        p.PaintName(),
		Kind:        p.Kind(),
		Stops:       []StopView{},
		DropShadows: make([]DropShadowView, 0, len(p.Shadows())),
	}
	for _, s := range p.Shadows() {
		v.DropShadows = append(v.DropShadows, DropShadowView{
			OffsetX: s.OffsetX,
			OffsetY: s.OffsetY,
			Radius:  s.Radius,
			Color:   s.Color.Hex(),
		})
	}

	switch p := p.(type) {
	case *paint.LinearGradient:
		if p.Color != nil {
			v.Color = p.Color.Hex()
		}
		angle := p.Angle
		v.Angle = &angle
		v.Repeat = p.Repeat
		v.Stops = stopViews(p.Stops)
	case *paint.RadialGradient:
		v.Repeat = p.Repeat
		v.Stops = stopViews(p.Stops)
	case *paint.URLImage:
		if p.Image != nil {
			v.ImageURL = p.Image.URL()
		}
	}
	return v
}

func stopViews(stops []paint.Stop) []StopView {
	out := make([]StopView, len(stops))
	for i, s := range stops {
		out[i] = StopView{At: s.Position, Color: s.Color.Hex()}
	}
	return out
}
