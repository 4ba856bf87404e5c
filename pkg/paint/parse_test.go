package paint

import (
	"encoding/json"
	"errors"
	"image"
	"testing"
)

type stubHandle struct{ url string }

func (h *stubHandle) URL() string                 { return h.url }
func (h *stubHandle) Image() (image.Image, error) { return nil, nil }
func (h *stubHandle) Loaded() bool                { return false }

type stubResolver struct {
	handles map[string]ImageHandle
	scales  []float64
}

func (r *stubResolver) Resolve(url string, scale float64) ImageHandle {
	r.scales = append(r.scales, scale)
	if h, ok := r.handles[url]; ok {
		return h
	}
	return nil
}

func decodeRecord(t *testing.T, s string) Record {
	t.Helper()
	var rec Record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return rec
}

func TestColorRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 127, 128, 200, 255} {
		c := Color{R: v, G: 255 - v, B: v / 2, A: ^v}
		if got := DecodeColor(c.Packed()); got != c {
			t.Errorf("DecodeColor(%#x) = %+v, want %+v", c.Packed(), got, c)
		}
	}
}

func TestDecodeColor_ChannelLayout(t *testing.T) {
	got := DecodeColor(0x11223344)
	want := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if got != want {
		t.Errorf("DecodeColor = %+v, want %+v", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *Color
	}{
		{"nil", nil, nil},
		{"signed white", float64(-1), &Color{255, 255, 255, 255}},
		{"unsigned white", float64(0xFFFFFFFF), &Color{255, 255, 255, 255}},
		{"red", float64(0xFF0000FF), &Color{255, 0, 0, 255}},
		{"wrong type", "red", &Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseColor(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseColor(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseColor(%v) = %+v, want %+v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestParseStops_HardEdges(t *testing.T) {
	// Runtime float64 arithmetic, matching how ParseStops accumulates.
	eps := StopEpsilon
	tests := []struct {
		name string
		at   []float64
		want []float64
	}{
		{"distinct", []float64{0, 0.5, 1}, []float64{0, 0.5, 1}},
		{"pair", []float64{0.5, 0.5}, []float64{0.5, 0.5 + eps}},
		{"triple", []float64{0.5, 0.5, 0.5}, []float64{0.5, 0.5 + eps, 0.5 + eps + eps}},
		{"two edges", []float64{0, 0.3, 0.3, 1, 1}, []float64{0, 0.3, 0.3 + eps, 1, 1 + eps}},
		{"lands on nudged", []float64{0.5, 0.5, 0.5 + eps}, []float64{0.5, 0.5 + eps, 0.5 + eps + eps}},
		{"lands on nudged then moves on", []float64{0.2, 0.2, 0.2 + eps, 0.9}, []float64{0.2, 0.2 + eps, 0.2 + eps + eps, 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]Record, len(tt.at))
			for i, at := range tt.at {
				records[i] = Record{"at": at, "color": float64(i)}
			}
			stops := ParseStops(records)
			if len(stops) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(stops), len(tt.want))
			}
			for i, s := range stops {
				if s.Position != tt.want[i] {
					t.Errorf("stop[%d].Position = %v, want %v", i, s.Position, tt.want[i])
				}
				if i > 0 && s.Position <= stops[i-1].Position {
					t.Errorf("stop[%d] not strictly after stop[%d]", i, i-1)
				}
				if s.Color != DecodeColor(uint32(i)) {
					t.Errorf("stop[%d].Color = %+v", i, s.Color)
				}
			}
		})
	}
}

func TestParseStops_Empty(t *testing.T) {
	if got := ParseStops(nil); got != nil {
		t.Errorf("ParseStops(nil) = %v, want nil", got)
	}
}

func TestParseDropShadows(t *testing.T) {
	rec := decodeRecord(t, `{"drop_shadows":[{"x_offset":1.5,"y_offset":-2,"radius":4,"color":255}]}`)
	got := ParseDropShadows(rec.Records("drop_shadows"))
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := DropShadow{OffsetX: 1.5, OffsetY: -2, Radius: 4, Color: Color{A: 255}}
	if got[0] != want {
		t.Errorf("shadow = %+v, want %+v", got[0], want)
	}

	if got := ParseDropShadows(Record{}.Records("drop_shadows")); len(got) != 0 {
		t.Errorf("absent shadows = %v, want empty", got)
	}
}

func TestParse_Variants(t *testing.T) {
	resolver := &stubResolver{handles: map[string]ImageHandle{
		"https://cdn.example/p.webp": &stubHandle{url: "https://cdn.example/p.webp"},
	}}

	tests := []struct {
		function string
		want     Kind
	}{
		{"LINEAR_GRADIENT", KindLinearGradient},
		{"linear-gradient", KindLinearGradient},
		{"RADIAL_GRADIENT", KindRadialGradient},
		{"radial-gradient", KindRadialGradient},
		{"URL", KindURL},
		{"url", KindURL},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			rec := Record{
				"id":        "p1",
				"name":      "Sunset",
				"function":  tt.function,
				"image_url": "https://cdn.example/p.webp",
			}
			p, err := Parse(rec, resolver)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if p.Kind() != tt.want {
				t.Errorf("Kind = %q, want %q", p.Kind(), tt.want)
			}
			if p.PaintID() != "p1" || p.PaintName() != "Sunset" {
				t.Errorf("id/name = %q/%q", p.PaintID(), p.PaintName())
			}
		})
	}

	for _, s := range resolver.scales {
		if s != 1 {
			t.Errorf("resolver scale = %v, want 1", s)
		}
	}
}

func TestParse_UnknownFunction(t *testing.T) {
	for _, fn := range []string{"unknown-thing", "Linear-Gradient", ""} {
		_, err := Parse(Record{"id": "p1", "function": fn}, nil)
		if !errors.Is(err, ErrUnknownFunction) {
			t.Errorf("Parse(function=%q) error = %v, want ErrUnknownFunction", fn, err)
		}
	}
}

func TestParse_ImageUnresolved(t *testing.T) {
	rec := Record{"id": "p1", "function": "url", "image_url": "https://cdn.example/missing.webp"}

	if _, err := Parse(rec, &stubResolver{}); !errors.Is(err, ErrImageUnresolved) {
		t.Errorf("error = %v, want ErrImageUnresolved", err)
	}
	if _, err := Parse(rec, nil); !errors.Is(err, ErrImageUnresolved) {
		t.Errorf("nil resolver error = %v, want ErrImageUnresolved", err)
	}
}

func TestParse_LinearGradient(t *testing.T) {
	rec := decodeRecord(t, `{
		"id": "p1",
		"name": "Hard Edge",
		"function": "linear-gradient",
		"color": -16776961,
		"repeat": true,
		"angle": 45,
		"stops": [{"at": 0.5, "color": 255}, {"at": 0.5, "color": -1}],
		"drop_shadows": [{"x_offset": 0, "y_offset": 0, "radius": 1, "color": 255}]
	}`)

	p, err := Parse(rec, nil)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	half, eps := 0.5, StopEpsilon
	lg, ok := p.(*LinearGradient)
	if !ok {
		t.Fatalf("Parse returned %T, want *LinearGradient", p)
	}
	if lg.Color == nil || *lg.Color != (Color{R: 255, G: 0, B: 0, A: 255}) {
		t.Errorf("Color = %v", lg.Color)
	}
	if !lg.Repeat || lg.Angle != 45 {
		t.Errorf("Repeat/Angle = %v/%v", lg.Repeat, lg.Angle)
	}
	if len(lg.Stops) != 2 || lg.Stops[1].Position != half+eps {
		t.Errorf("Stops = %+v", lg.Stops)
	}
	if len(lg.Shadows()) != 1 {
		t.Errorf("Shadows = %+v", lg.Shadows())
	}
}

func TestParse_LinearGradientNullColor(t *testing.T) {
	for _, body := range []string{
		`{"id":"p1","function":"LINEAR_GRADIENT","color":null}`,
		`{"id":"p1","function":"LINEAR_GRADIENT"}`,
	} {
		p, err := Parse(decodeRecord(t, body), nil)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if c := p.(*LinearGradient).Color; c != nil {
			t.Errorf("Color = %+v for %s, want nil", *c, body)
		}
	}
}

func TestParse_MalformedScalarsDefault(t *testing.T) {
	rec := decodeRecord(t, `{
		"id": 42,
		"name": ["x"],
		"function": "radial-gradient",
		"repeat": "yes",
		"stops": "none",
		"drop_shadows": {"x_offset": 1}
	}`)

	p, err := Parse(rec, nil)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	rg := p.(*RadialGradient)
	if rg.ID != "" || rg.Name != "" || rg.Repeat || rg.Stops != nil || rg.DropShadows != nil {
		t.Errorf("expected zero values, got %+v", rg)
	}
}
