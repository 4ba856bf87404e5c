package paint

import (
	"errors"
	"fmt"
)

// StopEpsilon is the offset applied to a gradient stop that repeats the
// previous stop's position. Two stops at the same position render as a hard
// edge; most gradient rasterizers instead let the second stop replace the
// first, so the second one is moved just past it.
const StopEpsilon = 1e-7

// DefaultImageScale is the scale requested for url paint images.
const DefaultImageScale = 1

var (
	// ErrUnknownFunction is returned for records whose function tag is not
	// a recognized variant.
	ErrUnknownFunction = errors.New("paint: unknown function")

	// ErrImageUnresolved is returned for url paints whose image could not
	// be resolved to a handle.
	ErrImageUnresolved = errors.New("paint: image unresolved")
)

// ParseColor decodes a packed color value. A nil (absent or JSON null)
// value yields nil.
func ParseColor(v any) *Color {
	if v == nil {
		return nil
	}
	c := DecodeColor(packedColor(v))
	return &c
}

// packedColor converts a wire color to its packed form. Signed and
// unsigned 32-bit encodings of the same color are equivalent.
func packedColor(v any) uint32 {
	return uint32(toInt(v))
}

// ParseStops decodes gradient stops in order. When a stop repeats the
// previous stop's wire position, or lands on the previous stop's stored
// position, it is placed StopEpsilon after the stored position. No two
// stored stops share a position.
func ParseStops(stops []Record) []Stop {
	if len(stops) == 0 {
		return nil
	}

	parsed := make([]Stop, 0, len(stops))
	lastWire := -1.0
	last := -1.0

	for _, s := range stops {
		wire := s.Float("at")
		pos := wire
		if len(parsed) > 0 && (wire == lastWire || wire == last) {
			pos = last + StopEpsilon
		}

		lastWire = wire
		last = pos
		parsed = append(parsed, Stop{
			Position: pos,
			Color:    DecodeColor(packedColor(s["color"])),
		})
	}

	return parsed
}

// ParseDropShadows decodes drop shadow records in order.
func ParseDropShadows(shadows []Record) []DropShadow {
	if len(shadows) == 0 {
		return nil
	}

	parsed := make([]DropShadow, 0, len(shadows))
	for _, s := range shadows {
		parsed = append(parsed, DropShadow{
			OffsetX: s.Float("x_offset"),
			OffsetY: s.Float("y_offset"),
			Radius:  s.Float("radius"),
			Color:   DecodeColor(packedColor(s["color"])),
		})
	}
	return parsed
}

// KindOf maps a function tag to its variant. Both the legacy upper-snake
// and the current lower-kebab spellings are accepted; matching is case
// sensitive.
func KindOf(function string) (Kind, bool) {
	switch function {
	case "LINEAR_GRADIENT", "linear-gradient":
		return KindLinearGradient, true
	case "RADIAL_GRADIENT", "radial-gradient":
		return KindRadialGradient, true
	case "URL", "url":
		return KindURL, true
	}
	return "", false
}

// Parse converts a paint record into a Paint.
//
// It fails only with ErrUnknownFunction, when the function tag is not a
// known variant, or ErrImageUnresolved, when a url paint's image cannot be
// resolved. A nil resolver resolves nothing.
func Parse(rec Record, images ImageResolver) (Paint, error) {
	base := Base{
		Name:        rec.String("name"),
		ID:          rec.String("id"),
		DropShadows: ParseDropShadows(rec.Records("drop_shadows")),
	}

	function := rec.String("function")
	kind, ok := KindOf(function)
	if !ok {
		return nil, fmt.Errorf("%w %q (paint %q)", ErrUnknownFunction, function, base.ID)
	}

	switch kind {
	case KindLinearGradient:
		return &LinearGradient{
			Base:   base,
			Color:  ParseColor(rec["color"]),
			Stops:  ParseStops(rec.Records("stops")),
			Repeat: rec.Bool("repeat"),
			Angle:  rec.Float("angle"),
		}, nil

	case KindRadialGradient:
		return &RadialGradient{
			Base:   base,
			Stops:  ParseStops(rec.Records("stops")),
			Repeat: rec.Bool("repeat"),
		}, nil

	case KindURL:
		url := rec.String("image_url")
		var img ImageHandle
		if images != nil {
			img = images.Resolve(url, DefaultImageScale)
		}
		if img == nil {
			return nil, fmt.Errorf("%w: %q (paint %q)", ErrImageUnresolved, url, base.ID)
		}
		return &URLImage{Base: base, Image: img}, nil
	}

	return nil, fmt.Errorf("%w %q (paint %q)", ErrUnknownFunction, function, base.ID)
}
