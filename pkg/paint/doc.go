// Package paint models name decorations ("paints") and parses them from
// catalog records.
//
// A paint is one of three variants, all sharing a name, an id and an
// ordered list of drop shadows:
//   - LinearGradient: optional base color, stops, repeat flag, angle
//   - RadialGradient: stops and repeat flag
//   - URLImage: a shared, lazily decoded image handle
//
// The Paint interface is sealed; handle variants with a type switch:
//
//	switch p := p.(type) {
//	case *paint.LinearGradient:
//	    drawLinear(p.Stops, p.Angle)
//	case *paint.RadialGradient:
//	    drawRadial(p.Stops)
//	case *paint.URLImage:
//	    img, err := p.Image.Image()
//	    ...
//	}
//
// # Parsing
//
// Records are decoded JSON objects. Parse tolerates missing and mistyped
// scalar fields (they take their zero value) and accepts both the legacy
// upper-snake function tags and the current lower-kebab ones:
//
//	p, err := paint.Parse(rec, resolver)
//	if errors.Is(err, paint.ErrUnknownFunction) {
//	    // skip the record
//	}
//
// Paint values are immutable once Parse returns and may be shared between
// goroutines without synchronization.
package paint
