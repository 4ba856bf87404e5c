package paint

import "image"

// Kind names a paint variant.
type Kind string

const (
	KindLinearGradient Kind = "linear-gradient"
	KindRadialGradient Kind = "radial-gradient"
	KindURL            Kind = "url"
)

// Paint is a renderable name decoration.
// This is a sealed interface - only the variants in this package implement it.
type Paint interface {
	// paintMarker seals the interface.
	paintMarker()

	// PaintID returns the stable catalog identifier.
	PaintID() string

	// PaintName returns the display name.
	PaintName() string

	// Shadows returns the drop shadows in render order.
	Shadows() []DropShadow

	// Kind returns the variant tag.
	Kind() Kind
}

// Base holds the fields shared by every variant.
type Base struct {
	Name        string
	ID          string
	DropShadows []DropShadow
}

// PaintID implements Paint.
func (b *Base) PaintID() string { return b.ID }

// PaintName implements Paint.
func (b *Base) PaintName() string { return b.Name }

// Shadows implements Paint.
func (b *Base) Shadows() []DropShadow { return b.DropShadows }

// DropShadow is a blurred, offset shadow layer drawn behind the name.
type DropShadow struct {
	OffsetX float64
	OffsetY float64
	Radius  float64
	Color   Color
}

// Stop is a single point on a gradient ramp.
type Stop struct {
	Position float64
	Color    Color
}

// LinearGradient is a gradient along a line at Angle degrees.
type LinearGradient struct {
	Base

	// Color is the optional base color drawn under the gradient; nil when absent.
	Color  *Color
	Stops  []Stop
	Repeat bool
	Angle  float64
}

func (*LinearGradient) paintMarker() {}

// Kind implements Paint.
func (*LinearGradient) Kind() Kind { return KindLinearGradient }

// RadialGradient is a gradient radiating from the center.
type RadialGradient struct {
	Base

	Stops  []Stop
	Repeat bool
}

func (*RadialGradient) paintMarker() {}

// Kind implements Paint.
func (*RadialGradient) Kind() Kind { return KindRadialGradient }

// URLImage paints the name with a remote image.
type URLImage struct {
	Base

	// Image is shared with the resolver that produced it and with every
	// other paint referencing the same URL.
	Image ImageHandle
}

func (*URLImage) paintMarker() {}

// Kind implements Paint.
func (*URLImage) Kind() Kind { return KindURL }

// ImageHandle is a lazily populated bitmap.
type ImageHandle interface {
	// URL returns the source URL.
	URL() string

	// Image returns the decoded bitmap, loading it on first use.
	Image() (image.Image, error)

	// Loaded reports whether a load attempt has completed.
	Loaded() bool
}

// ImageResolver maps an image URL and scale factor to a shared handle.
// Resolve returns nil when no handle can be produced.
type ImageResolver interface {
	Resolve(url string, scale float64) ImageHandle
}
