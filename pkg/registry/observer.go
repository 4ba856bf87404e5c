package registry

import "time"

// SkipReason classifies why a record did not produce a paint.
type SkipReason string

const (
	SkipUnknownFunction SkipReason = "unknown_function"
	SkipImageUnresolved SkipReason = "image_unresolved"
	SkipOther           SkipReason = "other"
)

// Observer receives the events the registry otherwise absorbs silently.
// Implementations must be safe for concurrent use. Methods are called after
// the registry lock is released.
type Observer interface {
	// PaintSkipped is called when a record fails to parse.
	PaintSkipped(paintID string, reason SkipReason)

	// DuplicatePaint is called when AddKnownPaint ignores an existing id.
	DuplicatePaint(paintID string)

	// AssignmentDropped is called when Assign names an unknown paint.
	AssignmentDropped(paintID string)

	// ClearIgnored is called when Clear does not match the current assignment.
	ClearIgnored(paintID string)

	// BulkMerged is called after each BulkMerge.
	BulkMerged(result MergeResult, elapsed time.Duration)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PaintSkipped(string, SkipReason)       {}
func (NopObserver) DuplicatePaint(string)                 {}
func (NopObserver) AssignmentDropped(string)              {}
func (NopObserver) ClearIgnored(string)                   {}
func (NopObserver) BulkMerged(MergeResult, time.Duration) {}
