package registry

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chatpaint/paintd/pkg/paint"
)

// Registry is a concurrent store of known paints and username assignments.
type Registry struct {
	mu       sync.RWMutex
	known    map[string]paint.Paint
	assigned map[string]paint.Paint

	images   paint.ImageResolver
	observer Observer
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithImageResolver sets the resolver used for url paints. Without one,
// url paints never parse.
func WithImageResolver(r paint.ImageResolver) Option {
	return func(reg *Registry) {
		reg.images = r
	}
}

// WithObserver sets the observer notified of dropped records and events.
func WithObserver(o Observer) Option {
	return func(reg *Registry) {
		if o != nil {
			reg.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(reg *Registry) {
		if l != nil {
			reg.logger = l
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		known:    make(map[string]paint.Paint),
		assigned: make(map[string]paint.Paint),
		observer: NopObserver{},
		logger:   slog.Default().With("component", "registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats reports registry sizes.
type Stats struct {
	KnownPaints int `json:"known_paints"`
	Assignments int `json:"assignments"`
}

// MergeResult summarizes one BulkMerge.
type MergeResult struct {
	Parsed   int `json:"parsed"`
	Skipped  int `json:"skipped"`
	Assigned int `json:"assigned"`
}

// Lookup returns the paint currently assigned to username.
func (r *Registry) Lookup(username string) (paint.Paint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.assigned[username]
	return p, ok
}

// Paint returns the known paint with the given id.
func (r *Registry) Paint(id string) (paint.Paint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.known[id]
	return p, ok
}

// Stats returns the current registry sizes.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.statsLocked()
}

func (r *Registry) statsLocked() Stats {
	return Stats{KnownPaints: len(r.known), Assignments: len(r.assigned)}
}

// AddKnownPaint parses rec and stores it unless a paint with the same id is
// already known. The first definition of an id wins, so a late duplicate
// cannot change a paint users already have.
func (r *Registry) AddKnownPaint(rec paint.Record) {
	id := rec.String("id")

	if r.has(id) {
		r.observer.DuplicatePaint(id)
		return
	}

	// Parse outside the lock; image resolution may be slow.
	p, err := paint.Parse(rec, r.images)
	if err != nil {
		r.skip(id, err)
		return
	}

	r.mu.Lock()
	if _, exists := r.known[id]; exists {
		r.mu.Unlock()
		r.observer.DuplicatePaint(id)
		return
	}
	r.known[id] = p
	r.mu.Unlock()

	r.logger.Debug("paint added", "paint_id", id, "kind", p.Kind())
}

func (r *Registry) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.known[id]
	return ok
}

// Assign points username at the known paint paintID, replacing any
// previous assignment. Unknown paint ids are ignored.
func (r *Registry) Assign(paintID, username string) {
	r.mu.Lock()
	p, ok := r.known[paintID]
	if ok {
		r.assigned[username] = p
	}
	r.mu.Unlock()

	if !ok {
		r.observer.AssignmentDropped(paintID)
		r.logger.Debug("assignment for unknown paint dropped", "paint_id", paintID, "user", username)
	}
}

// Clear removes username's assignment if it currently refers to paintID.
// A clear for any other paint is stale and ignored.
func (r *Registry) Clear(paintID, username string) {
	r.mu.Lock()
	p, ok := r.assigned[username]
	matched := ok && p.PaintID() == paintID
	if matched {
		delete(r.assigned, username)
	}
	r.mu.Unlock()

	if !matched {
		r.observer.ClearIgnored(paintID)
	}
}

type parsedRecord struct {
	paint paint.Paint
	users []string
}

// BulkMerge applies a catalog batch. Each record that parses replaces the
// known paint with its id and is assigned to every username in its
// "users" list. Records that fail to parse are skipped without affecting
// the rest of the batch.
//
// All records are parsed before the write lock is taken; the lock is then
// held across the whole batch so readers see either none or all of it.
func (r *Registry) BulkMerge(records []paint.Record) MergeResult {
	start := time.Now()

	var result MergeResult
	parsed := make([]parsedRecord, 0, len(records))
	for _, rec := range records {
		p, err := paint.Parse(rec, r.images)
		if err != nil {
			result.Skipped++
			r.skip(rec.String("id"), err)
			continue
		}
		parsed = append(parsed, parsedRecord{paint: p, users: rec.Strings("users")})
	}
	result.Parsed = len(parsed)

	r.mu.Lock()
	for _, pr := range parsed {
		r.known[pr.paint.PaintID()] = pr.paint
		for _, user := range pr.users {
			r.assigned[user] = pr.paint
		}
		result.Assigned += len(pr.users)
	}
	stats := r.statsLocked()
	r.mu.Unlock()

	elapsed := time.Since(start)
	r.observer.BulkMerged(result, elapsed)
	r.logger.Info("catalog merged",
		"parsed", result.Parsed,
		"skipped", result.Skipped,
		"assigned", result.Assigned,
		"known_paints", stats.KnownPaints,
		"duration", elapsed)

	return result
}

func (r *Registry) skip(id string, err error) {
	reason := SkipOther
	switch {
	case errors.Is(err, paint.ErrUnknownFunction):
		reason = SkipUnknownFunction
	case errors.Is(err, paint.ErrImageUnresolved):
		reason = SkipImageUnresolved
	}
	r.observer.PaintSkipped(id, reason)
	r.logger.Debug("paint record skipped", "paint_id", id, "reason", reason, "error", err)
}
