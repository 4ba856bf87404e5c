// Package registry holds the live mapping from usernames to paints.
//
// The Registry keeps two maps behind one reader/writer lock:
//   - known paints, by paint id
//   - current assignments, by username
//
// Every assignment points at a paint instance held in the known map, so a
// paint assigned to many users is stored once and shared.
//
// # Mutation paths
//
// BulkMerge applies a full catalog: each parsed record replaces the known
// paint with that id and is assigned to every user the record lists.
//
// Live events use the incremental path. AddKnownPaint inserts a paint only
// if its id is new (the first definition wins), Assign points a user at an
// already-known paint, and Clear removes a user's assignment only when it
// still refers to the paint being revoked.
//
// None of the mutators return errors. Records that fail to parse, assigns
// for unknown paints and stale clears are dropped; pass an Observer with
// WithObserver to count them.
//
//	reg := registry.New(registry.WithImageResolver(images))
//	reg.BulkMerge(catalog.Paints)
//
//	if p, ok := reg.Lookup("alice"); ok {
//	    render(p)
//	}
package registry
