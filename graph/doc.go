// Package graph provides the arena-backed entity-component store the
// scheduler builds its topology on.
//
// Entities are integer indices into an arena. Components are typed slots
// keyed by small integer IDs and hold arbitrary values. Relations are
// directed links between entities with at most one target per
// (entity, relation) pair.
//
// Iteration order over entities is store-defined: live entities are visited
// in ascending arena index, which usually matches creation order but is NOT
// guaranteed stable once slots are recycled. Callers must not rely on it.
//
// The store performs no locking. The scheduler's single-threaded model
// (see package phase) extends to the store it owns.
package graph
