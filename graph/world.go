package graph

// Entity identifies a node in the world. It is an index into the arena and
// is only meaningful for the World that issued it.
type Entity int32

// NoEntity is the zero-value-adjacent sentinel for "no entity".
const NoEntity Entity = -1

// ComponentID keys a typed component slot on an entity.
type ComponentID uint8

// RelationID keys a directed link between two entities.
type RelationID uint8

// record is one arena slot. Dead slots stay in place and are recycled
// through the free list.
type record struct {
	alive bool
	comps map[ComponentID]any
	links map[RelationID]Entity
}

// World is the arena of entities, components, and links.
//
// All methods that take an Entity tolerate dead or out-of-range handles:
// reads report absence, writes are dropped. This keeps the defensive
// "fetch then skip" paths in callers free of bounds bookkeeping.
type World struct {
	records []record
	free    []Entity
	live    int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Create allocates a new entity, reusing a dead slot when one is available.
func (w *World) Create() Entity {
	var e Entity
	if n := len(w.free); n > 0 {
		e = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.records = append(w.records, record{})
		e = Entity(len(w.records) - 1)
	}
	w.records[e] = record{
		alive: true,
		comps: make(map[ComponentID]any),
		links: make(map[RelationID]Entity),
	}
	w.live++
	return e
}

// Delete destroys an entity together with its components and outgoing
// links. Incoming links from other entities are left dangling; lookups
// through them report absence.
func (w *World) Delete(e Entity) {
	if !w.Alive(e) {
		return
	}
	w.records[e] = record{}
	w.free = append(w.free, e)
	w.live--
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool {
	return e >= 0 && int(e) < len(w.records) && w.records[e].alive
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.live
}

// Set stores component c on e, replacing any previous value.
func (w *World) Set(e Entity, c ComponentID, v any) {
	if !w.Alive(e) {
		return
	}
	w.records[e].comps[c] = v
}

// Get returns the value of component c on e.
func (w *World) Get(e Entity, c ComponentID) (any, bool) {
	if !w.Alive(e) {
		return nil, false
	}
	v, ok := w.records[e].comps[c]
	return v, ok
}

// Remove deletes component c from e. Removing an absent component is a no-op.
func (w *World) Remove(e Entity, c ComponentID) {
	if !w.Alive(e) {
		return
	}
	delete(w.records[e].comps, c)
}

// Link records the directed relation (e)-[r]->(target), replacing any
// previous target for r on e.
func (w *World) Link(e Entity, r RelationID, target Entity) {
	if !w.Alive(e) || !w.Alive(target) {
		return
	}
	w.records[e].links[r] = target
}

// Unlink removes relation r from e.
func (w *World) Unlink(e Entity, r RelationID) {
	if !w.Alive(e) {
		return
	}
	delete(w.records[e].links, r)
}

// Target returns the target of relation r on e. Absence is reported both
// when r is unset and when the recorded target has since been deleted.
func (w *World) Target(e Entity, r RelationID) (Entity, bool) {
	if !w.Alive(e) {
		return NoEntity, false
	}
	t, ok := w.records[e].links[r]
	if !ok || !w.Alive(t) {
		return NoEntity, false
	}
	return t, true
}

// Each visits every live entity carrying component c, in store order.
// The visit stops early when fn returns false.
func (w *World) Each(c ComponentID, fn func(Entity) bool) {
	for i := range w.records {
		if !w.records[i].alive {
			continue
		}
		if _, ok := w.records[i].comps[c]; !ok {
			continue
		}
		if !fn(Entity(i)) {
			return
		}
	}
}

// EachLinked visits every live entity that carries component c and is
// linked to target through relation r, in store order. The visit stops
// early when fn returns false.
func (w *World) EachLinked(c ComponentID, r RelationID, target Entity, fn func(Entity) bool) {
	for i := range w.records {
		if !w.records[i].alive {
			continue
		}
		if _, ok := w.records[i].comps[c]; !ok {
			continue
		}
		if t, ok := w.records[i].links[r]; !ok || t != target {
			continue
		}
		if !fn(Entity(i)) {
			return
		}
	}
}
