package phase

import "github.com/kestrelgames/phase/graph"

// collectSystems flattens the phase subtree rooted at ph into acc,
// depth-first and pre-order: ph's own systems first (store order), then
// each child phase's subtree, siblings in store order. Systems are never
// deduplicated; a system depends on exactly one phase, so duplicates
// cannot occur while the topology invariants hold.
//
// The visited set guards against dependency cycles. The public API cannot
// construct one (a phase's parent always predates it), but the store is
// injectable, and unbounded recursion is a worse failure mode than an
// error.
func (s *Scheduler) collectSystems(acc []SystemID, ph graph.Entity, visited map[graph.Entity]bool) ([]SystemID, error) {
	if visited[ph] {
		name := ""
		if v, ok := s.store.Get(ph, compPhase); ok {
			name = v.(phaseState).Name
		}
		return acc, newCycleError(name)
	}
	visited[ph] = true

	s.store.EachLinked(compSystem, relDependsOn, ph, func(e graph.Entity) bool {
		acc = append(acc, SystemID(e))
		return true
	})

	var err error
	s.store.EachLinked(compPhase, relDependsOn, ph, func(e graph.Entity) bool {
		acc, err = s.collectSystems(acc, e, visited)
		return err == nil
	})
	return acc, err
}

// rebuild recomputes the runnable cache for every event-bound phase. Full
// rebuild, not incremental: cost is proportional to phases x systems,
// which is acceptable because registration and removal are rare next to
// per-frame execution.
//
// The new cache is swapped in only on success, so a failed rebuild leaves
// the previous (still internally consistent) cache in place.
func (s *Scheduler) rebuild() error {
	next := make(map[any][]SystemID)
	var err error
	s.store.Each(compPhase, func(e graph.Entity) bool {
		v, _ := s.store.Get(e, compPhase)
		ps := v.(phaseState)
		if ps.Source == nil {
			return true
		}
		var list []SystemID
		list, err = s.collectSystems(nil, e, make(map[graph.Entity]bool))
		if err != nil {
			return false
		}
		next[eventIdentity(ps.Source)] = list
		return true
	})
	if err != nil {
		return err
	}
	s.cache = next
	return nil
}
