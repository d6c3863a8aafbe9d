package phase

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"

	"github.com/kestrelgames/phase/graph"
)

// SystemFunc is one registered unit of work. The arguments its owning
// event fires with are forwarded verbatim.
type SystemFunc func(args ...any)

// SystemRef addresses a system by name or by handle. Build one with ByName
// or ByID; every CRUD operation resolves it to a canonical handle first.
type SystemRef struct {
	name string
	id   SystemID
	byID bool
}

// ByName addresses a system by its registered name.
func ByName(name string) SystemRef {
	return SystemRef{name: name}
}

// ByID addresses a system by the handle On returned.
func ByID(id SystemID) SystemRef {
	return SystemRef{id: id, byID: true}
}

func (r SystemRef) String() string {
	if r.byID {
		return fmt.Sprintf("system#%d", r.id)
	}
	return r.name
}

// systemConfig collects per-registration options.
type systemConfig struct {
	name string
}

// SystemOption configures a system registration.
type SystemOption func(*systemConfig)

// WithName sets an explicit, stable system name. Preferred over the
// derived default: symbol names of anonymous functions depend on compiler
// numbering and move under refactors.
func WithName(name string) SystemOption {
	return func(c *systemConfig) { c.name = name }
}

// deriveName falls back to the callable's linker symbol, and to its
// defining source position when no symbol is available.
func deriveName(fn SystemFunc) string {
	pc := reflect.ValueOf(fn).Pointer()
	rf := runtime.FuncForPC(pc)
	if rf == nil {
		return fmt.Sprintf("system@%#x", pc)
	}
	if name := rf.Name(); name != "" {
		return name
	}
	file, line := rf.FileLine(rf.Entry())
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// On registers fn as a system under the named phase and rebuilds the
// runnable cache before returning.
//
// The system's name comes from WithName, or is derived from the callable's
// symbol. An unknown phase fails with *ConfigError. A duplicate name is
// NOT an error: it logs a warning and returns the NoSystem sentinel,
// leaving the existing registration in place. The scheduler favors
// availability here; a misdeclared system should not take the host down.
func (s *Scheduler) On(phaseName string, fn SystemFunc, opts ...SystemOption) (SystemID, error) {
	if fn == nil {
		return NoSystem, &ConfigError{
			Code:    CodeNilSystem,
			Message: "system callable is nil",
			Phase:   phaseName,
		}
	}
	ph, ok := s.phases[phaseName]
	if !ok {
		return NoSystem, newUnknownPhaseError(phaseName)
	}

	cfg := systemConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	name := cfg.name
	if name == "" {
		name = deriveName(fn)
	}

	if _, exists := s.systems[name]; exists {
		s.log.Warn("system name already registered", "system", name, "phase", phaseName)
		return NoSystem, nil
	}

	e := s.store.Create()
	s.store.Set(e, compSystem, SystemState{Name: name, Fn: fn})
	s.store.Link(e, relDependsOn, graph.Entity(ph))
	s.systems[name] = SystemID(e)

	if err := s.rebuild(); err != nil {
		// Unwind so a failed registration leaves no trace: the node is
		// gone, the name is free, and the previous cache still stands.
		s.store.Delete(e)
		delete(s.systems, name)
		return NoSystem, err
	}
	return SystemID(e), nil
}

// Remove deletes a system and rebuilds the runnable cache. An unknown
// reference logs a warning and is a no-op.
func (s *Scheduler) Remove(ref SystemRef) error {
	id, ok := s.resolve(ref)
	if !ok {
		s.log.Warn("remove: system not found", "ref", ref.String())
		return nil
	}
	v, _ := s.store.Get(graph.Entity(id), compSystem)
	if st, ok := v.(SystemState); ok {
		delete(s.systems, st.Name)
	}
	s.store.Delete(graph.Entity(id))
	return s.rebuild()
}

// Pause suppresses a system's invocation until Unpause. Advisory: a system
// already executing is never interrupted. An unknown reference logs a
// warning and is a no-op. Pausing never rebuilds the cache; the topology
// is unchanged.
func (s *Scheduler) Pause(ref SystemRef) error {
	return s.setPaused(ref, true)
}

// Unpause re-enables a paused system. An unknown reference logs a warning
// and is a no-op.
func (s *Scheduler) Unpause(ref SystemRef) error {
	return s.setPaused(ref, false)
}

func (s *Scheduler) setPaused(ref SystemRef, paused bool) error {
	id, ok := s.resolve(ref)
	if !ok {
		s.log.Warn("pause: system not found", "ref", ref.String(), "paused", paused)
		return nil
	}
	v, ok := s.store.Get(graph.Entity(id), compSystem)
	if !ok {
		// A resolvable handle without a state record is a bug in the
		// scheduler, not a caller error.
		return newInvariantError(ref.String())
	}
	st := v.(SystemState)
	st.Paused = paused
	s.store.Set(graph.Entity(id), compSystem, st)
	return nil
}

// resolve maps a SystemRef to a live handle. Liveness alone does not
// validate a raw handle: the arena recycles slots, so a handle held across
// a Remove can point at an entity of another kind. A handle only resolves
// while its entity still carries a system record.
func (s *Scheduler) resolve(ref SystemRef) (SystemID, bool) {
	if ref.byID {
		if _, ok := s.store.Get(graph.Entity(ref.id), compSystem); !ok {
			return NoSystem, false
		}
		return ref.id, true
	}
	id, ok := s.systems[ref.name]
	return id, ok
}
