package phase

import (
	"log/slog"

	"github.com/kestrelgames/phase/graph"
)

// PhaseID is the handle of a registered phase.
type PhaseID graph.Entity

// SystemID is the handle of a registered system.
type SystemID graph.Entity

// NoPhase is the sentinel phase handle.
const NoPhase PhaseID = PhaseID(graph.NoEntity)

// NoSystem is the sentinel system handle, returned by On when the derived
// system name is already registered.
const NoSystem SystemID = SystemID(graph.NoEntity)

// Component and relation IDs the scheduler reserves on its store.
const (
	compPhase graph.ComponentID = iota + 1
	compSystem
	compPrevFrame
)

const relDependsOn graph.RelationID = 1

// Store is the entity-component capability the scheduler builds its
// topology on. graph.World is the default implementation; WithStore swaps
// in another. Iteration order of Each and EachLinked is store-defined and
// drives the resolver's sibling ordering.
type Store interface {
	Create() graph.Entity
	Delete(e graph.Entity)
	Alive(e graph.Entity) bool
	Set(e graph.Entity, c graph.ComponentID, v any)
	Get(e graph.Entity, c graph.ComponentID) (any, bool)
	Remove(e graph.Entity, c graph.ComponentID)
	Link(e graph.Entity, r graph.RelationID, target graph.Entity)
	Target(e graph.Entity, r graph.RelationID) (graph.Entity, bool)
	Each(c graph.ComponentID, fn func(graph.Entity) bool)
	EachLinked(c graph.ComponentID, r graph.RelationID, target graph.Entity, fn func(graph.Entity) bool)
}

// phaseState is the component attached to every phase entity.
// Exactly one of {Source, parent link} is set, at creation, immutably.
type phaseState struct {
	Name    string
	Source  any          // nil when the phase depends on a parent
	binding eventBinding // resolved attachment, meaningful when Source != nil
}

// SystemState is the component attached to every system entity. The
// previous-frame shadow (see Scheduler.PreviousFrame) is a copy of this
// record taken immediately before the system's most recent invocation.
type SystemState struct {
	// Name uniquely identifies the system across the scheduler.
	Name string

	// Fn is the registered callable.
	Fn SystemFunc

	// Paused suppresses invocation. Advisory: checked at the top of each
	// per-system iteration, never mid-execution.
	Paused bool

	// FrameStart and FrameEnd are monotonic clock samples bracketing the
	// most recent invocation. Zero until the system first runs.
	FrameStart int64
	FrameEnd   int64

	// Propagated is reserved for downstream consumers; the scheduler
	// stores it but never reads it.
	Propagated bool
}

// Scheduler owns the phase/system topology and dispatches cached runnable
// lists when bound event sources fire.
//
// A Scheduler is not safe for concurrent use. Registry mutations and event
// firings must be serialized on one logical thread; the runnable cache
// rebuild is not atomic with respect to a concurrently iterating runner.
type Scheduler struct {
	store    Store
	clock    Clock
	log      *slog.Logger
	recorder FrameRecorder
	tokens   TokenGenerator

	phases  map[string]PhaseID
	systems map[string]SystemID
	cache   map[any][]SystemID

	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStore replaces the default in-memory graph store.
func WithStore(s Store) Option {
	return func(sc *Scheduler) { sc.store = s }
}

// WithClock replaces the default monotonic clock.
func WithClock(c Clock) Option {
	return func(sc *Scheduler) { sc.clock = c }
}

// WithLogger replaces the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *Scheduler) { sc.log = l }
}

// WithRecorder attaches a frame recorder. Every executed system emits one
// FrameRecord to it. Nil (the default) disables recording.
func WithRecorder(r FrameRecorder) Option {
	return func(sc *Scheduler) { sc.recorder = r }
}

// WithTokenGenerator replaces the default UUIDv7 firing-token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(sc *Scheduler) { sc.tokens = g }
}

// New creates a Scheduler with an empty topology.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		store:   graph.NewWorld(),
		clock:   newMonotonicClock(),
		log:     slog.Default(),
		tokens:  UUIDv7Generator{},
		phases:  make(map[string]PhaseID),
		systems: make(map[string]SystemID),
		cache:   make(map[any][]SystemID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase creates a named phase. src is either a PhaseID, making the new
// phase a dependent of that parent, or an event source in one of the
// supported shapes (func(Handler), Connector, Subscriber).
//
// If another phase is already bound to the same source identity, the new
// phase is linked as a dependent of that master phase instead of binding
// the source twice; one firing still reaches both transitively.
//
// Duplicate names, unknown parent handles, and unsupported source shapes
// fail with *ConfigError and leave the topology untouched.
func (s *Scheduler) Phase(name string, src any) (PhaseID, error) {
	if _, exists := s.phases[name]; exists {
		return NoPhase, newDuplicatePhaseError(name)
	}

	if parent, ok := src.(PhaseID); ok {
		if !s.store.Alive(graph.Entity(parent)) {
			return NoPhase, newUnknownPhaseError(name)
		}
		e := s.store.Create()
		s.store.Set(e, compPhase, phaseState{Name: name})
		s.store.Link(e, relDependsOn, graph.Entity(parent))
		s.phases[name] = PhaseID(e)
		return PhaseID(e), nil
	}

	binding, err := resolveEventSource(src)
	if err != nil {
		cfg := err.(*ConfigError)
		cfg.Phase = name
		return NoPhase, cfg
	}

	// Election: the first phase bound to a source stays its master; later
	// phases requesting the same source become its dependents.
	key := eventIdentity(src)
	master := graph.NoEntity
	s.store.Each(compPhase, func(e graph.Entity) bool {
		v, _ := s.store.Get(e, compPhase)
		ps := v.(phaseState)
		if ps.Source != nil && eventIdentity(ps.Source) == key {
			master = e
			return false
		}
		return true
	})

	e := s.store.Create()
	if master != graph.NoEntity {
		s.store.Set(e, compPhase, phaseState{Name: name})
		s.store.Link(e, relDependsOn, master)
	} else {
		s.store.Set(e, compPhase, phaseState{Name: name, Source: src, binding: binding})
	}
	s.phases[name] = PhaseID(e)
	return PhaseID(e), nil
}

// Start attaches one runner to every event-bound phase's source. Intended
// to run exactly once, after all phases and systems are declared; a second
// call logs a warning and does nothing.
func (s *Scheduler) Start() {
	if s.started {
		s.log.Warn("scheduler already started")
		return
	}
	s.started = true

	s.store.Each(compPhase, func(e graph.Entity) bool {
		v, _ := s.store.Get(e, compPhase)
		ps := v.(phaseState)
		if ps.Source == nil {
			return true
		}
		ps.binding.attach(s.runner(eventIdentity(ps.Source), ps.Name))
		return true
	})
}

// PhaseByName returns the handle of a registered phase.
func (s *Scheduler) PhaseByName(name string) (PhaseID, bool) {
	id, ok := s.phases[name]
	return id, ok
}

// PhaseInfo is a topology summary row for one phase.
type PhaseInfo struct {
	// Name is the phase's registered name.
	Name string

	// Bound reports whether the phase is bound to an event source (it is
	// a master). When false, Parent names the phase it depends on.
	Bound bool

	// Parent is the name of the parent phase, empty for bound phases.
	Parent string
}

// Phases returns a summary of every phase, in store order.
func (s *Scheduler) Phases() []PhaseInfo {
	var out []PhaseInfo
	s.store.Each(compPhase, func(e graph.Entity) bool {
		v, _ := s.store.Get(e, compPhase)
		ps := v.(phaseState)
		info := PhaseInfo{Name: ps.Name, Bound: ps.Source != nil}
		if t, ok := s.store.Target(e, relDependsOn); ok {
			if pv, ok := s.store.Get(t, compPhase); ok {
				info.Parent = pv.(phaseState).Name
			}
		}
		out = append(out, info)
		return true
	})
	return out
}

// SystemInfo is a topology summary row for one system.
type SystemInfo struct {
	Name   string
	Phase  string
	Paused bool
}

// Systems returns a summary of every registered system, in store order.
func (s *Scheduler) Systems() []SystemInfo {
	var out []SystemInfo
	s.store.Each(compSystem, func(e graph.Entity) bool {
		v, _ := s.store.Get(e, compSystem)
		st := v.(SystemState)
		info := SystemInfo{Name: st.Name, Paused: st.Paused}
		if t, ok := s.store.Target(e, relDependsOn); ok {
			if pv, ok := s.store.Get(t, compPhase); ok {
				info.Phase = pv.(phaseState).Name
			}
		}
		out = append(out, info)
		return true
	})
	return out
}

// State returns a copy of the system's current state record.
func (s *Scheduler) State(ref SystemRef) (SystemState, bool) {
	id, ok := s.resolve(ref)
	if !ok {
		return SystemState{}, false
	}
	v, ok := s.store.Get(graph.Entity(id), compSystem)
	if !ok {
		return SystemState{}, false
	}
	return v.(SystemState), true
}

// PreviousFrame returns the system's previous-frame shadow: a copy of its
// state record exactly as it was before the most recent invocation. The
// second return is false until the system has run at least once.
func (s *Scheduler) PreviousFrame(ref SystemRef) (SystemState, bool) {
	id, ok := s.resolve(ref)
	if !ok {
		return SystemState{}, false
	}
	v, ok := s.store.Get(graph.Entity(id), compPrevFrame)
	if !ok {
		return SystemState{}, false
	}
	return v.(SystemState), true
}
