package phase

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgames/phase/graph"
)

// newTestScheduler builds a scheduler with a silent logger; tests assert
// on behavior, not log output.
func newTestScheduler(opts ...Option) *Scheduler {
	base := []Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	return New(append(base, opts...)...)
}

func TestPhase_DuplicateNameFails(t *testing.T) {
	s := newTestScheduler()
	sig := NewSignal()

	first, err := s.Phase("Update", sig)
	require.NoError(t, err)
	require.NotEqual(t, NoPhase, first)

	second, err := s.Phase("Update", NewSignal())
	require.Error(t, err)
	assert.Equal(t, NoPhase, second)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeDuplicatePhase, ce.Code)

	// The first phase's topology is unaffected.
	infos := s.Phases()
	require.Len(t, infos, 1)
	assert.Equal(t, "Update", infos[0].Name)
	assert.True(t, infos[0].Bound)
}

func TestPhase_ParentDependency(t *testing.T) {
	s := newTestScheduler()

	parent, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)

	child, err := s.Phase("PostUpdate", parent)
	require.NoError(t, err)
	require.NotEqual(t, NoPhase, child)

	infos := s.Phases()
	require.Len(t, infos, 2)
	assert.False(t, infos[1].Bound)
	assert.Equal(t, "Update", infos[1].Parent)
}

func TestPhase_UnknownParentHandleFails(t *testing.T) {
	s := newTestScheduler()

	_, err := s.Phase("Orphan", PhaseID(42))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeUnknownPhase, ce.Code)
	assert.Empty(t, s.Phases())
}

func TestPhase_SharedEventElection(t *testing.T) {
	s := newTestScheduler()
	sig := NewSignal()

	_, err := s.Phase("A", sig)
	require.NoError(t, err)
	_, err = s.Phase("B", sig)
	require.NoError(t, err)
	_, err = s.Phase("C", sig)
	require.NoError(t, err)

	infos := s.Phases()
	require.Len(t, infos, 3)

	// A keeps the binding; B and C collapse onto it as dependents.
	assert.True(t, infos[0].Bound)
	assert.False(t, infos[1].Bound)
	assert.Equal(t, "A", infos[1].Parent)
	assert.False(t, infos[2].Bound)
	assert.Equal(t, "A", infos[2].Parent)
}

func TestPhase_BadEventSourceFails(t *testing.T) {
	s := newTestScheduler()

	_, err := s.Phase("Update", 42)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeBadEventSource, ce.Code)
	assert.Equal(t, "Update", ce.Phase)
	assert.Empty(t, s.Phases())
}

func TestPhase_NonComparableSourceFails(t *testing.T) {
	s := newTestScheduler()

	// A value-typed source with a slice field satisfies Connector but
	// cannot serve as a cache key; it must fail at Phase, not fault later.
	_, err := s.Phase("Update", sliceConnector{})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeBadEventSource, ce.Code)
	assert.Empty(t, s.Phases())

	// The pointer form binds, and registering a system (which rebuilds the
	// cache keyed on the source identity) succeeds.
	_, err = s.Phase("Update", &sliceConnector{})
	require.NoError(t, err)
	_, err = s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)
}

func TestPhaseByName(t *testing.T) {
	s := newTestScheduler()
	id, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)

	got, ok := s.PhaseByName("Update")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = s.PhaseByName("nope")
	assert.False(t, ok)
}

func TestOn_UnknownPhaseFails(t *testing.T) {
	s := newTestScheduler()

	id, err := s.On("nope", func(args ...any) {})
	assert.Equal(t, NoSystem, id)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeUnknownPhase, ce.Code)
}

func TestOn_NilSystemFails(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)

	id, err := s.On("Update", nil)
	assert.Equal(t, NoSystem, id)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeNilSystem, ce.Code)
}

func TestOn_DuplicateNameReturnsSentinel(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)

	first, err := s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)
	require.NotEqual(t, NoSystem, first)

	// Soft failure: sentinel handle, nil error, first registration stays.
	second, err := s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)
	assert.Equal(t, NoSystem, second)

	infos := s.Systems()
	require.Len(t, infos, 1)
	assert.Equal(t, "mover", infos[0].Name)
}

func systemForNaming(args ...any) {}

func TestOn_DerivedName(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)

	id, err := s.On("Update", systemForNaming)
	require.NoError(t, err)
	require.NotEqual(t, NoSystem, id)

	infos := s.Systems()
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0].Name, "systemForNaming")
}

func TestRemove_ByNameAndByID(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)

	a, err := s.On("Update", func(args ...any) {}, WithName("a"))
	require.NoError(t, err)
	_, err = s.On("Update", func(args ...any) {}, WithName("b"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ByName("b")))
	require.NoError(t, s.Remove(ByID(a)))
	assert.Empty(t, s.Systems())

	// Removed names no longer resolve.
	_, ok := s.State(ByName("a"))
	assert.False(t, ok)
}

func TestRemove_UnknownIsNoOp(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Remove(ByName("ghost")))
	require.NoError(t, s.Remove(ByID(SystemID(404))))
}

func TestResolve_StaleHandleAfterSlotReuse(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)
	id, err := s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)

	// Removing frees the arena slot; the next phase creation reuses it, so
	// the stale handle now points at a phase entity.
	require.NoError(t, s.Remove(ByID(id)))
	late, err := s.Phase("Late", NewSignal())
	require.NoError(t, err)
	require.Equal(t, graph.Entity(id), graph.Entity(late))

	// The stale handle must not resolve: pausing is a warn no-op, not an
	// invariant breach against the recycled entity.
	require.NoError(t, s.Pause(ByID(id)))
	_, ok := s.State(ByID(id))
	assert.False(t, ok)

	infos := s.Phases()
	require.Len(t, infos, 2)
	assert.Equal(t, "Late", infos[1].Name)
}

func TestOn_FailedRebuildUnwindsRegistration(t *testing.T) {
	w := graph.NewWorld()
	s := newTestScheduler(WithStore(w))
	sig := NewSignal()

	p1, err := s.Phase("P1", sig)
	require.NoError(t, err)
	p2, err := s.Phase("P2", p1)
	require.NoError(t, err)

	_, err = s.On("P2", func(args ...any) {}, WithName("sys"))
	require.NoError(t, err)

	// Corrupt the injected store into a cycle so the next rebuild fails.
	w.Link(graph.Entity(p1), relDependsOn, graph.Entity(p2))

	late, err := s.On("P1", func(args ...any) {}, WithName("late"))
	require.Error(t, err)
	assert.Equal(t, NoSystem, late)

	// The failed registration left nothing behind: the node is gone, the
	// name is free, and only the surviving system is listed.
	_, ok := s.State(ByName("late"))
	assert.False(t, ok)
	infos := s.Systems()
	require.Len(t, infos, 1)
	assert.Equal(t, "sys", infos[0].Name)
}

func TestPauseUnpause(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)
	id, err := s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)

	require.NoError(t, s.Pause(ByName("mover")))
	st, ok := s.State(ByID(id))
	require.True(t, ok)
	assert.True(t, st.Paused)

	require.NoError(t, s.Unpause(ByID(id)))
	st, _ = s.State(ByID(id))
	assert.False(t, st.Paused)
}

func TestPauseUnpause_UnknownIsNoOp(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Pause(ByName("ghost")))
	require.NoError(t, s.Unpause(ByName("ghost")))
}

func TestPause_MissingStateRecordIsInvariantBreach(t *testing.T) {
	w := graph.NewWorld()
	s := newTestScheduler(WithStore(w))
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)
	id, err := s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)

	// Corrupt the store out from under the registry: the name still
	// resolves but its state record is gone.
	w.Remove(graph.Entity(id), compSystem)

	err = s.Pause(ByName("mover"))
	require.Error(t, err)
	assert.True(t, IsInvariantError(err))
}

func TestState_BeforeAnyRun(t *testing.T) {
	s := newTestScheduler()
	_, err := s.Phase("Update", NewSignal())
	require.NoError(t, err)
	id, err := s.On("Update", func(args ...any) {}, WithName("mover"))
	require.NoError(t, err)

	st, ok := s.State(ByID(id))
	require.True(t, ok)
	assert.Equal(t, "mover", st.Name)
	assert.Zero(t, st.FrameStart)
	assert.Zero(t, st.FrameEnd)
	assert.False(t, st.Paused)
	assert.False(t, st.Propagated)

	_, ok = s.PreviousFrame(ByID(id))
	assert.False(t, ok, "no shadow before the first run")
}

func TestStart_SecondCallIsNoOp(t *testing.T) {
	s := newTestScheduler()
	sig := NewSignal()
	_, err := s.Phase("Update", sig)
	require.NoError(t, err)

	ran := 0
	_, err = s.On("Update", func(args ...any) { ran++ }, WithName("mover"))
	require.NoError(t, err)

	s.Start()
	s.Start() // must not double-subscribe
	sig.Emit()
	assert.Equal(t, 1, ran)
}
