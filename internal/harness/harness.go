package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kestrelgames/phase"
	"github.com/kestrelgames/phase/internal/testutil"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Errors lists assertion failures, one entry per failed assertion.
	Errors []string

	// Trace is the full frame trace, in execution order.
	Trace []phase.FrameRecord
}

// traceRecorder collects frame records in memory for assertion and golden
// comparison.
type traceRecorder struct {
	frames []phase.FrameRecord
}

func (r *traceRecorder) RecordFrame(rec phase.FrameRecord) {
	r.frames = append(r.frames, rec)
}

// Run executes a scenario against a real scheduler and returns the result.
//
// Each run builds a fresh scheduler with a deterministic clock and fixed
// firing tokens ("firing-1", "firing-2", ...), so repeated runs of the
// same scenario produce identical traces. Scheduler warnings are silenced;
// a scenario that exercises warn paths still asserts on the trace, not on
// log output.
func Run(scenario *Scenario) (*Result, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	tokens := make([]string, scenario.FireCount())
	for i := range tokens {
		tokens[i] = fmt.Sprintf("firing-%d", i+1)
	}

	rec := &traceRecorder{}
	sched := phase.New(
		phase.WithClock(testutil.NewDeterministicClock(1)),
		phase.WithRecorder(rec),
		phase.WithTokenGenerator(phase.NewFixedTokenGenerator(tokens...)),
		phase.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	signals := make(map[string]*phase.Signal)
	for _, p := range scenario.Phases {
		if p.Event != "" {
			sig, ok := signals[p.Event]
			if !ok {
				sig = phase.NewSignal()
				signals[p.Event] = sig
			}
			if _, err := sched.Phase(p.Name, sig); err != nil {
				return nil, fmt.Errorf("phase %q: %w", p.Name, err)
			}
			continue
		}
		parent, ok := sched.PhaseByName(p.After)
		if !ok {
			return nil, fmt.Errorf("phase %q: parent %q not registered", p.Name, p.After)
		}
		if _, err := sched.Phase(p.Name, parent); err != nil {
			return nil, fmt.Errorf("phase %q: %w", p.Name, err)
		}
	}

	for _, decl := range scenario.Systems {
		// Stub body; the recorder observes execution through the runner.
		if _, err := sched.On(decl.Phase, func(args ...any) {}, phase.WithName(decl.Name)); err != nil {
			return nil, fmt.Errorf("system %q: %w", decl.Name, err)
		}
	}

	sched.Start()

	for i, st := range scenario.Steps {
		var err error
		switch {
		case st.Fire != "":
			signals[st.Fire].Emit(st.Args...)
		case st.Pause != "":
			err = sched.Pause(phase.ByName(st.Pause))
		case st.Unpause != "":
			err = sched.Unpause(phase.ByName(st.Unpause))
		case st.Remove != "":
			err = sched.Remove(phase.ByName(st.Remove))
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result := &Result{Pass: true, Trace: rec.frames}
	for _, a := range scenario.Assertions {
		if err := evaluate(rec.frames, a); err != nil {
			result.Pass = false
			result.Errors = append(result.Errors, err.Error())
		}
	}
	return result, nil
}
