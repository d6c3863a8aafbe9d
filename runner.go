package phase

import "github.com/kestrelgames/phase/graph"

// FrameRecord is the telemetry row emitted for one system execution within
// one event firing.
type FrameRecord struct {
	// Token correlates all records of one firing.
	Token string `json:"token"`

	// Event is the name of the fired source's master phase.
	Event string `json:"event"`

	// System is the executed system's name.
	System string `json:"system"`

	// Seq is the system's 1-based position among the systems that actually
	// ran in this firing (paused and missing systems do not consume a seq).
	Seq int `json:"seq"`

	// Start and End are the monotonic clock samples bracketing the
	// invocation, in nanoseconds.
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// FrameRecorder receives one FrameRecord per executed system. Recorders
// run inside the frame loop and must not block; a slow recorder stalls the
// dispatch exactly like a slow system would.
type FrameRecorder interface {
	RecordFrame(rec FrameRecord)
}

// runner builds the closure attached to one event source. key is the
// source's identity, label the master phase's name (used for telemetry).
func (s *Scheduler) runner(key any, label string) Handler {
	return func(args ...any) {
		systems, ok := s.cache[key]
		if !ok || len(systems) == 0 {
			return
		}

		token := ""
		if s.recorder != nil {
			token = s.tokens.Generate()
		}

		seq := 0
		for _, id := range systems {
			e := graph.Entity(id)

			// The system may have been removed between the cache rebuild
			// and this firing; skip rather than fault.
			v, ok := s.store.Get(e, compSystem)
			if !ok {
				continue
			}
			st := v.(SystemState)
			if st.Paused {
				continue
			}

			// Snapshot the pre-run record first, so observers reading the
			// shadow during or after the run see last frame's state.
			s.store.Set(e, compPrevFrame, st)

			st.FrameStart = s.clock.Now()
			st.Fn(args...)
			st.FrameEnd = s.clock.Now()

			// Write back through the store so any hooks on its write path
			// observe the updated timestamps.
			s.store.Set(e, compSystem, st)

			if s.recorder != nil {
				seq++
				s.recorder.RecordFrame(FrameRecord{
					Token:  token,
					Event:  label,
					System: st.Name,
					Seq:    seq,
					Start:  st.FrameStart,
					End:    st.FrameEnd,
				})
			}
		}
	}
}
