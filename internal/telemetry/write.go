package telemetry

import (
	"log/slog"

	"github.com/kestrelgames/phase"
)

// RecordFrame implements phase.FrameRecorder.
//
// Recorders run inside the frame loop and cannot return an error to the
// scheduler, so a failed insert is logged and dropped. Losing a telemetry
// row must never abort the frame that produced it.
func (s *Store) RecordFrame(rec phase.FrameRecord) {
	_, err := s.db.Exec(
		`INSERT INTO frames (token, event, system, seq, start_ns, end_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Token, rec.Event, rec.System, rec.Seq, rec.Start, rec.End,
	)
	if err != nil {
		slog.Error("failed to record frame",
			"error", err,
			"token", rec.Token,
			"system", rec.System,
		)
	}
}
