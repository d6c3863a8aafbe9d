package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelgames/phase"
	"github.com/kestrelgames/phase/internal/telemetry"
)

// runSummary aggregates frame records per system for the run report.
type runSummary struct {
	order []string
	bySys map[string]*systemSummary
}

type systemSummary struct {
	System  string `json:"system"`
	Runs    int    `json:"runs"`
	TotalNs int64  `json:"total_ns"`
	LastNs  int64  `json:"last_ns"`
}

func newRunSummary() *runSummary {
	return &runSummary{bySys: make(map[string]*systemSummary)}
}

// RecordFrame implements phase.FrameRecorder.
func (s *runSummary) RecordFrame(rec phase.FrameRecord) {
	sum, ok := s.bySys[rec.System]
	if !ok {
		sum = &systemSummary{System: rec.System}
		s.bySys[rec.System] = sum
		s.order = append(s.order, rec.System)
	}
	d := rec.End - rec.Start
	sum.Runs++
	sum.TotalNs += d
	sum.LastNs = d
}

// multiRecorder fans one frame record out to several recorders.
type multiRecorder []phase.FrameRecorder

// RecordFrame implements phase.FrameRecorder.
func (m multiRecorder) RecordFrame(rec phase.FrameRecord) {
	for _, r := range m {
		r.RecordFrame(rec)
	}
}

// NewRunCommand creates the run command: build a schedule from its
// definition with stub systems, fire every declared event for a number of
// frames, and report per-system timing. With --db, the frame trace is also
// persisted for later inspection via the trace command.
func NewRunCommand(root *RootOptions) *cobra.Command {
	var (
		frames int
		dt     float64
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "run <schedule-file>",
		Short: "Execute a schedule with stub systems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames < 1 {
				return fmt.Errorf("--frames must be at least 1")
			}

			spec, err := LoadSchedule(args[0])
			if err != nil {
				return err
			}

			summary := newRunSummary()
			recorder := phase.FrameRecorder(summary)
			if dbPath != "" {
				store, err := telemetry.Open(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				recorder = multiRecorder{summary, store}
			}

			sched, signals, err := BuildSchedule(spec, phase.WithRecorder(recorder))
			if err != nil {
				return err
			}
			sched.Start()

			events := spec.EventNames()
			started := time.Now()
			for frame := 0; frame < frames; frame++ {
				for _, name := range events {
					signals[name].Emit(dt)
				}
			}
			elapsed := time.Since(started)

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				report := struct {
					Schedule string           `json:"schedule"`
					Frames   int              `json:"frames"`
					Systems  []*systemSummary `json:"systems"`
				}{Schedule: spec.Name, Frames: frames}
				for _, name := range summary.order {
					report.Systems = append(report.Systems, summary.bySys[name])
				}
				return printJSON(out, report)
			}

			fmt.Fprintf(out, "schedule %q: %d frame(s) in %s\n", spec.Name, frames, elapsed)
			tw := newTable(out)
			row(tw, "SYSTEM", "RUNS", "LAST", "TOTAL")
			for _, name := range summary.order {
				sum := summary.bySys[name]
				row(tw, sum.System, sum.Runs,
					time.Duration(sum.LastNs), time.Duration(sum.TotalNs))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 1, "number of frames to execute")
	cmd.Flags().Float64Var(&dt, "dt", 0.016, "delta-time argument passed to each firing")
	cmd.Flags().StringVar(&dbPath, "db", "", "record the frame trace to this SQLite database")
	return cmd
}
