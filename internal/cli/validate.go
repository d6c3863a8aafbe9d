package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelgames/phase"
)

// validateReport is the machine-readable output of the validate command.
type validateReport struct {
	Schedule string             `json:"schedule"`
	Valid    bool               `json:"valid"`
	Error    string             `json:"error,omitempty"`
	Phases   []phase.PhaseInfo  `json:"phases,omitempty"`
	Systems  []phase.SystemInfo `json:"systems,omitempty"`
}

// NewValidateCommand creates the validate command: load a schedule
// definition and build its full topology without firing anything, so
// duplicate names, unknown parents, bad event declarations, and dependency
// cycles surface before the schedule reaches a host.
func NewValidateCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schedule-file>",
		Short: "Validate a schedule definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := LoadSchedule(args[0])
			if err != nil {
				return err
			}

			report := validateReport{Schedule: spec.Name, Valid: true}
			sched, _, err := BuildSchedule(spec)
			if err != nil {
				report.Valid = false
				report.Error = err.Error()
			} else {
				report.Phases = sched.Phases()
				report.Systems = sched.Systems()
			}

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				printValidateText(cmd, report)
			}

			if !report.Valid {
				return fmt.Errorf("schedule invalid: %s", report.Error)
			}
			return nil
		},
	}
	return cmd
}

func printValidateText(cmd *cobra.Command, report validateReport) {
	out := cmd.OutOrStdout()
	if !report.Valid {
		fmt.Fprintf(out, "schedule %q: INVALID\n  %s\n", report.Schedule, report.Error)
		return
	}
	fmt.Fprintf(out, "schedule %q: OK (%d phases, %d systems)\n",
		report.Schedule, len(report.Phases), len(report.Systems))

	tw := newTable(out)
	row(tw, "PHASE", "BINDING")
	for _, p := range report.Phases {
		binding := "event-bound"
		if !p.Bound {
			binding = "after " + p.Parent
		}
		row(tw, p.Name, binding)
	}
	tw.Flush()

	if len(report.Systems) > 0 {
		fmt.Fprintln(out)
		tw = newTable(out)
		row(tw, "SYSTEM", "PHASE", "PAUSED")
		for _, s := range report.Systems {
			row(tw, s.Name, s.Phase, s.Paused)
		}
		tw.Flush()
	}
}
