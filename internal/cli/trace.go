package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelgames/phase/internal/telemetry"
)

// NewTraceCommand creates the trace command: list recorded frame
// executions from a telemetry database produced by `phase run --db` or by
// a host embedding telemetry.Store.
func NewTraceCommand(root *RootOptions) *cobra.Command {
	var (
		dbPath string
		event  string
		token  string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a recorded frame trace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			store, err := telemetry.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.Frames(cmd.Context(), telemetry.Filter{
				Event: event,
				Token: token,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				return printJSON(out, recs)
			}

			tw := newTable(out)
			row(tw, "TOKEN", "EVENT", "SEQ", "SYSTEM", "DURATION")
			for _, rec := range recs {
				row(tw, rec.Token, rec.Event, rec.Seq, rec.System,
					time.Duration(rec.End-rec.Start))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d frame record(s)\n", len(recs))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite trace database to read")
	cmd.Flags().StringVar(&event, "event", "", "restrict to firings of one master phase")
	cmd.Flags().StringVar(&token, "token", "", "restrict to one firing token")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the number of rows (0 = no cap)")
	return cmd
}
