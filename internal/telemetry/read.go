package telemetry

import (
	"context"
	"fmt"

	"github.com/kestrelgames/phase"
)

// Filter narrows a trace query. Zero-value fields are unrestricted.
type Filter struct {
	// Event restricts to firings of one master phase.
	Event string

	// Token restricts to one firing.
	Token string

	// Limit caps the number of rows returned; 0 means no cap.
	Limit int
}

// Frames returns recorded frames matching f, in insertion order.
func (s *Store) Frames(ctx context.Context, f Filter) ([]phase.FrameRecord, error) {
	query := `SELECT token, event, system, seq, start_ns, end_ns FROM frames`
	var (
		where []string
		args  []any
	)
	if f.Event != "" {
		where = append(where, "event = ?")
		args = append(args, f.Event)
	}
	if f.Token != "" {
		where = append(where, "token = ?")
		args = append(args, f.Token)
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var out []phase.FrameRecord
	for rows.Next() {
		var rec phase.FrameRecord
		if err := rows.Scan(&rec.Token, &rec.Event, &rec.System, &rec.Seq, &rec.Start, &rec.End); err != nil {
			return nil, fmt.Errorf("failed to scan frame row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
