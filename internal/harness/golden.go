package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"golang.org/x/text/unicode/norm"
)

// TraceSnapshot is the canonical serialization of one scenario run,
// compared against golden files.
type TraceSnapshot struct {
	Scenario string         `json:"scenario"`
	Trace    []traceRowJSON `json:"trace"`
}

// traceRowJSON fixes the field set and order-independent canonical form of
// one trace row. Keys marshal in struct order, which is kept alphabetical
// so the output matches a canonical (sorted-key) encoding.
type traceRowJSON struct {
	End    int64  `json:"end"`
	Event  string `json:"event"`
	Seq    int    `json:"seq"`
	Start  int64  `json:"start"`
	System string `json:"system"`
	Token  string `json:"token"`
}

// MarshalCanonical produces the byte-stable JSON form of a snapshot:
// sorted keys, two-space indentation, NFC-normalized strings, trailing
// newline. NFC normalization keeps golden files stable when system or
// event names contain combining characters that editors re-compose.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	out := TraceSnapshot{
		Scenario: norm.NFC.String(s.Scenario),
		Trace:    make([]traceRowJSON, len(s.Trace)),
	}
	for i, row := range s.Trace {
		out.Trace[i] = traceRowJSON{
			End:    row.End,
			Event:  norm.NFC.String(row.Event),
			Seq:    row.Seq,
			Start:  row.Start,
			System: norm.NFC.String(row.System),
			Token:  norm.NFC.String(row.Token),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to marshal trace snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RunGolden executes a scenario and compares its canonical trace against
// testdata/golden/{scenario.Name}.golden. Regenerate goldens with:
//
//	go test ./internal/harness -update
//
// The scenario's own assertions are evaluated first; a failing assertion
// fails the test before the golden comparison runs.
func RunGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %q failed to run: %v", scenario.Name, err)
	}
	if !result.Pass {
		for _, msg := range result.Errors {
			t.Error(msg)
		}
		t.Fatalf("scenario %q assertions failed", scenario.Name)
	}

	snapshot := TraceSnapshot{Scenario: scenario.Name}
	for _, rec := range result.Trace {
		snapshot.Trace = append(snapshot.Trace, traceRowJSON{
			End:    rec.End,
			Event:  rec.Event,
			Seq:    rec.Seq,
			Start:  rec.Start,
			System: rec.System,
			Token:  rec.Token,
		})
	}

	data, err := snapshot.MarshalCanonical()
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
