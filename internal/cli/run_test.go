package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgames/phase"
	"github.com/kestrelgames/phase/internal/telemetry"
)

func TestRun_ExecutesFrames(t *testing.T) {
	path := writeFile(t, "demo.yaml", scheduleYAML)

	out, err := execute(t, "run", path, "--frames", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "3 frame(s)")
	assert.Contains(t, out, "integrate")
	assert.Contains(t, out, "sync")
}

func TestRun_RecordsTraceToDatabase(t *testing.T) {
	schedule := writeFile(t, "demo.yaml", scheduleYAML)
	db := filepath.Join(t.TempDir(), "trace.db")

	_, err := execute(t, "run", schedule, "--frames", "2", "--db", db)
	require.NoError(t, err)

	store, err := telemetry.Open(db)
	require.NoError(t, err)
	defer store.Close()

	recs, err := store.Frames(context.Background(), telemetry.Filter{})
	require.NoError(t, err)
	// Two systems, two frames, one event.
	assert.Len(t, recs, 4)
}

func TestRun_RejectsZeroFrames(t *testing.T) {
	path := writeFile(t, "demo.yaml", scheduleYAML)
	_, err := execute(t, "run", path, "--frames", "0")
	require.Error(t, err)
}

func TestRunSummary_Aggregates(t *testing.T) {
	s := newRunSummary()
	s.RecordFrame(phase.FrameRecord{System: "a", Start: 0, End: 5})
	s.RecordFrame(phase.FrameRecord{System: "a", Start: 10, End: 13})
	s.RecordFrame(phase.FrameRecord{System: "b", Start: 20, End: 21})

	require.Equal(t, []string{"a", "b"}, s.order)
	assert.Equal(t, 2, s.bySys["a"].Runs)
	assert.Equal(t, int64(8), s.bySys["a"].TotalNs)
	assert.Equal(t, int64(3), s.bySys["a"].LastNs)
}

func TestTrace_ReadsBack(t *testing.T) {
	schedule := writeFile(t, "demo.yaml", scheduleYAML)
	db := filepath.Join(t.TempDir(), "trace.db")

	_, err := execute(t, "run", schedule, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "integrate")
	assert.Contains(t, out, "2 frame record(s)")
}

func TestTrace_RequiresDatabase(t *testing.T) {
	_, err := execute(t, "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")
}
