package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `name: demo
phases:
  - name: Update
    event: tick
systems:
  - name: mover
    phase: Update
steps:
  - fire: tick
assertions:
  - type: ran_count
    system: mover
    count: 1
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", sc.Name)
	require.Len(t, sc.Phases, 1)
	assert.Equal(t, "tick", sc.Phases[0].Event)
	assert.Equal(t, 1, sc.FireCount())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadScenario_BadYAML(t *testing.T) {
	path := writeScenario(t, "name: [unclosed")
	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestValidate_PhaseNeedsEventXorAfter(t *testing.T) {
	sc := &Scenario{
		Name:   "bad",
		Phases: []PhaseDecl{{Name: "A", Event: "tick", After: "B"}},
	}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of event, after")

	sc.Phases[0] = PhaseDecl{Name: "A"}
	require.Error(t, sc.Validate())
}

func TestValidate_AfterUnknownPhase(t *testing.T) {
	sc := &Scenario{
		Name:   "bad",
		Phases: []PhaseDecl{{Name: "B", After: "A"}},
	}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown phase "A"`)
}

func TestValidate_SystemUnderUnknownPhase(t *testing.T) {
	sc := &Scenario{
		Name:    "bad",
		Phases:  []PhaseDecl{{Name: "A", Event: "tick"}},
		Systems: []SystemDecl{{Name: "s", Phase: "Z"}},
	}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown phase "Z"`)
}

func TestValidate_StepExactlyOneField(t *testing.T) {
	sc := &Scenario{
		Name:    "bad",
		Phases:  []PhaseDecl{{Name: "A", Event: "tick"}},
		Systems: []SystemDecl{{Name: "s", Phase: "A"}},
		Steps:   []Step{{Fire: "tick", Pause: "s"}},
	}
	require.Error(t, sc.Validate())

	sc.Steps = []Step{{}}
	require.Error(t, sc.Validate())
}

func TestValidate_StepUnknownReferences(t *testing.T) {
	sc := &Scenario{
		Name:   "bad",
		Phases: []PhaseDecl{{Name: "A", Event: "tick"}},
		Steps:  []Step{{Fire: "boom"}},
	}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown event "boom"`)

	sc.Steps = []Step{{Pause: "ghost"}}
	err = sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown system "ghost"`)
}

func TestValidate_AssertionTypes(t *testing.T) {
	sc := &Scenario{
		Name:       "bad",
		Phases:     []PhaseDecl{{Name: "A", Event: "tick"}},
		Assertions: []Assertion{{Type: "sorted"}},
	}
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "sorted"`)

	sc.Assertions = []Assertion{{Type: AssertRanCount}}
	err = sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no system")

	sc.Assertions = []Assertion{{Type: AssertOrder}}
	require.NoError(t, sc.Validate())
}
