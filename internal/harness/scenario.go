package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test: a topology, a script, and
// assertions over the resulting trace.
type Scenario struct {
	// Name uniquely identifies the scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description,omitempty"`

	// Phases declares the phase topology, in creation order.
	Phases []PhaseDecl `yaml:"phases"`

	// Systems declares the systems to register, in registration order.
	Systems []SystemDecl `yaml:"systems"`

	// Steps is the script executed after Start.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	Assertions []Assertion `yaml:"assertions"`
}

// PhaseDecl declares one phase. Exactly one of Event and After is set.
type PhaseDecl struct {
	// Name is the phase name.
	Name string `yaml:"name"`

	// Event names the event source the phase binds to. The harness
	// materializes one phase.Signal per distinct event name.
	Event string `yaml:"event,omitempty"`

	// After names the parent phase this phase depends on. The parent must
	// be declared earlier in the scenario.
	After string `yaml:"after,omitempty"`
}

// SystemDecl declares one system registration. Harness systems are
// recording stubs; the trace is the observable behavior.
type SystemDecl struct {
	Name  string `yaml:"name"`
	Phase string `yaml:"phase"`
}

// Step is one scripted action. Exactly one field group is set.
type Step struct {
	// Fire names an event to fire, with Args forwarded to the systems.
	Fire string `yaml:"fire,omitempty"`
	Args []any  `yaml:"args,omitempty"`

	// Pause / Unpause / Remove name a system to operate on.
	Pause   string `yaml:"pause,omitempty"`
	Unpause string `yaml:"unpause,omitempty"`
	Remove  string `yaml:"remove,omitempty"`
}

// Assertion validates the trace. See package documentation for types.
type Assertion struct {
	Type    string   `yaml:"type"`
	Systems []string `yaml:"systems,omitempty"`
	System  string   `yaml:"system,omitempty"`
	Count   int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOrder    = "order"
	AssertRanCount = "ran_count"
	AssertNotRan   = "not_ran"
)

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks structural consistency before execution: names present,
// event XOR after on every phase, declared references resolvable, known
// assertion types.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	phases := make(map[string]bool, len(s.Phases))
	events := make(map[string]bool)
	for i, p := range s.Phases {
		if p.Name == "" {
			return fmt.Errorf("phase %d has no name", i)
		}
		if (p.Event == "") == (p.After == "") {
			return fmt.Errorf("phase %q must declare exactly one of event, after", p.Name)
		}
		if p.After != "" && !phases[p.After] {
			return fmt.Errorf("phase %q declared after unknown phase %q", p.Name, p.After)
		}
		phases[p.Name] = true
		if p.Event != "" {
			events[p.Event] = true
		}
	}
	systems := make(map[string]bool, len(s.Systems))
	for i, sys := range s.Systems {
		if sys.Name == "" {
			return fmt.Errorf("system %d has no name", i)
		}
		if !phases[sys.Phase] {
			return fmt.Errorf("system %q declared under unknown phase %q", sys.Name, sys.Phase)
		}
		systems[sys.Name] = true
	}
	for i, st := range s.Steps {
		set := 0
		for _, v := range []string{st.Fire, st.Pause, st.Unpause, st.Remove} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("step %d must declare exactly one of fire, pause, unpause, remove", i)
		}
		if st.Fire != "" && !events[st.Fire] {
			return fmt.Errorf("step %d fires unknown event %q", i, st.Fire)
		}
		for _, name := range []string{st.Pause, st.Unpause, st.Remove} {
			if name != "" && !systems[name] {
				return fmt.Errorf("step %d references unknown system %q", i, name)
			}
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertOrder:
			// An empty systems list is a valid "nothing ran" assertion.
		case AssertRanCount, AssertNotRan:
			if a.System == "" {
				return fmt.Errorf("assertion %d (%s) has no system", i, a.Type)
			}
		default:
			return fmt.Errorf("assertion %d has unknown type %q", i, a.Type)
		}
	}
	return nil
}

// FireCount returns the number of fire steps, which is the number of
// firing tokens the harness must budget.
func (s *Scenario) FireCount() int {
	n := 0
	for _, st := range s.Steps {
		if st.Fire != "" {
			n++
		}
	}
	return n
}
