package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/kestrelgames/phase"
)

// ScheduleSpec is a declarative schedule definition: the topology without
// the callables. The CLI materializes systems as timing stubs; hosts embed
// the library directly when they need real callables.
type ScheduleSpec struct {
	Name    string       `json:"name" yaml:"name"`
	Phases  []PhaseSpec  `json:"phases" yaml:"phases"`
	Systems []SystemSpec `json:"systems" yaml:"systems"`
}

// PhaseSpec declares one phase: exactly one of Event and After is set.
// Phases depending on a parent must be declared after it.
type PhaseSpec struct {
	Name  string `json:"name" yaml:"name"`
	Event string `json:"event,omitempty" yaml:"event,omitempty"`
	After string `json:"after,omitempty" yaml:"after,omitempty"`
}

// SystemSpec declares one system registration.
type SystemSpec struct {
	Name  string `json:"name" yaml:"name"`
	Phase string `json:"phase" yaml:"phase"`
}

// LoadSchedule reads a schedule definition from a CUE or YAML file,
// selected by extension.
func LoadSchedule(path string) (*ScheduleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return parseCUE(path, data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported schedule format %q (want .cue, .yaml, or .yml)", filepath.Ext(path))
	}
}

func parseYAML(data []byte) (*ScheduleSpec, error) {
	var spec ScheduleSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}
	return &spec, nil
}

func parseCUE(path string, data []byte) (*ScheduleSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile schedule: %w", err)
	}
	var spec ScheduleSpec
	if err := v.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	return &spec, nil
}

// BuildSchedule materializes a spec into a live scheduler. Each distinct
// event name becomes one phase.Signal; each declared system becomes a
// no-op stub registered under its phase. Topology errors (duplicate
// names, unknown parents, bad declarations) surface from the scheduler
// unchanged.
//
// The returned signal map is keyed by event name, in support of firing
// from the run command.
func BuildSchedule(spec *ScheduleSpec, opts ...phase.Option) (*phase.Scheduler, map[string]*phase.Signal, error) {
	sched := phase.New(opts...)
	signals := make(map[string]*phase.Signal)

	for _, p := range spec.Phases {
		switch {
		case p.Event != "" && p.After != "":
			return nil, nil, fmt.Errorf("phase %q declares both event and after", p.Name)
		case p.Event != "":
			sig, ok := signals[p.Event]
			if !ok {
				sig = phase.NewSignal()
				signals[p.Event] = sig
			}
			if _, err := sched.Phase(p.Name, sig); err != nil {
				return nil, nil, err
			}
		case p.After != "":
			parent, ok := sched.PhaseByName(p.After)
			if !ok {
				return nil, nil, fmt.Errorf("phase %q depends on undeclared phase %q", p.Name, p.After)
			}
			if _, err := sched.Phase(p.Name, parent); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, fmt.Errorf("phase %q declares neither event nor after", p.Name)
		}
	}

	for _, sys := range spec.Systems {
		if _, err := sched.On(sys.Phase, func(args ...any) {}, phase.WithName(sys.Name)); err != nil {
			return nil, nil, err
		}
	}

	return sched, signals, nil
}

// EventNames returns the distinct event names of a spec, in declaration
// order. Used by the run command for a stable firing order.
func (s *ScheduleSpec) EventNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.Phases {
		if p.Event != "" && !seen[p.Event] {
			seen[p.Event] = true
			out = append(out, p.Event)
		}
	}
	return out
}
