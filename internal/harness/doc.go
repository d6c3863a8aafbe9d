// Package harness provides scenario-driven conformance testing for the
// scheduler.
//
// A scenario declares a topology (phases, systems, named events), a script
// of steps (fire an event, pause, unpause, remove), and assertions over
// the resulting execution trace. The harness builds a real phase.Scheduler
// for each scenario, drives it, and evaluates the assertions.
//
// # Scenario format
//
// Scenarios are YAML files:
//
//	name: shared_event
//	description: "Two phases on one event collapse onto a master"
//	phases:
//	  - name: A
//	    event: tick
//	  - name: B
//	    event: tick
//	systems:
//	  - name: sysB
//	    phase: B
//	steps:
//	  - fire: tick
//	    args: [0.016]
//	assertions:
//	  - type: order
//	    systems: [sysB]
//
// A phase declares exactly one of `event` (a named event source the
// harness materializes as a phase.Signal) or `after` (a previously
// declared parent phase).
//
// # Assertion types
//
//   - order: the executed systems, in execution order, equal `systems`
//   - ran_count: `system` executed exactly `count` times
//   - not_ran: `system` never executed
//
// # Determinism
//
// Every scenario runs with a deterministic clock (timestamps 0,1,2,... in
// execution order) and fixed firing tokens ("firing-1", "firing-2", ...),
// so the trace is byte-stable and suitable for golden file comparison via
// RunGolden.
package harness
