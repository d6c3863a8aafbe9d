package harness

import (
	"fmt"
	"strings"

	"github.com/kestrelgames/phase"
)

// AssertionError reports one failed assertion with enough context to debug
// it without re-running the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []phase.FrameRecord
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual:   %s\n", e.Actual)
	fmt.Fprintf(&buf, "\ntrace:\n")
	for i, rec := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s (token=%s)\n", i+1, rec.Event, rec.System, rec.Token)
	}
	return buf.String()
}

// evaluate checks one assertion against the trace.
func evaluate(trace []phase.FrameRecord, a Assertion) error {
	switch a.Type {
	case AssertOrder:
		return assertOrder(trace, a)
	case AssertRanCount:
		return assertRanCount(trace, a)
	case AssertNotRan:
		return assertNotRan(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertOrder checks that the executed systems, in order, equal a.Systems.
func assertOrder(trace []phase.FrameRecord, a Assertion) error {
	got := make([]string, len(trace))
	for i, rec := range trace {
		got[i] = rec.System
	}
	if len(got) == len(a.Systems) {
		match := true
		for i := range got {
			if got[i] != a.Systems[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertOrder,
		Expected: fmt.Sprintf("%v", a.Systems),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    trace,
	}
}

// assertRanCount checks that a.System executed exactly a.Count times.
func assertRanCount(trace []phase.FrameRecord, a Assertion) error {
	n := 0
	for _, rec := range trace {
		if rec.System == a.System {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRanCount,
		Expected: fmt.Sprintf("%s ran %d times", a.System, a.Count),
		Actual:   fmt.Sprintf("%s ran %d times", a.System, n),
		Trace:    trace,
	}
}

// assertNotRan checks that a.System never executed.
func assertNotRan(trace []phase.FrameRecord, a Assertion) error {
	for _, rec := range trace {
		if rec.System == a.System {
			return &AssertionError{
				Type:     AssertNotRan,
				Expected: fmt.Sprintf("%s never ran", a.System),
				Actual:   fmt.Sprintf("%s ran (token=%s, seq=%d)", a.System, rec.Token, rec.Seq),
				Trace:    trace,
			}
		}
	}
	return nil
}
