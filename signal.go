package phase

// Signal is a minimal fireable event source for hosts that do not bring
// their own signal library. It satisfies Connector, so a *Signal can be
// passed directly to Scheduler.Phase and fired with Emit.
//
// Signal follows the scheduler's concurrency model: Connect and Emit must
// be serialized with each other by the caller.
type Signal struct {
	handlers []Handler
}

// NewSignal creates a signal with no handlers.
func NewSignal() *Signal {
	return &Signal{}
}

// Connect registers h to be called on every subsequent Emit. Handlers run
// in connection order.
func (s *Signal) Connect(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Emit fires the signal, invoking every connected handler synchronously
// with args. A panic in a handler propagates to the caller of Emit.
func (s *Signal) Emit(args ...any) {
	for _, h := range s.handlers {
		h(args...)
	}
}
