package phase

import "reflect"

// Handler is the callback shape the scheduler attaches to an event source.
// The arguments a source fires with are forwarded verbatim to every system
// in the source's runnable list.
type Handler func(args ...any)

// Connector is an event source that accepts a handler through a Connect
// method, the convention of signal-style libraries.
type Connector interface {
	Connect(h Handler)
}

// Subscriber is an event source that accepts a handler through a Subscribe
// method, the convention of bus-style libraries.
type Subscriber interface {
	Subscribe(h Handler)
}

// eventKind tags the attachment convention resolved for a source.
type eventKind uint8

const (
	eventInvocable eventKind = iota + 1
	eventConnector
	eventSubscriber
)

// eventBinding is a source with its attachment convention resolved.
// Resolution happens once, at phase creation; firing never re-checks.
type eventBinding struct {
	kind       eventKind
	invoke     func(Handler)
	connector  Connector
	subscriber Subscriber
}

// resolveEventSource classifies src against the supported shapes, checked
// in order: directly invocable, Connector, Subscriber. Exactly one
// convention applies; the first match wins. A source whose value cannot
// yield a stable identity (see eventIdentity) is rejected here, before it
// can reach the election scan or the runnable cache.
func resolveEventSource(src any) (eventBinding, error) {
	var b eventBinding
	switch s := src.(type) {
	case func(Handler):
		b = eventBinding{kind: eventInvocable, invoke: s}
	case Connector:
		b = eventBinding{kind: eventConnector, connector: s}
	case Subscriber:
		b = eventBinding{kind: eventSubscriber, subscriber: s}
	default:
		return eventBinding{}, &ConfigError{
			Code:    CodeBadEventSource,
			Message: "event source is not invocable and has no Connect or Subscribe method",
		}
	}
	if !identifiable(src) {
		return eventBinding{}, &ConfigError{
			Code:    CodeBadEventSource,
			Message: "event source value is not comparable; bind it through a pointer",
		}
	}
	return b, nil
}

// attach hands the runner to the source using the convention resolved at
// phase creation.
func (b eventBinding) attach(h Handler) {
	switch b.kind {
	case eventInvocable:
		b.invoke(h)
	case eventConnector:
		b.connector.Connect(h)
	case eventSubscriber:
		b.subscriber.Subscribe(h)
	}
}

// identifiable reports whether eventIdentity can derive a key for src:
// pointer-keyed kinds always qualify, everything else must be comparable
// under Go's == rules. A value-typed source carrying a slice field would
// otherwise fault the first cache rebuild.
func identifiable(src any) bool {
	switch reflect.ValueOf(src).Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return true
	default:
		return reflect.TypeOf(src).Comparable()
	}
}

// eventIdentity derives a comparable key for a source so that two phases
// requesting the same source collapse onto one master. Comparable values
// are their own key; func-typed sources (not comparable in Go) key on
// their code pointer.
func eventIdentity(src any) any {
	v := reflect.ValueOf(src)
	switch v.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return v.Pointer()
	default:
		return src
	}
}
