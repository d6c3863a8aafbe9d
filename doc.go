// Package phase is an event-driven frame scheduler layered over an
// entity-component graph.
//
// Callers declare named execution phases, attach systems (callables) to
// phases, and bind phases to external event sources. When a bound source
// fires, the scheduler runs the ordered set of systems reachable from that
// source's phase subtree.
//
// # Topology
//
// A phase is bound to exactly one event source, or depends on exactly one
// parent phase; never both. The first phase bound to a given source becomes
// that source's master: later phases requesting the same source are instead
// linked as dependents of the master, so one firing still reaches them
// transitively. Systems belong to exactly one phase.
//
// The runnable list for a source is the pre-order flatten of its phase
// subtree: a phase's own systems first, then each child phase's subtree,
// siblings in store order. The list is cached per source and rebuilt in
// full after every system registration or removal, so a firing never
// observes a stale topology.
//
// # Concurrency
//
// The scheduler is single-threaded and cooperative. It spawns no
// goroutines, takes no locks, and runs each system to completion inside
// whichever goroutine fires the event. Callers must serialize topology
// mutations and event firings on one logical thread.
package phase
