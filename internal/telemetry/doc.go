// Package telemetry persists frame execution records to SQLite.
//
// The store implements phase.FrameRecorder: attach it to a scheduler with
// phase.WithRecorder and every executed system writes one row. The `phase
// trace` command reads the same database back for inspection.
//
// Durability over throughput: each record is a single INSERT on a WAL-mode
// connection. For frame-rate-critical hosts, record into an in-memory
// recorder instead and flush out of band.
package telemetry
