// Package telemetry records swarm runs in SQLite: one row per run, one
// per round snapshot, one per transmission. The log serves post-hoc
// inspection (the trace command) and comparison across modes.
//
// Uses WAL mode so readers can follow a run in progress. The write side
// is single-writer by construction: only the coordinator's round loop
// records, at round boundaries.
package telemetry
