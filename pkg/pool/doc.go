// Package pool owns every live browser driver session in the process.
//
// The Manager is the sole writer of the instance table: it creates sessions
// on demand up to a configured ceiling, hands them out with busy/idle
// ownership semantics, reclaims idle ones, health-checks the rest and
// recovers crashed sessions by replacing them. Callers get either a
// *Instance whose Driver they may use while they hold it busy, or a
// read-only Snapshot.
//
// Instance lifecycle:
//
//	(none) -> ready -> busy -> idle -> ready -> ... -> error -> (closed)
//
// The error status is terminal. It is entered after three consecutive
// failed liveness probes and the only way out is closure, optionally
// followed by a brand-new instance created with the same configuration.
package pool
