// Package governor implements the closed-loop budget enforcement cycle.
//
// # Overview
//
// Each check cycle measures every registered service's spend (raw usage
// times resolved unit price), subtracts the service's baseline, and
// compares the effective cost against its monthly budget. Crossing the
// warning threshold alerts; crossing the critical threshold disables the
// service and alerts. Decisions are idempotent: re-running a cycle against
// unchanged inputs repeats no disable and no alert.
//
// # Failure containment
//
// A cycle always completes. A failed usage or price lookup degrades that
// metric's contribution to zero and is surfaced as a data-quality warning;
// a failed disable is reported in the summary and retried by the next
// cycle; a failed state write leaves in-memory state authoritative. No
// failure local to one service touches the others.
package governor
