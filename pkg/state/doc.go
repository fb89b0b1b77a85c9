// Package state persists the governor's cross-restart bookkeeping.
//
// # Overview
//
// The Store owns per-service baselines, last-known costs, alert dedup
// flags, a bounded audit trail, and the billing-month rollover marker. The
// whole document is serialized as one JSON blob and written atomically on
// every mutation through a pluggable Blob backend:
//
//   - FileBlob: local file with temp-write-and-rename (default)
//   - ObjectBlob: S3-compatible object store
//   - SQLiteBlob: local SQLite database in WAL mode
//
// # Durability model
//
// Every mutation is serialized behind the Store's mutex and persisted
// immediately. A failed write is logged and counted but never propagated:
// the in-memory state is authoritative for the life of the process, and
// the next mutation retries the write. Losing state on a crash degrades to
// stale baselines and a possible duplicate alert, both of which the
// governor's idempotent decisions tolerate.
package state
