// Package store provides SQLite-backed durable storage for compiled
// histories.
//
// Each document is one object's history:
//   - documents: derived state, content hash, removed flag, timestamps
//   - entries: the cleaned entry sequence, keyed by (document_id, position)
//
// Entries are the source of truth. The documents row is a cache of the
// compiled output, rewritten by every Save. Load never trusts stored rows:
// entries are always passed back through history validation, so a database
// edited by hand cannot produce an invalid Scribe.
//
// Payloads are stored as RFC 8785 canonical JSON so identical histories
// produce identical rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
