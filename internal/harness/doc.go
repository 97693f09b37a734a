// Package harness runs YAML scenarios against the history engine.
//
// A scenario drives a single Scribe through a list of steps on a
// deterministic clock, then checks assertions against the compiled result.
// Every run also saves the final history to an in-memory store and reloads
// it, so a scenario doubles as a persistence round-trip test.
//
// # Scenario Format
//
//	name: furniture
//	description: "A table is built, painted and finished"
//	options:
//	  collapse_window_ms: 500
//	  collapse_mask: [stage]
//	clock:
//	  start: 1000
//	  step: 100
//	steps:
//	  - op: create
//	    signature: ana
//	    data: { stage: draft, finished: false }
//	  - op: patch
//	    data: { stage: painting }
//	  - op: revert
//	    index: 1
//	  - op: patch
//	    data: { finished: true }
//	    at: 500
//	    expect_error: OUT_OF_ORDER
//	assertions:
//	  - type: state
//	    expect: { stage: draft, finished: false }
//	  - type: history_length
//	    count: 1
//	  - type: entry
//	    index: 0
//	    kind: create
//	    signature: ana
//	  - type: removed
//	    value: false
//
// # Operations
//
//   - create, patch, remove: append an entry; at overrides the clock
//   - pop: drop the last entry
//   - revert: drop entries from index or time onwards
//   - splice: delete count entries at index or time and insert entries
//
// # Assertion Types
//
//   - state: the compiled state equals expect exactly
//   - history_length: the cleaned history has count entries
//   - entry: the entry at index has the given kind, data, signature or at
//   - removed: whether the history ends in a remove entry
package harness
