// Package ir provides the value layer for scribe payloads.
//
// Every payload logged by the history engine is an IRObject: a sealed tree of
// strings, int64 integers, booleans, nulls, arrays, and objects. ir imports
// nothing internal; it is the foundation every other package builds on.
//
// Key design constraints:
//   - No float types anywhere - use int64 for numbers
//   - Absent object keys and explicit IRNull are different things
//   - Clone, Equal, and Merge never alias their inputs
//   - Canonical JSON (RFC 8785) is the only encoding hashed
package ir
