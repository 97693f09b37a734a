package harness

import (
	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

// Outcome recorded for a step that succeeded.
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step    int    `json:"step"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"` // OutcomeOK or a validation error code
	Entries int    `json:"entries"` // history length after the step
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Compiled is the final compiled history. Nil if the history is empty.
	Compiled *history.Historical[string] `json:"compiled,omitempty"`

	// Hash is the content hash of Compiled.
	Hash string `json:"hash,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

// AddTrace appends a trace event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// State returns the compiled state, or nil if nothing was compiled.
func (r *Result) State() ir.IRObject {
	if r.Compiled == nil {
		return nil
	}
	return r.Compiled.State
}

// History returns the compiled entries, or nil if nothing was compiled.
func (r *Result) History() []history.Entry[string] {
	if r.Compiled == nil {
		return nil
	}
	return r.Compiled.History
}
