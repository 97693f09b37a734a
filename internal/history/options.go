package history

import (
	"slices"
)

// CompactionOptions controls how consecutive patches are merged.
//
// Two adjacent patches with equal signatures collapse into one when the
// later one arrives less than CollapseWindowMs after the earlier one and
// touches none of the fields in CollapseMask. A zero window disables
// collapsing.
type CompactionOptions struct {
	CollapseWindowMs int64    `json:"collapse_window_ms" yaml:"collapse_window_ms"`
	CollapseMask     []string `json:"collapse_mask,omitempty" yaml:"collapse_mask,omitempty"`
}

// masks reports whether field is in the collapse mask.
func (o CompactionOptions) masks(field string) bool {
	return slices.Contains(o.CollapseMask, field)
}

func (o CompactionOptions) clone() CompactionOptions {
	o.CollapseMask = slices.Clone(o.CollapseMask)
	return o
}

// settings is the immutable configuration a Scribe hands to every
// instance derived from it.
type settings struct {
	compaction CompactionOptions
	clock      Clock
}

// Option configures a Scribe.
type Option func(*settings)

// WithCollapseWindow sets the collapse window in milliseconds.
// Negative values are treated as zero.
func WithCollapseWindow(ms int64) Option {
	return func(s *settings) {
		s.compaction.CollapseWindowMs = max(ms, 0)
	}
}

// WithCollapseMask sets the fields that block collapsing.
func WithCollapseMask(fields ...string) Option {
	return func(s *settings) {
		s.compaction.CollapseMask = slices.Clone(fields)
	}
}

// WithCompaction replaces the whole compaction configuration.
func WithCompaction(opts CompactionOptions) Option {
	return func(s *settings) {
		s.compaction = opts.clone()
		s.compaction.CollapseWindowMs = max(s.compaction.CollapseWindowMs, 0)
	}
}

// WithClock sets the clock used for default timestamps.
//
// Default: SystemClock
func WithClock(c Clock) Option {
	return func(s *settings) {
		s.clock = c
	}
}

func newSettings(opts []Option) settings {
	s := settings{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&s)
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	return s
}
