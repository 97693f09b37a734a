package ir

// Version constants for the persisted history format.
const (
	// FormatVersion is the version of the compiled history document layout.
	FormatVersion = "1"

	// EngineVersion is the scribe engine version.
	EngineVersion = "0.1.0"
)
