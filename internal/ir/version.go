package ir

// Version constants stamped on compiled output.
const (
	// IRVersion is the declaration schema version.
	IRVersion = "1"

	// ToolVersion is the enumex toolchain version.
	ToolVersion = "0.1.0"
)
