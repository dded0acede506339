package pkg

import (
	_ "embed"
	"strings"
)

// version is the contents of the VERSION file embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the semantic version of the dyn module without
// surrounding whitespace.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "dyn"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Dyn language parser and tools"
)
