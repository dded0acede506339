// Package cmd implements the dyn subcommands: check, tokens, fmt, repl, init
// and version. The interactive model behind repl lives in package repl.
//
// Commands receive a [context.Context] carrying the [kong.Context] (see
// [WithContext]) and the global source file list (see [WithSourceFiles]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the Dyn configuration file.
	ConfigIdentifier = "config"
)
