// Package cli contains the command line interface for dyn.
//
// # Commands
//
//	dyn check [files...] [--watch]     parse sources and report diagnostics (default)
//	dyn tokens [file]                  print the token stream
//	dyn fmt native|json|yaml|ast [file]
//	dyn repl [-s file...]              interactive parser
//	dyn init [--force|--stdout]        write the current flags as a Dyn config
//	dyn version [--require CONSTRAINT]
//
// # Configuration
//
// Flag defaults are read from these files in the user configuration
// directory (for example ~/.config/dyn):
//
//   - config.json: JSON, with objects flattened into hyphenated names
//   - config.toml: TOML, with tables flattened into hyphenated names
//   - config: Dyn, one top-level let binding per flag with hyphens removed
//
// Command-line flags override configuration values. "dyn init" writes the
// global flags to the Dyn file; command flags such as --max-depth can be
// added by hand:
//
//	// dyn configuration
//	let loglevel = "debug"
//	let logpretty = false
//	let maxdepth = 200
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp layout (RFC3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/dyn/pprof)
//
// # Examples
//
//	# Check every source with debug logging
//	dyn --log-level=debug check *.dyn
//
//	# Format with CPU profiling
//	dyn --pprof-mode=cpu fmt native big.dyn
//
//	# Start the REPL with bindings from a file
//	dyn -s prelude.dyn repl
package cli
