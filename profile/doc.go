// Package profile provides optional runtime profiling for the dyn command.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// with the "pprof" build tag. Without the tag, [Modes] is empty and
// [Profiler.Start] returns a no-op.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// From the command line:
//
//	go build -tags pprof .
//	./dyn --pprof-mode cpu check big.dyn
//	go tool pprof -http=: "$XDG_CACHE_HOME/dyn/pprof/cpu.pprof"
//
// Parsing large inputs under the cpu mode shows time split between the
// lexer's Next and the parser's parseExpr; the mem and allocs modes show the
// cost of AST nodes and the parse cache.
//
// With the tag, [net/http/pprof] handlers are also registered on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
