package profile

import (
	"log/slog"

	"github.com/dyn-lang/dyn/log"
)

// Profiler selects a profiling mode and where its output is written.
type Profiler struct {
	// Mode is one of [Modes]. An empty Mode disables profiling.
	Mode string
	// Path is the output directory. Empty selects the current directory.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
	// Logger receives start and stop events. The zero value discards them.
	Logger log.Logger
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling and returns a [Stopper] that ends it.
//
// If the binary was built without the pprof tag, or p.Mode is empty or
// unknown, Start returns a no-op. Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	s := start(p.Mode, p.Path, p.Quiet)
	if _, ok := s.(ignore); ok {
		p.Logger.Debug("profiling unavailable", slog.String("mode", p.Mode))

		return s
	}

	p.Logger.Debug("profiling started",
		slog.String("mode", p.Mode),
		slog.String("path", p.Path),
	)

	return stopper{s, p}
}

type stopper struct {
	Stopper
	p Profiler
}

func (s stopper) Stop() {
	s.Stopper.Stop()
	s.p.Logger.Debug("profiling stopped",
		slog.String("mode", s.p.Mode),
		slog.String("path", s.p.Path),
	)
}

// Enabled reports whether the binary was built with profiling support.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
