package stache

import "github.com/juju/loggo"

// logger carries only operational detail (per-template timing, warnings
// about render-time no-ops). User-facing diagnostics are never routed
// through it; the driver returns them as *Error/*MultiError values and the
// CLI prints them exactly once, in the "path:line:col: kind: message"
// format.
var logger = loggo.GetLogger("stache")

// Options configures a single compilation run.
type Options struct {
	// Binding selects the trailing host-language glue emitted by the
	// assembler. Only "ruby" is implemented; other names are reserved.
	Binding string

	// Strict turns an unresolved partial reference into a fatal
	// ErrUnresolvedPartial diagnostic instead of a logged warning with the
	// call site omitted.
	Strict bool
}

// SetDebug toggles TRACE-level logging of per-template compilation
// timing.
func SetDebug(on bool) {
	if on {
		logger.SetLogLevel(loggo.TRACE)
	} else {
		logger.SetLogLevel(loggo.WARNING)
	}
}
