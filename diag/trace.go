package diag

import (
	"fmt"

	"github.com/grailbio/base/log"

	"github.com/rill-lang/rillc/token"
)

// Tracef logs a compiler-internal trace message at Debug level, gated
// by log.At the same way gql/log.go's Debugf gates on log.At(log.Debug)
// before formatting: tracing is for developers instrumenting the
// parser/checker, never for user-facing diagnostics (those go through
// Sink instead).
func Tracef(loc token.Location, format string, args ...interface{}) {
	if log.At(log.Debug) {
		log.Output(2, log.Debug, loc.String()+": "+fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}

// Infof logs a compiler-internal progress message at Info level, for
// coarse phase transitions (module collected, impl queue drained) —
// mirrors gql/log.go's Logf.
func Infof(loc token.Location, format string, args ...interface{}) {
	if log.At(log.Info) {
		log.Output(2, log.Info, loc.String()+": "+fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}
