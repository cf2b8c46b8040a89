// Package telemetry wires the generic logiface facade used throughout this
// module (ledger's clamp warning, dispatch's Policy construction) to a
// concrete stumpy backend: a small, dependency-free JSON line writer. It is
// a convenience default, not a requirement — callers may build their own
// *logiface.Logger[logiface.Event] (e.g. backed by zerolog or slog) and
// pass it directly to ledger.New/dispatch.NewPolicy instead.
package telemetry

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// NewJSONLogger returns a logiface.Logger backed by stumpy, writing
// newline-delimited JSON to w (os.Stderr if w is nil) at the given minimum
// level.
func NewJSONLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	if w == nil {
		w = os.Stderr
	}

	l := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	)

	return l.Logger()
}
