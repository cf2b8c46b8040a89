// Package stopflag provides a lock-free boolean signal, used to ask a
// queue iteration in progress to yield at its next safe point. It is a
// hint, not a barrier: there is no ordering guarantee beyond the atomicity
// of the individual load/store.
package stopflag

import "sync/atomic"

// Flag is a single atomic boolean. The zero value is unset (false).
type Flag struct {
	v atomic.Bool
}

// New returns a Flag that is initially unset.
func New() *Flag { return &Flag{} }

// Set stores v.
func (f *Flag) Set(v bool) { f.v.Store(v) }

// Get loads the current value.
func (f *Flag) Get() bool { return f.v.Load() }
