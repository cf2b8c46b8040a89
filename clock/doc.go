// Package clock provides a monotonic millisecond time source, abstracted
// behind an interface so that time-dependent behavior elsewhere in this
// module (last-slot delay, migration gate TTLs, size/age growth) can be
// tested deterministically, without real sleeps.
package clock
