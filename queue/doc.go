// Package queue implements the priority-keyed FIFO of queued tasks
// described by the dispatch core: a mapping from priority (higher numeric
// value dispatches first) to an ordered sequence of queued items, protected
// by a single mutex, plus a removal primitive and a mutation-safe iteration
// primitive.
package queue
