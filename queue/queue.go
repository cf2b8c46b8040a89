package queue

import (
	"container/list"
	"sync"

	"github.com/joeycumines/go-dispatchqueue/clock"
	"github.com/joeycumines/go-dispatchqueue/stopflag"
	"golang.org/x/exp/slices"
)

// TaskHandle is the opaque identity of a queued task: a (jobID, taskIndex)
// pair. It is comparable, so it may be used directly as a map key or with
// ==. Matches is exact identity; wildcard matching (e.g. ignoring TaskIndex
// to match any task of a job) is done by passing a custom predicate to
// Remove instead.
type TaskHandle struct {
	JobID     string
	TaskIndex int
}

// Matches reports whether other has the same identity as h.
func (h TaskHandle) Matches(other TaskHandle) bool { return h == other }

// Item is a queued task: the handle, its quiesce-bypass flag, and the
// (immutable, Clock-assigned) time it was enqueued.
type Item struct {
	Handle           TaskHandle
	CanIgnoreQuiesce bool
	EnqueuedAtMs     int64
}

// IterAction is returned by an Iterate visitor to control the walk.
type IterAction int

const (
	// IterContinue moves on to the next item, keeping the current one.
	IterContinue IterAction = iota
	// IterRemoveAndContinue removes the current item, then moves on.
	IterRemoveAndContinue
	// IterStop ends the iteration immediately, keeping the current item.
	IterStop
)

// Queue is the priority-keyed FIFO described by the core design. The zero
// value is not usable; construct with New.
//
// Enqueue, Remove, and SizeAt are self-locking convenience methods, safe to
// call standalone. To span several operations under one critical section
// (e.g. the dispatch loop deciding on, then removing, a task), call Lock,
// use the *Locked variants, then Unlock — never mix a manual Lock with the
// self-locking methods, as the underlying mutex is not reentrant. Iterate
// manages its own lock for its full duration.
type Queue struct {
	mu         sync.Mutex
	clock      clock.Clock
	buckets    map[int]*list.List
	priorities []int // sorted descending; kept in sync with buckets' keys
}

// New constructs an empty Queue. clk supplies the Clock used to stamp
// Item.EnqueuedAtMs; a nil clk uses clock.Monotonic{}.
func New(clk clock.Clock) *Queue {
	if clk == nil {
		clk = clock.Monotonic{}
	}
	return &Queue{
		clock:   clk,
		buckets: make(map[int]*list.List),
	}
}

// Lock acquires the queue's mutex, blocking until it is available.
func (q *Queue) Lock() { q.mu.Lock() }

// Unlock releases the queue's mutex.
func (q *Queue) Unlock() { q.mu.Unlock() }

// TryLock attempts to acquire the queue's mutex without blocking.
func (q *Queue) TryLock() bool { return q.mu.TryLock() }

// Enqueue inserts handle into the bucket for priority, creating the bucket
// if absent. If atHead is true the item becomes position 0 in its bucket;
// otherwise it is appended to the tail, preserving FIFO order relative to
// other tail inserts. Always returns true (insertion is never rejected; the
// bool return is acknowledgement only, not an overflow signal).
func (q *Queue) Enqueue(priority int, handle TaskHandle, canIgnoreQuiesce bool, atHead bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.EnqueueLocked(priority, handle, canIgnoreQuiesce, atHead)
}

// EnqueueLocked is the lock-free counterpart of Enqueue. The caller must
// already hold the queue's lock (via Lock/TryLock).
func (q *Queue) EnqueueLocked(priority int, handle TaskHandle, canIgnoreQuiesce bool, atHead bool) bool {
	b, ok := q.buckets[priority]
	if !ok {
		b = list.New()
		q.buckets[priority] = b
		q.insertPriority(priority)
	}

	item := Item{
		Handle:           handle,
		CanIgnoreQuiesce: canIgnoreQuiesce,
		EnqueuedAtMs:     q.clock.NowMs(),
	}

	if atHead {
		b.PushFront(item)
	} else {
		b.PushBack(item)
	}

	return true
}

// Remove removes the first item in priority's bucket whose handle matches
// match, returning true if one was removed.
func (q *Queue) Remove(priority int, match func(TaskHandle) bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.RemoveLocked(priority, match)
}

// RemoveLocked is the lock-free counterpart of Remove. The caller must
// already hold the queue's lock.
func (q *Queue) RemoveLocked(priority int, match func(TaskHandle) bool) bool {
	b, ok := q.buckets[priority]
	if !ok {
		return false
	}

	for e := b.Front(); e != nil; e = e.Next() {
		if match(e.Value.(Item).Handle) {
			b.Remove(e)
			q.pruneIfEmptyLocked(priority, b)
			return true
		}
	}

	return false
}

// SizeAt returns the number of items currently queued at priority.
func (q *Queue) SizeAt(priority int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.SizeAtLocked(priority)
}

// SizeAtLocked is the lock-free counterpart of SizeAt. The caller must
// already hold the queue's lock.
func (q *Queue) SizeAtLocked(priority int) int {
	if b, ok := q.buckets[priority]; ok {
		return b.Len()
	}
	return 0
}

// Iterate walks priorities from highest to lowest, and within each
// priority, items in queue order (FIFO, modulo head inserts), invoking
// visit for each. The queue's mutex is held for the full duration of the
// walk. Before each item, stop is checked (if non-nil): if set, the walk
// ends immediately, yielding the mutex so a pending job-stop can acquire it
// promptly. visit's return value controls the walk per IterAction.
func (q *Queue) Iterate(stop *stopflag.Flag, visit func(priority int, item Item) IterAction) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, priority := range append([]int(nil), q.priorities...) {
		b, ok := q.buckets[priority]
		if !ok {
			continue
		}

		e := b.Front()
		for e != nil {
			if stop != nil && stop.Get() {
				return
			}

			next := e.Next()
			item := e.Value.(Item)

			switch visit(priority, item) {
			case IterRemoveAndContinue:
				b.Remove(e)
				q.pruneIfEmptyLocked(priority, b)
			case IterStop:
				return
			}

			e = next
		}
	}
}

// pruneIfEmptyLocked drops an empty bucket (and its priority key) from the
// index. The caller must hold the lock.
func (q *Queue) pruneIfEmptyLocked(priority int, b *list.List) {
	if b.Len() != 0 {
		return
	}
	delete(q.buckets, priority)
	q.removePriority(priority)
}

// descending orders a before b for a descending-sorted []int, the shape
// slices.BinarySearchFunc/slices.Insert need for the priority index (highest
// priority first).
func descending(a, b int) int { return b - a }

// insertPriority inserts priority into the sorted-descending index. The
// caller must hold the lock.
func (q *Queue) insertPriority(priority int) {
	i, _ := slices.BinarySearchFunc(q.priorities, priority, descending)
	q.priorities = slices.Insert(q.priorities, i, priority)
}

// removePriority removes priority from the sorted-descending index. The
// caller must hold the lock.
func (q *Queue) removePriority(priority int) {
	if i, ok := slices.BinarySearchFunc(q.priorities, priority, descending); ok {
		q.priorities = slices.Delete(q.priorities, i, i+1)
	}
}
