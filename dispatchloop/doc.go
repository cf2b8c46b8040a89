// Package dispatchloop is a thin, optional reference driver exercising
// queue.Queue, dispatch.Policy, and stopflag.Flag the way a real scheduler
// would: refresh the ledger, walk the queue priorities high to low under
// its lock, decide per item, then dispatch out of band once the lock is
// released. Nothing in queue, ledger, migrationgate, hostrank, or dispatch
// depends on this package — it exists for tests, examples, and as a
// starting point for integrators wiring in their own transport.
package dispatchloop
