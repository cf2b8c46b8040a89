// Package dispatch implements DispatchPolicy: the admission logic that
// combines the ledger, migration gate, and host ranker into concrete
// decisions about which host a task may be kicked to or migrated onto.
// Every decision is a pure function of the current ledger, gate, and clock
// state — given identical snapshots and inputs, decisions are identical.
package dispatch
