// Package ledger tracks the effective available slot count for each host,
// accounting for kicks that have been emitted but not yet reflected in a
// fresh HostState snapshot. It is eventually consistent with the
// authoritative snapshot, but strictly conservative between refreshes:
// debits are applied optimistically on kick, clamped at zero, and
// periodically corrected wholesale by RefreshFrom.
package ledger
