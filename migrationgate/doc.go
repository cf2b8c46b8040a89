// Package migrationgate rate-limits task migrations so that no host
// participates in more than one migration per configured interval. Gate
// membership is a pure function of (entries, now): an entry older than the
// interval is indistinguishable from absent.
package migrationgate
