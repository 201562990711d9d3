// Package auth implements the access gate in front of the report routes: a
// shared password checked against a bcrypt hash, a per-client login throttle,
// and an in-memory store of sessions that carry the user's preferences and
// last generated report.
//
// The gate runs before a reconciliation starts; nothing in this package is
// consulted while a run is in progress.
package auth
