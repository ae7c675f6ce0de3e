// Package registry is the isolation layer between concurrent users'
// validation state.
//
// A Registry hands out validation.Instance values keyed by an isolation key
// derived from the caller's user context. Two different user contexts never
// receive the same instance, so one user's milestone bookkeeping is never
// observable from another's. This is the direct fix for shared-singleton
// validator state leaking data across users.
//
// Entries expire after a TTL measured from last access and are reclaimed
// lazily by SweepExpired, or continuously by the optional background
// sweeper. Stats exposes only anonymized aggregates; per-run data never
// leaves an instance.
package registry
