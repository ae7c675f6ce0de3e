// Package validation implements milestone delivery validation and
// business-value scoring for agent runs.
//
// The package exposes four cooperating pieces, bundled behind Instance:
//
//   - Structural: shape, schema, and user-ownership checks for a single
//     event record, short-circuiting on the first failure
//   - Tracker: per-run bookkeeping of which of the five critical milestones
//     have been observed, in what order, and when
//   - Checker: ordering, timing, and content invariants over a tracker's
//     recorded history
//   - Result: the structured verdict handed back to callers, carrying a
//     criticality tier, the derived business-value score, and the derived
//     revenue-impact tier
//
// The score is the fraction of distinct milestones received; the revenue
// impact escalates with the number of missing milestones and is forced to
// CRITICAL whenever agent_completed is missing, because the user then never
// learns the run finished. Score and impact are independent axes: a run at
// 80% can still be CRITICAL.
//
// Expected invalid input never produces an error return or a panic; it
// produces an invalid Result. Panics from defects in validation logic are
// recovered at the Instance boundary and degrade to a MISSION_CRITICAL
// Result so a validator bug rejects and reports instead of crashing the
// host's request path.
//
// An Instance serializes all access behind a single lock and is safe for
// concurrent use. One instance per run per user is the canonical usage; the
// registry package hands them out keyed by user so concurrent users never
// share state.
package validation
