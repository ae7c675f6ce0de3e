package transport

import (
	"strings"

	"github.com/agentwire/runcheck/pkg/events"
	"github.com/agentwire/runcheck/pkg/validation"
)

// Handle is an opaque reference to an underlying delivery channel. The core
// never treats it as a concrete transport type.
type Handle any

// LivenessChecker is the optional capability a handle may expose to report
// whether a specific connection is still active.
type LivenessChecker interface {
	IsAlive(connectionID string) bool
}

// ValidateReady verifies a target connection is known and addressable
// before a caller attempts delivery. Blank identifiers and a missing handle
// fail MISSION_CRITICAL: there is no channel to deliver on. An inactive
// connection reported by an optional liveness query fails at the
// BUSINESS_VALUE tier instead; the event can still be replayed or queued
// once the user reconnects.
//
// The check is deliberately side-effect-free and never attempts delivery.
func ValidateReady(userID, connectionID string, handle Handle) *validation.Result {
	if strings.TrimSpace(userID) == "" {
		return validation.Invalid(events.CriticalityMissionCritical,
			"cannot deliver: user ID is empty")
	}
	if strings.TrimSpace(connectionID) == "" {
		return validation.Invalid(events.CriticalityMissionCritical,
			"cannot deliver to user %s: connection ID is empty", userID)
	}
	if handle == nil {
		return validation.Invalid(events.CriticalityMissionCritical,
			"cannot deliver to user %s: no transport handle for connection %s", userID, connectionID)
	}
	if checker, ok := handle.(LivenessChecker); ok && !checker.IsAlive(connectionID) {
		return validation.Invalid(events.CriticalityBusinessValue,
			"connection %s for user %s is inactive; event may be queued for replay", connectionID, userID)
	}
	return validation.Valid(events.CriticalityOperational)
}
