// Package transport provides the connection-readiness precondition check
// and a websocket-backed connection handle.
//
// The core never performs delivery itself; ValidateReady is the fast-fail
// gate a caller runs before attempting to push an event down a connection.
// The handle is opaque; its only optional capability is a liveness query,
// expressed as the LivenessChecker interface. ConnPool is the provided
// gorilla/websocket implementation of that capability.
package transport
