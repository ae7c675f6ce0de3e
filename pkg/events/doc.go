// Package events defines the event model for agent run lifecycle validation.
//
// An agent run emits a fixed set of five milestone events over its lifetime:
//
//   - agent_started: the run began executing
//   - agent_thinking: the agent is reasoning about the request
//   - tool_executing: a tool invocation began
//   - tool_completed: a tool invocation finished
//   - agent_completed: the run finished and the user can stop waiting
//
// Every one of these must reach the user for the run to deliver its full
// value; agent_completed is the single event whose loss is never acceptable,
// because without it the user waits forever on a run that already ended.
//
// The package provides:
//
//   - Record: the normalized in-memory form of one decoded inbound event
//   - the schema table mapping known event types to required payload fields
//     and a criticality tier
//   - typed milestone variants (AgentStarted, ToolExecuting, ...) promoted
//     from a Record once structural validation has passed, so downstream
//     logic never re-inspects a generic map
//
// Validation and scoring of these events live in the validation package;
// per-user isolation lives in the registry package.
package events
