package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of lifecycle event an agent run emits.
type EventType string

// Milestone event types. These five events are the business-critical
// milestones every run must deliver to its user.
const (
	EventTypeAgentStarted   EventType = "agent_started"
	EventTypeAgentThinking  EventType = "agent_thinking"
	EventTypeToolExecuting  EventType = "tool_executing"
	EventTypeToolCompleted  EventType = "tool_completed"
	EventTypeAgentCompleted EventType = "agent_completed"
)

// Non-milestone event types known to the schema table.
const (
	EventTypeRunError      EventType = "run_error"
	EventTypeAgentProgress EventType = "agent_progress"
	EventTypeStreamChunk   EventType = "stream_chunk"
	EventTypeHeartbeat     EventType = "heartbeat"
	EventTypeConnectionAck EventType = "connection_ack"
)

// MilestoneCount is the number of critical milestones a complete run emits.
const MilestoneCount = 5

// milestoneOrder lists the milestones in canonical lifecycle order.
var milestoneOrder = [MilestoneCount]EventType{
	EventTypeAgentStarted,
	EventTypeAgentThinking,
	EventTypeToolExecuting,
	EventTypeToolCompleted,
	EventTypeAgentCompleted,
}

// milestoneSet is a map for O(1) membership checks.
var milestoneSet = map[EventType]bool{
	EventTypeAgentStarted:   true,
	EventTypeAgentThinking:  true,
	EventTypeToolExecuting:  true,
	EventTypeToolCompleted:  true,
	EventTypeAgentCompleted: true,
}

// Milestones returns the five critical milestone types in canonical
// lifecycle order. The returned slice is a copy; the set itself is a fixed
// process-wide constant and is never mutated at runtime.
func Milestones() []EventType {
	out := make([]EventType, MilestoneCount)
	copy(out, milestoneOrder[:])
	return out
}

// IsMilestone reports whether t is one of the five critical milestone types.
func IsMilestone(t EventType) bool {
	return milestoneSet[t]
}

// Record is the normalized in-memory representation of one inbound event.
// The decoding layer constructs a Record from a wire message; after
// construction it is treated as immutable and handed to a validator
// instance, which records it and discards the reference.
type Record struct {
	ID        string         `json:"id,omitempty"`
	EventType EventType      `json:"type"`
	RunID     string         `json:"runId,omitempty"`
	AgentName string         `json:"agentName,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	ThreadID  string         `json:"threadId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewRecord creates a record with a generated ID and the current time.
func NewRecord(eventType EventType, opts ...RecordOption) *Record {
	r := &Record{
		ID:        uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordOption configures a record at construction time.
type RecordOption func(*Record)

// WithRun sets the run ID and agent name.
func WithRun(runID, agentName string) RecordOption {
	return func(r *Record) {
		r.RunID = runID
		r.AgentName = agentName
	}
}

// WithUser sets the user the event belongs to.
func WithUser(userID string) RecordOption {
	return func(r *Record) {
		r.UserID = userID
	}
}

// WithThread sets the conversation thread the event belongs to.
func WithThread(threadID string) RecordOption {
	return func(r *Record) {
		r.ThreadID = threadID
	}
}

// WithPayload sets the event payload.
func WithPayload(payload map[string]any) RecordOption {
	return func(r *Record) {
		r.Payload = payload
	}
}

// WithTimestamp overrides the construction-time timestamp.
func WithTimestamp(at time.Time) RecordOption {
	return func(r *Record) {
		r.Timestamp = at
	}
}

// IsMilestone reports whether the record carries a milestone event.
func (r *Record) IsMilestone() bool {
	return r != nil && IsMilestone(r.EventType)
}

// Validate checks the record's base shape: a type must be present, and
// milestone events must carry the run ID and agent name that tie them back
// to a specific user execution.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if r.EventType == "" {
		return fmt.Errorf("record validation failed: type field is required")
	}
	if IsMilestone(r.EventType) {
		if r.RunID == "" {
			return fmt.Errorf("%s validation failed: runId is required", r.EventType)
		}
		if r.AgentName == "" {
			return fmt.Errorf("%s validation failed: agentName is required", r.EventType)
		}
	}
	return nil
}

// PayloadString returns the string value stored under key in the payload,
// or "" when the key is absent or not a string.
func (r *Record) PayloadString(key string) string {
	if r == nil || r.Payload == nil {
		return ""
	}
	s, _ := r.Payload[key].(string)
	return s
}
