package events

import (
	"errors"
	"time"
)

// ErrNotMilestone is returned by Promote for event types outside the
// milestone set.
var ErrNotMilestone = errors.New("event type is not a run milestone")

// Milestone is the typed form of one of the five critical lifecycle events.
// Records are promoted to a Milestone immediately after structural
// validation succeeds, so downstream logic operates on typed fields instead
// of re-inspecting a generic payload map.
type Milestone interface {
	MilestoneType() EventType
}

// AgentStarted indicates a run began executing.
type AgentStarted struct {
	RunID     string
	AgentName string
	AgentID   string
	At        time.Time
}

func (AgentStarted) MilestoneType() EventType { return EventTypeAgentStarted }

// AgentThinking indicates the agent is reasoning about the request.
type AgentThinking struct {
	RunID     string
	AgentName string
	AgentID   string
	At        time.Time
}

func (AgentThinking) MilestoneType() EventType { return EventTypeAgentThinking }

// ToolExecuting indicates a tool invocation began.
type ToolExecuting struct {
	RunID     string
	AgentName string
	Tool      string
	At        time.Time
}

func (ToolExecuting) MilestoneType() EventType { return EventTypeToolExecuting }

// ToolCompleted indicates a tool invocation finished. Result may be absent:
// tools are allowed to fail and still report completion.
type ToolCompleted struct {
	RunID     string
	AgentName string
	Tool      string
	Result    any
	HasResult bool
	At        time.Time
}

func (ToolCompleted) MilestoneType() EventType { return EventTypeToolCompleted }

// AgentCompleted indicates the run finished; the user can stop waiting.
type AgentCompleted struct {
	RunID     string
	AgentName string
	AgentID   string
	Result    any
	At        time.Time
}

func (AgentCompleted) MilestoneType() EventType { return EventTypeAgentCompleted }

// Promote converts a structurally valid record into its typed milestone
// variant. Identifying payload fields (agent_id, tool) are optional at this
// stage; the content validator reports their absence separately.
func Promote(r *Record) (Milestone, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch r.EventType {
	case EventTypeAgentStarted:
		return AgentStarted{
			RunID:     r.RunID,
			AgentName: r.AgentName,
			AgentID:   r.PayloadString("agent_id"),
			At:        r.Timestamp,
		}, nil
	case EventTypeAgentThinking:
		return AgentThinking{
			RunID:     r.RunID,
			AgentName: r.AgentName,
			AgentID:   r.PayloadString("agent_id"),
			At:        r.Timestamp,
		}, nil
	case EventTypeToolExecuting:
		return ToolExecuting{
			RunID:     r.RunID,
			AgentName: r.AgentName,
			Tool:      r.PayloadString("tool"),
			At:        r.Timestamp,
		}, nil
	case EventTypeToolCompleted:
		result, hasResult := payloadValue(r, "result")
		return ToolCompleted{
			RunID:     r.RunID,
			AgentName: r.AgentName,
			Tool:      r.PayloadString("tool"),
			Result:    result,
			HasResult: hasResult,
			At:        r.Timestamp,
		}, nil
	case EventTypeAgentCompleted:
		result, _ := payloadValue(r, "result")
		return AgentCompleted{
			RunID:     r.RunID,
			AgentName: r.AgentName,
			AgentID:   r.PayloadString("agent_id"),
			Result:    result,
			At:        r.Timestamp,
		}, nil
	default:
		return nil, ErrNotMilestone
	}
}

func payloadValue(r *Record, key string) (any, bool) {
	if r.Payload == nil {
		return nil, false
	}
	v, ok := r.Payload[key]
	return v, ok
}
