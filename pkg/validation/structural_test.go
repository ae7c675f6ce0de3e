package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/agentwire/runcheck/pkg/events"
)

func milestoneRecord(eventType events.EventType, userID string) *events.Record {
	return &events.Record{
		EventType: eventType,
		RunID:     "r1",
		AgentName: "a1",
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   map[string]any{},
	}
}

func TestStructuralValidateEvent(t *testing.T) {
	tests := []struct {
		name            string
		record          *events.Record
		expectedUser    string
		wantValid       bool
		wantCriticality events.Criticality
		wantMessagePart string
	}{
		{
			name:            "nil record",
			record:          nil,
			expectedUser:    "u1",
			wantValid:       false,
			wantCriticality: events.CriticalityMissionCritical,
			wantMessagePart: "not a record",
		},
		{
			name:            "empty event type",
			record:          &events.Record{RunID: "r1"},
			expectedUser:    "u1",
			wantValid:       false,
			wantCriticality: events.CriticalityMissionCritical,
			wantMessagePart: "missing or empty",
		},
		{
			name:            "valid milestone",
			record:          milestoneRecord(events.EventTypeAgentStarted, "u1"),
			expectedUser:    "u1",
			wantValid:       true,
			wantCriticality: events.CriticalityMissionCritical,
		},
		{
			name: "schema-required field absent names the field",
			record: &events.Record{
				EventType: events.EventTypeRunError,
				Payload:   map[string]any{},
			},
			expectedUser:    "u1",
			wantValid:       false,
			wantCriticality: events.CriticalityBusinessValue,
			wantMessagePart: "message",
		},
		{
			name: "milestone without run ID cannot be traced",
			record: &events.Record{
				EventType: events.EventTypeToolExecuting,
				AgentName: "a1",
			},
			expectedUser:    "u1",
			wantValid:       false,
			wantCriticality: events.CriticalityMissionCritical,
			wantMessagePart: "cannot be traced to user execution",
		},
		{
			name: "milestone without agent name cannot be traced",
			record: &events.Record{
				EventType: events.EventTypeToolExecuting,
				RunID:     "r1",
			},
			expectedUser:    "u1",
			wantValid:       false,
			wantCriticality: events.CriticalityMissionCritical,
			wantMessagePart: "cannot be traced to user execution",
		},
		{
			name:            "cross-user leakage",
			record:          milestoneRecord(events.EventTypeAgentStarted, "u1"),
			expectedUser:    "u2",
			wantValid:       false,
			wantCriticality: events.CriticalityMissionCritical,
			wantMessagePart: "cross-user event leakage",
		},
		{
			name:            "empty expected user imposes no ownership expectation",
			record:          milestoneRecord(events.EventTypeAgentStarted, "u1"),
			expectedUser:    "",
			wantValid:       true,
			wantCriticality: events.CriticalityMissionCritical,
		},
		{
			name:            "unknown event type is operational and valid",
			record:          &events.Record{EventType: "future_event"},
			expectedUser:    "u1",
			wantValid:       true,
			wantCriticality: events.CriticalityOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStructural(nil)
			result := s.ValidateEvent(tt.record, tt.expectedUser)

			if result.IsValid != tt.wantValid {
				t.Errorf("ValidateEvent() IsValid = %v, want %v (message %q)",
					result.IsValid, tt.wantValid, result.ErrorMessage)
			}
			if result.Criticality != tt.wantCriticality {
				t.Errorf("ValidateEvent() Criticality = %s, want %s", result.Criticality, tt.wantCriticality)
			}
			if tt.wantMessagePart != "" && !strings.Contains(result.ErrorMessage, tt.wantMessagePart) {
				t.Errorf("ValidateEvent() message = %q, want it to contain %q", result.ErrorMessage, tt.wantMessagePart)
			}
		})
	}
}

func TestStructuralSameEventDifferentUsers(t *testing.T) {
	// The same event must pass for its owner and fail for anyone else.
	rec := milestoneRecord(events.EventTypeAgentStarted, "u1")
	s := NewStructural(nil)

	if res := s.ValidateEvent(rec, "u1"); !res.IsValid {
		t.Fatalf("owner validation failed: %s", res.ErrorMessage)
	}
	res := s.ValidateEvent(rec, "u2")
	if res.IsValid {
		t.Fatal("cross-user validation unexpectedly passed")
	}
	if !strings.Contains(res.ErrorMessage, "u1") || !strings.Contains(res.ErrorMessage, "u2") {
		t.Errorf("cross-user message should name both users, got %q", res.ErrorMessage)
	}
}

func TestStructuralCounters(t *testing.T) {
	s := NewStructural(nil)

	s.ValidateEvent(milestoneRecord(events.EventTypeAgentStarted, "u1"), "u1") // valid
	s.ValidateEvent(&events.Record{EventType: events.EventTypeRunError}, "u1") // failed, business value
	s.ValidateEvent(nil, "u1")                                                 // failed, mission critical

	stats := s.Stats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Failed != 2 {
		t.Errorf("Failed = %d, want 2", stats.Failed)
	}
	if stats.MissionCriticalFailed != 1 {
		t.Errorf("MissionCriticalFailed = %d, want 1", stats.MissionCriticalFailed)
	}

	s.Reset()
	if s.Stats().Total != 0 {
		t.Error("Reset() did not clear counters")
	}
}
