package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/agentwire/runcheck/pkg/events"
)

func instanceRecord(eventType events.EventType, runID string, payload map[string]any) *events.Record {
	return &events.Record{
		EventType: eventType,
		RunID:     runID,
		AgentName: "a1",
		UserID:    "u1",
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func TestInstanceValidateAndRecordFlow(t *testing.T) {
	inst := NewInstance("u1", DefaultConfig())

	payloads := map[events.EventType]map[string]any{
		events.EventTypeAgentStarted:   {"agent_id": "agent-7"},
		events.EventTypeAgentThinking:  {"agent_id": "agent-7"},
		events.EventTypeToolExecuting:  {"tool": "search"},
		events.EventTypeToolCompleted:  {"tool": "search"},
		events.EventTypeAgentCompleted: {"agent_id": "agent-7"},
	}

	for _, typ := range events.Milestones() {
		rec := instanceRecord(typ, "r1", payloads[typ])
		res := inst.ValidateEvent(rec, "u1")
		if !res.IsValid {
			t.Fatalf("ValidateEvent(%s) failed: %s", typ, res.ErrorMessage)
		}
		if err := inst.RecordEvent(rec); err != nil {
			t.Fatalf("RecordEvent(%s) error = %v", typ, err)
		}
	}

	report := inst.FullValidation()
	if !report.IsValid {
		t.Errorf("FullValidation() invalid: %s", report.ErrorMessage)
	}
	if report.BusinessValueScore != 100.0 {
		t.Errorf("BusinessValueScore = %v, want 100.0", report.BusinessValueScore)
	}
	if report.RevenueImpact != RevenueImpactNone {
		t.Errorf("RevenueImpact = %s, want NONE", report.RevenueImpact)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", report.Warnings)
	}
	if len(report.ReceivedEvents) != 5 {
		t.Errorf("len(ReceivedEvents) = %d, want 5", len(report.ReceivedEvents))
	}
}

func TestInstanceFullValidationMissingCompletion(t *testing.T) {
	inst := NewInstance("u1", DefaultConfig())
	for _, typ := range []events.EventType{
		events.EventTypeAgentStarted,
		events.EventTypeAgentThinking,
		events.EventTypeToolExecuting,
		events.EventTypeToolCompleted,
	} {
		if err := inst.RecordEvent(instanceRecord(typ, "r1", map[string]any{"agent_id": "a", "tool": "t"})); err != nil {
			t.Fatal(err)
		}
	}

	report := inst.FullValidation()
	if report.IsValid {
		t.Error("FullValidation() valid despite a missing milestone")
	}
	if report.Criticality != events.CriticalityMissionCritical {
		t.Errorf("Criticality = %s, want MISSION_CRITICAL", report.Criticality)
	}
	if report.BusinessValueScore != 80.0 {
		t.Errorf("BusinessValueScore = %v, want 80.0", report.BusinessValueScore)
	}
	if report.RevenueImpact != RevenueImpactCritical {
		t.Errorf("RevenueImpact = %s, want CRITICAL", report.RevenueImpact)
	}
	if !strings.Contains(report.ErrorMessage, "agent_completed") {
		t.Errorf("ErrorMessage = %q, want it to name agent_completed", report.ErrorMessage)
	}
}

func TestInstanceSequenceWarningsDoNotInvalidate(t *testing.T) {
	inst := NewInstance("u1", DefaultConfig())
	base := time.Now()
	order := []events.EventType{
		events.EventTypeAgentStarted,
		events.EventTypeAgentThinking,
		events.EventTypeToolCompleted, // out of order
		events.EventTypeToolExecuting,
		events.EventTypeAgentCompleted,
	}
	for i, typ := range order {
		rec := instanceRecord(typ, "r1", map[string]any{"agent_id": "a", "tool": "t"})
		rec.Timestamp = base.Add(time.Duration(i) * time.Second)
		if err := inst.RecordEvent(rec); err != nil {
			t.Fatal(err)
		}
	}

	if ok, errs := inst.ValidateSequence(); ok || !containsSubstring(errs, "tool_completed was recorded before tool_executing") {
		t.Errorf("ValidateSequence() = %v, %v; want ordering violation", ok, errs)
	}

	// All milestones arrived, so the full report is valid; the ordering
	// violation is surfaced as a warning.
	report := inst.FullValidation()
	if !report.IsValid {
		t.Errorf("FullValidation() invalid: %s", report.ErrorMessage)
	}
	if !containsSubstring(report.Warnings, "tool_completed was recorded before tool_executing") {
		t.Errorf("Warnings = %v, want the ordering violation surfaced", report.Warnings)
	}
}

func TestInstanceStrictRunReuse(t *testing.T) {
	inst := NewInstance("u1", DefaultConfig())
	if err := inst.RecordEvent(instanceRecord(events.EventTypeAgentStarted, "r1", nil)); err != nil {
		t.Fatal(err)
	}

	err := inst.RecordEvent(instanceRecord(events.EventTypeAgentStarted, "r2", nil))
	if err == nil {
		t.Fatal("strict instance accepted a second run without Reset")
	}

	inst.Reset()
	if err := inst.RecordEvent(instanceRecord(events.EventTypeAgentStarted, "r2", nil)); err != nil {
		t.Errorf("RecordEvent after Reset error = %v", err)
	}
}

func TestInstancePermissiveRunReuse(t *testing.T) {
	inst := NewInstance("u1", PermissiveConfig())
	if err := inst.RecordEvent(instanceRecord(events.EventTypeAgentStarted, "r1", nil)); err != nil {
		t.Fatal(err)
	}
	if err := inst.RecordEvent(instanceRecord(events.EventTypeAgentStarted, "r2", nil)); err != nil {
		t.Errorf("permissive instance rejected a second run: %v", err)
	}
}

func TestInstanceStrictRequiresTimestamp(t *testing.T) {
	inst := NewInstance("u1", DefaultConfig())
	rec := instanceRecord(events.EventTypeAgentStarted, "r1", nil)
	rec.Timestamp = time.Time{}

	res := inst.ValidateEvent(rec, "u1")
	if res.IsValid {
		t.Error("strict mode accepted a milestone with no timestamp")
	}
	if !strings.Contains(res.ErrorMessage, "timestamp") {
		t.Errorf("ErrorMessage = %q, want it to mention the timestamp", res.ErrorMessage)
	}
}

func TestInstancePanicDegradesToRejection(t *testing.T) {
	// A defect anywhere inside the validation path must come back as a
	// rejection, never escape as a panic to the caller.
	inst := NewInstance("u1", DefaultConfig(),
		WithValidationHook(func() { panic("boom") }))

	res := inst.ValidateEvent(instanceRecord(events.EventTypeAgentStarted, "r1", nil), "u1")
	if res.IsValid {
		t.Error("ValidateEvent returned valid after an internal panic")
	}
	if res.Criticality != events.CriticalityMissionCritical {
		t.Errorf("Criticality = %s, want MISSION_CRITICAL", res.Criticality)
	}
	if !strings.Contains(res.ErrorMessage, "internal validation failure") {
		t.Errorf("ErrorMessage = %q, want it to report the internal failure", res.ErrorMessage)
	}

	report := inst.FullValidation()
	if report.IsValid || report.Criticality != events.CriticalityMissionCritical {
		t.Errorf("FullValidation() = %+v, want a MISSION_CRITICAL rejection", report)
	}
}

func TestInstanceCheckPanicDegradesToFailure(t *testing.T) {
	inst := NewInstance("u1", DefaultConfig())
	if err := inst.RecordEvent(instanceRecord(events.EventTypeAgentStarted, "r1", nil)); err != nil {
		t.Fatal(err)
	}
	inst.checker.now = func() time.Time { panic("clock failure") }

	ok, errs := inst.ValidateTiming()
	if ok {
		t.Error("ValidateTiming returned ok after an internal panic")
	}
	if !containsSubstring(errs, "internal validation failure") {
		t.Errorf("errs = %v, want the internal failure reported", errs)
	}
}

func TestInstanceStatsAndHook(t *testing.T) {
	var hookCalls int
	inst := NewInstance("u1", DefaultConfig(), WithValidationHook(func() { hookCalls++ }))

	inst.ValidateEvent(instanceRecord(events.EventTypeAgentStarted, "r1", nil), "u1")
	inst.FullValidation()

	if hookCalls != 2 {
		t.Errorf("hook called %d times, want 2", hookCalls)
	}

	stats := inst.Stats()
	if stats.Validations != 2 {
		t.Errorf("Stats().Validations = %d, want 2", stats.Validations)
	}
	if stats.Structural.Total != 1 {
		t.Errorf("Stats().Structural.Total = %d, want 1", stats.Structural.Total)
	}
	if stats.ID != inst.ID() {
		t.Error("Stats().ID does not match the instance")
	}
}
