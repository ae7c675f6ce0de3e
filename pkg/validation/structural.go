package validation

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/agentwire/runcheck/pkg/events"
)

// Structural checks the shape, schema-required fields, and user ownership
// of a single event record against the schema table. Checks run in order
// and short-circuit on the first failure. The only side effect is the
// internal counters used for statistics reporting.
type Structural struct {
	mu                    sync.Mutex
	total                 int64
	failed                int64
	missionCriticalFailed int64

	log logrus.FieldLogger
}

// StructuralStats is a snapshot of a validator's counters.
type StructuralStats struct {
	Total                 int64 `json:"total"`
	Failed                int64 `json:"failed"`
	MissionCriticalFailed int64 `json:"mission_critical_failed"`
}

// NewStructural creates a structural validator. A nil logger falls back to
// the standard logrus logger.
func NewStructural(log logrus.FieldLogger) *Structural {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Structural{log: log}
}

// ValidateEvent validates a single record on behalf of expectedUserID.
// A mismatch between the record's embedded user and expectedUserID is a
// security invariant violation, not a data-quality problem, and always
// fails MISSION_CRITICAL. An empty expectedUserID means the caller has no
// ownership expectation and the check is skipped; callers enforcing
// isolation must pass the acting user's ID.
//
// The payload-must-be-a-map invariant is enforced by the Record type
// itself: a scalar payload is unrepresentable past the decode boundary.
func (s *Structural) ValidateEvent(rec *events.Record, expectedUserID string) *Result {
	result := s.validate(rec, expectedUserID)
	s.count(result)
	return result
}

func (s *Structural) validate(rec *events.Record, expectedUserID string) *Result {
	if rec == nil {
		return invalidResult(events.CriticalityMissionCritical, "event is not a record")
	}

	if rec.EventType == "" {
		return invalidResult(events.CriticalityMissionCritical, "event type is missing or empty")
	}

	if missing := events.MissingPayloadFields(rec); len(missing) > 0 {
		return invalidResult(events.CriticalityFor(rec.EventType),
			"event %s is missing required fields: %v", rec.EventType, missing)
	}

	if rec.IsMilestone() {
		if rec.RunID == "" {
			return invalidResult(events.CriticalityMissionCritical,
				"milestone event %s has no run ID and cannot be traced to user execution", rec.EventType)
		}
		if rec.AgentName == "" {
			return invalidResult(events.CriticalityMissionCritical,
				"milestone event %s has no agent name and cannot be traced to user execution", rec.EventType)
		}
	}

	if rec.UserID != "" && expectedUserID != "" && rec.UserID != expectedUserID {
		s.log.WithFields(logrus.Fields{
			"event_type":    rec.EventType,
			"event_user":    rec.UserID,
			"expected_user": expectedUserID,
			"run_id":        rec.RunID,
		}).Error("cross-user event leakage detected")
		return invalidResult(events.CriticalityMissionCritical,
			"cross-user event leakage: event belongs to user %q but was validated for user %q",
			rec.UserID, expectedUserID)
	}

	return validResult(events.CriticalityFor(rec.EventType))
}

func (s *Structural) count(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if !result.IsValid {
		s.failed++
		if result.Criticality == events.CriticalityMissionCritical {
			s.missionCriticalFailed++
		}
	}
}

// Stats returns a snapshot of the validation counters.
func (s *Structural) Stats() StructuralStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StructuralStats{
		Total:                 s.total,
		Failed:                s.failed,
		MissionCriticalFailed: s.missionCriticalFailed,
	}
}

// Reset clears the validation counters.
func (s *Structural) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total, s.failed, s.missionCriticalFailed = 0, 0, 0
}
