package events

import "sort"

// Criticality classifies how much business value is lost when an event of a
// given type fails to reach the user.
type Criticality int

const (
	// CriticalityMissionCritical events break the core promise of the
	// product when lost; the user's run becomes untraceable or appears to
	// hang forever.
	CriticalityMissionCritical Criticality = iota

	// CriticalityBusinessValue events degrade the experience when lost but
	// the run remains traceable; delivery may be retried or queued.
	CriticalityBusinessValue

	// CriticalityOperational events are housekeeping; loss is tolerable.
	CriticalityOperational
)

func (c Criticality) String() string {
	switch c {
	case CriticalityMissionCritical:
		return "MISSION_CRITICAL"
	case CriticalityBusinessValue:
		return "BUSINESS_VALUE"
	case CriticalityOperational:
		return "OPERATIONAL"
	default:
		return "UNKNOWN"
	}
}

// Schema describes the structural requirements for one known event type.
type Schema struct {
	// RequiredPayloadFields lists payload keys that must be present for the
	// event to be structurally valid.
	RequiredPayloadFields []string

	// Criticality is the tier assigned to validation failures of this type.
	Criticality Criticality
}

// schemaTable is the static mapping from event type to structural
// requirements. Milestone types have no required payload fields here; their
// identifying payload fields are checked by the content validator, which
// reports rather than rejects.
var schemaTable = map[EventType]Schema{
	EventTypeAgentStarted:   {Criticality: CriticalityMissionCritical},
	EventTypeAgentThinking:  {Criticality: CriticalityMissionCritical},
	EventTypeToolExecuting:  {Criticality: CriticalityMissionCritical},
	EventTypeToolCompleted:  {Criticality: CriticalityMissionCritical},
	EventTypeAgentCompleted: {Criticality: CriticalityMissionCritical},

	EventTypeRunError:      {RequiredPayloadFields: []string{"message"}, Criticality: CriticalityBusinessValue},
	EventTypeAgentProgress: {RequiredPayloadFields: []string{"progress"}, Criticality: CriticalityBusinessValue},
	EventTypeStreamChunk:   {RequiredPayloadFields: []string{"content"}, Criticality: CriticalityBusinessValue},

	EventTypeHeartbeat:     {Criticality: CriticalityOperational},
	EventTypeConnectionAck: {Criticality: CriticalityOperational},
}

// SchemaFor returns the schema for t and whether t is a known type.
func SchemaFor(t EventType) (Schema, bool) {
	s, ok := schemaTable[t]
	return s, ok
}

// CriticalityFor returns the criticality tier for t. Unknown event types are
// treated as operational so forward-compatible producers are not rejected.
func CriticalityFor(t EventType) Criticality {
	if s, ok := schemaTable[t]; ok {
		return s.Criticality
	}
	return CriticalityOperational
}

// MissingPayloadFields returns the schema-required payload fields absent
// from r, sorted for stable error messages. A nil result means the record
// satisfies its schema (or its type is unknown to the table).
func MissingPayloadFields(r *Record) []string {
	if r == nil {
		return nil
	}
	s, ok := schemaTable[r.EventType]
	if !ok || len(s.RequiredPayloadFields) == 0 {
		return nil
	}
	var missing []string
	for _, field := range s.RequiredPayloadFields {
		if r.Payload == nil {
			missing = append(missing, field)
			continue
		}
		if _, present := r.Payload[field]; !present {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}
