package validation

import (
	"fmt"
	"time"

	"github.com/agentwire/runcheck/pkg/events"
)

// RevenueImpact is the ordinal severity tier derived from which milestones
// are missing. It prioritizes operator attention; exact dollar thresholds
// are business policy and live outside this core.
type RevenueImpact int

const (
	RevenueImpactNone RevenueImpact = iota
	RevenueImpactLow
	RevenueImpactMedium
	RevenueImpactHigh
	RevenueImpactCritical
)

func (i RevenueImpact) String() string {
	switch i {
	case RevenueImpactNone:
		return "NONE"
	case RevenueImpactLow:
		return "LOW"
	case RevenueImpactMedium:
		return "MEDIUM"
	case RevenueImpactHigh:
		return "HIGH"
	case RevenueImpactCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Result is the verdict for one validation call or one full-run assessment.
// BusinessValueScore and RevenueImpact are derived, never set by callers.
type Result struct {
	IsValid               bool               `json:"is_valid"`
	ErrorMessage          string             `json:"error_message,omitempty"`
	Criticality           events.Criticality `json:"criticality"`
	BusinessImpact        string             `json:"business_impact,omitempty"`
	MissingCriticalEvents []events.EventType `json:"missing_critical_events,omitempty"`
	ReceivedEvents        []events.EventType `json:"received_events,omitempty"`
	BusinessValueScore    float64            `json:"business_value_score"`
	RevenueImpact         RevenueImpact      `json:"revenue_impact"`
	Warnings              []string           `json:"warnings,omitempty"`
	Timestamp             time.Time          `json:"timestamp"`
}

// Valid returns a passing result at criticality c. Collaborating packages
// use it to report verdicts in the same shape as event validation.
func Valid(c events.Criticality) *Result {
	return validResult(c)
}

// Invalid returns a failing result at criticality c with a formatted
// message.
func Invalid(c events.Criticality, format string, args ...any) *Result {
	return invalidResult(c, format, args...)
}

func validResult(c events.Criticality) *Result {
	return &Result{
		IsValid:     true,
		Criticality: c,
		Timestamp:   time.Now(),
	}
}

func invalidResult(c events.Criticality, format string, args ...any) *Result {
	return &Result{
		IsValid:      false,
		ErrorMessage: fmt.Sprintf(format, args...),
		Criticality:  c,
		Timestamp:    time.Now(),
	}
}

// impactForMissing derives the revenue-impact tier from the missing
// milestone set. The count-based escalation is overridden to CRITICAL
// whenever agent_completed is among the missing set: the user is left
// waiting indefinitely with no indication the run ended.
func impactForMissing(missing []events.EventType) RevenueImpact {
	for _, t := range missing {
		if t == events.EventTypeAgentCompleted {
			return RevenueImpactCritical
		}
	}
	switch len(missing) {
	case 0:
		return RevenueImpactNone
	case 1:
		return RevenueImpactLow
	case 2:
		return RevenueImpactMedium
	default:
		return RevenueImpactHigh
	}
}

// describeImpact renders the operator-facing summary for a derived tier.
func describeImpact(impact RevenueImpact, missing []events.EventType) string {
	switch impact {
	case RevenueImpactNone:
		return "all critical milestones delivered"
	case RevenueImpactCritical:
		return fmt.Sprintf("user never learns the run finished (missing: %v)", missing)
	default:
		return fmt.Sprintf("%d critical milestone(s) undelivered (missing: %v)", len(missing), missing)
	}
}
