package validation

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agentwire/runcheck/pkg/events"
)

// Instance bundles structural validation, milestone tracking, scoring, and
// sequence checking for one user's run. All methods serialize behind a
// single lock, so score and missing-set reads always observe a consistent
// snapshot even under concurrent callers.
//
// Canonical usage is one instance per run. In strict mode, recording an
// event for a second run is rejected; Reset must be called between runs.
type Instance struct {
	id     string
	userID string

	mu         sync.Mutex
	runID      string
	structural *Structural
	tracker    *Tracker
	checker    *Checker
	cfg        *Config

	validations int64
	onValidate  func()

	log logrus.FieldLogger
}

// InstanceOption configures an instance at construction time.
type InstanceOption func(*Instance)

// WithLogger sets the structured logger used by the instance and its
// structural validator.
func WithLogger(log logrus.FieldLogger) InstanceOption {
	return func(i *Instance) {
		if log != nil {
			i.log = log
		}
	}
}

// WithValidationHook registers a callback invoked after every validation
// call. The registry uses it to maintain per-entry access bookkeeping.
func WithValidationHook(fn func()) InstanceOption {
	return func(i *Instance) {
		i.onValidate = fn
	}
}

// NewInstance creates a validator instance scoped to userID.
func NewInstance(userID string, cfg *Config, opts ...InstanceOption) *Instance {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	inst := &Instance{
		id:     uuid.NewString(),
		userID: userID,
		cfg:    cfg,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(inst)
	}
	inst.log = inst.log.WithFields(logrus.Fields{
		"validator": inst.id,
		"user":      userID,
	})
	inst.structural = NewStructural(inst.log)
	inst.tracker = NewTracker(cfg.MaxHistorySize)
	inst.checker = NewChecker(cfg)
	return inst
}

// ID returns the instance's unique identifier.
func (i *Instance) ID() string { return i.id }

// UserID returns the user this instance is scoped to.
func (i *Instance) UserID() string { return i.userID }

// ValidateEvent runs the structural checks for rec on behalf of
// expectedUserID. Expected invalid input yields an invalid Result; a panic
// inside validation logic degrades to a MISSION_CRITICAL rejection.
func (i *Instance) ValidateEvent(rec *events.Record, expectedUserID string) (res *Result) {
	i.mu.Lock()
	defer i.mu.Unlock()
	defer i.recoverResult(&res)
	i.countValidation()

	res = i.structural.ValidateEvent(rec, expectedUserID)
	if !res.IsValid {
		return res
	}
	if i.cfg.Strict && rec.IsMilestone() && rec.Timestamp.IsZero() {
		return invalidResult(events.CriticalityFor(rec.EventType),
			"milestone event %s has no timestamp (required in strict mode)", rec.EventType)
	}
	return res
}

// RecordEvent appends rec to the run's milestone tracker. Callers validate
// first; recording performs only the minimal shape checks needed to keep
// tracker state sane.
func (i *Instance) RecordEvent(rec *events.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if rec == nil {
		return fmt.Errorf("cannot record nil event")
	}
	if i.cfg.Strict && rec.RunID != "" {
		if i.runID == "" {
			i.runID = rec.RunID
		} else if rec.RunID != i.runID {
			return fmt.Errorf("instance is tracking run %s; call Reset before recording run %s", i.runID, rec.RunID)
		}
	}
	return i.tracker.Record(rec)
}

// ValidateSequence checks milestone ordering invariants for the run.
func (i *Instance) ValidateSequence() (ok bool, errs []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	defer i.recoverChecks(&ok, &errs)
	return i.checker.ValidateSequence(i.tracker)
}

// ValidateTiming checks the run timeout and inter-milestone gaps.
func (i *Instance) ValidateTiming() (ok bool, errs []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	defer i.recoverChecks(&ok, &errs)
	return i.checker.ValidateTiming(i.tracker)
}

// ValidateContent checks milestone payloads for their identifying fields.
func (i *Instance) ValidateContent() (ok bool, errs []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	defer i.recoverChecks(&ok, &errs)
	return i.checker.ValidateContent(i.tracker)
}

// FullValidation assesses the whole run: milestone completeness plus the
// sequence, timing, and content checks. Only missing milestones make the
// result invalid; sequence, timing, and content findings are surfaced as
// warnings.
func (i *Instance) FullValidation() (res *Result) {
	i.mu.Lock()
	defer i.mu.Unlock()
	defer i.recoverResult(&res)
	i.countValidation()

	missing := i.tracker.Missing()
	impact := i.tracker.Impact()

	var warnings []string
	if _, errs := i.checker.ValidateSequence(i.tracker); len(errs) > 0 {
		warnings = append(warnings, errs...)
	}
	if _, errs := i.checker.ValidateTiming(i.tracker); len(errs) > 0 {
		warnings = append(warnings, errs...)
	}
	if _, errs := i.checker.ValidateContent(i.tracker); len(errs) > 0 {
		warnings = append(warnings, errs...)
	}

	res = validResult(events.CriticalityOperational)
	if len(missing) > 0 {
		res = invalidResult(events.CriticalityMissionCritical,
			"run is missing %d critical milestone(s): %v", len(missing), missing)
	}
	res.MissingCriticalEvents = missing
	res.ReceivedEvents = i.tracker.Received()
	res.BusinessValueScore = i.tracker.Score()
	res.RevenueImpact = impact
	res.BusinessImpact = describeImpact(impact, missing)
	res.Warnings = warnings
	return res
}

// Score returns the run's current business-value score.
func (i *Instance) Score() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tracker.Score()
}

// Missing returns the milestones not yet received.
func (i *Instance) Missing() []events.EventType {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tracker.Missing()
}

// Reset clears all per-run state so the instance can observe a new run.
// Structural counters are preserved; they describe the instance, not a run.
func (i *Instance) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.runID = ""
	i.tracker.Reset()
}

// InstanceStats is an anonymized snapshot of one instance's counters.
type InstanceStats struct {
	ID          string          `json:"id"`
	Validations int64           `json:"validations"`
	Structural  StructuralStats `json:"structural"`
	Score       float64         `json:"score"`
	EventCount  int             `json:"event_count"`
}

// Stats returns a snapshot of the instance's counters and current score.
func (i *Instance) Stats() InstanceStats {
	i.mu.Lock()
	defer i.mu.Unlock()
	return InstanceStats{
		ID:          i.id,
		Validations: i.validations,
		Structural:  i.structural.Stats(),
		Score:       i.tracker.Score(),
		EventCount:  i.tracker.Count(),
	}
}

func (i *Instance) countValidation() {
	i.validations++
	if i.onValidate != nil {
		i.onValidate()
	}
}

// recoverResult converts a panic in validation logic into a
// MISSION_CRITICAL rejection so a validator defect degrades to "reject and
// report" instead of crashing the host request path.
func (i *Instance) recoverResult(res **Result) {
	if r := recover(); r != nil {
		i.log.WithField("panic", r).Error("validator panicked; rejecting event")
		*res = invalidResult(events.CriticalityMissionCritical, "internal validation failure: %v", r)
	}
}

func (i *Instance) recoverChecks(ok *bool, errs *[]string) {
	if r := recover(); r != nil {
		i.log.WithField("panic", r).Error("validator panicked during check")
		*ok = false
		*errs = []string{fmt.Sprintf("internal validation failure: %v", r)}
	}
}
