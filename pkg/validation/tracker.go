package validation

import (
	"fmt"
	"time"

	"github.com/agentwire/runcheck/pkg/events"
)

// Tracker records the ordered event history for one run and which of the
// five critical milestones have been observed. Recording the same milestone
// twice grows the history but not the milestone set.
//
// Tracker is not goroutine-safe on its own; Instance serializes all access
// behind its single lock.
type Tracker struct {
	maxHistory int

	history     []*events.Record
	count       int // total recorded, monotonic across history trimming
	milestones  map[events.EventType]int // first-seen position
	milestoneAt map[events.EventType]time.Time
	firstAt     time.Time
	hasFirst    bool
}

// NewTracker creates a tracker whose history is bounded to maxHistory
// records. Non-positive values fall back to the default bound.
func NewTracker(maxHistory int) *Tracker {
	if maxHistory <= 0 {
		maxHistory = DefaultConfig().MaxHistorySize
	}
	return &Tracker{
		maxHistory:  maxHistory,
		milestones:  make(map[events.EventType]int),
		milestoneAt: make(map[events.EventType]time.Time),
	}
}

// Record appends rec to the run's ordered history and, for milestone
// events, marks the milestone as received. The record's own timestamp is
// used for timing bookkeeping when set; arrival time otherwise.
func (t *Tracker) Record(rec *events.Record) error {
	if rec == nil {
		return fmt.Errorf("cannot record nil event")
	}
	if rec.EventType == "" {
		return fmt.Errorf("cannot record event with empty type")
	}

	at := rec.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	if !t.hasFirst {
		t.firstAt = at
		t.hasFirst = true
	}

	position := t.count
	t.count++
	t.history = append(t.history, rec)
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}

	if events.IsMilestone(rec.EventType) {
		if _, seen := t.milestones[rec.EventType]; !seen {
			t.milestones[rec.EventType] = position
			t.milestoneAt[rec.EventType] = at
		}
	}
	return nil
}

// Score returns the business-value score: the percentage (0..100) of the
// five critical milestones received.
func (t *Tracker) Score() float64 {
	return float64(len(t.milestones)) / float64(events.MilestoneCount) * 100
}

// Missing returns the milestones not yet received, in canonical lifecycle
// order.
func (t *Tracker) Missing() []events.EventType {
	var missing []events.EventType
	for _, m := range events.Milestones() {
		if _, seen := t.milestones[m]; !seen {
			missing = append(missing, m)
		}
	}
	return missing
}

// Received returns the event types recorded so far in arrival order,
// duplicates preserved. History trimming shortens the returned list.
func (t *Tracker) Received() []events.EventType {
	out := make([]events.EventType, len(t.history))
	for i, rec := range t.history {
		out[i] = rec.EventType
	}
	return out
}

// Impact returns the revenue-impact tier derived from the missing set.
func (t *Tracker) Impact() RevenueImpact {
	return impactForMissing(t.Missing())
}

// Position returns the first-seen position of milestone m.
func (t *Tracker) Position(m events.EventType) (int, bool) {
	pos, ok := t.milestones[m]
	return pos, ok
}

// FirstSeen returns the timestamp at which milestone m was first recorded.
func (t *Tracker) FirstSeen(m events.EventType) (time.Time, bool) {
	at, ok := t.milestoneAt[m]
	return at, ok
}

// StartedAt returns the timestamp of the run's first recorded event.
func (t *Tracker) StartedAt() (time.Time, bool) {
	return t.firstAt, t.hasFirst
}

// Count returns the total number of events recorded, unaffected by history
// trimming.
func (t *Tracker) Count() int { return t.count }

// History returns the retained records in arrival order. The returned slice
// is a copy; the records themselves are shared and immutable by convention.
func (t *Tracker) History() []*events.Record {
	out := make([]*events.Record, len(t.history))
	copy(out, t.history)
	return out
}

// Reset clears all per-run state so the tracker can observe a new run.
func (t *Tracker) Reset() {
	t.history = nil
	t.count = 0
	t.milestones = make(map[events.EventType]int)
	t.milestoneAt = make(map[events.EventType]time.Time)
	t.firstAt = time.Time{}
	t.hasFirst = false
}
