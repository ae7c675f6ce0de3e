package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/agentwire/runcheck/pkg/events"
)

// Checker validates ordering, timing, and content invariants over a
// tracker's recorded history. It is stateless apart from its configuration;
// Instance serializes calls alongside tracker mutation.
type Checker struct {
	cfg *Config
	now func() time.Time
}

// NewChecker creates a checker with the given configuration. A nil config
// gets the defaults.
func NewChecker(cfg *Config) *Checker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Checker{cfg: cfg, now: time.Now}
}

// ValidateSequence checks ordering invariants against the order milestones
// were actually recorded: agent_started must precede agent_completed, and
// tool_executing must precede tool_completed. Invariants are only enforced
// when both ends of a pair were received.
func (c *Checker) ValidateSequence(t *Tracker) (bool, []string) {
	var errs []string

	orderedPairs := [][2]events.EventType{
		{events.EventTypeAgentStarted, events.EventTypeAgentCompleted},
		{events.EventTypeToolExecuting, events.EventTypeToolCompleted},
	}
	for _, pair := range orderedPairs {
		before, haveBefore := t.Position(pair[0])
		after, haveAfter := t.Position(pair[1])
		if haveBefore && haveAfter && before >= after {
			errs = append(errs, fmt.Sprintf("%s was recorded before %s", pair[1], pair[0]))
		}
	}

	return len(errs) == 0, errs
}

// ValidateTiming checks that the run has not exceeded the configured
// timeout since its first recorded event, and surfaces excessive gaps
// between consecutive milestones. Gap findings are warning-level: they are
// reported but do not flip the overall verdict.
func (c *Checker) ValidateTiming(t *Tracker) (bool, []string) {
	var errs []string
	ok := true

	if startedAt, started := t.StartedAt(); started {
		elapsed := c.now().Sub(startedAt)
		if elapsed > c.cfg.RunTimeout.Std() {
			ok = false
			errs = append(errs, fmt.Sprintf("run exceeded timeout: %s elapsed since first event (limit %s)",
				elapsed.Round(time.Millisecond), c.cfg.RunTimeout.Std()))
		}
	}

	type stamped struct {
		milestone events.EventType
		at        time.Time
	}
	var seen []stamped
	for _, m := range events.Milestones() {
		if at, received := t.FirstSeen(m); received {
			seen = append(seen, stamped{milestone: m, at: at})
		}
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i].at.Before(seen[j].at) })

	for i := 1; i < len(seen); i++ {
		gap := seen[i].at.Sub(seen[i-1].at)
		if gap > c.cfg.MilestoneGap.Std() {
			errs = append(errs, fmt.Sprintf("warning: %s gap between %s and %s exceeds %s",
				gap.Round(time.Millisecond), seen[i-1].milestone, seen[i].milestone, c.cfg.MilestoneGap.Std()))
		}
	}

	return ok, errs
}

// ValidateContent checks that each recorded milestone carries the minimum
// identifying payload field for its type: an agent identifier for agent
// events and a tool identifier for tool events. A missing result on
// tool_completed is tolerated; tools are allowed to fail and still report
// completion.
func (c *Checker) ValidateContent(t *Tracker) (bool, []string) {
	var errs []string

	for _, rec := range t.History() {
		if !rec.IsMilestone() {
			continue
		}
		m, err := events.Promote(rec)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s could not be promoted: %v", rec.EventType, err))
			continue
		}
		switch v := m.(type) {
		case events.AgentStarted:
			if v.AgentID == "" {
				errs = append(errs, "agent_started payload is missing agent_id")
			}
		case events.AgentCompleted:
			if v.AgentID == "" {
				errs = append(errs, "agent_completed payload is missing agent_id")
			}
		case events.ToolExecuting:
			if v.Tool == "" {
				errs = append(errs, "tool_executing payload is missing tool")
			}
		case events.ToolCompleted:
			if v.Tool == "" {
				errs = append(errs, "tool_completed payload is missing tool")
			}
		}
	}

	return len(errs) == 0, errs
}
