package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/agentwire/runcheck/pkg/validation"
)

// UserContext identifies the isolation scope a validator instance belongs
// to. The registry never authenticates it; it trusts the caller.
type UserContext struct {
	// UserID is the opaque identity of the acting user.
	UserID string

	// Scope optionally narrows isolation below the user, e.g. a thread or
	// run ID. Empty scope isolates per user only.
	Scope string
}

// IsolationKey returns the stable key used to partition validator state.
func (uc UserContext) IsolationKey() string {
	if uc.Scope == "" {
		return uc.UserID
	}
	return uc.UserID + "/" + uc.Scope
}

// entry is the registry's bookkeeping for one isolated scope. The isolation
// key lives only in the registry map; the entry carries just the state that
// outlives a lookup.
type entry struct {
	instance        *validation.Instance
	createdAt       time.Time
	lastAccess      atomic.Int64 // unix nanoseconds
	validationCount atomic.Int64
}

func (e *entry) touch() {
	e.lastAccess.Store(time.Now().UnixNano())
}

func (e *entry) idleSince() time.Time {
	return time.Unix(0, e.lastAccess.Load())
}

// Registry creates, caches, and expires validator instances keyed by user
// context. The registry map is guarded by one coarse lock for structural
// changes; each instance carries its own lock, so contention on one user's
// validation never blocks another's.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	group   singleflight.Group
	cfg     *Config
	log     logrus.FieldLogger
	metrics *Metrics
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithLogger sets the structured logger used by the registry and the
// instances it creates.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics attaches Prometheus metrics to the registry.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New creates a registry. A nil config gets the defaults.
func New(cfg *Config, opts ...Option) *Registry {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r := &Registry{
		entries: make(map[string]*entry),
		cfg:     cfg,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the live validator instance for uc, constructing one
// when none exists or the cached one has expired. Concurrent calls for the
// same key are deduplicated; both callers receive the same instance.
func (r *Registry) GetOrCreate(uc UserContext) *validation.Instance {
	key := uc.IsolationKey()

	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if ok && !r.expired(e, r.cfg.TTL.Std()) {
		e.touch()
		return e.instance
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()

		if e, ok := r.entries[key]; ok && !r.expired(e, r.cfg.TTL.Std()) {
			e.touch()
			return e.instance, nil
		}

		e := &entry{createdAt: time.Now()}
		e.instance = validation.NewInstance(uc.UserID, r.cfg.Validation,
			validation.WithLogger(r.log),
			validation.WithValidationHook(func() {
				e.validationCount.Add(1)
				e.touch()
				if r.metrics != nil {
					r.metrics.ValidationsTotal.Inc()
				}
			}),
		)
		e.touch()
		r.entries[key] = e
		if r.metrics != nil {
			r.metrics.ActiveValidators.Set(float64(len(r.entries)))
		}
		r.log.WithFields(logrus.Fields{
			"key":       key,
			"validator": e.instance.ID(),
		}).Debug("created validator instance")
		return e.instance, nil
	})
	return v.(*validation.Instance)
}

// Reset removes the entry for uc so the next GetOrCreate yields a fresh,
// empty-state instance. It reports whether an entry was removed.
func (r *Registry) Reset(uc UserContext) bool {
	key := uc.IsolationKey()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	if r.metrics != nil {
		r.metrics.ActiveValidators.Set(float64(len(r.entries)))
	}
	return true
}

// SweepExpired removes entries whose last access is older than maxAge and
// returns the count removed.
func (r *Registry) SweepExpired(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, e := range r.entries {
		if r.expired(e, maxAge) {
			delete(r.entries, key)
			removed++
			r.log.WithFields(logrus.Fields{
				"key": key,
				"age": time.Since(e.createdAt).Round(time.Second).String(),
			}).Debug("swept idle validator instance")
		}
	}
	if removed > 0 {
		if r.metrics != nil {
			r.metrics.SweptTotal.Add(float64(removed))
		}
		r.log.WithField("removed", removed).Info("swept expired validator instances")
	}
	if r.metrics != nil {
		r.metrics.ActiveValidators.Set(float64(len(r.entries)))
	}
	return removed
}

// StartSweeper runs periodic sweeps at the configured interval until ctx is
// cancelled. It is the only background work the package spawns.
func (r *Registry) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.cfg.SweepInterval.Std())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.SweepExpired(r.cfg.TTL.Std())
				r.observeScores()
			}
		}
	}()
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Stats are anonymized aggregates across all live instances. No per-run or
// per-user data is exposed.
type Stats struct {
	ActiveValidators int     `json:"active_validators"`
	TotalValidations int64   `json:"total_validations"`
	AverageScore     float64 `json:"average_score"`
}

// Stats aggregates counters across all live instances.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{ActiveValidators: len(r.entries)}
	if len(r.entries) == 0 {
		return s
	}
	var scoreSum float64
	for _, e := range r.entries {
		s.TotalValidations += e.validationCount.Load()
		scoreSum += e.instance.Score()
	}
	s.AverageScore = scoreSum / float64(len(r.entries))
	return s
}

func (r *Registry) expired(e *entry, maxAge time.Duration) bool {
	return time.Since(e.idleSince()) > maxAge
}

func (r *Registry) observeScores() {
	if r.metrics == nil {
		return
	}
	r.metrics.AverageScore.Set(r.Stats().AverageScore)
}
