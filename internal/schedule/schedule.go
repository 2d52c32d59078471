// Package schedule decides whether a module is eligible to run, using a
// Redis-backed cooldown per module. A module runs when no cooldown key is
// present; marking a run sets the key with the module's interval as TTL.
package schedule

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
)

const keyPrefix = "alarmd:cooldown:"

// Scheduler implements the eligibility predicate consumed by the pipeline.
type Scheduler struct {
	redis           *redis.Client
	enabled         bool
	defaultInterval time.Duration
	intervals       map[string]time.Duration
	log             *logging.Logger
}

// New creates a scheduler. With a nil client or enabled=false every module
// is always eligible.
func New(client *redis.Client, enabled bool, defaultInterval time.Duration, intervals map[string]time.Duration, log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Default()
	}
	if defaultInterval <= 0 {
		defaultInterval = 5 * time.Minute
	}
	return &Scheduler{
		redis:           client,
		enabled:         enabled,
		defaultInterval: defaultInterval,
		intervals:       intervals,
		log:             log,
	}
}

// IsEnabled reports whether cooldown state is tracked at all.
func (s *Scheduler) IsEnabled() bool {
	return s.enabled && s.redis != nil
}

// ShouldRun reports whether the named module is eligible. Redis errors fail
// open: a broken state store must not silence the whole daemon.
func (s *Scheduler) ShouldRun(ctx context.Context, name string, role module.Role) bool {
	if !s.IsEnabled() {
		return true
	}

	n, err := s.redis.Exists(ctx, s.key(name, role)).Result()
	if err != nil {
		s.log.Warn("cooldown lookup failed, allowing run",
			logging.Module(name), logging.Error(err))
		return true
	}
	return n == 0
}

// MarkRun records that the named module just ran, starting its cooldown.
func (s *Scheduler) MarkRun(ctx context.Context, name string, role module.Role) {
	if !s.IsEnabled() {
		return
	}

	interval := s.interval(name)
	if err := s.redis.Set(ctx, s.key(name, role), time.Now().UTC().Format(time.RFC3339), interval).Err(); err != nil {
		s.log.Warn("failed to record module run",
			logging.Module(name), logging.Error(err))
	}
}

func (s *Scheduler) interval(name string) time.Duration {
	if iv, ok := s.intervals[name]; ok && iv > 0 {
		return iv
	}
	return s.defaultInterval
}

func (s *Scheduler) key(name string, role module.Role) string {
	return keyPrefix + string(role) + ":" + name
}
