package notifications

import (
	"context"
	"fmt"
	"time"
)

// LimitsConfig holds the fan-out ceilings. Defaults match the platform's
// production configuration.
type LimitsConfig struct {
	MaxRecipients     int `env:"NOTIFY_MAX_RECIPIENTS" envDefault:"1000"`
	BulkDailyLimit    int `env:"NOTIFY_BULK_DAILY_LIMIT" envDefault:"5"`
	PerUserDailyLimit int `env:"NOTIFY_PER_USER_DAILY_LIMIT" envDefault:"50"`
}

// DeliveryCounter counts successful deliveries to one recipient on a
// calendar day. Implemented by the notification storage.
type DeliveryCounter interface {
	CountDeliveredOn(ctx context.Context, recipientID int64, day time.Time) (int, error)
}

// JobCounter counts bulk dispatch tasks created on a calendar day,
// including completed and dead-lettered ones. Implemented by the queue
// storage.
type JobCounter interface {
	CountTasksOn(ctx context.Context, taskName string, queues []string, day time.Time) (int, error)
}

// RateLimiter answers eligibility questions before any delivery happens.
// It only reads; callers skip ineligible units and log the skip.
//
// Checks are count-then-act: two jobs racing the same limit can both pass
// a check that their combined effect exceeds. The limits bound abuse, not
// exact quotas, so this is accepted rather than paid for with locking.
type RateLimiter struct {
	limits     LimitsConfig
	deliveries DeliveryCounter
	jobs       JobCounter
	taskName   string
	queues     []string
}

// NewRateLimiter creates a limiter. taskName and queues identify the bulk
// dispatch tasks counted against the daily job limit.
func NewRateLimiter(limits LimitsConfig, deliveries DeliveryCounter, jobs JobCounter, taskName string, queues []string) *RateLimiter {
	return &RateLimiter{
		limits:     limits,
		deliveries: deliveries,
		jobs:       jobs,
		taskName:   taskName,
		queues:     queues,
	}
}

// Limits returns the configured ceilings.
func (l *RateLimiter) Limits() LimitsConfig {
	return l.limits
}

// JobEligible reports whether a bulk job with the given recipient count
// may run on the given day. A job over the recipient ceiling or past the
// daily bulk quota is skipped as a whole.
func (l *RateLimiter) JobEligible(ctx context.Context, recipientCount int, asOf time.Time) (bool, error) {
	if recipientCount > l.limits.MaxRecipients {
		return false, nil
	}

	// The count includes the task row of the job currently asking, so the
	// quota compares against count-1 jobs started before it.
	started, err := l.jobs.CountTasksOn(ctx, l.taskName, l.queues, asOf)
	if err != nil {
		return false, fmt.Errorf("notifications: count bulk jobs: %w", err)
	}
	return started <= l.limits.BulkDailyLimit, nil
}

// RecipientEligible reports whether one recipient may still receive
// deliveries on the given day.
func (l *RateLimiter) RecipientEligible(ctx context.Context, recipientID int64, asOf time.Time) (bool, error) {
	delivered, err := l.deliveries.CountDeliveredOn(ctx, recipientID, asOf)
	if err != nil {
		return false, fmt.Errorf("notifications: count deliveries for user %d: %w", recipientID, err)
	}
	return delivered < l.limits.PerUserDailyLimit, nil
}
