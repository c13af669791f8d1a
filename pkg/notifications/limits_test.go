package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/notifications"
)

type staticJobCounter struct {
	count int
	err   error
}

func (c staticJobCounter) CountTasksOn(ctx context.Context, taskName string, queues []string, day time.Time) (int, error) {
	return c.count, c.err
}

func testLimits() notifications.LimitsConfig {
	return notifications.LimitsConfig{
		MaxRecipients:     1000,
		BulkDailyLimit:    5,
		PerUserDailyLimit: 50,
	}
}

func TestRateLimiter_JobEligible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()

	t.Run("within limits", func(t *testing.T) {
		t.Parallel()

		limiter := notifications.NewRateLimiter(testLimits(), storage, staticJobCounter{count: 1},
			notifications.BulkTaskName(), []string{notifications.QueueNotifications})
		ok, err := limiter.JobEligible(ctx, 120, time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("too many recipients", func(t *testing.T) {
		t.Parallel()

		limiter := notifications.NewRateLimiter(testLimits(), storage, staticJobCounter{count: 0},
			notifications.BulkTaskName(), []string{notifications.QueueNotifications})
		ok, err := limiter.JobEligible(ctx, 1001, time.Now())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("daily bulk quota spent", func(t *testing.T) {
		t.Parallel()

		// Count includes the asking job itself: 6 tasks today means 5
		// jobs already ran before this one.
		limiter := notifications.NewRateLimiter(testLimits(), storage, staticJobCounter{count: 6},
			notifications.BulkTaskName(), []string{notifications.QueueNotifications})
		ok, err := limiter.JobEligible(ctx, 10, time.Now())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("counter failure propagates", func(t *testing.T) {
		t.Parallel()

		limiter := notifications.NewRateLimiter(testLimits(), storage, staticJobCounter{err: context.DeadlineExceeded},
			notifications.BulkTaskName(), []string{notifications.QueueNotifications})
		_, err := limiter.JobEligible(ctx, 10, time.Now())
		assert.Error(t, err)
	})
}

func TestRateLimiter_RecipientEligible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()
	limits := testLimits()
	limits.PerUserDailyLimit = 3

	limiter := notifications.NewRateLimiter(limits, storage, staticJobCounter{},
		notifications.BulkTaskName(), []string{notifications.QueueNotifications})

	deliver := func(t *testing.T, userID int64) {
		t.Helper()
		p, err := notifications.Build(notifications.TemplateDailyReportReady, nil)
		require.NoError(t, err)
		require.NoError(t, storage.CreateRecord(ctx, &notifications.Record{
			ID:          uuid.New(),
			RecipientID: userID,
			Channel:     notifications.ChannelDatabase,
			Type:        p.Class,
			Data:        *p,
			CreatedAt:   time.Now(),
		}))
	}

	now := time.Now()

	ok, err := limiter.RecipientEligible(ctx, 42, now)
	require.NoError(t, err)
	assert.True(t, ok)

	deliver(t, 42)
	deliver(t, 42)

	// Still below the limit of 3.
	ok, err = limiter.RecipientEligible(ctx, 42, now)
	require.NoError(t, err)
	assert.True(t, ok)

	deliver(t, 42)

	ok, err = limiter.RecipientEligible(ctx, 42, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// The check itself does not consume quota.
	ok, err = limiter.RecipientEligible(ctx, 42, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other recipients are unaffected.
	ok, err = limiter.RecipientEligible(ctx, 43, now)
	require.NoError(t, err)
	assert.True(t, ok)
}
