package notifications_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/broadcast"
	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/email"
	"github.com/shelterconnect/platform/pkg/notifications"
)

// countingDirectory counts chunk loads.
type countingDirectory struct {
	directory.Directory
	listCalls atomic.Int64
}

func (d *countingDirectory) ListByIDs(ctx context.Context, ids []int64) ([]directory.User, error) {
	d.listCalls.Add(1)
	return d.Directory.ListByIDs(ctx, ids)
}

// faultyStorage fails record creation for one recipient.
type faultyStorage struct {
	notifications.Storage
	failFor int64
}

func (s *faultyStorage) CreateRecord(ctx context.Context, rec *notifications.Record) error {
	if rec.RecipientID == s.failFor {
		return errors.New("constraint violation")
	}
	return s.Storage.CreateRecord(ctx, rec)
}

// capturingSender records outgoing emails.
type capturingSender struct {
	sent []email.SendEmailParams
}

func (s *capturingSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	s.sent = append(s.sent, params)
	return nil
}

func bulkUsers(n int) []directory.User {
	users := make([]directory.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, directory.User{
			ID:             int64(i),
			Email:          fmt.Sprintf("user%d@example.org", i),
			Name:           fmt.Sprintf("User %d", i),
			OrganizationID: 1,
			Role:           directory.RoleVolunteer,
			Active:         true,
			Preferences:    directory.DefaultPreferences(),
		})
	}
	return users
}

func newDispatcher(t *testing.T, storage notifications.Storage, dir directory.Directory, limits notifications.LimitsConfig, jobs staticJobCounter, opts ...notifications.DispatcherOption) *notifications.Dispatcher {
	t.Helper()

	counter, ok := storage.(notifications.DeliveryCounter)
	require.True(t, ok)
	limiter := notifications.NewRateLimiter(limits, counter, jobs,
		notifications.BulkTaskName(), []string{notifications.QueueNotifications, notifications.QueueHigh})

	d, err := notifications.NewDispatcher(storage, dir, limiter, opts...)
	require.NoError(t, err)
	return d
}

func bulkTask(t *testing.T, templateKey string, spec notifications.RecipientSpec, variables map[string]any) notifications.BulkSendTask {
	t.Helper()

	p, err := notifications.Build(templateKey, variables)
	require.NoError(t, err)
	return notifications.BulkSendTask{Recipients: spec, Payload: *p}
}

func TestDispatcher_Run(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("chunked fan-out to 120 recipients", func(t *testing.T) {
		t.Parallel()

		storage := notifications.NewMemoryStorage()
		dir := &countingDirectory{Directory: directory.NewMemoryDirectory(bulkUsers(120)...)}
		d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 1})

		task := bulkTask(t, notifications.TemplateServiceCreated,
			notifications.OrganizationRecipients(1),
			map[string]any{"service_name": "Albergue Norte"})
		require.NoError(t, d.Run(ctx, task))

		// ceil(120/50) chunk loads, one record per recipient.
		assert.Equal(t, int64(3), dir.listCalls.Load())
		for _, id := range []int64{1, 60, 120} {
			recs, err := storage.ListRecords(ctx, id, notifications.ListOptions{})
			require.NoError(t, err)
			assert.Len(t, recs, 1)
		}
	})

	t.Run("over recipient ceiling is a skipped no-op", func(t *testing.T) {
		t.Parallel()

		storage := notifications.NewMemoryStorage()
		dir := directory.NewMemoryDirectory(bulkUsers(20)...)
		limits := testLimits()
		limits.MaxRecipients = 10
		d := newDispatcher(t, storage, dir, limits, staticJobCounter{count: 1})

		task := bulkTask(t, notifications.TemplateServiceCreated,
			notifications.OrganizationRecipients(1), nil)
		require.NoError(t, d.Run(ctx, task))

		recs, err := storage.ListRecords(ctx, 1, notifications.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("per-recipient failure does not abort the chunk", func(t *testing.T) {
		t.Parallel()

		storage := &faultyStorage{Storage: notifications.NewMemoryStorage(), failFor: 2}
		dir := directory.NewMemoryDirectory(bulkUsers(4)...)
		d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 1})

		task := bulkTask(t, notifications.TemplateServiceCreated,
			notifications.OrganizationRecipients(1), nil)
		require.NoError(t, d.Run(ctx, task))

		for _, id := range []int64{1, 3, 4} {
			recs, err := storage.ListRecords(ctx, id, notifications.ListOptions{})
			require.NoError(t, err)
			assert.Len(t, recs, 1, "user %d", id)
		}
		recs, err := storage.ListRecords(ctx, 2, notifications.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("recipient over daily limit is skipped", func(t *testing.T) {
		t.Parallel()

		storage := notifications.NewMemoryStorage()
		dir := directory.NewMemoryDirectory(bulkUsers(2)...)
		limits := testLimits()
		limits.PerUserDailyLimit = 1
		d := newDispatcher(t, storage, dir, limits, staticJobCounter{count: 1})

		require.NoError(t, storage.CreateRecord(ctx, newRecord(t, 1, notifications.TemplateServiceCreated, time.Now())))

		task := bulkTask(t, notifications.TemplateServiceCreated,
			notifications.OrganizationRecipients(1), nil)
		require.NoError(t, d.Run(ctx, task))

		recs, err := storage.ListRecords(ctx, 1, notifications.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
		recs, err = storage.ListRecords(ctx, 2, notifications.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("resolution failure propagates for retry", func(t *testing.T) {
		t.Parallel()

		storage := notifications.NewMemoryStorage()
		dir := directory.NewMemoryDirectory()
		d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 1})

		task := bulkTask(t, notifications.TemplateServiceCreated, notifications.RecipientSpec{}, nil)
		assert.ErrorIs(t, d.Run(ctx, task), notifications.ErrInvalidRecipientSpec)
	})
}

func TestDispatcher_EmailChannel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()
	dir := directory.NewMemoryDirectory(bulkUsers(2)...)
	sender := &capturingSender{}
	d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 1},
		notifications.WithEmailDeliverer(notifications.NewEmailDeliverer(sender, "https://app.example.org")))

	// High display priority forces the email channel for opted-in users.
	task := bulkTask(t, notifications.TemplateEmergencyAlert,
		notifications.OrganizationRecipients(1),
		map[string]any{"location": "Calle Mayor 1", "organization_name": "Cruz Roja"})
	require.NoError(t, d.Run(ctx, task))

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0].Subject, "Alerta ShelterConnect")
	assert.Contains(t, sender.sent[0].BodyHTML, "Calle Mayor 1")
	assert.Equal(t, "organization_alert", sender.sent[0].Tag)
}

func TestDispatcher_PushChannel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := notifications.NewMemoryStorage()
	dir := directory.NewMemoryDirectory(bulkUsers(1)...)

	broadcaster := broadcast.NewMemoryBroadcaster[notifications.PushEvent](8)
	t.Cleanup(func() { _ = broadcaster.Close() })
	push := notifications.NewPushDeliverer(broadcaster)
	sub := push.Subscribe(ctx)

	d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 1},
		notifications.WithPushDeliverer(push))

	task := bulkTask(t, notifications.TemplateServiceCapacityFull,
		notifications.ExplicitRecipients(1),
		map[string]any{"service_name": "Comedor Centro", "service_id": int64(7)})
	require.NoError(t, d.Run(ctx, task))

	select {
	case msg := <-sub.Receive(ctx):
		assert.Equal(t, notifications.EventServiceStatusUpdated, msg.Data.Event)
		assert.Equal(t, int64(1), msg.Data.UserID)
		assert.Equal(t, int64(7), msg.Data.ServiceID)
		assert.Equal(t, "El servicio Comedor Centro ha alcanzado su capacidad máxima", msg.Data.Data["message"])
	case <-time.After(time.Second):
		t.Fatal("expected push event")
	}
}
