package notifications_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/notifications"
	"github.com/shelterconnect/platform/pkg/queue"
)

func newAsyncService(t *testing.T) (*notifications.Service, *queue.MemoryStorage) {
	t.Helper()

	tasks := queue.NewMemoryStorage()
	enqueuer, err := queue.NewEnqueuer(tasks, queue.WithDefaultQueue(notifications.QueueNotifications))
	require.NoError(t, err)

	storage := notifications.NewMemoryStorage()
	dir := directory.NewMemoryDirectory(bulkUsers(5)...)
	d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 1})

	svc, err := notifications.NewService(enqueuer, d)
	require.NoError(t, err)
	return svc, tasks
}

func TestService_SendFromTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("routine send goes to the notifications queue", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newAsyncService(t)
		err := svc.SendFromTemplate(ctx, notifications.TemplateServiceCreated,
			notifications.OrganizationRecipients(1),
			map[string]any{"service_name": "Albergue Norte"})
		require.NoError(t, err)

		queued := tasks.Tasks()
		require.Len(t, queued, 1)
		assert.Equal(t, notifications.QueueNotifications, queued[0].Queue)
		assert.Equal(t, notifications.BulkTaskName(), queued[0].TaskName)
		assert.Equal(t, int8(3), queued[0].MaxRetries)
		assert.Equal(t, []int{10, 30, 60}, queued[0].BackoffSeconds)

		var task notifications.BulkSendTask
		require.NoError(t, json.Unmarshal(queued[0].Payload, &task))
		assert.Equal(t, int64(1), task.Recipients.OrganizationID)
		assert.Equal(t, "Se ha creado un nuevo servicio: Albergue Norte en {organization_name}", task.Payload.Message)
	})

	t.Run("critical send jumps to the high queue", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newAsyncService(t)
		err := svc.SendEmergencyAlert(ctx, "Evacuación inmediata", "", nil)
		require.NoError(t, err)

		queued := tasks.Tasks()
		require.Len(t, queued, 1)
		assert.Equal(t, notifications.QueueHigh, queued[0].Queue)

		var task notifications.BulkSendTask
		require.NoError(t, json.Unmarshal(queued[0].Payload, &task))
		assert.True(t, task.Recipients.AllActive)
		assert.Contains(t, task.Payload.Message, "No especificada")
	})

	t.Run("unknown template is rejected before enqueue", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newAsyncService(t)
		err := svc.SendFromTemplate(ctx, "nonexistent", notifications.AllActiveRecipients(), nil)
		assert.ErrorIs(t, err, notifications.ErrUnknownTemplate)
		assert.Empty(t, tasks.Tasks())
	})

	t.Run("empty recipient spec is rejected", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newAsyncService(t)
		err := svc.SendFromTemplate(ctx, notifications.TemplateServiceCreated, notifications.RecipientSpec{}, nil)
		assert.ErrorIs(t, err, notifications.ErrInvalidRecipientSpec)
		assert.Empty(t, tasks.Tasks())
	})
}

func TestService_SynchronousSends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := notifications.NewMemoryStorage()
	dir := directory.NewMemoryDirectory(bulkUsers(3)...)
	d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{count: 0})

	svc, err := notifications.NewService(nil, d, notifications.WithSynchronousSends())
	require.NoError(t, err)

	require.NoError(t, svc.NotifyServiceCapacityChange(ctx, notifications.ServiceInfo{
		ID:               7,
		Name:             "Comedor Centro",
		OrganizationID:   1,
		OrganizationName: "Cruz Roja",
		CurrentCapacity:  40,
		MaxCapacity:      40,
	}, true))

	// Inline mode delivers before returning.
	recs, err := storage.ListRecords(ctx, 1, notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "El servicio Comedor Centro ha alcanzado su capacidad máxima", recs[0].Data.Message)
	assert.Equal(t, "capacity_full", recs[0].Data.StatusType)
}

func TestService_MaintenanceWindow(t *testing.T) {
	t.Parallel()

	svc, tasks := newAsyncService(t)
	start := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	require.NoError(t, svc.ScheduleMaintenanceNotification(context.Background(), start, end, []string{"Comedor Centro"}))

	queued := tasks.Tasks()
	require.Len(t, queued, 1)

	var task notifications.BulkSendTask
	require.NoError(t, json.Unmarshal(queued[0].Payload, &task))
	assert.Equal(t, "El sistema estará en mantenimiento desde 01/09/2026 22:00 hasta 02/09/2026 02:00", task.Payload.Message)
}

func TestService_RequiresEnqueuerWhenAsync(t *testing.T) {
	t.Parallel()

	storage := notifications.NewMemoryStorage()
	dir := directory.NewMemoryDirectory()
	d := newDispatcher(t, storage, dir, testLimits(), staticJobCounter{})

	_, err := notifications.NewService(nil, d)
	assert.ErrorIs(t, err, notifications.ErrEnqueuerNil)
}
