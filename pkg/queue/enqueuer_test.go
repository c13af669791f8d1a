package queue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/queue"
)

type reportTask struct {
	ReportID string `json:"report_id"`
}

func TestEnqueuerDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ms := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(ms)
	require.NoError(t, err)

	require.NoError(t, enq.Enqueue(ctx, reportTask{ReportID: "r-1"}))

	tasks := ms.Tasks()
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, queue.DefaultQueueName, task.Queue)
	assert.Equal(t, "queue_test.reportTask", task.TaskName)
	assert.Equal(t, queue.PriorityDefault, task.Priority)
	assert.Equal(t, queue.TaskStatusPending, task.Status)
	assert.EqualValues(t, 3, task.MaxRetries)

	var payload reportTask
	require.NoError(t, json.Unmarshal(task.Payload, &payload))
	assert.Equal(t, "r-1", payload.ReportID)
}

func TestEnqueuerOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ms := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(ms, queue.WithDefaultQueue("notifications"))
	require.NoError(t, err)

	require.NoError(t, enq.Enqueue(ctx, reportTask{ReportID: "r-2"},
		queue.WithQueue("high"),
		queue.WithPriority(queue.PriorityHigh),
		queue.WithMaxRetries(5),
		queue.WithBackoffSchedule(10, 30, 60),
		queue.WithDelay(time.Hour),
		queue.WithTaskName("reports.custom"),
	))

	tasks := ms.Tasks()
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "high", task.Queue)
	assert.Equal(t, "reports.custom", task.TaskName)
	assert.Equal(t, queue.PriorityHigh, task.Priority)
	assert.EqualValues(t, 5, task.MaxRetries)
	assert.Equal(t, []int{10, 30, 60}, task.BackoffSeconds)
	assert.True(t, task.ScheduledAt.After(time.Now().Add(30*time.Minute)))
}

func TestEnqueuerDefaultQueueOption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ms := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(ms, queue.WithDefaultQueue("notifications"))
	require.NoError(t, err)

	require.NoError(t, enq.Enqueue(ctx, reportTask{ReportID: "r-3"}))

	tasks := ms.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "notifications", tasks[0].Queue)
}

func TestEnqueuerValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := queue.NewEnqueuer(nil)
	require.ErrorIs(t, err, queue.ErrRepositoryNil)

	ms := queue.NewMemoryStorage()
	enq, err := queue.NewEnqueuer(ms)
	require.NoError(t, err)

	require.ErrorIs(t, enq.Enqueue(ctx, nil), queue.ErrPayloadNil)
	require.ErrorIs(t, enq.Enqueue(ctx, reportTask{}, queue.WithPriority(queue.Priority(-1))),
		queue.ErrInvalidPriority)
}
