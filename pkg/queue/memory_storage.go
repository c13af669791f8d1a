package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements the queue repository interfaces for tests and
// local development; it also supports the synchronous dispatch fallback
// when no database is configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*TasksDlq
}

// NewMemoryStorage creates a new in-memory queue storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[uuid.UUID]*Task),
		dlq:   make(map[uuid.UUID]*TasksDlq),
	}
}

// CreateTask implements EnqueuerRepository.
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	return nil
}

// ClaimTask implements WorkerRepository. Highest priority wins; earliest
// scheduled time breaks ties.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task

	for _, task := range ms.tasks {
		if task.Status != TaskStatusPending {
			continue
		}
		if !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if task.LockedUntil != nil && task.LockedUntil.After(now) {
			continue
		}
		if best == nil ||
			task.Priority > best.Priority ||
			(task.Priority == best.Priority && task.ScheduledAt.Before(best.ScheduledAt)) {
			best = task
		}
	}

	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockedUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockedUntil
	best.LockedBy = &workerID

	claimed := *best
	return &claimed, nil
}

// CompleteTask implements WorkerRepository.
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil
	return nil
}

// FailTask implements WorkerRepository: records the error, increments the
// retry count, and reschedules the task after its backoff delay while
// retries remain.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.RetryCount < task.MaxRetries {
		task.Status = TaskStatusPending
		task.ScheduledAt = time.Now().Add(task.NextRetryDelay(int(task.RetryCount)))
	} else {
		task.Status = TaskStatusFailed
	}

	return nil
}

// MoveToDLQ implements WorkerRepository.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, ok := ms.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	errMsg := ""
	if task.Error != nil {
		errMsg = *task.Error
	}

	ms.dlq[task.ID] = &TasksDlq{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		Priority:   task.Priority,
		Error:      errMsg,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  task.CreatedAt,
	}
	delete(ms.tasks, taskID)
	return nil
}

// CountTasksOn returns how many tasks with the given name were created in
// the given queues on the calendar day of `day`. Used for bulk-job daily
// rate limiting.
func (ms *MemoryStorage) CountTasksOn(ctx context.Context, taskName string, queues []string, day time.Time) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	y, m, d := day.Date()
	count := 0

	match := func(name, queue string, createdAt time.Time) bool {
		if name != taskName || !slices.Contains(queues, queue) {
			return false
		}
		cy, cm, cd := createdAt.Date()
		return cy == y && cm == m && cd == d
	}

	for _, task := range ms.tasks {
		if match(task.TaskName, task.Queue, task.CreatedAt) {
			count++
		}
	}
	// Tasks that already moved to the DLQ still count toward the daily
	// budget; they were started that day.
	for _, item := range ms.dlq {
		if match(item.TaskName, item.Queue, item.CreatedAt) {
			count++
		}
	}

	return count, nil
}

// Tasks returns a snapshot of all live tasks, newest first. Test helper.
func (ms *MemoryStorage) Tasks() []Task {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]Task, 0, len(ms.tasks))
	for _, t := range ms.tasks {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// DLQ returns a snapshot of the dead letter queue. Test helper.
func (ms *MemoryStorage) DLQ() []TasksDlq {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]TasksDlq, 0, len(ms.dlq))
	for _, t := range ms.dlq {
		out = append(out, *t)
	}
	return out
}
