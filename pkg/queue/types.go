package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Priority represents task priority (0-100, higher is more important).
type Priority int8

const (
	PriorityMin     Priority = 0
	PriorityLow     Priority = 25
	PriorityMedium  Priority = 50
	PriorityHigh    Priority = 75
	PriorityMax     Priority = 100
	PriorityDefault Priority = PriorityMedium
)

// Valid checks if the priority is within valid range.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// Task represents a unit of work in the queue.
//
// BackoffSeconds is the delay schedule between retry attempts: attempt n
// waits BackoffSeconds[n-1], with the last entry reused when attempts
// outnumber entries. An empty schedule retries immediately.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	Queue          string     `json:"queue"`
	TaskName       string     `json:"task_name"`
	Payload        []byte     `json:"payload,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	RetryCount     int8       `json:"retry_count"`
	MaxRetries     int8       `json:"max_retries"`
	BackoffSeconds []int      `json:"backoff_seconds,omitempty"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LockedBy       *uuid.UUID `json:"locked_by,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	Error          *string    `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NextRetryDelay returns the backoff delay preceding the given attempt
// number (1-based). Attempts beyond the schedule reuse its last entry.
func (t *Task) NextRetryDelay(attempt int) time.Duration {
	if len(t.BackoffSeconds) == 0 || attempt < 1 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(t.BackoffSeconds) {
		idx = len(t.BackoffSeconds) - 1
	}
	return time.Duration(t.BackoffSeconds[idx]) * time.Second
}

// TasksDlq represents a task in the dead letter queue: work that exhausted
// all retries, kept for manual inspection and recovery.
type TasksDlq struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	Queue      string    `json:"queue"`
	TaskName   string    `json:"task_name"`
	Payload    []byte    `json:"payload,omitempty"`
	Priority   Priority  `json:"priority"`
	Error      string    `json:"error"`
	RetryCount int8      `json:"retry_count"`
	FailedAt   time.Time `json:"failed_at"`
	CreatedAt  time.Time `json:"created_at"`
}
