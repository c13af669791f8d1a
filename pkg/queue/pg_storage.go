package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStorage implements the queue repository interfaces on PostgreSQL.
// Claiming relies on FOR UPDATE SKIP LOCKED so multiple workers never
// double-process a task.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a PostgreSQL-backed queue storage.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

// CreateTask implements EnqueuerRepository.
func (s *PgStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, queue, task_name, payload, status, priority,
			retry_count, max_retries, backoff_seconds, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, task.Queue, task.TaskName, task.Payload, task.Status,
		task.Priority, task.RetryCount, task.MaxRetries, task.BackoffSeconds,
		task.ScheduledAt, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// ClaimTask implements WorkerRepository.
func (s *PgStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	lockedUntil := time.Now().Add(lockDuration)

	row := s.pool.QueryRow(ctx, `
		UPDATE tasks SET
			status = 'processing',
			locked_until = $1,
			locked_by = $2
		WHERE id = (
			SELECT id FROM tasks
			WHERE status = 'pending'
			  AND queue = ANY($3)
			  AND scheduled_at <= now()
			  AND (locked_until IS NULL OR locked_until <= now())
			ORDER BY priority DESC, scheduled_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, queue, task_name, payload, status, priority, retry_count,
			max_retries, backoff_seconds, scheduled_at, locked_until, locked_by,
			processed_at, error, created_at`,
		lockedUntil, workerID, queues,
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTaskToClaim
		}
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}
	return task, nil
}

// CompleteTask implements WorkerRepository.
func (s *PgStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET
			status = 'completed',
			processed_at = now(),
			locked_until = NULL,
			locked_by = NULL
		WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FailTask implements WorkerRepository. The backoff delay for the next
// attempt is taken from the task's own schedule, falling back to the last
// entry when attempts outnumber schedule entries.
func (s *PgStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET
			retry_count = retry_count + 1,
			error = $2,
			locked_until = NULL,
			locked_by = NULL,
			status = CASE WHEN retry_count + 1 < max_retries THEN 'pending' ELSE 'failed' END,
			scheduled_at = CASE WHEN retry_count + 1 < max_retries THEN
				now() + make_interval(secs =>
					COALESCE(backoff_seconds[LEAST(retry_count + 1, COALESCE(array_length(backoff_seconds, 1), 0))], 0))
				ELSE scheduled_at END
		WHERE id = $1`, taskID, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to fail task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MoveToDLQ implements WorkerRepository. The move is transactional so a
// task is never both live and dead-lettered.
func (s *PgStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin dlq transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO tasks_dlq (id, task_id, queue, task_name, payload, priority,
			error, retry_count, failed_at, created_at)
		SELECT gen_random_uuid(), id, queue, task_name, payload, priority,
			COALESCE(error, ''), retry_count, now(), created_at
		FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to copy task to dlq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to delete dead-lettered task: %w", err)
	}

	return tx.Commit(ctx)
}

// CountTasksOn returns how many tasks with the given name were created in
// the given queues on the calendar day of `day`, including tasks that have
// since moved to the DLQ.
func (s *PgStorage) CountTasksOn(ctx context.Context, taskName string, queues []string, day time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT (
			SELECT count(*) FROM tasks
			WHERE task_name = $1 AND queue = ANY($2) AND created_at::date = $3::date
		) + (
			SELECT count(*) FROM tasks_dlq
			WHERE task_name = $1 AND queue = ANY($2) AND created_at::date = $3::date
		)`, taskName, queues, day,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Queue, &t.TaskName, &t.Payload, &t.Status,
		&t.Priority, &t.RetryCount, &t.MaxRetries, &t.BackoffSeconds,
		&t.ScheduledAt, &t.LockedUntil, &t.LockedBy, &t.ProcessedAt,
		&t.Error, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
