// Package queue implements a storage-backed task queue with at-least-once
// delivery. An Enqueuer records tasks; Workers claim them with row-level
// locks, dispatch to typed handlers, and retry failures following each
// task's backoff schedule. Tasks that exhaust their retries move to a dead
// letter queue, optionally notifying a terminal-failure hook on the handler.
//
// Two repository implementations are provided: PgStorage for production and
// MemoryStorage for tests and local development.
package queue
