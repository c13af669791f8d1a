package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// Handler processes one named task type.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	// FailureAware is an optional extension: handlers implementing it are
	// notified once, after the task's retries are exhausted and it moves to
	// the dead letter queue.
	FailureAware interface {
		HandleFailure(ctx context.Context, payload json.RawMessage, taskErr error)
	}

	TaskHandlerFunc[T any]    func(ctx context.Context, payload T) error
	FailureHandlerFunc[T any] func(ctx context.Context, payload T, taskErr error)
)

// NewTaskHandler creates a typed handler whose name is derived from the
// payload type, matching the name the enqueuer assigns.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:    qualifiedStructName(payload),
		handler: handler,
	}
}

// NewTaskHandlerWithFailure is NewTaskHandler plus a terminal-failure hook.
func NewTaskHandlerWithFailure[T any](handler TaskHandlerFunc[T], onFailure FailureHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:      qualifiedStructName(payload),
		handler:   handler,
		onFailure: onFailure,
	}
}

type taskHandler[T any] struct {
	name      string
	handler   TaskHandlerFunc[T]
	onFailure FailureHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string {
	return h.name
}

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return h.handler(ctx, t)
}

func (h *taskHandler[T]) HandleFailure(ctx context.Context, payload json.RawMessage, taskErr error) {
	if h.onFailure == nil {
		return
	}
	var t T
	// A payload that no longer unmarshals still reaches the hook with the
	// zero value, so terminal failures are never silently dropped.
	_ = json.Unmarshal(payload, &t)
	h.onFailure(ctx, t, taskErr)
}

func qualifiedStructName(v any) string {
	s := fmt.Sprintf("%T", v)
	return strings.TrimLeft(s, "*")
}
