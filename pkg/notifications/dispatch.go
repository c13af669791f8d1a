package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/logger"
	"github.com/shelterconnect/platform/pkg/queue"
)

// ChunkSize bounds how many recipients one chunk loads and delivers, so a
// platform-wide send never holds thousands of user rows at once.
const ChunkSize = 50

// BulkSendTask is the queue payload of one bulk dispatch: the payload was
// built at enqueue time, recipients are resolved when the task runs so a
// delayed send reaches the membership of that moment.
type BulkSendTask struct {
	Recipients RecipientSpec `json:"recipients"`
	Payload    Payload       `json:"payload"`
}

// BulkTaskName is the task name the enqueuer derives for BulkSendTask,
// used when counting bulk jobs against the daily quota.
func BulkTaskName() string {
	return fmt.Sprintf("%T", BulkSendTask{})
}

// Dispatcher executes bulk dispatch tasks: resolve, rate-limit, chunk,
// route, deliver. It runs on the queue worker and inline for synchronous
// sends.
type Dispatcher struct {
	storage  Storage
	resolver *Resolver
	users    directory.Directory
	limiter  *RateLimiter
	push     *PushDeliverer
	email    *EmailDeliverer
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPushDeliverer enables the push channel. Without it, routed push
// deliveries are skipped.
func WithPushDeliverer(d *PushDeliverer) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.push = d
	}
}

// WithEmailDeliverer enables the email channel. Without it, routed email
// deliveries are skipped.
func WithEmailDeliverer(d *EmailDeliverer) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.email = d
	}
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.logger = l
	}
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(storage Storage, users directory.Directory, limiter *RateLimiter, opts ...DispatcherOption) (*Dispatcher, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	resolver, err := NewResolver(users)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		storage:  storage,
		resolver: resolver,
		users:    users,
		limiter:  limiter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Handler wraps Run and HandleFailure as a queue handler for BulkSendTask.
func (d *Dispatcher) Handler() queue.Handler {
	return queue.NewTaskHandlerWithFailure(d.Run, d.HandleFailure)
}

// Run executes one bulk dispatch. A returned error means the whole task is
// retried; per-recipient delivery failures are logged and absorbed. An
// over-limit job is a logged no-op, not a failure.
func (d *Dispatcher) Run(ctx context.Context, task BulkSendTask) error {
	ids, err := d.resolver.Resolve(ctx, task.Recipients, task.Payload.Class)
	if err != nil {
		return err
	}

	eligible, err := d.limiter.JobEligible(ctx, len(ids), time.Now())
	if err != nil {
		return err
	}
	if !eligible {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "bulk notification job exceeds configured limits",
			slog.Int("recipient_count", len(ids)),
			logger.Template(task.Payload.TemplateKey),
			slog.String("tracking_id", task.Payload.TrackingID.String()),
		)
		return nil
	}

	totalChunks := (len(ids) + ChunkSize - 1) / ChunkSize
	sent := 0
	for i := 0; i < len(ids); i += ChunkSize {
		end := min(i+ChunkSize, len(ids))

		users, err := d.users.ListByIDs(ctx, ids[i:end])
		if err != nil {
			return fmt.Errorf("notifications: load recipients: %w", err)
		}

		d.logger.LogAttrs(ctx, slog.LevelInfo, "processing notification chunk",
			slog.Int("chunk", i/ChunkSize+1),
			slog.Int("total_chunks", totalChunks),
			slog.Int("chunk_size", len(users)),
		)
		sent += d.sendToUsers(ctx, users, task.Payload)
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "bulk notification job completed",
		slog.Int("total_users", len(ids)),
		slog.Int("notifications_sent", sent),
		logger.Template(task.Payload.TemplateKey),
		slog.String("tracking_id", task.Payload.TrackingID.String()),
	)
	return nil
}

// HandleFailure logs a task that exhausted its retries. Called by the
// worker when the task moves to the dead letter queue.
func (d *Dispatcher) HandleFailure(ctx context.Context, task BulkSendTask, taskErr error) {
	d.logger.LogAttrs(ctx, slog.LevelError, "bulk notification job failed permanently",
		logger.Error(taskErr),
		logger.Template(task.Payload.TemplateKey),
		slog.String("class", string(task.Payload.Class)),
		slog.String("tracking_id", task.Payload.TrackingID.String()),
		slog.Int("explicit_recipients", len(task.Recipients.ExplicitIDs)),
	)
}

// sendToUsers delivers to one chunk and returns the success count. Every
// per-recipient failure is contained here so the rest of the chunk still
// delivers.
func (d *Dispatcher) sendToUsers(ctx context.Context, users []directory.User, p Payload) int {
	success := 0
	for _, user := range users {
		eligible, err := d.limiter.RecipientEligible(ctx, user.ID, time.Now())
		if err != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "recipient limit check failed",
				logger.UserID(user.ID), logger.Error(err))
			continue
		}
		if !eligible {
			d.logger.LogAttrs(ctx, slog.LevelInfo, "notification limit exceeded for user",
				logger.UserID(user.ID))
			continue
		}

		if err := d.deliver(ctx, user, p); err != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "error sending notification to user",
				logger.UserID(user.ID),
				logger.Error(err),
				logger.Template(p.TemplateKey),
			)
			continue
		}
		success++
	}
	return success
}

func (d *Dispatcher) deliver(ctx context.Context, user directory.User, p Payload) error {
	for _, ch := range Route(p, user.Preferences) {
		switch ch {
		case ChannelDatabase:
			rec := &Record{
				ID:          uuid.New(),
				RecipientID: user.ID,
				Channel:     ChannelDatabase,
				Type:        p.Class,
				Data:        p,
				CreatedAt:   time.Now(),
			}
			if err := d.storage.CreateRecord(ctx, rec); err != nil {
				return err
			}
		case ChannelPush:
			if d.push == nil {
				continue
			}
			if err := d.push.Deliver(ctx, user.ID, p); err != nil {
				return err
			}
		case ChannelEmail:
			if d.email == nil {
				continue
			}
			if err := d.email.Deliver(ctx, user, p); err != nil {
				return err
			}
		}
	}
	return nil
}
