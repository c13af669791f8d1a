package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shelterconnect/platform/pkg/broadcast"
	"github.com/shelterconnect/platform/pkg/config"
	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/email"
	"github.com/shelterconnect/platform/pkg/logger"
	"github.com/shelterconnect/platform/pkg/notifications"
	"github.com/shelterconnect/platform/pkg/pg"
	"github.com/shelterconnect/platform/pkg/queue"
	"github.com/shelterconnect/platform/pkg/redis"
)

type workerConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	PushChannel string `env:"PUSH_CHANNEL" envDefault:"notifications:push"`
	EmailDevDir string `env:"EMAIL_DEV_DIR" envDefault:"./var/mail"`

	PG     pg.Config
	Redis  redis.Config
	Queue  queue.Config
	Email  email.Config
	Limits notifications.LimitsConfig
}

func main() {
	_ = config.LoadEnv()

	var cfg workerConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "notify-worker"))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg workerConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := directory.NewPgDirectory(pool)
	store := notifications.NewPgStorage(pool)
	tasks := queue.NewPgStorage(pool)

	limiter := notifications.NewRateLimiter(cfg.Limits, store, tasks,
		notifications.BulkTaskName(),
		[]string{notifications.QueueNotifications, notifications.QueueHigh})

	broadcaster := broadcast.NewRedisBroadcaster[notifications.PushEvent](rdb, cfg.PushChannel, 1)
	defer broadcaster.Close()

	sender, err := emailSender(cfg)
	if err != nil {
		return err
	}

	dispatcher, err := notifications.NewDispatcher(store, users, limiter,
		notifications.WithPushDeliverer(notifications.NewPushDeliverer(broadcaster)),
		notifications.WithEmailDeliverer(notifications.NewEmailDeliverer(sender, cfg.BaseURL)),
		notifications.WithDispatcherLogger(log))
	if err != nil {
		return err
	}

	worker, err := queue.NewWorker(tasks,
		queue.WithQueues(notifications.QueueHigh, notifications.QueueNotifications),
		queue.WithPullInterval(cfg.Queue.PollInterval),
		queue.WithLockTimeout(cfg.Queue.LockTimeout),
		queue.WithMaxConcurrentTasks(cfg.Queue.MaxConcurrentTasks),
		queue.WithWorkerLogger(log))
	if err != nil {
		return err
	}
	worker.RegisterHandlers(dispatcher.Handler())

	return worker.Run(ctx)()
}

// emailSender picks the outbound mail transport. Production sends through
// Postmark; everywhere else messages land as files for inspection.
func emailSender(cfg workerConfig) (email.EmailSender, error) {
	if cfg.Environment == "production" {
		return email.NewPostmarkClient(cfg.Email)
	}
	return email.NewDevSender(cfg.EmailDevDir), nil
}
