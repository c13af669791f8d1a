package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shelterconnect/platform/internal/api"
	"github.com/shelterconnect/platform/pkg/broadcast"
	"github.com/shelterconnect/platform/pkg/config"
	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/httpserver"
	"github.com/shelterconnect/platform/pkg/logger"
	"github.com/shelterconnect/platform/pkg/notifications"
	"github.com/shelterconnect/platform/pkg/pg"
	"github.com/shelterconnect/platform/pkg/queue"
	"github.com/shelterconnect/platform/pkg/rbac"
	"github.com/shelterconnect/platform/pkg/redis"
)

type appConfig struct {
	Environment   string        `env:"APP_ENV" envDefault:"development"`
	PushChannel   string        `env:"PUSH_CHANNEL" envDefault:"notifications:push"`
	PushBuffer    int           `env:"PUSH_BUFFER_SIZE" envDefault:"32"`
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`

	PG     pg.Config
	Redis  redis.Config
	HTTP   httpserver.Config
	Limits notifications.LimitsConfig
}

func main() {
	_ = config.LoadEnv()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "notify-api"))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
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

	// The worker delivers push events from another process; Redis pub/sub
	// carries them to the SSE subscribers served here.
	broadcaster := broadcast.NewRedisBroadcaster[notifications.PushEvent](rdb, cfg.PushChannel, cfg.PushBuffer)
	defer broadcaster.Close()
	push := notifications.NewPushDeliverer(broadcaster)

	dispatcher, err := notifications.NewDispatcher(store, users, limiter,
		notifications.WithDispatcherLogger(log))
	if err != nil {
		return err
	}

	enqueuer, err := queue.NewEnqueuer(tasks,
		queue.WithDefaultQueue(notifications.QueueNotifications))
	if err != nil {
		return err
	}

	svc, err := notifications.NewService(enqueuer, dispatcher,
		notifications.WithServiceLogger(log))
	if err != nil {
		return err
	}

	stats, err := notifications.NewAggregator(store, users,
		notifications.WithStatsCache(rdb, cfg.StatsCacheTTL),
		notifications.WithAggregatorLogger(log))
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.RouterDeps{
		Users:       users,
		Storage:     store,
		Stats:       stats,
		Service:     svc,
		Push:        push,
		Authorizer:  rbac.NewAuthorizer(rbac.DefaultRoles()),
		Environment: cfg.Environment,
		Logger:      log,
		Healthcheck: allHealthy(pg.Healthcheck(pool), redis.Healthcheck(rdb)),
	})
	if err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

func allHealthy(checks ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
