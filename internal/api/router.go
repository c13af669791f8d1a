package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/httpserver"
	"github.com/shelterconnect/platform/pkg/notifications"
	"github.com/shelterconnect/platform/pkg/ratelimit"
	"github.com/shelterconnect/platform/pkg/rbac"
	"github.com/shelterconnect/platform/pkg/requestid"
)

// sendRateLimit caps how often one actor can hit the send endpoints,
// independent of the pipeline's own daily quotas.
const (
	sendRateLimit  = 10
	sendRateWindow = time.Minute
)

// RouterDeps bundles what the router wires together.
type RouterDeps struct {
	Users       directory.Directory
	Storage     notifications.Storage
	Stats       *notifications.Aggregator
	Service     *notifications.Service
	Push        *notifications.PushDeliverer
	Authorizer  rbac.Authorizer
	Environment string
	Logger      *slog.Logger
	Healthcheck func(ctx context.Context) error
}

// NewRouter builds the API routes under /api.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	h := NewHandler(deps.Storage, deps.Stats, deps.Service, deps.Push, deps.Environment, log)

	limiter, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), sendRateLimit, sendRateWindow)
	if err != nil {
		return nil, err
	}
	sendLimit := ratelimit.Middleware(limiter, actorKeyFunc)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	if deps.Healthcheck != nil {
		r.Get("/health", httpserver.HealthCheckHandler(context.Background(), log, deps.Healthcheck))
	} else {
		r.Get("/health", httpserver.HealthCheckHandler(context.Background(), log))
	}

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(Authenticate(deps.Users, log))

		r.Get("/", h.list)
		r.Get("/unread-count", h.unreadCount)
		r.Get("/stats", h.userStats)
		r.Get("/stream", h.stream)
		r.Post("/{id}/read", h.markRead)
		r.Post("/mark-all-read", h.markAllRead)
		r.Delete("/{id}", h.delete)

		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(deps.Authorizer, rbac.PermManageAll))

			r.Get("/admin/stats", h.adminStats)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(deps.Authorizer, rbac.PermSendNotifications))
			r.Use(sendLimit)

			r.Post("/send-service", h.sendClass(notifications.ClassServiceStatus))
			r.Post("/send-alert", h.sendClass(notifications.ClassOrganizationAlert))
			r.Post("/send-test", h.sendTest)
		})
	})

	return r, nil
}

// actorKeyFunc keys send-endpoint rate limits by the authenticated actor.
func actorKeyFunc(r *http.Request) string {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		return ""
	}
	return "notify:send:" + strconv.FormatInt(actor.ID, 10)
}
