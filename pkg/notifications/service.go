package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelterconnect/platform/pkg/logger"
	"github.com/shelterconnect/platform/pkg/queue"
)

// Queue names used by the dispatch pipeline. High- and critical-priority
// templates jump to the high queue so emergencies are not stuck behind
// routine fan-outs.
const (
	QueueNotifications = "notifications"
	QueueHigh          = "high"
)

// Dispatch retry policy.
const (
	maxAttempts = 3
)

var backoffSchedule = []int{10, 30, 60}

// ServiceInfo carries the service fields the notification helpers
// interpolate. The full service model belongs to the CRUD subsystem.
type ServiceInfo struct {
	ID               int64
	Name             string
	OrganizationID   int64
	OrganizationName string
	CurrentCapacity  int
	MaxCapacity      int
}

// Service is the send-side entry point. Callers get an
// accepted-for-processing acknowledgement; per-recipient outcomes are only
// observable through stats and logs.
type Service struct {
	enqueuer   *queue.Enqueuer
	dispatcher *Dispatcher
	logger     *slog.Logger
	async      bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithSynchronousSends makes every send run inline on the caller. Used
// when no queue worker is deployed; the caller then blocks for the full
// dispatch.
func WithSynchronousSends() ServiceOption {
	return func(s *Service) {
		s.async = false
	}
}

// NewService creates the send facade. The enqueuer may be nil only with
// WithSynchronousSends.
func NewService(enqueuer *queue.Enqueuer, dispatcher *Dispatcher, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		enqueuer:   enqueuer,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		async:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.async && s.enqueuer == nil {
		return nil, ErrEnqueuerNil
	}
	return s, nil
}

// SendFromTemplate builds the payload for the template and dispatches it
// to the recipients, asynchronously unless the service runs synchronous
// sends. Unknown templates and empty recipient specs fail immediately;
// everything after the enqueue is observable only via stats and logs.
func (s *Service) SendFromTemplate(ctx context.Context, templateKey string, recipients RecipientSpec, variables map[string]any) error {
	if err := recipients.Validate(); err != nil {
		return err
	}
	payload, err := Build(templateKey, variables)
	if err != nil {
		return err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "preparing notification send",
		logger.Template(templateKey),
		slog.String("tracking_id", payload.TrackingID.String()),
		slog.Bool("async", s.async),
	)

	task := BulkSendTask{Recipients: recipients, Payload: *payload}
	if !s.async {
		return s.dispatcher.Run(ctx, task)
	}

	queueName := QueueNotifications
	if payload.Priority == PriorityHigh || payload.Priority == PriorityCritical {
		queueName = QueueHigh
	}
	return s.enqueuer.Enqueue(ctx, task,
		queue.WithQueue(queueName),
		queue.WithMaxRetries(maxAttempts),
		queue.WithBackoffSchedule(backoffSchedule...),
	)
}

// SendEmergencyAlert fans an emergency out to every active user.
func (s *Service) SendEmergencyAlert(ctx context.Context, message, location string, contactInfo map[string]any) error {
	if location == "" {
		location = "No especificada"
	}
	variables := map[string]any{
		"message":  message,
		"location": location,
	}
	if len(contactInfo) > 0 {
		variables["contact_info"] = contactInfo
	}
	return s.SendFromTemplate(ctx, TemplateEmergencyAlert, AllActiveRecipients(), variables)
}

// NotifyServiceCapacityChange notifies a service's organization that its
// capacity filled up or opened again.
func (s *Service) NotifyServiceCapacityChange(ctx context.Context, info ServiceInfo, isFull bool) error {
	templateKey := TemplateServiceCapacityAvailable
	if isFull {
		templateKey = TemplateServiceCapacityFull
	}
	return s.SendFromTemplate(ctx, templateKey,
		OrganizationRecipients(info.OrganizationID),
		serviceVariables(info))
}

// NotifyNewBeneficiary notifies a service's organization of a new
// beneficiary registration.
func (s *Service) NotifyNewBeneficiary(ctx context.Context, info ServiceInfo, totalCount int) error {
	variables := serviceVariables(info)
	if totalCount > 0 {
		variables["beneficiary_count"] = totalCount
	}
	return s.SendFromTemplate(ctx, TemplateNewBeneficiary,
		OrganizationRecipients(info.OrganizationID), variables)
}

// ScheduleMaintenanceNotification announces a maintenance window to every
// active user.
func (s *Service) ScheduleMaintenanceNotification(ctx context.Context, start, end time.Time, affectedServices []string) error {
	variables := map[string]any{
		"start_time": start.Format("02/01/2006 15:04"),
		"end_time":   end.Format("02/01/2006 15:04"),
	}
	if len(affectedServices) > 0 {
		variables["affected_services"] = affectedServices
	}
	return s.SendFromTemplate(ctx, TemplateSystemMaintenance, AllActiveRecipients(), variables)
}

func serviceVariables(info ServiceInfo) map[string]any {
	variables := map[string]any{
		"service_name":      info.Name,
		"organization_name": info.OrganizationName,
		"service_id":        info.ID,
		"organization_id":   info.OrganizationID,
		"current_capacity":  info.CurrentCapacity,
	}
	if info.MaxCapacity > 0 {
		variables["max_capacity"] = info.MaxCapacity
	} else {
		variables["max_capacity"] = "Ilimitada"
	}
	return variables
}
