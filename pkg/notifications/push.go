package notifications

import (
	"context"
	"fmt"

	"github.com/shelterconnect/platform/pkg/broadcast"
)

// Push event names as the frontend subscribes to them.
const (
	EventServiceStatusUpdated = "service.status.updated"
	EventOrganizationAlert    = "organization.alert"
)

// PushEvent is the real-time message broadcast to live listeners. Clients
// filter on UserID; OrganizationID lets org-wide dashboards listen too.
type PushEvent struct {
	Event          string         `json:"event"`
	UserID         int64          `json:"user_id"`
	OrganizationID int64          `json:"organization_id,omitempty"`
	ServiceID      int64          `json:"service_id,omitempty"`
	Data           map[string]any `json:"data"`
}

// PushDeliverer sends payloads over the in-process broadcaster. Delivery
// is fire-and-forget: subscribers with full buffers miss the event and
// fall back to their persisted inbox.
type PushDeliverer struct {
	broadcaster broadcast.Broadcaster[PushEvent]
}

// NewPushDeliverer creates a deliverer over the given broadcaster.
func NewPushDeliverer(b broadcast.Broadcaster[PushEvent]) *PushDeliverer {
	return &PushDeliverer{broadcaster: b}
}

// Deliver broadcasts the payload for one recipient.
func (d *PushDeliverer) Deliver(ctx context.Context, userID int64, p Payload) error {
	event := PushEvent{
		Event:          eventName(p.Class),
		UserID:         userID,
		OrganizationID: p.OrganizationID,
		ServiceID:      p.ServiceID,
		Data:           p.PushData(),
	}
	if err := d.broadcaster.Broadcast(ctx, broadcast.Message[PushEvent]{Data: event}); err != nil {
		return fmt.Errorf("notifications: push delivery for user %d: %w", userID, err)
	}
	return nil
}

// Subscribe returns a live event stream. Callers filter by user ID.
func (d *PushDeliverer) Subscribe(ctx context.Context) broadcast.Subscriber[PushEvent] {
	return d.broadcaster.Subscribe(ctx)
}

func eventName(class Class) string {
	if class == ClassOrganizationAlert {
		return EventOrganizationAlert
	}
	return EventServiceStatusUpdated
}
