// Package notifications implements the platform's notification fan-out
// pipeline: a fixed template registry, placeholder interpolation,
// recipient resolution, per-day rate limiting, per-recipient channel
// routing, and chunked bulk dispatch over the task queue.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Class groups templates into the two notification families the platform
// ships. The class decides which preference flags apply and which metadata
// the builder derives.
type Class string

const (
	ClassServiceStatus     Class = "service_status"
	ClassOrganizationAlert Class = "organization_alert"
)

// Channel is a delivery channel. Database records the notification in the
// recipient's inbox, push broadcasts it to live listeners, email sends a
// rendered message through the mail transport.
type Channel string

const (
	ChannelDatabase Channel = "database"
	ChannelPush     Channel = "push"
	ChannelEmail    Channel = "email"
)

// Priority is the template-declared severity.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DisplayPriority is the presentation tier derived from the payload's
// status or alert type. It drives the email inclusion rule and frontend
// styling.
type DisplayPriority string

const (
	DisplayLow    DisplayPriority = "low"
	DisplayMedium DisplayPriority = "medium"
	DisplayHigh   DisplayPriority = "high"
)

// Payload is one logical send, built once per dispatch and snapshotted
// into every delivery record it produces. TrackingID ties the records of
// one send together across recipients and channels.
type Payload struct {
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	TemplateKey    string          `json:"template_key"`
	Class          Class           `json:"class"`
	Priority       Priority        `json:"priority"`
	Display        DisplayPriority `json:"display_priority"`
	Icon           string          `json:"icon"`
	Color          string          `json:"color"`
	Variables      map[string]any  `json:"variables,omitempty"`
	TrackingID     uuid.UUID       `json:"tracking_id"`
	CreatedAt      time.Time       `json:"created_at"`
	StatusType     string          `json:"status_type,omitempty"`
	AlertType      string          `json:"alert_type,omitempty"`
	ServiceID      int64           `json:"service_id,omitempty"`
	OrganizationID int64           `json:"organization_id,omitempty"`
}

// DatabaseData is the inbox representation of the payload.
func (p Payload) DatabaseData() map[string]any {
	data := map[string]any{
		"title":        p.Title,
		"message":      p.Message,
		"template_key": p.TemplateKey,
		"priority":     string(p.Priority),
		"tracking_id":  p.TrackingID.String(),
		"created_at":   p.CreatedAt.UTC().Format(time.RFC3339),
	}
	switch p.Class {
	case ClassServiceStatus:
		data["service_id"] = p.ServiceID
		data["status_type"] = p.StatusType
	case ClassOrganizationAlert:
		data["organization_id"] = p.OrganizationID
		data["alert_type"] = p.AlertType
	}
	return data
}

// PushData is the real-time representation: DatabaseData plus the
// presentation hints live clients render directly.
func (p Payload) PushData() map[string]any {
	data := p.DatabaseData()
	data["display_priority"] = string(p.Display)
	data["icon"] = p.Icon
	data["color"] = p.Color
	data["read_at"] = nil
	return data
}

// Record is one delivered notification in a recipient's inbox. ReadAt is
// set at most once by MarkRead and never reset; deletion is a hard delete.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID int64      `json:"recipient_id"`
	Channel     Channel    `json:"channel"`
	Type        Class      `json:"type"`
	Data        Payload    `json:"data"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// Read reports whether the record has been marked read.
func (r Record) Read() bool {
	return r.ReadAt != nil
}
