package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/a-h/templ"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/email"
	"github.com/shelterconnect/platform/pkg/email/templates"
)

// EmailDeliverer renders a payload into the class-specific email layout
// and sends it through the mail transport.
type EmailDeliverer struct {
	sender  email.EmailSender
	baseURL string
}

// NewEmailDeliverer creates an email deliverer. baseURL is the public web
// root used for action links.
func NewEmailDeliverer(sender email.EmailSender, baseURL string) *EmailDeliverer {
	return &EmailDeliverer{sender: sender, baseURL: baseURL}
}

// Deliver renders and sends the payload to one recipient.
func (d *EmailDeliverer) Deliver(ctx context.Context, user directory.User, p Payload) error {
	var (
		subject   string
		component = d.component(p)
	)
	switch p.Class {
	case ClassOrganizationAlert:
		subject = "🚨 Alerta ShelterConnect: " + p.Title
	default:
		subject = "Estado del Servicio Actualizado - ShelterConnect"
	}

	body, err := templates.Render(ctx, component)
	if err != nil {
		return fmt.Errorf("notifications: render email: %w", err)
	}

	if err := d.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   user.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      string(p.Class),
	}); err != nil {
		return fmt.Errorf("notifications: email delivery for user %d: %w", user.ID, err)
	}
	return nil
}

func (d *EmailDeliverer) component(p Payload) templ.Component {
	if p.Class == ClassOrganizationAlert {
		return templates.OrganizationAlert(
			p.Message,
			stringVar(p.Variables, "organization_name"),
			p.AlertType,
			detailsJSON(p.Variables),
			d.baseURL+"/dashboard",
		)
	}
	return templates.ServiceStatus(
		p.Message,
		stringVar(p.Variables, "service_name"),
		p.StatusType,
		fmt.Sprintf("%s/services/%d", d.baseURL, p.ServiceID),
	)
}

func stringVar(variables map[string]any, key string) string {
	if s, ok := scalarString(variables[key]); ok {
		return s
	}
	return ""
}

// detailsJSON renders the variable set as a compact JSON blob for the
// "Detalles adicionales" section of alert mails.
func detailsJSON(variables map[string]any) string {
	if len(variables) == 0 {
		return ""
	}
	b, err := json.Marshal(variables)
	if err != nil {
		return ""
	}
	return string(b)
}
