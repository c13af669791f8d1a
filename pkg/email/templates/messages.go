package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// layout wraps body lines and an optional action link in the shared
// ShelterConnect email frame.
func layout(lines []string, actionLabel, actionURL, footer string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div style="font-family:sans-serif;max-width:600px;margin:0 auto">`); err != nil {
			return err
		}
		for _, line := range lines {
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "<p>%s</p>", html.EscapeString(line)); err != nil {
				return err
			}
		}
		if actionURL != "" {
			if _, err := fmt.Fprintf(w,
				`<p><a href=%q style="display:inline-block;padding:10px 18px;background:#2d6cdf;color:#fff;text-decoration:none;border-radius:4px">%s</a></p>`,
				actionURL, html.EscapeString(actionLabel)); err != nil {
				return err
			}
		}
		if footer != "" {
			if _, err := fmt.Fprintf(w, `<p style="color:#888;font-size:13px">%s</p>`, html.EscapeString(footer)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}

// ServiceStatus is the email body for service status notifications.
func ServiceStatus(message, serviceName, statusType, serviceURL string) templ.Component {
	return layout(
		[]string{
			message,
			"Servicio: " + serviceName,
			"Estado: " + statusType,
		},
		"Ver Servicio", serviceURL,
		"Gracias por usar ShelterConnect!",
	)
}

// OrganizationAlert is the email body for organization alert notifications.
func OrganizationAlert(message, organizationName, alertType, details, dashboardURL string) templ.Component {
	lines := []string{
		message,
		"Organización: " + organizationName,
		"Tipo de alerta: " + alertType,
	}
	if details != "" {
		lines = append(lines, "Detalles adicionales: "+details)
	}
	return layout(
		lines,
		"Ver Dashboard", dashboardURL,
		"Por favor, revise su panel de control para más detalles.",
	)
}
