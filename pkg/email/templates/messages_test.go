package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/email/templates"
)

func TestServiceStatus(t *testing.T) {
	t.Parallel()

	body, err := templates.Render(context.Background(), templates.ServiceStatus(
		"El servicio Comedor Central ha alcanzado su capacidad máxima",
		"Comedor Central",
		"capacity_full",
		"https://shelterconnect.org/services/42",
	))
	require.NoError(t, err)

	assert.Contains(t, body, "ha alcanzado su capacidad máxima")
	assert.Contains(t, body, "Servicio: Comedor Central")
	assert.Contains(t, body, "Estado: capacity_full")
	assert.Contains(t, body, `href="https://shelterconnect.org/services/42"`)
	assert.Contains(t, body, "Ver Servicio")
}

func TestOrganizationAlert(t *testing.T) {
	t.Parallel()

	body, err := templates.Render(context.Background(), templates.OrganizationAlert(
		"🚨 ALERTA DE EMERGENCIA en Zona Norte",
		"Cruz Roja",
		"emergency",
		`{"location":"Zona Norte"}`,
		"https://shelterconnect.org/dashboard",
	))
	require.NoError(t, err)

	assert.Contains(t, body, "ALERTA DE EMERGENCIA")
	assert.Contains(t, body, "Organización: Cruz Roja")
	assert.Contains(t, body, "Tipo de alerta: emergency")
	assert.Contains(t, body, "Detalles adicionales:")
	assert.Contains(t, body, "Ver Dashboard")
}

func TestOrganizationAlertOmitsEmptyDetails(t *testing.T) {
	t.Parallel()

	body, err := templates.Render(context.Background(), templates.OrganizationAlert(
		"Mantenimiento programado", "Cruz Roja", "maintenance", "", "https://shelterconnect.org/dashboard",
	))
	require.NoError(t, err)
	assert.NotContains(t, body, "Detalles adicionales")
}

func TestLayoutEscapesContent(t *testing.T) {
	t.Parallel()

	body, err := templates.Render(context.Background(), templates.ServiceStatus(
		"<script>alert(1)</script>", "Comedor", "new", "https://shelterconnect.org/services/1",
	))
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
