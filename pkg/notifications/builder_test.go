package notifications_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/notifications"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("capacity full", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateServiceCapacityFull, map[string]any{
			"service_name": "Comedor Centro",
			"service_id":   int64(7),
		})
		require.NoError(t, err)

		assert.Equal(t, "Capacidad Completa", p.Title)
		assert.Equal(t, "El servicio Comedor Centro ha alcanzado su capacidad máxima", p.Message)
		assert.Equal(t, notifications.ClassServiceStatus, p.Class)
		assert.Equal(t, notifications.PriorityHigh, p.Priority)
		assert.Equal(t, "capacity_full", p.StatusType)
		assert.Equal(t, int64(7), p.ServiceID)
		assert.Equal(t, notifications.DisplayMedium, p.Display)
		assert.NotEqual(t, uuid.Nil, p.TrackingID)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("emergency alert", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateEmergencyAlert, map[string]any{
			"location":        "Calle Mayor 1",
			"organization_id": int64(2),
		})
		require.NoError(t, err)

		assert.Equal(t, notifications.ClassOrganizationAlert, p.Class)
		assert.Equal(t, "emergency", p.AlertType)
		assert.Equal(t, int64(2), p.OrganizationID)
		assert.Equal(t, notifications.DisplayHigh, p.Display)
		assert.Equal(t, "red", p.Color)
		assert.Contains(t, p.Message, "Calle Mayor 1")
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		_, err := notifications.Build("weekly_digest", nil)
		assert.ErrorIs(t, err, notifications.ErrUnknownTemplate)
	})

	t.Run("empty variables leave placeholders verbatim", func(t *testing.T) {
		t.Parallel()

		for _, key := range notifications.TemplateKeys() {
			p, err := notifications.Build(key, nil)
			require.NoError(t, err, key)
			assert.NotEmpty(t, p.Title, key)
			assert.NotEmpty(t, p.Message, key)
		}
	})

	t.Run("tracking ids are unique per send", func(t *testing.T) {
		t.Parallel()

		a, err := notifications.Build(notifications.TemplateDailyReportReady, nil)
		require.NoError(t, err)
		b, err := notifications.Build(notifications.TemplateDailyReportReady, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.TrackingID, b.TrackingID)
	})
}

func TestBuild_Metadata(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key        string
		statusType string
		alertType  string
		display    notifications.DisplayPriority
	}{
		{key: notifications.TemplateServiceCreated, statusType: "new", display: notifications.DisplayMedium},
		{key: notifications.TemplateServiceCapacityFull, statusType: "capacity_full", display: notifications.DisplayMedium},
		{key: notifications.TemplateServiceCapacityAvailable, statusType: "capacity_available", display: notifications.DisplayLow},
		{key: notifications.TemplateNewBeneficiary, statusType: "new_beneficiary", display: notifications.DisplayLow},
		{key: notifications.TemplateEmergencyAlert, alertType: "emergency", display: notifications.DisplayHigh},
		{key: notifications.TemplateSystemMaintenance, alertType: "maintenance", display: notifications.DisplayMedium},
		{key: notifications.TemplateDailyReportReady, alertType: "info", display: notifications.DisplayLow},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()

			p, err := notifications.Build(tc.key, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.statusType, p.StatusType)
			assert.Equal(t, tc.alertType, p.AlertType)
			assert.Equal(t, tc.display, p.Display)
			assert.NotEmpty(t, p.Icon)
		})
	}
}

func TestPayload_ChannelData(t *testing.T) {
	t.Parallel()

	p, err := notifications.Build(notifications.TemplateServiceCapacityFull, map[string]any{
		"service_name": "Comedor Centro",
		"service_id":   int64(7),
	})
	require.NoError(t, err)

	db := p.DatabaseData()
	assert.Equal(t, p.Title, db["title"])
	assert.Equal(t, "capacity_full", db["status_type"])
	assert.NotContains(t, db, "icon")

	push := p.PushData()
	assert.Equal(t, p.Icon, push["icon"])
	assert.Equal(t, "medium", push["display_priority"])
	assert.Nil(t, push["read_at"])
}
