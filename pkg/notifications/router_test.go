package notifications_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/directory"
	"github.com/shelterconnect/platform/pkg/notifications"
)

func TestRoute(t *testing.T) {
	t.Parallel()

	t.Run("medium priority excludes email without digest", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateServiceCapacityFull, map[string]any{
			"service_name": "Comedor Centro",
		})
		require.NoError(t, err)

		channels := notifications.Route(*p, directory.DefaultPreferences())
		assert.Equal(t, []notifications.Channel{
			notifications.ChannelDatabase,
			notifications.ChannelPush,
		}, channels)
	})

	t.Run("digest opt-in includes email for medium priority", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateServiceCapacityFull, nil)
		require.NoError(t, err)

		prefs := directory.DefaultPreferences()
		prefs.EmailDigest = true
		channels := notifications.Route(*p, prefs)
		assert.Contains(t, channels, notifications.ChannelEmail)
	})

	t.Run("high display priority always includes email", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateEmergencyAlert, nil)
		require.NoError(t, err)

		prefs := directory.DefaultPreferences()
		prefs.EmailDigest = false
		channels := notifications.Route(*p, prefs)
		assert.Contains(t, channels, notifications.ChannelEmail)
	})

	t.Run("email preference off wins over priority", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateEmergencyAlert, nil)
		require.NoError(t, err)

		prefs := directory.DefaultPreferences()
		prefs.OrgAlertEmail = false
		channels := notifications.Route(*p, prefs)
		assert.NotContains(t, channels, notifications.ChannelEmail)
	})

	t.Run("all preferences off falls back to database", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateServiceCreated, nil)
		require.NoError(t, err)

		channels := notifications.Route(*p, directory.ChannelPreferences{})
		assert.Equal(t, []notifications.Channel{notifications.ChannelDatabase}, channels)
	})

	t.Run("preferences of the other class do not apply", func(t *testing.T) {
		t.Parallel()

		p, err := notifications.Build(notifications.TemplateServiceCreated, nil)
		require.NoError(t, err)

		// Only alert channels enabled; a service notification still lands
		// in the database via the fallback.
		prefs := directory.ChannelPreferences{OrgAlertInApp: true, OrgAlertPush: true}
		channels := notifications.Route(*p, prefs)
		assert.Equal(t, []notifications.Channel{notifications.ChannelDatabase}, channels)
	})
}
