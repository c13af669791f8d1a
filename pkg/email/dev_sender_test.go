package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/email"
)

func TestDevSenderWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "coordinator@shelterconnect.org",
		Subject:  "Estado del Servicio Actualizado - ShelterConnect",
		BodyHTML: "<html><body>Capacidad completa</body></html>",
		Tag:      "service_status",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "one HTML body and one metadata file")

	var htmlFile, jsonFile string
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".html":
			htmlFile = entry.Name()
		case ".json":
			jsonFile = entry.Name()
		}
	}
	require.NotEmpty(t, htmlFile)
	require.NotEmpty(t, jsonFile)
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(htmlFile, ".html"), "service_status"))

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Capacidad completa")

	metaRaw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(metaRaw, &meta))
	assert.Equal(t, "coordinator@shelterconnect.org", meta["send_to"])
	assert.Equal(t, "service_status", meta["tag"])
}

func TestDevSenderValidatesParams(t *testing.T) {
	t.Parallel()

	sender := email.NewDevSender(t.TempDir())

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "not-an-address",
		Subject:  "x",
		BodyHTML: "<p>x</p>",
	})
	require.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestSendEmailParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
	}{
		{
			name: "valid",
			params: email.SendEmailParams{
				SendTo:   "user@example.org",
				Subject:  "subject",
				BodyHTML: "<p>body</p>",
			},
		},
		{
			name: "missing recipient",
			params: email.SendEmailParams{
				Subject:  "subject",
				BodyHTML: "<p>body</p>",
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			params: email.SendEmailParams{
				SendTo:   "user@example.org",
				BodyHTML: "<p>body</p>",
			},
			wantErr: true,
		},
		{
			name: "missing body",
			params: email.SendEmailParams{
				SendTo:  "user@example.org",
				Subject: "subject",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
