package notifications

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// statusTypes maps service-class templates to the status code stored with
// the payload. Unmapped keys fall back to "updated".
var statusTypes = map[string]string{
	TemplateServiceCreated:           "new",
	TemplateServiceCapacityFull:      "capacity_full",
	TemplateServiceCapacityAvailable: "capacity_available",
	TemplateNewBeneficiary:           "new_beneficiary",
}

// alertTypes maps organization-class templates to an alert code. Unmapped
// keys fall back to "info".
var alertTypes = map[string]string{
	TemplateEmergencyAlert:    "emergency",
	TemplateSystemMaintenance: "maintenance",
	TemplateDailyReportReady:  "info",
}

var statusDisplay = map[string]DisplayPriority{
	"emergency":          DisplayHigh,
	"capacity_full":      DisplayMedium,
	"new":                DisplayMedium,
	"suspended":          DisplayMedium,
	"inactive":           DisplayMedium,
	"updated":            DisplayLow,
	"capacity_available": DisplayLow,
	"new_beneficiary":    DisplayLow,
}

var alertDisplay = map[string]DisplayPriority{
	"emergency":      DisplayHigh,
	"critical":       DisplayHigh,
	"system_error":   DisplayHigh,
	"warning":        DisplayMedium,
	"capacity_alert": DisplayMedium,
	"deadline":       DisplayMedium,
	"info":           DisplayLow,
	"reminder":       DisplayLow,
	"update":         DisplayLow,
}

var statusIcons = map[string]string{
	"active":             "✅",
	"inactive":           "❌",
	"suspended":          "⚠️",
	"updated":            "📝",
	"new":                "🆕",
	"capacity_full":      "⛔",
	"capacity_available": "✳️",
	"new_beneficiary":    "👥",
	"emergency":          "🚨",
	"deadline":           "⏰",
	"reminder":           "🔔",
	"info":               "ℹ️",
}

var alertIcons = map[string]string{
	"emergency":      "🚨",
	"critical":       "❌",
	"warning":        "⚠️",
	"info":           "ℹ️",
	"success":        "✅",
	"reminder":       "🔔",
	"system_error":   "💻",
	"capacity_alert": "📊",
	"deadline":       "⏰",
	"maintenance":    "🔧",
}

var alertColors = map[string]string{
	"emergency":      "red",
	"critical":       "red",
	"system_error":   "red",
	"warning":        "yellow",
	"capacity_alert": "yellow",
	"deadline":       "yellow",
	"success":        "green",
	"info":           "blue",
	"reminder":       "blue",
	"update":         "blue",
}

// Build produces the payload for one logical send: template lookup,
// title/message interpolation, a fresh tracking ID, and the per-class
// metadata the delivery channels render. An unknown key is the only error.
func Build(templateKey string, variables map[string]any) (*Payload, error) {
	tmpl, err := Resolve(templateKey)
	if err != nil {
		return nil, err
	}

	p := &Payload{
		Title:       Interpolate(tmpl.TitlePattern, variables),
		Message:     Interpolate(tmpl.MessagePattern, variables),
		TemplateKey: tmpl.Key,
		Class:       tmpl.Class,
		Priority:    tmpl.Priority,
		Variables:   variables,
		TrackingID:  uuid.New(),
		CreatedAt:   time.Now().UTC(),
	}

	switch tmpl.Class {
	case ClassServiceStatus:
		p.StatusType = statusTypeFor(tmpl.Key)
		p.ServiceID = int64Var(variables, "service_id")
		p.Display = displayFor(statusDisplay, p.StatusType)
		p.Icon = iconFor(statusIcons, p.StatusType)
		p.Color = colorFor(p.Display)
	case ClassOrganizationAlert:
		p.AlertType = alertTypeFor(tmpl.Key)
		p.OrganizationID = int64Var(variables, "organization_id")
		p.Display = displayFor(alertDisplay, p.AlertType)
		p.Icon = iconFor(alertIcons, p.AlertType)
		if c, ok := alertColors[p.AlertType]; ok {
			p.Color = c
		} else {
			p.Color = "gray"
		}
	}

	return p, nil
}

func statusTypeFor(templateKey string) string {
	if s, ok := statusTypes[templateKey]; ok {
		return s
	}
	return "updated"
}

func alertTypeFor(templateKey string) string {
	if a, ok := alertTypes[templateKey]; ok {
		return a
	}
	return "info"
}

func displayFor(table map[string]DisplayPriority, key string) DisplayPriority {
	if d, ok := table[key]; ok {
		return d
	}
	return DisplayMedium
}

func iconFor(table map[string]string, key string) string {
	if icon, ok := table[key]; ok {
		return icon
	}
	return "📢"
}

func colorFor(d DisplayPriority) string {
	switch d {
	case DisplayHigh:
		return "red"
	case DisplayMedium:
		return "yellow"
	default:
		return "blue"
	}
}

// int64Var extracts a numeric ID from a variable map that may have crossed
// a JSON boundary, where numbers arrive as float64 or json.Number.
func int64Var(variables map[string]any, key string) int64 {
	switch v := variables[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
