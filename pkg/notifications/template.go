package notifications

import "fmt"

// Template keys known to the registry. The set is fixed at compile time;
// callers trigger sends by key, never by free-form content.
const (
	TemplateServiceCreated           = "service_created"
	TemplateServiceCapacityFull      = "service_capacity_full"
	TemplateServiceCapacityAvailable = "service_capacity_available"
	TemplateEmergencyAlert           = "emergency_alert"
	TemplateSystemMaintenance        = "system_maintenance"
	TemplateNewBeneficiary           = "new_beneficiary_registered"
	TemplateDailyReportReady         = "daily_report_ready"
)

// Template is an immutable message shape: patterns still contain {name}
// placeholders that Interpolate fills per send.
type Template struct {
	Key            string
	TitlePattern   string
	MessagePattern string
	Class          Class
	Priority       Priority
}

var templateRegistry = map[string]Template{
	TemplateServiceCreated: {
		Key:            TemplateServiceCreated,
		TitlePattern:   "Nuevo Servicio Disponible",
		MessagePattern: "Se ha creado un nuevo servicio: {service_name} en {organization_name}",
		Class:          ClassServiceStatus,
		Priority:       PriorityMedium,
	},
	TemplateServiceCapacityFull: {
		Key:            TemplateServiceCapacityFull,
		TitlePattern:   "Capacidad Completa",
		MessagePattern: "El servicio {service_name} ha alcanzado su capacidad máxima",
		Class:          ClassServiceStatus,
		Priority:       PriorityHigh,
	},
	TemplateServiceCapacityAvailable: {
		Key:            TemplateServiceCapacityAvailable,
		TitlePattern:   "Capacidad Disponible",
		MessagePattern: "El servicio {service_name} tiene capacidad disponible",
		Class:          ClassServiceStatus,
		Priority:       PriorityMedium,
	},
	TemplateEmergencyAlert: {
		Key:            TemplateEmergencyAlert,
		TitlePattern:   "🚨 Alerta de Emergencia",
		MessagePattern: "Se ha activado una alerta de emergencia. Ubicación: {location}",
		Class:          ClassOrganizationAlert,
		Priority:       PriorityCritical,
	},
	TemplateSystemMaintenance: {
		Key:            TemplateSystemMaintenance,
		TitlePattern:   "🔧 Mantenimiento Programado",
		MessagePattern: "El sistema estará en mantenimiento desde {start_time} hasta {end_time}",
		Class:          ClassOrganizationAlert,
		Priority:       PriorityMedium,
	},
	TemplateNewBeneficiary: {
		Key:            TemplateNewBeneficiary,
		TitlePattern:   "Nuevo Beneficiario",
		MessagePattern: "Se ha registrado un nuevo beneficiario en {service_name}",
		Class:          ClassServiceStatus,
		Priority:       PriorityLow,
	},
	TemplateDailyReportReady: {
		Key:            TemplateDailyReportReady,
		TitlePattern:   "📊 Reporte Diario Listo",
		MessagePattern: "El reporte diario de {date} está disponible para descarga",
		Class:          ClassOrganizationAlert,
		Priority:       PriorityLow,
	},
}

// Resolve returns the template for the given key.
func Resolve(key string) (Template, error) {
	t, ok := templateRegistry[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}
	return t, nil
}

// TemplateKeys lists every registered key. The order is unspecified.
func TemplateKeys() []string {
	keys := make([]string, 0, len(templateRegistry))
	for k := range templateRegistry {
		keys = append(keys, k)
	}
	return keys
}
