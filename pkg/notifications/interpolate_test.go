package notifications_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelterconnect/platform/pkg/notifications"
)

func TestInterpolate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		pattern   string
		variables map[string]any
		want      string
	}{
		{
			name:      "string variable",
			pattern:   "El servicio {service_name} ha alcanzado su capacidad máxima",
			variables: map[string]any{"service_name": "Comedor Centro"},
			want:      "El servicio Comedor Centro ha alcanzado su capacidad máxima",
		},
		{
			name:      "numeric variable",
			pattern:   "Quedan {count} plazas",
			variables: map[string]any{"count": 3},
			want:      "Quedan 3 plazas",
		},
		{
			name:      "float from json roundtrip",
			pattern:   "Quedan {count} plazas",
			variables: map[string]any{"count": float64(3)},
			want:      "Quedan 3 plazas",
		},
		{
			name:      "missing variable left verbatim",
			pattern:   "Se ha creado un nuevo servicio: {service_name} en {organization_name}",
			variables: map[string]any{"service_name": "Albergue Norte"},
			want:      "Se ha creado un nuevo servicio: Albergue Norte en {organization_name}",
		},
		{
			name:      "non-scalar variable left verbatim",
			pattern:   "Contacto: {contact_info}",
			variables: map[string]any{"contact_info": map[string]any{"phone": "112"}},
			want:      "Contacto: {contact_info}",
		},
		{
			name:      "no variables",
			pattern:   "Ubicación: {location}",
			variables: nil,
			want:      "Ubicación: {location}",
		},
		{
			name:      "repeated placeholder",
			pattern:   "{name} y otra vez {name}",
			variables: map[string]any{"name": "Ana"},
			want:      "Ana y otra vez Ana",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, notifications.Interpolate(tc.pattern, tc.variables))
		})
	}
}

func TestInterpolate_Idempotent(t *testing.T) {
	t.Parallel()

	variables := map[string]any{"service_name": "Comedor Centro", "count": 5}
	pattern := "El servicio {service_name} tiene {count} plazas y {unset} pendientes"

	once := notifications.Interpolate(pattern, variables)
	twice := notifications.Interpolate(once, variables)
	assert.Equal(t, once, twice)
}
