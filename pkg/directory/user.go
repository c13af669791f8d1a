package directory

// Known platform roles. Role names double as rbac role keys.
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleVolunteer   = "volunteer"
	RoleViewer      = "viewer"
)

// User is the directory view of a platform account: the fields the
// notification pipeline needs to resolve recipients and route channels.
// The full account model lives in the CRUD subsystem.
type User struct {
	ID             int64              `json:"id"`
	Email          string             `json:"email"`
	Name           string             `json:"name"`
	OrganizationID int64              `json:"organization_id"`
	Role           string             `json:"role"`
	Active         bool               `json:"active"`
	Preferences    ChannelPreferences `json:"preferences"`
}

// Elevated reports whether the user holds a platform-operator role.
func (u User) Elevated() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// ChannelPreferences stores per-class, per-channel opt-ins plus the email
// digest flag. Class and channel names follow the notification pipeline's
// wire values.
type ChannelPreferences struct {
	ServiceStatusInApp bool `json:"service_status_in_app"`
	ServiceStatusPush  bool `json:"service_status_push"`
	ServiceStatusEmail bool `json:"service_status_email"`
	OrgAlertInApp      bool `json:"organization_alert_in_app"`
	OrgAlertPush       bool `json:"organization_alert_push"`
	OrgAlertEmail      bool `json:"organization_alert_email"`
	EmailDigest        bool `json:"email_digest"`
}

// Allows reports whether the (class, channel) pair is enabled. Unknown
// classes and channels are disabled.
func (p ChannelPreferences) Allows(class, channel string) bool {
	switch class {
	case "service_status":
		switch channel {
		case "database":
			return p.ServiceStatusInApp
		case "push":
			return p.ServiceStatusPush
		case "email":
			return p.ServiceStatusEmail
		}
	case "organization_alert":
		switch channel {
		case "database":
			return p.OrgAlertInApp
		case "push":
			return p.OrgAlertPush
		case "email":
			return p.OrgAlertEmail
		}
	}
	return false
}

// DefaultPreferences enables every channel and leaves the digest off,
// matching the onboarding defaults of the surrounding system.
func DefaultPreferences() ChannelPreferences {
	return ChannelPreferences{
		ServiceStatusInApp: true,
		ServiceStatusPush:  true,
		ServiceStatusEmail: true,
		OrgAlertInApp:      true,
		OrgAlertPush:       true,
		OrgAlertEmail:      true,
	}
}
