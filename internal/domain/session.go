package domain

// Persisted storage keys shared by every Storage implementation.
const (
	KeyAccessToken   = "access_token"
	KeyRefreshToken  = "refresh_token"
	KeyRoles         = "roles"
	KeyPhone         = "phone"
	KeySelectedRooms = "selectedRooms"
	KeyAppLang       = "appLang"
)

const (
	RoleAdmin     = "ROLE_ADMIN"
	RoleReception = "ROLE_RECEPTION"
	RoleCook      = "ROLE_COOK"
	RoleOther     = "ROLE_OTHER"
)

type Role struct {
	Name string `json:"name"`
}

type Session struct {
	AccessToken  string
	RefreshToken string
	Roles        []Role
	Phone        string
}

// PrimaryRole is the first role returned at login; it decides the landing page.
func (s Session) PrimaryRole() string {
	if len(s.Roles) == 0 {
		return ""
	}
	return s.Roles[0].Name
}

func (s Session) HasRole(name string) bool {
	for _, r := range s.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// LandingRoute maps a role to its dashboard.
func LandingRoute(role string) (string, bool) {
	switch role {
	case RoleAdmin:
		return "/admin/dashboard", true
	case RoleReception:
		return "/reception/dashboard", true
	case RoleCook:
		return "/cook/dashboard", true
	case RoleOther:
		return "/other/dashboard", true
	}
	return "", false
}
