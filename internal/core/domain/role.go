package domain

// Role is the closed set of roles a User can hold.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAssociate Role = "associate"
)

// Capability names an operation that is restricted by role.
type Capability string

// CapManageRoles allows a user to change the role on their own profile.
const CapManageRoles Capability = "manage_roles"

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapManageRoles: {},
	},
	RoleAssociate: {},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

// Caller is the authenticated subject attached to a request, plus the User it
// is bound to once registered.
type Caller struct {
	Subject string
	Email   string
	UserID  string
	Role    Role
}

// Registered reports whether the caller's identity is bound to a User.
func (c Caller) Registered() bool {
	return c.UserID != ""
}
