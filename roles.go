package authclient

// UserRole is the user's role as reported by the backend
type UserRole = string

const (
	// RoleUser is a regular account awaiting or holding approval
	RoleUser UserRole = "user"
	// RoleAdmin reviews and approves pending accounts
	RoleAdmin UserRole = "admin"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// IsAdmin reports whether the user may access the admin review surface
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanSignIn reports whether the account has cleared the approval gate and is
// not deactivated. The server enforces this too; the client uses it to route
// to the pending-approval screen without a round trip.
func (u *User) CanSignIn() bool {
	return u != nil && u.IsApproved && u.IsActive
}
