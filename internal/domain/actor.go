package domain

// Role is the internal project role of a principal. Roles gate what a
// principal may do; they are distinct from the impacted-profile catalog,
// which describes end users affected by a task.
type Role string

const (
	// RoleAdmin and RoleSupervisor are the two elevated administrative roles.
	// They bypass ownership and RACI checks everywhere.
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"

	// RoleContributor is a regular project member whose rights on a task
	// derive from ownership or RACI letters.
	RoleContributor Role = "contributor"
)

// IsValid returns true if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleContributor:
		return true
	default:
		return false
	}
}

// IsElevated reports whether the role bypasses ownership and RACI checks.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Actor is the already-authenticated caller identity attached to every
// mutating operation. Authentication itself happens in layers outside this
// module; the actor arrives here fully resolved.
type Actor struct {
	UserID string
	Role   Role
}

// Validate checks that the actor carries a usable identity.
// Returns a *ValidationError if any checks fail.
func (a Actor) Validate() error {
	fields := make(map[string]string)

	if a.UserID == "" {
		fields["user_id"] = "is required"
	}
	if !a.Role.IsValid() {
		fields["role"] = "invalid: " + string(a.Role)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
