package domain

import "fmt"

// Role is the closed set of privilege levels, totally ordered
// USER < MODERATOR < ADMIN.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// roleRanks assigns each known role its position in the total order.
// Anything absent ranks 0, below USER.
var roleRanks = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Rank returns the role's position in the hierarchy. Unknown roles rank
// 0 so every Satisfies check against them fails closed.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Satisfies reports whether r is at least as privileged as required.
func (r Role) Satisfies(required Role) bool {
	return r.Rank() >= required.Rank()
}

// IsValid reports whether r is one of the three known roles.
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// ParseRole validates a role string at a trust boundary. Callers must
// reject (and log) the error rather than letting an unknown value flow
// into comparisons.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
