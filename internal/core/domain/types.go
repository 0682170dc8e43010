package domain

// User is the public projection of a user record, safe to return to
// clients. It never carries the password hash.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the payload for POST /api/auth/register.
// Role is optional and defaults to USER; unknown values are rejected.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// AuthResponse is returned by login and register. The token is also
// delivered as the session cookie; it is echoed in the body for
// non-browser clients.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateRoleRequest is the payload for PATCH /api/admin/users/:id.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AccessCheck is returned by GET /api/overlay/access.
type AccessCheck struct {
	HasAccess bool   `json:"hasAccess"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
}
