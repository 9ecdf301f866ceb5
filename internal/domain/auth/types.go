package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of transport/storage concerns.

import "slices"

// Role represents the backend's authorization role for a user.
// Keep string form; unknown roles are preserved verbatim.
type Role string

const (
	RoleMember Role = "Member"
	RoleAdmin  Role = "Admin"
	RoleStaff  Role = "Staff"
)

// DefaultPrivilegedRoles are the roles that grant administrative views.
func DefaultPrivilegedRoles() []Role {
	return []Role{RoleAdmin, RoleStaff}
}

// Identity is the minimal user identity persisted next to the token.
// Its JSON form is the `auth_user` storage value.
type Identity struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Valid reports whether the identity is complete enough to hydrate a session.
func (i Identity) Valid() bool {
	return i.ID > 0 && i.Role != ""
}

// Session is the authenticated user's token plus identity.
// The zero value is the unauthenticated session.
type Session struct {
	Token string
	User  Identity
}

// IsAuthenticated reports whether a token is present.
func (s Session) IsAuthenticated() bool { return s.Token != "" }

// HasRole reports whether the session role is one of roles.
func (s Session) HasRole(roles ...Role) bool {
	return s.IsAuthenticated() && slices.Contains(roles, s.User.Role)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	OrganizationSlug string `json:"organization_slug,omitempty"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Role   Role   `json:"role"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	OrganizationSlug string `json:"organization_slug,omitempty"`
}

// RegisterResult is the data of a successful registration.
type RegisterResult struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// ApproveRequest is the body of POST /auth/approve.
type ApproveRequest struct {
	Email string `json:"email"`
}

// MessageResult is the common `{message}` payload.
type MessageResult struct {
	Message string `json:"message"`
}
