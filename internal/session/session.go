package session

import (
	"encoding/json"
	"strings"
)

// Known roles. The remote API has been observed returning them in mixed
// casing, so comparisons always go through NormalizeRole.
const (
	RoleCustomer   = "customer"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// NormalizeRole lowercases and trims a role string. This is the single place
// role casing is reconciled; everything downstream assumes the normalized form.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// KnownRole reports whether role (any casing) is one of the three roles the
// front desk routes for.
func KnownRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleCustomer, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// User is the resolved profile behind a session token.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// UnmarshalJSON accepts both "id" and the legacy "_id" key the remote API
// emits, and normalizes the role at the decode boundary.
func (u *User) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID         string `json:"id"`
		LegacyID   string `json:"_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Role       string `json:"role"`
		Department string `json:"department"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.ID = aux.ID
	if u.ID == "" {
		u.ID = aux.LegacyID
	}
	u.Name = aux.Name
	u.Email = aux.Email
	u.Role = NormalizeRole(aux.Role)
	u.Department = aux.Department
	return nil
}

// Session pairs the bearer token with the resolved user profile.
// A non-nil User always implies a non-empty Token; the converse does not hold
// while resolution is pending or after it failed.
type Session struct {
	Token string
	User  *User
}

// Anonymous returns the unauthenticated session.
func Anonymous() *Session {
	return &Session{}
}

// Authenticated reports whether the session carries a resolved user.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil && s.Token != ""
}

// Role returns the normalized role, or "" when unauthenticated.
func (s *Session) Role() string {
	if !s.Authenticated() {
		return ""
	}
	return NormalizeRole(s.User.Role)
}
