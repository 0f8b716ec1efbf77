package auth

import "strings"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// EffectiveRole returns the user's role, defaulting to RoleUser when the
// auth backend sent none.
func (u User) EffectiveRole() string {
	if r := strings.ToUpper(strings.TrimSpace(u.Role)); r != "" {
		return r
	}
	return RoleUser
}

func (u User) IsAdmin() bool {
	return u.EffectiveRole() == RoleAdmin
}
