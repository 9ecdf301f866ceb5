package config

import "strings"

// SessionConfig controls session policy.
type SessionConfig struct {
	// PrivilegedRoles are the roles that unlock admin operations such as approvals.
	PrivilegedRoles []string `env:"AGENDA_PRIVILEGED_ROLES" envDefault:"Admin,Staff"`
}

// Sanitize drops blank and duplicate role names.
func (c *SessionConfig) Sanitize() {
	seen := make(map[string]struct{}, len(c.PrivilegedRoles))
	roles := make([]string, 0, len(c.PrivilegedRoles))
	for _, r := range c.PrivilegedRoles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	c.PrivilegedRoles = roles
}
