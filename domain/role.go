package domain

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	// RoleBanned is never assigned by a Group operation. It only appears when
	// a persisted membership carrying it is restored.
	RoleBanned Role = "banned"
)

func (r Role) String() string { return string(r) }

// Assignable reports whether a role may be granted through AddMember.
func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleMember
}
