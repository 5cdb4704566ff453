package domain

// Role is the scope claim carried by console tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
)

// Valid reports whether r is a role the console assigns.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSupport
}
