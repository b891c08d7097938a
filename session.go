package ontoshop

import "fmt"

// Role is the caller role supplied by the session layer
type Role string

// Roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session identifies the caller. It is trusted as given: the shop does no
// authentication of its own.
type Session struct {
	Username string
	Role     Role
}

// Admin returns an admin session for username
func Admin(username string) Session { return Session{Username: username, Role: RoleAdmin} }

// User returns a customer session for username
func User(username string) Session { return Session{Username: username, Role: RoleUser} }

func (s Session) check(op string, adminOnly bool) error {
	switch s.Role {
	case RoleAdmin:
		return nil
	case RoleUser:
		if adminOnly {
			return fmt.Errorf("%w: %s requires the admin role", ErrForbidden, op)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, s.Role)
	}
}
