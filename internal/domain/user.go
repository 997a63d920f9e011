package domain

import "context"

// Role identifies what a user may do on the platform
type Role string

const (
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleInstructor || r == RoleStudent
}

// User represents a registered platform user.
// The JSON layout is also the persisted session record layout.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`    // Unique across users, compared case-sensitively
	Password string `json:"password"` // Plaintext, compared exactly on login
	Role     Role   `json:"role"`
}

// UserRepository defines access to the registered-user set
type UserRepository interface {
	Create(user *User) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	List() ([]*User, error)
}

// SessionRepository persists the single active session.
// Load returns (nil, nil) when no session record exists.
type SessionRepository interface {
	Load(ctx context.Context) (*User, error)
	Save(ctx context.Context, user *User) error
	Clear(ctx context.Context) error
}
