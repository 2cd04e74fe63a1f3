package model

import (
	"strings"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
	RoleMember    UserRole = "member"
)

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusPending UserStatus = "pending"
	StatusExpired UserStatus = "expired"
)

// User is a domain entity representing a registered association member or
// an admin operating the back office.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	PhoneNumber  string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

func NewUser(id, firstName, lastName, email, passwordHash string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if firstName == "" || lastName == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleMember,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}, nil
}

func (u *User) IsZero() bool  { return u == nil || u.ID == "" }
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

// Touch records a successful login.
func (u *User) Touch() {
	now := time.Now()
	u.LastLogin = &now
}
