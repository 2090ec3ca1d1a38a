// Package users manages salon clients and staff accounts.
package users

import (
	"strings"
	"time"

	"github.com/velvetrow/salonbook/internal/dateutil"
)

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is one account. PasswordHash never leaves the package.
type User struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Username    string    `json:"username"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	PhoneRaw    *string   `json:"phone,omitempty"`
	PhoneE164   *string   `json:"phone_e164,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`

	PasswordHash string `json:"-"`
}

// CreateUserRequest is the signup body.
type CreateUserRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Username    string  `json:"username"`
	DateOfBirth *string `json:"date_of_birth"`
	Phone       *string `json:"phone"`
	Role        string  `json:"role"`
	Password    string  `json:"password"`
}

func (r *CreateUserRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Username = strings.TrimSpace(r.Username)
	if r.FirstName == "" || r.LastName == "" || r.Username == "" || r.Password == "" {
		return ErrMissingFields
	}
	if len(r.Password) < 6 {
		return ErrWeakPassword
	}
	if r.DateOfBirth != nil && !dateutil.ValidDate(*r.DateOfBirth) {
		return ErrBadDate
	}
	switch r.Role {
	case "":
		r.Role = RoleUser
	case RoleUser, RoleAdmin:
	default:
		return ErrBadRole
	}
	return nil
}

// NormalizePhone reduces a free-form phone number to its dialable form:
// digits plus a leading + when present. Empty input stays empty.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
