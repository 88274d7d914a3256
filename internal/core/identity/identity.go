// Package identity holds the authenticated user model shared by the session
// store, the access guard and the visibility filter.
package identity

import (
	"errors"
	"fmt"
)

// Role is closed: Engineer and Manager are the only valid values. The zero
// value is invalid and never grants access.
type Role uint8

const (
	Engineer Role = iota + 1
	Manager
)

const (
	LoginPath        = "/login"
	ManagerHomePath  = "/manager"
	EngineerHomePath = "/engineer"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch s {
	case "engineer":
		return Engineer, nil
	case "manager":
		return Manager, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	switch r {
	case Engineer:
		return "engineer"
	case Manager:
		return "manager"
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	switch r {
	case Engineer, Manager:
		return true
	default:
		return false
	}
}

// Home is the landing view for the role. An invalid role lands on login.
func (r Role) Home() string {
	switch r {
	case Manager:
		return ManagerHomePath
	case Engineer:
		return EngineerHomePath
	default:
		return LoginPath
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity is the user returned by the login exchange.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (i Identity) Validate() error {
	if i.ID == "" {
		return errors.New("identity id is required")
	}
	if !i.Role.Valid() {
		return fmt.Errorf("%w for identity %s", ErrUnknownRole, i.ID)
	}
	return nil
}

func (i Identity) IsManager() bool {
	return i.Role == Manager
}
