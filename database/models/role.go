package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is the closed set of account roles.
type Role uint8

const (
	RoleInvalid Role = iota
	RoleAdmin
	RoleClient
	RoleRunner
)

var roleNames = map[Role]string{
	RoleAdmin:  "Admin",
	RoleClient: "Client",
	RoleRunner: "Runner",
}

// ParseRole maps a role name to its Role. Names are case sensitive.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleInvalid, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Invalid"
}

// Valid reports whether r is one of Admin, Client or Runner.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements the driver.Valuer interface. Roles are stored by name.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot store invalid role %d", r)
	}
	return r.String(), nil
}

// Scan implements the sql.Scanner interface.
func (r *Role) Scan(v interface{}) error {
	switch val := v.(type) {
	case string:
		return r.UnmarshalText([]byte(val))
	case []byte:
		return r.UnmarshalText(val)
	case nil:
		*r = RoleInvalid
		return nil
	default:
		return fmt.Errorf("role scan source was not string or []byte: %T (%v)", v, v)
	}
}
